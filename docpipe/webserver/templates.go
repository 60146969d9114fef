package webserver

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>docpipe</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; }
fieldset { margin-bottom: 1rem; }
</style>
</head>
<body>
<h1>OCR &rarr; Markdown Pipeline</h1>
<p>Convert two documents to markdown, filter them, and compare the results.</p>
<form action="/process" method="post" enctype="multipart/form-data">
<fieldset>
<legend>Document 1</legend>
<input type="file" name="file1" accept=".pdf,.png,.jpg,.jpeg,.tiff,.bmp,.md,.txt" required>
</fieldset>
<fieldset>
<legend>Document 2</legend>
<input type="file" name="file2" accept=".pdf,.png,.jpg,.jpeg,.tiff,.bmp,.md,.txt" required>
</fieldset>
<button type="submit">Process Documents</button>
</form>
</body>
</html>
`))

var resultTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
<title>docpipe results</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; }
section { border: 1px solid #ccc; padding: 1rem; margin-bottom: 1rem; }
pre { background: #f6f6f6; padding: 0.5rem; overflow-x: auto; }
.ok { color: #0a0; }
.warn { color: #a60; }
</style>
</head>
<body>
<h1>Results</h1>

<section>
<h2>Comparison</h2>
{{if .Identical}}
<p class="ok">Documents are IDENTICAL</p>
{{else}}
<p class="warn">Documents are DIFFERENT</p>
<p>Doc 1 lines: {{.Lines1}} &middot; Doc 2 lines: {{.Lines2}} &middot; Line difference: {{.LineDelta}}</p>
<pre>{{.Diff}}</pre>
{{end}}
</section>

<section>
<h2>Document 1 &mdash; Markdown</h2>
{{.Markdown1}}
</section>

<section>
<h2>Document 2 &mdash; Markdown</h2>
{{.Markdown2}}
</section>

<section>
<h2>JSON Export</h2>
<h3>Document 1</h3>
<pre>{{.JSON1}}</pre>
<h3>Document 2</h3>
<pre>{{.JSON2}}</pre>
</section>

<p><a href="/">Process another pair</a></p>
</body>
</html>
`))
