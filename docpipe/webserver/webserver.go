// Package webserver exposes the document pipeline over a minimal web UI:
// upload two documents, run the pipeline, inspect markdown, comparison and
// JSON export in the browser.
package webserver

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"

	"github.com/docpipeops/docpipe/docpipe/pipeline"
)

// maxUploadBytes caps a single request's multipart body.
const maxUploadBytes = 64 << 20

type Server struct {
	Runner   *pipeline.Runner
	Logger   *logrus.Logger
	markdown goldmark.Markdown
}

func New(runner *pipeline.Runner, logger *logrus.Logger) *Server {
	return &Server{
		Runner:   runner,
		Logger:   logger,
		markdown: goldmark.New(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe blocks serving the UI on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.Logger.Infof("serving web UI on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, indexTemplate, nil)
}

// resultView is the template payload for a processed pair.
type resultView struct {
	Markdown1 template.HTML
	Markdown2 template.HTML
	Identical bool
	Lines1    int
	Lines2    int
	LineDelta int
	Diff      string
	JSON1     string
	JSON2     string
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "could not parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	tmpDir, err := os.MkdirTemp("", "docpipe_upload_")
	if err != nil {
		s.fail(w, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	source1, err := saveUpload(r, "file1", tmpDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	source2, err := saveUpload(r, "file2", tmpDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Each request gets its own output directory: pipeline filenames carry
	// second-resolution timestamps and fixed labels, so concurrent requests
	// sharing a directory would overwrite each other's artifacts.
	runner := *s.Runner
	runner.OutputDir = filepath.Join(tmpDir, "outputs")

	result, err := runner.RunPair(r.Context(), source1, source2)
	if err != nil {
		s.Logger.Errorf("processing uploads failed: %v", err)
		s.fail(w, err)
		return
	}

	view, err := s.buildView(result)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, resultTemplate, view)
}

func (s *Server) buildView(result *pipeline.PairResult) (*resultView, error) {
	md1, err := s.renderMarkdownFile(result.Doc1.Markdown)
	if err != nil {
		return nil, err
	}
	md2, err := s.renderMarkdownFile(result.Doc2.Markdown)
	if err != nil {
		return nil, err
	}

	json1, err := os.ReadFile(result.JSON1)
	if err != nil {
		return nil, err
	}
	json2, err := os.ReadFile(result.JSON2)
	if err != nil {
		return nil, err
	}

	return &resultView{
		Markdown1: md1,
		Markdown2: md2,
		Identical: result.Comparison.Identical,
		Lines1:    result.Comparison.Lines1,
		Lines2:    result.Comparison.Lines2,
		LineDelta: result.Comparison.LineDelta,
		Diff:      result.Comparison.Diff,
		JSON1:     string(json1),
		JSON2:     string(json2),
	}, nil
}

func (s *Server) renderMarkdownFile(path string) (template.HTML, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("rendering %s: %w", path, err)
	}
	return template.HTML(buf.String()), nil
}

func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing upload %q", field)
	}
	defer file.Close()

	path := filepath.Join(dir, filepath.Base(header.Filename))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.Logger.Errorf("rendering template: %v", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	http.Error(w, "processing failed: "+err.Error(), http.StatusInternalServerError)
}
