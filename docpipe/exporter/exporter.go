// Package exporter writes processed markdown out as JSON.
package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Lines converts markdown content into the exported form: a slice of
// deduplicated lines in first-occurrence order.
func Lines(content string) []string {
	seen := make(map[string]struct{})
	unique := []string{}
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		unique = append(unique, line)
	}
	return unique
}

// MarkdownToJSON exports a markdown file as a JSON array of its deduplicated
// lines, 4-space indented, with non-ASCII text left unescaped.
func MarkdownToJSON(inPath, outPath string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}

	data, err := Marshal(Lines(string(content)))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

// Marshal renders the line array in the export format.
func Marshal(lines []string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(lines); err != nil {
		return nil, fmt.Errorf("marshaling lines: %w", err)
	}
	return buf.Bytes(), nil
}
