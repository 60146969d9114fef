package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TextConverter passes already-textual inputs through untouched so markdown
// and plain-text files skip the OCR engine entirely.
type TextConverter struct{}

func (tc *TextConverter) Name() string {
	return "text"
}

func (tc *TextConverter) IsAvailable(ctx context.Context) bool {
	return true
}

// Supports reports whether path has a textual extension this converter
// handles.
func (tc *TextConverter) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

func (tc *TextConverter) Convert(ctx context.Context, sourcePath, outMDPath string) error {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("input not found: %s", sourcePath)
	}

	if err := os.MkdirAll(filepath.Dir(outMDPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	return os.WriteFile(outMDPath, content, 0o644)
}

// ForFile picks the converter for a given input path: textual files pass
// through, everything else goes to the OCR converter.
func ForFile(path string, ocr Converter) Converter {
	tc := &TextConverter{}
	if tc.Supports(path) {
		return tc
	}
	return ocr
}
