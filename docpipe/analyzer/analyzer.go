// Package analyzer runs the optional LLM analysis step on a converted
// document pair: each markdown document is reformatted into structured
// JSON, then the pair is analyzed for discrepancies and an account
// compliance report is produced.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/docpipeops/docpipe/docpipe/comparator"
)

// Analyzer produces structured JSON from pipeline markdown.
type Analyzer interface {
	// FormatDocument extracts the document's fields into structured JSON.
	FormatDocument(ctx context.Context, markdown string) (json.RawMessage, error)

	// AnalyzeDifferences reviews a formatted document pair together with
	// the comparison outcome and returns a compliance report.
	AnalyzeDifferences(ctx context.Context, doc1, doc2 json.RawMessage, comparison *comparator.Result) (json.RawMessage, error)
}

// Report is the combined outcome of a full analysis run.
type Report struct {
	Document1Formatted json.RawMessage `json:"document_1_formatted"`
	Document2Formatted json.RawMessage `json:"document_2_formatted"`
	ComplianceAnalysis json.RawMessage `json:"compliance_analysis"`
	Status             string          `json:"status"`
}

// Processor orchestrates the analysis steps over an Analyzer.
type Processor struct {
	Analyzer Analyzer
	Logger   *logrus.Logger
}

func NewProcessor(a Analyzer, logger *logrus.Logger) *Processor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Processor{Analyzer: a, Logger: logger}
}

// FullPipeline formats both documents and analyzes them as a pair. Both
// documents must format successfully before the pair analysis runs.
func (p *Processor) FullPipeline(ctx context.Context, markdown1, markdown2 string, comparison *comparator.Result) (*Report, error) {
	var errs *multierror.Error

	p.Logger.Info("Formatting document 1")
	doc1, err := p.Analyzer.FormatDocument(ctx, markdown1)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("document 1: %w", err))
	}

	p.Logger.Info("Formatting document 2")
	doc2, err := p.Analyzer.FormatDocument(ctx, markdown2)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("document 2: %w", err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	p.Logger.Info("Analyzing document differences")
	analysis, err := p.Analyzer.AnalyzeDifferences(ctx, doc1, doc2, comparison)
	if err != nil {
		return nil, fmt.Errorf("compliance analysis: %w", err)
	}

	return &Report{
		Document1Formatted: doc1,
		Document2Formatted: doc2,
		ComplianceAnalysis: analysis,
		Status:             "completed",
	}, nil
}

// SaveReport writes the report parts as individual JSON files under
// outputDir and returns the written paths keyed by part name.
func SaveReport(report *Report, outputDir string) (map[string]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	parts := []struct {
		key     string
		file    string
		content json.RawMessage
	}{
		{"document_1_formatted", "document_1_formatted.json", report.Document1Formatted},
		{"document_2_formatted", "document_2_formatted.json", report.Document2Formatted},
		{"compliance_report", "compliance_report.json", report.ComplianceAnalysis},
	}

	saved := make(map[string]string, len(parts))
	for _, part := range parts {
		path := filepath.Join(outputDir, part.file)
		data, err := indent(part.content)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", part.file, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		saved[part.key] = path
	}
	return saved, nil
}

// indent re-renders raw JSON 2-space indented with non-ASCII text left
// unescaped, matching the export format of the rest of the pipeline.
func indent(raw json.RawMessage) ([]byte, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
