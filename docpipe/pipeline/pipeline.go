// Package pipeline orchestrates the document flow: convert to markdown,
// apply text filters, compare the pair, export JSON.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/docpipeops/docpipe/docpipe/comparator"
	"github.com/docpipeops/docpipe/docpipe/converter"
	"github.com/docpipeops/docpipe/docpipe/exporter"
	"github.com/docpipeops/docpipe/docpipe/textfilter"
)

// Runner holds the pipeline configuration. OCRConverter handles non-textual
// inputs; textual inputs pass through directly.
type Runner struct {
	OCRConverter converter.Converter
	OutputDir    string
	StripArabic  bool
	Dedup        bool
	Logger       *logrus.Logger

	// Now stamps output filenames; overridable in tests.
	Now func() time.Time
}

// DocResult records every artifact produced for a single document. Markdown
// is the final post-filter file the comparison and export read.
type DocResult struct {
	Raw      string
	Filtered string
	Unique   string
	Markdown string
}

// PairResult is the outcome of processing and comparing two documents.
type PairResult struct {
	Doc1, Doc2   *DocResult
	Comparison   *comparator.Result
	JSON1, JSON2 string
}

func New(ocr converter.Converter, outputDir string, logger *logrus.Logger) *Runner {
	return &Runner{
		OCRConverter: ocr,
		OutputDir:    outputDir,
		StripArabic:  true,
		Dedup:        true,
		Logger:       logger,
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}

// ProcessDocument converts one document and runs the configured filters.
// label distinguishes the two sides of a pair in output filenames.
func (r *Runner) ProcessDocument(ctx context.Context, sourcePath, label string) (*DocResult, error) {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating outputs directory: %w", err)
	}

	stamp := r.now().Format("20060102_150405")
	mdPath := filepath.Join(r.OutputDir, fmt.Sprintf("%s_%s.md", label, stamp))

	conv := converter.ForFile(sourcePath, r.OCRConverter)
	r.logger().Infof("converting %s to markdown via %s", sourcePath, conv.Name())
	if err := conv.Convert(ctx, sourcePath, mdPath); err != nil {
		return nil, err
	}

	result := &DocResult{Raw: mdPath, Markdown: mdPath}

	if r.StripArabic {
		filtered := derivedPath(result.Markdown, "_filtered")
		r.logger().Infof("removing Arabic characters from %s", result.Markdown)
		if err := textfilter.StripArabicFile(result.Markdown, filtered); err != nil {
			return nil, err
		}
		result.Filtered = filtered
		result.Markdown = filtered
	}

	if r.Dedup {
		unique := derivedPath(result.Markdown, "_unique")
		r.logger().Infof("deduplicating lines in %s", result.Markdown)
		if err := textfilter.DedupLinesFile(result.Markdown, unique); err != nil {
			return nil, err
		}
		result.Unique = unique
		result.Markdown = unique
	}

	return result, nil
}

// RunPair processes both documents, compares the results and exports them as
// JSON. Per-document failures are aggregated so one broken input does not
// hide the other's error.
func (r *Runner) RunPair(ctx context.Context, source1, source2 string) (*PairResult, error) {
	var errs *multierror.Error

	doc1, err := r.ProcessDocument(ctx, source1, "doc1")
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("document 1: %w", err))
	}
	doc2, err := r.ProcessDocument(ctx, source2, "doc2")
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("document 2: %w", err))
	}
	if errs.ErrorOrNil() != nil {
		return nil, errs.ErrorOrNil()
	}

	result := &PairResult{Doc1: doc1, Doc2: doc2}

	result.Comparison, err = comparator.Compare(doc1.Markdown, doc2.Markdown)
	if err != nil {
		return nil, err
	}

	result.JSON1 = strings.TrimSuffix(doc1.Markdown, ".md") + ".json"
	result.JSON2 = strings.TrimSuffix(doc2.Markdown, ".md") + ".json"
	if err := exporter.MarkdownToJSON(doc1.Markdown, result.JSON1); err != nil {
		return nil, err
	}
	if err := exporter.MarkdownToJSON(doc2.Markdown, result.JSON2); err != nil {
		return nil, err
	}

	return result, nil
}

// derivedPath appends a suffix to a markdown filename's stem:
// doc1_x.md -> doc1_x_filtered.md.
func derivedPath(mdPath, suffix string) string {
	stem := strings.TrimSuffix(mdPath, filepath.Ext(mdPath))
	return stem + suffix + ".md"
}
