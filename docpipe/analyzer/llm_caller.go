package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cm "github.com/docpipeops/docpipe/docpipe/commandmanager"
	"github.com/docpipeops/docpipe/docpipe/comparator"
)

// LLMCallerAnalyzer shells out to the llm-caller CLI. The tool takes a
// prompt template name and an input file, calls the configured model and
// writes the response to an output file.
type LLMCallerAnalyzer struct {
	CommandManager cm.CommandManager

	// Binary overrides the llm-caller executable, defaulting to "llm-caller".
	Binary string

	// Model is the provider-qualified model name, e.g. "openai:gpt-4-turbo".
	Model string

	// FormatTemplate and ComplianceTemplate name the llm-caller prompt
	// templates for the two analysis steps.
	FormatTemplate     string
	ComplianceTemplate string

	// APIKey is passed to the tool as OPENAI_API_KEY. Analysis refuses to
	// run without one.
	APIKey string
}

func (a *LLMCallerAnalyzer) binary() string {
	if a.Binary != "" {
		return a.Binary
	}
	return "llm-caller"
}

func (a *LLMCallerAnalyzer) IsAvailable(ctx context.Context) bool {
	_, err := a.CommandManager.Run(ctx, cm.CommandConfig{
		Command: a.binary(),
		Args:    []string{"--version"},
	})
	return err == nil
}

func (a *LLMCallerAnalyzer) FormatDocument(ctx context.Context, markdown string) (json.RawMessage, error) {
	return a.call(ctx, a.FormatTemplate, "document.md", []byte(markdown))
}

func (a *LLMCallerAnalyzer) AnalyzeDifferences(ctx context.Context, doc1, doc2 json.RawMessage, comparison *comparator.Result) (json.RawMessage, error) {
	payload, err := json.Marshal(struct {
		Document1  json.RawMessage    `json:"document_1"`
		Document2  json.RawMessage    `json:"document_2"`
		Comparison *comparator.Result `json:"comparison"`
	}{doc1, doc2, comparison})
	if err != nil {
		return nil, fmt.Errorf("building analysis input: %w", err)
	}
	return a.call(ctx, a.ComplianceTemplate, "differences.json", payload)
}

// call writes the input payload to a temp file, invokes llm-caller on it
// and reads the tool's output file back.
func (a *LLMCallerAnalyzer) call(ctx context.Context, template, inputName string, payload []byte) (json.RawMessage, error) {
	if a.APIKey == "" {
		return nil, errors.New("an API key is required for document analysis; set OPENAI_API_KEY")
	}
	if template == "" {
		return nil, errors.New("no llm-caller template configured")
	}

	dir, err := os.MkdirTemp("", "docpipe_analysis_")
	if err != nil {
		return nil, fmt.Errorf("creating analysis directory: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, inputName)
	outPath := filepath.Join(dir, "output.json")
	if err := os.WriteFile(inPath, payload, 0o600); err != nil {
		return nil, fmt.Errorf("writing analysis input: %w", err)
	}

	result, err := a.CommandManager.Run(ctx, cm.CommandConfig{
		Command: a.binary(),
		Args: []string{
			"--model", a.Model,
			"--template", template,
			"--file", inPath,
			"--output", outPath,
		},
		Env: []string{"OPENAI_API_KEY=" + a.APIKey},
	})
	if err != nil {
		return nil, fmt.Errorf("llm-caller %s failed: %w (%s)", template, err, strings.TrimSpace(result.STDERR))
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading llm-caller output: %w", err)
	}
	return extractJSON(raw), nil
}

// extractJSON pulls the first JSON object out of a model response. Models
// sometimes wrap the object in prose or code fences; when no valid object
// is found the raw response is preserved under "raw_output".
func extractJSON(response []byte) json.RawMessage {
	start := bytes.IndexByte(response, '{')
	end := bytes.LastIndexByte(response, '}')
	if start >= 0 && end > start {
		candidate := response[start : end+1]
		if json.Valid(candidate) {
			return json.RawMessage(candidate)
		}
	}

	fallback, _ := json.Marshal(map[string]string{
		"raw_output": string(response),
		"error":      "could not parse JSON from response",
	})
	return fallback
}
