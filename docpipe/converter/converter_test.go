package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	cm "github.com/docpipeops/docpipe/docpipe/commandmanager"
)

// MockCommandManager records invocations and lets tests hook command
// execution, standing in for the docling binary.
type MockCommandManager struct {
	Err   error
	OnRun func(config cm.CommandConfig)
	Calls []cm.CommandConfig
}

func (m *MockCommandManager) run(config cm.CommandConfig) (cm.CommandResult, error) {
	m.Calls = append(m.Calls, config)
	if m.OnRun != nil {
		m.OnRun(config)
	}
	return cm.CommandResult{}, m.Err
}

func (m *MockCommandManager) RunLocal(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.run(config)
}

func (m *MockCommandManager) RunRemote(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.run(config)
}

func (m *MockCommandManager) Run(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.run(config)
}

func TestDoclingConvert(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "scan.pdf")
	assert.NoError(t, os.WriteFile(source, []byte("%PDF-1.4"), 0o644))

	outDir := filepath.Join(tmpDir, "outputs")
	outPath := filepath.Join(outDir, "doc1.md")

	mockCmd := &MockCommandManager{
		OnRun: func(config cm.CommandConfig) {
			// docling writes <stem>.md into the output directory
			produced := filepath.Join(outDir, "scan.md")
			_ = os.WriteFile(produced, []byte("# Scanned Document\n"), 0o644)
		},
	}
	dc := &DoclingConverter{CommandManager: mockCmd}

	err := dc.Convert(context.Background(), source, outPath)
	assert.NoError(t, err)

	content, err := os.ReadFile(outPath)
	assert.NoError(t, err)
	assert.Equal(t, "# Scanned Document\n", string(content))

	if assert.Len(t, mockCmd.Calls, 1) {
		call := mockCmd.Calls[0]
		assert.Equal(t, "docling", call.Command)
		assert.Equal(t, []string{"--to", "md", "--output", outDir, source}, call.Args)

		env := strings.Join(call.Env, " ")
		assert.Contains(t, env, "RAPIDOCR_HOME=")
		assert.Contains(t, env, "HF_HOME=")
	}
}

func TestDoclingConvertMissingInput(t *testing.T) {
	dc := &DoclingConverter{CommandManager: &MockCommandManager{}}

	err := dc.Convert(context.Background(), "/nonexistent/input.pdf", filepath.Join(t.TempDir(), "out.md"))
	assert.ErrorContains(t, err, "input not found")
}

func TestDoclingConvertCommandFailure(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "scan.pdf")
	assert.NoError(t, os.WriteFile(source, []byte("%PDF-1.4"), 0o644))

	mockCmd := &MockCommandManager{Err: errors.New("exit status 1")}
	dc := &DoclingConverter{CommandManager: mockCmd}

	err := dc.Convert(context.Background(), source, filepath.Join(tmpDir, "out.md"))
	assert.ErrorContains(t, err, "docling conversion")
}

func TestDoclingConvertEmptyOutput(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "scan.pdf")
	assert.NoError(t, os.WriteFile(source, []byte("%PDF-1.4"), 0o644))
	outPath := filepath.Join(tmpDir, "scan.md")

	mockCmd := &MockCommandManager{
		OnRun: func(config cm.CommandConfig) {
			_ = os.WriteFile(outPath, []byte("  \n"), 0o644)
		},
	}
	dc := &DoclingConverter{CommandManager: mockCmd}

	err := dc.Convert(context.Background(), source, outPath)
	assert.ErrorContains(t, err, "empty output")
}

func TestTextConverter(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "notes.md")
	assert.NoError(t, os.WriteFile(source, []byte("# Notes\n"), 0o644))

	outPath := filepath.Join(tmpDir, "out", "notes.md")
	tc := &TextConverter{}

	assert.True(t, tc.IsAvailable(context.Background()))
	assert.NoError(t, tc.Convert(context.Background(), source, outPath))

	content, err := os.ReadFile(outPath)
	assert.NoError(t, err)
	assert.Equal(t, "# Notes\n", string(content))
}

func TestForFile(t *testing.T) {
	ocr := &DoclingConverter{}

	assert.Equal(t, "text", ForFile("report.md", ocr).Name())
	assert.Equal(t, "text", ForFile("report.TXT", ocr).Name())
	assert.Equal(t, "docling", ForFile("report.pdf", ocr).Name())
	assert.Equal(t, "docling", ForFile("scan.png", ocr).Name())
}

func TestCacheEnv(t *testing.T) {
	env, err := CacheEnv()
	assert.NoError(t, err)
	assert.Len(t, env, 3)

	for _, entry := range env {
		parts := strings.SplitN(entry, "=", 2)
		assert.Len(t, parts, 2)
		assert.NotEmpty(t, parts[1])
	}
}
