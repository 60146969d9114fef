package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cm "github.com/docpipeops/docpipe/docpipe/commandmanager"
)

// DoclingConverter invokes the docling CLI to convert PDFs and images to
// markdown.
type DoclingConverter struct {
	CommandManager cm.CommandManager

	// Binary overrides the docling executable, defaulting to "docling".
	Binary string
}

func (dc *DoclingConverter) Name() string {
	return "docling"
}

func (dc *DoclingConverter) binary() string {
	if dc.Binary != "" {
		return dc.Binary
	}
	return "docling"
}

func (dc *DoclingConverter) IsAvailable(ctx context.Context) bool {
	_, err := dc.CommandManager.Run(ctx, cm.CommandConfig{
		Command: dc.binary(),
		Args:    []string{"--version"},
	})
	return err == nil
}

// Convert runs docling on sourcePath and moves the produced markdown to
// outMDPath. Docling writes <stem>.md into the chosen output directory, so
// conversion targets the destination directory and renames afterwards.
func (dc *DoclingConverter) Convert(ctx context.Context, sourcePath, outMDPath string) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("input not found: %s", sourcePath)
	}

	outDir := filepath.Dir(outMDPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	env, err := CacheEnv()
	if err != nil {
		return fmt.Errorf("preparing OCR cache: %w", err)
	}

	result, err := dc.CommandManager.Run(ctx, cm.CommandConfig{
		Command: dc.binary(),
		Args:    []string{"--to", "md", "--output", outDir, sourcePath},
		Env:     env,
	})
	if err != nil {
		return fmt.Errorf("docling conversion of %s failed: %w (%s)", sourcePath, err, strings.TrimSpace(result.STDERR))
	}

	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	produced := filepath.Join(outDir, stem+".md")
	if produced != outMDPath {
		if err := os.Rename(produced, outMDPath); err != nil {
			return fmt.Errorf("collecting docling output: %w", err)
		}
	}

	content, err := os.ReadFile(outMDPath)
	if err != nil {
		return fmt.Errorf("reading docling output: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return fmt.Errorf("docling produced empty output for %s", sourcePath)
	}

	return nil
}
