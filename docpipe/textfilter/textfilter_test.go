package textfilter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripArabic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "mixed script line",
			input:    "Invoice مرحبا Total: 42",
			expected: "Invoice  Total: 42",
		},
		{
			name:     "no arabic",
			input:    "plain ascii text",
			expected: "plain ascii text",
		},
		{
			name:     "presentation forms",
			input:    "xﭐﹰy",
			expected: "xy",
		},
		{
			name:     "supplement and extended blocks",
			input:    "aݐࢠb",
			expected: "ab",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripArabic(tt.input))
		})
	}
}

func TestDedupLines(t *testing.T) {
	input := "header\nbody\nheader\nbody\nfooter"
	assert.Equal(t, "header\nbody\nfooter", DedupLines(input))
}

func TestDedupLinesPreservesFirstOccurrenceOrder(t *testing.T) {
	input := "b\na\nb\nc\na"
	assert.Equal(t, "b\na\nc", DedupLines(input))
}

func TestDedupLinesKeepsDistinctBlanks(t *testing.T) {
	// Blank lines dedup like any other line: only the first survives.
	input := "a\n\nb\n\nc"
	assert.Equal(t, "a\n\nb\nc", DedupLines(input))
}

func TestFilterFiles(t *testing.T) {
	tmpDir := t.TempDir()
	in := filepath.Join(tmpDir, "in.md")
	assert.NoError(t, os.WriteFile(in, []byte("line مرحبا one\nline مرحبا one\n"), 0o644))

	stripped := filepath.Join(tmpDir, "in_filtered.md")
	assert.NoError(t, StripArabicFile(in, stripped))
	content, err := os.ReadFile(stripped)
	assert.NoError(t, err)
	assert.Equal(t, "line  one\nline  one\n", string(content))

	deduped := filepath.Join(tmpDir, "in_unique.md")
	assert.NoError(t, DedupLinesFile(stripped, deduped))
	content, err = os.ReadFile(deduped)
	assert.NoError(t, err)
	assert.Equal(t, "line  one\n", string(content))
}

func TestFilterFileMissingInput(t *testing.T) {
	err := StripArabicFile("/nonexistent/in.md", filepath.Join(t.TempDir(), "out.md"))
	assert.Error(t, err)
}
