// Package textfilter holds the post-OCR cleanup passes: Arabic-range
// stripping and order-preserving line deduplication.
package textfilter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// arabicRanges covers the basic block, supplement, extended block and both
// presentation-form blocks.
var arabicRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0600, Hi: 0x06FF, Stride: 1},
		{Lo: 0x0750, Hi: 0x077F, Stride: 1},
		{Lo: 0x08A0, Hi: 0x08FF, Stride: 1},
		{Lo: 0xFB50, Hi: 0xFDFF, Stride: 1},
		{Lo: 0xFE70, Hi: 0xFEFF, Stride: 1},
	},
}

// StripArabic removes Arabic-range characters, a readability pass for
// mixed-script OCR output.
func StripArabic(content string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(arabicRanges, r) {
			return -1
		}
		return r
	}, content)
}

// DedupLines drops repeated lines while preserving first-occurrence order.
func DedupLines(content string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// StripArabicFile applies StripArabic to a file, writing the result to
// outPath with a trailing newline.
func StripArabicFile(inPath, outPath string) error {
	return filterFile(inPath, outPath, StripArabic)
}

// DedupLinesFile applies DedupLines to a file, writing the result to
// outPath with a trailing newline.
func DedupLinesFile(inPath, outPath string) error {
	return filterFile(inPath, outPath, DedupLines)
}

func filterFile(inPath, outPath string, filter func(string) string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	filtered := strings.TrimSuffix(filter(string(content)), "\n") + "\n"
	if err := os.WriteFile(outPath, []byte(filtered), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}
