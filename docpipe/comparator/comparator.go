// Package comparator implements the strict document comparison: exact
// content equality plus a display-oriented unified diff.
package comparator

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// maxDiffLines bounds the rendered diff; full diffs of large OCR output are
// not useful for display.
const maxDiffLines = 100

// Result describes the outcome of comparing two markdown files.
type Result struct {
	Identical     bool
	Lines1        int
	Lines2        int
	LineDelta     int
	Diff          string
	DiffTruncated bool
}

// Compare reads both files and compares their contents exactly. When they
// differ it also produces line statistics and a unified diff limited to
// maxDiffLines lines.
func Compare(path1, path2 string) (*Result, error) {
	c1, err := os.ReadFile(path1)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path1, err)
	}
	c2, err := os.ReadFile(path2)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path2, err)
	}

	result := &Result{Identical: string(c1) == string(c2)}
	if result.Identical {
		return result, nil
	}

	lines1 := difflib.SplitLines(string(c1))
	lines2 := difflib.SplitLines(string(c2))
	result.Lines1 = len(lines1)
	result.Lines2 = len(lines2)
	result.LineDelta = abs(len(lines1) - len(lines2))

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        lines1,
		B:        lines2,
		FromFile: path1,
		ToFile:   path2,
		Context:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	diffLines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	if len(diffLines) > maxDiffLines {
		omitted := len(diffLines) - maxDiffLines
		diffLines = append(diffLines[:maxDiffLines],
			fmt.Sprintf("... and %d more lines", omitted))
		result.DiffTruncated = true
	}
	result.Diff = strings.Join(diffLines, "\n")

	return result, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
