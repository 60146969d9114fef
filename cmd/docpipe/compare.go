package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docpipeops/docpipe/docpipe/comparator"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a.md> <b.md>",
		Short: "Compare two markdown files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := comparator.Compare(args[0], args[1])
			if err != nil {
				return err
			}

			if result.Identical {
				fmt.Println("OK: documents are identical")
				return nil
			}

			fmt.Println("WARN: documents differ")
			fmt.Printf("doc1: %d lines, doc2: %d lines, difference: %d lines\n",
				result.Lines1, result.Lines2, result.LineDelta)
			fmt.Println(result.Diff)
			return nil
		},
	}
}
