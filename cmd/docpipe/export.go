package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docpipeops/docpipe/docpipe/exporter"
)

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <file.md>",
		Short: "Export a markdown file as a JSON line array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := outPath
			if target == "" {
				target = strings.TrimSuffix(args[0], ".md") + ".json"
			}

			if err := exporter.MarkdownToJSON(args[0], target); err != nil {
				return err
			}

			fmt.Println(target)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output JSON path (default input with .json extension)")

	return cmd
}
