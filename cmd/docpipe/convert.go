package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a document to filtered markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			runner := buildRunner(cfg)
			result, err := runner.ProcessDocument(cmd.Context(), args[0], label)
			if err != nil {
				return err
			}

			fmt.Println(result.Markdown)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "doc1", "Label used in output filenames")

	return cmd
}
