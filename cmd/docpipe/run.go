package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		noStripArabic bool
		noDedup       bool
		analyze       bool
	)

	cmd := &cobra.Command{
		Use:   "run <doc1> <doc2>",
		Short: "Run the full pipeline on a document pair",
		Long: `run converts both documents to markdown, applies the text filters,
compares the results and exports both as JSON.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			runner := buildRunner(cfg)
			runner.StripArabic = !noStripArabic
			runner.Dedup = !noDedup

			result, err := runner.RunPair(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("markdown: %s, %s\n", result.Doc1.Markdown, result.Doc2.Markdown)
			fmt.Printf("json: %s, %s\n", result.JSON1, result.JSON2)

			if result.Comparison.Identical {
				fmt.Println("OK: documents are identical")
			} else {
				fmt.Printf("WARN: documents differ (%d vs %d lines)\n",
					result.Comparison.Lines1, result.Comparison.Lines2)
			}

			if analyze {
				saved, err := runAnalysis(cmd.Context(), cfg,
					result.Doc1.Markdown, result.Doc2.Markdown, result.Comparison)
				if err != nil {
					return err
				}
				for _, path := range saved {
					fmt.Printf("analysis: %s\n", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noStripArabic, "no-strip-arabic", false, "Skip the Arabic character filter")
	cmd.Flags().BoolVar(&noDedup, "no-dedup", false, "Skip line deduplication")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Run LLM document analysis on the converted pair")

	return cmd
}
