package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docpipeops/docpipe/docpipe/analyzer"
	"github.com/docpipeops/docpipe/docpipe/commandmanager"
	"github.com/docpipeops/docpipe/docpipe/comparator"
	"github.com/docpipeops/docpipe/docpipe/config"
)

func newAnalyzeCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "analyze <doc1.md> <doc2.md>",
		Short: "Run LLM analysis on a converted markdown pair",
		Long: `analyze formats both markdown documents into structured JSON through
the llm-caller tool, reviews the pair for discrepancies and writes a
compliance report alongside the formatted documents.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if apiKey != "" {
				if err := os.Setenv("OPENAI_API_KEY", apiKey); err != nil {
					return err
				}
			}

			md1, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			md2, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			comparison, err := comparator.Compare(args[0], args[1])
			if err != nil {
				return err
			}

			processor := analyzer.NewProcessor(buildAnalyzer(cfg), logger)
			report, err := processor.FullPipeline(cmd.Context(), string(md1), string(md2), comparison)
			if err != nil {
				return err
			}

			saved, err := analyzer.SaveReport(report, cfg.Output.Dir)
			if err != nil {
				return err
			}
			for _, path := range saved {
				fmt.Printf("analysis: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the model provider (default $OPENAI_API_KEY)")

	return cmd
}

// buildAnalyzer wires the llm-caller analyzer. Like conversion it always
// runs on a local command manager because it exchanges files with the
// local filesystem.
func buildAnalyzer(cfg *config.Config) *analyzer.LLMCallerAnalyzer {
	return &analyzer.LLMCallerAnalyzer{
		CommandManager:     &commandmanager.UnixCommandManager{},
		Binary:             cfg.Analyze.Binary,
		Model:              cfg.Analyze.Model,
		FormatTemplate:     cfg.Analyze.FormatTemplate,
		ComplianceTemplate: cfg.Analyze.ComplianceTemplate,
		APIKey:             os.Getenv("OPENAI_API_KEY"),
	}
}

// runAnalysis reads the converted markdown files and runs the full
// analysis over them, saving the report next to the pipeline outputs.
func runAnalysis(ctx context.Context, cfg *config.Config, mdPath1, mdPath2 string, comparison *comparator.Result) (map[string]string, error) {
	md1, err := os.ReadFile(mdPath1)
	if err != nil {
		return nil, err
	}
	md2, err := os.ReadFile(mdPath2)
	if err != nil {
		return nil, err
	}

	processor := analyzer.NewProcessor(buildAnalyzer(cfg), logger)
	report, err := processor.FullPipeline(ctx, string(md1), string(md2), comparison)
	if err != nil {
		return nil, err
	}
	return analyzer.SaveReport(report, cfg.Output.Dir)
}
