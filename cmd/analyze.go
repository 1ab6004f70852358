package cmd

import (
	"fmt"
	"os"

	"github.com/citylens-project/citylens/internal/analysis"
	"github.com/citylens-project/citylens/internal/config"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var provider string
	var model string
	var configPath string

	cmd := &cobra.Command{
		Use:   "analyze <image.jpg>...",
		Short: "Analyze JPEG files from the command line",
		Long: `Analyzes one or more JPEG files sequentially and prints the extracted
title, buildings, and description for each. A failure on one file does
not stop the remaining files from being analyzed.`,
		Example: `  citylens analyze skyline.jpg
  citylens analyze --provider gemini --model gemini-2.0-flash *.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if provider != "" {
				cfg.Provider = provider
			}
			if model != "" {
				cfg.Model = model
			}

			analyzer, err := analysis.NewServiceFromConfig(cfg)
			if err != nil {
				return err
			}

			failures := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Printf("%s\n  error: %v\n\n", path, err)
					failures++
					continue
				}

				record, err := analyzer.AnalyzeImage(cmd.Context(), data)
				if err != nil {
					fmt.Printf("%s\n  error: %v\n\n", path, err)
					failures++
					continue
				}

				fmt.Printf("%s\n  Title:       %s\n  Buildings:   %s\n  Description: %s\n\n",
					path, record.Title, record.Buildings, record.Description)
			}

			if failures == len(args) {
				return fmt.Errorf("all %d images failed to analyze", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: groq, openai, ollama, or gemini (overrides config)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}
