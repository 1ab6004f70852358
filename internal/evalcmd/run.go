package evalcmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/citylens-project/citylens/internal/analysis"
	"github.com/citylens-project/citylens/internal/config"
	"github.com/citylens-project/citylens/internal/eval/dataset"
	"github.com/citylens-project/citylens/internal/eval/metrics"
	"github.com/citylens-project/citylens/internal/eval/results"
	"github.com/citylens-project/citylens/internal/models"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the eval run command
func NewRunCmd() *cobra.Command {
	var datasetPath string
	var provider string
	var model string
	var sampleSize int
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an extraction accuracy evaluation",
		Long: `Runs the extraction pipeline over a labeled dataset (Parquet or JSONL)
and scores each extracted field against ground truth using normalized
Levenshtein similarity. Results are aggregated and written as YAML.`,
		Example: `  citylens eval run --dataset labels.parquet
  citylens eval run --dataset labels.jsonl --provider gemini --sample 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
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

			slog.Info("Loading dataset", "path", datasetPath)
			records, err := dataset.NewLoader(datasetPath).Load()
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			if sampleSize > 0 && sampleSize < len(records) {
				records = records[:sampleSize]
			}
			slog.Info("Dataset loaded", "records", len(records))

			evalResults := make([]metrics.EvaluationResult, 0, len(records))
			for i, record := range records {
				slog.Info("Evaluating image", "path", record.ImagePath, "progress", fmt.Sprintf("%d/%d", i+1, len(records)))
				evalResults = append(evalResults, evaluateRecord(cmd, analyzer, record))
			}

			agg := metrics.AggregateEvaluationResults(evalResults, cfg.Provider, cfg.Model)
			printSummary(agg)

			path, err := results.SaveToYAML(cfg.Provider, cfg.Model, datasetPath, cfg.Temperature, outputDir, evalResults)
			if err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}
			fmt.Printf("\nResults saved to: %s\n", path)

			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to labeled dataset (.parquet or .jsonl)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: groq, openai, ollama, or gemini")
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Evaluate only the first N records (0 = all)")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for YAML results")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func evaluateRecord(cmd *cobra.Command, analyzer *analysis.Service, record dataset.LabeledImage) metrics.EvaluationResult {
	result := metrics.EvaluationResult{
		ImagePath: record.ImagePath,
		Expected: models.Record{
			Title:       record.Title,
			Buildings:   record.Buildings,
			Description: record.Description,
		},
	}

	start := time.Now()
	defer func() { result.ProcessingTime = time.Since(start) }()

	data, err := os.ReadFile(record.ImagePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image: %v", err)
		return result
	}

	extracted, err := analyzer.AnalyzeImage(cmd.Context(), data)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Extracted = extracted
	result.Comparison = metrics.CompareRecords(result.Expected, *extracted)
	return result
}

func printSummary(agg *metrics.AggregateResults) {
	fmt.Printf("\nEvaluation summary (%s / %s)\n", agg.Provider, agg.Model)
	fmt.Printf("  Records:     %d (%d ok, %d failed)\n", agg.TotalRecords, agg.SuccessCount, agg.FailureCount)
	fmt.Printf("  Overall:     %.1f%%\n", agg.OverallAccuracy*100)
	fmt.Printf("  Title:       %.1f%% (%d exact, %d fuzzy)\n", agg.TitleAccuracy.AverageScore*100, agg.TitleAccuracy.ExactMatches, agg.TitleAccuracy.FuzzyMatches)
	fmt.Printf("  Buildings:   %.1f%% (%d exact, %d fuzzy)\n", agg.BuildingsAccuracy.AverageScore*100, agg.BuildingsAccuracy.ExactMatches, agg.BuildingsAccuracy.FuzzyMatches)
	fmt.Printf("  Description: %.1f%% (%d exact, %d fuzzy)\n", agg.DescriptionAccuracy.AverageScore*100, agg.DescriptionAccuracy.ExactMatches, agg.DescriptionAccuracy.FuzzyMatches)
	fmt.Printf("  Avg time:    %s\n", agg.AverageProcessingTime.Round(time.Millisecond))
}
