package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/citylens-project/citylens/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	ImagePath        string             `yaml:"imagepath"`
	ExpectedTitle    string             `yaml:"expectedtitle"`
	ExtractedTitle   string             `yaml:"extractedtitle,omitempty"`
	Error            string             `yaml:"error,omitempty"`
	OverallScore     float64            `yaml:"overallscore"`
	LevenshteinTotal int                `yaml:"levenshteintotal"`
	FieldsMatched    int                `yaml:"fieldsmatched"`
	FieldsMissing    int                `yaml:"fieldsmissing"`
	FieldsIncorrect  int                `yaml:"fieldsincorrect"`
	FieldScores      map[string]float64 `yaml:"fieldscores,omitempty"`
}

// EvalSpec represents the complete evaluation output
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML saves evaluation results to a timestamped YAML file in the
// output directory and returns the written path.
func SaveToYAML(provider, model, datasetPath string, temperature float64, outputDir string, results []metrics.EvaluationResult) (string, error) {
	if outputDir == "" {
		outputDir = "evals"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	spec := EvalSpec{
		Config: EvalConfig{
			Provider:    provider,
			Model:       model,
			Temperature: temperature,
			DatasetPath: datasetPath,
			SampleSize:  len(results),
			Timestamp:   timestamp,
		},
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		evalResult := EvalResult{
			ImagePath:     r.ImagePath,
			ExpectedTitle: r.Expected.Title,
			Error:         r.Error,
		}
		if r.Extracted != nil {
			evalResult.ExtractedTitle = r.Extracted.Title
		}

		if r.Comparison != nil {
			evalResult.OverallScore = r.Comparison.OverallScore
			evalResult.LevenshteinTotal = r.Comparison.LevenshteinTotal
			evalResult.FieldsMatched = r.Comparison.FieldsMatched
			evalResult.FieldsMissing = r.Comparison.FieldsMissing
			evalResult.FieldsIncorrect = r.Comparison.FieldsIncorrect

			evalResult.FieldScores = make(map[string]float64)
			for name, match := range r.Comparison.Fields {
				evalResult.FieldScores[name] = match.Score
			}
		}

		spec.Results = append(spec.Results, evalResult)
	}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("eval_%s_%s.yaml", provider, timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results file: %w", err)
	}

	return path, nil
}
