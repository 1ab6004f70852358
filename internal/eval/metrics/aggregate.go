package metrics

import (
	"time"

	"github.com/citylens-project/citylens/internal/models"
)

// EvaluationResult represents the results for a single image evaluation
type EvaluationResult struct {
	ImagePath      string
	Expected       models.Record
	Extracted      *models.Record
	Comparison     *RecordComparison
	ProcessingTime time.Duration
	Error          string // If extraction failed
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	// Field-level statistics
	TitleAccuracy       FieldStats
	BuildingsAccuracy   FieldStats
	DescriptionAccuracy FieldStats

	// Overall
	OverallAccuracy float64

	// Timing
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	// Detailed results
	Results []EvaluationResult

	// Metadata
	EvaluationDate time.Time
	Provider       string
	Model          string
	SampleSize     int
}

// FieldStats contains statistics for a specific record field
type FieldStats struct {
	ExactMatches  int
	FuzzyMatches  int
	NoMatches     int
	MissingFields int
	AverageScore  float64
	Scores        []float64
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
		SampleSize:     len(results),
	}

	totalOverallScore := 0.0
	var totalDuration time.Duration

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++

		if result.Comparison == nil {
			continue
		}

		aggregateFieldStats(&agg.TitleAccuracy, result.Comparison.Fields["title"])
		aggregateFieldStats(&agg.BuildingsAccuracy, result.Comparison.Fields["buildings"])
		aggregateFieldStats(&agg.DescriptionAccuracy, result.Comparison.Fields["description"])

		totalOverallScore += result.Comparison.OverallScore
	}

	if agg.SuccessCount > 0 {
		agg.TitleAccuracy.AverageScore = calculateAverage(agg.TitleAccuracy.Scores)
		agg.BuildingsAccuracy.AverageScore = calculateAverage(agg.BuildingsAccuracy.Scores)
		agg.DescriptionAccuracy.AverageScore = calculateAverage(agg.DescriptionAccuracy.Scores)
		agg.OverallAccuracy = totalOverallScore / float64(agg.SuccessCount)
	}

	agg.TotalProcessingTime = totalDuration
	if len(results) > 0 {
		agg.AverageProcessingTime = totalDuration / time.Duration(len(results))
	}

	return agg
}

func aggregateFieldStats(stats *FieldStats, comp FieldComparison) {
	stats.Scores = append(stats.Scores, comp.Score)

	switch comp.Match {
	case "exact":
		stats.ExactMatches++
	case "fuzzy_high", "fuzzy_medium", "fuzzy_low":
		stats.FuzzyMatches++
	case "missing":
		stats.MissingFields++
	default:
		stats.NoMatches++
	}
}

func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0.0
	for _, score := range scores {
		total += score
	}
	return total / float64(len(scores))
}
