package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/citylens-project/citylens/internal/models"
)

// FieldComparison holds the comparison outcome for a single field
type FieldComparison struct {
	FieldName string
	Expected  string
	Actual    string
	Score     float64
	Distance  int
	Match     string
	Notes     string
}

// RecordComparison holds the field-by-field comparison of one record
type RecordComparison struct {
	Fields           map[string]FieldComparison
	OverallScore     float64
	LevenshteinTotal int
	FieldsMatched    int
	FieldsMissing    int
	FieldsIncorrect  int
}

// CompareRecords performs field-by-field comparison using Levenshtein distance
func CompareRecords(expected, actual models.Record) *RecordComparison {
	comparison := &RecordComparison{
		Fields: make(map[string]FieldComparison),
	}

	fields := []struct {
		name     string
		expected string
		actual   string
	}{
		{"title", expected.Title, actual.Title},
		{"buildings", expected.Buildings, actual.Buildings},
		{"description", expected.Description, actual.Description},
	}

	totalScore := 0.0
	for _, f := range fields {
		comp := compareField(f.name, f.expected, f.actual)
		comparison.Fields[f.name] = comp
		totalScore += comp.Score
		comparison.LevenshteinTotal += comp.Distance

		switch {
		case comp.Score > 0.8:
			comparison.FieldsMatched++
		case f.actual == "":
			comparison.FieldsMissing++
		default:
			comparison.FieldsIncorrect++
		}
	}

	comparison.OverallScore = totalScore / float64(len(fields))
	return comparison
}

// compareField compares a single field using Levenshtein distance
func compareField(fieldName, expected, actual string) FieldComparison {
	comp := FieldComparison{
		FieldName: fieldName,
		Expected:  expected,
		Actual:    actual,
	}

	// Normalize for comparison
	expNorm := normalizeText(expected)
	actNorm := normalizeText(actual)

	// Handle empty fields
	if expNorm == "" && actNorm == "" {
		comp.Score = 0.5
		comp.Match = "both_empty"
		comp.Notes = "Both fields are empty"
		return comp
	}

	if expNorm == "" {
		comp.Distance = len(actNorm)
		comp.Match = "no_reference"
		comp.Notes = "No reference value (ground truth missing)"
		return comp
	}

	if actNorm == "" {
		comp.Distance = len(expNorm)
		comp.Match = "missing"
		comp.Notes = "Field missing from extracted record"
		return comp
	}

	distance := levenshteinDistance(expNorm, actNorm)
	comp.Distance = distance

	if expNorm == actNorm {
		comp.Score = 1.0
		comp.Match = "exact"
		comp.Notes = "Exact match"
		return comp
	}

	maxLen := max(len(expNorm), len(actNorm))
	similarity := 1.0 - (float64(distance) / float64(maxLen))
	comp.Score = similarity

	// Classify match quality
	if similarity > 0.9 {
		comp.Match = "fuzzy_high"
	} else if similarity > 0.7 {
		comp.Match = "fuzzy_medium"
	} else if similarity > 0.5 {
		comp.Match = "fuzzy_low"
	} else {
		comp.Match = "no_match"
	}
	comp.Notes = fmt.Sprintf("Similarity %.1f%%, Levenshtein: %d", similarity*100, distance)

	return comp
}

// normalizeText normalizes text for comparison
func normalizeText(text string) string {
	text = strings.ToLower(text)

	// Remove extra whitespace
	text = strings.Join(strings.Fields(text), " ")

	// Remove common punctuation for comparison
	re := regexp.MustCompile(`[^\w\s]`)
	text = re.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	if len(s1) == 0 {
		return len(s2)
	}

	if len(s2) == 0 {
		return len(s1)
	}

	rows := len(s1) + 1
	cols := len(s2) + 1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
	}

	for i := 0; i < rows; i++ {
		matrix[i][0] = i
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost

			matrix[i][j] = min(deletion, min(insertion, substitution))
		}
	}

	return matrix[rows-1][cols-1]
}
