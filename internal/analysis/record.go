package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/citylens-project/citylens/internal/models"
)

// ParseRecord parses a model reply into a Record, enforcing the schema:
// a JSON object with exactly the keys title, buildings, and description,
// each a string. Anything else is a validation failure, never a partial
// record.
func ParseRecord(reply string) (*models.Record, error) {
	cleaned := stripCodeFences(reply)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var fields struct {
		Title       *string `json:"title"`
		Buildings   *string `json:"buildings"`
		Description *string `json:"description"`
	}

	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("response is not a valid record object: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("response contains trailing data after the record object")
	}

	if fields.Title == nil {
		return nil, fmt.Errorf("response is missing required key %q", "title")
	}
	if fields.Buildings == nil {
		return nil, fmt.Errorf("response is missing required key %q", "buildings")
	}
	if fields.Description == nil {
		return nil, fmt.Errorf("response is missing required key %q", "description")
	}

	return &models.Record{
		Title:       *fields.Title,
		Buildings:   *fields.Buildings,
		Description: *fields.Description,
	}, nil
}

// stripCodeFences trims markdown code fences some models wrap their
// JSON reply in.
func stripCodeFences(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	return strings.TrimSpace(reply)
}
