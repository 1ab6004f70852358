package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/citylens-project/citylens/internal/models"
	"github.com/citylens-project/citylens/internal/providers"
)

const (
	systemPrompt = "You are an expert at analyzing images. " +
		"Extract the title, buildings, and a description from the image. " +
		"Respond with a JSON object with the following keys: title, buildings, description. " +
		"For each key (title, buildings, description) you only give a single short line of text. " +
		"You never use nested JSON objects."

	userPrompt = "Describe the image."
)

// Service runs the per-image extraction pipeline: encode, prompt build,
// model call, parse and validate. It is constructed once at startup and
// shared read-only across requests.
type Service struct {
	provider    providers.Provider
	model       string
	temperature float64
	timeout     time.Duration
}

// NewService creates an extraction service backed by the given provider.
func NewService(provider providers.Provider, model string, temperature float64, timeout time.Duration) *Service {
	return &Service{
		provider:    provider,
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Model returns the configured model name.
func (s *Service) Model() string {
	return s.model
}

// AnalyzeImage submits one JPEG image to the model and returns the
// validated record, or an *Error tagged with the failure kind.
func (s *Service) AnalyzeImage(ctx context.Context, image []byte) (*models.Record, error) {
	if len(image) == 0 {
		return nil, decodeError(fmt.Errorf("image is empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		System:      systemPrompt,
		Prompt:      userPrompt,
		Image:       image,
	})
	if err != nil {
		return nil, invocationError(err)
	}

	record, err := ParseRecord(reply)
	if err != nil {
		slog.Warn("Model reply failed schema validation", "err", err, "reply_length", len(reply))
		return nil, validationError(err)
	}

	slog.Info("Image analyzed", "model", s.model, "duration", time.Since(start), "title", record.Title)
	return record, nil
}
