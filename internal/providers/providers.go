package providers

import (
	"context"
)

// Config represents one request to an LLM provider.
type Config struct {
	Model       string
	Temperature float64
	// System is the system turn fixing the assistant's role.
	System string
	// Prompt is the human turn's instruction text.
	Prompt string
	// Image holds raw JPEG bytes to embed inline with the prompt.
	// Providers that receive a nil Image send a text-only request.
	Image []byte
}

// Provider defines the interface for a multimodal LLM provider.
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
