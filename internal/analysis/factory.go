package analysis

import (
	"fmt"

	"github.com/citylens-project/citylens/internal/config"
	"github.com/citylens-project/citylens/internal/gemini"
	"github.com/citylens-project/citylens/internal/groq"
	"github.com/citylens-project/citylens/internal/ollama"
	"github.com/citylens-project/citylens/internal/openai"
	"github.com/citylens-project/citylens/internal/providers"
)

// NewProvider constructs the named provider. Credential checks happen
// here, so a missing API key surfaces at startup rather than on the
// first upload.
func NewProvider(name string) (providers.Provider, error) {
	switch name {
	case "groq":
		return groq.New()
	case "openai":
		return openai.New()
	case "ollama":
		return ollama.New()
	case "gemini":
		return gemini.New()
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// NewServiceFromConfig builds the extraction service for the configured
// provider, model, temperature, and timeout.
func NewServiceFromConfig(cfg *config.Config) (*Service, error) {
	provider, err := NewProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return NewService(provider, cfg.Model, cfg.Temperature, cfg.Timeout()), nil
}
