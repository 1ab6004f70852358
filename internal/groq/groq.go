package groq

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/citylens-project/citylens/internal/providers"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Groq is a provider for the Groq API (OpenAI-compatible chat completions).
type Groq struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New returns a new Groq provider. The API key is read from the
// environment once at construction so a missing credential fails at
// startup rather than on the first upload.
func New() (*Groq, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	baseURL := os.Getenv("GROQ_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Groq{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}, nil
}

// ExtractText sends the two-turn conversation to the Groq chat
// completions API, embedding the image as an inline data URI.
func (g *Groq) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	messages := []map[string]any{
		{
			"role":    "system",
			"content": config.System,
		},
	}

	if len(config.Image) > 0 {
		base64Image := base64.StdEncoding.EncodeToString(config.Image)
		messages = append(messages, map[string]any{
			"role": "user",
			"content": []map[string]any{
				{
					"type": "text",
					"text": config.Prompt,
				},
				{
					"type": "image_url",
					"image_url": map[string]string{
						"url": "data:image/jpeg;base64," + base64Image,
					},
				},
			},
		})
	} else {
		messages = append(messages, map[string]any{
			"role":    "user",
			"content": config.Prompt,
		})
	}

	requestBody, err := json.Marshal(map[string]any{
		"model":       config.Model,
		"messages":    messages,
		"temperature": config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from Groq")
	}

	return response.Choices[0].Message.Content, nil
}
