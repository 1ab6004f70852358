package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/citylens-project/citylens/internal/providers"
)

func newTestClient(baseURL string) *Groq {
	return &Groq{
		apiKey:     "test-api-key",
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestExtractTextImageRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-api-key" {
			t.Errorf("unexpected Authorization header: %q", auth)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %s", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected roles: %s, %s", req.Messages[0].Role, req.Messages[1].Role)
		}

		var parts []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		}
		if err := json.Unmarshal(req.Messages[1].Content, &parts); err != nil {
			t.Fatalf("user content is not a parts array: %v", err)
		}
		if len(parts) != 2 {
			t.Fatalf("expected 2 content parts, got %d", len(parts))
		}
		if parts[0].Type != "text" || parts[0].Text != "Describe the image." {
			t.Errorf("unexpected text part: %+v", parts[0])
		}
		if parts[1].Type != "image_url" || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("expected inline jpeg data URI, got %q", parts[1].ImageURL.URL)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"title":"A","buildings":"B","description":"C"}`}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reply, err := client.ExtractText(context.Background(), providers.Config{
		Model:       "test-model",
		Temperature: 0.1,
		System:      "You are an expert at analyzing images.",
		Prompt:      "Describe the image.",
		Image:       []byte("fake jpeg data"),
	})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if !strings.Contains(reply, `"title":"A"`) {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestExtractTextAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ExtractText(context.Background(), providers.Config{
		Model:  "test-model",
		Prompt: "Describe the image.",
		Image:  []byte("fake jpeg data"),
	})
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status 401 in error, got: %v", err)
	}
}

func TestExtractTextNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ExtractText(context.Background(), providers.Config{
		Model:  "test-model",
		Prompt: "Describe the image.",
	})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_BASE_URL", "")
	if _, err := New(); err == nil {
		t.Fatal("expected error when GROQ_API_KEY is unset")
	}

	t.Setenv("GROQ_API_KEY", "key")
	client, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL, got %s", client.baseURL)
	}
}
