package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/citylens-project/citylens/internal/providers"
)

type fakeProvider struct {
	reply      string
	err        error
	lastConfig providers.Config
}

func (f *fakeProvider) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	f.lastConfig = config
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAnalyzeImageSuccess(t *testing.T) {
	provider := &fakeProvider{reply: `{"title":"A","buildings":"B","description":"C"}`}
	service := NewService(provider, "test-model", 0.1, time.Second)

	record, err := service.AnalyzeImage(context.Background(), []byte("jpeg bytes"))
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if record.Title != "A" || record.Buildings != "B" || record.Description != "C" {
		t.Errorf("unexpected record: %+v", record)
	}

	if provider.lastConfig.Model != "test-model" {
		t.Errorf("expected model test-model, got %s", provider.lastConfig.Model)
	}
	if string(provider.lastConfig.Image) != "jpeg bytes" {
		t.Error("expected full image bytes to reach the provider")
	}
	if !strings.Contains(provider.lastConfig.System, "title, buildings, description") {
		t.Errorf("system prompt missing schema keys: %q", provider.lastConfig.System)
	}
	if provider.lastConfig.Prompt != "Describe the image." {
		t.Errorf("unexpected user prompt: %q", provider.lastConfig.Prompt)
	}
}

func TestAnalyzeImageFailureKinds(t *testing.T) {
	tests := []struct {
		name     string
		image    []byte
		provider *fakeProvider
		wantKind FailureKind
	}{
		{
			name:     "transport failure",
			image:    []byte("img"),
			provider: &fakeProvider{err: fmt.Errorf("connection refused")},
			wantKind: FailureInvocation,
		},
		{
			name:     "non-json reply",
			image:    []byte("img"),
			provider: &fakeProvider{reply: "a lovely building"},
			wantKind: FailureValidation,
		},
		{
			name:     "schema mismatch",
			image:    []byte("img"),
			provider: &fakeProvider{reply: `{"title":"A"}`},
			wantKind: FailureValidation,
		},
		{
			name:     "empty image",
			image:    nil,
			provider: &fakeProvider{reply: `{"title":"A","buildings":"B","description":"C"}`},
			wantKind: FailureDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(tt.provider, "test-model", 0.1, time.Second)
			_, err := service.AnalyzeImage(context.Background(), tt.image)
			if err == nil {
				t.Fatal("expected error")
			}

			var analysisErr *Error
			if !errors.As(err, &analysisErr) {
				t.Fatalf("expected *analysis.Error, got %T", err)
			}
			if analysisErr.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, analysisErr.Kind)
			}
		})
	}
}

func TestAnalyzeImageTimeout(t *testing.T) {
	provider := &slowProvider{delay: 100 * time.Millisecond}
	service := NewService(provider, "test-model", 0.1, 10*time.Millisecond)

	_, err := service.AnalyzeImage(context.Background(), []byte("img"))
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var analysisErr *Error
	if !errors.As(err, &analysisErr) || analysisErr.Kind != FailureInvocation {
		t.Errorf("expected model_invocation failure, got %v", err)
	}
}

type slowProvider struct {
	delay time.Duration
}

func (s *slowProvider) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	select {
	case <-time.After(s.delay):
		return `{"title":"A","buildings":"B","description":"C"}`, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
