package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/citylens-project/citylens/internal/analysis"
	"github.com/citylens-project/citylens/internal/config"
	"github.com/citylens-project/citylens/internal/models"
	"github.com/citylens-project/citylens/internal/providers"
	"github.com/citylens-project/citylens/internal/storage"
)

// scriptedProvider fails for images whose bytes contain "boom" and
// otherwise replies with a fixed valid record.
type scriptedProvider struct {
	calls int
}

func (p *scriptedProvider) ExtractText(ctx context.Context, cfg providers.Config) (string, error) {
	p.calls++
	if bytes.Contains(cfg.Image, []byte("boom")) {
		return "", fmt.Errorf("connection reset by peer")
	}
	if bytes.Contains(cfg.Image, []byte("garbled")) {
		return "not json at all", nil
	}
	return `{"title":"A","buildings":"B","description":"C"}`, nil
}

func newTestHandler(provider providers.Provider) *Handler {
	cfg := config.Default()
	analyzer := analysis.NewService(provider, cfg.Model, cfg.Temperature, time.Second)
	return New(storage.New(), analyzer, cfg)
}

func uploadRequest(t *testing.T, files map[string][]byte, order []string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range order {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(files[name]); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/batches", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func createBatch(t *testing.T, h *Handler, files map[string][]byte, order []string) models.AnalysisBatch {
	t.Helper()

	w := httptest.NewRecorder()
	h.HandleBatches(w, uploadRequest(t, files, order))
	if w.Code != http.StatusOK {
		t.Fatalf("upload returned status %d: %s", w.Code, w.Body.String())
	}

	var batch models.AnalysisBatch
	if err := json.Unmarshal(w.Body.Bytes(), &batch); err != nil {
		t.Fatalf("failed to decode batch: %v", err)
	}
	return batch
}

func TestUploadPreservesOrder(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	files := map[string][]byte{
		"one.jpg":   []byte("image one"),
		"two.jpeg":  []byte("image two"),
		"three.jpg": []byte("image three"),
	}
	order := []string{"one.jpg", "two.jpeg", "three.jpg"}

	batch := createBatch(t, h, files, order)

	if len(batch.Items) != len(order) {
		t.Fatalf("expected %d items, got %d", len(order), len(batch.Items))
	}
	for i, name := range order {
		item := batch.Items[i]
		if item.Filename != name {
			t.Errorf("item %d: expected filename %s, got %s", i, name, item.Filename)
		}
		if item.Index != i {
			t.Errorf("item %d: expected index %d, got %d", i, i, item.Index)
		}
		if item.Status != models.StatusPending {
			t.Errorf("item %d: expected pending, got %s", i, item.Status)
		}
	}
}

func TestUploadRejectsEmpty(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	w := httptest.NewRecorder()
	h.HandleBatches(w, uploadRequest(t, nil, nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty upload, got %d", w.Code)
	}
}

func TestUploadRejectsNonJPEGPerItem(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	files := map[string][]byte{
		"good.jpg":  []byte("fine"),
		"notes.txt": []byte("not an image"),
	}
	batch := createBatch(t, h, files, []string{"good.jpg", "notes.txt"})

	if batch.Items[0].Status != models.StatusPending {
		t.Errorf("expected good.jpg pending, got %s", batch.Items[0].Status)
	}
	if batch.Items[1].Status != models.StatusFailed {
		t.Errorf("expected notes.txt failed, got %s", batch.Items[1].Status)
	}
	if batch.Items[1].ErrorKind != string(analysis.FailureDecode) {
		t.Errorf("expected image_decode kind, got %s", batch.Items[1].ErrorKind)
	}
	if !strings.Contains(batch.Items[1].Error, "notes.txt") {
		t.Errorf("error should name the file: %q", batch.Items[1].Error)
	}
}

func TestImageBytesReadableTwice(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	original := []byte("full original jpeg payload")
	batch := createBatch(t, h, map[string][]byte{"a.jpg": original}, []string{"a.jpg"})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/batches/%s/images/0", batch.ID), nil)
		w := httptest.NewRecorder()
		h.HandleBatchDetail(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("read %d: status %d", i+1, w.Code)
		}
		got, _ := io.ReadAll(w.Body)
		if !bytes.Equal(got, original) {
			t.Errorf("read %d: bytes do not match original", i+1)
		}
	}
}

func TestAnalyzeItemSuccess(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	batch := createBatch(t, h, map[string][]byte{"a.jpg": []byte("ok")}, []string{"a.jpg"})

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/batches/%s/items/0/analyze", batch.ID), nil)
	w := httptest.NewRecorder()
	h.HandleBatchDetail(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze returned status %d: %s", w.Code, w.Body.String())
	}

	var item models.ImageItem
	if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}
	if item.Status != models.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", item.Status, item.Error)
	}
	if item.Record == nil || item.Record.Title != "A" || item.Record.Buildings != "B" || item.Record.Description != "C" {
		t.Errorf("unexpected record: %+v", item.Record)
	}
}

func TestAnalyzeItemIsTerminal(t *testing.T) {
	provider := &scriptedProvider{}
	h := newTestHandler(provider)
	batch := createBatch(t, h, map[string][]byte{"a.jpg": []byte("ok")}, []string{"a.jpg"})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/batches/%s/items/0/analyze", batch.ID), nil)
		w := httptest.NewRecorder()
		h.HandleBatchDetail(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("analyze returned status %d", w.Code)
		}
	}

	if provider.calls != 1 {
		t.Errorf("expected 1 model call for a settled item, got %d", provider.calls)
	}
}

func TestAnalyzeBatchFailureIndependence(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	files := map[string][]byte{
		"first.jpg":  []byte("fine"),
		"second.jpg": []byte("boom"),
		"third.jpg":  []byte("garbled"),
		"fourth.jpg": []byte("fine too"),
	}
	order := []string{"first.jpg", "second.jpg", "third.jpg", "fourth.jpg"}
	batch := createBatch(t, h, files, order)

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/batches/%s/analyze", batch.ID), nil)
	w := httptest.NewRecorder()
	h.HandleBatchDetail(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze returned status %d: %s", w.Code, w.Body.String())
	}

	var updated models.AnalysisBatch
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode batch: %v", err)
	}

	expectations := []struct {
		status models.ItemStatus
		kind   string
	}{
		{models.StatusSuccess, ""},
		{models.StatusFailed, string(analysis.FailureInvocation)},
		{models.StatusFailed, string(analysis.FailureValidation)},
		{models.StatusSuccess, ""},
	}
	for i, want := range expectations {
		item := updated.Items[i]
		if item.Status != want.status {
			t.Errorf("item %d (%s): expected %s, got %s (%s)", i, item.Filename, want.status, item.Status, item.Error)
		}
		if item.ErrorKind != want.kind {
			t.Errorf("item %d (%s): expected kind %q, got %q", i, item.Filename, want.kind, item.ErrorKind)
		}
		if want.status == models.StatusFailed && !strings.Contains(item.Error, item.Filename) {
			t.Errorf("item %d: failure message should include filename, got %q", i, item.Error)
		}
	}
}

func TestBatchLifecycle(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	batch := createBatch(t, h, map[string][]byte{"a.jpg": []byte("ok")}, []string{"a.jpg"})

	// List
	w := httptest.NewRecorder()
	h.HandleBatches(w, httptest.NewRequest("GET", "/api/batches", nil))
	var batches []models.AnalysisBatch
	if err := json.Unmarshal(w.Body.Bytes(), &batches); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}

	// Detail
	w = httptest.NewRecorder()
	h.HandleBatchDetail(w, httptest.NewRequest("GET", "/api/batches/"+batch.ID, nil))
	if w.Code != http.StatusOK {
		t.Errorf("detail returned status %d", w.Code)
	}

	// Delete
	w = httptest.NewRecorder()
	h.HandleBatchDetail(w, httptest.NewRequest("DELETE", "/api/batches/"+batch.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("delete returned status %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HandleBatchDetail(w, httptest.NewRequest("GET", "/api/batches/"+batch.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestHandleConfig(t *testing.T) {
	h := newTestHandler(&scriptedProvider{})
	w := httptest.NewRecorder()
	h.HandleConfig(w, httptest.NewRequest("GET", "/api/config", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("config returned status %d", w.Code)
	}

	var cfg struct {
		GridColumns int `json:"grid_columns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg.GridColumns != 4 {
		t.Errorf("expected 4 grid columns, got %d", cfg.GridColumns)
	}
}
