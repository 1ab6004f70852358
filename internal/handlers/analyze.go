package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/citylens-project/citylens/internal/analysis"
	"github.com/citylens-project/citylens/internal/models"
)

// handleAnalyzeBatch runs the extraction pipeline over every pending
// item of the batch, strictly in upload order. One item's failure never
// aborts the rest.
func (h *Handler) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	batch, exists := h.store.Get(batchID)
	if !exists {
		h.writeError(w, "Batch not found", http.StatusNotFound)
		return
	}

	for _, item := range batch.Items {
		if item.Status != models.StatusPending {
			continue
		}
		h.analyzeItem(r.Context(), batchID, item.Index)
	}

	updated, _ := h.store.Get(batchID)
	h.writeJSON(w, updated)
}

// handleAnalyzeItem runs the extraction pipeline for a single item. The
// UI calls this once per image, one at a time, in upload order.
func (h *Handler) handleAnalyzeItem(w http.ResponseWriter, r *http.Request, batchID, rawIndex string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	index, ok := parseItemIndex(rawIndex)
	if !ok {
		h.writeError(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	batch, exists := h.store.Get(batchID)
	if !exists || index >= len(batch.Items) {
		h.writeError(w, "Item not found", http.StatusNotFound)
		return
	}

	// pending -> (success | failure) is terminal; re-analyzing a settled
	// item just returns its current state.
	if batch.Items[index].Status == models.StatusPending {
		h.analyzeItem(r.Context(), batchID, index)
	}

	updated, _ := h.store.Get(batchID)
	h.writeJSON(w, updated.Items[index])
}

func (h *Handler) analyzeItem(ctx context.Context, batchID string, index int) {
	data, filename, ok := h.store.ImageData(batchID, index)
	if !ok {
		return
	}

	record, err := h.analyzer.AnalyzeImage(ctx, data)
	if err != nil {
		slog.Error("Image analysis failed", "batch_id", batchID, "filename", filename, "err", err)
		h.store.UpdateItem(batchID, index, func(item *models.ImageItem) {
			item.Status = models.StatusFailed
			item.Error = fmt.Sprintf("Failed to analyze %q: %v", filename, err)
			item.ErrorKind = failureKind(err)
		})
		return
	}

	h.store.UpdateItem(batchID, index, func(item *models.ImageItem) {
		item.Status = models.StatusSuccess
		item.Record = record
	})
}

func failureKind(err error) string {
	var analysisErr *analysis.Error
	if errors.As(err, &analysisErr) {
		return string(analysisErr.Kind)
	}
	return string(analysis.FailureInvocation)
}
