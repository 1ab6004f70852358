package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

// HandleBatchDetail routes /api/batches/{id} and its subresources:
//
//	GET    /api/batches/{id}
//	DELETE /api/batches/{id}
//	POST   /api/batches/{id}/analyze
//	POST   /api/batches/{id}/items/{n}/analyze
//	GET    /api/batches/{id}/images/{n}
func (h *Handler) HandleBatchDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/batches/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1:
		h.handleBatch(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "analyze":
		h.handleAnalyzeBatch(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "images":
		h.handleImage(w, r, parts[0], parts[2])
	case len(parts) == 4 && parts[1] == "items" && parts[3] == "analyze":
		h.handleAnalyzeItem(w, r, parts[0], parts[2])
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	switch r.Method {
	case "GET":
		batch, exists := h.store.Get(batchID)
		if !exists {
			h.writeError(w, "Batch not found", http.StatusNotFound)
			return
		}
		h.writeJSON(w, batch)
	case "DELETE":
		h.store.Delete(batchID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func parseItemIndex(raw string) (int, bool) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
