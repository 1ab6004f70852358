package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
)

// handleImage serves the stored original bytes of one uploaded image.
// The bytes are held immutably in memory, so the preview here and the
// model submission read the same full buffer independently.
func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request, batchID, rawIndex string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	index, ok := parseItemIndex(rawIndex)
	if !ok {
		h.writeError(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	data, filename, ok := h.store.ImageData(batchID, index)
	if !ok || len(data) == 0 {
		h.writeError(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write image response", "filename", filename, "err", err)
	}
}
