package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/citylens-project/citylens/internal/analysis"
	"github.com/citylens-project/citylens/internal/config"
	"github.com/citylens-project/citylens/internal/storage"
)

type Handler struct {
	store    *storage.BatchStore
	analyzer *analysis.Service
	cfg      *config.Config
}

func New(store *storage.BatchStore, analyzer *analysis.Service, cfg *config.Config) *Handler {
	return &Handler{
		store:    store,
		analyzer: analyzer,
		cfg:      cfg,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// HandleConfig exposes the UI-relevant settings to the client.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, map[string]any{
		"grid_columns": h.cfg.GridColumns,
		"provider":     h.cfg.Provider,
		"model":        h.cfg.Model,
	})
}
