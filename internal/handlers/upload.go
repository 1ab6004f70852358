package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/citylens-project/citylens/internal/analysis"
	"github.com/citylens-project/citylens/internal/models"
	"github.com/google/uuid"
)

// HandleBatches lists batches (GET) or creates a batch from a multipart
// upload of JPEG files (POST).
func (h *Handler) HandleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.store.GetAll())
	case "POST":
		h.handleCreateBatch(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.writeError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	batchID := uuid.NewString()
	batch := &models.AnalysisBatch{
		ID:        batchID,
		Items:     make([]models.ImageItem, 0, len(files)),
		Provider:  h.cfg.Provider,
		Model:     h.cfg.Model,
		CreatedAt: time.Now(),
	}

	// Each file becomes one item in upload order. A bad file only fails
	// its own item; the rest of the batch is still ingested.
	for i, header := range files {
		item := models.ImageItem{
			Index:    i,
			Filename: header.Filename,
			ImageURL: fmt.Sprintf("/api/batches/%s/images/%d", batchID, i),
			Status:   models.StatusPending,
		}

		data, err := h.readUploadedFile(header)
		if err != nil {
			item.Status = models.StatusFailed
			item.Error = fmt.Sprintf("%s: %v", header.Filename, err)
			item.ErrorKind = string(analysis.FailureDecode)
			batch.Items = append(batch.Items, item)
			continue
		}

		item.Data = data
		item.Size = len(data)

		// Dimension probe only; corrupt JPEGs still flow downstream and
		// surface as a per-image analysis error.
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			slog.Warn("Failed to decode image dimensions", "filename", header.Filename, "err", err)
		} else {
			item.ImageWidth = cfg.Width
			item.ImageHeight = cfg.Height
		}

		batch.Items = append(batch.Items, item)
	}

	h.store.Set(batchID, batch)
	slog.Info("Batch created", "batch_id", batchID, "images", len(batch.Items))

	created, _ := h.store.Get(batchID)
	h.writeJSON(w, created)
}

func (h *Handler) readUploadedFile(header *multipart.FileHeader) ([]byte, error) {
	if !isJPEGFilename(header.Filename) {
		return nil, fmt.Errorf("only JPEG files are accepted")
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	maxBytes := h.cfg.MaxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file too large (max %dMB)", h.cfg.MaxUploadMB)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	return data, nil
}

func isJPEGFilename(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
