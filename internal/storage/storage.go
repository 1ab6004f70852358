package storage

import (
	"sync"

	"github.com/citylens-project/citylens/internal/models"
)

// BatchStore holds analysis batches in process memory. Nothing is
// written to disk; batches live until deleted or the process exits.
type BatchStore struct {
	batches map[string]*models.AnalysisBatch
	mu      sync.RWMutex
}

func New() *BatchStore {
	return &BatchStore{
		batches: make(map[string]*models.AnalysisBatch),
	}
}

// Get returns a snapshot of the batch so callers can encode it without
// holding the store lock.
func (s *BatchStore) Get(batchID string) (*models.AnalysisBatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, exists := s.batches[batchID]
	if !exists {
		return nil, false
	}
	return snapshot(batch), true
}

func (s *BatchStore) Set(batchID string, batch *models.AnalysisBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batchID] = batch
}

func (s *BatchStore) GetAll() []*models.AnalysisBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.AnalysisBatch, 0, len(s.batches))
	for _, batch := range s.batches {
		result = append(result, snapshot(batch))
	}
	return result
}

func (s *BatchStore) Delete(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, batchID)
}

// UpdateItem applies update to one item of a batch under the write
// lock. Returns false if the batch or index does not exist.
func (s *BatchStore) UpdateItem(batchID string, index int, update func(item *models.ImageItem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, exists := s.batches[batchID]
	if !exists || index < 0 || index >= len(batch.Items) {
		return false
	}
	update(&batch.Items[index])
	return true
}

// ImageData returns the stored bytes and filename for one image. The
// slice is never mutated after upload, so callers may read it freely.
func (s *BatchStore) ImageData(batchID string, index int) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, exists := s.batches[batchID]
	if !exists || index < 0 || index >= len(batch.Items) {
		return nil, "", false
	}
	item := batch.Items[index]
	return item.Data, item.Filename, true
}

func snapshot(batch *models.AnalysisBatch) *models.AnalysisBatch {
	copied := *batch
	copied.Items = make([]models.ImageItem, len(batch.Items))
	copy(copied.Items, batch.Items)
	return &copied
}
