package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"promopulse/internal/dataset"
)

// Notifier pushes refresh events to connected dashboard clients. The
// websocket hub satisfies it; tests use a stub.
type Notifier interface {
	Broadcast(eventType string, data interface{})
}

// Dataset refresh event types.
const (
	EventDatasetUpdate  = "dataset:update"
	EventDatasetDeleted = "dataset:deleted"
)

// DatasetService owns the in-memory dataset registry. Stores are
// immutable once ingested; the registry map is the only guarded state.
type DatasetService struct {
	mu       sync.RWMutex
	datasets map[string]*dataset.Store

	maxRows  int
	logger   *slog.Logger
	notifier Notifier
}

// NewDatasetService creates the registry.
func NewDatasetService(maxRows int, notifier Notifier, logger *slog.Logger) *DatasetService {
	return &DatasetService{
		datasets: make(map[string]*dataset.Store),
		maxRows:  maxRows,
		logger:   logger.With(slog.String("component", "dataset_service")),
		notifier: notifier,
	}
}

// Upload ingests a CSV or XLSX file and registers the resulting store.
func (s *DatasetService) Upload(ctx context.Context, filename string, r io.Reader) (*dataset.Store, error) {
	id := uuid.New().String()

	var store *dataset.Store
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		store, err = dataset.ReadCSV(id, filename, r)
	case ".xlsx":
		store, err = dataset.ReadExcel(id, filename, r)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	if s.maxRows > 0 && store.Len() > s.maxRows {
		return nil, fmt.Errorf("dataset has %d rows, limit is %d", store.Len(), s.maxRows)
	}

	s.mu.Lock()
	s.datasets[id] = store
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset registered",
		slog.String("dataset_id", id),
		slog.String("filename", filename),
		slog.Int("rows", store.Len()),
		slog.String("kind", string(store.Schema.Kind)))

	if s.notifier != nil {
		s.notifier.Broadcast(EventDatasetUpdate, map[string]string{"dataset_id": id})
	}
	return store, nil
}

// Get returns a dataset by ID.
func (s *DatasetService) Get(id string) (*dataset.Store, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	store, ok := s.datasets[id]
	return store, ok
}

// List returns all datasets, newest first.
func (s *DatasetService) List() []*dataset.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stores := make([]*dataset.Store, 0, len(s.datasets))
	for _, store := range s.datasets {
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool {
		if stores[i].CreatedAt.Equal(stores[j].CreatedAt) {
			return stores[i].ID < stores[j].ID
		}
		return stores[i].CreatedAt.After(stores[j].CreatedAt)
	})
	return stores
}

// Delete removes a dataset. Snapshots built from it stay valid; they
// carry their own frozen copy.
func (s *DatasetService) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	_, ok := s.datasets[id]
	delete(s.datasets, id)
	s.mu.Unlock()

	if ok {
		s.logger.InfoContext(ctx, "dataset deleted", slog.String("dataset_id", id))
		if s.notifier != nil {
			s.notifier.Broadcast(EventDatasetDeleted, map[string]string{"dataset_id": id})
		}
	}
	return ok
}
