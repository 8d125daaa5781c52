package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"promopulse/internal/analytics"
	"promopulse/internal/dataset"
	"promopulse/internal/exporter"
	"promopulse/internal/snapshot"
)

// Snapshot lifecycle events pushed to websocket clients.
const (
	EventSnapshotCreated = "snapshot:created"
	EventSnapshotDeleted = "snapshot:deleted"
)

// SnapshotRequest configures one snapshot build.
type SnapshotRequest struct {
	ClientName  string                    `json:"client_name" validate:"required,max=200"`
	Filters     analytics.FilterSpec      `json:"filters"`
	Exclusions  analytics.ExclusionConfig `json:"exclusions"`
	Granularity analytics.Granularity     `json:"granularity" validate:"omitempty,oneof=hourly daily weekly monthly"`
	TrendWindow int                       `json:"trend_window" validate:"gte=0,lte=90"`
}

// SnapshotSummary is the list-view projection of a snapshot; the full
// record bundle is only returned when a single snapshot is fetched.
type SnapshotSummary struct {
	ID           string `json:"id"`
	ClientName   string `json:"client_name"`
	DatasetID    string `json:"dataset_id"`
	DatasetName  string `json:"dataset_name"`
	CreatedAt    string `json:"created_at"`
	RecordCount  int    `json:"record_count"`
	FilteredSize int    `json:"filtered_size"`
}

// SnapshotService builds, stores, verifies, and exports snapshots.
type SnapshotService struct {
	mu        sync.RWMutex
	snapshots map[string]*snapshot.Snapshot

	exporter *exporter.Exporter
	logger   *slog.Logger
	notifier Notifier
}

// NewSnapshotService creates the service. notifier may be nil.
func NewSnapshotService(exp *exporter.Exporter, logger *slog.Logger, notifier Notifier) *SnapshotService {
	return &SnapshotService{
		snapshots: make(map[string]*snapshot.Snapshot),
		exporter:  exp,
		logger:    logger.With(slog.String("component", "snapshot_service")),
		notifier:  notifier,
	}
}

// Create builds a snapshot from a live store and registers it.
func (s *SnapshotService) Create(ctx context.Context, store *dataset.Store, req SnapshotRequest) (*snapshot.Snapshot, error) {
	granularity := req.Granularity
	if granularity == "" {
		granularity = analytics.GranularityDaily
	}
	if !granularity.Valid() {
		return nil, fmt.Errorf("invalid granularity: %s", granularity)
	}

	snap := snapshot.Build(store, req.Filters, req.Exclusions, granularity, req.TrendWindow, req.ClientName)

	s.mu.Lock()
	s.snapshots[snap.ID] = snap
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "snapshot created",
		slog.String("snapshot_id", snap.ID),
		slog.String("client", snap.ClientName),
		slog.Int("filtered", len(snap.FilteredData)))

	if s.notifier != nil {
		s.notifier.Broadcast(EventSnapshotCreated, map[string]interface{}{
			"id":          snap.ID,
			"client_name": snap.ClientName,
			"dataset_id":  snap.DatasetID,
		})
	}
	return snap, nil
}

// Get returns one snapshot by ID.
func (s *SnapshotService) Get(id string) (*snapshot.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	return snap, ok
}

// List returns summaries of all snapshots, newest first.
func (s *SnapshotService) List() []SnapshotSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SnapshotSummary, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, SnapshotSummary{
			ID:           snap.ID,
			ClientName:   snap.ClientName,
			DatasetID:    snap.DatasetID,
			DatasetName:  snap.DatasetName,
			CreatedAt:    snap.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			RecordCount:  len(snap.SalesData),
			FilteredSize: len(snap.FilteredData),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes a snapshot.
func (s *SnapshotService) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	_, ok := s.snapshots[id]
	if ok {
		delete(s.snapshots, id)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.logger.InfoContext(ctx, "snapshot deleted", slog.String("snapshot_id", id))
	if s.notifier != nil {
		s.notifier.Broadcast(EventSnapshotDeleted, map[string]interface{}{"id": id})
	}
	return true
}

// Replay re-runs the filter engine against the snapshot's embedded raw
// records and reports whether it reproduces the stored results.
func (s *SnapshotService) Replay(ctx context.Context, id string) error {
	snap, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("snapshot %s not found", id)
	}
	if err := snapshot.Verify(snap); err != nil {
		s.logger.WarnContext(ctx, "snapshot replay diverged",
			slog.String("snapshot_id", id),
			slog.String("error", err.Error()))
		return err
	}
	s.logger.InfoContext(ctx, "snapshot replay verified", slog.String("snapshot_id", id))
	return nil
}

// Export writes the snapshot JSON plus its distribution and time series
// CSVs to the export directory and returns the written paths.
func (s *SnapshotService) Export(ctx context.Context, id string) ([]string, error) {
	snap, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("snapshot %s not found", id)
	}

	var paths []string
	p, err := s.exporter.WriteSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	paths = append(paths, p)

	p, err = s.exporter.WriteDistributionCSV(snap.ID+"_retailers", snap.RetailerDistribution)
	if err != nil {
		return nil, fmt.Errorf("export retailer distribution: %w", err)
	}
	paths = append(paths, p)

	p, err = s.exporter.WriteTimeSeriesCSV(snap.ID+"_series", snap.TimeSeries)
	if err != nil {
		return nil, fmt.Errorf("export time series: %w", err)
	}
	paths = append(paths, p)

	s.logger.InfoContext(ctx, "snapshot exported",
		slog.String("snapshot_id", id),
		slog.Int("files", len(paths)))
	return paths, nil
}
