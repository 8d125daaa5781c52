package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promopulse/internal/analytics"
	"promopulse/internal/exporter"
)

type stubNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *stubNotifier) Broadcast(eventType string, _ interface{}) {
	n.mu.Lock()
	n.events = append(n.events, eventType)
	n.mu.Unlock()
}

func (n *stubNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

const sampleCSV = `receipt_date,product_name,chain,amount,gender,age_group
2024-03-01,Acme Cola Zero,Tesco,2.50,Female,25-34
2024-03-01,Acme Cola Classic,Asda,2.00,Male,35-44
2024-03-02,Acme Cola Zero,Tesco,2.50,Female,25-34
2024-03-03,Brewster Lager,Tesco,4.00,Male,25-34
2024-03-03,Acme Cola Zero,Morrisons,2.50,Female,45-54
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDatasetService_UploadAndGet(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewDatasetService(0, notifier, testLogger())

	store, err := svc.Upload(context.Background(), "march.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, "receipt_date", store.Schema.DateField)

	got, ok := svc.Get(store.ID)
	require.True(t, ok)
	assert.Same(t, store, got)

	assert.Contains(t, notifier.Events(), EventDatasetUpdate)
}

func TestDatasetService_UploadRejectsUnsupportedType(t *testing.T) {
	svc := NewDatasetService(0, nil, testLogger())

	_, err := svc.Upload(context.Background(), "data.pdf", strings.NewReader("not a dataset"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestDatasetService_UploadEnforcesRowLimit(t *testing.T) {
	svc := NewDatasetService(2, nil, testLogger())

	_, err := svc.Upload(context.Background(), "march.csv", strings.NewReader(sampleCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 2")
}

func TestDatasetService_Delete(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewDatasetService(0, notifier, testLogger())

	store, err := svc.Upload(context.Background(), "march.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.True(t, svc.Delete(context.Background(), store.ID))
	assert.False(t, svc.Delete(context.Background(), store.ID))
	_, ok := svc.Get(store.ID)
	assert.False(t, ok)
	assert.Contains(t, notifier.Events(), EventDatasetDeleted)
}

func TestAnalyticsService_Query(t *testing.T) {
	datasets := NewDatasetService(0, nil, testLogger())
	store, err := datasets.Upload(context.Background(), "march.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	svc := NewAnalyticsService(testLogger())

	result, err := svc.Query(context.Background(), store, QueryRequest{
		Filters: analytics.FilterSpec{
			"chain": {Kind: analytics.ConstraintEnum, Values: []string{"Tesco"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRecords)
	assert.Equal(t, 3, result.MatchedCount)
	assert.Equal(t, 3, result.Metrics.TotalUnits)

	require.NotEmpty(t, result.Retailers)
	assert.Equal(t, "Tesco", result.Retailers[0].Name)
	assert.Equal(t, 3, result.Retailers[0].Value)

	// Brand detection runs over the full catalog, not the filtered rows.
	assert.Contains(t, result.BrandNames, "Acme Cola")

	// Daily granularity by default: three distinct Tesco dates.
	assert.Len(t, result.TimeSeries, 3)
}

func TestAnalyticsService_QueryRejectsBadGranularity(t *testing.T) {
	datasets := NewDatasetService(0, nil, testLogger())
	store, err := datasets.Upload(context.Background(), "march.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	svc := NewAnalyticsService(testLogger())
	_, err = svc.Query(context.Background(), store, QueryRequest{Granularity: "fortnightly"})
	require.Error(t, err)
}

func TestSnapshotService_CreateReplayExport(t *testing.T) {
	datasets := NewDatasetService(0, nil, testLogger())
	store, err := datasets.Upload(context.Background(), "march.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	notifier := &stubNotifier{}
	svc := NewSnapshotService(exporter.New(t.TempDir()), testLogger(), notifier)

	snap, err := svc.Create(context.Background(), store, SnapshotRequest{
		ClientName: "Acme Beverages",
		Filters: analytics.FilterSpec{
			"chain": {Kind: analytics.ConstraintEnum, Values: []string{"Tesco"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Beverages", snap.ClientName)
	assert.Len(t, snap.FilteredData, 3)
	assert.Contains(t, notifier.Events(), EventSnapshotCreated)

	summaries := svc.List()
	require.Len(t, summaries, 1)
	assert.Equal(t, snap.ID, summaries[0].ID)
	assert.Equal(t, 5, summaries[0].RecordCount)
	assert.Equal(t, 3, summaries[0].FilteredSize)

	require.NoError(t, svc.Replay(context.Background(), snap.ID))

	paths, err := svc.Export(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestSnapshotService_ReplayUnknownID(t *testing.T) {
	svc := NewSnapshotService(exporter.New(t.TempDir()), testLogger(), nil)
	err := svc.Replay(context.Background(), "missing")
	require.Error(t, err)
}

func TestSnapshotService_Delete(t *testing.T) {
	datasets := NewDatasetService(0, nil, testLogger())
	store, err := datasets.Upload(context.Background(), "march.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	svc := NewSnapshotService(exporter.New(t.TempDir()), testLogger(), nil)
	snap, err := svc.Create(context.Background(), store, SnapshotRequest{ClientName: "Acme"})
	require.NoError(t, err)

	assert.True(t, svc.Delete(context.Background(), snap.ID))
	assert.False(t, svc.Delete(context.Background(), snap.ID))
	_, ok := svc.Get(snap.ID)
	assert.False(t, ok)
}
