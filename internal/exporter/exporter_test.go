package exporter

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promopulse/internal/analytics"
	"promopulse/internal/dataset"
	"promopulse/internal/snapshot"
)

func TestWriteSnapshot(t *testing.T) {
	store := dataset.NewStore("ds", "t.csv",
		[]string{"receipt_date", "product_name", "chain"},
		[][]string{{"2024-03-01", "Acme Bar", "Tesco"}})
	snap := snapshot.Build(store, nil, analytics.ExclusionConfig{}, analytics.GranularityDaily, 7, "client")

	e := New(t.TempDir())
	path, err := e.WriteSnapshot(snap)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := snapshot.Load(data)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, loaded.ID)
	assert.NoError(t, snapshot.Verify(loaded))
}

func TestWriteDistributionCSV(t *testing.T) {
	e := New(t.TempDir())
	path, err := e.WriteDistributionCSV("retailers", []analytics.DistributionEntry{
		{Name: "Tesco", Value: 3, Percentage: 75},
		{Name: "Asda", Value: 1, Percentage: 25},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "expected UTF-8 BOM")
	assert.Contains(t, content, "Tesco,3,75.00")
}

func TestWriteTimeSeriesCSV(t *testing.T) {
	trend := 2.5
	e := New(t.TempDir())
	path, err := e.WriteTimeSeriesCSV("daily", []analytics.TimeSeriesPoint{
		{BucketKey: "2024-03-01", Label: "Mar 01, 2024", Count: 2, Value: 5},
		{BucketKey: "2024-03-02", Label: "Mar 02, 2024", Count: 3, Value: 6, Trend: &trend},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], ",2,5.00,")
	assert.Contains(t, lines[2], "2.5000")
}
