package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"promopulse/internal/analytics"
	"promopulse/internal/snapshot"
)

// Exporter writes snapshot bundles and tabular result files under a
// base directory.
type Exporter struct {
	dir string
}

// New creates an exporter rooted at dir.
func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// WriteSnapshot writes a snapshot as pretty-printed JSON and returns
// the file path.
func (e *Exporter) WriteSnapshot(snap *snapshot.Snapshot) (string, error) {
	data, err := snap.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("snapshot_%s.json", snap.ID))
	if err := e.writeFile(path, data); err != nil {
		return "", err
	}

	slog.Info("snapshot exported",
		slog.String("path", path),
		slog.Int("records", len(snap.FilteredData)))
	return path, nil
}

// WriteDistributionCSV writes one distribution as a CSV file with a
// UTF-8 BOM so Excel opens it cleanly.
func (e *Exporter) WriteDistributionCSV(name string, dist []analytics.DistributionEntry) (string, error) {
	path := filepath.Join(e.dir, name+".csv")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"name", "count", "percentage"}); err != nil {
		return "", err
	}
	for _, entry := range dist {
		row := []string{
			entry.Name,
			strconv.Itoa(entry.Value),
			strconv.FormatFloat(entry.Percentage, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

// WriteTimeSeriesCSV writes a time series, trend column included.
func (e *Exporter) WriteTimeSeriesCSV(name string, series []analytics.TimeSeriesPoint) (string, error) {
	path := filepath.Join(e.dir, name+".csv")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"bucket", "label", "count", "value", "avg_value", "trend"}); err != nil {
		return "", err
	}
	for _, p := range series {
		trend := ""
		if p.Trend != nil {
			trend = strconv.FormatFloat(*p.Trend, 'f', 4, 64)
		}
		row := []string{
			p.BucketKey,
			p.Label,
			strconv.Itoa(p.Count),
			strconv.FormatFloat(p.Value, 'f', 2, 64),
			strconv.FormatFloat(p.AvgValue, 'f', 4, 64),
			trend,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

func (e *Exporter) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
