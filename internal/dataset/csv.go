package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// utf8BOM marks the byte-order prefix Excel prepends to CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV ingests a CSV export into a Store. The first row is the
// header; ragged rows are tolerated (short rows leave trailing fields
// missing, long rows drop the excess).
func ReadCSV(id, name string, r io.Reader) (*Store, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv content: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	headers := rows[0]
	data := rows[1:]

	store := NewStore(id, name, headers, data)
	slog.Info("csv dataset ingested",
		slog.String("dataset", name),
		slog.Int("rows", store.Len()),
		slog.String("kind", string(store.Schema.Kind)))
	return store, nil
}
