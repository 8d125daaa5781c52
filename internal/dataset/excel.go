package dataset

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// ReadExcel ingests an XLSX export into a Store. The first sheet is
// used; its first row is the header.
func ReadExcel(id, name string, r io.Reader) (*Store, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	store := NewStore(id, name, rows[0], rows[1:])
	slog.Info("excel dataset ingested",
		slog.String("dataset", name),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", store.Len()),
		slog.String("kind", string(store.Schema.Kind)))
	return store, nil
}
