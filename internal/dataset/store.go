package dataset

import (
	"log/slog"
	"strings"
	"time"
)

// Store is the immutable, ordered record sequence for one ingested
// dataset. Nothing mutates it after NewStore returns; every engine
// operation takes the records as input and builds fresh output.
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Schema    Schema    `json:"schema"`
	Records   []Record  `json:"records"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStore builds a Store from a header row and raw cell rows: detects
// the schema, converts cells to typed values, and computes the per-row
// date derivations once.
func NewStore(id, name string, headers []string, rows [][]string) *Store {
	schema := DetectSchema(headers)

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = normalizeHeader(h)
	}

	records := make([]Record, 0, len(rows))
	malformed := 0
	for _, row := range rows {
		rec := Record{Fields: make(map[string]Value, len(keys)), Hour: -1}
		for i, key := range keys {
			if key == "" || i >= len(row) {
				continue
			}
			if v := Parse(row[i]); !v.IsEmpty() {
				rec.Fields[key] = v
			}
		}
		if schema.DateField != "" {
			raw := rec.Text(schema.DateField)
			if t, ok := ParseDate(raw); ok {
				rec.Date = t.Format("2006-01-02")
				rec.Month = t.Format("2006-01")
				rec.Weekday = t.Weekday().String()
				if strings.Contains(raw, ":") {
					rec.Hour = t.Hour()
				}
			} else if raw != "" {
				malformed++
			}
		}
		records = append(records, rec)
	}

	if malformed > 0 {
		slog.Warn("dataset rows with unparsable dates retained without date derivations",
			slog.String("dataset", name),
			slog.String("date_field", schema.DateField),
			slog.Int("rows", malformed))
	}

	return &Store{
		ID:        id,
		Name:      name,
		Schema:    schema,
		Records:   records,
		CreatedAt: time.Now().UTC(),
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.Records)
}

// ProductNames returns the distinct product names in first-seen order.
func (s *Store) ProductNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range s.Records {
		name := r.Text(s.Schema.ProductField)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
