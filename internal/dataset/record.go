package dataset

// Record is one flat event row: the original cells keyed by header name,
// plus date derivations computed once at ingestion. Records are never
// mutated after the Store is built.
type Record struct {
	Fields map[string]Value `json:"fields"`

	// Derived from the schema's date field at ingest time. Date is the
	// normalized YYYY-MM-DD form, empty when the cell was missing or
	// unparsable. Hour is -1 when the source carried no time component.
	Date    string `json:"date,omitempty"`
	Month   string `json:"month,omitempty"`
	Weekday string `json:"weekday,omitempty"`
	Hour    int    `json:"hour"`
}

// Get returns the value for a field, null when absent.
func (r Record) Get(field string) Value {
	if v, ok := r.Fields[field]; ok {
		return v
	}
	return Null()
}

// Text returns the trimmed string form of a field, "" when missing.
func (r Record) Text(field string) string {
	return r.Get(field).Text()
}

// Float returns the numeric form of a field and whether one exists.
func (r Record) Float(field string) (float64, bool) {
	return r.Get(field).Float()
}

// HasDate reports whether ingestion derived a calendar date for the row.
func (r Record) HasDate() bool {
	return r.Date != ""
}
