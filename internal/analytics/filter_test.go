package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promopulse/internal/dataset"
)

// makeRecords builds records through the real ingestion path so derived
// dates behave exactly as in production.
func makeRecords(t *testing.T, headers []string, rows [][]string) []dataset.Record {
	t.Helper()
	store := dataset.NewStore("test", "test", headers, rows)
	return store.Records
}

func floatPtr(f float64) *float64 { return &f }

func TestMatchesConstraint(t *testing.T) {
	headers := []string{"receipt_date", "product_name", "chain", "age_group", "amount"}
	records := makeRecords(t, headers, [][]string{
		{"2024-03-01", "Acme Choco Bar", "Tesco", "25-34", "2.50"},
		{"2024-03-02", "Acme Choco Bites", "Asda", "35-44", "4.00"},
		{"not-a-date", "Globex Widget", "Tesco", "", "1.25"},
	})

	tests := []struct {
		name  string
		field string
		c     Constraint
		want  []string // expected product names
	}{
		{
			name:  "enum single value",
			field: "chain",
			c:     Constraint{Kind: ConstraintEnum, Values: []string{"Tesco"}},
			want:  []string{"Acme Choco Bar", "Globex Widget"},
		},
		{
			name:  "enum multiple values",
			field: "chain",
			c:     Constraint{Kind: ConstraintEnum, Values: []string{"Tesco", "Asda"}},
			want:  []string{"Acme Choco Bar", "Acme Choco Bites", "Globex Widget"},
		},
		{
			name:  "enum missing field rejects",
			field: "age_group",
			c:     Constraint{Kind: ConstraintEnum, Values: []string{"25-34", "35-44"}},
			want:  []string{"Acme Choco Bar", "Acme Choco Bites"},
		},
		{
			name:  "range min only",
			field: "amount",
			c:     Constraint{Kind: ConstraintRange, Min: floatPtr(2.0)},
			want:  []string{"Acme Choco Bar", "Acme Choco Bites"},
		},
		{
			name:  "range min and max",
			field: "amount",
			c:     Constraint{Kind: ConstraintRange, Min: floatPtr(2.0), Max: floatPtr(3.0)},
			want:  []string{"Acme Choco Bar"},
		},
		{
			name:  "date window skips unparsable",
			field: "receipt_date",
			c:     Constraint{Kind: ConstraintDate, MinDate: "2024-03-01", MaxDate: "2024-03-01"},
			want:  []string{"Acme Choco Bar"},
		},
		{
			name:  "text substring is case-insensitive",
			field: "product_name",
			c:     Constraint{Kind: ConstraintText, Substring: "choco"},
			want:  []string{"Acme Choco Bar", "Acme Choco Bites"},
		},
		{
			name:  "unknown kind matches nothing",
			field: "chain",
			c:     Constraint{Kind: "bogus"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(records, FilterSpec{tt.field: tt.c}, ExclusionConfig{}, "")
			var names []string
			for _, r := range got {
				names = append(names, r.Text("product_name"))
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestApplyANDSemantics(t *testing.T) {
	headers := []string{"receipt_date", "product_name", "chain"}
	records := makeRecords(t, headers, [][]string{
		{"2024-03-01", "Acme Choco Bar", "Tesco"},
		{"2024-03-01", "Acme Choco Bar", "Asda"},
		{"2024-03-02", "Globex Widget", "Tesco"},
	})

	spec := FilterSpec{
		"chain":        {Kind: ConstraintEnum, Values: []string{"Tesco"}},
		"product_name": {Kind: ConstraintText, Substring: "Choco"},
	}
	got := Apply(records, spec, ExclusionConfig{}, "")
	require.Len(t, got, 1)
	assert.Equal(t, "Tesco", got[0].Text("chain"))
}

// Sequential application of constraints on disjoint fields must equal
// the combined spec — callers rely on this to layer filters.
func TestApplyIdempotentComposition(t *testing.T) {
	headers := []string{"receipt_date", "product_name", "chain"}
	var rows [][]string
	chains := []string{"Tesco", "Asda", "Morrisons"}
	products := []string{"Acme Choco Bar", "Globex Widget"}
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("2024-03-%02d", i%28+1),
			products[i%len(products)],
			chains[i%len(chains)],
		})
	}
	records := makeRecords(t, headers, rows)

	f1 := FilterSpec{"chain": {Kind: ConstraintEnum, Values: []string{"Tesco", "Asda"}}}
	f2 := FilterSpec{"product_name": {Kind: ConstraintText, Substring: "Acme"}}
	combined := FilterSpec{
		"chain":        f1["chain"],
		"product_name": f2["product_name"],
	}

	sequential := Apply(Apply(records, f1, ExclusionConfig{}, ""), f2, ExclusionConfig{}, "")
	direct := Apply(records, combined, ExclusionConfig{}, "")
	assert.Equal(t, direct, sequential)

	// Adding a constraint never grows the result.
	assert.LessOrEqual(t, len(direct), len(Apply(records, f1, ExclusionConfig{}, "")))
}

func TestApplyExclusionWindows(t *testing.T) {
	headers := []string{"created_at", "offer_name"}
	rows := [][]string{
		{"2024-01-01", "Offer A"},
		{"2024-01-02", "Offer A"},
		{"2024-01-03", "Offer A"},
		{"2024-01-04", "Offer A"},
		{"2024-01-05", "Offer A"},
		// Offer B has a different, later date range.
		{"2024-02-10", "Offer B"},
		{"2024-02-11", "Offer B"},
		{"2024-02-12", "Offer B"},
	}
	records := makeRecords(t, headers, rows)

	t.Run("first days excluded per group", func(t *testing.T) {
		excl := ExclusionConfig{ExcludeFirstDays: true, ExcludeFirstCount: 1}
		got := Apply(records, nil, excl, "offer_name")
		var dates []string
		for _, r := range got {
			dates = append(dates, r.Date)
		}
		// Each offer loses its own earliest date, not a global one.
		assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-02-11", "2024-02-12"}, dates)
	})

	t.Run("last days excluded per group", func(t *testing.T) {
		excl := ExclusionConfig{ExcludeLastDays: true, ExcludeLastCount: 2}
		got := Apply(records, nil, excl, "offer_name")
		var dates []string
		for _, r := range got {
			dates = append(dates, r.Date)
		}
		assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-02-10"}, dates)
	})

	t.Run("custom dates always excluded", func(t *testing.T) {
		excl := ExclusionConfig{CustomExcludedDates: []string{"2024-01-03", "2024-02-11"}}
		got := Apply(records, nil, excl, "offer_name")
		assert.Len(t, got, 6)
		for _, r := range got {
			assert.NotEqual(t, "2024-01-03", r.Date)
			assert.NotEqual(t, "2024-02-11", r.Date)
		}
	})
}

// The guard: a group with exactly k distinct dates and a count of k (or
// more) must lose zero dates to that rule.
func TestExclusionGuard(t *testing.T) {
	headers := []string{"created_at", "offer_name"}
	rows := [][]string{
		{"2024-01-01", "Offer A"},
		{"2024-01-02", "Offer A"},
		{"2024-01-03", "Offer A"},
	}
	records := makeRecords(t, headers, rows)

	tests := []struct {
		name     string
		count    int
		expected int
	}{
		{"count below distinct dates excludes", 2, 1},
		{"count equal to distinct dates excludes none", 3, 3},
		{"count above distinct dates excludes none", 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excl := ExclusionConfig{ExcludeFirstDays: true, ExcludeFirstCount: tt.count}
			got := Apply(records, nil, excl, "offer_name")
			assert.Len(t, got, tt.expected)
		})
	}
}

func TestApplyExclusionEdgeCases(t *testing.T) {
	headers := []string{"created_at", "offer_name"}
	rows := [][]string{
		{"2024-01-01", "Offer A"},
		{"2024-01-02", "Offer A"},
		{"2024-01-03", "Offer A"},
		{"garbled", "Offer A"},
		{"2024-01-01", ""},
	}
	records := makeRecords(t, headers, rows)

	excl := ExclusionConfig{ExcludeFirstDays: true, ExcludeFirstCount: 1}
	got := Apply(records, nil, excl, "offer_name")

	var products, dates []string
	for _, r := range got {
		products = append(products, r.Text("offer_name"))
		dates = append(dates, r.Date)
	}

	// The malformed-date record survives (it cannot be excluded by a
	// date rule) and the record without a grouping key passes through
	// even though it shares the excluded date.
	assert.Contains(t, dates, "")
	assert.Contains(t, products, "")
	assert.Len(t, got, 4)
	for _, r := range got {
		if r.Text("offer_name") == "Offer A" {
			assert.NotEqual(t, "2024-01-01", r.Date)
		}
	}
}

func TestApplyEmptyInputs(t *testing.T) {
	got := Apply(nil, FilterSpec{"chain": {Kind: ConstraintEnum, Values: []string{"Tesco"}}}, ExclusionConfig{}, "chain")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
