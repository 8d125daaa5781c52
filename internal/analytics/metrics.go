package analytics

import (
	"sort"
	"time"

	"promopulse/internal/dataset"
)

// ComputeMetrics derives the summary statistics for a record
// subsequence. DaysInRange is the inclusive calendar span between the
// earliest and latest parseable dates; records without dates still
// count toward TotalUnits and TotalValue.
func ComputeMetrics(records []dataset.Record, amountField string) Metrics {
	m := Metrics{
		TotalUnits:  len(records),
		UniqueDates: []string{},
	}

	seen := make(map[string]bool)
	for _, r := range records {
		m.TotalValue += amount(r, amountField)
		if r.HasDate() && !seen[r.Date] {
			seen[r.Date] = true
			m.UniqueDates = append(m.UniqueDates, r.Date)
		}
	}
	sort.Strings(m.UniqueDates)

	if len(m.UniqueDates) > 0 {
		first, _ := time.Parse("2006-01-02", m.UniqueDates[0])
		last, _ := time.Parse("2006-01-02", m.UniqueDates[len(m.UniqueDates)-1])
		m.DaysInRange = int(last.Sub(first).Hours()/24) + 1
	}
	if m.DaysInRange > 0 {
		m.AvgPerDay = float64(m.TotalUnits) / float64(m.DaysInRange)
	}

	return m
}
