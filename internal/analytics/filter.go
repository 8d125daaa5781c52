package analytics

import (
	"sort"
	"strings"

	"promopulse/internal/dataset"
)

// Apply evaluates a FilterSpec over records and then applies the
// exclusion windows per groupField partition. Records lacking a value
// for groupField pass through exclusion untouched; records lacking a
// parseable date can never be excluded by a date rule.
//
// Passing an empty groupField treats the whole match set as a single
// partition.
func Apply(records []dataset.Record, spec FilterSpec, excl ExclusionConfig, groupField string) []dataset.Record {
	matched := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if matchesSpec(r, spec) {
			matched = append(matched, r)
		}
	}

	if !excl.Active() {
		return matched
	}
	return applyExclusions(matched, excl, groupField)
}

// matchesSpec reports whether a record satisfies every constraint.
func matchesSpec(r dataset.Record, spec FilterSpec) bool {
	for field, c := range spec {
		if !matchesConstraint(r, field, c) {
			return false
		}
	}
	return true
}

func matchesConstraint(r dataset.Record, field string, c Constraint) bool {
	v := r.Get(field)

	switch c.Kind {
	case ConstraintEnum:
		if v.IsEmpty() {
			return false
		}
		text := v.Text()
		for _, allowed := range c.Values {
			if text == allowed {
				return true
			}
		}
		return false

	case ConstraintRange:
		f, ok := v.Float()
		if !ok {
			return false
		}
		if c.Min != nil && f < *c.Min {
			return false
		}
		if c.Max != nil && f > *c.Max {
			return false
		}
		return true

	case ConstraintDate:
		t, ok := dataset.ParseDate(v.Text())
		if !ok {
			return false
		}
		day := t.Format("2006-01-02")
		if c.MinDate != "" && day < c.MinDate {
			return false
		}
		if c.MaxDate != "" && day > c.MaxDate {
			return false
		}
		return true

	case ConstraintText:
		if v.IsEmpty() {
			return false
		}
		return strings.Contains(strings.ToLower(v.Text()), strings.ToLower(c.Substring))
	}

	// Unknown constraint kinds never match anything; a typo in a spec
	// should surface as an empty result, not a silent pass.
	return false
}

// applyExclusions partitions records by groupField and drops records
// whose derived date falls in their partition's exclusion set.
func applyExclusions(records []dataset.Record, excl ExclusionConfig, groupField string) []dataset.Record {
	partitions := make(map[string][]int)
	for i, r := range records {
		key := ""
		if groupField != "" {
			key = r.Text(groupField)
		}
		partitions[key] = append(partitions[key], i)
	}

	drop := make(map[int]bool)
	for key, idxs := range partitions {
		// A partition without a grouping key value is passed through.
		if groupField != "" && key == "" {
			continue
		}

		excluded := exclusionDates(records, idxs, excl)
		if len(excluded) == 0 {
			continue
		}
		for _, i := range idxs {
			if records[i].HasDate() && excluded[records[i].Date] {
				drop[i] = true
			}
		}
	}

	kept := make([]dataset.Record, 0, len(records))
	for i, r := range records {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	return kept
}

// exclusionDates derives the set of dates to drop for one partition:
// the first/last N distinct dates when the partition has strictly more
// than N distinct dates, plus all custom excluded dates.
func exclusionDates(records []dataset.Record, idxs []int, excl ExclusionConfig) map[string]bool {
	seen := make(map[string]bool)
	var dates []string
	for _, i := range idxs {
		if d := records[i].Date; d != "" && !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	excluded := make(map[string]bool)
	if excl.ExcludeFirstDays && excl.ExcludeFirstCount > 0 && len(dates) > excl.ExcludeFirstCount {
		for _, d := range dates[:excl.ExcludeFirstCount] {
			excluded[d] = true
		}
	}
	if excl.ExcludeLastDays && excl.ExcludeLastCount > 0 && len(dates) > excl.ExcludeLastCount {
		for _, d := range dates[len(dates)-excl.ExcludeLastCount:] {
			excluded[d] = true
		}
	}
	for _, d := range excl.CustomExcludedDates {
		if t, ok := dataset.ParseDate(d); ok {
			excluded[t.Format("2006-01-02")] = true
		}
	}
	return excluded
}
