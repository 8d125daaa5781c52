package analytics

import (
	"sort"

	"promopulse/internal/dataset"
)

// ageGroupOrder is the canonical presentation order for age buckets.
// Values outside the list sort after it, alphabetically.
var ageGroupOrder = []string{"16-24", "25-34", "35-44", "45-54", "55-64", "65+", "Under 18"}

// Distribution groups records by one field's values and returns the
// ranked breakdown, descending by count with ties kept in first-seen
// order. Records with a missing or empty field value are excluded from
// both the counts and the percentage denominator.
func Distribution(records []dataset.Record, field string) []DistributionEntry {
	counts, order := countField(records, field)

	entries := make([]DistributionEntry, 0, len(order))
	total := 0
	for _, name := range order {
		total += counts[name]
	}
	for _, name := range order {
		entries = append(entries, DistributionEntry{Name: name, Value: counts[name]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	applyPercentages(entries, total)
	return entries
}

// AgeGroupDistribution is Distribution with the canonical age-group
// ordering applied instead of the count ranking.
func AgeGroupDistribution(records []dataset.Record, field string) []DistributionEntry {
	counts, order := countField(records, field)

	rank := make(map[string]int, len(ageGroupOrder))
	for i, g := range ageGroupOrder {
		rank[g] = i
	}

	total := 0
	entries := make([]DistributionEntry, 0, len(order))
	for _, name := range order {
		total += counts[name]
		entries = append(entries, DistributionEntry{Name: name, Value: counts[name]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ri, iKnown := rank[entries[i].Name]
		rj, jKnown := rank[entries[j].Name]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return entries[i].Name < entries[j].Name
		}
	})

	applyPercentages(entries, total)
	return entries
}

func countField(records []dataset.Record, field string) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		name := r.Text(field)
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}
	return counts, order
}

func applyPercentages(entries []DistributionEntry, total int) {
	if total == 0 {
		return
	}
	for i := range entries {
		entries[i].Percentage = float64(entries[i].Value) / float64(total) * 100
	}
}
