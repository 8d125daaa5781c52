package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promopulse/internal/dataset"
)

func recordsWithField(field string, values ...string) []dataset.Record {
	records := make([]dataset.Record, 0, len(values))
	for _, v := range values {
		records = append(records, dataset.Record{
			Fields: map[string]dataset.Value{field: dataset.String(v)},
			Hour:   -1,
		})
	}
	return records
}

func TestDistribution(t *testing.T) {
	records := recordsWithField("chain",
		"Tesco", "Asda", "Tesco", "Morrisons", "Tesco", "Asda", "")

	dist := Distribution(records, "chain")
	require.Len(t, dist, 3)

	assert.Equal(t, "Tesco", dist[0].Name)
	assert.Equal(t, 3, dist[0].Value)
	assert.Equal(t, "Asda", dist[1].Name)
	assert.Equal(t, 2, dist[1].Value)
	assert.Equal(t, "Morrisons", dist[2].Name)

	// Empty values stay out of the denominator: 3/6, 2/6, 1/6.
	assert.InDelta(t, 50.0, dist[0].Percentage, 0.001)
	assert.InDelta(t, 33.333, dist[1].Percentage, 0.001)
	assert.InDelta(t, 16.667, dist[2].Percentage, 0.001)
}

func TestDistributionTieBreaksByFirstSeen(t *testing.T) {
	records := recordsWithField("chain", "Asda", "Tesco", "Tesco", "Asda")
	dist := Distribution(records, "chain")
	require.Len(t, dist, 2)
	assert.Equal(t, "Asda", dist[0].Name)
	assert.Equal(t, "Tesco", dist[1].Name)
}

func TestDistributionPercentageClosure(t *testing.T) {
	records := recordsWithField("chain",
		"A", "B", "C", "A", "B", "A", "D", "E", "F", "G", "A", "B")
	dist := Distribution(records, "chain")

	sum := 0.0
	for _, e := range dist {
		sum += e.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.1)
}

func TestDistributionEmptyInput(t *testing.T) {
	dist := Distribution(nil, "chain")
	assert.Empty(t, dist)

	dist = Distribution(recordsWithField("chain", "", ""), "chain")
	assert.Empty(t, dist)
}

func TestAgeGroupDistribution(t *testing.T) {
	records := recordsWithField("age_group",
		"65+", "25-34", "25-34", "Unknown", "16-24", "Prefer not to say", "55-64")

	dist := AgeGroupDistribution(records, "age_group")
	require.Len(t, dist, 6)

	var names []string
	for _, e := range dist {
		names = append(names, e.Name)
	}
	// Canonical groups in list order first, then stragglers A-Z.
	assert.Equal(t, []string{"16-24", "25-34", "55-64", "65+", "Prefer not to say", "Unknown"}, names)

	sum := 0.0
	for _, e := range dist {
		sum += e.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.1)
}
