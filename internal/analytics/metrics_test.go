package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promopulse/internal/dataset"
)

func metricsStore(t *testing.T, rows [][]string) *dataset.Store {
	t.Helper()
	return dataset.NewStore("m", "m", []string{"receipt_date", "product_name", "chain", "amount"}, rows)
}

func TestComputeMetrics(t *testing.T) {
	store := metricsStore(t, [][]string{
		{"2024-03-05", "A", "Tesco", "2.00"},
		{"2024-03-01", "A", "Tesco", "1.50"},
		{"2024-03-01", "B", "Asda", "0.50"},
		{"bad-date", "C", "Asda", "1.00"},
	})

	m := ComputeMetrics(store.Records, "amount")

	assert.Equal(t, 4, m.TotalUnits)
	assert.Equal(t, []string{"2024-03-01", "2024-03-05"}, m.UniqueDates)
	assert.Equal(t, 5, m.DaysInRange) // Mar 1 through Mar 5 inclusive
	assert.InDelta(t, 5.0, m.TotalValue, 1e-9)
	assert.InDelta(t, 0.8, m.AvgPerDay, 1e-9)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil, "amount")
	assert.Zero(t, m.TotalUnits)
	assert.Empty(t, m.UniqueDates)
	assert.Zero(t, m.DaysInRange)
	assert.Zero(t, m.AvgPerDay)
}

func TestComputeMetricsNoDates(t *testing.T) {
	store := metricsStore(t, [][]string{
		{"oops", "A", "Tesco", "2.00"},
	})
	m := ComputeMetrics(store.Records, "amount")
	assert.Equal(t, 1, m.TotalUnits)
	assert.Zero(t, m.DaysInRange)
	assert.Zero(t, m.AvgPerDay) // no division by zero
}

func TestGenerateInsightsRetailerAndDay(t *testing.T) {
	store := metricsStore(t, [][]string{
		{"2024-03-02", "A", "Tesco", "1"}, // Saturday
		{"2024-03-02", "B", "Tesco", "1"},
		{"2024-03-03", "A", "Asda", "1"}, // Sunday
	})

	insights := GenerateInsights(store.Records, "chain")
	require.Len(t, insights, 2) // too few dates for a trend insight

	assert.Equal(t, InsightRetailer, insights[0].Type)
	assert.Contains(t, insights[0].Message, "Tesco")
	assert.Contains(t, insights[0].Message, "66.7%")

	assert.Equal(t, InsightDay, insights[1].Type)
	assert.Contains(t, insights[1].Message, "Saturday")
}

func TestGenerateInsightsTrend(t *testing.T) {
	// 15 distinct dates; one record each on the first 8 days, two each
	// on the last 7 — a rising trend.
	var rows [][]string
	for day := 1; day <= 15; day++ {
		date := fmt.Sprintf("2024-03-%02d", day)
		rows = append(rows, []string{date, "A", "Tesco", "1"})
		if day > 8 {
			rows = append(rows, []string{date, "B", "Tesco", "1"})
		}
	}
	store := metricsStore(t, rows)

	insights := GenerateInsights(store.Records, "chain")
	require.Len(t, insights, 3)

	trend := insights[2]
	assert.Equal(t, InsightTrend, trend.Type)
	assert.Equal(t, StatusPositive, trend.Status)
	assert.Contains(t, trend.Message, "up")
	// last 7 dates: 14 records; previous 7 (days 2-8): 7 records.
	assert.Contains(t, trend.Message, "100.0%")
}

func TestGenerateInsightsTrendNeedsEnoughDates(t *testing.T) {
	var rows [][]string
	for day := 1; day <= 14; day++ {
		rows = append(rows, []string{fmt.Sprintf("2024-03-%02d", day), "A", "Tesco", "1"})
	}
	store := metricsStore(t, rows)

	insights := GenerateInsights(store.Records, "chain")
	for _, in := range insights {
		assert.NotEqual(t, InsightTrend, in.Type)
	}
}

func TestGenerateInsightsNegativeTrend(t *testing.T) {
	var rows [][]string
	for day := 1; day <= 15; day++ {
		date := fmt.Sprintf("2024-03-%02d", day)
		rows = append(rows, []string{date, "A", "Tesco", "1"})
		if day >= 2 && day <= 8 {
			rows = append(rows, []string{date, "B", "Tesco", "1"})
		}
	}
	store := metricsStore(t, rows)

	insights := GenerateInsights(store.Records, "chain")
	require.Len(t, insights, 3)
	assert.Equal(t, StatusNegative, insights[2].Status)
	assert.Contains(t, insights[2].Message, "down")
}

func TestGenerateInsightsEmpty(t *testing.T) {
	assert.Empty(t, GenerateInsights(nil, "chain"))
}
