package analytics

import (
	"fmt"
	"math"

	"promopulse/internal/dataset"
)

// minDatesForTrend is the distinct-date floor below which the week-over-
// week comparison is too noisy to report.
const minDatesForTrend = 15

// GenerateInsights produces the short ordered insight list for a record
// subsequence: top retailer, strongest day of week, and — when enough
// distinct dates exist — a 7-active-day versus previous-7-active-day
// change. Empty inputs yield an empty list, never an error.
func GenerateInsights(records []dataset.Record, retailerField string) []Insight {
	var insights []Insight

	if top := topRetailer(records, retailerField); top != nil {
		insights = append(insights, *top)
	}
	if day := bestDay(records); day != nil {
		insights = append(insights, *day)
	}
	if trend := weekTrend(records); trend != nil {
		insights = append(insights, *trend)
	}

	return insights
}

func topRetailer(records []dataset.Record, retailerField string) *Insight {
	if retailerField == "" {
		return nil
	}
	dist := Distribution(records, retailerField)
	if len(dist) == 0 {
		return nil
	}
	top := dist[0]
	return &Insight{
		Type: InsightRetailer,
		Message: fmt.Sprintf("%s is the top retailer with %d redemptions (%.1f%% of the total)",
			top.Name, top.Value, top.Percentage),
	}
}

func bestDay(records []dataset.Record) *Insight {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Weekday != "" {
			counts[r.Weekday]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	best, bestCount := "", -1
	for _, day := range weekdayOrder {
		if c := counts[day]; c > bestCount {
			best, bestCount = day, c
		}
	}
	return &Insight{
		Type:    InsightDay,
		Message: fmt.Sprintf("%s is the strongest day with %d redemptions", best, bestCount),
	}
}

// weekdayOrder fixes tie-breaking for bestDay so equal counts always
// resolve to the same day.
var weekdayOrder = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// weekTrend compares the last 7 distinct active dates against the 7
// before them. It needs at least 15 distinct dates so the comparison
// never includes the partially-observed current day.
func weekTrend(records []dataset.Record) *Insight {
	m := ComputeMetrics(records, "")
	if len(m.UniqueDates) < minDatesForTrend {
		return nil
	}

	dates := m.UniqueDates
	recent := dateSet(dates[len(dates)-7:])
	previous := dateSet(dates[len(dates)-14 : len(dates)-7])

	recentCount, previousCount := 0, 0
	for _, r := range records {
		switch {
		case recent[r.Date]:
			recentCount++
		case previous[r.Date]:
			previousCount++
		}
	}
	if previousCount == 0 {
		return nil
	}

	change := (float64(recentCount) - float64(previousCount)) / float64(previousCount) * 100
	status := StatusPositive
	direction := "up"
	if change < 0 {
		status = StatusNegative
		direction = "down"
	}
	return &Insight{
		Type:   InsightTrend,
		Status: status,
		Message: fmt.Sprintf("Redemptions are %s %.1f%% over the last 7 active days",
			direction, math.Abs(change)),
	}
}

func dateSet(dates []string) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}
