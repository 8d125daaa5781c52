package analytics

import (
	"fmt"
	"sort"
	"time"

	"promopulse/internal/dataset"
)

// TimeSeries buckets records by the given granularity, ascending by
// bucket key. Each bucket's Value sums amountField across its records
// (0 when the field is absent); AvgValue is Value/Count. Hourly series
// always carry all 24 hour buckets; other granularities carry only
// buckets that received records. Trend is left nil; see
// CalculateTrendLine.
func TimeSeries(records []dataset.Record, granularity Granularity, amountField string) []TimeSeriesPoint {
	switch granularity {
	case GranularityHourly:
		return hourlySeries(records, amountField)
	case GranularityWeekly:
		return keyedSeries(records, amountField, weeklyBucket)
	case GranularityMonthly:
		return keyedSeries(records, amountField, monthlyBucket)
	default:
		return keyedSeries(records, amountField, dailyBucket)
	}
}

type bucket struct {
	label string
	count int
	value float64
}

// keyedSeries builds a series from a bucket-key function. Records
// without a derived date are skipped.
func keyedSeries(records []dataset.Record, amountField string, keyFn func(dataset.Record) (key, label string, ok bool)) []TimeSeriesPoint {
	buckets := make(map[string]*bucket)
	for _, r := range records {
		key, label, ok := keyFn(r)
		if !ok {
			continue
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{label: label}
			buckets[key] = b
		}
		b.count++
		b.value += amount(r, amountField)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]TimeSeriesPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, makePoint(k, buckets[k]))
	}
	return points
}

// hourlySeries emits all 24 hour-of-day buckets even when empty, so
// intraday charts keep a stable x axis.
func hourlySeries(records []dataset.Record, amountField string) []TimeSeriesPoint {
	var hours [24]bucket
	for _, r := range records {
		if r.Hour < 0 || r.Hour > 23 {
			continue
		}
		hours[r.Hour].count++
		hours[r.Hour].value += amount(r, amountField)
	}

	points := make([]TimeSeriesPoint, 0, 24)
	for h := 0; h < 24; h++ {
		b := hours[h]
		b.label = fmt.Sprintf("%02d:00", h)
		points = append(points, makePoint(fmt.Sprintf("%02d", h), &b))
	}
	return points
}

func makePoint(key string, b *bucket) TimeSeriesPoint {
	p := TimeSeriesPoint{
		BucketKey: key,
		Label:     b.label,
		Count:     b.count,
		Value:     b.value,
	}
	if b.count > 0 {
		p.AvgValue = b.value / float64(b.count)
	}
	return p
}

func amount(r dataset.Record, amountField string) float64 {
	if amountField == "" {
		return 0
	}
	f, ok := r.Float(amountField)
	if !ok {
		return 0
	}
	return f
}

func dailyBucket(r dataset.Record) (string, string, bool) {
	if !r.HasDate() {
		return "", "", false
	}
	t, _ := time.Parse("2006-01-02", r.Date)
	return r.Date, t.Format("Jan 02, 2006"), true
}

func monthlyBucket(r dataset.Record) (string, string, bool) {
	if r.Month == "" {
		return "", "", false
	}
	t, _ := time.Parse("2006-01", r.Month)
	return r.Month, t.Format("Jan 2006"), true
}

// weeklyBucket anchors weeks on Sunday; the label spans the week's
// start and end dates.
func weeklyBucket(r dataset.Record) (string, string, bool) {
	if !r.HasDate() {
		return "", "", false
	}
	t, _ := time.Parse("2006-01-02", r.Date)
	start := t.AddDate(0, 0, -int(t.Weekday()))
	end := start.AddDate(0, 0, 6)
	label := start.Format("Jan 02") + " - " + end.Format("Jan 02, 2006")
	return start.Format("2006-01-02"), label, true
}

// CalculateTrendLine annotates a series with a moving average of Count:
// nil for the first window-1 points, then the mean of the previous
// window counts inclusive. The result has the same length and order as
// the input, which keeps trend and series safely co-plottable.
func CalculateTrendLine(series []TimeSeriesPoint, window int) []TimeSeriesPoint {
	if window <= 0 {
		window = DefaultTrendWindow
	}

	out := make([]TimeSeriesPoint, len(series))
	copy(out, series)

	sum := 0
	for i := range out {
		out[i].Trend = nil
		sum += out[i].Count
		if i >= window {
			sum -= out[i-window].Count
		}
		if i >= window-1 {
			trend := float64(sum) / float64(window)
			out[i].Trend = &trend
		}
	}
	return out
}
