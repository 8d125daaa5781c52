package snapshot

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"promopulse/internal/analytics"
	"promopulse/internal/dataset"
)

// Snapshot is a frozen, self-contained, replayable bundle of raw
// records, filter configuration, and the results computed from them.
// It is deep-copied at build time so later changes to the live dataset
// cannot retroactively alter an already-shared snapshot.
type Snapshot struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	DatasetID   string    `json:"dataset_id"`
	DatasetName string    `json:"dataset_name"`
	CreatedAt   time.Time `json:"created_at"`

	Schema      dataset.Schema        `json:"schema"`
	Granularity analytics.Granularity `json:"granularity"`
	TrendWindow int                   `json:"trend_window"`

	SalesData    []dataset.Record          `json:"sales_data"`
	FilteredData []dataset.Record          `json:"filtered_data"`
	Filters      analytics.FilterSpec      `json:"filters"`
	Exclusions   analytics.ExclusionConfig `json:"excluded_dates"`

	Metrics              analytics.Metrics                  `json:"metrics"`
	RetailerDistribution []analytics.DistributionEntry      `json:"retailer_distribution"`
	ProductDistribution  []analytics.DistributionEntry      `json:"product_distribution"`
	GenderDistribution   []analytics.DistributionEntry      `json:"gender_distribution"`
	AgeDistribution      []analytics.DistributionEntry      `json:"age_distribution"`
	BrandMapping         map[string]analytics.BrandMapping  `json:"brand_mapping"`
	BrandNames           []string                           `json:"brand_names"`
	SurveyData           []analytics.SurveyQuestion         `json:"survey_data"`
	TimeSeries           []analytics.TimeSeriesPoint        `json:"time_series"`
	Insights             []analytics.Insight                `json:"insights"`
}

// Build runs the full pipeline against a store and freezes the result.
// A zero window falls back to the engine default.
func Build(store *dataset.Store, filters analytics.FilterSpec, exclusions analytics.ExclusionConfig, granularity analytics.Granularity, window int, clientName string) *Snapshot {
	if window <= 0 {
		window = analytics.DefaultTrendWindow
	}
	schema := store.Schema

	filtered := analytics.Apply(store.Records, filters, exclusions, schema.ProductField)
	brands := analytics.DetectBrands(store.ProductNames())
	series := analytics.CalculateTrendLine(
		analytics.TimeSeries(filtered, granularity, schema.AmountField), window)

	return &Snapshot{
		ID:          uuid.New().String(),
		ClientName:  clientName,
		DatasetID:   store.ID,
		DatasetName: store.Name,
		CreatedAt:   time.Now().UTC(),

		Schema:      schema,
		Granularity: granularity,
		TrendWindow: window,

		SalesData:    copyRecords(store.Records),
		FilteredData: copyRecords(filtered),
		Filters:      copyFilters(filters),
		Exclusions:   copyExclusions(exclusions),

		Metrics:              analytics.ComputeMetrics(filtered, schema.AmountField),
		RetailerDistribution: analytics.Distribution(filtered, schema.RetailerField),
		ProductDistribution:  analytics.Distribution(filtered, schema.ProductField),
		GenderDistribution:   analytics.Distribution(filtered, "gender"),
		AgeDistribution:      analytics.AgeGroupDistribution(filtered, "age_group"),
		BrandMapping:         brands,
		BrandNames:           analytics.BrandNames(brands),
		SurveyData:           analytics.ParseAll(filtered, schema.QuestionNumbers),
		TimeSeries:           series,
		Insights:             analytics.GenerateInsights(filtered, schema.RetailerField),
	}
}

// Verify replays the Filter Engine against the snapshot's embedded raw
// records and configuration and checks that it reproduces the embedded
// filtered data and metrics exactly. A persisted snapshot that fails
// this check was corrupted or was produced by an incompatible engine.
func Verify(s *Snapshot) error {
	replayed := analytics.Apply(s.SalesData, s.Filters, s.Exclusions, s.Schema.ProductField)
	if !reflect.DeepEqual(replayed, normalizeRecords(s.FilteredData)) {
		return fmt.Errorf("replayed filtered data diverges: %d records replayed, %d embedded",
			len(replayed), len(s.FilteredData))
	}

	metrics := analytics.ComputeMetrics(replayed, s.Schema.AmountField)
	if !reflect.DeepEqual(metrics, s.Metrics) {
		return fmt.Errorf("replayed metrics diverge from embedded metrics")
	}
	return nil
}

// MarshalIndent serializes a snapshot for file export.
func (s *Snapshot) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Load deserializes a snapshot previously written by MarshalIndent.
func Load(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// copyRecords deep-copies records, including each field map.
func copyRecords(records []dataset.Record) []dataset.Record {
	out := make([]dataset.Record, len(records))
	for i, r := range records {
		fields := make(map[string]dataset.Value, len(r.Fields))
		for k, v := range r.Fields {
			fields[k] = v
		}
		out[i] = r
		out[i].Fields = fields
	}
	return out
}

// normalizeRecords mirrors copyRecords' shape so DeepEqual compares an
// empty replay against an empty embedded slice consistently.
func normalizeRecords(records []dataset.Record) []dataset.Record {
	if records == nil {
		return []dataset.Record{}
	}
	return records
}

func copyFilters(spec analytics.FilterSpec) analytics.FilterSpec {
	out := make(analytics.FilterSpec, len(spec))
	for field, c := range spec {
		cc := c
		cc.Values = append([]string(nil), c.Values...)
		if c.Min != nil {
			min := *c.Min
			cc.Min = &min
		}
		if c.Max != nil {
			max := *c.Max
			cc.Max = &max
		}
		out[field] = cc
	}
	return out
}

func copyExclusions(e analytics.ExclusionConfig) analytics.ExclusionConfig {
	e.CustomExcludedDates = append([]string(nil), e.CustomExcludedDates...)
	return e
}
