package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"promopulse/internal/analytics"
	"promopulse/internal/dataset"
)

var computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "promopulse_compute_duration_seconds",
	Help:    "Full analytics pipeline duration per query.",
	Buckets: prometheus.DefBuckets,
}, []string{"granularity"})

// QueryRequest is one full pipeline configuration. The engine is
// stateless; callers resend the whole configuration on every change
// and may memoize results keyed on this struct.
type QueryRequest struct {
	Filters     analytics.FilterSpec      `json:"filters"`
	Exclusions  analytics.ExclusionConfig `json:"exclusions"`
	Granularity analytics.Granularity     `json:"granularity" validate:"omitempty,oneof=hourly daily weekly monthly"`
	TrendWindow int                       `json:"trend_window" validate:"gte=0,lte=90"`
}

// QueryResult bundles every derived structure the dashboard renders.
type QueryResult struct {
	DatasetID     string                             `json:"dataset_id"`
	TotalRecords  int                                `json:"total_records"`
	MatchedCount  int                                `json:"matched_count"`
	Metrics       analytics.Metrics                  `json:"metrics"`
	Retailers     []analytics.DistributionEntry      `json:"retailer_distribution"`
	Products      []analytics.DistributionEntry      `json:"product_distribution"`
	Genders       []analytics.DistributionEntry      `json:"gender_distribution"`
	AgeGroups     []analytics.DistributionEntry      `json:"age_distribution"`
	TimeSeries    []analytics.TimeSeriesPoint        `json:"time_series"`
	BrandMapping  map[string]analytics.BrandMapping  `json:"brand_mapping"`
	BrandNames    []string                           `json:"brand_names"`
	SurveyData    []analytics.SurveyQuestion         `json:"survey_data"`
	Insights      []analytics.Insight                `json:"insights"`
	ComputeTimeMs int64                              `json:"compute_time_ms"`
}

// AnalyticsService runs the pure pipeline for one request.
type AnalyticsService struct {
	logger *slog.Logger
}

// NewAnalyticsService creates the service.
func NewAnalyticsService(logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		logger: logger.With(slog.String("component", "analytics_service")),
	}
}

// Query runs filter, distributions, time series, survey parsing,
// metrics, and insights against one store.
func (s *AnalyticsService) Query(ctx context.Context, store *dataset.Store, req QueryRequest) (*QueryResult, error) {
	granularity := req.Granularity
	if granularity == "" {
		granularity = analytics.GranularityDaily
	}
	if !granularity.Valid() {
		return nil, fmt.Errorf("invalid granularity: %s", granularity)
	}

	start := time.Now()
	schema := store.Schema

	filtered := analytics.Apply(store.Records, req.Filters, req.Exclusions, schema.ProductField)
	brands := analytics.DetectBrands(store.ProductNames())
	series := analytics.CalculateTrendLine(
		analytics.TimeSeries(filtered, granularity, schema.AmountField), req.TrendWindow)

	result := &QueryResult{
		DatasetID:    store.ID,
		TotalRecords: store.Len(),
		MatchedCount: len(filtered),
		Metrics:      analytics.ComputeMetrics(filtered, schema.AmountField),
		Retailers:    analytics.Distribution(filtered, schema.RetailerField),
		Products:     analytics.Distribution(filtered, schema.ProductField),
		Genders:      analytics.Distribution(filtered, "gender"),
		AgeGroups:    analytics.AgeGroupDistribution(filtered, "age_group"),
		TimeSeries:   series,
		BrandMapping: brands,
		BrandNames:   analytics.BrandNames(brands),
		SurveyData:   analytics.ParseAll(filtered, schema.QuestionNumbers),
		Insights:     analytics.GenerateInsights(filtered, schema.RetailerField),
	}

	elapsed := time.Since(start)
	result.ComputeTimeMs = elapsed.Milliseconds()
	computeDuration.WithLabelValues(string(granularity)).Observe(elapsed.Seconds())

	s.logger.DebugContext(ctx, "query computed",
		slog.String("dataset_id", store.ID),
		slog.Int("matched", result.MatchedCount),
		slog.Duration("elapsed", elapsed))

	return result, nil
}
