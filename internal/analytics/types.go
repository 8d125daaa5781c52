package analytics

// ConstraintKind discriminates filter constraint semantics.
type ConstraintKind string

const (
	ConstraintEnum  ConstraintKind = "enum"
	ConstraintRange ConstraintKind = "range"
	ConstraintDate  ConstraintKind = "date"
	ConstraintText  ConstraintKind = "text"
)

// Constraint is one field's filter rule. Exactly the fields relevant to
// Kind are consulted; the rest stay zero.
type Constraint struct {
	Kind ConstraintKind `json:"kind" validate:"required,oneof=enum range date text"`

	// enum: the allowed values.
	Values []string `json:"values,omitempty"`

	// range: numeric bounds, either may be open.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// date: inclusive bounds in YYYY-MM-DD form, either may be open.
	MinDate string `json:"min_date,omitempty"`
	MaxDate string `json:"max_date,omitempty"`

	// text: case-insensitive substring.
	Substring string `json:"substring,omitempty"`
}

// FilterSpec maps field names to constraints. A record matches iff it
// satisfies every present constraint; an absent field means "no check".
type FilterSpec map[string]Constraint

// ExclusionConfig drops the earliest/latest N distinct calendar dates
// per grouping-key partition, plus explicit dates. Counts apply to
// distinct date strings, not record counts.
type ExclusionConfig struct {
	ExcludeFirstDays    bool     `json:"exclude_first_days"`
	ExcludeFirstCount   int      `json:"exclude_first_count" validate:"gte=0"`
	ExcludeLastDays     bool     `json:"exclude_last_days"`
	ExcludeLastCount    int      `json:"exclude_last_count" validate:"gte=0"`
	CustomExcludedDates []string `json:"custom_excluded_dates,omitempty"`
}

// Active reports whether any exclusion rule would fire.
func (e ExclusionConfig) Active() bool {
	return (e.ExcludeFirstDays && e.ExcludeFirstCount > 0) ||
		(e.ExcludeLastDays && e.ExcludeLastCount > 0) ||
		len(e.CustomExcludedDates) > 0
}

// DistributionEntry is one ranked slice of a grouped breakdown.
type DistributionEntry struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Percentage float64 `json:"percentage"`
}

// Granularity selects the time-series bucket key function.
type Granularity string

const (
	GranularityHourly  Granularity = "hourly"
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Valid reports whether g names a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityHourly, GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// TimeSeriesPoint is one bucket of a time series. Trend is nil for the
// first window-1 points of a trend-annotated series.
type TimeSeriesPoint struct {
	BucketKey string   `json:"bucket_key"`
	Label     string   `json:"label"`
	Count     int      `json:"count"`
	Value     float64  `json:"value"`
	AvgValue  float64  `json:"avg_value"`
	Trend     *float64 `json:"trend"`
}

// DefaultTrendWindow is the moving-average window applied when a query
// does not name one.
const DefaultTrendWindow = 7

// BrandMapping decomposes one product name into a detected brand prefix
// and the remaining display name. BrandName is empty when no other
// product shares a leading word sequence.
type BrandMapping struct {
	Original    string `json:"original"`
	BrandName   string `json:"brand_name"`
	DisplayName string `json:"display_name"`
}

// DemographicGroup is a survey cross-tab cell: how many records the
// group contributed, and per response token, how many of those records
// selected it.
type DemographicGroup struct {
	Total             int            `json:"total"`
	ResponseBreakdown map[string]int `json:"response_breakdown"`
}

// SurveyDemographics cross-tabulates responses by the two demographic
// fields carried on transactional exports.
type SurveyDemographics struct {
	Gender map[string]DemographicGroup `json:"gender"`
	Age    map[string]DemographicGroup `json:"age"`
}

// SurveyQuestion aggregates one numbered question. TotalResponses
// counts responding records, not split tokens; it is the percentage
// denominator downstream.
type SurveyQuestion struct {
	Number         int                `json:"number"`
	Text           string             `json:"text"`
	TotalResponses int                `json:"total_responses"`
	Counts         map[string]int     `json:"counts"`
	Demographics   SurveyDemographics `json:"demographics"`
}

// Metrics carries the summary statistics for a record subsequence.
type Metrics struct {
	TotalUnits  int      `json:"total_units"`
	UniqueDates []string `json:"unique_dates"`
	DaysInRange int      `json:"days_in_range"`
	TotalValue  float64  `json:"total_value"`
	AvgPerDay   float64  `json:"avg_per_day"`
}

// InsightType tags the flavor of a generated insight statement.
type InsightType string

const (
	InsightRetailer InsightType = "retailer"
	InsightDay      InsightType = "day"
	InsightTrend    InsightType = "trend"
)

// InsightStatus marks directional insights.
type InsightStatus string

const (
	StatusPositive InsightStatus = "positive"
	StatusNegative InsightStatus = "negative"
)

// Insight is one short natural-language statement about the filtered
// data, tagged for presentation.
type Insight struct {
	Type    InsightType   `json:"type"`
	Status  InsightStatus `json:"status,omitempty"`
	Message string        `json:"message"`
}
