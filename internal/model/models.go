package model

import "time"

// FilterSpec restricts which rows contribute to a dashboard. Include is an
// exact, case-sensitive membership test on the configured field; Contains is
// a case-insensitive substring test. When both are set a row must satisfy
// both.
type FilterSpec struct {
	Field    string   `json:"field"`
	Include  []string `json:"include,omitempty"`
	Contains []string `json:"contains,omitempty"`

	// IncludeContains is the key older mapping documents used for Contains.
	// Loaders fold it into Contains; the aggregation engine never reads it.
	IncludeContains []string `json:"includeContains,omitempty"`
}

// AggregationConfig describes how to reduce a flat row set into group x
// series sums for one dashboard.
type AggregationConfig struct {
	GroupBy    string `json:"groupBy"`
	SeriesBy   string `json:"seriesBy,omitempty"`
	ValueField string `json:"valueField"`

	// ExtractYear replaces the raw group value with the 4-digit year found
	// inside it; rows without an extractable year are dropped and counted.
	ExtractYear bool `json:"extractYear,omitempty"`

	// MinSeriesTotal excludes series whose grand total falls below it.
	// Ignored when TopSeriesPerGroup is set.
	MinSeriesTotal float64 `json:"minSeriesTotal,omitempty"`

	// MaxSeries caps the retained series count. nil means the default of 10;
	// a pointer so an explicit 0 in config survives JSON decoding.
	MaxSeries *int `json:"maxSeries,omitempty"`

	// TopSeriesPerGroup switches from global top-N selection to ranking
	// series within each group and retaining the union of per-group picks.
	TopSeriesPerGroup bool `json:"topSeriesPerGroup,omitempty"`

	Filter *FilterSpec `json:"filter,omitempty"`
}

// DashboardConfig is one entry of dashboard_configs.json: presentation
// metadata, the data files to load, and the embedded aggregation settings.
type DashboardConfig struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Note        string `json:"note,omitempty"`
	Description string `json:"description,omitempty"`

	DataFiles []string `json:"dataFiles,omitempty"`
	CSVs      []string `json:"csvs,omitempty"` // legacy key for DataFiles

	// Mapping points at an auxiliary filter document, resolved relative to
	// the config file. An inline Filter takes precedence.
	Mapping string `json:"mapping,omitempty"`

	AggregationConfig
}

// Files returns the configured data files, honoring the legacy csvs key.
func (d DashboardConfig) Files() []string {
	if len(d.DataFiles) > 0 {
		return d.DataFiles
	}
	return d.CSVs
}

// ConfigFile is the top-level shape of dashboard_configs.json.
type ConfigFile struct {
	Dashboards []DashboardConfig `json:"dashboards"`
}

// GroupSeries holds the retained series sums for one group. Every retained
// series key is present, with 0 for groups that had no rows for it.
type GroupSeries struct {
	Group  string             `json:"group"`
	Series map[string]float64 `json:"series"`
}

// AggregatedData is the chart-ready result of one aggregation run: groups
// sorted ascending (numerically when every key parses as an integer), series
// sorted by descending grand total, and one dense data entry per group.
type AggregatedData struct {
	Groups []string      `json:"groups"`
	Series []string      `json:"series"`
	Data   []GroupSeries `json:"data"`
}

// DashboardDocument is the pre-aggregated JSON document written per
// dashboard and served to the chart frontend.
type DashboardDocument struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle"`
	Note        string          `json:"note"`
	Description string          `json:"description"`
	Aggregated  *AggregatedData `json:"aggregated"`
}

// BuildReport summarizes one completed dashboard build.
type BuildReport struct {
	DashboardID string        `json:"dashboard_id"`
	RowsLoaded  int           `json:"rows_loaded"`
	RowsSkipped int           `json:"rows_skipped"`
	GroupCount  int           `json:"group_count"`
	SeriesCount int           `json:"series_count"`
	OutputPath  string        `json:"output_path"`
	OutputBytes int64         `json:"output_bytes"`
	Duration    time.Duration `json:"duration"`
}
