package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spends-pipeline/internal/model"
)

func intPtr(n int) *int { return &n }

func sampleRows() []GenericRecord {
	return []GenericRecord{
		{"dept": "Health", "year": "202301", "amt": "$100"},
		{"dept": "Health", "year": "202301", "amt": "$50"},
		{"dept": "Defence", "year": "202201", "amt": "$10"},
	}
}

func TestAggregateEndToEnd(t *testing.T) {
	cfg := model.AggregationConfig{
		GroupBy:     "year",
		SeriesBy:    "dept",
		ValueField:  "amt",
		ExtractYear: true,
	}

	result, skipped, err := AggregateRecords(sampleRows(), cfg)
	require.NoError(t, err)
	require.Zero(t, skipped)

	require.Equal(t, []string{"2022", "2023"}, result.Groups)
	require.Equal(t, []string{"Health", "Defence"}, result.Series)
	require.Equal(t, []model.GroupSeries{
		{Group: "2022", Series: map[string]float64{"Health": 0, "Defence": 10}},
		{Group: "2023", Series: map[string]float64{"Health": 150, "Defence": 0}},
	}, result.Data)
}

func TestAggregateFilterExclusion(t *testing.T) {
	cfg := model.AggregationConfig{
		GroupBy:     "year",
		SeriesBy:    "dept",
		ValueField:  "amt",
		ExtractYear: true,
		Filter:      &model.FilterSpec{Field: "dept", Include: []string{"Health"}},
	}

	result, _, err := AggregateRecords(sampleRows(), cfg)
	require.NoError(t, err)

	require.Equal(t, []string{"2023"}, result.Groups)
	require.Equal(t, []string{"Health"}, result.Series)
	require.NotContains(t, result.Series, "Defence")
	require.Equal(t, map[string]float64{"Health": 150}, result.Data[0].Series)
}

func TestAggregateNoRecords(t *testing.T) {
	_, _, err := AggregateRecords(nil, model.AggregationConfig{GroupBy: "year", ValueField: "amt"})
	require.ErrorIs(t, err, ErrNoRecords)
}

func TestAggregateEmptyResultIsNotAnError(t *testing.T) {
	rows := []GenericRecord{{"dept": "Health", "amt": "10"}}
	cfg := model.AggregationConfig{
		GroupBy:    "year", // absent from every row
		ValueField: "amt",
	}

	result, skipped, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Empty(t, result.Groups)
	require.Empty(t, result.Series)
	require.Empty(t, result.Data)
}

func TestAggregateDropsRowsWithoutYear(t *testing.T) {
	rows := append(sampleRows(),
		GenericRecord{"dept": "Health", "year": "N/A", "amt": "$999"},
		GenericRecord{"dept": "Health", "year": "unknown", "amt": "$999"},
	)
	cfg := model.AggregationConfig{
		GroupBy:     "year",
		SeriesBy:    "dept",
		ValueField:  "amt",
		ExtractYear: true,
	}

	result, skipped, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Equal(t, 2, skipped)

	// Dropped rows contribute to nothing
	require.Equal(t, float64(150), result.Data[1].Series["Health"])
}

func TestAggregateImplicitTotalSeries(t *testing.T) {
	cfg := model.AggregationConfig{GroupBy: "dept", ValueField: "amt"}

	result, _, err := AggregateRecords(sampleRows(), cfg)
	require.NoError(t, err)

	require.Equal(t, []string{"Total"}, result.Series)
	require.Equal(t, []string{"Defence", "Health"}, result.Groups)
	require.Equal(t, float64(10), result.Data[0].Series["Total"])
	require.Equal(t, float64(150), result.Data[1].Series["Total"])
}

func TestAggregateMissingSeriesFieldFallsBackToTotal(t *testing.T) {
	rows := []GenericRecord{
		{"year": "2021", "amt": "5"},
		{"year": "2021", "region": "West", "amt": "7"},
	}
	cfg := model.AggregationConfig{GroupBy: "year", SeriesBy: "region", ValueField: "amt"}

	result, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Total", "West"}, result.Series)
	require.Equal(t, float64(5), result.Data[0].Series["Total"])
	require.Equal(t, float64(7), result.Data[0].Series["West"])
}

func TestAggregateGlobalSelection(t *testing.T) {
	rows := []GenericRecord{
		{"g": "a", "s": "big", "v": 100},
		{"g": "a", "s": "mid", "v": 40},
		{"g": "a", "s": "small", "v": 1},
	}
	cfg := model.AggregationConfig{
		GroupBy:        "g",
		SeriesBy:       "s",
		ValueField:     "v",
		MinSeriesTotal: 10,
	}

	result, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"big", "mid"}, result.Series)

	// The group survives series trimming even when some of its series do not
	require.Equal(t, []string{"a"}, result.Groups)
	require.Equal(t, map[string]float64{"big": 100, "mid": 40}, result.Data[0].Series)
}

func TestAggregateGlobalSelectionCap(t *testing.T) {
	rows := []GenericRecord{
		{"g": "x", "s": "s1", "v": 5},
		{"g": "x", "s": "s2", "v": 50},
		{"g": "x", "s": "s3", "v": 30},
		{"g": "x", "s": "s4", "v": 20},
	}
	cfg := model.AggregationConfig{
		GroupBy:    "g",
		SeriesBy:   "s",
		ValueField: "v",
		MaxSeries:  intPtr(2),
	}

	result, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"s2", "s3"}, result.Series)
	require.Len(t, result.Data[0].Series, 2)
}

func TestAggregatePerGroupSelection(t *testing.T) {
	rows := []GenericRecord{
		{"g": "g1", "s": "A", "v": 100},
		{"g": "g1", "s": "B", "v": 50},
		{"g": "g1", "s": "C", "v": 1},
		{"g": "g2", "s": "C", "v": 80},
		{"g": "g2", "s": "D", "v": 60},
	}
	cfg := model.AggregationConfig{
		GroupBy:           "g",
		SeriesBy:          "s",
		ValueField:        "v",
		MaxSeries:         intPtr(3),
		TopSeriesPerGroup: true,
		MinSeriesTotal:    10000, // ignored in per-group mode
	}

	result, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)

	// Per-group picks are g1:{A,B,C} and g2:{C,D}; the union ordered by
	// grand total is A(100), C(81), D(60), B(50), capped at 3.
	require.Equal(t, []string{"A", "C", "D"}, result.Series)
	require.Len(t, result.Series, 3)

	// Every group carries every retained series, zero-filled
	for _, entry := range result.Data {
		require.Len(t, entry.Series, 3)
		for _, s := range result.Series {
			require.Contains(t, entry.Series, s)
		}
	}
	require.Equal(t, float64(0), result.Data[1].Series["A"])
}

func TestAggregateMaxSeriesZero(t *testing.T) {
	for _, perGroup := range []bool{false, true} {
		cfg := model.AggregationConfig{
			GroupBy:           "dept",
			SeriesBy:          "dept",
			ValueField:        "amt",
			MaxSeries:         intPtr(0),
			TopSeriesPerGroup: perGroup,
		}

		result, _, err := AggregateRecords(sampleRows(), cfg)
		require.NoError(t, err)
		require.Empty(t, result.Series)
		require.Equal(t, []string{"Defence", "Health"}, result.Groups)
		for _, entry := range result.Data {
			require.Empty(t, entry.Series)
		}
	}
}

func TestAggregateDefaultMaxSeries(t *testing.T) {
	rows := make([]GenericRecord, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, GenericRecord{"g": "only", "s": string(rune('a' + i)), "v": i + 1})
	}
	cfg := model.AggregationConfig{GroupBy: "g", SeriesBy: "s", ValueField: "v"}

	result, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Len(t, result.Series, DefaultMaxSeries)
	// Top of the ranking is the largest series
	require.Equal(t, "o", result.Series[0])
}

func TestAggregateGroupOrdering(t *testing.T) {
	t.Run("numeric when all keys parse", func(t *testing.T) {
		rows := []GenericRecord{
			{"g": "100", "v": 1},
			{"g": "9", "v": 1},
			{"g": "10", "v": 1},
		}
		result, _, err := AggregateRecords(rows, model.AggregationConfig{GroupBy: "g", ValueField: "v"})
		require.NoError(t, err)
		require.Equal(t, []string{"9", "10", "100"}, result.Groups)
	})

	t.Run("lexicographic when any key does not", func(t *testing.T) {
		rows := []GenericRecord{
			{"g": "100", "v": 1},
			{"g": "9", "v": 1},
			{"g": "n/a", "v": 1},
		}
		result, _, err := AggregateRecords(rows, model.AggregationConfig{GroupBy: "g", ValueField: "v"})
		require.NoError(t, err)
		require.Equal(t, []string{"100", "9", "n/a"}, result.Groups)
	})
}

func TestAggregateNegativeTotalsAffectRank(t *testing.T) {
	rows := []GenericRecord{
		{"g": "x", "s": "refunds", "v": "-50"},
		{"g": "x", "s": "grants", "v": "10"},
	}
	cfg := model.AggregationConfig{
		GroupBy:        "g",
		SeriesBy:       "s",
		ValueField:     "v",
		MinSeriesTotal: -1000,
	}

	result, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"grants", "refunds"}, result.Series)
	require.Equal(t, float64(-50), result.Data[0].Series["refunds"])

	// With the default floor of 0 a negative series is excluded outright
	cfg.MinSeriesTotal = 0
	result, _, err = AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"grants"}, result.Series)
}

func TestAggregateDeterministicTieBreak(t *testing.T) {
	rows := []GenericRecord{
		{"g": "x", "s": "beta", "v": 10},
		{"g": "x", "s": "alpha", "v": 10},
		{"g": "x", "s": "gamma", "v": 10},
	}
	cfg := model.AggregationConfig{GroupBy: "g", SeriesBy: "s", ValueField: "v"}

	first, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)

	// Equal grand totals keep input order
	require.Equal(t, []string{"beta", "alpha", "gamma"}, first.Series)

	for i := 0; i < 20; i++ {
		again, _, err := AggregateRecords(rows, cfg)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestAggregateSumConservation(t *testing.T) {
	rows := []GenericRecord{
		{"g": "x", "s": "a", "v": "$1,000.25"},
		{"g": "x", "s": "a", "v": "250"},
		{"g": "x", "s": "a", "v": "not a number"},
		{"g": "x", "s": "a", "v": 0.75},
	}
	cfg := model.AggregationConfig{GroupBy: "g", SeriesBy: "s", ValueField: "v"}

	result, _, err := AggregateRecords(rows, cfg)
	require.NoError(t, err)
	require.Equal(t, 1000.25+250+0+0.75, result.Data[0].Series["a"])
}
