package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"spends-pipeline/internal/model"
)

// GenericRecord is a schema-agnostic row: field name to raw scalar value.
type GenericRecord map[string]interface{}

// ErrNoRecords reports that an aggregation was asked to run over zero rows.
// Distinct from a run that succeeded with an empty result, so a driver can
// fail one dashboard and keep building the rest.
var ErrNoRecords = errors.New("no records to aggregate")

// DefaultMaxSeries caps the retained series count when a config leaves
// maxSeries unset.
const DefaultMaxSeries = 10

// fieldString reads a raw field value as a string, treating missing and nil
// as empty. All dynamic field access goes through here so the "missing field
// means empty value" policy lives in one place. float64 is formatted without
// exponents: numeric keys restored from the columnar cache must read the
// same as their CSV-typed originals.
func fieldString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// AggregateRecords reduces rows into the group x series sums for one
// dashboard. The int result is the number of rows dropped because no year
// could be extracted from the group field; callers log and track it, but it
// is not part of the document contract.
//
// The run is a pure function of its inputs: accumulators are allocated
// fresh, ties in series ranking break by first observation in input order,
// and the same rows and config always produce an identical result.
func AggregateRecords(rows []GenericRecord, cfg model.AggregationConfig) (*model.AggregatedData, int, error) {
	if len(rows) == 0 {
		return nil, 0, ErrNoRecords
	}

	totals := make(map[string]map[string]float64)
	seriesTotals := make(map[string]float64)
	var seriesOrder []string
	skipped := 0

	for _, rec := range rows {
		if !MatchesFilter(rec, cfg.Filter) {
			continue
		}

		groupValue := fieldString(rec[cfg.GroupBy])
		if cfg.ExtractYear {
			year, ok := ExtractYear(groupValue)
			if !ok {
				skipped++
				continue
			}
			groupValue = year
		}
		if groupValue == "" {
			continue
		}

		seriesValue := "Total"
		if cfg.SeriesBy != "" {
			if raw, ok := rec[cfg.SeriesBy]; ok {
				seriesValue = fieldString(raw)
			}
		}
		value := ToNumber(rec[cfg.ValueField])

		group, ok := totals[groupValue]
		if !ok {
			group = make(map[string]float64)
			totals[groupValue] = group
		}
		if _, seen := seriesTotals[seriesValue]; !seen {
			seriesOrder = append(seriesOrder, seriesValue)
		}
		group[seriesValue] += value
		seriesTotals[seriesValue] += value
	}

	maxSeries := DefaultMaxSeries
	if cfg.MaxSeries != nil {
		maxSeries = *cfg.MaxSeries
	}
	if maxSeries < 0 {
		maxSeries = 0
	}

	firstSeen := make(map[string]int, len(seriesOrder))
	for i, s := range seriesOrder {
		firstSeen[s] = i
	}

	seriesList := selectSeries(totals, seriesTotals, seriesOrder, firstSeen, cfg, maxSeries)

	groups := make([]string, 0, len(totals))
	for g := range totals {
		groups = append(groups, g)
	}
	sortGroups(groups)

	data := make([]model.GroupSeries, 0, len(groups))
	for _, g := range groups {
		series := make(map[string]float64, len(seriesList))
		for _, s := range seriesList {
			series[s] = totals[g][s]
		}
		data = append(data, model.GroupSeries{Group: g, Series: series})
	}

	return &model.AggregatedData{Groups: groups, Series: seriesList, Data: data}, skipped, nil
}

// selectSeries picks which series the document retains.
//
// Per-group mode ranks series inside each group by that group's sums, keeps
// the top maxSeries of each, and takes the union; minSeriesTotal is ignored.
// Global mode drops series below minSeriesTotal and keeps the top maxSeries
// by grand total. Either way the final list orders by descending grand total
// and is capped at maxSeries.
func selectSeries(
	totals map[string]map[string]float64,
	seriesTotals map[string]float64,
	seriesOrder []string,
	firstSeen map[string]int,
	cfg model.AggregationConfig,
	maxSeries int,
) []string {
	seriesList := make([]string, 0, len(seriesOrder))

	if cfg.TopSeriesPerGroup && maxSeries > 0 {
		retained := make(map[string]bool)
		for _, group := range totals {
			ranked := make([]string, 0, len(group))
			for s := range group {
				ranked = append(ranked, s)
			}
			sort.Slice(ranked, func(i, j int) bool {
				if group[ranked[i]] != group[ranked[j]] {
					return group[ranked[i]] > group[ranked[j]]
				}
				return firstSeen[ranked[i]] < firstSeen[ranked[j]]
			})
			if len(ranked) > maxSeries {
				ranked = ranked[:maxSeries]
			}
			for _, s := range ranked {
				retained[s] = true
			}
		}
		// Walk first-seen order so the pre-sort order is deterministic.
		for _, s := range seriesOrder {
			if retained[s] {
				seriesList = append(seriesList, s)
			}
		}
	} else {
		for _, s := range seriesOrder {
			if seriesTotals[s] >= cfg.MinSeriesTotal {
				seriesList = append(seriesList, s)
			}
		}
	}

	sort.Slice(seriesList, func(i, j int) bool {
		if seriesTotals[seriesList[i]] != seriesTotals[seriesList[j]] {
			return seriesTotals[seriesList[i]] > seriesTotals[seriesList[j]]
		}
		return firstSeen[seriesList[i]] < firstSeen[seriesList[j]]
	})
	if len(seriesList) > maxSeries {
		seriesList = seriesList[:maxSeries]
	}
	return seriesList
}

// sortGroups orders group keys ascending: numerically when every key parses
// as an integer, lexicographically otherwise. The decision is all-or-nothing
// across the whole set, never per key.
func sortGroups(groups []string) {
	numeric := make(map[string]int64, len(groups))
	allNumeric := true
	for _, g := range groups {
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			allNumeric = false
			break
		}
		numeric[g] = n
	}
	if allNumeric {
		sort.Slice(groups, func(i, j int) bool { return numeric[groups[i]] < numeric[groups[j]] })
		return
	}
	sort.Strings(groups)
}
