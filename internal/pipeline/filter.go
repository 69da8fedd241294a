package pipeline

import (
	"strings"

	"spends-pipeline/internal/model"
)

// MatchesFilter reports whether a record passes the dashboard filter. A nil
// spec passes everything, as does a spec with neither condition set. The
// filtered field reads as empty when missing.
func MatchesFilter(rec GenericRecord, f *model.FilterSpec) bool {
	if f == nil {
		return true
	}

	value := fieldString(rec[f.Field])

	if f.Include != nil {
		found := false
		for _, want := range f.Include {
			if value == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Contains != nil {
		lower := strings.ToLower(value)
		matched := false
		for _, sub := range f.Contains {
			if strings.Contains(lower, strings.ToLower(sub)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}
