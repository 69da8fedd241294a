package pipeline

import (
	"regexp"
	"strings"
)

// yearPattern matches the first plausible calendar year in a value. The
// 1900-2099 bound rejects reference numbers that happen to carry four
// digits; a value containing an unrelated in-range number will still
// misclassify. Known limitation.
var yearPattern = regexp.MustCompile(`(19\d{2}|20\d{2})`)

// ExtractYear pulls a 4-digit year out of a loosely formatted period value
// such as "202312" or "2023-2024", taking the first match. ok is false when
// no acceptable year is present, which callers treat as a signal to drop
// the row.
func ExtractYear(v interface{}) (string, bool) {
	s := strings.TrimSpace(fieldString(v))
	if s == "" {
		return "", false
	}
	match := yearPattern.FindString(s)
	if match == "" {
		return "", false
	}
	return match, true
}
