package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		want   string
		wantOK bool
	}{
		{"fiscal period code", "202312", "2023", true},
		{"fiscal year range", "2023-2024", "2023", true},
		{"not a year", "N/A", "", false},
		{"empty", "", "", false},
		{"nil", nil, "", false},
		{"plain year", "1998", "1998", true},
		{"year inside text", "fiscal 2021 estimates", "2021", true},
		{"below range", "1899", "", false},
		{"above range", "2100", "", false},
		{"numeric input", 202312, "2023", true},
		{"whitespace", "  2020  ", "2020", true},
		{"first match wins", "2019 to 2022", "2019", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractYear(tt.in)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
