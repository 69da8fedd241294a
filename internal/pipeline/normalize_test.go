package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"currency with separators", "$1,234.50", 1234.50},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"int", 42, 42},
		{"int64", int64(7), 7},
		{"float", 3.25, 3.25},
		{"float32", float32(2), 2},
		{"nil", nil, 0},
		{"missing field lookup", GenericRecord{}["amount"], 0},
		{"spaces inside", " $2 000 ", 2000},
		{"negative currency", "-$500.25", -500.25},
		{"plain numeric string", "1234", 1234},
		{"partial garbage", "$12abc", 0},
		{"bool is not a number", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ToNumber(tt.in))
		})
	}
}
