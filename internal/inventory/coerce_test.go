package inventory

import (
	"encoding/json"
	"testing"
)

func TestCoerceStock(t *testing.T) {
	tests := map[string]struct {
		in   any
		want int
	}{
		"nil":                 {nil, 0},
		"int":                 {12, 12},
		"int32":               {int32(7), 7},
		"int64":               {int64(42), 42},
		"float64":             {float64(9), 9},
		"json number int":     {json.Number("15"), 15},
		"json number float":   {json.Number("15.0"), 15},
		"numeric string":      {"33", 33},
		"padded string":       {" 8 ", 8},
		"bytes":               {[]byte("21"), 21},
		"garbage string":      {"plenty", 0},
		"empty string":        {"", 0},
		"bool fails closed":   {true, 0},
		"struct fails closed": {struct{}{}, 0},
		"negative string":     {"-3", -3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := CoerceStock(tt.in); got != tt.want {
				t.Fatalf("CoerceStock(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
