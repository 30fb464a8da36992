package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		price    float64
		currency string
		want     int64
	}{
		{"USD whole amount", 29, "USD", 2900},
		{"USD cents round up not truncate", 19.99, "USD", 1999},
		{"USD float representation noise", 0.29, "usd", 29},
		{"KRW passes through as-is", 9900, "KRW", 9900},
		{"KRW fractional rounds", 9900.6, "krw", 9901},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, minorUnits(tt.price, tt.currency))
		})
	}
}
