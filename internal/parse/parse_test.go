package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"100", 100},
		{"100.5", 100.5},
		{"1 234", 1234},
		{"1,5", 1.5},
		{"1.234,00", 1.234}, // dot-grouped European value, commas dropped as thousands marks
		{"1,234.56", 1234.56},
		{"1,234,567.89", 1234567.89},
		{"-12,5", -12.5},
		{"100 uds", 100},
		{"abc", 0},
		{"1555.85", 1555.85},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Number(tt.in), 1e-9, "input %q", tt.in)
	}
}

func TestNumberMixedSeparatorsDropsCommas(t *testing.T) {
	// Comma plus dot means the comma is a thousands separator.
	assert.InDelta(t, 1486210.15, Number("1,486,210.15"), 1e-9)
	// Comma alone is the decimal mark.
	assert.InDelta(t, 1486.21, Number("1486,21"), 1e-9)
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2027-12-31", "2027-12-31"},
		{"2027-12-31T00:00:00", "2027-12-31"},
		{"20271231", "2027-12-31"},
		{"2027.12.31", "2027-12-31"},
		{"1/2/2027", "2027-02-01"},
		{"2027-12-31 08:15:00", "2027-12-31"},
		{"sin fecha", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Date(tt.in), "input %q", tt.in)
	}
}

func TestDateOrTodayFallsBack(t *testing.T) {
	assert.Equal(t, "2027-12-31", DateOrToday("2027-12-31"))
	assert.Len(t, DateOrToday("n/a"), 10)
	assert.NotEmpty(t, DateOrToday(""))
}
