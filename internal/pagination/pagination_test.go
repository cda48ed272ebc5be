package pagination

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"0", 0},
		{"1", 1},
		{" 3 ", 3},
		{"-1", 0},
		{"abc", 0},
		{"2.5", 0},
		{"42", 42},
		{"4611686018427387904", MaxPage},
		{"922337203685477581", MaxPage},
		{"99999999999999999999", MaxPage},
		{"-99999999999999999999", 0},
	}

	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		page int
		want int
	}{
		{0, 0},
		{1, 20},
		{5, 100},
		{-2, 0},
		{MaxPage, MaxPage * PageSize},
		{math.MaxInt, MaxPage * PageSize},
	}

	for _, tt := range tests {
		if got := Offset(tt.page); got != tt.want {
			t.Errorf("Offset(%d) = %d, want %d", tt.page, got, tt.want)
		}
	}
}

func TestOffsetNeverWraps(t *testing.T) {
	for _, raw := range []string{"4611686018427387904", "922337203685477581", "461168601842738790"} {
		page := Normalize(raw)
		if offset := Offset(page); offset < 1<<40 {
			t.Errorf("page %s: offset %d wrapped back into the listing", raw, offset)
		}
	}
}
