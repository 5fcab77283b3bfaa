package stats

import (
	"math"
	"testing"
)

func TestCalculateMedianDiscrete(t *testing.T) {
	tests := []struct {
		values []int
		want   float64
	}{
		{nil, 0},
		{[]int{4}, 4},
		{[]int{1, 3, 5}, 3},
		{[]int{1, 2, 4, 8}, 3},
	}
	for _, tt := range tests {
		if got := CalculateMedianDiscrete(tt.values); got != tt.want {
			t.Errorf("CalculateMedianDiscrete(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestPercentile(t *testing.T) {
	sorted := []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{0.5, 50},
		{0.85, 85},
		{0.95, 95},
		{1, 100},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	values := []int{7, 2, 3, 7}
	got := Summarize(values)
	if got.Count != 4 || got.Median != 5 || got.Max != 7 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if values[0] != 7 || values[1] != 2 {
		t.Error("Summarize must not reorder its input")
	}
	if (Summarize(nil) != Latency{}) {
		t.Error("empty input must yield the zero summary")
	}
}
