package stats

import (
	"math"
	"slices"
)

// Latency summarises a distribution of whole-day durations.
type Latency struct {
	Count  int     `json:"count"`
	Median float64 `json:"median"`
	P85    float64 `json:"p85"`
	P95    float64 `json:"p95"`
	Max    int     `json:"max"`
}

// Summarize computes the latency summary of values. Empty input yields the zero value.
func Summarize(values []int) Latency {
	if len(values) == 0 {
		return Latency{}
	}

	// Work on a copy to avoid mutating the original
	temp := make([]int, len(values))
	copy(temp, values)
	slices.Sort(temp)

	return Latency{
		Count:  len(temp),
		Median: CalculateMedianDiscrete(temp),
		P85:    Percentile(temp, 0.85),
		P95:    Percentile(temp, 0.95),
		Max:    temp[len(temp)-1],
	}
}

// CalculateMedianDiscrete finds the median value in a sorted slice of integers.
func CalculateMedianDiscrete(sorted []int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2.0
}

// Percentile linearly interpolates the p-th quantile (0..1) of a sorted slice.
func Percentile(sorted []int, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[hi]-sorted[lo])
}
