// Package stats holds the pure statistical primitives used to build charts:
// nearest-rank quantiles, five-number summaries, frequency counts and
// normalization. Nothing here keeps state between calls.
package stats

import (
	"math"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FiveNumberSummary is the boxplot summary of one column.
type FiveNumberSummary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Values returns the summary in Minimum, Q1, Median, Q3, Maximum order.
func (s FiveNumberSummary) Values() []float64 {
	return []float64{s.Min, s.Q1, s.Median, s.Q3, s.Max}
}

// Quantile returns sorted[floor(len(sorted)*p)]. It is a nearest-rank lookup
// with no interpolation: p=0.5 on an even-length slice returns the upper middle
// value. An index outside the slice yields NaN.
func Quantile(sorted []float64, p float64) float64 {
	idx := math.Floor(float64(len(sorted)) * p)
	if math.IsNaN(idx) || idx < 0 || idx >= float64(len(sorted)) {
		return math.NaN()
	}
	return sorted[int(idx)]
}

// FiveNumbers sorts a copy of values ascending and reads the five numbers off it.
// NaNs sort ahead of every number, so a column holding any NaN reports a NaN
// minimum.
func FiveNumbers(values []float64) FiveNumberSummary {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := FiveNumberSummary{
		Min:    math.NaN(),
		Max:    math.NaN(),
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}
	if len(sorted) > 0 {
		s.Min = sorted[0]
		s.Max = sorted[len(sorted)-1]
	}
	return s
}

// FrequencyCount counts occurrences of each key. Keys keep first-seen order.
func FrequencyCount(keys []string) *orderedmap.OrderedMap[string, int] {
	counts := orderedmap.New[string, int]()
	for _, k := range keys {
		n, _ := counts.Get(k)
		counts.Set(k, n+1)
	}
	return counts
}

// Normalize scales v against the series maximum. A zero max is not guarded
// and yields NaN or ±Inf.
func Normalize(v, max float64) float64 {
	return v / max
}

// MaxOf returns the largest value, or NaN when any value is NaN. An empty
// slice yields -Inf.
func MaxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			return math.NaN()
		}
		if v > m {
			m = v
		}
	}
	return m
}
