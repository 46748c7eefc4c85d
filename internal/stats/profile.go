package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
)

// Profile is a descriptive summary of the numeric cells of one column.
type Profile struct {
	Count   int     `json:"count"`
	Numeric int     `json:"numeric"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// NumericShare is the fraction of cells that held a finite number.
func (p Profile) NumericShare() float64 {
	if p.Count == 0 {
		return 0
	}
	return float64(p.Numeric) / float64(p.Count)
}

// Describe profiles a column, skipping NaN and infinite cells. Columns with no
// finite values report zero statistics.
func Describe(values []float64) Profile {
	p := Profile{Count: len(values)}
	data := make(mstats.Float64Data, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		data = append(data, v)
	}
	p.Numeric = len(data)
	if len(data) == 0 {
		return p
	}

	// errors only arise on empty input, which is excluded above
	p.Mean, _ = mstats.Mean(data)
	p.Median, _ = mstats.Median(data)
	p.StdDev, _ = mstats.StandardDeviation(data)
	p.Min, _ = mstats.Min(data)
	p.Max, _ = mstats.Max(data)
	return p
}
