package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
)

// numericThreshold is the share of finite cells above which a column counts
// as numeric.
const numericThreshold = 0.5

// Heuristic analyzes a dataset offline from column profiles.
type Heuristic struct{}

// NewHeuristic returns the offline analyzer.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Analyze implements Analyzer.
func (h *Heuristic) Analyze(ctx context.Context, ds dataset.Dataset) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	profiles := ProfileColumns(ds)
	if len(profiles) == 0 {
		return Result{Text: "The dataset is empty; there is nothing to analyze."}, nil
	}

	var numeric, categorical []string
	for _, p := range profiles {
		if p.Numeric() {
			numeric = append(numeric, p.Name)
		} else {
			categorical = append(categorical, p.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The dataset has %d rows and %d columns (%d numeric, %d categorical).",
		ds.Len(), len(profiles), len(numeric), len(categorical))
	for _, p := range profiles {
		b.WriteString(" ")
		b.WriteString(describeColumn(p))
	}
	for _, p := range profiles {
		if len(p.Warnings) > 0 {
			fmt.Fprintf(&b, " Check %s: %s.", p.Name, strings.Join(p.Warnings, "; "))
		}
	}

	res := Result{}
	pair, r := strongestPair(ds, numeric)
	switch {
	case pair != nil:
		fmt.Fprintf(&b, " The strongest linear relationship is between %s and %s (r = %s).",
			pair[0], pair[1], dataset.FormatNumber(math.Round(r*100)/100))
		res.SuggestedColumns = pair
		res.Recommendations = []charts.Type{charts.Bar, charts.Line, charts.Scatter, charts.Boxplot}
	case len(numeric) > 0:
		res.SuggestedColumns = numeric
		if len(res.SuggestedColumns) > 2 {
			res.SuggestedColumns = res.SuggestedColumns[:2]
		}
		res.Recommendations = []charts.Type{charts.Bar, charts.Line, charts.Boxplot, charts.Heatmap}
	default:
		res.SuggestedColumns = categorical[:1]
		res.Recommendations = []charts.Type{charts.Pie}
	}
	res.Text = b.String()
	return res, nil
}

func describeColumn(p ColumnProfile) string {
	if p.Numeric() {
		s := p.Stats
		return fmt.Sprintf("%s ranges from %s to %s with mean %s, median %s and standard deviation %s.",
			p.Name, num(s.Min), num(s.Max), num(s.Mean), num(s.Median), num(s.StdDev))
	}
	return fmt.Sprintf("%s has %d distinct values; the most frequent is %q (%d rows).",
		p.Name, p.Distinct, p.Top, p.TopCount)
}

func num(f float64) string {
	return dataset.FormatNumber(math.Round(f*100) / 100)
}

// strongestPair returns the numeric column pair with the largest absolute
// Pearson correlation over rows where both are finite. Ties keep column order.
func strongestPair(ds dataset.Dataset, numeric []string) ([]string, float64) {
	var best []string
	bestR := 0.0
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			xs, ys := finitePairs(ds.Floats(numeric[i]), ds.Floats(numeric[j]))
			if len(xs) < 3 {
				continue
			}
			r := stat.Correlation(xs, ys, nil)
			if math.IsNaN(r) {
				continue
			}
			if best == nil || math.Abs(r) > math.Abs(bestR) {
				best, bestR = []string{numeric[i], numeric[j]}, r
			}
		}
	}
	return best, bestR
}

func finitePairs(a, b []float64) ([]float64, []float64) {
	var xs, ys []float64
	for i := range a {
		if i >= len(b) {
			break
		}
		if isFinite(a[i]) && isFinite(b[i]) {
			xs = append(xs, a[i])
			ys = append(ys, b[i])
		}
	}
	return xs, ys
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
