// Package analysis produces narrative text and chart recommendations for a
// dataset, either offline from descriptive statistics or through a language
// model, and turns recommendations into chart specs.
package analysis

import (
	"context"
	"errors"

	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
)

// ErrAnalysisFailed wraps every analyzer failure.
var ErrAnalysisFailed = errors.New("analysis: failed")

// Result is what an analyzer hands back. SuggestedColumns and
// Recommendations may be empty.
type Result struct {
	Text             string        `json:"text"`
	SuggestedColumns []string      `json:"suggested_columns,omitempty"`
	Recommendations  []charts.Type `json:"recommendations,omitempty"`
}

// Analyzer inspects a dataset.
type Analyzer interface {
	Analyze(ctx context.Context, ds dataset.Dataset) (Result, error)
}

// Apply builds one chart per recommended type, in order, over the suggested
// columns or current when none were suggested. Types that yield no chart are
// returned in skipped.
func Apply(res Result, ds dataset.Dataset, current []string) (built []charts.Spec, skipped []charts.Type) {
	cols := res.SuggestedColumns
	if len(cols) == 0 {
		cols = current
	}
	for _, t := range res.Recommendations {
		spec, err := charts.Build(t, ds, cols)
		if err != nil {
			skipped = append(skipped, t)
			continue
		}
		built = append(built, *spec)
	}
	return built, skipped
}
