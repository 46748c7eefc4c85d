// Package session owns the per-client working state: the loaded dataset, the
// current column selection and chart type, the accumulated charts and the last
// analysis. The core packages never read this state; callers pass the pieces
// they need explicitly.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/vinodismyname/mcpviz/internal/analysis"
	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
)

// ErrNoDataset is returned by operations that need a loaded dataset.
var ErrNoDataset = errors.New("session: no dataset loaded")

// State is the explicit session state. The zero value is an empty session.
type State struct {
	Source   string
	Format   dataset.Format
	LoadedAt time.Time
	// Generation increases on every Load; cursors and pending analyses bind to it.
	Generation int64
	Dataset    dataset.Dataset
	Columns    []string
	Selected   []string
	ChartType  charts.Type
	Charts     charts.Collection
	Analysis   *analysis.Result
}

// Load replaces the dataset wholesale. Charts and analysis from the previous
// dataset are dropped and the selection resets to the default.
func (s *State) Load(source string, format dataset.Format, ds dataset.Dataset, at time.Time) {
	s.Source = source
	s.Format = format
	s.LoadedAt = at
	s.Generation++
	s.Dataset = ds
	s.Columns = dataset.Columns(ds)
	s.Selected = dataset.DefaultSelection(s.Columns)
	if s.ChartType == "" {
		s.ChartType = charts.Bar
	}
	s.Charts.Reset()
	s.Analysis = nil
}

// Loaded reports whether a dataset is present.
func (s *State) Loaded() bool { return s.Source != "" }

// Select replaces the column selection after validating it.
func (s *State) Select(cols []string) error {
	if !s.Loaded() {
		return ErrNoDataset
	}
	if err := dataset.ValidateSelection(s.Columns, cols); err != nil {
		return err
	}
	s.Selected = append([]string(nil), cols...)
	return nil
}

// SetChartType changes the chart type used by Generate.
func (s *State) SetChartType(t charts.Type) { s.ChartType = t }

// Generate builds a chart from the current type and selection and appends it.
// An unavailable chart leaves the collection untouched.
func (s *State) Generate() (*charts.Spec, error) {
	if !s.Loaded() {
		return nil, ErrNoDataset
	}
	spec, err := charts.Build(s.ChartType, s.Dataset, s.Selected)
	if err != nil {
		return nil, err
	}
	s.Charts.Append(*spec)
	return spec, nil
}

// ApplyAnalysis stores res and appends one chart per recommendation.
func (s *State) ApplyAnalysis(res analysis.Result) (built []charts.Spec, skipped []charts.Type, err error) {
	if !s.Loaded() {
		return nil, nil, ErrNoDataset
	}
	s.Analysis = &res
	built, skipped = analysis.Apply(res, s.Dataset, s.Selected)
	for _, spec := range built {
		s.Charts.Append(spec)
	}
	return built, skipped, nil
}

// AnalysisText is the narrative of the last analysis, or "".
func (s *State) AnalysisText() string {
	if s.Analysis == nil {
		return ""
	}
	return s.Analysis.Text
}

// Snapshot is the serializable view of a State.
type Snapshot struct {
	Source     string           `json:"source"`
	Format     dataset.Format   `json:"format"`
	LoadedAt   time.Time        `json:"loaded_at"`
	Generation int64            `json:"generation"`
	Rows       int              `json:"rows"`
	Columns    []string         `json:"columns"`
	Selected   []string         `json:"selected"`
	ChartType  charts.Type      `json:"chart_type"`
	Charts     []charts.Spec    `json:"charts"`
	Analysis   *analysis.Result `json:"analysis,omitempty"`
	Data       dataset.Dataset  `json:"data"`
}

// Snapshot copies the state into its serializable form.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Source:     s.Source,
		Format:     s.Format,
		LoadedAt:   s.LoadedAt,
		Generation: s.Generation,
		Rows:       s.Dataset.Len(),
		Columns:    append([]string(nil), s.Columns...),
		Selected:   append([]string(nil), s.Selected...),
		ChartType:  s.ChartType,
		Charts:     s.Charts.All(),
		Analysis:   s.Analysis,
		Data:       s.Dataset,
	}
}

// MarshalJSON encodes the state through its Snapshot.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}
