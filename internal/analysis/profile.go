package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vinodismyname/mcpviz/internal/dataset"
	"github.com/vinodismyname/mcpviz/internal/stats"
)

// ColumnProfile describes one column: how charts will treat it (Kind), what
// its cells look like (Type), the role it most likely plays, and data quality
// warnings.
type ColumnProfile struct {
	Name     string        `json:"name"`
	Kind     string        `json:"kind" jsonschema_description:"numeric when more than half the cells are numbers, else categorical"`
	Type     string        `json:"type" jsonschema_description:"Dominant cell type: numeric, percent, date, boolean, text, mixed or empty"`
	Role     string        `json:"role" jsonschema_description:"measure, dimension, time, id or target"`
	Missing  int           `json:"missing"`
	Distinct int           `json:"distinct"`
	Top      string        `json:"top,omitempty" jsonschema_description:"Most frequent value of a categorical column"`
	TopCount int           `json:"top_count,omitempty"`
	Stats    stats.Profile `json:"stats"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Numeric reports whether charts read the column as numbers.
func (p ColumnProfile) Numeric() bool { return p.Kind == KindNumeric }

const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// ProfileColumns profiles every column of ds in column order.
func ProfileColumns(ds dataset.Dataset) []ColumnProfile {
	cols := dataset.Columns(ds)
	out := make([]ColumnProfile, len(cols))
	for i, c := range cols {
		out[i] = ProfileColumn(ds, c)
	}
	return out
}

// ProfileColumn profiles a single column.
func ProfileColumn(ds dataset.Dataset, name string) ColumnProfile {
	p := ColumnProfile{Name: name, Stats: stats.Describe(ds.Floats(name)), Kind: KindCategorical}
	if p.Stats.NumericShare() > numericThreshold {
		p.Kind = KindNumeric
	}

	var (
		tc   typeCounter
		keys []string
	)
	for _, v := range ds.Column(name) {
		if !tc.observe(v) {
			p.Missing++
			continue
		}
		keys = append(keys, v.String())
	}
	freq := stats.FrequencyCount(keys)
	p.Distinct = freq.Len()
	if !p.Numeric() {
		for pair := freq.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value > p.TopCount {
				p.Top, p.TopCount = pair.Key, pair.Value
			}
		}
	}

	nonEmpty := len(keys)
	uniqueRatio := 0.0
	if nonEmpty > 0 {
		uniqueRatio = float64(p.Distinct) / float64(nonEmpty)
	}
	p.Type = tc.dominantType()
	p.Role = inferRole(name, tc, uniqueRatio, nonEmpty)
	p.Warnings = qualityChecks(name, tc, p, nonEmpty)
	return p
}

// typeCounter tracks observed value categories for a column.
type typeCounter struct {
	numCount     int
	textNumCount int
	percentCount int
	textCount    int
	dateCount    int
	boolCount    int
	negCount     int
	gt100Pct     int
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "01/02/2006", "2006/01/02", "1/2/2006", "1/2/06", "2006-01-02 15:04:05",
}

// observe records v and reports false for a missing cell.
func (t *typeCounter) observe(v dataset.Value) bool {
	switch v.Kind {
	case dataset.Number:
		t.numCount++
		if v.Num < 0 {
			t.negCount++
		}
		return true
	case dataset.String:
	default:
		return false
	}

	s := strings.TrimSpace(v.Str)
	if s == "" {
		return false
	}
	low := strings.ToLower(s)
	if low == "true" || low == "false" || low == "yes" || low == "no" {
		t.boolCount++
		return true
	}
	if strings.HasSuffix(low, "%") {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(strings.TrimSuffix(low, "%")), ",", ""), 64); err == nil {
			t.percentCount++
			if f > 100 {
				t.gt100Pct++
			}
			if f < 0 {
				t.negCount++
			}
			return true
		}
	}
	// numbers the parser kept as text, e.g. "$1,200"
	clean := strings.Map(func(r rune) rune {
		if r == ',' || r == '$' {
			return -1
		}
		return r
	}, s)
	if f, err := strconv.ParseFloat(clean, 64); err == nil && !math.IsNaN(f) {
		t.textNumCount++
		if f < 0 {
			t.negCount++
		}
		return true
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			t.dateCount++
			return true
		}
	}
	t.textCount++
	return true
}

func (t typeCounter) numeric() int { return t.numCount + t.textNumCount }

func (t typeCounter) dominantType() string {
	set := []struct {
		n int
		k string
	}{
		{t.percentCount, "percent"},
		{t.numeric(), "numeric"},
		{t.dateCount, "date"},
		{t.boolCount, "boolean"},
		{t.textCount, "text"},
	}
	best, name := 0, "empty"
	for _, s := range set {
		if s.n > best {
			best, name = s.n, s.k
		}
	}
	counts := []int{t.percentCount, t.numeric(), t.dateCount, t.boolCount, t.textCount}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	// a runner-up at 20% of the leader makes the column mixed
	if counts[0] > 0 && counts[1] > 0 && float64(counts[1]) >= 0.2*float64(counts[0]) {
		return "mixed"
	}
	return name
}

var (
	reTimeName = regexp.MustCompile(`\b(date|time|month|year|ymd|q\d|qtr|quarter|week|wk|day)\b`)
	reIDName   = regexp.MustCompile(`(^|[^a-z])(id|uuid|key)$|^(id|uuid|key)([^a-z]|$)|[a-z]Id$`)
)

func nameTokens(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), " ")
}

func idLike(name string) bool {
	trimmed := strings.TrimSpace(name)
	return reIDName.MatchString(strings.ToLower(trimmed)) || reIDName.MatchString(trimmed)
}

func inferRole(name string, t typeCounter, uniqueRatio float64, nonEmpty int) string {
	tokens := nameTokens(name)
	if reTimeName.MatchString(tokens) && t.dateCount > 0 {
		return "time"
	}
	if idLike(name) && uniqueRatio >= 0.9 && nonEmpty > 0 {
		return "id"
	}
	if containsAny(tokens, "target", "plan", "budget", "goal", "quota") && (t.percentCount > 0 || t.numeric() > 0) {
		return "target"
	}
	if t.dateCount > 0 && t.dateCount >= t.numeric() && t.dateCount >= t.textCount {
		return "time"
	}
	// unique text reads as an identifier even without a name hint
	if uniqueRatio >= 0.95 && nonEmpty > 1 && t.textCount > t.numeric() {
		return "id"
	}
	if t.numeric()+t.percentCount > t.textCount+t.boolCount {
		return "measure"
	}
	return "dimension"
}

func qualityChecks(name string, t typeCounter, p ColumnProfile, nonEmpty int) []string {
	var warnings []string
	if p.Missing > 0 {
		warnings = append(warnings, fmt.Sprintf("missing values: %d of %d", p.Missing, p.Missing+nonEmpty))
	}
	if containsAny(nameTokens(name), "count", "qty", "quantity", "units", "views", "clicks", "visits", "orders", "transactions") && t.negCount > 0 {
		warnings = append(warnings, fmt.Sprintf("negative values in nonnegative field: %d", t.negCount))
	}
	if t.gt100Pct > 0 {
		warnings = append(warnings, fmt.Sprintf(">100%% values in percent-like field: %d", t.gt100Pct))
	}
	if p.Type == "mixed" {
		warnings = append(warnings, "mixed types observed")
	}
	if t.textNumCount > 0 || t.percentCount > 0 {
		warnings = append(warnings, fmt.Sprintf("numbers stored as text are not plotted: %d", t.textNumCount+t.percentCount))
	}
	if idLike(name) && nonEmpty > p.Distinct {
		warnings = append(warnings, fmt.Sprintf("duplicate IDs detected: %d", nonEmpty-p.Distinct))
	}
	return warnings
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
