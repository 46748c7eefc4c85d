package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
)

const (
	defaultSampleRows = 20
	// charsPerToken is the rough token estimate langchaingo falls back to
	// when no tokenizer is available.
	charsPerToken = 4
)

// LLM asks a language model to describe the dataset and pick charts.
type LLM struct {
	model      llms.Model
	sampleRows int
	// contextSize bounds the sample to half the model window; zero means no bound.
	contextSize int
}

// Option configures an LLM analyzer.
type Option func(*LLM)

// WithContextSize bounds the prompt sample by the model context window in tokens.
func WithContextSize(tokens int) Option { return func(a *LLM) { a.contextSize = tokens } }

// WithSampleRows caps how many leading rows are sent to the model.
func WithSampleRows(n int) Option {
	return func(a *LLM) {
		if n > 0 {
			a.sampleRows = n
		}
	}
}

// NewLLM wraps an existing model.
func NewLLM(model llms.Model, opts ...Option) *LLM {
	a := &LLM{model: model, sampleRows: defaultSampleRows}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NewOpenAI builds an analyzer backed by an OpenAI-compatible endpoint.
// Empty token and baseURL fall back to the client's environment defaults.
func NewOpenAI(model, token, baseURL string, opts ...Option) (*LLM, error) {
	var clientOpts []openai.Option
	if model != "" {
		clientOpts = append(clientOpts, openai.WithModel(model))
	}
	if token != "" {
		clientOpts = append(clientOpts, openai.WithToken(token))
	}
	if baseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(baseURL))
	}
	m, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("analysis: openai client: %w", err)
	}
	return NewLLM(m, opts...), nil
}

// Analyze implements Analyzer.
func (a *LLM) Analyze(ctx context.Context, ds dataset.Dataset) (Result, error) {
	cols := dataset.Columns(ds)
	prompt, err := a.prompt(ds, cols)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	res := parseCompletion(completion, cols)
	zerolog.Ctx(ctx).Debug().
		Int("prompt_len", len(prompt)).
		Int("completion_len", len(completion)).
		Int("recommendations", len(res.Recommendations)).
		Msg("llm analysis complete")
	return res, nil
}

func (a *LLM) prompt(ds dataset.Dataset, cols []string) (string, error) {
	n, sample, err := a.sample(ds)
	if err != nil {
		return "", err
	}
	names := make([]string, len(charts.Types()))
	for i, t := range charts.Types() {
		names[i] = string(t)
	}

	var b strings.Builder
	b.WriteString("You are a data analyst. Analyze the dataset below and reply with a single JSON object ")
	b.WriteString(`of the form {"text": string, "suggestedColumns": [string], "recommendations": [string]}.`)
	b.WriteString("\n\"text\" is a short narrative analysis of the data.")
	fmt.Fprintf(&b, "\n\"suggestedColumns\" lists the columns to chart, chosen from: %s.", strings.Join(cols, ", "))
	fmt.Fprintf(&b, "\n\"recommendations\" lists chart types, chosen from: %s.", strings.Join(names, ", "))
	fmt.Fprintf(&b, "\nThe dataset has %d rows. The first %d rows are:\n%s\n", ds.Len(), n, sample)
	return b.String(), nil
}

// sample marshals the leading rows, dropping rows from the end until the
// estimated token count fits half the context window. At least one row is
// always kept when the dataset has any.
func (a *LLM) sample(ds dataset.Dataset) (int, []byte, error) {
	n := min(ds.Len(), a.sampleRows)
	budget := a.contextSize * charsPerToken / 2
	for {
		out, err := json.Marshal(dataset.New(ds.Records()[:n]))
		if err != nil {
			return 0, nil, err
		}
		if a.contextSize <= 0 || n <= 1 || len(out) <= budget {
			return n, out, nil
		}
		n--
	}
}

// parseCompletion reads the first JSON object in the completion. Unknown
// columns and chart types are dropped. A completion with no JSON object is
// taken as plain narrative.
func parseCompletion(completion string, cols []string) Result {
	start := strings.Index(completion, "{")
	end := strings.LastIndex(completion, "}")
	if start < 0 || end <= start || !gjson.Valid(completion[start:end+1]) {
		return Result{Text: strings.TrimSpace(completion)}
	}
	obj := gjson.Parse(completion[start : end+1])

	res := Result{Text: strings.TrimSpace(obj.Get("text").String())}
	if res.Text == "" {
		res.Text = strings.TrimSpace(obj.Get("analysis").String())
	}
	for _, c := range firstOf(obj, "suggestedColumns", "suggested_columns").Array() {
		name := c.String()
		if slices.Contains(cols, name) && !slices.Contains(res.SuggestedColumns, name) {
			res.SuggestedColumns = append(res.SuggestedColumns, name)
		}
	}
	for _, r := range obj.Get("recommendations").Array() {
		t, err := charts.ParseType(r.String())
		if err != nil {
			continue
		}
		res.Recommendations = append(res.Recommendations, t)
	}
	return res
}

func firstOf(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}
