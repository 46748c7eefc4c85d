package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
)

func parse(t *testing.T, csv string) dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse([]byte(csv), dataset.FormatCSV)
	require.NoError(t, err)
	return ds
}

const salesCSV = "region,sales,units,cost\nn,10,1,5\ns,20,2,3\nn,30,3,9\ne,40,4,1"

func TestHeuristic_PicksCorrelatedPair(t *testing.T) {
	res, err := NewHeuristic().Analyze(context.Background(), parse(t, salesCSV))
	require.NoError(t, err)

	require.Equal(t, []string{"sales", "units"}, res.SuggestedColumns)
	require.Equal(t, []charts.Type{charts.Bar, charts.Line, charts.Scatter, charts.Boxplot}, res.Recommendations)
	require.Contains(t, res.Text, "4 rows and 4 columns (3 numeric, 1 categorical)")
	require.Contains(t, res.Text, `region has 3 distinct values; the most frequent is "n" (2 rows).`)
	require.Contains(t, res.Text, "sales ranges from 10 to 40 with mean 25, median 25 and standard deviation 11.18.")
	require.Contains(t, res.Text, "between sales and units (r = 1)")
}

func TestHeuristic_SingleNumericColumn(t *testing.T) {
	res, err := NewHeuristic().Analyze(context.Background(), parse(t, "name,score\na,1\nb,5\nc,3"))
	require.NoError(t, err)
	require.Equal(t, []string{"score"}, res.SuggestedColumns)
	require.Equal(t, []charts.Type{charts.Bar, charts.Line, charts.Boxplot, charts.Heatmap}, res.Recommendations)
}

func TestHeuristic_CategoricalOnly(t *testing.T) {
	res, err := NewHeuristic().Analyze(context.Background(), parse(t, "color,size\nred,s\nblue,m\nred,l"))
	require.NoError(t, err)
	require.Equal(t, []string{"color"}, res.SuggestedColumns)
	require.Equal(t, []charts.Type{charts.Pie}, res.Recommendations)
}

func TestHeuristic_Empty(t *testing.T) {
	res, err := NewHeuristic().Analyze(context.Background(), dataset.New(nil))
	require.NoError(t, err)
	require.NotEmpty(t, res.Text)
	require.Empty(t, res.Recommendations)
}

func TestApply_FallsBackToCurrentSelection(t *testing.T) {
	ds := parse(t, salesCSV)

	built, skipped := Apply(Result{Recommendations: []charts.Type{charts.Bar, charts.Scatter, charts.Pie}}, ds, []string{"region"})
	require.Len(t, built, 2)
	require.Equal(t, charts.Bar, built[0].Type)
	require.Equal(t, charts.Pie, built[1].Type)
	require.Equal(t, []charts.Type{charts.Scatter}, skipped)

	built, skipped = Apply(Result{
		SuggestedColumns: []string{"sales", "cost"},
		Recommendations:  []charts.Type{charts.Scatter},
	}, ds, []string{"region"})
	require.Empty(t, skipped)
	require.Equal(t, "sales vs cost", built[0].Series[0].Label)
}

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range msgs {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				f.prompt += tc.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, opts...)
}

func TestLLM_ParsesRecommendations(t *testing.T) {
	m := &fakeModel{reply: "Here you go:\n```json\n" +
		`{"text": "Sales climb steadily.", "suggestedColumns": ["sales", "bogus", "sales", "units"], "recommendations": ["Bar", "sankey", "scatter"]}` +
		"\n```"}
	res, err := NewLLM(m).Analyze(context.Background(), parse(t, salesCSV))
	require.NoError(t, err)

	require.Equal(t, "Sales climb steadily.", res.Text)
	require.Equal(t, []string{"sales", "units"}, res.SuggestedColumns)
	require.Equal(t, []charts.Type{charts.Bar, charts.Scatter}, res.Recommendations)

	require.Contains(t, m.prompt, "region, sales, units, cost")
	require.Contains(t, m.prompt, `{"region":"n","sales":10,"units":1,"cost":5}`)
	require.Contains(t, m.prompt, "The dataset has 4 rows.")
}

func TestLLM_SampleFitsContextWindow(t *testing.T) {
	m := &fakeModel{reply: `{"text": "ok"}`}
	// 60 tokens leave 120 characters for the sample: two 44-character rows fit, three do not
	_, err := NewLLM(m, WithContextSize(60)).Analyze(context.Background(), parse(t, salesCSV))
	require.NoError(t, err)
	require.Contains(t, m.prompt, "The dataset has 4 rows. The first 2 rows are:")
	require.NotContains(t, m.prompt, `"region":"n","sales":30`)

	m = &fakeModel{reply: `{"text": "ok"}`}
	_, err = NewLLM(m, WithContextSize(1), WithSampleRows(3)).Analyze(context.Background(), parse(t, salesCSV))
	require.NoError(t, err)
	require.Contains(t, m.prompt, "The first 1 rows are:")

	m = &fakeModel{reply: `{"text": "ok"}`}
	_, err = NewLLM(m, WithSampleRows(3)).Analyze(context.Background(), parse(t, salesCSV))
	require.NoError(t, err)
	require.Contains(t, m.prompt, "The first 3 rows are:")
}

func TestLLM_PlainTextCompletion(t *testing.T) {
	m := &fakeModel{reply: "  The data is too small to say much.  "}
	res, err := NewLLM(m).Analyze(context.Background(), parse(t, salesCSV))
	require.NoError(t, err)
	require.Equal(t, "The data is too small to say much.", res.Text)
	require.Empty(t, res.Recommendations)
}

func TestLLM_ModelError(t *testing.T) {
	m := &fakeModel{err: errors.New("rate limited")}
	_, err := NewLLM(m).Analyze(context.Background(), parse(t, salesCSV))
	require.ErrorIs(t, err, ErrAnalysisFailed)
	require.Contains(t, err.Error(), "rate limited")
}
