package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
)

func sampleDataset(t *testing.T) dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse([]byte("region,sales,cost\nnorth,10,4\nsouth,20,9\nnorth,40,x\neast,15,7"), dataset.FormatCSV)
	require.NoError(t, err)
	return ds
}

func TestRenderer_DrawsEveryType(t *testing.T) {
	ds := sampleDataset(t)
	r := NewRenderer(400, 240)

	cases := map[charts.Type][]string{
		charts.Bar:     {"sales", "cost"},
		charts.Line:    {"sales", "cost"},
		charts.Pie:     {"region"},
		charts.Scatter: {"sales", "cost"},
		charts.Radar:   {"sales", "cost", "region"},
		charts.Boxplot: {"sales", "cost"},
		charts.Heatmap: {"sales"},
	}
	for typ, cols := range cases {
		t.Run(string(typ), func(t *testing.T) {
			spec, err := charts.Build(typ, ds, cols)
			require.NoError(t, err)

			img, err := r.Draw(*spec)
			require.NoError(t, err)

			cfg, err := png.DecodeConfig(bytes.NewReader(img))
			require.NoError(t, err)
			require.Equal(t, 400, cfg.Width)
			require.Equal(t, 240, cfg.Height)
		})
	}
}

func TestRenderer_NothingToDraw(t *testing.T) {
	ds := sampleDataset(t)
	spec, err := charts.Build(charts.Scatter, ds, []string{"region", "region"})
	require.NoError(t, err)

	_, err = NewRenderer(0, 0).Draw(*spec)
	require.ErrorIs(t, err, ErrNothingToDraw)
}

type slowDrawer struct {
	active  atomic.Int32
	overlap atomic.Bool
	calls   atomic.Int32
	fail    charts.Type
}

func (d *slowDrawer) Draw(spec charts.Spec) ([]byte, error) {
	if d.active.Add(1) > 1 {
		d.overlap.Store(true)
	}
	defer d.active.Add(-1)
	d.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	if spec.Type == d.fail {
		return nil, errors.New("draw failed")
	}
	return []byte(spec.Type), nil
}

func TestSurface_SerializesCaptures(t *testing.T) {
	d := &slowDrawer{}
	s := NewSurface(d)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Capture(context.Background(), charts.Spec{Type: charts.Bar})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.False(t, d.overlap.Load())
	require.EqualValues(t, 8, d.calls.Load())
}

func TestSurface_CancelledContext(t *testing.T) {
	d := &slowDrawer{}
	s := NewSurface(d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Capture(ctx, charts.Spec{Type: charts.Bar})
	require.Error(t, err)
	require.Zero(t, d.calls.Load())
}

func TestSurface_PropagatesDrawError(t *testing.T) {
	s := NewSurface(&slowDrawer{fail: charts.Pie})
	_, err := s.Capture(context.Background(), charts.Spec{Type: charts.Pie})
	require.EqualError(t, err, "draw failed")
}
