package render

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/vinodismyname/mcpviz/internal/charts"
)

// Capturer returns an encoded bitmap for a chart.
type Capturer interface {
	Capture(ctx context.Context, spec charts.Spec) ([]byte, error)
}

// Drawer paints a chart onto the shared surface and reads it back.
type Drawer interface {
	Draw(spec charts.Spec) ([]byte, error)
}

// Surface is the one rendering canvas of the process. Captures hold it
// exclusively, so at most one draw is ever in flight.
type Surface struct {
	drawer Drawer
	sem    *semaphore.Weighted
}

// NewSurface wraps d behind an exclusive guard.
func NewSurface(d Drawer) *Surface {
	return &Surface{drawer: d, sem: semaphore.NewWeighted(1)}
}

// Capture waits for the surface, draws spec on it and returns the bitmap.
func (s *Surface) Capture(ctx context.Context, spec charts.Spec) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("render: surface busy: %w", err)
	}
	defer s.sem.Release(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := s.drawer.Draw(spec)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().
		Str("chart", string(spec.Type)).
		Int("bytes", len(img)).
		Dur("took", time.Since(start)).
		Msg("chart captured")
	return img, nil
}
