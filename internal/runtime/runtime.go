package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vinodismyname/mcpviz/config"
)

// ErrSessionLimit indicates every open-session slot is taken.
var ErrSessionLimit = errors.New("runtime: open session limit reached")

// Limits captures the concurrency and session guardrails configured for the server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxOpenSessions       int

	// Input bounds
	MaxFileBytes  int64
	ChartPageSize int
	MaxChartPage  int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxOpenSessions int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxOpenSessions <= 0 {
		maxOpenSessions = config.DefaultMaxOpenSessions
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxOpenSessions:       maxOpenSessions,
		MaxFileBytes:          config.DefaultMaxFileBytes,
		ChartPageSize:         config.DefaultChartPageSize,
		MaxChartPage:          config.DefaultMaxChartPage,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// FromConfig derives Limits from a loaded configuration.
func FromConfig(c *config.Config) Limits {
	l := NewLimits(c.MaxConcurrentRequests, c.MaxOpenSessions)
	if c.MaxFileBytes > 0 {
		l.MaxFileBytes = c.MaxFileBytes
	}
	if c.OperationTimeout > 0 {
		l.OperationTimeout = c.OperationTimeout
	}
	return l
}

// Controller coordinates runtime semaphores for request and session guardrails.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	sessionSemaphore *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		sessionSemaphore: semaphore.NewWeighted(int64(limits.MaxOpenSessions)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireSession reserves an open-session slot without waiting. Sessions are
// long-lived, so a full table fails fast instead of blocking the caller.
func (c *Controller) AcquireSession(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.sessionSemaphore.TryAcquire(1) {
		return fmt.Errorf("%w (max=%d)", ErrSessionLimit, c.limits.MaxOpenSessions)
	}
	return nil
}

// ReleaseSession frees an open-session slot.
func (c *Controller) ReleaseSession() {
	c.sessionSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
