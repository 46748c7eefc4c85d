package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/mcpviz/config"
)

func TestControllerAcquireRelease(t *testing.T) {
	limits := NewLimits(1, 1)
	controller := NewController(limits)

	require.Equal(t, limits, controller.LimitsSnapshot())

	require.NoError(t, controller.AcquireRequest(context.Background()))
	controller.ReleaseRequest()

	require.NoError(t, controller.AcquireSession(context.Background()))
	controller.ReleaseSession()
}

func TestController_SessionLimitFailsFast(t *testing.T) {
	controller := NewController(NewLimits(1, 2))
	require.NoError(t, controller.AcquireSession(context.Background()))
	require.NoError(t, controller.AcquireSession(context.Background()))

	err := controller.AcquireSession(context.Background())
	require.ErrorIs(t, err, ErrSessionLimit)
	require.ErrorContains(t, err, "max=2")

	controller.ReleaseSession()
	require.NoError(t, controller.AcquireSession(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, controller.AcquireSession(ctx), context.Canceled)
}

func TestNewLimits_Defaults(t *testing.T) {
	l := NewLimits(0, -1)
	require.Equal(t, config.DefaultMaxConcurrentRequests, l.MaxConcurrentRequests)
	require.Equal(t, config.DefaultMaxOpenSessions, l.MaxOpenSessions)
	require.Equal(t, int64(config.DefaultMaxFileBytes), l.MaxFileBytes)
}

func TestFromConfig(t *testing.T) {
	l := FromConfig(&config.Config{
		MaxConcurrentRequests: 3,
		MaxOpenSessions:       4,
		MaxFileBytes:          1024,
		OperationTimeout:      5 * time.Second,
	})
	require.Equal(t, 3, l.MaxConcurrentRequests)
	require.Equal(t, 4, l.MaxOpenSessions)
	require.Equal(t, int64(1024), l.MaxFileBytes)
	require.Equal(t, 5*time.Second, l.OperationTimeout)
	require.Equal(t, config.DefaultAcquireRequestTimeout, l.AcquireRequestTimeout)
}
