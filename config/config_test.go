package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultMaxConcurrentRequests, c.MaxConcurrentRequests)
	require.Equal(t, DefaultMaxOpenSessions, c.MaxOpenSessions)
	require.Equal(t, int64(DefaultMaxFileBytes), c.MaxFileBytes)
	require.Equal(t, DefaultSessionIdleTTL, c.SessionTTL)
	require.Equal(t, LLMProviderHeuristic, c.LLMProvider)
	require.Equal(t, DefaultPageMargin, c.PageMargin)
	require.False(t, c.EnableExport)
	require.Empty(t, c.AllowedDirs)
}

func TestLoad_FileThenEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mcpviz.yaml")
	require.NoError(t, os.WriteFile(p, []byte("max_open_sessions: 3\nsession_ttl: 5m\nenable_export: true\nchart_width: 640\n"), 0o644))

	t.Setenv("MCPVIZ_MAX_OPEN_SESSIONS", "5")
	t.Setenv("MCPVIZ_ALLOWED_DIRS", "/data, /tmp/reports")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 5, c.MaxOpenSessions)
	require.Equal(t, 5*time.Minute, c.SessionTTL)
	require.True(t, c.EnableExport)
	require.Equal(t, 640, c.ChartWidth)
	require.Equal(t, []string{"/data", "/tmp/reports"}, c.AllowedDirs)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("MCPVIZ_LLM_PROVIDER", "carrier-pigeon")
	_, err = Load("")
	require.ErrorContains(t, err, "llm_provider")
}
