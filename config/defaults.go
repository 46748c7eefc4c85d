package config

import "time"

// Default runtime limits and guardrails for the visualization server. They
// seed the viper defaults in Load and are referenced by internal/runtime and
// internal/session when a zero value is passed.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenSessions       = 8

	// Input bounds
	DefaultMaxFileBytes  = 32 * 1024 * 1024 // 32MB
	DefaultChartPageSize = 10
	DefaultMaxChartPage  = 100
)

const (
	// Timeouts
	DefaultOperationTimeout      = 60 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Session cache
	DefaultSessionIdleTTL       = 30 * time.Minute
	DefaultSessionCleanupPeriod = time.Minute
)

const (
	// Report geometry, millimetres on A4 portrait
	DefaultPageMargin = 10.0

	// Captured chart bitmap size, pixels
	DefaultChartWidth  = 950
	DefaultChartHeight = 500
)

const (
	LLMProviderHeuristic = "heuristic"
	LLMProviderOpenAI    = "openai"
	DefaultLLMModel      = "gpt-4o-mini"
)
