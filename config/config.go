package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved server configuration.
type Config struct {
	AllowedDirs           []string      `mapstructure:"allowed_dirs"`
	EnableExport          bool          `mapstructure:"enable_export"`
	MaxConcurrentRequests int           `mapstructure:"max_concurrent_requests"`
	MaxOpenSessions       int           `mapstructure:"max_open_sessions"`
	MaxFileBytes          int64         `mapstructure:"max_file_bytes"`
	SessionTTL            time.Duration `mapstructure:"session_ttl"`
	OperationTimeout      time.Duration `mapstructure:"operation_timeout"`
	LogLevel              string        `mapstructure:"log_level"`

	// Analysis backend
	LLMProvider string `mapstructure:"llm_provider"`
	LLMModel    string `mapstructure:"llm_model"`
	LLMToken    string `mapstructure:"llm_token"`
	LLMBaseURL  string `mapstructure:"llm_base_url"`

	// Report geometry and capture size
	PageMargin  float64 `mapstructure:"page_margin"`
	ChartWidth  int     `mapstructure:"chart_width"`
	ChartHeight int     `mapstructure:"chart_height"`
}

// Load resolves configuration from defaults, an optional config file and
// MCPVIZ_* environment variables. Precedence: env > config file > defaults.
// A missing cfgFile is not an error; an unreadable one is.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MCPVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("allowed_dirs", []string{})
	v.SetDefault("enable_export", false)
	v.SetDefault("max_concurrent_requests", DefaultMaxConcurrentRequests)
	v.SetDefault("max_open_sessions", DefaultMaxOpenSessions)
	v.SetDefault("max_file_bytes", DefaultMaxFileBytes)
	v.SetDefault("session_ttl", DefaultSessionIdleTTL)
	v.SetDefault("operation_timeout", DefaultOperationTimeout)
	v.SetDefault("log_level", "info")
	v.SetDefault("llm_provider", LLMProviderHeuristic)
	v.SetDefault("llm_model", DefaultLLMModel)
	v.SetDefault("llm_token", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("page_margin", DefaultPageMargin)
	v.SetDefault("chart_width", DefaultChartWidth)
	v.SetDefault("chart_height", DefaultChartHeight)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// env lists arrive as one comma-separated string
	c.AllowedDirs = splitList(strings.Join(c.AllowedDirs, ","))
	switch c.LLMProvider {
	case LLMProviderHeuristic, LLMProviderOpenAI:
	default:
		return nil, fmt.Errorf("config: unknown llm_provider %q", c.LLMProvider)
	}
	return &c, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
