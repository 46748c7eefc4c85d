package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vinodismyname/mcpviz/config"
	"github.com/vinodismyname/mcpviz/internal/analysis"
	"github.com/vinodismyname/mcpviz/internal/export"
	"github.com/vinodismyname/mcpviz/internal/registry"
	"github.com/vinodismyname/mcpviz/internal/render"
	"github.com/vinodismyname/mcpviz/internal/report"
	"github.com/vinodismyname/mcpviz/internal/runtime"
	"github.com/vinodismyname/mcpviz/internal/security"
	"github.com/vinodismyname/mcpviz/internal/session"
	"github.com/vinodismyname/mcpviz/internal/telemetry"
	"github.com/vinodismyname/mcpviz/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		cfgFile         string
		shutdownTimeout time.Duration
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.StringVar(&cfgFile, "config", "", "Optional config file (yaml, json or toml)")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.Parse()

	// .env is optional; MCPVIZ_* variables may come from the environment alone
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zlog.Logger.Level(level).With().Str("service", "mcpviz-server").Logger()
	ctx := logger.WithContext(context.Background())

	// Security: validate allow-list directories on startup (fail-safe on error)
	secMgr, err := security.NewManager(cfg.AllowedDirs, nil)
	if err != nil {
		logger.Error().Err(err).Msg("security: failed to initialize manager")
		fmt.Fprintln(os.Stderr, "invalid security configuration; set MCPVIZ_ALLOWED_DIRS")
		os.Exit(1)
	}
	if err := secMgr.ValidateConfig(); err != nil {
		logger.Error().Err(err).Msg("security: invalid allow-list configuration")
		fmt.Fprintln(os.Stderr, "no allowed directories configured; set MCPVIZ_ALLOWED_DIRS")
		os.Exit(1)
	}
	logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")

	toolRegistry := registry.New()
	contextSize := toolRegistry.ModelContextSize(cfg.LLMModel)

	analyzer, err := buildAnalyzer(cfg, contextSize)
	if err != nil {
		logger.Error().Err(err).Str("provider", cfg.LLMProvider).Msg("analysis: failed to initialize model")
		os.Exit(1)
	}

	limits := runtime.FromConfig(cfg)
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController)

	sessions := session.NewManager(cfg.SessionTTL, 0, runtimeController, nil,
		session.WithValidator(secMgr),
		session.WithMaxFileBytes(limits.MaxFileBytes),
		session.WithLogger(logger),
	)
	sessions.Start()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sessions.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("session manager shutdown incomplete")
		}
	}()

	layout := export.DefaultLayout()
	layout.Margin = cfg.PageMargin
	exporter := export.New(
		render.NewSurface(render.NewRenderer(cfg.ChartWidth, cfg.ChartHeight)),
		report.NewPDFWriter(),
		layout,
	)

	exportFilter := registry.NewExportToolFilter(cfg.EnableExport)

	srv := server.NewMCPServer(
		"MCP Data Visualization Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(telemetry.NewHooks(logger).Server()),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool { return exportFilter.FilterTools(ctx, tools) }),
	)

	registry.RegisterTools(srv, toolRegistry, registry.Deps{
		Limits:       runtimeController.LimitsSnapshot(),
		Sessions:     sessions,
		Analyzer:     analyzer,
		Exporter:     exporter,
		Outputs:      secMgr,
		EnableExport: cfg.EnableExport,
	})

	tools, _ := toolRegistry.Tools(ctx)
	toolNames := make([]string, 0, len(tools))
	for _, t := range tools {
		if exportFilter.Allowed(t.Name) {
			toolNames = append(toolNames, t.Name)
		}
	}

	logger.Info().
		Ctx(ctx).
		Strs("tools", toolNames).
		Str("version", version.Version()).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_open_sessions", limits.MaxOpenSessions).
		Str("llm_provider", cfg.LLMProvider).
		Int("model_context_size", contextSize).
		Bool("export_enabled", cfg.EnableExport).
		Bool("stdio", useStdio).
		Msg("server bootstrap configured")

	if !useStdio {
		fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
		os.Exit(2)
	}

	err = server.ServeStdio(srv, server.WithStdioContextFunc(func(c context.Context) context.Context {
		return logger.WithContext(c)
	}))
	if err != nil {
		// stderr only; stdout carries the protocol
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// buildAnalyzer selects the offline heuristic or an OpenAI-compatible model
// whose prompt sample is bounded by contextSize tokens.
func buildAnalyzer(cfg *config.Config, contextSize int) (analysis.Analyzer, error) {
	if cfg.LLMProvider != config.LLMProviderOpenAI {
		return analysis.NewHeuristic(), nil
	}
	return analysis.NewOpenAI(cfg.LLMModel, cfg.LLMToken, cfg.LLMBaseURL, analysis.WithContextSize(contextSize))
}
