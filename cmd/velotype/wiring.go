package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/velotype/internal/config"
	"github.com/verte-zerg/velotype/internal/generator"
	"github.com/verte-zerg/velotype/internal/history"
	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/session"
	"github.com/verte-zerg/velotype/internal/stats"
	"github.com/verte-zerg/velotype/internal/store"
	"github.com/verte-zerg/velotype/internal/textgen"
)

const (
	providerOpenAI = "openai"
	providerLocal  = "local"

	backendSQLite = "sqlite"
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
)

type historyOptions struct {
	Backend   string
	Path      string
	RedisAddr string
	RedisKey  string
}

// openHistory opens the configured backend and loads the history list.
// The returned close func is always safe to call.
func openHistory(ctx context.Context, opts historyOptions, env config.Env, logger *zap.SugaredLogger) (*history.Store, func(), error) {
	var (
		backend history.Backend
		closer  func() error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", backendSQLite:
		path := opts.Path
		if path == "" {
			path = config.DefaultDBPath()
		}
		st, err := store.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		backend, closer = st, st.Close
	case backendFile:
		path := opts.Path
		if path == "" {
			path = config.DefaultHistoryFilePath()
		}
		backend = history.NewFileBackend(path)
	case backendRedis:
		rb, err := history.NewRedisBackend(ctx, opts.RedisAddr, env.RedisPassword, opts.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = rb, rb.Close
	case backendMemory:
		backend = history.NewMemoryBackend()
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q (expected sqlite, file, redis or memory)", opts.Backend)
	}

	logger = logger.Named("history")
	closeFn := func() {
		if closer == nil {
			return
		}
		if err := closer(); err != nil {
			logger.Warnw("failed to close history backend", "error", err)
		}
	}
	return history.Open(ctx, backend, logger), closeFn, nil
}

type providerOptions struct {
	Kind    string
	Model   string
	Timeout time.Duration
}

// buildProvider returns the session provider and the local generator used
// for focus practice. When OpenAI is selected and a key exists, a failed
// request yields the static fallback text, never local output.
func buildProvider(opts providerOptions, env config.Env, words []string, logger *zap.SugaredLogger) (session.Provider, *textgen.Local) {
	logger = logger.Named("textgen")
	local := textgen.NewLocal(words, generator.New())

	var gen textgen.Generator = local
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case providerOpenAI:
		if env.OpenAIAPIKey == "" {
			logger.Infow("OPENAI_API_KEY not set, using local text generation")
			break
		}
		name := opts.Model
		if name == "" {
			name = env.OpenAIModel
		}
		openAI := textgen.NewOpenAI(textgen.OpenAIConfig{
			APIKey:  env.OpenAIAPIKey,
			BaseURL: env.OpenAIBaseURL,
			Model:   name,
			Timeout: opts.Timeout,
		})
		gen = openAI
	case providerLocal, "":
	default:
		logger.Warnw("unknown provider, using local text generation", "provider", opts.Kind)
	}
	return textgen.WithFallback(gen, logger), local
}

func newFileLogger(path string, debug bool) (*zap.SugaredLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return buildLogger([]string{path}, debug)
}

func newStderrLogger(debug bool) (*zap.SugaredLogger, error) {
	return buildLogger([]string{"stderr"}, debug)
}

func newStatsLogger(plain, debug bool) (*zap.SugaredLogger, error) {
	if plain {
		return newStderrLogger(debug)
	}
	return newFileLogger(config.DefaultLogPath(), debug)
}

func buildLogger(outputs []string, debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = outputs
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}

func syncLogger(logger *zap.SugaredLogger) {
	if err := logger.Sync(); err != nil {
		// Best-effort flush; syncing stderr fails on some terminals.
		_ = err
	}
}

func renderPlainStats(w io.Writer, report stats.Report, cfg model.StatsConfig) error {
	if err := stats.RenderSummary(w, report.Summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if report.Summary.Sessions == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Recent, cfg.CurveWindow, 0, 10, false); err != nil {
		return fmt.Errorf("failed to write curves: %w", err)
	}
	if err := stats.RenderMissedKeys(w, report.TopMissed); err != nil {
		return fmt.Errorf("failed to write missed keys: %w", err)
	}
	if kc, ok := report.MostMissed(); ok {
		if _, err := fmt.Fprintf(w, "Most missed key: %s\nRecommended drill: Basic Home Row\n", stats.KeyLabel(kc.Key)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
