// Package main provides the CLI entrypoint for velotype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/velotype/internal/config"
	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/session"
	"github.com/verte-zerg/velotype/internal/stats"
	"github.com/verte-zerg/velotype/internal/statsui"
	"github.com/verte-zerg/velotype/internal/tui"
	"github.com/verte-zerg/velotype/internal/wordlist"
)

const (
	defaultDifficulty  = "medium"
	defaultLayout      = "qwerty"
	defaultFocusTop    = 8
	defaultFocusFactor = 2.0
	defaultRecent      = 20
	defaultCurveWindow = 5
	defaultProvider    = providerOpenAI
	defaultBackend     = backendSQLite
	defaultTimeout     = 15 * time.Second
)

var (
	debugLogging bool

	historyBackend   string
	historyPath      string
	historyRedisAddr string
	historyRedisKey  string

	practiceDifficulty  string
	practiceLayout      string
	practiceFocusMissed bool
	practiceFocusTop    int
	practiceFocusFactor float64
	practiceInterval    time.Duration
	practiceRecent      int
	providerKind        string
	providerModel       string
	providerTimeout     time.Duration
	providerWordsFile   string

	statsPlain       bool
	statsDifficulty  string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsRecent      int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "velotype",
		Short:         "Terminal typing speed trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&debugLogging, "debug", false, "enable debug logging")
	pf.StringVar(&historyBackend, "backend", defaultBackend, "history backend (sqlite, file, redis, memory)")
	pf.StringVar(&historyPath, "history-path", "", "history database or file path")
	pf.StringVar(&historyRedisAddr, "redis-addr", "localhost:6379", "redis address for the redis backend")
	pf.StringVar(&historyRedisKey, "redis-key", "", "redis key for the redis backend")

	f := rootCmd.Flags()
	f.StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty (easy, medium, hard, code)")
	f.StringVar(&practiceLayout, "layout", defaultLayout, "keyboard layout (qwerty, azerty, dvorak)")
	f.BoolVar(&practiceFocusMissed, "focus-missed", false, "bias practice toward frequently missed keys")
	f.IntVar(&practiceFocusTop, "focus-top", defaultFocusTop, "number of missed keys to focus on")
	f.Float64Var(&practiceFocusFactor, "focus-factor", defaultFocusFactor, "weight factor for missed keys")
	f.DurationVar(&practiceInterval, "interval", session.DefaultInterval, "live stats refresh interval")
	f.IntVar(&practiceRecent, "recent", defaultRecent, "number of recent sessions used for focus keys")
	f.StringVar(&providerKind, "provider", defaultProvider, "text provider (openai, local)")
	f.StringVar(&providerModel, "model", "", "OpenAI model name")
	f.DurationVar(&providerTimeout, "timeout", defaultTimeout, "text generation timeout")
	f.StringVar(&providerWordsFile, "words-file", "", "custom word list for local generation")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyHistoryConfig(cmd, fileCfg.History)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyStringConfig(cmd, "layout", &practiceLayout, fileCfg.Practice.Layout)
	applyBoolConfig(cmd, "focus-missed", &practiceFocusMissed, fileCfg.Practice.FocusMissed)
	applyIntConfig(cmd, "focus-top", &practiceFocusTop, fileCfg.Practice.FocusTop)
	applyFloatConfig(cmd, "focus-factor", &practiceFocusFactor, fileCfg.Practice.FocusFactor)
	applyIntConfig(cmd, "recent", &practiceRecent, fileCfg.History.Recent)
	applyStringConfig(cmd, "provider", &providerKind, fileCfg.Provider.Kind)
	applyStringConfig(cmd, "model", &providerModel, fileCfg.Provider.Model)
	applyStringConfig(cmd, "words-file", &providerWordsFile, fileCfg.Provider.WordsFile)
	if err := applyDurationConfig(cmd, "interval", &practiceInterval, fileCfg.Practice.Interval); err != nil {
		return err
	}
	if err := applyDurationConfig(cmd, "timeout", &providerTimeout, fileCfg.Provider.Timeout); err != nil {
		return err
	}

	difficulty, err := model.ParseDifficulty(practiceDifficulty)
	if err != nil {
		return fmt.Errorf("invalid --difficulty: %w", err)
	}
	cfg := model.Config{
		Difficulty:    difficulty,
		Layout:        practiceLayout,
		FocusMissed:   practiceFocusMissed,
		FocusTop:      practiceFocusTop,
		FocusFactor:   practiceFocusFactor,
		LiveInterval:  practiceInterval,
		RecentWindow:  practiceRecent,
		WordsFilePath: providerWordsFile,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, err := newFileLogger(config.DefaultLogPath(), debugLogging)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	env, err := config.LoadEnv(config.DefaultEnvPath(), ".env")
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	words, err := wordlist.Load(cfg.WordsFilePath)
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hist, closeHistory, err := openHistory(ctx, currentHistoryOptions(), env, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	provider, local := buildProvider(providerOptions{
		Kind:    providerKind,
		Model:   providerModel,
		Timeout: providerTimeout,
	}, env, words, logger)

	feed := tui.NewLiveFeed()
	sess := session.New(hist,
		session.WithLogger(logger.Named("session")),
		session.WithInterval(cfg.LiveInterval),
		session.WithLiveListener(feed.Publish),
	)
	logger.Infow("starting practice",
		"difficulty", cfg.Difficulty,
		"layout", cfg.Layout,
		"provider", providerKind,
		"backend", historyBackend,
		"history", hist.Len(),
	)

	m := tui.NewModel(ctx, tui.Options{
		Config:   cfg,
		Session:  sess,
		Provider: provider,
		History:  hist,
		Local:    local,
		Feed:     feed,
		Logger:   logger.Named("tui"),
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats to stdout instead of the TUI")
	cmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "difficulty filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsRecent, "recent", stats.DefaultRecent, "sessions shown in the progress chart")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyHistoryConfig(cmd, fileCfg.History)

	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}

	logger, err := newStatsLogger(statsPlain, debugLogging)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	env, err := config.LoadEnv(config.DefaultEnvPath(), ".env")
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	ctx := context.Background()
	hist, closeHistory, err := openHistory(ctx, currentHistoryOptions(), env, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	if statsPlain {
		return renderPlainStats(cmd.OutOrStdout(), stats.BuildReport(hist.Items(), cfg), cfg)
	}

	m := statsui.NewModel(hist, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Last:        statsLast,
		Recent:      statsRecent,
		CurveWindow: statsCurveWindow,
		TopKeys:     stats.DefaultTopKeys,
	}
	if statsDifficulty != "" {
		d, err := model.ParseDifficulty(statsDifficulty)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --difficulty: %w", err)
		}
		cfg.Difficulty = d
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return cfg, nil
}

func applyHistoryConfig(cmd *cobra.Command, hc config.HistoryConfig) {
	applyStringConfig(cmd, "backend", &historyBackend, hc.Backend)
	applyStringConfig(cmd, "history-path", &historyPath, hc.Path)
	applyStringConfig(cmd, "redis-addr", &historyRedisAddr, hc.RedisAddr)
	applyStringConfig(cmd, "redis-key", &historyRedisKey, hc.RedisKey)
}

func currentHistoryOptions() historyOptions {
	return historyOptions{
		Backend:   historyBackend,
		Path:      historyPath,
		RedisAddr: historyRedisAddr,
		RedisKey:  historyRedisKey,
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil || cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func validateConfig(cfg model.Config) error {
	if cfg.FocusTop < 0 {
		return fmt.Errorf("--focus-top must be >= 0")
	}
	if cfg.FocusFactor < 0 {
		return fmt.Errorf("--focus-factor must be >= 0")
	}
	if cfg.LiveInterval <= 0 {
		return fmt.Errorf("--interval must be > 0")
	}
	if cfg.RecentWindow < 0 {
		return fmt.Errorf("--recent must be >= 0")
	}
	return nil
}
