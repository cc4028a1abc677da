// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Provider ProviderConfig `toml:"provider"`
	History  HistoryConfig  `toml:"history"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Difficulty  *string  `toml:"difficulty"`
	Layout      *string  `toml:"layout"`
	FocusMissed *bool    `toml:"focus-missed"`
	FocusTop    *int     `toml:"focus-top"`
	FocusFactor *float64 `toml:"focus-factor"`
	Interval    *string  `toml:"interval"`
}

// ProviderConfig selects and tunes the text provider.
type ProviderConfig struct {
	Kind      *string `toml:"kind"`
	Model     *string `toml:"model"`
	Timeout   *string `toml:"timeout"`
	WordsFile *string `toml:"words-file"`
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	Backend   *string `toml:"backend"`
	Path      *string `toml:"path"`
	RedisAddr *string `toml:"redis-addr"`
	RedisKey  *string `toml:"redis-key"`
	Recent    *int    `toml:"recent"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `velotype config` when no config exists.
const Template = `# velotype configuration

[practice]
# difficulty = "medium"      # easy, medium, hard, code
# layout = "qwerty"          # qwerty, azerty, dvorak
# focus-missed = false       # bias local text toward most-missed keys
# focus-top = 8              # keys favoured when focus-missed is on
# focus-factor = 2.0
# interval = "500ms"         # live stats refresh

[provider]
# kind = "openai"            # openai (needs OPENAI_API_KEY) or local
# model = "gpt-4o-mini"
# timeout = "15s"
# words-file = ""            # one word per line; empty uses the built-in list

[history]
# backend = "sqlite"         # sqlite, file, redis or memory
# path = ""                  # database or .json/.yaml file
# redis-addr = "localhost:6379"
# redis-key = "velotype:history"
# recent = 20                # sessions used for focus keys and charts
`
