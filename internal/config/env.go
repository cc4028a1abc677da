package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Env holds secrets and endpoint overrides read from the environment.
type Env struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"VELOTYPE_OPENAI_MODEL"`
	RedisPassword string `env:"VELOTYPE_REDIS_PASSWORD"`
}

// LoadEnv loads the optional dotenv files, then parses the environment.
// Variables already set in the process win over dotenv values.
func LoadEnv(dotenvPaths ...string) (Env, error) {
	for _, path := range dotenvPaths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
