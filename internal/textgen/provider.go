// Package textgen produces target text for typing sessions.
package textgen

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/velotype/internal/model"
)

const (
	fallbackCode  = "const calculateSpeed = (distance: number, time: number): number => {\n  if (time <= 0) return 0;\n  return distance / time;\n};\nconsole.log(calculateSpeed(100, 20));"
	fallbackProse = "The quick brown fox jumps over the lazy dog. Typing is a skill that improves with daily practice and dedication."
)

// ErrEmptyText is returned when a generator produced only whitespace.
var ErrEmptyText = errors.New("generator returned empty text")

// Generator produces text and may fail.
type Generator interface {
	Generate(ctx context.Context, difficulty model.Difficulty) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, difficulty model.Difficulty) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, difficulty model.Difficulty) (string, error) {
	return f(ctx, difficulty)
}

// Provider produces text and never fails.
type Provider interface {
	Generate(ctx context.Context, difficulty model.Difficulty) string
}

// FallbackText returns the static text used when generation fails.
func FallbackText(difficulty model.Difficulty) string {
	if difficulty == model.DifficultyCode {
		return fallbackCode
	}
	return fallbackProse
}

type fallbackProvider struct {
	gen    Generator
	logger *zap.SugaredLogger
}

// WithFallback wraps gen so that errors, cancellation and blank output
// yield FallbackText.
func WithFallback(gen Generator, logger *zap.SugaredLogger) Provider {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &fallbackProvider{gen: gen, logger: logger}
}

func (p *fallbackProvider) Generate(ctx context.Context, difficulty model.Difficulty) string {
	text, err := p.gen.Generate(ctx, difficulty)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyText
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.logger.Debugw("text generation cancelled", "difficulty", difficulty)
		} else {
			p.logger.Warnw("text generation failed, using fallback", "difficulty", difficulty, "error", err)
		}
		return FallbackText(difficulty)
	}
	return text
}
