package textgen

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/verte-zerg/velotype/internal/model"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

var (
	openingFence = regexp.MustCompile("(?i)^```[a-z]*\n")
	closingFence = regexp.MustCompile("\n```$")
)

var prompts = map[model.Difficulty]string{
	model.DifficultyEasy:   "Generate a simple, easy-to-type paragraph of text (approx 30 words). Use common English words, simple sentence structure, and minimal punctuation. No weird characters. Just the text.",
	model.DifficultyMedium: "Generate a moderate difficulty paragraph (approx 50 words). Include some commas, periods, and a mix of short and long words. Standard prose. Just the text.",
	model.DifficultyHard:   "Generate a difficult paragraph (approx 60 words). Include complex vocabulary, scientific or technical terms, varied punctuation (semicolons, hyphens), and numbers. Just the text.",
	model.DifficultyCode:   "Generate valid, clean JavaScript/TypeScript code snippet (approx 10 lines). Include functions, variables, and comments. Do not use markdown blocks (```). Just the raw code text.",
}

// Prompt returns the request text for difficulty.
func Prompt(difficulty model.Difficulty) string {
	if p, ok := prompts[difficulty]; ok {
		return p
	}
	return prompts[model.DifficultyMedium]
}

// StripFences removes a surrounding markdown code fence.
func StripFences(text string) string {
	text = openingFence.ReplaceAllString(text, "")
	return closingFence.ReplaceAllString(text, "")
}

// OpenAIConfig configures the OpenAI generator.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI generates text with the OpenAI responses API.
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an OpenAI generator. Retries are disabled; failures fall back instead.
func NewOpenAI(cfg OpenAIConfig, opts ...option.RequestOption) *OpenAI {
	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)
	name := cfg.Model
	if name == "" {
		name = DefaultOpenAIModel
	}
	return &OpenAI{
		client:  openai.NewClient(reqOpts...),
		model:   name,
		timeout: cfg.Timeout,
	}
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, difficulty model.Difficulty) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: o.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						{
							OfInputText: &responses.ResponseInputTextParam{
								Text: Prompt(difficulty),
							},
						},
					},
					responses.EasyInputMessageRoleUser,
				),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", ErrEmptyText
	}
	return StripFences(text), nil
}
