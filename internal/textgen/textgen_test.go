package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/velotype/internal/generator"
	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/wordlist"
)

func failing(err error) Generator {
	return GeneratorFunc(func(context.Context, model.Difficulty) (string, error) {
		return "", err
	})
}

func fixed(text string) Generator {
	return GeneratorFunc(func(context.Context, model.Difficulty) (string, error) {
		return text, nil
	})
}

func TestFallbackOnError(t *testing.T) {
	p := WithFallback(failing(errors.New("boom")), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	code := p.Generate(ctx, model.DifficultyCode)
	assert.NotEmpty(t, code)
	assert.True(t, strings.HasPrefix(code, "const calculateSpeed"))

	for _, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		assert.Equal(t, FallbackText(model.DifficultyEasy), p.Generate(ctx, d))
	}
}

func TestFallbackOnBlankText(t *testing.T) {
	p := WithFallback(fixed("  \n "), nil)
	assert.Equal(t, FallbackText(model.DifficultyHard), p.Generate(context.Background(), model.DifficultyHard))
}

func TestFallbackPassesThrough(t *testing.T) {
	p := WithFallback(fixed("hello there"), nil)
	assert.Equal(t, "hello there", p.Generate(context.Background(), model.DifficultyEasy))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "let x = 1;", StripFences("```ts\nlet x = 1;\n```"))
	assert.Equal(t, "let x = 1;", StripFences("```TypeScript\nlet x = 1;\n```"))
	assert.Equal(t, "plain", StripFences("plain"))
}

func TestPromptPerDifficulty(t *testing.T) {
	assert.Contains(t, Prompt(model.DifficultyEasy), "approx 30 words")
	assert.Contains(t, Prompt(model.DifficultyCode), "JavaScript/TypeScript")
	assert.Equal(t, Prompt(model.DifficultyMedium), Prompt(model.Difficulty("bogus")))
}

func TestOpenAIGenerate(t *testing.T) {
	var gotModel, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/responses"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body struct {
			Model string `json:"model"`
			Input []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"input"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel = body.Model
		if len(body.Input) > 0 && len(body.Input[0].Content) > 0 {
			gotPrompt = body.Input[0].Content[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"object": "response",
			"created_at": 1,
			"status": "completed",
			"model": "test-model",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"status": "completed",
				"role": "assistant",
				"content": [{"type": "output_text", "text": "` + "```js\\nconst a = 1;\\n```" + `", "annotations": []}]
			}]
		}`))
	}))
	defer srv.Close()

	gen := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})
	text, err := gen.Generate(context.Background(), model.DifficultyCode)
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;", text)
	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, Prompt(model.DifficultyCode), gotPrompt)
}

func TestOpenAIServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	gen := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := gen.Generate(context.Background(), model.DifficultyEasy)
	require.Error(t, err)

	p := WithFallback(gen, zaptest.NewLogger(t).Sugar())
	assert.Equal(t, FallbackText(model.DifficultyEasy), p.Generate(context.Background(), model.DifficultyEasy))
}

func TestLocalGenerate(t *testing.T) {
	local := NewLocal(wordlist.Embedded(), generator.NewWithSeed(42))
	ctx := context.Background()

	easy, err := local.Generate(ctx, model.DifficultyEasy)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(easy), 30)
	assert.True(t, strings.HasSuffix(easy, "."))

	hard, err := local.Generate(ctx, model.DifficultyHard)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(hard), 60)

	code, err := local.Generate(ctx, model.DifficultyCode)
	require.NoError(t, err)
	assert.Contains(t, codeSnippets, code)
}

func TestLocalFocus(t *testing.T) {
	local := NewLocal([]string{"zebra", "apple", "melon"}, generator.NewWithSeed(1))
	local.SetFocus(map[rune]struct{}{'z': {}}, 50)
	text, err := local.Generate(context.Background(), model.DifficultyMedium)
	require.NoError(t, err)
	assert.Greater(t, strings.Count(strings.ToLower(text), "zebra"), 30)
}

func TestLocalHonoursCancellation(t *testing.T) {
	local := NewLocal(wordlist.Embedded(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := local.Generate(ctx, model.DifficultyEasy)
	assert.ErrorIs(t, err, context.Canceled)
}
