package textgen

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/verte-zerg/velotype/internal/generator"
	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/wordlist"
)

var codeSnippets = []string{
	fallbackCode,
	"function average(values: number[]): number {\n  if (values.length === 0) return 0;\n  const total = values.reduce((sum, v) => sum + v, 0);\n  return total / values.length;\n}",
	"const debounce = (fn: () => void, ms: number) => {\n  let timer: number | undefined;\n  return () => {\n    clearTimeout(timer);\n    timer = setTimeout(fn, ms);\n  };\n};",
	"// count words in a sentence\nexport function countWords(text: string): number {\n  return text.trim().split(/\\s+/).filter(Boolean).length;\n}",
	"interface Point {\n  x: number;\n  y: number;\n}\n\nconst distance = (a: Point, b: Point): number =>\n  Math.hypot(a.x - b.x, a.y - b.y);",
	"async function fetchJson<T>(url: string): Promise<T> {\n  const res = await fetch(url);\n  if (!res.ok) {\n    throw new Error(`request failed: ${res.status}`);\n  }\n  return res.json() as Promise<T>;\n}",
}

// tier holds generation options for one difficulty.
type tier struct {
	words []string
	opts  generator.Options
}

// Local generates text offline from a word list and built-in code snippets.
type Local struct {
	gen   *generator.Generator
	tiers map[model.Difficulty]tier

	mu          sync.Mutex
	rnd         *rand.Rand
	focus       map[rune]struct{}
	focusFactor float64
}

// NewLocal builds a local generator from words.
func NewLocal(words []string, gen *generator.Generator) *Local {
	if gen == nil {
		gen = generator.New()
	}
	simple := wordlist.Filter(words, wordlist.LowerASCII, wordlist.MaxLen(5))
	if len(simple) == 0 {
		simple = words
	}
	long := wordlist.Filter(words, wordlist.MinLen(6))
	if len(long) == 0 {
		long = words
	}
	return &Local{
		gen: gen,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		tiers: map[model.Difficulty]tier{
			model.DifficultyEasy: {
				words: simple,
				opts:  generator.Options{Words: 30, SentenceLen: 10},
			},
			model.DifficultyMedium: {
				words: words,
				opts:  generator.Options{Words: 50, SentenceLen: 12, PunctPct: 0.1, PunctSet: []rune{','}},
			},
			model.DifficultyHard: {
				words: append(append([]string{}, words...), long...),
				opts: generator.Options{
					Words:       60,
					SentenceLen: 14,
					CapsPct:     0.1,
					PunctPct:    0.15,
					DigitPct:    0.05,
					PunctSet:    []rune{',', ';', ':', '-', '!', '?'},
				},
			},
		},
	}
}

// SetFocus biases prose toward words containing keys. factor <= 0 disables it.
func (l *Local) SetFocus(keys map[rune]struct{}, factor float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.focus = keys
	l.focusFactor = factor
}

// Generate implements Generator.
func (l *Local) Generate(ctx context.Context, difficulty model.Difficulty) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	focus, factor := l.focus, l.focusFactor
	if difficulty == model.DifficultyCode {
		snippet := codeSnippets[l.rnd.Intn(len(codeSnippets))]
		l.mu.Unlock()
		return snippet, nil
	}
	l.mu.Unlock()

	t, ok := l.tiers[difficulty]
	if !ok {
		t = l.tiers[model.DifficultyMedium]
	}
	opts := t.opts
	opts.Focus = focus
	opts.FocusFactor = factor
	text := l.gen.Prose(t.words, opts)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
