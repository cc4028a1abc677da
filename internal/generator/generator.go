// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Options controls word selection and decoration.
type Options struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	DigitPct float64
	PunctSet []rune
	// SentenceLen is the number of words per sentence; zero disables sentences.
	SentenceLen int
	// Focus biases selection toward words containing these runes.
	Focus       map[rune]struct{}
	FocusFactor float64
}

// Generator produces randomized typing text. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Words selects opts.Words words and applies caps, punctuation and digit rules.
func (g *Generator) Words(words []string, opts Options) []string {
	if len(words) == 0 || opts.Words <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	pick := g.uniform(words)
	if len(opts.Focus) > 0 && opts.FocusFactor > 0 {
		pick = g.weighted(words, opts.Focus, opts.FocusFactor)
	}
	result := make([]string, 0, opts.Words)
	for i := 0; i < opts.Words; i++ {
		word := pick()
		if opts.DigitPct > 0 && g.rnd.Float64() < opts.DigitPct {
			word = strconv.Itoa(g.rnd.Intn(2000))
		}
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		result = append(result, word)
	}
	return result
}

// Prose joins generated words into sentences ending with a period.
func (g *Generator) Prose(words []string, opts Options) string {
	picked := g.Words(words, opts)
	if len(picked) == 0 {
		return ""
	}
	if opts.SentenceLen <= 0 {
		return strings.Join(picked, " ")
	}
	for i := range picked {
		if i%opts.SentenceLen == 0 {
			picked[i] = capitalize(picked[i])
		}
		last := i == len(picked)-1 || (i+1)%opts.SentenceLen == 0
		if last {
			picked[i] = strings.TrimRightFunc(picked[i], unicode.IsPunct) + "."
		}
	}
	return strings.Join(picked, " ")
}

func (g *Generator) uniform(words []string) func() string {
	return func() string {
		return words[g.rnd.Intn(len(words))]
	}
}

func (g *Generator) weighted(words []string, focus map[rune]struct{}, factor float64) func() string {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		hits := 0
		for _, r := range word {
			if _, ok := focus[unicode.ToLower(r)]; ok {
				hits++
			}
		}
		w := 1.0 + float64(hits)*factor
		weights[i] = w
		total += w
	}
	return func() string {
		r := g.rnd.Float64() * total
		acc := 0.0
		for j, w := range weights {
			acc += w
			if r <= acc {
				return words[j]
			}
		}
		return words[len(words)-1]
	}
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	return capitalize(word)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
