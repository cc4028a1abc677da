package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordsCountAndSource(t *testing.T) {
	g := NewWithSeed(1)
	src := []string{"alpha", "beta", "gamma"}
	got := g.Words(src, Options{Words: 12})
	require.Len(t, got, 12)
	for _, w := range got {
		assert.Contains(t, src, w)
	}
	assert.Nil(t, g.Words(nil, Options{Words: 3}))
	assert.Nil(t, g.Words(src, Options{}))
}

func TestWeightedFavoursFocusRunes(t *testing.T) {
	g := NewWithSeed(7)
	src := []string{"zzz", "aaa"}
	got := g.Words(src, Options{
		Words:       2000,
		Focus:       map[rune]struct{}{'z': {}},
		FocusFactor: 10,
	})
	hits := 0
	for _, w := range got {
		if w == "zzz" {
			hits++
		}
	}
	// Weights are 31 vs 1.
	assert.Greater(t, hits, 1800)
}

func TestProseSentences(t *testing.T) {
	g := NewWithSeed(3)
	text := g.Prose([]string{"word"}, Options{Words: 6, SentenceLen: 3, PunctSet: []rune{','}, PunctPct: 1})
	assert.Equal(t, "Word, word, word. Word, word, word.", text)
}

func TestProseWithoutSentences(t *testing.T) {
	g := NewWithSeed(3)
	text := g.Prose([]string{"go"}, Options{Words: 3})
	assert.Equal(t, "go go go", text)
}

func TestDigitsReplaceWords(t *testing.T) {
	g := NewWithSeed(5)
	got := g.Words([]string{"word"}, Options{Words: 20, DigitPct: 1})
	for _, w := range got {
		assert.True(t, strings.Trim(w, "0123456789") == "", w)
	}
}
