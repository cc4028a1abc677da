package stats

import (
	"sort"

	"github.com/verte-zerg/velotype/internal/model"
)

// MissedKeyTotals sums missed-key counts across history items.
func MissedKeyTotals(items []model.HistoryItem) map[string]int {
	totals := map[string]int{}
	for _, item := range items {
		for key, count := range item.MissedKeys {
			totals[key] += count
		}
	}
	return totals
}

// TopKeys returns the n highest counts, ties broken by key. n <= 0 returns all.
func TopKeys(counts map[string]int, n int) []model.KeyCount {
	out := make([]model.KeyCount, 0, len(counts))
	for key, count := range counts {
		if count <= 0 {
			continue
		}
		out = append(out, model.KeyCount{Key: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Key < out[j].Key
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// SelectFocusKeys picks the most-missed keys as runes for focused practice.
// Space is skipped since every generated text already contains plenty of it.
func SelectFocusKeys(counts map[string]int, top int) map[rune]struct{} {
	focus := map[rune]struct{}{}
	for _, kc := range TopKeys(counts, 0) {
		if top > 0 && len(focus) >= top {
			break
		}
		runes := []rune(kc.Key)
		if len(runes) == 0 || runes[0] == ' ' || runes[0] == '\n' {
			continue
		}
		focus[runes[0]] = struct{}{}
	}
	return focus
}

// KeyLabel renders whitespace keys readably.
func KeyLabel(key string) string {
	switch key {
	case " ":
		return "<space>"
	case "\n":
		return "<enter>"
	case "\t":
		return "<tab>"
	default:
		return key
	}
}
