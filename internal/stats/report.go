package stats

import (
	"github.com/verte-zerg/velotype/internal/model"
)

const (
	// DefaultRecent is the number of sessions shown in trend charts.
	DefaultRecent = 20
	// DefaultTopKeys is the number of problem keys shown.
	DefaultTopKeys = 10
)

// Summary aggregates speed and accuracy over a set of sessions.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     int
	AvgRawWPM   float64
	AvgAccuracy float64
	TotalTime   float64
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Items        []model.HistoryItem
	Recent       []model.HistoryItem
	Summary      Summary
	MissedTotals map[string]int
	TopMissed    []model.KeyCount
}

// MostMissed returns the worst key, if any errors were recorded.
func (r Report) MostMissed() (model.KeyCount, bool) {
	if len(r.TopMissed) == 0 {
		return model.KeyCount{}, false
	}
	return r.TopMissed[0], true
}

// BuildReport filters history items and prepares data for stats rendering.
func BuildReport(items []model.HistoryItem, cfg model.StatsConfig) Report {
	filtered := make([]model.HistoryItem, 0, len(items))
	for _, item := range items {
		if cfg.Difficulty != "" && item.Difficulty != cfg.Difficulty {
			continue
		}
		if cfg.Since != nil && item.Date.Before(*cfg.Since) {
			continue
		}
		filtered = append(filtered, item)
	}
	if cfg.Last > 0 && len(filtered) > cfg.Last {
		filtered = filtered[len(filtered)-cfg.Last:]
	}

	recentN := cfg.Recent
	if recentN <= 0 {
		recentN = DefaultRecent
	}
	topN := cfg.TopKeys
	if topN <= 0 {
		topN = DefaultTopKeys
	}
	totals := MissedKeyTotals(filtered)
	return Report{
		Items:        filtered,
		Recent:       lastItems(filtered, recentN),
		Summary:      Summarize(filtered),
		MissedTotals: totals,
		TopMissed:    TopKeys(totals, topN),
	}
}

// Summarize computes averages and bests for the given sessions.
func Summarize(items []model.HistoryItem) Summary {
	s := Summary{Sessions: len(items)}
	if len(items) == 0 {
		return s
	}
	var wpm, raw, acc float64
	for _, item := range items {
		wpm += float64(item.WPM)
		raw += float64(item.RawWPM)
		acc += float64(item.Accuracy)
		s.TotalTime += item.TimeElapsed
		if item.WPM > s.BestWPM {
			s.BestWPM = item.WPM
		}
	}
	count := float64(len(items))
	s.AvgWPM = wpm / count
	s.AvgRawWPM = raw / count
	s.AvgAccuracy = acc / count
	return s
}

func lastItems(items []model.HistoryItem, n int) []model.HistoryItem {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
