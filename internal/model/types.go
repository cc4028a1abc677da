// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects the kind of text a session is built from.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
	DifficultyCode   Difficulty = "Code Snippet"
)

// Difficulties lists all tiers in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyCode}

// ParseDifficulty accepts flag-style names (easy, medium, hard, code) as well as display names.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	case "code", "code snippet", "code-snippet":
		return DifficultyCode, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (expected easy, medium, hard or code)", s)
	}
}

// Next returns the following tier, wrapping around.
func (d Difficulty) Next() Difficulty {
	for i, v := range Difficulties {
		if v == d {
			return Difficulties[(i+1)%len(Difficulties)]
		}
	}
	return DifficultyEasy
}

// Config defines practice settings.
type Config struct {
	Difficulty    Difficulty
	Layout        string
	FocusMissed   bool
	FocusTop      int
	FocusFactor   float64
	LiveInterval  time.Duration
	RecentWindow  int
	WordsFilePath string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Difficulty  Difficulty
	Since       *time.Time
	Last        int
	Recent      int
	CurveWindow int
	TopKeys     int
}

// Tally is the historical ledger of typed characters for one session.
// Removals never decrement it.
type Tally struct {
	Correct    int
	Incorrect  int
	Errors     int
	MissedKeys map[string]int
}

// Typed returns the number of append events recorded.
func (t Tally) Typed() int {
	return t.Correct + t.Incorrect
}

// Clone returns a deep copy of the tally.
func (t Tally) Clone() Tally {
	out := t
	out.MissedKeys = CloneCounts(t.MissedKeys)
	return out
}

// TestStats is a derived snapshot of a session's speed and accuracy.
type TestStats struct {
	WPM            int            `json:"wpm" yaml:"wpm"`
	RawWPM         int            `json:"rawWpm" yaml:"rawWpm"`
	Accuracy       int            `json:"accuracy" yaml:"accuracy"`
	CorrectChars   int            `json:"correctChars" yaml:"correctChars"`
	IncorrectChars int            `json:"incorrectChars" yaml:"incorrectChars"`
	Errors         int            `json:"errors" yaml:"errors"`
	TimeElapsed    float64        `json:"timeElapsed" yaml:"timeElapsed"`
	MissedKeys     map[string]int `json:"missedKeys" yaml:"missedKeys"`
}

// EmptyStats is the snapshot shown before any input.
func EmptyStats() TestStats {
	return TestStats{Accuracy: 100, MissedKeys: map[string]int{}}
}

// HistoryItem records a completed session.
type HistoryItem struct {
	TestStats  `yaml:",inline"`
	ID         string     `json:"id" yaml:"id"`
	Date       time.Time  `json:"date" yaml:"date"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}

// KeyCount pairs a key with an occurrence count.
type KeyCount struct {
	Key   string
	Count int
}

// CloneCounts copies a count map; nil yields an empty map.
func CloneCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
