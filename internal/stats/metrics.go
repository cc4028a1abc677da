// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/velotype/internal/model"
)

// CharsPerWord is the conventional word length used for WPM.
const CharsPerWord = 5.0

// Calculate derives a stats snapshot from a tally and the session start time.
// A zero startedAt is treated as a session that has not started.
func Calculate(startedAt time.Time, tally model.Tally, now time.Time) model.TestStats {
	elapsed := 0.0
	if !startedAt.IsZero() {
		elapsed = now.Sub(startedAt).Seconds()
	}
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := elapsed / 60

	out := model.TestStats{
		Accuracy:       100,
		CorrectChars:   tally.Correct,
		IncorrectChars: tally.Incorrect,
		Errors:         tally.Errors,
		TimeElapsed:    elapsed,
		MissedKeys:     model.CloneCounts(tally.MissedKeys),
	}
	if minutes > 0 {
		out.WPM = roundHalfUp(float64(tally.Correct) / CharsPerWord / minutes)
		out.RawWPM = roundHalfUp(float64(tally.Typed()) / CharsPerWord / minutes)
	}
	if total := tally.Typed(); total > 0 {
		out.Accuracy = roundHalfUp(float64(tally.Correct) / float64(total) * 100)
	}
	return out
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
