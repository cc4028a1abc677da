package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/velotype/internal/model"
)

const sparkChars = "▁▂▃▄▅▆▇█"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := i + 1
		if i >= window {
			sum -= values[i-window]
			den = window
		}
		out[i] = sum / float64(den)
	}
	return out
}

// Sparkline renders a single-line sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	levels := []rune(sparkChars)
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(levels[len(levels)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(levels)-1)))
		b.WriteRune(levels[clamp(idx, 0, len(levels)-1)])
	}
	return b.String()
}

// WPMSeries extracts net WPM per session.
func WPMSeries(items []model.HistoryItem) []float64 {
	out := make([]float64, len(items))
	for i, item := range items {
		out[i] = float64(item.WPM)
	}
	return out
}

// AccuracySeries extracts accuracy per session.
func AccuracySeries(items []model.HistoryItem) []float64 {
	out := make([]float64, len(items))
	for i, item := range items {
		out[i] = float64(item.Accuracy)
	}
	return out
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Raw WPM: %.1f", s.AvgRawWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Time typing: %s", FormatSeconds(s.TotalTime)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints the WPM and accuracy progress chart.
func RenderCurves(w io.Writer, items []model.HistoryItem, window, totalWidth, height int, useColor bool) error {
	if len(items) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Progress Tracking", []Series{
		{Name: "WPM", Values: MovingAverage(WPMSeries(items), window)},
		{Name: "Accuracy", Values: MovingAverage(AccuracySeries(items), window)},
	}, width, height, useColor)
}

// RenderMissedKeys prints the problem-keys table.
func RenderMissedKeys(w io.Writer, top []model.KeyCount) error {
	if len(top) == 0 {
		_, err := fmt.Fprintln(w, "No errors recorded yet!")
		return err
	}
	if _, err := fmt.Fprintln(w, "Problem Keys"); err != nil {
		return err
	}
	total := 0
	for _, kc := range top {
		total += kc.Count
	}
	rows := make([][]string, 0, len(top))
	for _, kc := range top {
		share := float64(kc.Count) / float64(total) * 100
		rows = append(rows, []string{KeyLabel(kc.Key), fmt.Sprintf("%d", kc.Count), fmt.Sprintf("%.1f%%", share)})
	}
	cols := []column{{title: "Key"}, {title: "Missed", right: true}, {title: "Share", right: true}}
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// FormatSeconds renders a duration in seconds as 42s, 3m05s or 1h02m.
func FormatSeconds(total float64) string {
	secs := int(total)
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
