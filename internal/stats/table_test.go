package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/velotype/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	cols := []column{{title: "Key"}, {title: "Missed", right: true}}
	rows := [][]string{
		{"a", "12"},
		{"<space>", "3"},
	}

	lines := formatTable(cols, rows)
	require.Len(t, lines, 3)
	assert.Equal(t, "Key     Missed", lines[0])
	assert.Equal(t, "a           12", lines[1])
	assert.Equal(t, "<space>      3", lines[2])
}

func TestRenderMissedKeys(t *testing.T) {
	var buf bytes.Buffer
	err := RenderMissedKeys(&buf, []model.KeyCount{{Key: "t", Count: 3}, {Key: " ", Count: 1}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Problem Keys")
	assert.Contains(t, out, "<space>")
	assert.Contains(t, out, "75.0%")
}

func TestRenderMissedKeysEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMissedKeys(&buf, nil))
	assert.Equal(t, "No errors recorded yet!\n", buf.String())
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, Summarize(historyFixture(2))))
	out := buf.String()
	assert.Contains(t, out, "Sessions: 2")
	assert.Contains(t, out, "Best WPM: 41")
	assert.Contains(t, out, "Time typing: 1m00s")
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 5}, MovingAverage([]float64{2, 4, 6}, 2))
	assert.Equal(t, []float64{2, 4, 6}, MovingAverage([]float64{2, 4, 6}, 1))
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█", Sparkline([]float64{1, 9}))
	assert.Equal(t, "▅▅▅", Sparkline([]float64{3, 3, 3}))
	assert.Empty(t, Sparkline(nil))
}
