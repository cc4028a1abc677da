package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
	}, 13, 4)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Test Plot")
	assert.Contains(t, out, scaleNote)
	assert.Contains(t, out, "A: min=1.00 max=3.00")
	assert.Contains(t, out, "Legend:")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// title + note + 2 ranges + 4 rows + legend
	assert.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[4], axisLabelTop+axisSeparator))
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, 10, 4))
	assert.Empty(t, buf.String())
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := runewidth.StringWidth(axisLabelTop) + runewidth.StringWidth(axisSeparator)
	assert.Equal(t, 80-axisWidth, PlotWidthFor(80))
	assert.Equal(t, minPlotWidth, PlotWidthFor(0))
	assert.Equal(t, minPlotWidth, PlotWidthFor(5))
}

func TestResampleSeries(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, resampleSeries([]float64{1, 3}, 3))
	assert.Equal(t, []float64{1.5, 3.5}, resampleSeries([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{7, 7}, resampleSeries([]float64{7}, 2))
	assert.Nil(t, resampleSeries(nil, 4))
}
