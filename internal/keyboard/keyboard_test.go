package keyboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayouts(t *testing.T) {
	for _, l := range Layouts {
		rows := l.Rows()
		require.Len(t, rows, 5, l)
		assert.Equal(t, []string{KeySpace}, rows[4])
	}
	assert.Equal(t, "q", QWERTY.Rows()[1][1])
	assert.Equal(t, "a", AZERTY.Rows()[1][1])
	assert.Equal(t, "'", DVORAK.Rows()[1][1])
	assert.Equal(t, QWERTY.Rows(), Layout("COLEMAK").Rows())
}

func TestParseAndCycleLayout(t *testing.T) {
	l, err := ParseLayout(" dvorak ")
	require.NoError(t, err)
	assert.Equal(t, DVORAK, l)
	_, err = ParseLayout("colemak")
	assert.Error(t, err)

	assert.Equal(t, AZERTY, QWERTY.Next())
	assert.Equal(t, QWERTY, DVORAK.Next())
}

func TestFingerFor(t *testing.T) {
	assert.Equal(t, LeftPinky, FingerFor('A'))
	assert.Equal(t, RightIndex, FingerFor('j'))
	assert.Equal(t, Thumb, FingerFor(' '))
	assert.Equal(t, FingerNone, FingerFor('€'))
	assert.Equal(t, "left index", LeftIndex.String())
}

func TestStatusFor(t *testing.T) {
	sig := Signal{Active: 'T', HasActive: true, Pressed: 'x', HasPressed: true, PressedCorrect: false}
	assert.Equal(t, StatusActive, StatusFor("t", sig), "case-insensitive")
	assert.Equal(t, StatusIncorrect, StatusFor("x", sig))
	assert.Equal(t, StatusDefault, StatusFor("q", sig))

	sig = Signal{Active: ' ', HasActive: true, Pressed: 'a', HasPressed: true, PressedCorrect: true}
	assert.Equal(t, StatusActive, StatusFor(KeySpace, sig))
	assert.Equal(t, StatusCorrect, StatusFor("a", sig))

	// Active wins when the expected and pressed keys coincide.
	sig = Signal{Active: 'l', HasActive: true, Pressed: 'l', HasPressed: true, PressedCorrect: true}
	assert.Equal(t, StatusActive, StatusFor("l", sig))

	assert.Equal(t, StatusActive, StatusFor(KeyEnter, Signal{ActiveEnter: true}))
	assert.Equal(t, StatusActive, StatusFor(KeyEnter, Signal{Active: '\n', HasActive: true}))
	assert.Equal(t, StatusDefault, StatusFor(KeyShift, Signal{Active: 'S', HasActive: true}))
	assert.Equal(t, StatusDefault, StatusFor("a", Signal{}))
}

func TestRenderContainsEveryRow(t *testing.T) {
	out := Render(QWERTY, Signal{Active: 'q', HasActive: true})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, out, "␣")
	assert.Contains(t, out, "Enter")
}
