package keyboard

import (
	"strings"
	"unicode"
)

// Status is the visual state of one key.
type Status int

const (
	StatusDefault Status = iota
	StatusActive
	StatusCorrect
	StatusIncorrect
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCorrect:
		return "correct"
	case StatusIncorrect:
		return "incorrect"
	default:
		return "default"
	}
}

// Signal carries the session state a keyboard rendering depends on.
type Signal struct {
	// Active is the expected next rune when HasActive is set.
	Active    rune
	HasActive bool
	// ActiveEnter marks the submit key as expected.
	ActiveEnter bool

	Pressed        rune
	HasPressed     bool
	PressedCorrect bool
}

// StatusFor derives the status of the key labelled label.
// The expected key wins over the last pressed key.
func StatusFor(label string, sig Signal) Status {
	if sig.ActiveEnter && label == KeyEnter {
		return StatusActive
	}
	if sig.HasActive && matches(label, sig.Active) {
		return StatusActive
	}
	if sig.HasPressed && matches(label, sig.Pressed) {
		if sig.PressedCorrect {
			return StatusCorrect
		}
		return StatusIncorrect
	}
	return StatusDefault
}

func matches(label string, r rune) bool {
	switch r {
	case ' ':
		return label == KeySpace
	case '\n':
		return label == KeyEnter
	case '\t':
		return label == KeyTab
	}
	if len([]rune(label)) != 1 {
		return false
	}
	return strings.EqualFold(label, string(r))
}

func toLower(r rune) rune {
	return unicode.ToLower(r)
}
