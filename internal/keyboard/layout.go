// Package keyboard describes keyboard layouts and derives per-key state.
package keyboard

import (
	"fmt"
	"strings"
)

// Layout names a physical keyboard layout.
type Layout string

const (
	QWERTY Layout = "QWERTY"
	AZERTY Layout = "AZERTY"
	DVORAK Layout = "DVORAK"
)

// Layouts lists supported layouts in cycling order.
var Layouts = []Layout{QWERTY, AZERTY, DVORAK}

// Special key labels.
const (
	KeyBackspace = "Backspace"
	KeyTab       = "Tab"
	KeyCaps      = "Caps"
	KeyEnter     = "Enter"
	KeyShift     = "Shift"
	KeySpace     = "Space"
)

var rows = map[Layout][][]string{
	QWERTY: {
		{"`", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "=", KeyBackspace},
		{KeyTab, "q", "w", "e", "r", "t", "y", "u", "i", "o", "p", "[", "]", "\\"},
		{KeyCaps, "a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'", KeyEnter},
		{KeyShift, "z", "x", "c", "v", "b", "n", "m", ",", ".", "/", KeyShift},
		{KeySpace},
	},
	AZERTY: {
		{"²", "&", "é", "\"", "'", "(", "-", "è", "_", "ç", "à", ")", "=", KeyBackspace},
		{KeyTab, "a", "z", "e", "r", "t", "y", "u", "i", "o", "p", "^", "$", "*"},
		{KeyCaps, "q", "s", "d", "f", "g", "h", "j", "k", "l", "m", "ù", KeyEnter},
		{KeyShift, "<", "w", "x", "c", "v", "b", "n", ",", ";", ":", "!", KeyShift},
		{KeySpace},
	},
	DVORAK: {
		{"`", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "[", "]", KeyBackspace},
		{KeyTab, "'", ",", ".", "p", "y", "f", "g", "c", "r", "l", "/", "=", "\\"},
		{KeyCaps, "a", "o", "e", "u", "i", "d", "h", "t", "n", "s", "-", KeyEnter},
		{KeyShift, ";", "q", "j", "k", "x", "b", "m", "w", "v", "z", KeyShift},
		{KeySpace},
	},
}

// ParseLayout accepts a layout name case-insensitively.
func ParseLayout(s string) (Layout, error) {
	name := Layout(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rows[name]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown layout %q (expected qwerty, azerty or dvorak)", s)
}

// Rows returns the key labels of layout, top row first. Unknown layouts use QWERTY.
func (l Layout) Rows() [][]string {
	if r, ok := rows[l]; ok {
		return r
	}
	return rows[QWERTY]
}

// Next returns the following layout, wrapping around.
func (l Layout) Next() Layout {
	for i, v := range Layouts {
		if v == l {
			return Layouts[(i+1)%len(Layouts)]
		}
	}
	return QWERTY
}

// Finger identifies the finger assigned to a key.
type Finger int

const (
	FingerNone Finger = iota
	LeftPinky
	LeftRing
	LeftMiddle
	LeftIndex
	RightIndex
	RightMiddle
	RightRing
	RightPinky
	Thumb
)

var fingerNames = map[Finger]string{
	LeftPinky:   "left pinky",
	LeftRing:    "left ring",
	LeftMiddle:  "left middle",
	LeftIndex:   "left index",
	RightIndex:  "right index",
	RightMiddle: "right middle",
	RightRing:   "right ring",
	RightPinky:  "right pinky",
	Thumb:       "thumb",
}

func (f Finger) String() string {
	if name, ok := fingerNames[f]; ok {
		return name
	}
	return "none"
}

// fingerMap is approximate and keyed by QWERTY characters.
var fingerMap = map[rune]Finger{
	'q': LeftPinky, 'a': LeftPinky, 'z': LeftPinky, '1': LeftPinky,
	'w': LeftRing, 's': LeftRing, 'x': LeftRing, '2': LeftRing,
	'e': LeftMiddle, 'd': LeftMiddle, 'c': LeftMiddle, '3': LeftMiddle,
	'r': LeftIndex, 'f': LeftIndex, 'v': LeftIndex, '4': LeftIndex,
	't': LeftIndex, 'g': LeftIndex, 'b': LeftIndex, '5': LeftIndex, '6': LeftIndex,
	'y': RightIndex, 'h': RightIndex, 'n': RightIndex, '7': RightIndex,
	'u': RightIndex, 'j': RightIndex, 'm': RightIndex, '8': RightIndex,
	'i': RightMiddle, 'k': RightMiddle, ',': RightMiddle, '9': RightMiddle,
	'o': RightRing, 'l': RightRing, '.': RightRing, '0': RightRing,
	'p': RightPinky, ';': RightPinky, '/': RightPinky, '-': RightPinky,
	'[': RightPinky, ']': RightPinky, '\'': RightPinky,
	' ': Thumb,
}

// FingerFor returns the finger for r, case-insensitively.
func FingerFor(r rune) Finger {
	return fingerMap[toLower(r)]
}
