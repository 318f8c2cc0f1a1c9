package keypad

import (
	"fmt"
	"unicode"

	"github.com/muurk/keycalc/internal/calc"
)

// Button glyphs
const (
	GlyphBackspace = '←'
	GlyphClear     = 'C'
	GlyphEquals    = '='
	GlyphSign      = calc.SignToggle
)

// UnknownKeyError is returned for a rune that maps to no calculator event.
type UnknownKeyError struct {
	Key      rune
	Position int
}

func (e *UnknownKeyError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("unknown key %q", e.Key)
	}
	return fmt.Sprintf("unknown key %q at position %d", e.Key, e.Position)
}

// ParseRune maps a single glyph or ASCII alias to an event.
func ParseRune(r rune) (calc.Event, error) {
	switch {
	case r >= '0' && r <= '9':
		return calc.Digit(r), nil
	}

	switch r {
	case '.', ',':
		return calc.Dot(), nil
	case '+', '-', '*', '/':
		return calc.Operator(r), nil
	case '×', 'x', 'X':
		return calc.Operator('*'), nil
	case '÷':
		return calc.Operator('/'), nil
	case GlyphSign, '~':
		return calc.Operator(calc.SignToggle), nil
	case GlyphBackspace, '<':
		return calc.Backspace(), nil
	case GlyphClear, 'c':
		return calc.Clear(), nil
	case GlyphEquals:
		return calc.Equals(), nil
	}

	return calc.Event{}, &UnknownKeyError{Key: r, Position: -1}
}

// ParseKeys maps a key string to events. Whitespace is skipped; the first
// unknown rune aborts with its rune offset.
func ParseKeys(s string) ([]calc.Event, error) {
	events := make([]calc.Event, 0, len(s))
	pos := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			ev, err := ParseRune(r)
			if err != nil {
				return nil, &UnknownKeyError{Key: r, Position: pos}
			}
			events = append(events, ev)
		}
		pos++
	}
	return events, nil
}

// ParseKey maps a terminal key name, as reported by bubbletea, to an event.
func ParseKey(name string) (calc.Event, bool) {
	switch name {
	case "backspace", "delete":
		return calc.Backspace(), true
	case "enter":
		return calc.Equals(), true
	case "esc":
		return calc.Clear(), true
	}

	runes := []rune(name)
	if len(runes) != 1 {
		return calc.Event{}, false
	}
	ev, err := ParseRune(runes[0])
	return ev, err == nil
}

// Button is one key on the on-screen keypad.
type Button struct {
	Label string
	Event calc.Event
}

func button(r rune) Button {
	ev, err := ParseRune(r)
	if err != nil {
		panic(err)
	}
	return Button{Label: string(r), Event: ev}
}

// Layout is the on-screen keypad, row by row.
var Layout = [][]Button{
	{button(GlyphClear), button(GlyphBackspace), button(GlyphSign), button('/')},
	{button('7'), button('8'), button('9'), button('*')},
	{button('4'), button('5'), button('6'), button('-')},
	{button('1'), button('2'), button('3'), button('+')},
	{button('0'), button('.'), button(GlyphEquals)},
}

// Glyph renders an event back to its keypad label.
func Glyph(ev calc.Event) string {
	switch ev.Kind {
	case calc.EventDigit, calc.EventOperator:
		return string(ev.Symbol)
	case calc.EventDot:
		return "."
	case calc.EventBackspace:
		return string(GlyphBackspace)
	case calc.EventClear:
		return string(GlyphClear)
	case calc.EventEquals:
		return string(GlyphEquals)
	default:
		return "?"
	}
}

// Find returns the row and column of the button that emits ev.
func Find(ev calc.Event) (row, col int, ok bool) {
	for r, buttons := range Layout {
		for c, b := range buttons {
			if b.Event == ev {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}
