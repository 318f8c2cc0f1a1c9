// Package keypad translates key presses into calculator events.
//
// It accepts the calculator glyphs (0-9 . + - * / ± ← C =) plus a few ASCII
// aliases so expressions can be typed on an ordinary keyboard or passed on a
// command line:
//
//	~  sign toggle      <  backspace      c  clear
//	x  multiply         ,  decimal point
//
// Layout describes the on-screen keypad used by the interactive TUI.
package keypad
