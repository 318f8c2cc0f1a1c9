// Package tui implements the interactive terminal calculator.
//
// The screen shows the display field, a 5x4 on-screen keypad and an
// optional debug panel with the state machine's registers. Keys typed on
// the keyboard are mapped through the keypad package; arrow keys move the
// on-screen focus and space presses the focused button.
//
// The model owns one calc.Engine. The engine's observer writes each new
// snapshot into the model, and View renders from that snapshot only.
package tui
