// Package calc implements the four-function calculator engine.
//
// The engine is a finite-state machine over six states operating on string
// registers (first operand, second operand, operator, result). It receives one
// classified key event at a time and runs exactly one state handler, which may
// request a single follow-up transition. The driver applies that follow-up
// before yielding, so there is never more than one chained transition per
// external event.
//
// # States
//
//   - StartFirstOperand / StartSecondOperand: idle, nothing typed into the operand yet
//   - EnterFirstOperand / EnterSecondOperand: accumulating digits
//   - ShowResult: the result of Equals is on the display
//   - ShowError: a recoverable error (division by zero, overflow) is on the display
//
// # Usage Example
//
//	engine := calc.NewEngine(func(s calc.Snapshot) {
//	    fmt.Println(s.Display)
//	})
//	engine.Feed(calc.Digit('1'), calc.Operator('+'), calc.Digit('2'), calc.Equals())
//	// prints 1, "1 + ", "1 + 2", 3
//
// # Numerals
//
// Operand registers always hold numeral strings: an optional '-', at most
// one '.', digits. The evaluator parses them with a fixed '.' decimal point
// and formats results with the shortest representation that round-trips.
//
// # Thread Safety
//
// An Engine is a single mutable session and is not safe for concurrent use.
// Transition is a pure function and may be called from anywhere.
package calc
