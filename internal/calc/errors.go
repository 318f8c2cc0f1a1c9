package calc

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a calculation error
type ErrorType int

const (
	// ErrTypeDivisionByZero indicates a divisor within machine epsilon of zero
	ErrTypeDivisionByZero ErrorType = iota
	// ErrTypeParse indicates a register that does not hold a valid numeral.
	// This is a programming defect, never a user-facing path.
	ErrTypeParse
	// ErrTypeOverflow indicates a result that is infinite or not a number
	ErrTypeOverflow
	// ErrTypeOperator indicates an operator outside + - * /
	ErrTypeOperator
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeDivisionByZero:
		return "Division By Zero"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeOverflow:
		return "Overflow"
	case ErrTypeOperator:
		return "Invalid Operator"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by Evaluate and carried into ShowError by the engine.
type Error struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable message, shown on the display
	Operand string    // Offending register text (parse errors only)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewDivisionByZeroError creates a division by zero error
func NewDivisionByZeroError() *Error {
	return &Error{
		Type:    ErrTypeDivisionByZero,
		Message: "Cannot divide by zero",
	}
}

// NewParseError creates a parse error for a register that is not a numeral
func NewParseError(operand string, err error) *Error {
	return &Error{
		Type:    ErrTypeParse,
		Message: fmt.Sprintf("Invalid number %q", operand),
		Operand: operand,
		Err:     err,
	}
}

// NewOverflowError creates an overflow error
func NewOverflowError() *Error {
	return &Error{
		Type:    ErrTypeOverflow,
		Message: "Result is too large",
	}
}

// NewOperatorError creates an error for an unknown operator
func NewOperatorError(op string) *Error {
	return &Error{
		Type:    ErrTypeOperator,
		Message: fmt.Sprintf("Unknown operator %q", op),
	}
}

func errorType(err error) (ErrorType, bool) {
	var calcErr *Error
	if errors.As(err, &calcErr) {
		return calcErr.Type, true
	}
	return 0, false
}

// IsDivisionByZero checks if an error is a division by zero
func IsDivisionByZero(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeDivisionByZero
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeParse
}

// IsOverflow checks if an error is an overflow error
func IsOverflow(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeOverflow
}

// ShortMessage returns the text the calculator shows for an error
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}
	var calcErr *Error
	if errors.As(err, &calcErr) {
		return calcErr.Message
	}
	return err.Error()
}
