package calc

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

// Epsilon is the float64 machine epsilon. Divisors with a magnitude at or
// below it are treated as zero.
const Epsilon = 2.220446049250313e-16

// numeralPattern is the shape every operand register must have before it is
// handed to the evaluator.
var numeralPattern = regexp.MustCompile(`^-?(\d+)?\.?\d*$`)

// Binary operators understood by Evaluate
const (
	OpAdd      = "+"
	OpSubtract = "-"
	OpMultiply = "*"
	OpDivide   = "/"
)

// IsNumeral reports whether s is a well-formed numeral string: an optional
// sign, at most one decimal point and at least one digit.
func IsNumeral(s string) bool {
	if !numeralPattern.MatchString(s) {
		return false
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// ParseNumeral parses a numeral string as a base-10 float64. The decimal
// point is always '.', whatever the host locale. A numeral beyond the
// float64 range is an overflow, not a parse error.
func ParseNumeral(s string) (float64, error) {
	if !IsNumeral(s) {
		return 0, NewParseError(s, nil)
	}
	v, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) || math.IsInf(v, 0) {
		return 0, NewOverflowError()
	}
	if err != nil {
		return 0, NewParseError(s, err)
	}
	return v, nil
}

// FormatNumber renders v as the shortest numeral string that parses back to
// exactly v. Negative zero is rendered as "0".
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Evaluate computes a op b. It fails with a division by zero error when
// |b| <= Epsilon and op is "/", with an overflow error when an operand or
// the result is out of range, and with a parse error when either operand is
// malformed.
func Evaluate(a, op, b string) (float64, error) {
	x, err := ParseNumeral(a)
	if err != nil {
		return 0, err
	}
	y, err := ParseNumeral(b)
	if err != nil {
		return 0, err
	}

	var result float64
	switch op {
	case OpAdd:
		result = x + y
	case OpSubtract:
		result = x - y
	case OpMultiply:
		result = x * y
	case OpDivide:
		if math.Abs(y) <= Epsilon {
			return 0, NewDivisionByZeroError()
		}
		result = x / y
	default:
		return 0, NewOperatorError(op)
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, NewOverflowError()
	}
	return result, nil
}

// EvaluateString is Evaluate followed by FormatNumber.
func EvaluateString(a, op, b string) (string, error) {
	v, err := Evaluate(a, op, b)
	if err != nil {
		return "", err
	}
	return FormatNumber(v), nil
}
