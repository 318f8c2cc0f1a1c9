package calc

import (
	"math"
	"strings"
	"testing"
)

func TestIsNumeral(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"0", true},
		{"-0", true},
		{"123", true},
		{"0.5", true},
		{"-12.75", true},
		{"5.", true},
		{".5", true},
		{"-.5", true},
		{"", false},
		{"-", false},
		{".", false},
		{"-.", false},
		{"1.2.3", false},
		{"--1", false},
		{"1e5", false},
		{"1,5", false},
		{"Infinity", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsNumeral(tt.input); got != tt.want {
				t.Errorf("IsNumeral(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNumeral_Invalid(t *testing.T) {
	for _, input := range []string{"", "-", "1.2.3", "abc"} {
		_, err := ParseNumeral(input)
		if err == nil {
			t.Errorf("ParseNumeral(%q) expected error", input)
			continue
		}
		if !IsParseError(err) {
			t.Errorf("ParseNumeral(%q) error = %v, want parse error", input, err)
		}
	}
}

func TestParseNumeral_OutOfRange(t *testing.T) {
	for _, input := range []string{"1" + strings.Repeat("0", 400), "-" + strings.Repeat("9", 320)} {
		_, err := ParseNumeral(input)
		if !IsOverflow(err) {
			t.Errorf("ParseNumeral(%d digits) error = %v, want overflow", len(input), err)
		}
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		a    string
		op   string
		b    string
		want string
	}{
		{"add", "1", "+", "2", "3"},
		{"subtract", "5", "-", "8", "-3"},
		{"multiply", "3", "*", "3", "9"},
		{"divide", "7", "/", "2", "3.5"},
		{"decimal add", "0.1", "+", "0.2", "0.30000000000000004"},
		{"negative operands", "-2", "*", "-4", "8"},
		{"trailing dot", "5.", "+", "1", "6"},
		{"negative zero normalized", "-0", "*", "5", "0"},
		{"large no exponent", "100000000000", "*", "100000000000", "10000000000000000000000"},
		{"small no exponent", "1", "/", "10000000", "0.0000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateString(tt.a, tt.op, tt.b)
			if err != nil {
				t.Fatalf("EvaluateString(%q, %q, %q) error = %v", tt.a, tt.op, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("EvaluateString(%q, %q, %q) = %q, want %q", tt.a, tt.op, tt.b, got, tt.want)
			}
		})
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	divisors := []string{"0", "-0", "0.0", "0.0000000000000001", "-0.0000000000000002"}
	dividends := []string{"5", "-5", "0"}

	for _, b := range divisors {
		for _, a := range dividends {
			v, err := Evaluate(a, "/", b)
			if !IsDivisionByZero(err) {
				t.Errorf("Evaluate(%q, /, %q) = %v, %v; want division by zero", a, b, v, err)
			}
		}
	}

	// Just above epsilon is a legal divisor
	if _, err := Evaluate("1", "/", "0.000000000000001"); err != nil {
		t.Errorf("Evaluate(1, /, 1e-15) unexpected error = %v", err)
	}
}

func TestEvaluate_Overflow(t *testing.T) {
	huge := FormatNumber(math.MaxFloat64)

	_, err := Evaluate(huge, "*", "10")
	if !IsOverflow(err) {
		t.Errorf("Evaluate(max, *, 10) error = %v, want overflow", err)
	}

	_, err = Evaluate(huge, "/", "0.1")
	if !IsOverflow(err) {
		t.Errorf("Evaluate(max, /, 0.1) error = %v, want overflow", err)
	}
}

func TestEvaluate_UnknownOperator(t *testing.T) {
	_, err := Evaluate("1", "%", "2")
	if err == nil {
		t.Fatal("Expected error for unknown operator")
	}
	calcErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if calcErr.Type != ErrTypeOperator {
		t.Errorf("Type = %v, want %v", calcErr.Type, ErrTypeOperator)
	}
}

func TestEvaluate_ParseError(t *testing.T) {
	_, err := Evaluate("1", "+", "-")
	if !IsParseError(err) {
		t.Fatalf("Evaluate(1, +, -) error = %v, want parse error", err)
	}
	if calcErr := err.(*Error); calcErr.Operand != "-" {
		t.Errorf("Operand = %q, want %q", calcErr.Operand, "-")
	}
}

func TestFormatNumber_RoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"1", "2"}, {"0.1", "0.2"}, {"-3.75", "12.5"}, {"123456789.123", "0.000001"},
		{"99999999999999999", "1"}, {"-0.5", "-0.25"}, {"7", "3"},
	}

	for _, p := range pairs {
		for _, op := range []string{OpAdd, OpSubtract, OpMultiply, OpDivide} {
			v, err := Evaluate(p[0], op, p[1])
			if err != nil {
				t.Fatalf("Evaluate(%q, %q, %q) error = %v", p[0], op, p[1], err)
			}
			text := FormatNumber(v)
			if !IsNumeral(text) {
				t.Errorf("FormatNumber(%v) = %q is not a numeral", v, text)
			}
			back, err := ParseNumeral(text)
			if err != nil {
				t.Fatalf("ParseNumeral(%q) error = %v", text, err)
			}
			if back != v {
				t.Errorf("round trip %s %s %s: %v -> %q -> %v", p[0], op, p[1], v, text, back)
			}
		}
	}
}
