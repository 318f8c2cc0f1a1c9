package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/muurk/keycalc/internal/calc"
	"github.com/muurk/keycalc/internal/keypad"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf).SetWidth(80), &buf
}

func TestEvaluate(t *testing.T) {
	report, err := Evaluate("12 + 30 =")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if report.Final.Display != "42" || report.Final.State != calc.ShowResult {
		t.Errorf("final = %v %q, want ShowResult \"42\"", report.Final.State, report.Final.Display)
	}
	if len(report.Trace) != 6 {
		t.Fatalf("trace has %d steps, want 6", len(report.Trace))
	}
	if got := report.Trace[2]; got.Key != "+" || got.Display != "12 + " {
		t.Errorf("trace[2] = %+v", got)
	}
	if report.Failed() {
		t.Error("Failed() = true for a successful evaluation")
	}
}

func TestEvaluate_UnknownKey(t *testing.T) {
	_, err := Evaluate("1+a")

	var keyErr *keypad.UnknownKeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("Evaluate() error = %v, want *keypad.UnknownKeyError", err)
	}
}

func TestPrintReport_Plain(t *testing.T) {
	p, buf := newTestPrinter()
	report, _ := Evaluate("7/2=")

	if err := p.PrintReport(report, FormatPlain, false); err != nil {
		t.Fatalf("PrintReport() error = %v", err)
	}
	if got := buf.String(); got != "3.5\n" {
		t.Errorf("plain output = %q, want %q", got, "3.5\n")
	}
}

func TestPrintReport_JSON(t *testing.T) {
	p, buf := newTestPrinter()
	report, _ := Evaluate("1/0=")

	if err := p.PrintReport(report, FormatJSON, false); err != nil {
		t.Fatalf("PrintReport() error = %v", err)
	}

	var decoded struct {
		Keys  string `json:"keys"`
		Final struct {
			State     string `json:"state"`
			Display   string `json:"display"`
			Registers struct {
				ErrorMessage string `json:"error_message"`
			} `json:"registers"`
		} `json:"final"`
		Trace []TraceStep `json:"trace"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if decoded.Final.State != "ShowError" {
		t.Errorf("state = %q, want ShowError", decoded.Final.State)
	}
	if decoded.Final.Registers.ErrorMessage != "Cannot divide by zero" {
		t.Errorf("error_message = %q", decoded.Final.Registers.ErrorMessage)
	}
	if decoded.Trace != nil {
		t.Error("trace should be omitted without debug")
	}
}

func TestPrintReport_DetailedDebug(t *testing.T) {
	p, buf := newTestPrinter()
	report, _ := Evaluate("2*3=")

	if err := p.PrintReport(report, FormatDetailed, true); err != nil {
		t.Fatalf("PrintReport() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"EVALUATE", "keycalc eval", "Calculation complete", "Key Trace", "ShowResult", "Registers"} {
		if !strings.Contains(out, want) {
			t.Errorf("detailed output missing %q", want)
		}
	}
}

func TestPrintReport_DetailedError(t *testing.T) {
	p, buf := newTestPrinter()
	report, _ := Evaluate("5/0+")

	if err := p.PrintReport(report, FormatDetailed, false); err != nil {
		t.Fatalf("PrintReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Cannot divide by zero") {
		t.Errorf("error box missing message:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Key Trace") {
		t.Error("trace printed without debug")
	}
}

func TestPrintReport_UnknownFormat(t *testing.T) {
	p, _ := newTestPrinter()
	report, _ := Evaluate("1")

	if err := p.PrintReport(report, "yaml", false); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestHeader_ParamsInOrder(t *testing.T) {
	out := NewHeader("Scan", "keycalc scan",
		Param{Key: "Service", Value: "_keycalc._tcp"},
		Param{Key: "Timeout", Value: "5s"},
	).SetWidth(70).Render()

	service := strings.Index(out, "Service:")
	timeout := strings.Index(out, "Timeout:")
	if service < 0 || timeout < 0 || service > timeout {
		t.Errorf("params not rendered in order:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"no\n", false},
		{"", false},
		{"yes", true}, // no trailing newline
	}

	for _, tt := range tests {
		p, _ := newTestPrinter()
		got := p.Confirm(strings.NewReader(tt.input), "Overwrite", []string{"existing file"}, "yes")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsTerminal_NonFileWriters(t *testing.T) {
	var buf bytes.Buffer
	if IsTerminal(&buf) {
		t.Error("IsTerminal(buffer) = true, want false")
	}
	if IsTerminal(nil) {
		t.Error("IsTerminal(nil) = true, want false")
	}
}
