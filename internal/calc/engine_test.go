package calc

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/keycalc/internal/logging"
)

// keys converts a compact key string into events for test readability.
// '~' is the sign toggle, '<' backspace, 'C' clear.
func keys(t *testing.T, s string) []Event {
	t.Helper()
	var events []Event
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			events = append(events, Digit(r))
		case r == '.':
			events = append(events, Dot())
		case r == '~':
			events = append(events, Operator(SignToggle))
		case r == '+' || r == '-' || r == '*' || r == '/':
			events = append(events, Operator(r))
		case r == '<':
			events = append(events, Backspace())
		case r == 'C':
			events = append(events, Clear())
		case r == '=':
			events = append(events, Equals())
		default:
			t.Fatalf("unsupported test key %q", r)
		}
	}
	return events
}

func TestEngine_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		keys        string
		wantState   State
		wantDisplay string
		wantFirst   string
	}{
		{"add", "1+2=", ShowResult, "3", ""},
		{"typing", "123", EnterFirstOperand, "123", "123"},
		{"chained", "1+2*3=", ShowResult, "9", ""},
		{"leading zero decimal", "0.5", EnterFirstOperand, "0.5", "0.5"},
		{"leading zeros suppressed", "0007", EnterFirstOperand, "7", "7"},
		{"many dots", "1....5", EnterFirstOperand, "1.5", "1.5"},
		{"negative via minus", "-5*2=", ShowResult, "-10", ""},
		{"second operand display", "12+3", EnterSecondOperand, "12 + 3", "12"},
		{"idle second operand display", "12*", StartSecondOperand, "12 * ", "12"},
		{"operator replaced", "8+-*/2=", ShowResult, "4", ""},
		{"dot starts second operand", "1+.5=", ShowResult, "1.5", ""},
		{"result as first operand", "2*3=+1=", ShowResult, "7", ""},
		{"digit after result starts over", "2*3=4", EnterFirstOperand, "4", "4"},
		{"zero after result", "2*3=0", StartFirstOperand, "0", "0"},
		{"dot after result", "2*3=.", EnterFirstOperand, "0.", "0."},
		{"sign on result", "2*3=~", ShowResult, "-6", ""},
		{"negative second operand", "5-3~=", ShowResult, "8", ""},
		{"backspace then continue", "12<3", EnterFirstOperand, "13", "13"},
		{"backspace to idle", "5<", StartFirstOperand, "0", "0"},
		{"backspace second to idle", "5+3<", StartSecondOperand, "5 + ", "5"},
		{"backspace after result ignored", "1+1=<", ShowResult, "2", ""},
		{"equals repeated ignored", "1+1==", ShowResult, "2", ""},
		{"decimal arithmetic", "0.1+0.2=", ShowResult, "0.30000000000000004", ""},
		{"division", "7/2=", ShowResult, "3.5", ""},
		{"clear mid expression", "12+34C", StartFirstOperand, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine()
			snap := engine.Feed(keys(t, tt.keys)...)

			if snap.State != tt.wantState {
				t.Errorf("keys %q: state = %v, want %v", tt.keys, snap.State, tt.wantState)
			}
			if snap.Display != tt.wantDisplay {
				t.Errorf("keys %q: display = %q, want %q", tt.keys, snap.Display, tt.wantDisplay)
			}
			if snap.Registers.FirstOperand != tt.wantFirst {
				t.Errorf("keys %q: FirstOperand = %q, want %q", tt.keys, snap.Registers.FirstOperand, tt.wantFirst)
			}
		})
	}
}

func TestEngine_DivisionByZeroRecovers(t *testing.T) {
	engine := NewEngine()
	snap := engine.Feed(keys(t, "5/0=")...)

	if snap.State != ShowError {
		t.Fatalf("state = %v, want ShowError", snap.State)
	}
	if snap.Display == "" {
		t.Error("Expected a non-empty error message on the display")
	}

	// Any event discards the error and restarts composition.
	snap = engine.Update(Digit('7'))
	if snap.State != StartFirstOperand {
		t.Errorf("state after error = %v, want StartFirstOperand", snap.State)
	}
	if snap.Registers != InitialRegisters() {
		t.Errorf("registers after error = %+v, want initial", snap.Registers)
	}

	snap = engine.Feed(keys(t, "6/3=")...)
	if snap.Display != "2" {
		t.Errorf("display after recovery = %q, want %q", snap.Display, "2")
	}
}

func TestEngine_ChainedDivisionByZero(t *testing.T) {
	engine := NewEngine()
	snap := engine.Feed(keys(t, "9/0+")...)

	if snap.State != ShowError {
		t.Fatalf("state = %v, want ShowError", snap.State)
	}
	if !strings.Contains(strings.ToLower(snap.Display), "zero") {
		t.Errorf("display = %q, expected a division by zero message", snap.Display)
	}
	if snap.Registers.Operator != "" || snap.Registers.SecondOperand != "" {
		t.Errorf("registers in ShowError = %+v, want operator and second operand cleared", snap.Registers)
	}
}

func TestEngine_OversizedOperandOverflows(t *testing.T) {
	t.Setenv(logging.LogLevelEnvVar, "")
	if err := logging.Initialize("debug", filepath.Join(t.TempDir(), "calc.log")); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = logging.Initialize("") })

	huge := "1" + strings.Repeat("9", 400)
	tests := []struct {
		name string
		keys string
	}{
		{"first operand", huge + "+1="},
		{"second operand", "1+" + huge + "="},
		{"chained", huge + "*2+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine()
			snap := engine.Feed(keys(t, tt.keys)...)

			if snap.State != ShowError {
				t.Fatalf("state = %v, want ShowError", snap.State)
			}
			if snap.Display != "Result is too large" {
				t.Errorf("display = %q, want %q", snap.Display, "Result is too large")
			}
		})
	}
}

func TestEngine_ClearFromEveryState(t *testing.T) {
	prefixes := map[State]string{
		StartFirstOperand:  "",
		EnterFirstOperand:  "12",
		StartSecondOperand: "12+",
		EnterSecondOperand: "12+3",
		ShowResult:         "12+3=",
		ShowError:          "1/0=",
	}

	for want, prefix := range prefixes {
		engine := NewEngine()
		engine.Feed(keys(t, prefix)...)
		if engine.State() != want {
			t.Fatalf("prefix %q reached %v, want %v", prefix, engine.State(), want)
		}

		snap := engine.Update(Clear())
		if snap.State != StartFirstOperand {
			t.Errorf("Clear from %v: state = %v", want, snap.State)
		}
		if snap.Registers != (Registers{FirstOperand: "0"}) {
			t.Errorf("Clear from %v: registers = %+v", want, snap.Registers)
		}
	}
}

func TestEngine_DigitConcatenation(t *testing.T) {
	sequences := []string{"1", "9", "12", "987654321", "1000", "50505", "3141592653589793"}

	for _, seq := range sequences {
		engine := NewEngine()
		snap := engine.Feed(keys(t, seq)...)
		if snap.Registers.FirstOperand != seq {
			t.Errorf("keys %q: FirstOperand = %q", seq, snap.Registers.FirstOperand)
		}
	}
}

func TestEngine_SignToggleIsInvolution(t *testing.T) {
	prefixes := []string{"", "5", "-", "0.", "12.5", "3+", "3+4", "3+0.25"}

	for _, prefix := range prefixes {
		engine := NewEngine()
		engine.Feed(keys(t, prefix)...)
		before := engine.Snapshot()

		engine.Update(Operator(SignToggle))
		after := engine.Update(Operator(SignToggle))

		if after.State != before.State {
			t.Errorf("prefix %q: state %v -> %v", prefix, before.State, after.State)
		}
		if after.Registers.FirstOperand != before.Registers.FirstOperand {
			t.Errorf("prefix %q: FirstOperand %q -> %q", prefix, before.Registers.FirstOperand, after.Registers.FirstOperand)
		}
		if after.Registers.SecondOperand != before.Registers.SecondOperand {
			t.Errorf("prefix %q: SecondOperand %q -> %q", prefix, before.Registers.SecondOperand, after.Registers.SecondOperand)
		}
	}
}

func TestEngine_AtMostOneDot(t *testing.T) {
	for _, seq := range []string{"......", "1.2.3.4", "0..5..", ".5.", "1+2...3..4", "1+...."} {
		engine := NewEngine()
		snap := engine.Feed(keys(t, seq)...)
		for name, operand := range map[string]string{
			"first":  snap.Registers.FirstOperand,
			"second": snap.Registers.SecondOperand,
		} {
			if strings.Count(operand, ".") > 1 {
				t.Errorf("keys %q: %s operand %q has more than one dot", seq, name, operand)
			}
		}
	}
}

func TestEngine_BackspaceSingleCharacter(t *testing.T) {
	for d := '1'; d <= '9'; d++ {
		engine := NewEngine()
		engine.Update(Digit(d))
		snap := engine.Update(Backspace())
		if snap.State != StartFirstOperand || snap.Registers.FirstOperand != "0" {
			t.Errorf("digit %c: got %v %q, want StartFirstOperand \"0\"", d, snap.State, snap.Registers.FirstOperand)
		}

		engine = NewEngine()
		engine.Feed(Digit('4'), Operator('+'), Digit(d))
		snap = engine.Update(Backspace())
		if snap.State != StartSecondOperand || snap.Registers.SecondOperand != "" {
			t.Errorf("second digit %c: got %v %q, want StartSecondOperand", d, snap.State, snap.Registers.SecondOperand)
		}
	}
}

func TestEngine_OperandsStayNumerals(t *testing.T) {
	// Exercise a long mixed sequence and check the numeral invariant after every event.
	seq := "-.5~<<<3..2~+0.~0<<7*~.9=~-4<<~5/-0.=C9~9<.1+2<<<=.."
	engine := NewEngine()
	for _, ev := range keys(t, seq) {
		snap := engine.Update(ev)
		switch snap.State {
		case StartFirstOperand, EnterFirstOperand:
			if !IsNumeral(snap.Registers.FirstOperand) {
				t.Fatalf("after %v: FirstOperand %q is not a numeral", ev, snap.Registers.FirstOperand)
			}
		case EnterSecondOperand:
			if !IsNumeral(snap.Registers.SecondOperand) {
				t.Fatalf("after %v: SecondOperand %q is not a numeral", ev, snap.Registers.SecondOperand)
			}
		}
	}
}

func TestEngine_ObserverCalledOncePerEvent(t *testing.T) {
	var snaps []Snapshot
	engine := NewEngine(func(s Snapshot) { snaps = append(snaps, s) })

	// The digit after a result triggers a follow-up transition; observers
	// must still see exactly one snapshot for it.
	engine.Feed(keys(t, "2*3=5")...)

	if len(snaps) != 5 {
		t.Fatalf("observer called %d times, want 5", len(snaps))
	}
	if snaps[3].Display != "6" {
		t.Errorf("snapshot after equals = %q, want %q", snaps[3].Display, "6")
	}
	last := snaps[4]
	if last.State != EnterFirstOperand || last.Display != "5" {
		t.Errorf("last snapshot = %v %q, want EnterFirstOperand \"5\"", last.State, last.Display)
	}
}

func TestEngine_Subscribe(t *testing.T) {
	engine := NewEngine()
	calls := 0
	engine.Subscribe(func(Snapshot) { calls++ })
	engine.Subscribe(nil)

	engine.Update(Digit('1'))
	engine.Update(Clear())

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSnapshot_Debug(t *testing.T) {
	engine := NewEngine()
	snap := engine.Feed(keys(t, "1+2")...)
	debug := snap.Debug()

	for _, want := range []string{
		"State : EnterSecondOperand",
		"First operand : 1",
		"Second operand : 2",
		"Operator : +",
	} {
		if !strings.Contains(debug, want) {
			t.Errorf("Debug() missing %q:\n%s", want, debug)
		}
	}
}

func TestState_TextRoundTrip(t *testing.T) {
	for s := StartFirstOperand; s <= ShowError; s++ {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) error = %v", s, err)
		}
		var got State
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if got != s {
			t.Errorf("round trip %v = %v", s, got)
		}
	}

	var s State
	if err := s.UnmarshalText([]byte("Nowhere")); err == nil {
		t.Error("Expected error for unknown state name")
	}
}

func TestState_IsSecondOperand(t *testing.T) {
	want := map[State]bool{StartSecondOperand: true, EnterSecondOperand: true}
	for s := StartFirstOperand; s <= ShowError; s++ {
		if got := s.IsSecondOperand(); got != want[s] {
			t.Errorf("%v.IsSecondOperand() = %v, want %v", s, got, want[s])
		}
	}
}
