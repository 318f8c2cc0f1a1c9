package calc

import (
	"fmt"
	"strings"
)

// State is where the calculator is in composing an expression.
type State int

const (
	// StartFirstOperand is the idle state for the left operand
	StartFirstOperand State = iota
	// EnterFirstOperand accumulates digits into the left operand
	EnterFirstOperand
	// StartSecondOperand is the idle state for the right operand
	StartSecondOperand
	// EnterSecondOperand accumulates digits into the right operand
	EnterSecondOperand
	// ShowResult displays the last computed value
	ShowResult
	// ShowError displays an error message until the next event
	ShowError
)

var stateNames = [...]string{
	StartFirstOperand:  "StartFirstOperand",
	EnterFirstOperand:  "EnterFirstOperand",
	StartSecondOperand: "StartSecondOperand",
	EnterSecondOperand: "EnterSecondOperand",
	ShowResult:         "ShowResult",
	ShowError:          "ShowError",
}

// String returns the state name
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(text))
}

// IsSecondOperand reports whether the state composes the right operand.
func (s State) IsSecondOperand() bool {
	return s == StartSecondOperand || s == EnterSecondOperand
}

// EventKind classifies an input event.
type EventKind int

const (
	EventDigit EventKind = iota
	EventDot
	EventOperator
	EventBackspace
	EventClear
	EventEquals
)

var eventKindNames = [...]string{
	EventDigit:     "Digit",
	EventDot:       "Dot",
	EventOperator:  "Operator",
	EventBackspace: "Backspace",
	EventClear:     "Clear",
	EventEquals:    "Equals",
}

// String returns the event kind name
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// SignToggle is the operator symbol that flips the sign of an operand.
const SignToggle = '±'

// Event is a single, already classified key press. Symbol carries the digit
// or operator character for Digit and Operator events.
type Event struct {
	Kind   EventKind
	Symbol rune
}

// Digit returns a digit event. d must be in '0'..'9'.
func Digit(d rune) Event { return Event{Kind: EventDigit, Symbol: d} }

// Dot returns a decimal point event.
func Dot() Event { return Event{Kind: EventDot, Symbol: '.'} }

// Operator returns an operator event for one of + - * / or SignToggle.
func Operator(op rune) Event { return Event{Kind: EventOperator, Symbol: op} }

// Backspace returns a backspace event.
func Backspace() Event { return Event{Kind: EventBackspace} }

// Clear returns a clear event.
func Clear() Event { return Event{Kind: EventClear} }

// Equals returns an equals event.
func Equals() Event { return Event{Kind: EventEquals, Symbol: '='} }

// String returns e.g. "Digit(7)" or "Clear"
func (e Event) String() string {
	switch e.Kind {
	case EventDigit, EventOperator:
		return fmt.Sprintf("%s(%c)", e.Kind, e.Symbol)
	default:
		return e.Kind.String()
	}
}

// Registers are the four string registers plus the error payload.
type Registers struct {
	FirstOperand  string `json:"first_operand"`
	SecondOperand string `json:"second_operand"`
	Operator      string `json:"operator"`
	Result        string `json:"result"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// InitialRegisters returns the registers after Clear.
func InitialRegisters() Registers {
	return Registers{FirstOperand: "0"}
}

// Snapshot is what the presentation layer sees after every event.
type Snapshot struct {
	State     State     `json:"state"`
	Display   string    `json:"display"`
	Registers Registers `json:"registers"`
}

// DisplayText derives the display string from state and registers.
func DisplayText(state State, regs Registers) string {
	if state.IsSecondOperand() {
		return fmt.Sprintf("%s %s %s", regs.FirstOperand, regs.Operator, regs.SecondOperand)
	}
	switch state {
	case StartFirstOperand, EnterFirstOperand:
		return regs.FirstOperand
	case ShowResult:
		return regs.Result
	case ShowError:
		return regs.ErrorMessage
	default:
		return ""
	}
}

// Debug renders the register dump shown in the debug panel.
func (s Snapshot) Debug() string {
	var b strings.Builder
	fmt.Fprintf(&b, "         State : %s\n", s.State)
	fmt.Fprintf(&b, " First operand : %s\n", s.Registers.FirstOperand)
	fmt.Fprintf(&b, "Second operand : %s\n", s.Registers.SecondOperand)
	fmt.Fprintf(&b, "      Operator : %s\n", s.Registers.Operator)
	fmt.Fprintf(&b, "        Result : %s\n", s.Registers.Result)
	if s.Registers.ErrorMessage != "" {
		fmt.Fprintf(&b, "         Error : %s\n", s.Registers.ErrorMessage)
	}
	return b.String()
}
