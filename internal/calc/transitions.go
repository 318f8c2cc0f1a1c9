package calc

import (
	"strings"
)

// Evaluation records a binary computation performed during a step.
type Evaluation struct {
	A      string
	Op     string
	B      string
	Result string
	Err    error
}

// Step is the outcome of running one handler: the next state and registers,
// and at most one follow-up event the driver must apply before yielding.
type Step struct {
	State      State
	Registers  Registers
	FollowUp   *Event
	Evaluation *Evaluation
}

// Err returns the evaluation error of the step, if any.
func (s Step) Err() error {
	if s.Evaluation == nil {
		return nil
	}
	return s.Evaluation.Err
}

type handler func(regs Registers, ev Event) Step

// handlers is indexed by State.
var handlers = [...]handler{
	StartFirstOperand:  onStartFirstOperand,
	EnterFirstOperand:  onEnterFirstOperand,
	StartSecondOperand: onStartSecondOperand,
	EnterSecondOperand: onEnterSecondOperand,
	ShowResult:         onShowResult,
	ShowError:          onShowError,
}

// Transition applies ev to (state, regs) and returns the resulting step.
// It is pure: registers are passed and returned by value.
func Transition(state State, regs Registers, ev Event) Step {
	if state < 0 || int(state) >= len(handlers) {
		return reset()
	}
	if !validEvent(ev) {
		return stay(state, regs)
	}
	if ev.Kind == EventClear {
		return reset()
	}
	return handlers[state](regs, ev)
}

func validEvent(ev Event) bool {
	switch ev.Kind {
	case EventDigit:
		return ev.Symbol >= '0' && ev.Symbol <= '9'
	case EventOperator:
		return IsOperatorSymbol(ev.Symbol)
	case EventDot, EventBackspace, EventClear, EventEquals:
		return true
	default:
		return false
	}
}

// IsOperatorSymbol reports whether r is + - * / or SignToggle.
func IsOperatorSymbol(r rune) bool {
	switch r {
	case '+', '-', '*', '/', SignToggle:
		return true
	}
	return false
}

func stay(state State, regs Registers) Step {
	return Step{State: state, Registers: regs}
}

func reset() Step {
	return Step{State: StartFirstOperand, Registers: InitialRegisters()}
}

func isNegative(s string) bool { return strings.HasPrefix(s, "-") }

func isZero(s string) bool { return s == "0" || s == "-0" }

func toggleSign(s string) string {
	if isNegative(s) {
		return s[1:]
	}
	return "-" + s
}

// dropLast removes the trailing character and reports whether the operand
// has been emptied. A lone "-" counts as empty.
func dropLast(s string) (string, bool) {
	if s != "" {
		s = s[:len(s)-1]
	}
	return s, s == "" || s == "-"
}

func onStartFirstOperand(regs Registers, ev Event) Step {
	switch ev.Kind {
	case EventDigit:
		if ev.Symbol == '0' {
			return stay(StartFirstOperand, regs)
		}
		if isNegative(regs.FirstOperand) {
			regs.FirstOperand = "-" + string(ev.Symbol)
		} else {
			regs.FirstOperand = string(ev.Symbol)
		}
		return stay(EnterFirstOperand, regs)

	case EventOperator:
		switch ev.Symbol {
		case '+':
			if isNegative(regs.FirstOperand) {
				regs.FirstOperand = "0"
			}
		case '-':
			if !isNegative(regs.FirstOperand) {
				regs.FirstOperand = "-0"
			}
		case SignToggle:
			if isNegative(regs.FirstOperand) {
				regs.FirstOperand = "0"
			} else {
				regs.FirstOperand = "-0"
			}
		default:
			regs.FirstOperand = "0"
			regs.Operator = string(ev.Symbol)
			return stay(StartSecondOperand, regs)
		}
		return stay(StartFirstOperand, regs)

	case EventDot:
		regs.FirstOperand += "."
		return stay(EnterFirstOperand, regs)

	case EventBackspace:
		if regs.FirstOperand != "" {
			regs.FirstOperand = regs.FirstOperand[1:]
		}
		if regs.FirstOperand == "" {
			regs.FirstOperand = "0"
		}
		return stay(StartFirstOperand, regs)
	}

	return stay(StartFirstOperand, regs)
}

func onEnterFirstOperand(regs Registers, ev Event) Step {
	switch ev.Kind {
	case EventDigit:
		if ev.Symbol != '0' || !isZero(regs.FirstOperand) {
			regs.FirstOperand += string(ev.Symbol)
		}

	case EventOperator:
		if ev.Symbol == SignToggle {
			regs.FirstOperand = toggleSign(regs.FirstOperand)
			break
		}
		regs.Operator = string(ev.Symbol)
		return stay(StartSecondOperand, regs)

	case EventDot:
		if !strings.Contains(regs.FirstOperand, ".") {
			regs.FirstOperand += "."
		}

	case EventBackspace:
		var emptied bool
		regs.FirstOperand, emptied = dropLast(regs.FirstOperand)
		if emptied {
			if regs.FirstOperand == "-" {
				regs.FirstOperand = "-0"
			} else {
				regs.FirstOperand = "0"
			}
			return stay(StartFirstOperand, regs)
		}
	}

	return stay(EnterFirstOperand, regs)
}

func onStartSecondOperand(regs Registers, ev Event) Step {
	switch ev.Kind {
	case EventDigit:
		regs.SecondOperand += string(ev.Symbol)
		return stay(EnterSecondOperand, regs)

	case EventOperator:
		if ev.Symbol != SignToggle {
			regs.Operator = string(ev.Symbol)
		}

	case EventDot:
		regs.SecondOperand += "0."
		return stay(EnterSecondOperand, regs)
	}

	// Backspace and Equals have nothing to act on yet.
	return stay(StartSecondOperand, regs)
}

func onEnterSecondOperand(regs Registers, ev Event) Step {
	switch ev.Kind {
	case EventDigit:
		if ev.Symbol != '0' || !isZero(regs.SecondOperand) {
			regs.SecondOperand += string(ev.Symbol)
		}

	case EventOperator:
		if ev.Symbol == SignToggle {
			regs.SecondOperand = toggleSign(regs.SecondOperand)
			break
		}
		step := evaluate(regs)
		if step.State == ShowError {
			return step
		}
		step.Registers.FirstOperand = step.Registers.Result
		step.Registers.SecondOperand = ""
		step.Registers.Operator = string(ev.Symbol)
		step.State = StartSecondOperand
		return step

	case EventDot:
		if !strings.Contains(regs.SecondOperand, ".") {
			regs.SecondOperand += "."
		}

	case EventBackspace:
		var emptied bool
		regs.SecondOperand, emptied = dropLast(regs.SecondOperand)
		if emptied {
			regs.SecondOperand = ""
			return stay(StartSecondOperand, regs)
		}

	case EventEquals:
		step := evaluate(regs)
		if step.State == ShowError {
			return step
		}
		step.Registers.FirstOperand = ""
		step.Registers.SecondOperand = ""
		step.Registers.Operator = ""
		step.State = ShowResult
		return step
	}

	return stay(EnterSecondOperand, regs)
}

// evaluate computes the pending operation. On success the returned step
// carries the formatted result in Registers.Result; on failure it is already
// routed to ShowError.
func evaluate(regs Registers) Step {
	ev := &Evaluation{A: regs.FirstOperand, Op: regs.Operator, B: regs.SecondOperand}
	result, err := EvaluateString(regs.FirstOperand, regs.Operator, regs.SecondOperand)
	if err != nil {
		ev.Err = err
		regs.Operator = ""
		regs.SecondOperand = ""
		regs.ErrorMessage = ShortMessage(err)
		regs.Result = regs.ErrorMessage
		return Step{State: ShowError, Registers: regs, Evaluation: ev}
	}
	ev.Result = result
	regs.Result = result
	return Step{State: EnterSecondOperand, Registers: regs, Evaluation: ev}
}

func onShowResult(regs Registers, ev Event) Step {
	switch ev.Kind {
	case EventDigit, EventDot:
		// Start a fresh expression and let StartFirstOperand handle the key.
		follow := ev
		return Step{
			State:     StartFirstOperand,
			Registers: InitialRegisters(),
			FollowUp:  &follow,
		}

	case EventOperator:
		if ev.Symbol == SignToggle {
			if !isZero(regs.Result) {
				regs.Result = toggleSign(regs.Result)
			}
			return stay(ShowResult, regs)
		}
		regs.FirstOperand = regs.Result
		regs.SecondOperand = ""
		regs.Operator = string(ev.Symbol)
		regs.Result = ""
		return stay(StartSecondOperand, regs)
	}

	return stay(ShowResult, regs)
}

func onShowError(Registers, Event) Step {
	return reset()
}
