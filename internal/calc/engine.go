package calc

import (
	"go.uber.org/zap"

	"github.com/muurk/keycalc/internal/logging"
)

// Observer receives the snapshot produced by every event.
type Observer func(Snapshot)

// Engine drives the state machine for one calculator session.
// It is not safe for concurrent use; callers that share an engine between
// goroutines must serialize Update calls themselves.
type Engine struct {
	state     State
	regs      Registers
	observers []Observer
}

// NewEngine creates an engine in StartFirstOperand with cleared registers.
func NewEngine(observers ...Observer) *Engine {
	return &Engine{
		state:     StartFirstOperand,
		regs:      InitialRegisters(),
		observers: observers,
	}
}

// Subscribe registers an observer called once after every event.
func (e *Engine) Subscribe(fn Observer) {
	if fn != nil {
		e.observers = append(e.observers, fn)
	}
}

// State returns the current state
func (e *Engine) State() State {
	return e.state
}

// Registers returns a copy of the current registers
func (e *Engine) Registers() Registers {
	return e.regs
}

// Snapshot returns the current display snapshot
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		State:     e.state,
		Display:   DisplayText(e.state, e.regs),
		Registers: e.regs,
	}
}

// Update applies one external event, including at most one follow-up
// transition, then notifies observers exactly once.
func (e *Engine) Update(ev Event) Snapshot {
	from := e.state

	step := Transition(e.state, e.regs, ev)
	e.logEvaluation(step)
	if step.FollowUp != nil {
		follow := *step.FollowUp
		logging.LogTransition(from.String(), step.State.String(), ev.String()+" (follow-up "+follow.String()+")")
		step = Transition(step.State, step.Registers, follow)
		e.logEvaluation(step)
		if step.FollowUp != nil {
			logging.DPanic("follow-up transition requested another follow-up",
				zap.String("state", step.State.String()),
				zap.String("event", step.FollowUp.String()),
			)
			step.FollowUp = nil
		}
	}

	e.state, e.regs = step.State, step.Registers
	logging.LogTransition(from.String(), e.state.String(), ev.String())

	snap := e.Snapshot()
	for _, fn := range e.observers {
		fn(snap)
	}
	return snap
}

// Feed applies events in order and returns the final snapshot.
func (e *Engine) Feed(events ...Event) Snapshot {
	for _, ev := range events {
		e.Update(ev)
	}
	return e.Snapshot()
}

func (e *Engine) logEvaluation(step Step) {
	if step.Evaluation == nil {
		return
	}
	ev := step.Evaluation
	if IsParseError(ev.Err) {
		// Registers are kept numeral by every handler; reaching this is a bug.
		logging.DPanic("register is not a numeral",
			zap.String("first_operand", ev.A),
			zap.String("operator", ev.Op),
			zap.String("second_operand", ev.B),
			zap.Error(ev.Err),
		)
	}
	logging.LogEvaluation(ev.A, ev.Op, ev.B, ev.Result, ev.Err)
}
