package ui

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/muurk/keycalc/internal/calc"
	"github.com/muurk/keycalc/internal/keypad"
)

// Output formats accepted by PrintReport
const (
	FormatDetailed = "detailed"
	FormatPlain    = "plain"
	FormatJSON     = "json"
)

// TraceStep records the snapshot after one key.
type TraceStep struct {
	Key     string     `json:"key"`
	State   calc.State `json:"state"`
	Display string     `json:"display"`
}

// Report is the outcome of feeding a key string to a fresh engine.
type Report struct {
	Keys  string        `json:"keys"`
	Final calc.Snapshot `json:"final"`
	Trace []TraceStep   `json:"trace,omitempty"`
}

// Failed reports whether the evaluation ended in ShowError
func (r *Report) Failed() bool {
	return r.Final.State == calc.ShowError
}

// Evaluate runs keys through a new engine and records every step.
func Evaluate(keys string) (*Report, error) {
	events, err := keypad.ParseKeys(keys)
	if err != nil {
		return nil, err
	}

	report := &Report{Keys: keys, Trace: make([]TraceStep, 0, len(events))}
	engine := calc.NewEngine()

	var current calc.Event
	engine.Subscribe(func(s calc.Snapshot) {
		report.Trace = append(report.Trace, TraceStep{
			Key:     keypad.Glyph(current),
			State:   s.State,
			Display: s.Display,
		})
	})

	for _, ev := range events {
		current = ev
		engine.Update(ev)
	}
	report.Final = engine.Snapshot()
	return report, nil
}

// PrintReport renders r in the given format. debug adds the key trace and
// the register dump to the detailed format and the trace to JSON.
func (p *Printer) PrintReport(r *Report, format string, debug bool) error {
	switch format {
	case FormatPlain:
		p.Println(r.Final.Display)
		return nil

	case FormatJSON:
		out := *r
		if !debug {
			out.Trace = nil
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		p.Println(string(data))
		return nil

	case FormatDetailed, "":
		p.printDetailed(r, debug)
		return nil

	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, FormatDetailed, FormatPlain, FormatJSON)
	}
}

func (p *Printer) printDetailed(r *Report, debug bool) {
	p.PrintHeader("Evaluate", "keycalc eval", Param{Key: "Keys", Value: r.Keys})

	details := []Param{
		{Key: "Display", Value: r.Final.Display},
		{Key: "State", Value: r.Final.State.String()},
	}
	if r.Failed() {
		p.PrintError("Calculation failed", errors.New(r.Final.Registers.ErrorMessage), details[1:]...)
	} else {
		p.PrintSuccess("Calculation complete", details...)
	}

	if debug {
		p.PrintTrace(r.Trace)
		p.PrintDebug(r.Final.Debug())
	}
}
