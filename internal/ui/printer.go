package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Printer writes styled components to a writer. Commands create one per
// invocation and print header, result and optional detail boxes in order.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box
func (p *Printer) PrintError(title string, err error, details ...Param) {
	p.Println(NewFailureResult(title, err, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintTrace prints the per-key trace of an evaluation
func (p *Printer) PrintTrace(steps []TraceStep) {
	p.Println(RenderTraceBox(steps, p.width))
}

// PrintDebug prints the register dump in a muted box
func (p *Printer) PrintDebug(dump string) {
	body := TraceTitleStyle.Render("Registers") + "\n" + strings.TrimRight(dump, "\n")
	p.Println(TraceBoxStyle(p.width).Render(body))
}

// RenderTraceBox renders one line per key: key, resulting state and display.
func RenderTraceBox(steps []TraceStep, width int) string {
	lines := []string{TraceTitleStyle.Render("Key Trace")}
	for _, s := range steps {
		lines = append(lines,
			TraceKeyStyle.Render(s.Key)+" "+TraceArrow+" "+
				TraceStateStyle.Render(s.State.String())+
				TraceDisplayStyle.Render(s.Display))
	}
	return TraceBoxStyle(width).Render(strings.Join(lines, "\n"))
}
