package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows a warning box with the given bullet points and asks the
// user to type answer. It returns true only for an exact match
// (case-insensitive); EOF or any other input declines.
func (p *Printer) Confirm(in io.Reader, title string, warnings []string, answer string) bool {
	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf(" %s  %s", WarningMarker, title)), ""}
	for _, w := range warnings {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render(" • "+w))
	}
	lines = append(lines, "")

	p.Println(WarningBoxStyle(p.width).Render(strings.Join(lines, "\n")))
	p.Print(WarningTitleStyle.Render(fmt.Sprintf("Type %q to continue: ", answer)))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		p.Newline()
		return false
	}

	if strings.EqualFold(strings.TrimSpace(input), answer) {
		return true
	}

	p.Println(lipgloss.NewStyle().Foreground(MutedColor).Render("  Cancelled."))
	return false
}
