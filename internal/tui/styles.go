package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/keycalc/internal/urls"
	"github.com/muurk/keycalc/internal/version"
)

// AppName is shown in the header
const AppName = "KEYCALC"

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants
const (
	MinTerminalWidth = 40
	ButtonWidth      = 7
	ButtonGap        = 1
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	AccentColor    = lipgloss.Color("#FF8B94") // Pink
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor       = lipgloss.Color("#FFFFFF")
	SubtleColor     = lipgloss.Color("#626262")
	BorderColor     = lipgloss.Color("#7D56F4")
	HighlightColor  = lipgloss.Color("#43BF6D")
	BackgroundColor = lipgloss.Color("#1A1A1A")
)

var (
	// Display field: right-aligned, fixed width set at render time
	DisplayStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			Align(lipgloss.Right).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	DisplayErrorStyle = DisplayStyle.
				Foreground(ErrorColor).
				BorderForeground(ErrorColor)

	DisplayResultStyle = DisplayStyle.
				Foreground(HighlightColor)

	ButtonStyle = lipgloss.NewStyle().
			Width(ButtonWidth).
			Align(lipgloss.Center).
			Foreground(TextColor).
			Border(lipgloss.NormalBorder()).
			BorderForeground(SubtleColor)

	OperatorButtonStyle = ButtonStyle.
				Foreground(AccentColor)

	ControlButtonStyle = ButtonStyle.
				Foreground(WarningColor)

	FocusedButtonStyle = ButtonStyle.
				Foreground(HighlightColor).
				Bold(true).
				BorderForeground(HighlightColor)

	// Button that was pressed last, flashed until the next key
	PressedButtonStyle = FocusedButtonStyle.
				Reverse(true)

	DebugPanelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1).
			MarginLeft(2)

	DebugTitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

// BuildHeaderContent creates header content with app name and repository URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(strings.TrimPrefix(urls.Repository, "https://"))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// BuildFooterContent creates footer content with help text
func BuildFooterContent(helpText string) string {
	return HelpStyle.Render(helpText)
}

// RenderApplicationContainer wraps a screen with the header, the help footer
// and an outer border sized to the terminal.
//
// Before the first tea.WindowSizeMsg arrives the width and height are zero;
// content is then rendered unframed at its natural size.
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	header := BuildHeaderContent()
	footer := BuildFooterContent(footerText)

	if terminalWidth < MinTerminalWidth || terminalHeight <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", content, "", footer)
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth-4).
		Padding(1, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(header),
		contentStyle.Render(content),
		footerStyle.Render(footer),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}
