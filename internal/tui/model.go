package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/keycalc/internal/calc"
	"github.com/muurk/keycalc/internal/keypad"
	"github.com/muurk/keycalc/internal/logging"
)

// Options configure a new Model.
type Options struct {
	ShowDebug bool
}

// Model is the interactive calculator screen.
type Model struct {
	engine *calc.Engine
	// display is written by the engine observer, shared across model copies
	display *calc.Snapshot

	FocusRow  int
	FocusCol  int
	Pressed   *keypad.Button
	ShowDebug bool

	Width  int
	Height int

	Help help.Model
	Keys keyMap
}

// New creates a calculator model with a fresh engine.
func New(opts Options) Model {
	engine := calc.NewEngine()
	snap := engine.Snapshot()
	display := &snap
	engine.Subscribe(func(s calc.Snapshot) {
		*display = s
	})

	row, col, _ := keypad.Find(calc.Digit('7'))

	return Model{
		engine:    engine,
		display:   display,
		FocusRow:  row,
		FocusCol:  col,
		ShowDebug: opts.ShowDebug,
		Help:      help.New(),
		Keys:      defaultKeyMap(),
	}
}

// Snapshot returns what the display currently shows
func (m Model) Snapshot() calc.Snapshot {
	return *m.display
}

// Focused returns the button under the cursor
func (m Model) Focused() keypad.Button {
	return keypad.Layout[m.FocusRow][m.FocusCol]
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Up):
		m.moveFocus(-1, 0)
		return m, nil
	case key.Matches(msg, m.Keys.Down):
		m.moveFocus(1, 0)
		return m, nil
	case key.Matches(msg, m.Keys.Left):
		m.moveFocus(0, -1)
		return m, nil
	case key.Matches(msg, m.Keys.Right):
		m.moveFocus(0, 1)
		return m, nil
	case key.Matches(msg, m.Keys.Press):
		m.press(m.Focused())
		return m, nil
	case key.Matches(msg, m.Keys.Debug):
		m.ShowDebug = !m.ShowDebug
		return m, nil
	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	}

	ev, ok := keypad.ParseKey(msg.String())
	if !ok {
		logging.Debug("Ignoring key", zap.String("key", msg.String()))
		return m, nil
	}

	// Follow the keyboard with the on-screen focus
	row, col, found := keypad.Find(ev)
	if !found {
		m.engine.Update(ev)
		m.Pressed = nil
		return m, nil
	}
	m.FocusRow, m.FocusCol = row, col
	m.press(keypad.Layout[row][col])
	return m, nil
}

func (m *Model) press(b keypad.Button) {
	m.engine.Update(b.Event)
	m.Pressed = &b
}

// moveFocus moves the cursor, clamping the column to the shorter last row.
func (m *Model) moveFocus(dRow, dCol int) {
	rows := len(keypad.Layout)
	m.FocusRow = (m.FocusRow + dRow + rows) % rows

	cols := len(keypad.Layout[m.FocusRow])
	if dCol != 0 {
		m.FocusCol = (m.FocusCol + dCol + cols) % cols
	} else if m.FocusCol >= cols {
		m.FocusCol = cols - 1
	}
	m.Pressed = nil
}

// View implements tea.Model
func (m Model) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m Model) buildContent() string {
	calculator := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderDisplay(),
		m.renderKeypad(),
	)

	if !m.ShowDebug {
		return calculator
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, calculator, m.renderDebug())
}

// keypadWidth is the rendered width of the widest keypad row.
func keypadWidth() int {
	widest := 0
	for _, row := range keypad.Layout {
		if len(row) > widest {
			widest = len(row)
		}
	}
	// Each button carries a one-cell border on both sides
	return widest*(ButtonWidth+2) + (widest-1)*ButtonGap
}

func (m Model) renderDisplay() string {
	snap := m.Snapshot()

	style := DisplayStyle
	switch snap.State {
	case calc.ShowResult:
		style = DisplayResultStyle
	case calc.ShowError:
		style = DisplayErrorStyle
	}

	// Width excludes the border
	return style.Width(keypadWidth() - 2).Render(snap.Display)
}

func (m Model) renderKeypad() string {
	rows := make([]string, 0, len(keypad.Layout))
	gap := strings.Repeat(" ", ButtonGap)

	for r, buttons := range keypad.Layout {
		cells := make([]string, 0, len(buttons)*2)
		for c, b := range buttons {
			if c > 0 {
				cells = append(cells, gap)
			}
			cells = append(cells, m.buttonStyle(r, c, b).Render(b.Label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) buttonStyle(row, col int, b keypad.Button) lipgloss.Style {
	focused := row == m.FocusRow && col == m.FocusCol
	switch {
	case focused && m.Pressed != nil && m.Pressed.Event == b.Event:
		return PressedButtonStyle
	case focused:
		return FocusedButtonStyle
	}

	switch b.Event.Kind {
	case calc.EventOperator, calc.EventEquals:
		return OperatorButtonStyle
	case calc.EventClear, calc.EventBackspace:
		return ControlButtonStyle
	default:
		return ButtonStyle
	}
}

func (m Model) renderDebug() string {
	body := strings.TrimRight(m.Snapshot().Debug(), "\n")
	return DebugPanelStyle.Render(DebugTitleStyle.Render("Debug") + "\n\n" + body)
}

// Run starts the interactive calculator on the terminal.
func Run(opts Options) error {
	logging.Info("Starting interactive calculator", zap.Bool("debug_panel", opts.ShowDebug))
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
