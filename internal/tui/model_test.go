package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/keycalc/internal/calc"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		var ok bool
		m, ok = updated.(Model)
		if !ok {
			t.Fatalf("Update returned %T, want Model", updated)
		}
	}
	return m
}

func typeKeys(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, runes(string(r)))
	}
	return m
}

func TestModel_TypedExpression(t *testing.T) {
	m := New(Options{})
	m = typeKeys(t, m, "12+30")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	snap := m.Snapshot()
	if snap.State != calc.ShowResult || snap.Display != "42" {
		t.Errorf("got %v %q, want ShowResult \"42\"", snap.State, snap.Display)
	}
}

func TestModel_BackspaceAndEscape(t *testing.T) {
	m := New(Options{})
	m = typeKeys(t, m, "123")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})

	if got := m.Snapshot().Display; got != "12" {
		t.Errorf("display after backspace = %q, want %q", got, "12")
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if snap := m.Snapshot(); snap.State != calc.StartFirstOperand || snap.Display != "0" {
		t.Errorf("after esc got %v %q", snap.State, snap.Display)
	}
}

func TestModel_TypingMovesFocus(t *testing.T) {
	m := New(Options{})
	m = typeKeys(t, m, "+")

	if got := m.Focused().Label; got != "+" {
		t.Errorf("focused = %q, want %q", got, "+")
	}
	if m.Pressed == nil || m.Pressed.Label != "+" {
		t.Error("Expected the typed button to be marked pressed")
	}
}

func TestModel_FocusNavigation(t *testing.T) {
	m := New(Options{})
	if got := m.Focused().Label; got != "7" {
		t.Fatalf("initial focus = %q, want 7", got)
	}

	tests := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyRight, "8"},
		{tea.KeyRight, "9"},
		{tea.KeyRight, "*"},
		{tea.KeyRight, "7"}, // wraps
		{tea.KeyUp, "C"},
		{tea.KeyUp, "0"}, // wraps to last row
		{tea.KeyLeft, "="},
		{tea.KeyUp, "3"},
		{tea.KeyRight, "+"},
		{tea.KeyDown, "="}, // column clamped on the short row
	}

	for i, tt := range tests {
		m = send(t, m, tea.KeyMsg{Type: tt.key})
		if got := m.Focused().Label; got != tt.want {
			t.Fatalf("step %d (%v): focus = %q, want %q", i, tt.key, got, tt.want)
		}
	}
}

func TestModel_SpacePressesFocusedButton(t *testing.T) {
	m := New(Options{})
	m = send(t, m,
		tea.KeyMsg{Type: tea.KeySpace}, // 7
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeySpace}, // 8
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeySpace}, // ±
	)

	if got := m.Snapshot().Display; got != "-78" {
		t.Errorf("display = %q, want %q", got, "-78")
	}
}

func TestModel_ToggleDebugPanel(t *testing.T) {
	m := New(Options{ShowDebug: true})
	m = typeKeys(t, m, "5")

	if !strings.Contains(m.View(), "First operand : 5") {
		t.Error("Expected debug panel in view")
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.ShowDebug {
		t.Fatal("tab should hide the debug panel")
	}
	if strings.Contains(m.View(), "First operand") {
		t.Error("Debug panel still rendered after toggle")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := New(Options{}).Update(msg)
		if cmd == nil {
			t.Fatalf("%q: expected quit command", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q: command did not quit", msg.String())
		}
	}
}

func TestModel_UnknownKeyIgnored(t *testing.T) {
	m := New(Options{})
	m = typeKeys(t, m, "4")
	m = typeKeys(t, m, "z%")

	if got := m.Snapshot().Display; got != "4" {
		t.Errorf("display = %q, want %q", got, "4")
	}
}

func TestModel_ViewShowsError(t *testing.T) {
	m := New(Options{})
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = typeKeys(t, m, "1/0=")

	view := m.View()
	if !strings.Contains(view, "Cannot divide by zero") {
		t.Errorf("view does not show the error message:\n%s", view)
	}
	if !strings.Contains(view, AppName) {
		t.Error("view is missing the application header")
	}
}
