package repl

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tup/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	s := mustSession(t, source, "c")

	return newModel(t.Context(), s, NewHistory(""), log.Make(io.Discard), nil)
}

// press sends key to m and returns the updated model.
func press(t *testing.T, m model, key tea.KeyType) (model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(tea.KeyMsg{Type: key})

	return next.(model), cmd
}

// submit enters line at the prompt.
func submit(t *testing.T, m model, line string) (model, tea.Cmd) {
	t.Helper()

	m.setValue(line, len(line))

	return press(t, m, tea.KeyEnter)
}

func TestModel_SnapshotNavigation(t *testing.T) {
	m := testModel(t)

	if view := m.View(); !strings.Contains(view, "c 1/4") {
		t.Fatalf("initial status missing from view:\n%s", view)
	}

	m, _ = press(t, m, tea.KeyCtrlN)
	m, _ = press(t, m, tea.KeyCtrlN)

	if view := m.View(); !strings.Contains(view, "c 3/4") ||
		!strings.Contains(view, "{'g': '2', 'x': 'a'}") {
		t.Errorf("status after Ctrl+N:\n%s", view)
	}

	m, _ = press(t, m, tea.KeyCtrlP)

	if view := m.View(); !strings.Contains(view, "c 2/4") {
		t.Errorf("status after Ctrl+P:\n%s", view)
	}
}

func TestModel_LiveExpansion(t *testing.T) {
	m := testModel(t)
	m.setValue("v=${g}${x}", len("v=${g}${x}"))

	if view := m.View(); !strings.Contains(view, "v=1a") {
		t.Errorf("expansion missing from view:\n%s", view)
	}

	m.setValue("v=${nope}", len("v=${nope}"))

	if view := m.View(); !strings.Contains(view, "unknown variable") {
		t.Errorf("error missing from view:\n%s", view)
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := testModel(t)
	m.setValue("v=${mun", len("v=${mun"))

	m, _ = press(t, m, tea.KeyTab)

	if got := m.input.Value(); got != "v=${mung" {
		t.Errorf("value after Tab = %q, want %q", got, "v=${mung")
	}

	if !m.tabActive {
		t.Error("Tab did not start cycling")
	}

	m, _ = press(t, m, tea.KeyEsc)

	if got := m.input.Value(); got != "v=${mun" {
		t.Errorf("value after Esc = %q, want %q", got, "v=${mun")
	}

	if m.tabActive || m.matches != nil {
		t.Error("Esc did not reset completion")
	}
}

func TestModel_CtrlC(t *testing.T) {
	m := testModel(t)
	m.setValue("text", 4)

	m, cmd := press(t, m, tea.KeyCtrlC)
	if m.quitting || cmd != nil {
		t.Fatal("Ctrl+C with input quit the REPL")
	}

	if m.input.Value() != "" {
		t.Errorf("Ctrl+C left %q in the input", m.input.Value())
	}

	m, cmd = press(t, m, tea.KeyCtrlC)
	if !m.quitting || cmd == nil {
		t.Error("Ctrl+C on an empty line did not quit")
	}

	if m.View() != "" {
		t.Error("view not cleared after quit")
	}
}

func TestModel_Commands(t *testing.T) {
	m := testModel(t)

	m, cmd := submit(t, m, ":next")
	if cmd == nil {
		t.Error(":next produced no output")
	}

	if pos, _ := m.session.Position(); pos != 2 {
		t.Errorf("position after :next = %d, want 2", pos)
	}

	m, _ = submit(t, m, ":use d")
	if m.session.ContextName() != "d" {
		t.Errorf("context after :use = %q, want d", m.session.ContextName())
	}

	m, _ = submit(t, m, ":use nope")
	if m.session.ContextName() != "d" {
		t.Errorf(":use of an unknown context changed the context to %q",
			m.session.ContextName())
	}

	m, cmd = submit(t, m, ":bogus")
	if cmd == nil || m.quitting {
		t.Error("unknown command not reported")
	}

	m, _ = submit(t, m, ":quit")
	if !m.quitting {
		t.Error(":quit did not quit")
	}
}

func TestModel_History(t *testing.T) {
	m := testModel(t)

	m, _ = submit(t, m, "a=${x}")
	m, _ = submit(t, m, "b=${g}")

	if entries := m.history.Entries(); len(entries) != 2 {
		t.Fatalf("history = %v", entries)
	}

	m.setValue("draft", len("draft"))

	m, _ = press(t, m, tea.KeyUp)
	if got := m.input.Value(); got != "b=${g}" {
		t.Errorf("Up = %q", got)
	}

	m, _ = press(t, m, tea.KeyUp)
	m, _ = press(t, m, tea.KeyUp)

	if got := m.input.Value(); got != "a=${x}" {
		t.Errorf("Up past the oldest entry = %q", got)
	}

	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyDown)

	if got := m.input.Value(); got != "draft" {
		t.Errorf("Down to the end = %q, want draft", got)
	}
}

func TestModel_Reload(t *testing.T) {
	m := testModel(t)
	old := m.session

	next, cmd := m.Update(editSourceMsg{source: "#CONTEXT c\n#VAR x q\n${x}\n#ENDCONTEXT\n"})
	m = next.(model)

	t.Cleanup(m.session.close)

	if cmd == nil || m.session == old {
		t.Fatal("session not replaced")
	}

	if m.session.ContextName() != "c" {
		t.Errorf("context after reload = %q, want c", m.session.ContextName())
	}

	if lines, err := m.session.Block(); err != nil || len(lines) != 1 || lines[0] != "q" {
		t.Errorf("Block() after reload = %v, %v", lines, err)
	}

	next, _ = m.Update(editSourceMsg{source: "#CONTEXT c\n"})
	if next.(model).session != m.session {
		t.Error("broken source replaced the session")
	}
}
