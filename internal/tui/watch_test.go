package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/looperdev/looper/internal/config"
	"github.com/looperdev/looper/internal/history"
	"github.com/looperdev/looper/internal/state"
)

func newModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	return New(state.Store{Dir: dir}, &history.Log{Dir: dir}, config.DefaultAccentColor)
}

func applyReload(m Model, msg reloadedMsg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestView_NoActiveLoop(t *testing.T) {
	m := applyReload(newModel(t), reloadedMsg{active: false})

	view := m.View()
	if !strings.Contains(view, "No active loop.") {
		t.Errorf("view missing inactive message:\n%s", view)
	}
	if !strings.Contains(view, "q: quit") {
		t.Error("view missing footer")
	}
}

func TestView_ActiveLoop(t *testing.T) {
	m := applyReload(newModel(t), reloadedMsg{
		st:     state.New(5, "refactor the parser\nthen run the checks"),
		active: true,
	})

	view := m.View()
	if !strings.Contains(view, "iteration 1/5") {
		t.Errorf("view missing counter:\n%s", view)
	}
	if !strings.Contains(view, "refactor the parser") {
		t.Error("view missing task excerpt")
	}
	if strings.Contains(view, "then run the checks") {
		t.Error("task excerpt should keep only the first line")
	}
}

func TestView_Placeholder(t *testing.T) {
	m := applyReload(newModel(t), reloadedMsg{st: state.Placeholder(), active: true})

	if !strings.Contains(m.View(), "waiting for loop arguments") {
		t.Error("placeholder state not surfaced")
	}
}

func TestView_Error(t *testing.T) {
	m := applyReload(newModel(t), reloadedMsg{err: errors.New("state file unreadable")})

	if !strings.Contains(m.View(), "state file unreadable") {
		t.Error("load error not surfaced")
	}
}

func TestView_History(t *testing.T) {
	m := applyReload(newModel(t), reloadedMsg{
		active: false,
		records: []history.Record{
			{Time: time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC), Kind: history.KindStarted, Iteration: 1, Total: 3},
			{Time: time.Date(2026, 8, 28, 9, 45, 0, 0, time.UTC), Kind: history.KindVerified, Iteration: 3, Total: 3},
		},
	})

	view := m.View()
	if !strings.Contains(view, "started 1/3") {
		t.Errorf("view missing history line:\n%s", view)
	}
	if !strings.Contains(view, "verified 3/3") {
		t.Error("view missing verified line")
	}
	if !strings.Contains(view, "09:45:00") {
		t.Error("view missing timestamps")
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := newModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
	if updated.(Model).View() != "" {
		t.Error("view after quit should be empty")
	}
}

func TestUpdate_TickSchedulesReload(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick must schedule a reload and the next tick")
	}
}

func TestTaskExcerpt(t *testing.T) {
	tests := []struct {
		name string
		task string
		want string
	}{
		{"short", "fix the bug", "fix the bug"},
		{"multiline", "first\nsecond", "first …"},
		{"long", strings.Repeat("a", 150), strings.Repeat("a", 120) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := taskExcerpt(tt.task); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
