package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/looperdev/looper/internal/history"
	"github.com/looperdev/looper/internal/state"
)

// pollInterval is how often the watch screen re-reads the state file.
const pollInterval = time.Second

// historyShown caps the number of recent history lines on screen.
const historyShown = 8

// tickMsg triggers a state reload.
type tickMsg time.Time

// Model is the bubbletea model for `looper watch`. It is strictly
// read-only: it polls the state store and history log and never mutates
// either.
type Model struct {
	store state.Store
	hist  *history.Log

	spinner spinner.Model
	styles  Styles

	st      state.State
	active  bool
	records []history.Record
	err     error

	width int
	quit  bool
}

// New creates the watch model. hist may be nil when no history log is
// configured.
func New(store state.Store, hist *history.Log, accent string) Model {
	styles := NewStyles(accent)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Counter
	return Model{
		store:   store,
		hist:    hist,
		spinner: sp,
		styles:  styles,
		width:   80,
	}
}

// Init starts the spinner and the poll timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reload, tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// reloadedMsg carries the freshly read state and history.
type reloadedMsg struct {
	st      state.State
	active  bool
	records []history.Record
	err     error
}

// reload reads the state file and history log.
func (m Model) reload() tea.Msg {
	var msg reloadedMsg
	msg.st, msg.active, msg.err = m.store.Load()
	if msg.err == nil && m.hist != nil {
		msg.records, msg.err = m.hist.Records()
	}
	return msg
}

// Update handles key, tick, and reload messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, tea.Batch(m.reload, tick())

	case reloadedMsg:
		m.st = msg.st
		m.active = msg.active
		m.records = msg.records
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the watch screen.
func (m Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("looper watch"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	if !m.active {
		b.WriteString(m.styles.Dim.Render("No active loop."))
		b.WriteString("\n")
	} else if m.st.IsPlaceholder() {
		b.WriteString(m.spinner.View())
		b.WriteString(" waiting for loop arguments (first turn in flight)")
		b.WriteString("\n")
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Counter.Render(fmt.Sprintf("iteration %d/%d", m.st.Iteration, m.st.Total)))
		b.WriteString("\n\n")
		b.WriteString(m.styles.TaskWrap.Width(m.width - 4).Render(taskExcerpt(m.st.Task())))
		b.WriteString("\n")
	}

	if lines := m.historyLines(); len(lines) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Dim.Render("Recent"))
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

// historyLines renders the newest records, newest last.
func (m Model) historyLines() []string {
	recs := m.records
	if len(recs) > historyShown {
		recs = recs[len(recs)-historyShown:]
	}
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		ts := m.styles.Dim.Render(r.Time.Format("15:04:05"))
		label := string(r.Kind)
		if r.Total > 0 {
			label = fmt.Sprintf("%s %d/%d", r.Kind, r.Iteration, r.Total)
		}
		style := m.styles.Task
		switch r.Kind {
		case history.KindVerified:
			style = m.styles.Done
		case history.KindExhausted, history.KindCancelled:
			style = m.styles.Dim
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", ts, style.Render(label)))
	}
	return lines
}

// taskExcerpt keeps the first line of the task, truncated for display.
func taskExcerpt(task string) string {
	line := task
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i] + " …"
	}
	const max = 120
	if len(line) > max {
		line = line[:max] + "…"
	}
	return line
}

// Run starts the watch program on the alternate screen and blocks until
// the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

var _ tea.Model = Model{}
