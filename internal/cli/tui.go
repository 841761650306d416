package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/optima/pkg/poller"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// watchRegistry is the part of [poller.Registry] the watch view drives.
type watchRegistry interface {
	StartPoll(id, url string, cb poller.Callback, opts ...poller.PollOption) error
	StopPoll(id string)
	KillJob(resourceID, jobType string)
	Snapshot() []poller.EntryInfo
}

// =============================================================================
// WatchModel - Live table of polled jobs
// =============================================================================

type (
	updateMsg pollEvent
	tickMsg   time.Time
)

type watchRow struct {
	ref       jobRef
	target    string
	status    string
	detail    string
	running   bool
	checks    int
	lastCheck time.Time
}

// WatchModel is the bubbletea model behind "optima watch".
type WatchModel struct {
	reg      watchRegistry
	rows     []*watchRow
	cursor   int
	message  string
	interval time.Duration

	// callback builds the poll callback for a job.
	callback func(id string) poller.Callback
	// delay is the per-job check delay; nil uses the registry default.
	delay func(jobRef) time.Duration
	// onTerminal is told about every terminal update.
	onTerminal func(ev pollEvent, checks int)
}

// NewWatchModel creates a model for refs. Polls are started by Init.
func newWatchModel(reg watchRegistry, refs []jobRef, targets map[string]string, interval time.Duration) *WatchModel {
	m := &WatchModel{reg: reg, interval: interval}
	for _, r := range refs {
		target := targets[r.ID()]
		if target == "" {
			target = r.Path()
		}
		m.rows = append(m.rows, &watchRow{ref: r, target: target, status: "pending"})
	}
	return m
}

func (m *WatchModel) Init() tea.Cmd {
	for _, row := range m.rows {
		m.start(row)
	}
	return m.tick()
}

func (m *WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *WatchModel) start(row *watchRow) {
	cb := func(poller.Update) {}
	if m.callback != nil {
		cb = m.callback(row.ref.ID())
	}
	var opts []poller.PollOption
	if m.delay != nil {
		opts = append(opts, poller.Every(m.delay(row.ref)))
	}
	if err := m.reg.StartPoll(row.ref.ID(), row.target, cb, opts...); err != nil {
		m.message = err.Error()
		return
	}
	row.running = true
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case updateMsg:
		row := m.row(msg.id)
		if row == nil {
			return m, nil
		}
		row.status = msg.update.Status()
		row.lastCheck = msg.at
		row.detail = ""
		switch u := msg.update.(type) {
		case poller.Completed:
			row.detail = u.Payload.String("result_id")
		case poller.Failed:
			row.detail = u.Reason()
		}
		if msg.update.Terminal() {
			row.running = false
			m.refresh()
			if m.onTerminal != nil {
				m.onTerminal(pollEvent(msg), row.checks)
			}
		}

	case tickMsg:
		m.refresh()
		return m, m.tick()
	}
	return m, nil
}

func (m *WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "x":
		row := m.rows[m.cursor]
		m.reg.KillJob(row.ref.ResourceID, row.ref.JobType)
		m.message = "kill requested for " + row.ref.ID()
	case "s":
		row := m.rows[m.cursor]
		m.reg.StopPoll(row.ref.ID())
		row.running = false
		m.message = "stopped polling " + row.ref.ID()
	case "r":
		row := m.rows[m.cursor]
		m.start(row)
		m.message = "polling " + row.ref.ID()
	}
	return m, nil
}

// refresh copies check counts and running flags from the registry.
func (m *WatchModel) refresh() {
	for _, e := range m.reg.Snapshot() {
		if row := m.row(e.ID); row != nil {
			row.checks = e.Checks
			row.running = e.Running
			if !e.LastCheck.IsZero() {
				row.lastCheck = e.LastCheck
			}
		}
	}
}

func (m *WatchModel) row(id string) *watchRow {
	for _, r := range m.rows {
		if r.ref.ID() == id {
			return r
		}
	}
	return nil
}

// Done reports whether no job is being polled.
func (m *WatchModel) Done() bool {
	for _, r := range m.rows {
		if r.running {
			return false
		}
	}
	return true
}

func (m *WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Jobs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  x kill  s stop  r restart  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.rows))
	for i, r := range m.rows {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		last := "—"
		if !r.lastCheck.IsZero() {
			last = formatAge(time.Since(r.lastCheck))
		}
		poll := ""
		if r.running {
			poll = "●"
		}
		rows[i] = []string{cursor, r.ref.ID(), r.status, poll, fmt.Sprint(r.checks), last, r.detail}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Job", "Status", "Polling", "Checks", "Last check", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			r := m.rows[row]
			base := lipgloss.NewStyle()
			if col == 2 {
				base = statusStyle(r.status)
			} else if col > 2 {
				base = base.Foreground(colorGray)
			}
			if row == m.cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if m.message != "" {
		b.WriteString("\n" + StyleDim.Render(m.message))
	}
	if m.Done() {
		b.WriteString("\n" + StyleSuccess.Render("All jobs finished. Press q to exit."))
	}
	b.WriteString("\n")
	return b.String()
}

// formatAge renders a short duration such as "3s" or "2m".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}
