package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/unklstewy/cyberairpatrol/pkg/alerts"
	"github.com/unklstewy/cyberairpatrol/pkg/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// tickMsg carries the generation of the cycle that scheduled it. Ticks from
// an older generation are dropped so a manual refresh never starts a second
// polling chain.
type tickMsg struct {
	gen int
}

type snapshotMsg struct {
	snap *Snapshot
}

type errMsg struct {
	err error
}

// Model is the bubbletea model for the live watch display.
type Model struct {
	ctx      context.Context
	runner   *Runner
	renderer *render.Renderer

	snap     *Snapshot
	err      error
	scanning bool
	cycles   int
	gen      int
	now      func() time.Time
}

// NewModel creates a TUI model driving runner.
func NewModel(ctx context.Context, runner *Runner) Model {
	return Model{
		ctx:      ctx,
		runner:   runner,
		renderer: render.New(runner.Classifier(), render.WithClock(runner.now)),
		now:      runner.now,
	}
}

func tick(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) scan() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.runner.Scan(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return snapshotMsg{snap: snap}
	}
}

// Init starts the first cycle.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg{gen: m.gen} }
}

// Update handles keys, ticks and cycle results. A new cycle is only
// scheduled after the previous one has finished, and only the tick armed by
// the latest cycle may start the next one.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if !m.scanning {
				m.scanning = true
				return m, m.scan()
			}
		}
	case tickMsg:
		if m.scanning || msg.gen != m.gen {
			return m, nil
		}
		m.scanning = true
		return m, m.scan()
	case snapshotMsg:
		m.scanning = false
		m.snap = msg.snap
		m.err = nil
		m.cycles++
		m.gen++
		return m, tick(m.runner.Interval(), m.gen)
	case errMsg:
		m.scanning = false
		m.err = msg.err
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		m.gen++
		return m, tick(m.runner.Interval(), m.gen)
	}
	return m, nil
}

// View renders the latest snapshot.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CYBER AIR PATROL - LIVE"))
	s.WriteString("\n")

	if m.snap == nil {
		if m.err != nil {
			s.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
		} else {
			s.WriteString("\nScanning...\n")
		}
		s.WriteString(statusStyle.Render("\nq: quit") + "\n")
		return s.String()
	}

	obs := m.snap.Observer
	s.WriteString(m.renderer.Render(m.snap.Aircraft, render.Text, obs.Lat, obs.Lon))
	s.WriteString("\n")

	sum := m.snap.Summary
	s.WriteString(fmt.Sprintf("\nLow altitude (<5,000ft): %d | Military: %d | Special: %d | Emergencies: %d\n",
		sum.LowAltitude, sum.Military, sum.Special, sum.Emergencies))

	for _, a := range m.snap.Alerts {
		s.WriteString(alertLine(a) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render("Last cycle failed: "+m.err.Error()) + "\n")
	}

	status := fmt.Sprintf("Updated %s | cycle %d | every %s | r: refresh  q: quit",
		humanize.RelTime(m.snap.Time, m.now(), "ago", "from now"), m.cycles, m.runner.Interval())
	if m.scanning {
		status = "Scanning... | " + status
	}
	s.WriteString("\n" + statusStyle.Render(status) + "\n")

	return s.String()
}

func alertLine(a alerts.Alert) string {
	line := fmt.Sprintf("[%s] %s", strings.ToUpper(string(a.Level)), a.Message)
	switch a.Level {
	case alerts.Critical:
		return criticalStyle.Render(line)
	case alerts.Warning:
		return warningStyle.Render(line)
	default:
		return infoStyle.Render(line)
	}
}

// RunTUI runs the interactive display until the user quits or ctx ends.
func RunTUI(ctx context.Context, runner *Runner) error {
	p := tea.NewProgram(NewModel(ctx, runner), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}
