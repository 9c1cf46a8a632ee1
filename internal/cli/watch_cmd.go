package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/pilotage/internal/cli/formatter"
	"github.com/alexanderramin/pilotage/internal/recalc"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *App) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run recalculation passes in a live terminal view",
		RunE: func(cmd *cobra.Command, args []string) error {
			if every <= 0 {
				return fmt.Errorf("--every must be positive, got %s", every)
			}
			m := newWatchModel(cmd.Context(), a, every)
			_, err := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout())).Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&every, "every", time.Minute, "Delay between passes")
	return cmd
}

// passDoneMsg carries the outcome of a triggered pass.
type passDoneMsg struct {
	event recalc.PassEvent
	ran   bool
}

// nextPassMsg fires when the wait between passes is over. Stale ticks,
// superseded by a manual refresh, carry an old seq and are ignored.
type nextPassMsg struct{ seq int }

var (
	watchKeyRefresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run now"))
	watchKeyQuit    = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))
)

type watchModel struct {
	ctx     context.Context
	app     *App
	every   time.Duration
	spinner spinner.Model

	running  bool
	seq      int
	passes   int
	rejected int
	last     *recalc.PassEvent
	nextAt   time.Time
}

func newWatchModel(ctx context.Context, a *App, every time.Duration) *watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = formatter.StylePurple
	return &watchModel{ctx: ctx, app: a, every: every, spinner: s}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startPass())
}

func (m *watchModel) startPass() tea.Cmd {
	m.running = true
	m.seq++
	return func() tea.Msg {
		event, ran := m.app.Scheduler.Trigger(m.ctx, recalc.TriggerManual)
		return passDoneMsg{event: event, ran: ran}
	}
}

func (m *watchModel) waitNext() tea.Cmd {
	seq := m.seq
	m.nextAt = m.app.now().Add(m.every)
	return tea.Tick(m.every, func(time.Time) tea.Msg { return nextPassMsg{seq: seq} })
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, watchKeyQuit):
			return m, tea.Quit
		case key.Matches(msg, watchKeyRefresh):
			if m.running {
				return m, nil
			}
			return m, m.startPass()
		}

	case passDoneMsg:
		m.running = false
		if msg.ran {
			m.passes++
			m.last = &msg.event
		} else {
			m.rejected++
		}
		return m, m.waitNext()

	case nextPassMsg:
		if msg.seq != m.seq || m.running {
			return m, nil
		}
		return m, m.startPass()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) View() string {
	var b strings.Builder

	b.WriteString(formatter.Header("pilotage watch") + "\n")
	switch {
	case m.running:
		b.WriteString(m.spinner.View() + " " + formatter.Dim("recalculating…") + "\n")
	case !m.nextAt.IsZero():
		fmt.Fprintf(&b, "%s %s\n", formatter.Dim("next pass at"), m.nextAt.Format("15:04:05"))
	}
	fmt.Fprintf(&b, "%s\n\n", formatter.Dim(fmt.Sprintf("%d passes, %d skipped while busy", m.passes, m.rejected)))

	if m.last != nil {
		b.WriteString(formatter.FormatPass(*m.last) + "\n")
	}

	help := []key.Binding{watchKeyRefresh, watchKeyQuit}
	parts := make([]string, 0, len(help))
	for _, k := range help {
		parts = append(parts, k.Help().Key+" "+formatter.Dim(k.Help().Desc))
	}
	b.WriteString(strings.Join(parts, "  ") + "\n")
	return b.String()
}
