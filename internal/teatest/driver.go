// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and returned Cmds are drained in the calling
// goroutine. Cmds that wait on a timer (spinner frames, tea.Tick) do not
// return within the drain timeout and are dropped, so a test only sees the
// messages produced by work that completes immediately.
package teatest

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds Cmd chains so a self-rescheduling model cannot loop forever.
const MaxDrainDepth = 100

// DefaultCmdTimeout separates immediate Cmds from timer-driven ones.
const DefaultCmdTimeout = 50 * time.Millisecond

type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.Quit has been drained.
	Quitting bool
	// Seen lists the type of every message fed back into Update, in order.
	Seen []string

	timeout time.Duration
}

type Option func(*Driver)

// WithCmdTimeout overrides how long a single Cmd may run before it is dropped.
func WithCmdTimeout(d time.Duration) Option {
	return func(dr *Driver) { dr.timeout = d }
}

// WithSize sends an initial WindowSizeMsg.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		updated, _ := d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
		d.Model = updated
	}
}

func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, timeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs the model's Init Cmd and everything it leads to.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send dispatches msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drain(cmd, 0)
}

// PressKey sends a rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

func (d *Driver) View() string {
	return d.Model.View()
}

// Count returns how many drained messages had the given type name, as
// printed by %T (e.g. "cli.passDoneMsg").
func (d *Driver) Count(typeName string) int {
	n := 0
	for _, s := range d.Seen {
		if s == typeName {
			n++
		}
	}
	return n
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := d.exec(cmd)
	if msg == nil {
		return
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			d.drain(sub, depth+1)
		}
		return
	}

	if _, ok := msg.(tea.QuitMsg); ok {
		d.Quitting = true
		return
	}

	d.Seen = append(d.Seen, fmt.Sprintf("%T", msg))
	updated, next := d.Model.Update(msg)
	d.Model = updated
	d.drain(next, depth+1)
}

// exec runs cmd with the driver timeout and returns nil when it does not
// finish in time.
func (d *Driver) exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.timeout):
		return nil
	}
}
