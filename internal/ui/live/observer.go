package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"cfgprobe/internal/suite"
)

// Controller runs the live UI and implements suite.Observer.
type Controller struct {
	mu        sync.Mutex
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closed    bool
	closeOnce sync.Once
}

const eventBuffer = 256

func newController(events chan Event) *Controller {
	return &Controller{events: events, done: make(chan struct{})}
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, eventBuffer)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := newController(events)
	controller.program = program
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.events)
		c.mu.Unlock()
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(info suite.RunInfo) {
	c.send(Event{Kind: EventRunStart, Run: info})
}

// OnTrialStart forwards trial start events to the UI.
func (c *Controller) OnTrialStart(event suite.TrialEvent) {
	c.send(Event{Kind: EventTrialStart, Trial: event})
}

// OnTrialEnd forwards trial completion events to the UI.
func (c *Controller) OnTrialEnd(event suite.TrialEvent) {
	c.send(Event{Kind: EventTrialEnd, Trial: event})
}

// OnRunEnd forwards run completion events to the UI and closes it.
func (c *Controller) OnRunEnd(suite.Results) {
	c.send(Event{Kind: EventRunEnd})
	c.Close()
}

// send enqueues an event, waiting for buffer space while the UI is still
// running. Trial callbacks may arrive from several workers, so sends are
// serialized with Close.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	case <-c.done:
	}
}
