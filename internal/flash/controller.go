package flash

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jmylchreest/visbell/internal/x11"
)

// ErrConnectionLost is returned by Run when the display-server event stream
// closes underneath the controller.
var ErrConnectionLost = errors.New("display server connection lost")

// Window is the one surface the controller toggles. x11.Window satisfies
// it; tests substitute a recorder.
type Window interface {
	// Show maps the window raised above everything else.
	Show() error
	// Hide unmaps the window.
	Hide() error
}

// Options configures a Controller.
type Options struct {
	// Window is the flash surface. Required.
	Window Window
	// Events is the drained display-server event stream. The channel
	// closing means the connection died. Required unless OneShot is set.
	Events <-chan x11.Event
	// Duration is how long the window stays visible after the last bell.
	Duration time.Duration
	// OneShot flashes once at startup and returns, ignoring Events.
	OneShot bool
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Controller owns the visibility state machine. Its fields are touched only
// from the goroutine running Run; there is nothing to lock.
type Controller struct {
	win      Window
	events   <-chan x11.Event
	duration time.Duration
	oneShot  bool
	logger   *slog.Logger

	visible  bool
	deadline time.Time
}

// New creates a controller in the hidden state.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		win:      opts.Window,
		events:   opts.Events,
		duration: opts.Duration,
		oneShot:  opts.OneShot,
		logger:   logger,
	}
}

// Run drives the flash window until ctx is cancelled, the connection is
// lost, or a window operation fails. In one-shot mode it returns nil after
// a single flash. Each iteration blocks on the event stream, additionally
// arming a timer for the hide deadline while the window is visible; after
// every wake-up the deadline is re-checked before any newly arrived events
// are considered, and then all currently pending events are drained without
// blocking.
func (c *Controller) Run(ctx context.Context) error {
	if c.oneShot {
		return c.flashOnce(ctx)
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		var wake <-chan time.Time
		if c.visible {
			timer.Reset(time.Until(c.deadline))
			wake = timer.C
		}

		var got *x11.Event
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		case ev, ok := <-c.events:
			if !ok {
				return ErrConnectionLost
			}
			timer.Stop()
			got = &ev
		}

		// An expired deadline takes effect before newly arrived events: a
		// bell observed after the deadline starts a fresh flash rather
		// than stretching the old one.
		if c.visible && !time.Now().Before(c.deadline) {
			if err := c.win.Hide(); err != nil {
				return err
			}
			c.visible = false
			c.logger.Debug("flash hidden")
		}

		if got != nil {
			if err := c.handle(*got); err != nil {
				return err
			}
		}
		if err := c.drain(); err != nil {
			return err
		}
	}
}

// handle applies one event to the state machine. A bell restarts the
// countdown from the moment it is observed; if the window is already
// visible no redundant show is issued. Non-bell events are ignored.
func (c *Controller) handle(ev x11.Event) error {
	if !ev.Bell {
		return nil
	}

	if !c.visible {
		if err := c.win.Show(); err != nil {
			return err
		}
		c.visible = true
		c.logger.Debug("flash shown", "duration", c.duration)
	}
	c.deadline = time.Now().Add(c.duration)
	return nil
}

// drain consumes every event already queued without blocking.
func (c *Controller) drain() error {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return ErrConnectionLost
			}
			if err := c.handle(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// flashOnce shows the window immediately, waits out the duration and hides
// it again. The event stream is never read.
func (c *Controller) flashOnce(ctx context.Context) error {
	if err := c.win.Show(); err != nil {
		return err
	}
	c.logger.Debug("flash shown", "duration", c.duration)

	timer := time.NewTimer(c.duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if err := c.win.Hide(); err != nil {
		return err
	}
	c.logger.Debug("flash hidden")
	return nil
}
