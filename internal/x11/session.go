package x11

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/jmylchreest/visbell/internal/x11/xkb"
)

// Event is a single event drained from the server connection. The flash
// controller only cares whether it was a bell notification; everything else
// it ignores.
type Event struct {
	Bell bool
}

// Session is an open connection to the X server with XKB negotiated.
// It is created once at startup and lives for the whole process.
type Session struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	logger *slog.Logger

	pumpOnce sync.Once
	events   chan Event
}

// Open connects to the X server named by display (the DISPLAY environment
// variable when empty) and negotiates the XKEYBOARD extension. The
// extension being absent or too old is fatal: without it there is no bell
// event to listen for.
func Open(display string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	if err := xkb.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("negotiate XKEYBOARD extension: %w", err)
	}

	use, err := xkb.UseExtension(conn, xkb.MajorVersion, xkb.MinorVersion).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable XKEYBOARD extension: %w", err)
	}
	if !use.Supported {
		conn.Close()
		return nil, fmt.Errorf("server supports XKB %d.%d, need %d.%d",
			use.ServerMajor, use.ServerMinor, xkb.MajorVersion, xkb.MinorVersion)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	logger.Debug("connected to X server",
		"display_width", screen.WidthInPixels,
		"display_height", screen.HeightInPixels,
		"xkb_version", fmt.Sprintf("%d.%d", use.ServerMajor, use.ServerMinor),
	)

	return &Session{
		conn:   conn,
		screen: screen,
		logger: logger,
		events: make(chan Event, 16),
	}, nil
}

// SubscribeBell selects BellNotify events on the core keyboard and silences
// the server's audible bell while this client is connected: the flash
// replaces the beep rather than accompanying it. An auto-reset flag makes
// the server re-enable the audible bell when the client disconnects,
// however it dies.
func (s *Session) SubscribeBell() error {
	if err := xkb.SelectEventsChecked(s.conn, xkb.UseCoreKeyboard, 0, xkb.EventMaskBellNotify).Check(); err != nil {
		return fmt.Errorf("select bell events: %w", err)
	}

	if _, err := xkb.PerClientFlags(s.conn, xkb.UseCoreKeyboard,
		xkb.PCFAutoResetControls, xkb.PCFAutoResetControls,
		xkb.ControlAudibleBell, xkb.ControlAudibleBell, xkb.ControlAudibleBell).Reply(); err != nil {
		return fmt.Errorf("arm audible bell auto-reset: %w", err)
	}

	if err := xkb.ChangeEnabledControlsChecked(s.conn, xkb.UseCoreKeyboard, xkb.ControlAudibleBell, 0).Check(); err != nil {
		return fmt.Errorf("disable audible bell: %w", err)
	}

	s.logger.Debug("subscribed to bell notifications")
	return nil
}

// NamedColorPixel resolves an X11 color name to a pixel value on the
// default colormap. The empty string and "white" short-circuit to the
// screen's white pixel; an unknown name is a configuration error.
func (s *Session) NamedColorPixel(name string) (uint32, error) {
	switch {
	case name == "" || strings.EqualFold(name, "white"):
		return s.screen.WhitePixel, nil
	case strings.EqualFold(name, "black"):
		return s.screen.BlackPixel, nil
	}

	reply, err := xproto.AllocNamedColor(s.conn, s.screen.DefaultColormap, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("color %q is not known to the X server: %w", name, err)
	}
	return reply.Pixel, nil
}

// Events returns the channel of events read from the server. The pump
// goroutine starts on first call; the channel closes when the connection
// dies, which the controller treats as fatal.
func (s *Session) Events() <-chan Event {
	s.pumpOnce.Do(func() {
		go s.pump()
	})
	return s.events
}

func (s *Session) pump() {
	defer close(s.events)
	for {
		ev, xerr := s.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			s.logger.Debug("X connection closed")
			return
		}
		if xerr != nil {
			// Asynchronous protocol errors from unchecked requests end up
			// here; they are not fatal to the event stream.
			s.logger.Warn("X protocol error", "error", xerr.Error())
			continue
		}

		_, bell := ev.(xkb.BellNotifyEvent)
		if bell {
			s.logger.Debug("bell notification", "event", ev.String())
		}
		s.events <- Event{Bell: bell}
	}
}

// Close tears down the connection. The pump goroutine and any created
// windows die with it.
func (s *Session) Close() {
	s.conn.Close()
}
