package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/jmylchreest/visbell/internal/config"
)

// Geometry is the resolved on-screen placement of the flash window.
type Geometry struct {
	X, Y          int16
	Width, Height uint16
}

// ResolveGeometry converts the configured position and sizes to wire
// coordinates, substituting the display extent for match-display
// dimensions. Config.Validate has already bounded the inputs.
func ResolveGeometry(cfg *config.Config, displayWidth, displayHeight uint16) Geometry {
	return Geometry{
		X:      int16(cfg.X),
		Y:      int16(cfg.Y),
		Width:  cfg.Width.Resolve(displayWidth),
		Height: cfg.Height.Resolve(displayHeight),
	}
}

// Window is the single flash surface. It is created once, never resized or
// recreated, and toggled between mapped and unmapped for its whole life.
type Window struct {
	conn *xgb.Conn
	id   xproto.Window
}

// CreateWindow allocates the flash color and creates the override-redirect
// window, initially unmapped. Override-redirect keeps window managers from
// decorating or focusing it; save-under spares the windows underneath a
// redraw when the flash disappears.
func (s *Session) CreateWindow(cfg *config.Config) (*Window, error) {
	pixel, err := s.NamedColorPixel(cfg.Color)
	if err != nil {
		return nil, err
	}

	geom := ResolveGeometry(cfg, s.screen.WidthInPixels, s.screen.HeightInPixels)

	id, err := xproto.NewWindowId(s.conn)
	if err != nil {
		return nil, fmt.Errorf("allocate window id: %w", err)
	}

	// Value list order follows ascending mask bits: back pixel,
	// override-redirect, save-under.
	err = xproto.CreateWindowChecked(s.conn, s.screen.RootDepth, id, s.screen.Root,
		geom.X, geom.Y, geom.Width, geom.Height, 0,
		xproto.WindowClassInputOutput, s.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwSaveUnder,
		[]uint32{pixel, 1, 1}).Check()
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	s.logger.Debug("created flash window",
		"x", geom.X, "y", geom.Y,
		"width", geom.Width, "height", geom.Height,
		"color", cfg.Color,
	)

	return &Window{conn: s.conn, id: id}, nil
}

// Show maps the window raised to the top of the stacking order.
func (w *Window) Show() error {
	if err := xproto.ConfigureWindowChecked(w.conn, w.id,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check(); err != nil {
		return fmt.Errorf("raise window: %w", err)
	}
	if err := xproto.MapWindowChecked(w.conn, w.id).Check(); err != nil {
		return fmt.Errorf("map window: %w", err)
	}
	return nil
}

// Hide unmaps the window.
func (w *Window) Hide() error {
	if err := xproto.UnmapWindowChecked(w.conn, w.id).Check(); err != nil {
		return fmt.Errorf("unmap window: %w", err)
	}
	return nil
}
