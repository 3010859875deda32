package xkb

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// BellNotifyEvent is delivered when any client (or the server itself) rings
// the keyboard bell. Fields follow the xkbBellNotifyEvent wire layout.
type BellNotifyEvent struct {
	Sequence  uint16
	Time      xproto.Timestamp
	DeviceID  byte
	BellClass byte
	BellID    byte
	Percent   byte
	Pitch     uint16
	Duration  uint16
	Name      xproto.Atom
	Window    xproto.Window
	EventOnly bool

	raw []byte
}

// Bytes returns the raw 32-byte event as read off the wire.
func (ev BellNotifyEvent) Bytes() []byte {
	return ev.raw
}

// String is the xgb-conventional event description.
func (ev BellNotifyEvent) String() string {
	return fmt.Sprintf("BellNotify {Sequence: %d, Time: %d, DeviceID: %d, BellClass: %d, BellID: %d, Percent: %d, Pitch: %d, Duration: %d, EventOnly: %t}",
		ev.Sequence, ev.Time, ev.DeviceID, ev.BellClass, ev.BellID,
		ev.Percent, ev.Pitch, ev.Duration, ev.EventOnly)
}

// BellNotifyEventNew decodes a BellNotify event from its wire form.
func BellNotifyEventNew(buf []byte) xgb.Event {
	raw := make([]byte, 32)
	copy(raw, buf)
	return BellNotifyEvent{
		Sequence:  xgb.Get16(buf[2:]),
		Time:      xproto.Timestamp(xgb.Get32(buf[4:])),
		DeviceID:  buf[8],
		BellClass: buf[9],
		BellID:    buf[10],
		Percent:   buf[11],
		Pitch:     xgb.Get16(buf[12:]),
		Duration:  xgb.Get16(buf[14:]),
		Name:      xproto.Atom(xgb.Get32(buf[16:])),
		Window:    xproto.Window(xgb.Get32(buf[20:])),
		EventOnly: buf[24] == 1,
		raw:       raw,
	}
}

// UnhandledEvent wraps XKB event families this package does not decode.
// The XkbType byte identifies which family arrived.
type UnhandledEvent struct {
	Sequence uint16
	XkbType  byte

	raw []byte
}

// Bytes returns the raw 32-byte event as read off the wire.
func (ev UnhandledEvent) Bytes() []byte {
	return ev.raw
}

// String is the xgb-conventional event description.
func (ev UnhandledEvent) String() string {
	return fmt.Sprintf("XkbUnhandled {Sequence: %d, XkbType: %d}", ev.Sequence, ev.XkbType)
}

// newEvent fans out the shared XKB event number on the XkbType byte.
// Only BellNotify gets a full decode.
func newEvent(buf []byte) xgb.Event {
	if buf[1] == BellNotify {
		return BellNotifyEventNew(buf)
	}
	raw := make([]byte, 32)
	copy(raw, buf)
	return UnhandledEvent{
		Sequence: xgb.Get16(buf[2:]),
		XkbType:  buf[1],
		raw:      raw,
	}
}

// KeyboardError is the extension's single protocol error.
type KeyboardError struct {
	Sequence uint16
	Value    uint32
}

// KeyboardErrorNew decodes a Keyboard error from its wire form.
func KeyboardErrorNew(buf []byte) xgb.Error {
	return KeyboardError{
		Sequence: xgb.Get16(buf[2:]),
		Value:    xgb.Get32(buf[4:]),
	}
}

// SequenceId returns the sequence number of the failed request.
func (err KeyboardError) SequenceId() uint16 {
	return err.Sequence
}

// BadId returns the value the server complained about.
func (err KeyboardError) BadId() uint32 {
	return err.Value
}

func (err KeyboardError) Error() string {
	return fmt.Sprintf("xkb: Keyboard error (sequence %d, value %d)", err.Sequence, err.Value)
}
