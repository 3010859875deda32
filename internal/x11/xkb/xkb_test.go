package xkb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wire-layout tests: the request builders must produce exactly the byte
// layouts the XKB protocol specification defines, since there is no server
// round trip in unit tests to catch an encoding slip. Masks and device
// specs are asserted as literal values from the specification, not via the
// package's own constants, so a drifted constant shows up as a failure
// here rather than re-validating the bytes built from it.

func TestProtocolConstantValues(t *testing.T) {
	// XkbUseCoreKbd, XkbBellNotifyMask, XkbAudibleBellMask, XkbPCF_AutoResetControlsMask
	assert.Equal(t, 0x0100, UseCoreKeyboard)
	assert.Equal(t, 0x0100, EventMaskBellNotify)
	assert.Equal(t, 0x00000200, ControlAudibleBell)
	assert.Equal(t, 0x4, PCFAutoResetControls)
	assert.Equal(t, 8, BellNotify)
}

func TestUseExtensionRequestLayout(t *testing.T) {
	buf := useExtensionRequest(0x88, MajorVersion, MinorVersion)

	require.Len(t, buf, 8)
	assert.Equal(t, byte(0x88), buf[0])
	assert.Equal(t, byte(opUseExtension), buf[1])
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(buf[2:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[4:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[6:]))
}

func TestSelectEventsRequestLayout(t *testing.T) {
	buf := selectEventsRequest(0x88, UseCoreKeyboard, 0, EventMaskBellNotify)

	require.Len(t, buf, 16)
	assert.Equal(t, byte(opSelectEvents), buf[1])
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(buf[2:]))
	assert.Equal(t, uint16(0x0100), binary.LittleEndian.Uint16(buf[4:]))
	// affectWhich covers both clear and selectAll
	assert.Equal(t, uint16(0x0100), binary.LittleEndian.Uint16(buf[6:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[8:]))
	assert.Equal(t, uint16(0x0100), binary.LittleEndian.Uint16(buf[10:]))
	// no map selection
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[12:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[14:]))
}

func TestPerClientFlagsRequestLayout(t *testing.T) {
	buf := perClientFlagsRequest(0x88, UseCoreKeyboard,
		PCFAutoResetControls, PCFAutoResetControls,
		ControlAudibleBell, ControlAudibleBell, ControlAudibleBell)

	require.Len(t, buf, 28)
	assert.Equal(t, byte(opPerClientFlags), buf[1])
	assert.Equal(t, uint16(7), binary.LittleEndian.Uint16(buf[2:]))
	assert.Equal(t, uint16(0x0100), binary.LittleEndian.Uint16(buf[4:]))
	assert.Equal(t, uint32(0x4), binary.LittleEndian.Uint32(buf[8:]))
	assert.Equal(t, uint32(0x4), binary.LittleEndian.Uint32(buf[12:]))
	assert.Equal(t, uint32(0x200), binary.LittleEndian.Uint32(buf[16:]))
	assert.Equal(t, uint32(0x200), binary.LittleEndian.Uint32(buf[20:]))
	assert.Equal(t, uint32(0x200), binary.LittleEndian.Uint32(buf[24:]))
}

func TestChangeEnabledControlsRequestLayout(t *testing.T) {
	buf := changeEnabledControlsRequest(0x88, UseCoreKeyboard, ControlAudibleBell, 0)

	require.Len(t, buf, 100)
	assert.Equal(t, byte(opSetControls), buf[1])
	assert.Equal(t, uint16(25), binary.LittleEndian.Uint16(buf[2:]))
	assert.Equal(t, uint16(0x0100), binary.LittleEndian.Uint16(buf[4:]))
	assert.Equal(t, uint32(0x200), binary.LittleEndian.Uint32(buf[24:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[28:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[32:]))

	// Everything outside the populated fields must be zero: the server
	// honors only fields named by an affect mask, but garbage would still
	// be a malformed request.
	for i, b := range buf[36:] {
		assert.Zero(t, b, "unexpected non-zero byte at offset %d", 36+i)
	}
}

func TestChangeEnabledControlsMasksValues(t *testing.T) {
	// values outside the affect mask must not leak onto the wire
	buf := changeEnabledControlsRequest(0x88, UseCoreKeyboard, ControlAudibleBell, 0xffffffff)
	assert.Equal(t, uint32(0x200), binary.LittleEndian.Uint32(buf[28:]))
}

func TestBellNotifyEventDecode(t *testing.T) {
	buf := make([]byte, 32)
	buf[0] = 0x55 // response type: extension base event number
	buf[1] = BellNotify
	binary.LittleEndian.PutUint16(buf[2:], 1234)       // sequence
	binary.LittleEndian.PutUint32(buf[4:], 0xcafe1234) // time
	buf[8] = 3                                         // deviceID
	buf[9] = 0                                         // bellClass: KbdFeedbackClass
	buf[10] = 0                                        // bellID
	buf[11] = 50                                       // percent
	binary.LittleEndian.PutUint16(buf[12:], 400)       // pitch
	binary.LittleEndian.PutUint16(buf[14:], 100)       // duration
	binary.LittleEndian.PutUint32(buf[16:], 0)         // name
	binary.LittleEndian.PutUint32(buf[20:], 0x2a)      // window
	buf[24] = 0                                        // eventOnly

	ev := newEvent(buf)
	bell, ok := ev.(BellNotifyEvent)
	require.True(t, ok, "expected BellNotifyEvent, got %T", ev)

	assert.Equal(t, uint16(1234), bell.Sequence)
	assert.Equal(t, uint32(0xcafe1234), uint32(bell.Time))
	assert.Equal(t, byte(3), bell.DeviceID)
	assert.Equal(t, byte(50), bell.Percent)
	assert.Equal(t, uint16(400), bell.Pitch)
	assert.Equal(t, uint16(100), bell.Duration)
	assert.Equal(t, uint32(0x2a), uint32(bell.Window))
	assert.False(t, bell.EventOnly)
	assert.Equal(t, buf, bell.Bytes())
	assert.Contains(t, bell.String(), "BellNotify")
}

func TestNewEventOtherXkbTypes(t *testing.T) {
	buf := make([]byte, 32)
	buf[0] = 0x55
	buf[1] = 2 // StateNotify
	binary.LittleEndian.PutUint16(buf[2:], 7)

	ev := newEvent(buf)
	other, ok := ev.(UnhandledEvent)
	require.True(t, ok, "expected UnhandledEvent, got %T", ev)
	assert.Equal(t, byte(2), other.XkbType)
	assert.Equal(t, uint16(7), other.Sequence)
}

func TestKeyboardErrorDecode(t *testing.T) {
	buf := make([]byte, 32)
	buf[0] = 0 // error
	buf[1] = 0x99
	binary.LittleEndian.PutUint16(buf[2:], 42)
	binary.LittleEndian.PutUint32(buf[4:], 0x0100)

	xerr := KeyboardErrorNew(buf)
	kerr, ok := xerr.(KeyboardError)
	require.True(t, ok)
	assert.Equal(t, uint16(42), kerr.SequenceId())
	assert.Equal(t, uint32(0x0100), kerr.BadId())
	assert.Contains(t, kerr.Error(), "Keyboard")
}
