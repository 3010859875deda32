// Package xkb speaks the minimal slice of the XKEYBOARD extension protocol
// that a visual bell needs: version negotiation, BellNotify event selection,
// per-client auto-reset flags, and enabling/disabling the audible bell
// control. The xgb project does not generate XKB bindings, so the requests
// are encoded by hand against the wire layouts in the XKB protocol
// specification, plugged into xgb's extension machinery the same way its
// generated extension packages are.
package xkb

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// ExtensionName is the name the X server knows the extension by.
const ExtensionName = "XKEYBOARD"

// Protocol version implemented by this package.
const (
	MajorVersion = 1
	MinorVersion = 0
)

// UseCoreKeyboard is the device spec addressing the core keyboard device
// (XkbUseCoreKbd).
const UseCoreKeyboard = 0x0100

// Event selection masks for SelectEvents (XkbBellNotifyMask and friends).
// Only the bell mask is spelled out; the rest of the event families are not
// used by this package.
const (
	EventMaskBellNotify = 1 << 8
)

// BellNotify is the XkbType carried in byte 1 of every XKB event; all XKB
// events share a single X event number and are told apart by this byte.
const BellNotify = 8

// ControlAudibleBell is the boolean control bit for the server-side audible
// bell (XkbAudibleBellMask, bit 9 of the BoolCtrl mask space).
const ControlAudibleBell = 1 << 9

// Per-client flag bits for PerClientFlags (XkbPCF_*).
const (
	PCFDetectableAutoRepeat = 1 << 0
	PCFGrabsUseXKBState     = 1 << 1
	PCFAutoResetControls    = 1 << 2
	PCFLookupStateWhenGrab  = 1 << 3
	PCFSendEventUsesXKB     = 1 << 4
)

// XKB minor request opcodes used here.
const (
	opUseExtension   = 0
	opSelectEvents   = 1
	opSetControls    = 7
	opPerClientFlags = 21
)

func init() {
	xgb.NewExtEventFuncs[ExtensionName] = map[int]xgb.NewEventFun{
		0: newEvent,
	}
	xgb.NewExtErrorFuncs[ExtensionName] = map[int]xgb.NewErrorFun{
		0: KeyboardErrorNew,
	}
}

// Init negotiates the XKEYBOARD extension on the connection and registers
// its event and error decoders. It must be called before any other request
// in this package.
func Init(c *xgb.Conn) error {
	reply, err := xproto.QueryExtension(c, uint16(len(ExtensionName)), ExtensionName).Reply()
	if err != nil {
		return err
	}
	if !reply.Present {
		return xgb.Errorf("No extension named %s could be found on the server.", ExtensionName)
	}

	c.ExtLock.Lock()
	c.Extensions[ExtensionName] = reply.MajorOpcode
	for evNum, fun := range xgb.NewExtEventFuncs[ExtensionName] {
		xgb.NewEventFuncs[int(reply.FirstEvent)+evNum] = fun
	}
	for errNum, fun := range xgb.NewExtErrorFuncs[ExtensionName] {
		xgb.NewErrorFuncs[int(reply.FirstError)+errNum] = fun
	}
	c.ExtLock.Unlock()

	return nil
}

func extOpcode(c *xgb.Conn) byte {
	c.ExtLock.RLock()
	defer c.ExtLock.RUnlock()
	opcode, ok := c.Extensions[ExtensionName]
	if !ok {
		panic("cannot issue XKEYBOARD request before xkb.Init is called")
	}
	return opcode
}

// UseExtensionCookie is a cookie for a UseExtension request.
type UseExtensionCookie struct {
	*xgb.Cookie
}

// UseExtensionReply carries the server's answer to UseExtension.
type UseExtensionReply struct {
	Supported   bool
	ServerMajor uint16
	ServerMinor uint16
}

// UseExtension asks the server to enable XKB semantics for this client at
// the given protocol version. Every XKB client must issue it once.
func UseExtension(c *xgb.Conn, wantedMajor, wantedMinor uint16) UseExtensionCookie {
	cookie := c.NewCookie(true, true)
	c.NewRequest(useExtensionRequest(extOpcode(c), wantedMajor, wantedMinor), cookie)
	return UseExtensionCookie{cookie}
}

// Reply blocks until the UseExtension reply arrives.
func (cook UseExtensionCookie) Reply() (*UseExtensionReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return &UseExtensionReply{
		Supported:   buf[1] == 1,
		ServerMajor: xgb.Get16(buf[8:]),
		ServerMinor: xgb.Get16(buf[10:]),
	}, nil
}

func useExtensionRequest(opcode byte, wantedMajor, wantedMinor uint16) []byte {
	buf := make([]byte, 8)
	buf[0] = opcode
	buf[1] = opUseExtension
	xgb.Put16(buf[2:], 2) // length in 4-byte units
	xgb.Put16(buf[4:], wantedMajor)
	xgb.Put16(buf[6:], wantedMinor)
	return buf
}

// SelectEventsCookie is a cookie for a SelectEvents request.
type SelectEventsCookie struct {
	*xgb.Cookie
}

// SelectEventsChecked subscribes the client to the XKB event families in
// selectAll and unsubscribes those in clear, on the given device. Event
// families toggled wholesale this way carry no per-detail masks, which
// covers BellNotify entirely.
func SelectEventsChecked(c *xgb.Conn, deviceSpec uint16, clear, selectAll uint16) SelectEventsCookie {
	cookie := c.NewCookie(true, false)
	c.NewRequest(selectEventsRequest(extOpcode(c), deviceSpec, clear, selectAll), cookie)
	return SelectEventsCookie{cookie}
}

// Check blocks until the server has processed the request, returning any
// protocol error it raised.
func (cook SelectEventsCookie) Check() error {
	return cook.Cookie.Check()
}

func selectEventsRequest(opcode byte, deviceSpec uint16, clear, selectAll uint16) []byte {
	buf := make([]byte, 16)
	buf[0] = opcode
	buf[1] = opSelectEvents
	xgb.Put16(buf[2:], 4)
	xgb.Put16(buf[4:], deviceSpec)
	xgb.Put16(buf[6:], clear|selectAll) // affectWhich
	xgb.Put16(buf[8:], clear)
	xgb.Put16(buf[10:], selectAll)
	xgb.Put16(buf[12:], 0) // affectMap
	xgb.Put16(buf[14:], 0) // map
	return buf
}

// PerClientFlagsCookie is a cookie for a PerClientFlags request.
type PerClientFlagsCookie struct {
	*xgb.Cookie
}

// PerClientFlagsReply carries the server's answer to PerClientFlags.
type PerClientFlagsReply struct {
	Supported      uint32
	Value          uint32
	AutoCtrls      uint32
	AutoCtrlValues uint32
}

// PerClientFlags changes per-client XKB flags. With PCFAutoResetControls
// set in change and value, the controls in autoCtrls are forced to the
// states in autoCtrlValues when the client disconnects, however it dies.
func PerClientFlags(c *xgb.Conn, deviceSpec uint16, change, value, ctrlsToChange, autoCtrls, autoCtrlValues uint32) PerClientFlagsCookie {
	cookie := c.NewCookie(true, true)
	c.NewRequest(perClientFlagsRequest(extOpcode(c), deviceSpec, change, value, ctrlsToChange, autoCtrls, autoCtrlValues), cookie)
	return PerClientFlagsCookie{cookie}
}

// Reply blocks until the PerClientFlags reply arrives.
func (cook PerClientFlagsCookie) Reply() (*PerClientFlagsReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return &PerClientFlagsReply{
		Supported:      xgb.Get32(buf[8:]),
		Value:          xgb.Get32(buf[12:]),
		AutoCtrls:      xgb.Get32(buf[16:]),
		AutoCtrlValues: xgb.Get32(buf[20:]),
	}, nil
}

func perClientFlagsRequest(opcode byte, deviceSpec uint16, change, value, ctrlsToChange, autoCtrls, autoCtrlValues uint32) []byte {
	buf := make([]byte, 28)
	buf[0] = opcode
	buf[1] = opPerClientFlags
	xgb.Put16(buf[2:], 7)
	xgb.Put16(buf[4:], deviceSpec)
	// 2 bytes padding
	xgb.Put32(buf[8:], change)
	xgb.Put32(buf[12:], value)
	xgb.Put32(buf[16:], ctrlsToChange)
	xgb.Put32(buf[20:], autoCtrls)
	xgb.Put32(buf[24:], autoCtrlValues)
	return buf
}

// ChangeEnabledControlsCookie is a cookie for the SetControls request
// issued by ChangeEnabledControlsChecked.
type ChangeEnabledControlsCookie struct {
	*xgb.Cookie
}

// ChangeEnabledControlsChecked flips boolean XKB controls on the given
// device: the controls in affect are set to the corresponding bits in
// values, everything else is left alone. It is the narrow use of the full
// SetControls request (every other affect mask is zero), mirroring Xlib's
// XkbChangeEnabledControls.
func ChangeEnabledControlsChecked(c *xgb.Conn, deviceSpec uint16, affect, values uint32) ChangeEnabledControlsCookie {
	cookie := c.NewCookie(true, false)
	c.NewRequest(changeEnabledControlsRequest(extOpcode(c), deviceSpec, affect, values), cookie)
	return ChangeEnabledControlsCookie{cookie}
}

// Check blocks until the server has processed the request, returning any
// protocol error it raised.
func (cook ChangeEnabledControlsCookie) Check() error {
	return cook.Cookie.Check()
}

func changeEnabledControlsRequest(opcode byte, deviceSpec uint16, affect, values uint32) []byte {
	// Full xkbSetControlsReq layout, 100 bytes. Only deviceSpec and the
	// enabled-controls triple are populated; zero affect masks make the
	// server ignore the remaining fields.
	buf := make([]byte, 100)
	buf[0] = opcode
	buf[1] = opSetControls
	xgb.Put16(buf[2:], 25)
	xgb.Put16(buf[4:], deviceSpec)
	// buf[6:24]: real/virtual modifier fields, mouse keys button, groups
	// wrap, accessX options, padding - all zero.
	xgb.Put32(buf[24:], affect)        // affectEnabledCtrls
	xgb.Put32(buf[28:], values&affect) // enabledCtrls
	xgb.Put32(buf[32:], 0)             // changeCtrls
	// buf[36:100]: repeat/slow-keys/mouse-keys/accessX values and the
	// per-key repeat bit array - all zero, all ignored with changeCtrls 0.
	return buf
}
