package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxFixedSize is the largest width or height the X protocol can carry
// (dimensions are CARD16 on the wire).
const MaxFixedSize = 65535

// Duration is a time.Duration that can be unmarshaled from human-readable
// strings. A bare integer is taken as milliseconds, matching the historical
// xvisbell --duration flag; anything else is parsed with time.ParseDuration
// ("150ms", "1s", ...). Negative durations are rejected.
type Duration time.Duration

// ParseDuration parses a flag or config value into a Duration.
func ParseDuration(s string) (Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("invalid duration %q: must be a non-negative number of milliseconds", s)
		}
		return Duration(time.Duration(ms) * time.Millisecond), nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: must be like '150ms', '1s' or a number of milliseconds", s)
	}
	if dur < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return Duration(dur), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Dimension is a window width or height: either a fixed pixel size or a
// request to match the display size. The historical xvisbell CLI encoded
// "match display" as any negative integer; that spelling is still accepted
// on input, but the value itself is tagged rather than sign-overloaded.
type Dimension struct {
	pixels uint32
	match  bool
}

// Fixed returns a Dimension of a concrete pixel size.
func Fixed(pixels uint32) Dimension {
	return Dimension{pixels: pixels}
}

// MatchDisplay returns a Dimension that resolves to the display size.
func MatchDisplay() Dimension {
	return Dimension{match: true}
}

// ParseDimension parses a flag or config value into a Dimension.
// Accepted forms: "display", a negative integer (historical spelling for
// match-display), or a pixel count between 0 and MaxFixedSize.
func ParseDimension(s string) (Dimension, error) {
	if strings.EqualFold(strings.TrimSpace(s), "display") {
		return MatchDisplay(), nil
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("invalid size %q: must be 'display' or a pixel count", s)
	}
	if n < 0 {
		return MatchDisplay(), nil
	}
	if n > MaxFixedSize {
		return Dimension{}, fmt.Errorf("invalid size %q: the maximum size is %d", s, MaxFixedSize)
	}
	return Fixed(uint32(n)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Dimension) UnmarshalText(text []byte) error {
	parsed, err := ParseDimension(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MatchesDisplay reports whether the dimension resolves to the display size.
func (d Dimension) MatchesDisplay() bool {
	return d.match
}

// Pixels returns the fixed pixel size. Only meaningful when
// MatchesDisplay is false.
func (d Dimension) Pixels() uint32 {
	return d.pixels
}

// Resolve returns the on-screen size given the display extent.
func (d Dimension) Resolve(display uint16) uint16 {
	if d.match {
		return display
	}
	return uint16(d.pixels)
}

// String returns the textual form accepted by ParseDimension.
func (d Dimension) String() string {
	if d.match {
		return "display"
	}
	return strconv.FormatUint(uint64(d.pixels), 10)
}
