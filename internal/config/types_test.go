package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "100", want: 100 * time.Millisecond},
		{in: "0", want: 0},
		{in: "250ms", want: 250 * time.Millisecond},
		{in: "1s", want: time.Second},
		{in: "1m30s", want: 90 * time.Second},
		{in: "-5", wantErr: true},
		{in: "-100ms", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDuration(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.in)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration(150 * time.Millisecond)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "150ms", string(text))

	var back Duration
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, d, back)
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in      string
		match   bool
		pixels  uint32
		wantErr bool
	}{
		{in: "display", match: true},
		{in: "Display", match: true},
		{in: "-1", match: true},
		{in: "-200", match: true},
		{in: "0", pixels: 0},
		{in: "800", pixels: 800},
		{in: "65535", pixels: 65535},
		{in: "65536", wantErr: true},
		{in: "12px", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDimension(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.match, d.MatchesDisplay())
			if !tt.match {
				assert.Equal(t, tt.pixels, d.Pixels())
			}
		})
	}
}

func TestDimensionResolve(t *testing.T) {
	assert.Equal(t, uint16(1920), MatchDisplay().Resolve(1920))
	assert.Equal(t, uint16(800), Fixed(800).Resolve(1920))
	assert.Equal(t, uint16(0), Fixed(0).Resolve(1080))
}

func TestDimensionString(t *testing.T) {
	assert.Equal(t, "display", MatchDisplay().String())
	assert.Equal(t, "640", Fixed(640).String())
}
