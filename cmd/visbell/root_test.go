package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/visbell/internal/config"
)

// newFlagTestCmd builds a fresh command with the real flag surface and
// parses args against it, so each test gets its own Changed() state.
func newFlagTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "visbell"}
	setupFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyFlagsOverridesConfig(t *testing.T) {
	cmd := newFlagTestCmd(t,
		"--x", "10", "--y", "-20",
		"--width", "800", "--height", "display",
		"--duration", "250ms", "--color", "red", "--flash")
	cfg = config.DefaultConfig()

	require.NoError(t, applyFlags(cmd))
	assert.Equal(t, int32(10), cfg.X)
	assert.Equal(t, int32(-20), cfg.Y)
	assert.Equal(t, config.Fixed(800), cfg.Width)
	assert.Equal(t, config.MatchDisplay(), cfg.Height)
	assert.Equal(t, config.Duration(250*time.Millisecond), cfg.Duration)
	assert.Equal(t, "red", cfg.Color)
	assert.True(t, cfg.OneShot)
}

func TestApplyFlagsLeavesConfigUntouched(t *testing.T) {
	cmd := newFlagTestCmd(t)
	cfg = config.DefaultConfig()

	require.NoError(t, applyFlags(cmd))
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestColourAliasApplies(t *testing.T) {
	cmd := newFlagTestCmd(t, "--colour", "steelblue")
	cfg = config.DefaultConfig()

	require.NoError(t, applyFlags(cmd))
	assert.Equal(t, "steelblue", cfg.Color)
}

func TestColorAliasConflictRejected(t *testing.T) {
	cmd := newFlagTestCmd(t, "--color", "red", "--colour", "blue")
	cfg = config.DefaultConfig()

	err := applyFlags(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--colour")
}

func TestApplyFlagsRejectsBadSizes(t *testing.T) {
	cmd := newFlagTestCmd(t, "--width", "huge")
	cfg = config.DefaultConfig()

	err := applyFlags(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width")
}
