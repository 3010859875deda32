// Package main provides the CLI entrypoint for visbell.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/visbell/internal/config"
	"github.com/jmylchreest/visbell/internal/flash"
	"github.com/jmylchreest/visbell/internal/x11"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		x          int32
		y          int32
		width      string
		height     string
		color      string
		colour     string
		duration   string
		display    string
		flashOnce  bool
	}
	logger *slog.Logger
)

// rootCmd represents the base command; visbell has no subcommands.
var rootCmd = &cobra.Command{
	Use:   "visbell",
	Short: "Visual bell for X11",
	Long: `visbell flashes a colored window over the screen whenever the X server's
keyboard bell rings, replacing the audible beep with a visible one.

By default the flash covers the whole display with white for 100ms.
Position, size, color and duration can be set with flags or in the config
file; flags win.

With --flash the window is shown once immediately and visbell exits
without listening for bell events.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := applyFlags(cmd); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return run(cmd.Context())
	},
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	setupFlags(rootCmd)
}

// setupFlags registers the flag surface on cmd, bound to globalOpts.
func setupFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int32VarP(&globalOpts.x, "x", "x", 0,
		"Window x position")
	f.Int32VarP(&globalOpts.y, "y", "y", 0,
		"Window y position")
	f.StringVarP(&globalOpts.width, "width", "w", "display",
		"Window width in pixels, or 'display' to match the display width")
	f.StringVar(&globalOpts.height, "height", "display",
		"Window height in pixels, or 'display' to match the display height")
	f.StringVarP(&globalOpts.color, "color", "c", config.DefaultColor,
		"Flash color as an X11 color name")
	f.StringVar(&globalOpts.colour, "colour", config.DefaultColor,
		"Alias for --color")
	_ = f.MarkHidden("colour")
	f.StringVarP(&globalOpts.duration, "duration", "d", "100",
		"Flash duration in milliseconds or as a duration like '150ms'")
	f.BoolVarP(&globalOpts.flashOnce, "flash", "f", false,
		"Flash once immediately and exit instead of listening for the bell")
	f.StringVar(&globalOpts.display, "display", "",
		"X display to connect to (default: $DISPLAY)")
	f.BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	f.StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/visbell/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// applyFlags layers explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("x") {
		cfg.X = globalOpts.x
	}
	if flags.Changed("y") {
		cfg.Y = globalOpts.y
	}
	if flags.Changed("width") {
		d, err := config.ParseDimension(globalOpts.width)
		if err != nil {
			return fmt.Errorf("width: %w", err)
		}
		cfg.Width = d
	}
	if flags.Changed("height") {
		d, err := config.ParseDimension(globalOpts.height)
		if err != nil {
			return fmt.Errorf("height: %w", err)
		}
		cfg.Height = d
	}
	if flags.Changed("duration") {
		d, err := config.ParseDuration(globalOpts.duration)
		if err != nil {
			return err
		}
		cfg.Duration = d
	}
	if flags.Changed("color") && flags.Changed("colour") {
		return fmt.Errorf("--colour is an alias for --color, set only one")
	}
	if flags.Changed("color") {
		cfg.Color = globalOpts.color
	}
	if flags.Changed("colour") {
		cfg.Color = globalOpts.colour
	}
	if flags.Changed("display") {
		cfg.Display = globalOpts.display
	}
	cfg.OneShot = globalOpts.flashOnce

	return nil
}

// run connects to the display server, sets up the flash window and drives
// the controller until shutdown.
func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := x11.Open(cfg.Display, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	// One-shot mode never listens for bells: no subscription, and the
	// audible bell is left alone.
	if !cfg.OneShot {
		if err := session.SubscribeBell(); err != nil {
			return err
		}
	}

	win, err := session.CreateWindow(cfg)
	if err != nil {
		return err
	}

	controller := flash.New(flash.Options{
		Window:   win,
		Events:   session.Events(),
		Duration: cfg.Duration.Duration(),
		OneShot:  cfg.OneShot,
		Logger:   logger,
	})

	logger.Info("visbell running",
		"one_shot", cfg.OneShot,
		"duration", cfg.Duration,
		"color", cfg.Color,
	)

	err = controller.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
