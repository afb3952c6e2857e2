package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 virtual machine"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, sdl2 or headless",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface (same as --backend headless)",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing for interactive backends: adaptive, ticker or none",
			Value: "adaptive",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "cycles-per-frame",
			Usage: "Instructions executed per 60 Hz frame",
			Value: chip8.DefaultCyclesPerFrame,
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the random number generator (random when unset)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the register and disassembly panels",
		},
		cli.BoolFlag{
			Name:  "mute",
			Usage: "Disable sound",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	backendName := strings.ToLower(c.String("backend"))
	if c.Bool("headless") {
		backendName = "headless"
	}

	if err := setupLogging(c.String("log-level"), backendName == "headless"); err != nil {
		return err
	}

	beeper, err := audio.New(c.Bool("mute") || backendName == "headless")
	if err != nil {
		slog.Warn("Audio unavailable, beeps will only be logged", "error", err)
		beeper = &audio.LogBeeper{}
	}
	defer beeper.Close()

	config := chip8.Config{
		CyclesPerFrame: c.Int("cycles-per-frame"),
		Beeper:         beeper,
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		config.Seed = &seed
	}

	emu, err := chip8.NewWithFile(romPath, config)
	if err != nil {
		return err
	}

	b, limiter, err := createBackend(c, backendName, romPath)
	if err != nil {
		return err
	}

	romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	backendConfig := emu.BackendConfig(backend.BackendConfig{
		Title:       fmt.Sprintf("CHIP-8 - %s", romName),
		Scale:       display.DefaultPixelScale,
		ShowDebug:   c.Bool("debug"),
		SnapshotDir: c.String("snapshot-dir"),
	})
	if err := b.Init(backendConfig); err != nil {
		return fmt.Errorf("failed to initialize %s backend: %w", backendName, err)
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	if s, ok := limiter.(interface{ Stop() }); ok {
		defer s.Stop()
	}
	emu.SetFrameLimiter(limiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return emu.Run(ctx, b)
}

func createBackend(c *cli.Context, name, romPath string) (backend.Backend, timing.Limiter, error) {
	switch name {
	case "headless":
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}

		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(frames, snapshotConfig), timing.NewNoOpLimiter(), nil
	case "terminal", "sdl2":
		limiter, err := timing.NewLimiter(strings.ToLower(c.String("limiter")))
		if err != nil {
			return nil, nil, err
		}
		if name == "sdl2" {
			return sdl2.New(), limiter, nil
		}
		return terminal.New(), limiter, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q, expected terminal, sdl2 or headless", name)
}

// setupLogging installs a text handler on stderr. Headless runs always log at
// debug level, the terminal backend replaces the handler with its own panel.
func setupLogging(level string, headless bool) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if headless {
		lvl = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}
