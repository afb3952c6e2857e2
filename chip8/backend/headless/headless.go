package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend runs without any display or input for a fixed number of frames,
// optionally writing PNG snapshots along the way.
type Backend struct {
	config         backend.BackendConfig
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	saved          []string
}

// SnapshotConfig controls periodic PNG snapshots.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // frames between snapshots
	Directory string // output directory
	ROMName   string // file name prefix
}

func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	if h.maxFrames <= 0 {
		return fmt.Errorf("headless mode needs a positive frame count, got %d", h.maxFrames)
	}
	h.config = config

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

// Update counts the frame, writes a snapshot when one is due and asks the
// emulator to quit once the frame limit is reached.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++
	done := h.frameCount >= h.maxFrames

	if h.snapshotConfig.Enabled && (h.frameCount%h.snapshotConfig.Interval == 0 || done) {
		h.saveSnapshot(frame)
	}

	if h.frameCount%timing.TimerFrequency == 0 {
		slog.Info("Frame progress", "completed", h.frameCount, "total", h.maxFrames, "lit_pixels", frame.LitCount())
	}

	if !done {
		return nil, nil
	}

	attrs := []any{"frames", h.maxFrames}
	if h.snapshotConfig.Enabled {
		attrs = append(attrs, "snapshots", len(h.saved), "snapshot_dir", h.snapshotConfig.Directory)
	}
	slog.Info("Headless execution completed", attrs...)

	return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// FrameCount returns the number of frames processed so far.
func (h *Backend) FrameCount() int { return h.frameCount }

// Snapshots returns the paths of all PNGs written so far.
func (h *Backend) Snapshots() []string { return h.saved }

// CreateSnapshotConfig builds a SnapshotConfig from command line values.
// An empty directory means a fresh temporary one. interval <= 0 disables snapshots.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	if interval <= 0 {
		return SnapshotConfig{Interval: interval}, nil
	}

	var err error
	if directory == "" {
		directory, err = os.MkdirTemp("", "chip8-snapshots-*")
	} else {
		err = os.MkdirAll(directory, 0o755)
	}
	if err != nil {
		return SnapshotConfig{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	name := filepath.Base(romPath)
	return SnapshotConfig{
		Enabled:   true,
		Interval:  interval,
		Directory: directory,
		ROMName:   strings.TrimSuffix(name, filepath.Ext(name)),
	}, nil
}

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)

	path, err := debug.SaveFramePNGToDir(frame, baseName, h.snapshotConfig.Directory)
	if err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
		return
	}
	h.saved = append(h.saved, path)
}
