package backend

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend represents a complete emulator platform (rendering + input)
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (snapshots, debug panels)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update renders the provided frame and polls for platform events.
	// Input is returned as events for the emulator to route through its
	// input manager.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// InputEvent is a single translated input from a backend.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// DebugDataProvider exposes emulator state to debug panels.
type DebugDataProvider interface {
	ExtractDebugData() *debug.CompleteDebugData
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title         string
	Scale         int
	ShowDebug     bool              // Backends may ignore unsupported features
	SnapshotDir   string            // Where the snapshot key writes PNGs, cwd when empty
	Callbacks     BackendCallbacks  // Callbacks for backend communication
	InputManager  *input.Manager    // Shared input manager, backends may register callbacks on it
	DebugProvider DebugDataProvider // Source of register and disassembly data
}

// BackendCallbacks allows backends to communicate with the emulator
type BackendCallbacks struct {
	// Control callbacks
	OnQuit func() // Backend requests shutdown (e.g., window close)

	// Debug callbacks (optional)
	OnDebugMessage func(message string) // Backend can send debug info to emulator
}
