package chip8

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// ErrIO is returned when a ROM file cannot be read.
var ErrIO = errors.New("rom i/o error")

// DefaultCyclesPerFrame gives roughly 600 instructions per second at 60 frames per second.
const DefaultCyclesPerFrame = 10

// Config holds the emulator settings.
type Config struct {
	// CyclesPerFrame is the number of instructions executed per 60 Hz frame.
	CyclesPerFrame int
	// Seed makes the random number generator deterministic when set.
	Seed *uint64
	// Beeper plays the sound timer tone. Beeps are dropped when nil.
	Beeper audio.Beeper
}

// Emulator drives a CPU one frame at a time and wires it to a backend.
type Emulator struct {
	cpu     *cpu.CPU
	config  Config
	input   *input.Manager
	limiter timing.Limiter

	rom           []byte
	debuggerState debug.DebuggerState
	quit          bool

	frameCount       uint64
	instructionCount uint64
	unknownSeen      map[uint16]uint64
}

// New creates an emulator with no program loaded.
func New(config Config) *Emulator {
	if config.CyclesPerFrame <= 0 {
		config.CyclesPerFrame = DefaultCyclesPerFrame
	}

	e := &Emulator{
		cpu:         cpu.New(),
		config:      config,
		limiter:     timing.NewNoOpLimiter(),
		unknownSeen: make(map[uint16]uint64),
	}
	if config.Seed != nil {
		e.cpu.Seed(*config.Seed)
	}

	e.input = input.NewManager(e.cpu)
	e.setupInputCallbacks()

	return e
}

// NewWithFile creates a new emulator instance and loads the file specified into it.
func NewWithFile(path string, config Config) (*Emulator, error) {
	e := New(config)
	if err := e.LoadFile(path); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadFile reads a ROM from disk and loads it with LoadROM.
// Read failures wrap ErrIO and leave the machine untouched.
func (e *Emulator) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := e.LoadROM(data); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	slog.Info("Loaded ROM", "path", path, "bytes", len(data))
	return nil
}

// LoadROM resets the machine and loads data at 0x200.
// The data is kept so Reset can reload it. A ROM that does not fit is
// rejected before anything is reset.
func (e *Emulator) LoadROM(data []byte) error {
	if len(data) > memory.MaxProgramSize {
		return fmt.Errorf("program is %d bytes, limit is %d: %w", len(data), memory.MaxProgramSize, cpu.ErrCapacityExceeded)
	}

	e.cpu.Reset()
	if err := e.cpu.LoadProgram(data); err != nil {
		return err
	}
	e.rom = append(e.rom[:0], data...)
	return nil
}

// Reset restarts the loaded program from a clean machine.
func (e *Emulator) Reset() {
	if err := e.LoadROM(e.rom); err != nil {
		// the ROM already fit once, this cannot fail
		slog.Error("Failed to reload ROM", "error", err)
	}
	e.frameCount = 0
	e.instructionCount = 0
	clear(e.unknownSeen)
	slog.Info("Emulator reset")
}

func (e *Emulator) setupInputCallbacks() {
	e.input.On(action.EmulatorPauseToggle, event.Press, func() {
		if e.debuggerState == debug.DebuggerRunning {
			e.debuggerState = debug.DebuggerPaused
			slog.Info("Emulation paused", "pc", fmt.Sprintf("0x%03X", e.cpu.GetPC()))
		} else {
			e.debuggerState = debug.DebuggerRunning
			e.limiter.Reset()
			slog.Info("Emulation resumed")
		}
	})
	e.input.On(action.EmulatorStepInstruction, event.Press, func() {
		e.debuggerState = debug.DebuggerStepInstruction
	})
	e.input.On(action.EmulatorStepFrame, event.Press, func() {
		e.debuggerState = debug.DebuggerStepFrame
	})
	e.input.On(action.EmulatorReset, event.Press, e.Reset)
	e.input.On(action.EmulatorQuit, event.Press, func() {
		e.quit = true
	})
}

// Step executes a single instruction.
// Unknown opcodes are logged and skipped, fatal errors are returned.
func (e *Emulator) Step() error {
	err := e.cpu.Step()

	if e.cpu.ConsumeBeep() && e.config.Beeper != nil {
		e.config.Beeper.Beep()
	}

	switch {
	case err == nil:
	case cpu.IsFatal(err):
		return fmt.Errorf("emulation halted: %w", err)
	default:
		e.logUnknownOpcode(err)
	}

	if !e.cpu.WaitingForKey() {
		e.instructionCount++
	}
	return nil
}

// logUnknownOpcode warns once per distinct opcode, then only at debug level
// every 1000 occurrences.
func (e *Emulator) logUnknownOpcode(err error) {
	var opErr *cpu.UnknownOpcodeError
	if !errors.As(err, &opErr) {
		slog.Warn("Instruction failed", "error", err)
		return
	}

	e.unknownSeen[opErr.Opcode]++
	n := e.unknownSeen[opErr.Opcode]
	switch {
	case n == 1:
		slog.Warn("Unknown opcode, skipping", "opcode", fmt.Sprintf("0x%04X", opErr.Opcode), "pc", fmt.Sprintf("0x%03X", opErr.PC))
	case n%1000 == 0:
		slog.Debug("Unknown opcode repeated", "opcode", fmt.Sprintf("0x%04X", opErr.Opcode), "count", n)
	}
}

// RunFrame executes one frame worth of instructions, honoring pause and step requests.
func (e *Emulator) RunFrame() error {
	switch e.debuggerState {
	case debug.DebuggerPaused:
		return nil
	case debug.DebuggerStepInstruction:
		e.debuggerState = debug.DebuggerPaused
		if err := e.Step(); err != nil {
			return err
		}
		slog.Debug("Stepped instruction", "opcode", fmt.Sprintf("0x%04X", e.cpu.GetCurrentOpcode()), "pc", fmt.Sprintf("0x%03X", e.cpu.GetPC()))
		return nil
	case debug.DebuggerStepFrame:
		e.debuggerState = debug.DebuggerPaused
	}

	for i := 0; i < e.config.CyclesPerFrame; i++ {
		if err := e.Step(); err != nil {
			return err
		}
	}
	e.frameCount++
	return nil
}

// SetFrameLimiter sets the frame pacing used by Run. nil disables pacing.
func (e *Emulator) SetFrameLimiter(limiter timing.Limiter) {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	e.limiter = limiter
}

// Run executes frames until the backend or user requests to quit, ctx is
// done, or the CPU hits a fatal error.
func (e *Emulator) Run(ctx context.Context, b backend.Backend) error {
	slog.Info("Emulation started",
		"cycles_per_frame", e.config.CyclesPerFrame,
		"instructions_per_second", timing.CyclesPerSecond(e.config.CyclesPerFrame))

	for !e.quit {
		select {
		case <-ctx.Done():
			slog.Info("Emulation cancelled")
			return nil
		default:
		}

		if err := e.RunFrame(); err != nil {
			slog.Error("Emulation stopped", "error", err, "pc", fmt.Sprintf("0x%03X", e.cpu.GetPC()))
			return err
		}

		frame := e.cpu.Frame()
		events, err := b.Update(&frame)
		if err != nil {
			return fmt.Errorf("backend update failed: %w", err)
		}
		e.cpu.ClearDrawFlag()

		for _, evt := range events {
			e.input.Trigger(evt.Action, evt.Type)
		}

		e.limiter.WaitForNextFrame()
	}

	slog.Info("Emulation finished", "frames", e.frameCount, "instructions", e.instructionCount)
	return nil
}

// BackendConfig fills in the emulator-owned parts of a backend configuration.
func (e *Emulator) BackendConfig(config backend.BackendConfig) backend.BackendConfig {
	config.InputManager = e.input
	config.DebugProvider = e
	if config.Callbacks.OnQuit == nil {
		config.Callbacks.OnQuit = func() { e.quit = true }
	}
	return config
}

// InputManager returns the manager routing actions to the emulator and keypad.
func (e *Emulator) InputManager() *input.Manager { return e.input }

// GetCurrentFrame returns a copy of the screen.
func (e *Emulator) GetCurrentFrame() *video.FrameBuffer {
	frame := e.cpu.Frame()
	return &frame
}

// ExtractDebugData implements backend.DebugDataProvider.
func (e *Emulator) ExtractDebugData() *debug.CompleteDebugData {
	return debug.Extract(e.cpu, e.debuggerState)
}

// GetFrameCount returns the number of completed frames.
func (e *Emulator) GetFrameCount() uint64 { return e.frameCount }

// GetInstructionCount returns the number of executed instructions.
func (e *Emulator) GetInstructionCount() uint64 { return e.instructionCount }

func (e *Emulator) DebuggerState() debug.DebuggerState { return e.debuggerState }

// CPU exposes the underlying processor.
func (e *Emulator) CPU() *cpu.CPU { return e.cpu }

var _ backend.DebugDataProvider = (*Emulator)(nil)
