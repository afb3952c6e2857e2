package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// MockBackend is a test backend that returns predetermined events
type MockBackend struct {
	events      []backend.InputEvent
	quitAfter   int
	initialized bool
	cleanedUp   bool
	updateCalls int
	lastFrame   video.FrameBuffer
}

func (m *MockBackend) Init(config backend.BackendConfig) error {
	m.initialized = true
	return nil
}

func (m *MockBackend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	m.updateCalls++
	m.lastFrame = *frame

	var events []backend.InputEvent
	// Return scripted events only on first call
	if m.updateCalls == 1 {
		events = append(events, m.events...)
	}
	if m.quitAfter > 0 && m.updateCalls == m.quitAfter {
		events = append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	}
	return events, nil
}

func (m *MockBackend) Cleanup() error {
	m.cleanedUp = true
	return nil
}

func newLoopEmulator(t *testing.T) *chip8.Emulator {
	t.Helper()
	emu := chip8.New(chip8.Config{CyclesPerFrame: 2})
	require.NoError(t, emu.LoadROM([]byte{0x70, 0x01, 0x12, 0x00})) // ADD V0, 1; JP 0x200
	return emu
}

func TestEventFlow(t *testing.T) {
	tests := []struct {
		name          string
		events        []backend.InputEvent
		quitAfter     int
		expectedCalls int
		expectedState debug.DebuggerState
		expectedKeys  map[int]bool
	}{
		{
			name: "quit event stops loop",
			events: []backend.InputEvent{
				{Action: action.EmulatorQuit, Type: event.Press},
			},
			expectedCalls: 1,
			expectedState: debug.DebuggerRunning,
		},
		{
			name: "keypad events are passed through",
			events: []backend.InputEvent{
				{Action: action.Key5, Type: event.Press},
				{Action: action.KeyA, Type: event.Press},
				{Action: action.KeyA, Type: event.Release},
				{Action: action.KeyF, Type: event.Hold},
				{Action: action.EmulatorQuit, Type: event.Press},
			},
			expectedCalls: 1,
			expectedState: debug.DebuggerRunning,
			expectedKeys:  map[int]bool{0x5: true, 0xA: false, 0xF: true},
		},
		{
			name: "pause toggle event",
			events: []backend.InputEvent{
				{Action: action.EmulatorPauseToggle, Type: event.Press},
			},
			quitAfter:     3,
			expectedCalls: 3,
			expectedState: debug.DebuggerPaused,
		},
		{
			name:          "no events runs multiple iterations",
			events:        []backend.InputEvent{},
			quitAfter:     5,
			expectedCalls: 5,
			expectedState: debug.DebuggerRunning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newLoopEmulator(t)

			mockBackend := &MockBackend{
				events:    tt.events,
				quitAfter: tt.quitAfter,
			}

			err := mockBackend.Init(emu.BackendConfig(backend.BackendConfig{Title: "Test"}))
			assert.NoError(t, err)
			assert.True(t, mockBackend.initialized)

			require.NoError(t, emu.Run(context.Background(), mockBackend))

			assert.Equal(t, tt.expectedCalls, mockBackend.updateCalls)
			assert.Equal(t, tt.expectedState, emu.DebuggerState())

			keys := emu.CPU().Keys()
			for key, pressed := range tt.expectedKeys {
				assert.Equal(t, pressed, keys[key], "key %X", key)
			}

			err = mockBackend.Cleanup()
			assert.NoError(t, err)
			assert.True(t, mockBackend.cleanedUp)
		})
	}
}

func TestEventFlow_PauseStopsExecution(t *testing.T) {
	emu := newLoopEmulator(t)
	mockBackend := &MockBackend{
		events:    []backend.InputEvent{{Action: action.EmulatorPauseToggle, Type: event.Press}},
		quitAfter: 4,
	}

	require.NoError(t, emu.Run(context.Background(), mockBackend))

	// only the frame before the pause request was executed
	assert.Equal(t, uint64(1), emu.GetFrameCount())
	assert.Equal(t, uint64(2), emu.GetInstructionCount())
}

func TestBackendInterface(t *testing.T) {
	// Verify MockBackend implements Backend interface
	var _ backend.Backend = (*MockBackend)(nil)
}
