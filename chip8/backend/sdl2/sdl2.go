//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
	"github.com/veandco/go-sdl2/sdl"
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig
	events   []backend.InputEvent
	pixels   []byte

	// Snapshot state
	currentFrame *video.FrameBuffer
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{
		pixels: make([]byte, video.FramebufferSize*display.RGBABytesPerPixel),
	}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config

	scale := int32(config.Scale)
	if scale <= 0 {
		scale = display.DefaultPixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*scale,
		video.FramebufferHeight*scale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	s.running = true
	s.setupCallbacks()

	slog.Info("SDL2 backend initialized", "scale", scale)
	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	s.events = s.events[:0]

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		s.handleEvent(e)
	}

	if !s.running {
		return s.events, nil
	}

	s.currentFrame = frame
	if err := s.renderFrame(frame); err != nil {
		return s.events, err
	}

	return s.events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

func (s *Backend) handleEvent(e sdl.Event) {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		s.running = false
		if s.config.Callbacks.OnQuit != nil {
			s.config.Callbacks.OnQuit()
		}
		s.events = append(s.events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	case *sdl.KeyboardEvent:
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch e.Type {
		case sdl.KEYDOWN:
			// Ignore key repeat events
			if e.Repeat != 0 {
				return
			}
			if act == action.EmulatorQuit {
				s.running = false
			}
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Press})
		case sdl.KEYUP:
			// Only keypad keys have a meaningful release
			if act.IsKeypad() {
				s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Release})
			}
		}
	}
}

// keyMapping maps SDL2 keys to actions
var keyMapping = map[sdl.Keycode]action.Action{
	// CHIP-8 keypad
	sdl.K_1: action.Key1,
	sdl.K_2: action.Key2,
	sdl.K_3: action.Key3,
	sdl.K_4: action.KeyC,
	sdl.K_q: action.Key4,
	sdl.K_w: action.Key5,
	sdl.K_e: action.Key6,
	sdl.K_r: action.KeyD,
	sdl.K_a: action.Key7,
	sdl.K_s: action.Key8,
	sdl.K_d: action.Key9,
	sdl.K_f: action.KeyE,
	sdl.K_z: action.KeyA,
	sdl.K_x: action.Key0,
	sdl.K_c: action.KeyB,
	sdl.K_v: action.KeyF,

	// Emulator controls
	sdl.K_SPACE:  action.EmulatorPauseToggle,
	sdl.K_p:      action.EmulatorPauseToggle,
	sdl.K_o:      action.EmulatorStepFrame,
	sdl.K_n:      action.EmulatorStepInstruction,
	sdl.K_F5:     action.EmulatorReset,
	sdl.K_F9:     action.EmulatorSnapshot,
	sdl.K_F10:    action.EmulatorDebugToggle,
	sdl.K_ESCAPE: action.EmulatorQuit,
}

func (s *Backend) setupCallbacks() {
	// Register callbacks for actions that need backend-specific handling
	if s.config.InputManager == nil {
		slog.Warn("No input manager available, callbacks not registered")
		return
	}

	s.config.InputManager.On(action.EmulatorSnapshot, event.Press, func() {
		debug.TakeSnapshot(s.currentFrame, s.config.SnapshotDir)
	})
	s.config.InputManager.On(action.EmulatorDebugToggle, event.Press, func() {
		if s.config.DebugProvider == nil {
			return
		}
		data := s.config.DebugProvider.ExtractDebugData()
		for _, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, 5) {
			slog.Info("Disassembly", "line", line.Instruction)
		}
	})
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	// ABGR byte order for little-endian RGBA8888
	for i, c := range frame.ToRGBA(video.OnColor, video.OffColor) {
		r, g, b, a := display.SplitRGBA(c)
		idx := i * display.RGBABytesPerPixel
		s.pixels[idx] = a
		s.pixels[idx+1] = b
		s.pixels[idx+2] = g
		s.pixels[idx+3] = r
	}

	pitch := video.FramebufferWidth * display.RGBABytesPerPixel
	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), pitch); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}
