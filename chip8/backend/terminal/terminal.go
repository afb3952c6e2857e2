package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// two pixel rows per terminal row
	gameAreaHeight = height / 2
	registerHeight = 10
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24
)

// Key expiry timeout - slightly longer than typical key repeat interval.
// Terminals only report presses, so a key counts as held until it expires.
const keyTimeout = 100 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen     tcell.Screen
	running    bool
	logBuffer  *render.LogBuffer
	logLevel   *slog.LevelVar
	config     backend.BackendConfig
	eventQueue []backend.InputEvent // Collect events to return
	signals    chan os.Signal

	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous frame

	// For accessing emulator state
	debugProvider backend.DebugDataProvider

	// Snapshot state
	currentFrame *video.FrameBuffer
}

// New creates a new terminal backend on the process terminal
func New() *Backend {
	return &Backend{}
}

// NewWithScreen creates a terminal backend drawing to the given screen.
// Tests pass a tcell.SimulationScreen.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.eventQueue = make([]backend.InputEvent, 0)
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}

	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// Logs are drawn in the log panel instead of stderr
	t.logBuffer = render.NewLogBuffer(100)
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(slog.LevelInfo)
	if config.ShowDebug {
		t.logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.setupCallbacks()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// Set up signal handling for graceful shutdown
	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

func (t *Backend) setupCallbacks() {
	if t.config.InputManager == nil {
		slog.Warn("No input manager available, callbacks not registered")
		return
	}

	t.config.InputManager.On(action.EmulatorSnapshot, event.Press, func() {
		debug.TakeSnapshot(t.currentFrame, t.config.SnapshotDir)
	})
	t.config.InputManager.On(action.EmulatorDebugToggle, event.Press, func() {
		t.config.ShowDebug = !t.config.ShowDebug
		if t.config.ShowDebug {
			slog.Info("Debug display enabled")
		} else {
			slog.Info("Debug display disabled")
		}
	})
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := time.Now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal, shutting down", "signal", sig)
		t.running = false
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Track which keys are currently active this frame
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) < keyTimeout {
			currentlyActive[act] = true

			if !t.activeKeys[act] {
				// Was not active last frame - send Press
				events = append(events, backend.InputEvent{Action: act, Type: event.Press})
			} else {
				events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		} else {
			// Key has expired - remove it
			delete(t.keyStates, act)
		}
	}

	// Check for released keys (were active last frame but not this frame)
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	// Add emulator control events (pause, debug, etc)
	events = append(events, t.eventQueue...)
	t.eventQueue = t.eventQueue[:0]

	if !t.running {
		return events, nil
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF5:     "F5",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit

	return mapping
}

// buildRuneMapping creates the rune mapping from the single character default mappings
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		runes := []rune(keyName)
		if len(runes) == 1 {
			mapping[runes[0]] = act
		}
	}
	if act, ok := input.GetDefaultMapping("Space"); ok {
		mapping[' '] = act
	}

	return mapping
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

// runeMapping maps runes to actions
var runeMapping = buildRuneMapping()

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[unicode.ToLower(ev.Rune())]
	}
	if !ok {
		return
	}

	if act.IsKeypad() {
		t.keyStates[act] = now
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, style)
		return
	}

	t.screen.Clear()

	dividerX := width + 1
	rightPanelX := dividerX + 2
	rightPanelWidth := termWidth - rightPanelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawScreen(frame)

	if t.config.ShowDebug && t.debugProvider != nil {
		data := t.debugProvider.ExtractDebugData()
		t.drawRegisters(data, rightPanelX, 1, rightPanelWidth)
		t.drawDisassembly(data, rightPanelX, registerHeight+2, rightPanelWidth)
	}
	t.drawLogs(0, gameAreaHeight+2, dividerX, termHeight)
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= maxWidth {
			break
		}
		t.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}
	for x := 0; x < dividerX; x++ {
		t.screen.SetContent(x, gameAreaHeight+1, '─', nil, borderStyle)
	}
	t.screen.SetContent(dividerX, gameAreaHeight+1, '┤', nil, borderStyle)

	title := " CHIP-8 "
	if t.config.Title != "" {
		title = fmt.Sprintf(" CHIP-8: %s ", t.config.Title)
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)
	t.drawText(1, gameAreaHeight+1, dividerX-1, fmt.Sprintf(" Logs [%s] ", t.logLevel.Level()), titleStyle)

	if t.config.ShowDebug {
		t.drawText(dividerX+2, 0, termWidth-dividerX-2, " Registers ", titleStyle)
		t.drawText(dividerX+2, registerHeight+1, termWidth-dividerX-2, " Disassembly ", titleStyle)
	}

	helpText := " ESC=quit SPACE=pause N=step O=frame F5=reset F9=snapshot F10=debug | keypad 1234/QWER/ASDF/ZXCV "
	t.drawText(0, termHeight-1, termWidth, helpText, borderStyle)
}

func (t *Backend) drawScreen(frame *video.FrameBuffer) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)

	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := frame.GetPixel(uint(x), uint(y)) == 1
			bottom := frame.GetPixel(uint(x), uint(y+1)) == 1
			t.screen.SetContent(x, y/2+1, render.HalfBlock(top, bottom), nil, style)
		}
	}
}

func registerLines(data *debug.CompleteDebugData) []string {
	c := data.CPU
	lines := []string{fmt.Sprintf("Status: %s", strings.ToUpper(data.DebuggerState.String()))}

	for row := 0; row < 4; row++ {
		var b strings.Builder
		for col := 0; col < 4; col++ {
			r := row*4 + col
			fmt.Fprintf(&b, "V%X:%02X ", r, c.V[r])
		}
		lines = append(lines, strings.TrimSpace(b.String()))
	}

	waiting := "no"
	if c.WaitingForKey {
		waiting = "yes"
	}

	var keys strings.Builder
	for k, pressed := range data.Keys {
		if pressed {
			fmt.Fprintf(&keys, "%X", k)
		} else {
			keys.WriteByte('.')
		}
	}

	stack := make([]string, len(c.Stack))
	for i, addr := range c.Stack {
		stack[i] = fmt.Sprintf("%03X", addr)
	}

	return append(lines,
		fmt.Sprintf("I: 0x%03X  PC: 0x%03X  SP: %d", c.I, c.PC, c.SP),
		fmt.Sprintf("DT: %02X  ST: %02X  Wait key: %s", c.DelayTimer, c.SoundTimer, waiting),
		fmt.Sprintf("Cycles: %d  Unknown: %d", c.Cycles, data.UnknownOpcodes),
		fmt.Sprintf("Keys: %s", keys.String()),
		fmt.Sprintf("Stack: %s", strings.Join(stack, " ")),
	)
}

func (t *Backend) drawRegisters(data *debug.CompleteDebugData, startX, startY, width int) {
	if data == nil || data.CPU == nil || width <= 0 {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range registerLines(data) {
		if i >= registerHeight {
			break
		}
		t.drawText(startX, startY+i, width, line, style)
	}
}

func (t *Backend) drawDisassembly(data *debug.CompleteDebugData, startX, startY, width int) {
	if data == nil || data.CPU == nil || data.Memory == nil || width <= 0 {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		useStyle := style
		if line.IsCurrent {
			useStyle = currentStyle
		}
		t.drawText(startX, startY+i, width, line.Instruction, useStyle)
	}
}

func (t *Backend) drawLogs(startX, startY, width, termHeight int) {
	if width <= 0 || startY >= termHeight-1 {
		return
	}

	availableHeight := termHeight - startY - 1
	logs := t.logBuffer.GetRecent(availableHeight)

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, logEntry := range logs {
		style := infoStyle
		switch {
		case logEntry.Level >= slog.LevelError:
			style = errStyle
		case logEntry.Level >= slog.LevelWarn:
			style = warnStyle
		case logEntry.Level < slog.LevelInfo:
			style = debugStyle
		}

		logText := render.FormatLogEntry(logEntry)
		if len(logText) > width && width > 3 {
			logText = logText[:width-3] + "..."
		}
		t.drawText(startX, startY+i, width, logText, style)
	}
}
