package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// CHIP-8 hex keypad, values match the key index
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorReset
	EmulatorQuit
)

// IsKeypad reports whether the action maps to one of the 16 keypad keys.
func (a Action) IsKeypad() bool {
	return a >= Key0 && a <= KeyF
}
