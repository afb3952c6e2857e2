package memory

// Key is one of the 16 hexadecimal keys of the CHIP-8 keypad.
type Key uint8

// KeyCount is the number of keys on the keypad.
const KeyCount = 16

// Keypad holds the pressed state of the 16 keys.
//
//	Keypad
//	+-+-+-+-+
//	|1|2|3|C|
//	|4|5|6|D|
//	|7|8|9|E|
//	|A|0|B|F|
//	+-+-+-+-+
type Keypad struct {
	pressed [KeyCount]bool
}

// Set updates a key to the given state.
func (k *Keypad) Set(key Key, pressed bool) {
	k.pressed[key&0x0F] = pressed
}

// IsPressed reports whether the key is currently held down.
// Only the low nibble of key is considered.
func (k *Keypad) IsPressed(key Key) bool {
	return k.pressed[key&0x0F]
}

// FirstPressed returns the lowest index key currently held down.
func (k *Keypad) FirstPressed() (Key, bool) {
	for i, down := range k.pressed {
		if down {
			return Key(i), true
		}
	}
	return 0, false
}

// State returns a copy of the key states.
func (k *Keypad) State() [KeyCount]bool {
	return k.pressed
}

// SetState replaces all key states at once.
func (k *Keypad) SetState(state [KeyCount]bool) {
	k.pressed = state
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.pressed = [KeyCount]bool{}
}
