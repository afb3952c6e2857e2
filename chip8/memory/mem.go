package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

const (
	// Size is the total amount of addressable memory, 4KB.
	Size = 0x1000
	// ProgramStart is where ROMs are loaded and where execution begins.
	ProgramStart = 0x200
	// MaxProgramSize is the largest ROM that fits between ProgramStart and the end of memory.
	MaxProgramSize = Size - ProgramStart

	addressMask = Size - 1
)

// ErrCapacityExceeded is returned when data does not fit in the target memory region.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// RAM is the flat 4KB CHIP-8 address space.
// Addresses are 12 bit wide, anything above 0xFFF wraps around.
type RAM [Size]byte

// Read returns the byte at the given address.
func (m *RAM) Read(address uint16) byte {
	return m[address&addressMask]
}

// Write stores a byte at the given address.
func (m *RAM) Write(address uint16, value byte) {
	m[address&addressMask] = value
}

// ReadWord returns the big endian 16 bit word stored at address and address+1.
func (m *RAM) ReadWord(address uint16) uint16 {
	return bit.Combine(m.Read(address), m.Read(address+1))
}

// Load copies data verbatim starting at offset.
// Nothing is written if data does not fit before the end of memory.
func (m *RAM) Load(offset uint16, data []byte) error {
	if int(offset) >= Size {
		return fmt.Errorf("load at 0x%04X: %w", offset, ErrCapacityExceeded)
	}

	available := Size - int(offset)
	if len(data) > available {
		return fmt.Errorf("%d bytes at 0x%03X, %d available: %w", len(data), offset, available, ErrCapacityExceeded)
	}

	copy(m[offset:], data)
	return nil
}

// Clear zeroes the whole address space.
func (m *RAM) Clear() {
	*m = RAM{}
}
