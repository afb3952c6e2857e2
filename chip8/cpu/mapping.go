package cpu

import "github.com/valerio/go-chip8/chip8/bit"

// Opcode represents a function that executes an instruction.
// PC has already been advanced past the instruction when it runs.
type Opcode func(*CPU) error

// Decode returns the handler for a 16 bit instruction word.
// Dispatch happens on the top nibble, then on the low nibble or low byte for
// the 0, 8, E and F groups. Words that match nothing decode to unknown.
func Decode(opcode uint16) Opcode {
	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return opcode00E0
		case 0x00EE:
			return opcode00EE
		}
		return unknown
	case 0x5, 0x9:
		if bit.Nibble(opcode, 0) != 0 {
			return unknown
		}
	case 0x8:
		return arithmetic[bit.Nibble(opcode, 0)]
	case 0xE:
		switch bit.Low(opcode) {
		case 0x9E:
			return opcodeEX9E
		case 0xA1:
			return opcodeEXA1
		}
		return unknown
	case 0xF:
		if op, ok := misc[bit.Low(opcode)]; ok {
			return op
		}
		return unknown
	}

	return opcodes[bit.Nibble(opcode, 3)]
}

var opcodes = [16]Opcode{
	unknown, opcode1NNN, opcode2NNN, opcode3XNN,
	opcode4XNN, opcode5XY0, opcode6XNN, opcode7XNN,
	unknown, opcode9XY0, opcodeANNN, opcodeBNNN,
	opcodeCXNN, opcodeDXYN, unknown, unknown,
}

// arithmetic is indexed by the low nibble of 8XYN instructions.
var arithmetic = [16]Opcode{
	opcode8XY0, opcode8XY1, opcode8XY2, opcode8XY3,
	opcode8XY4, opcode8XY5, opcode8XY6, opcode8XY7,
	unknown, unknown, unknown, unknown,
	unknown, unknown, opcode8XYE, unknown,
}

// misc is keyed by the low byte of FXNN instructions.
var misc = map[uint8]Opcode{
	0x07: opcodeFX07,
	0x0A: opcodeFX0A,
	0x15: opcodeFX15,
	0x18: opcodeFX18,
	0x1E: opcodeFX1E,
	0x29: opcodeFX29,
	0x33: opcodeFX33,
	0x55: opcodeFX55,
	0x65: opcodeFX65,
}
