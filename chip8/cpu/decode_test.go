package cpu

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-chip8/chip8/memory"
)

func uint8ToKey(key int) memory.Key {
	return memory.Key(key)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		want   Opcode
	}{
		{name: "CLS", opcode: 0x00E0, want: opcode00E0},
		{name: "RET", opcode: 0x00EE, want: opcode00EE},
		{name: "SYS is not supported", opcode: 0x0123, want: unknown},
		{name: "JP", opcode: 0x1234, want: opcode1NNN},
		{name: "CALL", opcode: 0x2345, want: opcode2NNN},
		{name: "SE byte", opcode: 0x3456, want: opcode3XNN},
		{name: "SNE byte", opcode: 0x4567, want: opcode4XNN},
		{name: "SE registers", opcode: 0x5670, want: opcode5XY0},
		{name: "5XY1 is invalid", opcode: 0x5671, want: unknown},
		{name: "LD byte", opcode: 0x6789, want: opcode6XNN},
		{name: "ADD byte", opcode: 0x789A, want: opcode7XNN},
		{name: "LD registers", opcode: 0x8AB0, want: opcode8XY0},
		{name: "SHL", opcode: 0x8ABE, want: opcode8XYE},
		{name: "8XY8 is invalid", opcode: 0x8AB8, want: unknown},
		{name: "SNE registers", opcode: 0x9AB0, want: opcode9XY0},
		{name: "9XYF is invalid", opcode: 0x9ABF, want: unknown},
		{name: "LD I", opcode: 0xABCD, want: opcodeANNN},
		{name: "JP V0", opcode: 0xBCDE, want: opcodeBNNN},
		{name: "RND", opcode: 0xCDEF, want: opcodeCXNN},
		{name: "DRW", opcode: 0xDEF1, want: opcodeDXYN},
		{name: "SKP", opcode: 0xE19E, want: opcodeEX9E},
		{name: "SKNP", opcode: 0xE1A1, want: opcodeEXA1},
		{name: "E100 is invalid", opcode: 0xE100, want: unknown},
		{name: "LD Vx DT", opcode: 0xF107, want: opcodeFX07},
		{name: "LD Vx K", opcode: 0xF10A, want: opcodeFX0A},
		{name: "LD DT", opcode: 0xF115, want: opcodeFX15},
		{name: "LD ST", opcode: 0xF118, want: opcodeFX18},
		{name: "ADD I", opcode: 0xF11E, want: opcodeFX1E},
		{name: "LD F", opcode: 0xF129, want: opcodeFX29},
		{name: "LD B", opcode: 0xF133, want: opcodeFX33},
		{name: "LD [I]", opcode: 0xF155, want: opcodeFX55},
		{name: "LD Vx [I]", opcode: 0xF165, want: opcodeFX65},
		{name: "F1FF is invalid", opcode: 0xF1FF, want: unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.opcode)
			assert.Equal(t,
				reflect.ValueOf(tt.want).Pointer(),
				reflect.ValueOf(got).Pointer(),
				"opcode %04X decoded to the wrong handler", tt.opcode)
		})
	}
}
