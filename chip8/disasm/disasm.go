package disasm

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// InstructionLength is the size of every CHIP-8 instruction in bytes.
const InstructionLength = 2

// MemoryReader is the read-only view of memory the disassembler needs.
type MemoryReader interface {
	ReadMemory(address uint16) byte
}

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address     uint16
	Opcode      uint16
	Instruction string
	Length      int
}

// Disassemble returns the mnemonic for a single instruction word.
// Words that do not decode to an instruction are rendered as data.
func Disassemble(opcode uint16) string {
	x := bit.Nibble(opcode, 2)
	y := bit.Nibble(opcode, 1)
	n := bit.Nibble(opcode, 0)
	nn := bit.Low(opcode)
	nnn := bit.Addr12(opcode)

	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP $%03X", nnn)
	case 0x2:
		return fmt.Sprintf("CALL $%03X", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%X, $%02X", x, nn)
	case 0x4:
		return fmt.Sprintf("SNE V%X, $%02X", x, nn)
	case 0x5:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, $%02X", x, nn)
	case 0x7:
		return fmt.Sprintf("ADD V%X, $%02X", x, nn)
	case 0x8:
		if name, ok := arithmeticNames[n]; ok {
			if n == 0x6 || n == 0xE {
				return fmt.Sprintf("%s V%X", name, x)
			}
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}
	case 0x9:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, $%03X", nnn)
	case 0xB:
		return fmt.Sprintf("JP V0, $%03X", nnn)
	case 0xC:
		return fmt.Sprintf("RND V%X, $%02X", x, nn)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, $%X", x, y, n)
	case 0xE:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if format, ok := miscFormats[nn]; ok {
			return fmt.Sprintf(format, x)
		}
	}

	return fmt.Sprintf("DW $%04X", opcode)
}

var arithmeticNames = map[uint8]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var miscFormats = map[uint8]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}

// DisassembleAt disassembles the instruction at the given program counter
func DisassembleAt(pc uint16, mem MemoryReader) DisassemblyLine {
	opcode := bit.Combine(mem.ReadMemory(pc), mem.ReadMemory(pc+1))
	return DisassemblyLine{
		Address:     pc,
		Opcode:      opcode,
		Instruction: Disassemble(opcode),
		Length:      InstructionLength,
	}
}

// DisassembleRange disassembles multiple instructions starting from the given PC
func DisassembleRange(startPC uint16, count int, mem MemoryReader) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, count)
	pc := startPC

	for i := 0; i < count && int(pc)+InstructionLength <= addressSpace; i++ {
		line := DisassembleAt(pc, mem)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}

	return lines
}

// DisassembleAround disassembles instructions around the given PC.
// Instructions are fixed width so walking backwards is exact, but the window
// is clipped at the start and end of the address space.
func DisassembleAround(currentPC uint16, beforeCount, afterCount int, mem MemoryReader) []DisassemblyLine {
	start := int(currentPC) - beforeCount*InstructionLength
	for start < 0 {
		start += InstructionLength
	}
	before := (int(currentPC) - start) / InstructionLength
	return DisassembleRange(uint16(start), before+1+afterCount, mem)
}

// FormatDisassemblyLine formats a disassembly line for display
func FormatDisassemblyLine(line DisassemblyLine, isCurrentPC bool) string {
	prefix := " "
	if isCurrentPC {
		prefix = "→"
	}

	return fmt.Sprintf("%s0x%03X: %04X  %s", prefix, line.Address, line.Opcode, line.Instruction)
}

const addressSpace = 0x1000
