package debug

import "github.com/valerio/go-chip8/chip8/disasm"

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly renders up to maxLines instructions centered on pc.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	pcInSnapshot := pc >= snapshot.StartAddr && int(pc-snapshot.StartAddr) < len(snapshot.Bytes)
	if !pcInSnapshot {
		return []DisasmLine{{Address: pc, Instruction: "[PC outside snapshot range]", IsCurrent: true}}
	}

	before := (maxLines - 1) / 2
	after := maxLines - 1 - before
	lines := disasm.DisassembleAround(pc, before, after, snapshot)

	out := make([]DisasmLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, DisasmLine{
			Address:     line.Address,
			Instruction: disasm.FormatDisassemblyLine(line, line.Address == pc),
			IsCurrent:   line.Address == pc,
		})
	}
	return out
}
