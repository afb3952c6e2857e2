package debug

import "github.com/valerio/go-chip8/chip8/cpu"

// CPUState contains all CPU register information for debugging
type CPUState struct {
	V  [cpu.RegisterCount]uint8
	I  uint16
	PC uint16
	SP uint8

	DelayTimer uint8
	SoundTimer uint8

	Opcode        uint16
	Stack         []uint16
	WaitingForKey bool
	Cycles        uint64
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// ReadMemory implements disasm.MemoryReader over the captured window.
// Addresses outside the window read as zero.
func (m *MemorySnapshot) ReadMemory(address uint16) byte {
	if address < m.StartAddr || int(address-m.StartAddr) >= len(m.Bytes) {
		return 0
	}
	return m.Bytes[address-m.StartAddr]
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerStepInstruction:
		return "step instruction"
	case DebuggerStepFrame:
		return "step frame"
	}
	return "unknown"
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	CPU            *CPUState
	Memory         *MemorySnapshot
	Keys           [16]bool
	DebuggerState  DebuggerState
	UnknownOpcodes uint64
}

// snapshotRadius is how many bytes around PC are captured for disassembly.
const snapshotRadius = 64

// ExtractCPUState copies the register file of c.
func ExtractCPUState(c *cpu.CPU) *CPUState {
	return &CPUState{
		V:             c.Registers(),
		I:             c.GetI(),
		PC:            c.GetPC(),
		SP:            c.GetSP(),
		DelayTimer:    c.GetDelayTimer(),
		SoundTimer:    c.GetSoundTimer(),
		Opcode:        c.GetCurrentOpcode(),
		Stack:         c.Stack(),
		WaitingForKey: c.WaitingForKey(),
		Cycles:        c.GetCycles(),
	}
}

// ExtractMemorySnapshot captures the memory window around PC.
func ExtractMemorySnapshot(c *cpu.CPU) *MemorySnapshot {
	mem := c.Memory()

	start := int(c.GetPC()) - snapshotRadius
	if start < 0 {
		start = 0
	}
	end := int(c.GetPC()) + snapshotRadius
	if end > len(mem) {
		end = len(mem)
	}

	bytes := make([]uint8, end-start)
	copy(bytes, mem[start:end])
	return &MemorySnapshot{StartAddr: uint16(start), Bytes: bytes}
}

// Extract gathers everything the debug panels display.
func Extract(c *cpu.CPU, state DebuggerState) *CompleteDebugData {
	return &CompleteDebugData{
		CPU:            ExtractCPUState(c),
		Memory:         ExtractMemorySnapshot(c),
		Keys:           c.Keys(),
		DebuggerState:  state,
		UnknownOpcodes: c.UnknownOpcodes(),
	}
}
