package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	// StackDepth is the maximum number of nested subroutine calls.
	StackDepth = 16
	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16

	flagRegister = 0xF
)

// CPU holds the complete CHIP-8 machine state: memory, registers, stack,
// timers, screen and keypad. It performs no I/O; hosts drive it with Step
// and read the screen, draw flag and beep signal between steps.
// A CPU is not safe for concurrent use.
type CPU struct {
	// registers
	v  [RegisterCount]uint8
	i  uint16
	pc uint16
	sp uint8

	stack [StackDepth]uint16

	delayTimer uint8
	soundTimer uint8

	mem    memory.RAM
	keys   memory.Keypad
	screen video.FrameBuffer

	// metadata
	currentOpcode  uint16
	cycles         uint64
	unknownOpcodes uint64
	drawFlag       bool
	beepPending    bool

	// set by FX0A while no key is pressed
	awaitingKey bool

	rng *rand.Rand
}

// New returns a CPU in its power-on state.
func New() *CPU {
	now := uint64(time.Now().UnixNano())
	c := &CPU{
		rng: rand.New(rand.NewPCG(now, now>>1)),
	}
	c.Reset()
	return c
}

// Seed makes CXNN produce a reproducible sequence.
func (c *CPU) Seed(seed uint64) {
	c.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Reset puts the machine back into its power-on state, discarding any loaded program.
// The font set is placed at 0x000 and mirrored at FontAddress for FX29.
func (c *CPU) Reset() {
	c.mem.Clear()
	copy(c.mem[:], fontSet[:])
	copy(c.mem[FontAddress:], fontSet[:])

	c.v = [RegisterCount]uint8{}
	c.i = 0
	c.pc = memory.ProgramStart
	c.sp = 0
	c.stack = [StackDepth]uint16{}
	c.delayTimer = 0
	c.soundTimer = 0
	c.keys.Reset()
	c.screen.Clear()

	c.currentOpcode = 0
	c.cycles = 0
	c.unknownOpcodes = 0
	c.drawFlag = false
	c.beepPending = false
	c.awaitingKey = false
}

// LoadProgram copies a ROM into memory starting at 0x200.
// ROMs larger than memory.MaxProgramSize are rejected and memory is left untouched.
// Registers and PC are not modified, call Reset first to start from a clean state.
func (c *CPU) LoadProgram(data []byte) error {
	if len(data) > memory.MaxProgramSize {
		return fmt.Errorf("program is %d bytes, limit is %d: %w", len(data), memory.MaxProgramSize, ErrCapacityExceeded)
	}
	return c.mem.Load(memory.ProgramStart, data)
}

// Step runs a single fetch-decode-execute cycle followed by one timer tick.
//
// Unknown opcodes are skipped and reported with an *UnknownOpcodeError.
// Stack overflow/underflow return a *StackError and leave the state untouched,
// including PC and timers. While FX0A waits for a key, Step returns nil without
// advancing PC or ticking the timers.
func (c *CPU) Step() error {
	pc := c.pc
	c.currentOpcode = c.mem.ReadWord(pc)
	instruction := Decode(c.currentOpcode)

	c.pc = bit.Addr12(pc + 2)
	err := instruction(c)

	switch {
	case err == nil:
	case errors.Is(err, errAwaitingKey):
		c.pc = pc
		return nil
	case IsFatal(err):
		c.pc = pc
		return err
	case errors.Is(err, ErrUnknownOpcode):
		c.unknownOpcodes++
	}

	c.cycles++
	c.TickTimers()
	return err
}

// TickTimers decrements both timers by one if they are above zero.
// The sound timer going from 1 to 0 raises the beep signal.
// Step calls this once per executed instruction.
func (c *CPU) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}

	if c.soundTimer > 0 {
		if c.soundTimer == 1 {
			c.beepPending = true
		}
		c.soundTimer--
	}
}

func (c *CPU) pushStack(address uint16) error {
	if int(c.sp) >= StackDepth {
		return &StackError{Err: ErrStackOverflow, Opcode: c.currentOpcode, PC: bit.Addr12(c.pc - 2), Depth: int(c.sp)}
	}
	c.stack[c.sp] = address
	c.sp++
	return nil
}

func (c *CPU) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, &StackError{Err: ErrStackUnderflow, Opcode: c.currentOpcode, PC: bit.Addr12(c.pc - 2), Depth: 0}
	}
	c.sp--
	return c.stack[c.sp], nil
}

// SetKey updates the state of a single keypad key.
func (c *CPU) SetKey(key memory.Key, pressed bool) {
	c.keys.Set(key, pressed)
}

// SetKeys replaces the state of the whole keypad.
func (c *CPU) SetKeys(state [memory.KeyCount]bool) {
	c.keys.SetState(state)
}

// DrawFlag reports whether the screen changed since the flag was last cleared.
func (c *CPU) DrawFlag() bool { return c.drawFlag }

// ClearDrawFlag marks the current frame as consumed.
func (c *CPU) ClearDrawFlag() { c.drawFlag = false }

// ConsumeBeep reports whether the sound timer expired since the last call.
func (c *CPU) ConsumeBeep() bool {
	beep := c.beepPending
	c.beepPending = false
	return beep
}

// WaitingForKey reports whether FX0A is blocking on a key press.
func (c *CPU) WaitingForKey() bool { return c.awaitingKey }

// Frame returns a copy of the screen.
func (c *CPU) Frame() video.FrameBuffer { return c.screen }

// Memory returns a copy of the address space.
func (c *CPU) Memory() memory.RAM { return c.mem }

// ReadMemory returns a single byte of memory.
func (c *CPU) ReadMemory(address uint16) byte { return c.mem.Read(address) }

// Registers returns a copy of V0-VF.
func (c *CPU) Registers() [RegisterCount]uint8 { return c.v }

// Keys returns a copy of the keypad state.
func (c *CPU) Keys() [memory.KeyCount]bool { return c.keys.State() }

// Stack returns the active part of the call stack, oldest frame first.
func (c *CPU) Stack() []uint16 {
	frames := make([]uint16, c.sp)
	copy(frames, c.stack[:c.sp])
	return frames
}

// GetPC returns the address of the next instruction.
func (c *CPU) GetPC() uint16 { return c.pc }

// GetI returns the index register.
func (c *CPU) GetI() uint16 { return c.i }

// GetSP returns the number of active stack frames.
func (c *CPU) GetSP() uint8 { return c.sp }

// GetDelayTimer returns the delay timer value.
func (c *CPU) GetDelayTimer() uint8 { return c.delayTimer }

// GetSoundTimer returns the sound timer value.
func (c *CPU) GetSoundTimer() uint8 { return c.soundTimer }

// GetCurrentOpcode returns the last fetched instruction word.
func (c *CPU) GetCurrentOpcode() uint16 { return c.currentOpcode }

// GetCycles returns the number of completed instructions.
func (c *CPU) GetCycles() uint64 { return c.cycles }

// UnknownOpcodes returns how many undecodable words were skipped.
func (c *CPU) UnknownOpcodes() uint64 { return c.unknownOpcodes }

// GetRegister returns VX. Only the low nibble of x is used.
func (c *CPU) GetRegister(x uint8) uint8 { return c.v[x&0x0F] }
