package cpu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
)

// newWithProgram returns a seeded CPU with the given instruction words loaded at 0x200.
func newWithProgram(t *testing.T, words ...uint16) *CPU {
	t.Helper()

	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), bit.Low(w))
	}

	cpu := New()
	cpu.Seed(1)
	require.NoError(t, cpu.LoadProgram(rom))
	return cpu
}

func TestCPU_New(t *testing.T) {
	cpu := New()

	mem := cpu.Memory()
	assert.Len(t, mem, 4096)
	assert.Len(t, cpu.Registers(), 16)
	assert.Len(t, cpu.Keys(), 16)

	font := Font()
	if diff := cmp.Diff(font[:], mem[:FontSize]); diff != "" {
		t.Errorf("font set at 0x000 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(font[:], mem[FontAddress:FontAddress+FontSize]); diff != "" {
		t.Errorf("font set at 0x050 (-want +got):\n%s", diff)
	}

	assert.Equal(t, uint16(0), cpu.GetI())
	assert.Equal(t, uint16(0x200), cpu.GetPC())
	assert.Equal(t, uint8(0), cpu.GetDelayTimer())
	assert.Equal(t, uint8(0), cpu.GetSoundTimer())
	assert.Empty(t, cpu.Stack())
	assert.False(t, cpu.DrawFlag())
	assert.Equal(t, 0, cpu.Frame().LitCount())
}

func TestCPU_ResetDiscardsState(t *testing.T) {
	cpu := newWithProgram(t, 0x6A42, 0xA123, 0x2300)
	for i := 0; i < 3; i++ {
		require.NoError(t, cpu.Step())
	}
	cpu.SetKey(0x5, true)

	cpu.Reset()

	fresh := New()
	assert.Equal(t, fresh.Memory(), cpu.Memory(), "program must be discarded")
	assert.Equal(t, fresh.Registers(), cpu.Registers())
	assert.Equal(t, uint16(0x200), cpu.GetPC())
	assert.Equal(t, uint16(0), cpu.GetI())
	assert.Empty(t, cpu.Stack())
	assert.Equal(t, [16]bool{}, cpu.Keys())
	assert.Equal(t, uint64(0), cpu.GetCycles())
}

func TestCPU_LoadProgram(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		cpu := New()
		rom := []byte("abcdefg")

		require.NoError(t, cpu.LoadProgram(rom))

		mem := cpu.Memory()
		if diff := cmp.Diff(rom, mem[0x200:0x207]); diff != "" {
			t.Errorf("loaded program (-want +got):\n%s", diff)
		}
		assert.Equal(t, byte(0), mem[0x207])
	})

	t.Run("largest program fits", func(t *testing.T) {
		cpu := New()
		rom := make([]byte, 3584)
		rom[len(rom)-1] = 0xAA

		require.NoError(t, cpu.LoadProgram(rom))
		assert.Equal(t, byte(0xAA), cpu.ReadMemory(0xFFF))
	})

	t.Run("too large", func(t *testing.T) {
		for _, size := range []int{3585, 4096} {
			cpu := New()
			rom := make([]byte, size)
			for i := range rom {
				rom[i] = 0xFF
			}

			err := cpu.LoadProgram(rom)

			require.ErrorIs(t, err, ErrCapacityExceeded)
			mem := cpu.Memory()
			assert.Equal(t, make([]byte, 3584), mem[0x200:], "memory must be untouched")
		}
	})

	t.Run("does not reset registers", func(t *testing.T) {
		cpu := newWithProgram(t, 0x6107)
		require.NoError(t, cpu.Step())

		require.NoError(t, cpu.LoadProgram([]byte{0x00, 0xE0}))
		assert.Equal(t, uint8(0x07), cpu.GetRegister(1))
		assert.Equal(t, uint16(0x202), cpu.GetPC())
	})
}

func TestCPU_StepFetchesBigEndian(t *testing.T) {
	cpu := newWithProgram(t, 0xA2F0)

	require.NoError(t, cpu.Step())

	assert.Equal(t, uint16(0xA2F0), cpu.GetCurrentOpcode())
	assert.Equal(t, uint16(0x2F0), cpu.GetI())
	assert.Equal(t, uint16(0x202), cpu.GetPC())
	assert.Equal(t, uint64(1), cpu.GetCycles())
}

func TestCPU_Timers(t *testing.T) {
	testCases := []struct {
		desc      string
		delay     uint8
		sound     uint8
		wantDelay uint8
		wantSound uint8
		wantBeep  bool
	}{
		{desc: "idle timers stay at zero", delay: 0, sound: 0, wantDelay: 0, wantSound: 0},
		{desc: "timers count down", delay: 10, sound: 5, wantDelay: 9, wantSound: 4},
		{desc: "sound timer expiring beeps", delay: 0, sound: 1, wantDelay: 0, wantSound: 0, wantBeep: true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			// LD V0, 0 is a harmless instruction to step over
			cpu := newWithProgram(t, 0x6000)
			cpu.delayTimer = tC.delay
			cpu.soundTimer = tC.sound

			require.NoError(t, cpu.Step())

			assert.Equal(t, tC.wantDelay, cpu.GetDelayTimer())
			assert.Equal(t, tC.wantSound, cpu.GetSoundTimer())
			assert.Equal(t, tC.wantBeep, cpu.ConsumeBeep())
			assert.False(t, cpu.ConsumeBeep(), "beep must be reported only once")
		})
	}
}

func TestCPU_BeepFiresOnce(t *testing.T) {
	// LD V0, 3; LD ST, V0; then jump to self
	cpu := newWithProgram(t, 0x6003, 0xF018, 0x1204)

	beeps := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, cpu.Step())
		if cpu.ConsumeBeep() {
			beeps++
		}
	}

	assert.Equal(t, 1, beeps)
	assert.Equal(t, uint8(0), cpu.GetSoundTimer())
}

func TestCPU_SubroutineRoundTrip(t *testing.T) {
	// 0x200: CALL 0x206
	// 0x202: LD V1, 0x01
	// 0x204: JP 0x204
	// 0x206: LD V2, 0x02
	// 0x208: RET
	cpu := newWithProgram(t, 0x2206, 0x6101, 0x1204, 0x6202, 0x00EE)

	require.NoError(t, cpu.Step())
	assert.Equal(t, uint16(0x206), cpu.GetPC())
	assert.Equal(t, []uint16{0x202}, cpu.Stack())

	require.NoError(t, cpu.Step())
	require.NoError(t, cpu.Step())
	assert.Equal(t, uint16(0x202), cpu.GetPC(), "RET resumes right after the CALL")
	assert.Empty(t, cpu.Stack())

	require.NoError(t, cpu.Step())
	assert.Equal(t, uint8(0x01), cpu.GetRegister(1))
	assert.Equal(t, uint8(0x02), cpu.GetRegister(2))
}

func TestCPU_StackDepth(t *testing.T) {
	// CALL 0x200 recurses forever
	cpu := newWithProgram(t, 0x2200)

	for depth := 1; depth <= StackDepth; depth++ {
		require.NoError(t, cpu.Step(), "call %d must succeed", depth)
	}
	assert.Len(t, cpu.Stack(), 16)

	cpu.delayTimer = 5
	before := cpu.Registers()

	err := cpu.Step()

	require.ErrorIs(t, err, ErrStackOverflow)
	assert.True(t, IsFatal(err))
	var stackErr *StackError
	require.ErrorAs(t, err, &stackErr)
	assert.Equal(t, uint16(0x200), stackErr.PC)
	assert.Equal(t, 16, stackErr.Depth)

	assert.Equal(t, uint16(0x200), cpu.GetPC(), "PC must be left on the failing instruction")
	assert.Len(t, cpu.Stack(), 16)
	assert.Equal(t, before, cpu.Registers())
	assert.Equal(t, uint8(5), cpu.GetDelayTimer(), "rejected cycles do not tick timers")
}

func TestCPU_StackUnderflow(t *testing.T) {
	cpu := newWithProgram(t, 0x00EE)

	err := cpu.Step()

	require.ErrorIs(t, err, ErrStackUnderflow)
	assert.True(t, IsFatal(err))
	assert.Equal(t, uint16(0x200), cpu.GetPC())
	assert.Equal(t, uint64(0), cpu.GetCycles())
}

func TestCPU_UnknownOpcode(t *testing.T) {
	testCases := []uint16{0x0123, 0x5121, 0x8128, 0x812F, 0x9121, 0xE1FF, 0xF1FF, 0x00FF}
	for _, opcode := range testCases {
		cpu := newWithProgram(t, opcode, 0x6A01)
		cpu.delayTimer = 2

		err := cpu.Step()

		require.ErrorIsf(t, err, ErrUnknownOpcode, "opcode %04X", opcode)
		assert.False(t, IsFatal(err))
		var opErr *UnknownOpcodeError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, opcode, opErr.Opcode)
		assert.Equal(t, uint16(0x200), opErr.PC)

		assert.Equal(t, uint16(0x202), cpu.GetPC(), "execution continues after unknown opcodes")
		assert.Equal(t, uint8(1), cpu.GetDelayTimer())
		assert.Equal(t, uint64(1), cpu.UnknownOpcodes())

		require.NoError(t, cpu.Step())
		assert.Equal(t, uint8(1), cpu.GetRegister(0xA))
	}
}

func TestCPU_WaitForKey(t *testing.T) {
	// LD V3, K
	cpu := newWithProgram(t, 0xF30A)
	cpu.delayTimer = 10

	for i := 0; i < 3; i++ {
		require.NoError(t, cpu.Step())
		assert.True(t, cpu.WaitingForKey())
		assert.Equal(t, uint16(0x200), cpu.GetPC())
	}
	assert.Equal(t, uint8(10), cpu.GetDelayTimer(), "no timer tick while waiting")

	cpu.SetKey(0xC, true)
	cpu.SetKey(0x7, true)
	require.NoError(t, cpu.Step())

	assert.False(t, cpu.WaitingForKey())
	assert.Equal(t, uint8(0x7), cpu.GetRegister(3), "lowest pressed key wins")
	assert.Equal(t, uint16(0x202), cpu.GetPC())
	assert.Equal(t, uint8(9), cpu.GetDelayTimer())
}

func TestFont_ReturnsCopy(t *testing.T) {
	font := Font()
	font[0] = 0x00

	cpu := New()
	assert.Equal(t, byte(0xF0), cpu.ReadMemory(0x000))
	assert.Equal(t, byte(0xF0), cpu.ReadMemory(FontAddress))
	assert.Equal(t, byte(0xF0), Font()[0])
}

func TestCPU_ProgramCounterWraps(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		v0     uint8
		want   uint16
	}{
		{name: "fetch at the last word", opcode: 0x6105, want: 0x000},
		{name: "skip past the end", opcode: 0x3000, v0: 0x00, want: 0x002},
		{name: "no skip at the end", opcode: 0x3001, v0: 0x00, want: 0x000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := New()
			cpu.mem.Write(0xFFE, byte(tt.opcode>>8))
			cpu.mem.Write(0xFFF, byte(tt.opcode))
			cpu.pc = 0xFFE
			cpu.v[0] = tt.v0

			require.NoError(t, cpu.Step())
			assert.Equal(t, tt.want, cpu.GetPC())
		})
	}
}

func TestCPU_ErrorsReportWrappedPC(t *testing.T) {
	t.Run("unknown opcode", func(t *testing.T) {
		cpu := New()
		cpu.mem.Write(0xFFE, 0xFF)
		cpu.mem.Write(0xFFF, 0xFF)
		cpu.pc = 0xFFE

		err := cpu.Step()
		var opErr *UnknownOpcodeError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, uint16(0xFFE), opErr.PC)
		assert.Equal(t, uint16(0x000), cpu.GetPC())
	})

	t.Run("stack underflow", func(t *testing.T) {
		cpu := New()
		cpu.mem.Write(0xFFE, 0x00)
		cpu.mem.Write(0xFFF, 0xEE)
		cpu.pc = 0xFFE

		err := cpu.Step()
		var stackErr *StackError
		require.ErrorAs(t, err, &stackErr)
		assert.Equal(t, uint16(0xFFE), stackErr.PC)
		assert.Equal(t, uint16(0xFFE), cpu.GetPC())
	})
}

func TestCPU_CopiesDoNotAlias(t *testing.T) {
	cpu := newWithProgram(t, 0x6001)

	mem := cpu.Memory()
	mem[0x200] = 0
	assert.Equal(t, byte(0x60), cpu.ReadMemory(0x200))

	regs := cpu.Registers()
	regs[0] = 0xFF
	assert.Equal(t, uint8(0), cpu.GetRegister(0))

	frame := cpu.Frame()
	frame.TogglePixel(0, 0)
	fresh := cpu.Frame()
	assert.Equal(t, 0, fresh.LitCount())

	keys := cpu.Keys()
	keys[1] = true
	assert.False(t, cpu.Keys()[1])
}

func TestCPU_SetKeys(t *testing.T) {
	cpu := New()
	var state [memory.KeyCount]bool
	state[0xF] = true

	cpu.SetKeys(state)
	assert.True(t, cpu.Keys()[0xF])

	cpu.SetKey(0xF, false)
	assert.False(t, cpu.Keys()[0xF])
}

func TestCPU_Seed(t *testing.T) {
	run := func() uint8 {
		cpu := newWithProgram(t, 0xC0FF)
		cpu.Seed(42)
		require.NoError(t, cpu.Step())
		return cpu.GetRegister(0)
	}

	assert.Equal(t, run(), run(), "seeded CPUs must produce the same random bytes")
}
