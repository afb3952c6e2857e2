package cpu

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/memory"
)

var (
	// ErrCapacityExceeded is returned by LoadProgram for ROMs larger than memory.MaxProgramSize.
	ErrCapacityExceeded = memory.ErrCapacityExceeded
	// ErrStackOverflow is returned when a CALL would nest deeper than StackDepth.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when a RET executes with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrUnknownOpcode is returned for words that do not decode to an instruction.
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// UnknownOpcodeError reports an undecodable instruction.
// It is not fatal: the PC has already moved past it.
type UnknownOpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04X at 0x%03X", e.Opcode, e.PC)
}

func (e *UnknownOpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// StackError reports a call stack overflow or underflow.
// The instruction was rejected and the CPU state is unchanged.
type StackError struct {
	Err    error
	Opcode uint16
	PC     uint16
	Depth  int
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%v: opcode 0x%04X at 0x%03X with depth %d", e.Err, e.Opcode, e.PC, e.Depth)
}

func (e *StackError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err means execution cannot meaningfully continue.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStackOverflow) || errors.Is(err, ErrStackUnderflow)
}

// errAwaitingKey is returned internally by FX0A while no key is pressed.
var errAwaitingKey = errors.New("awaiting key press")
