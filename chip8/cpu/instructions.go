package cpu

import (
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
)

// operand helpers, all read from the opcode currently executing

func (c *CPU) x() uint8    { return bit.Nibble(c.currentOpcode, 2) }
func (c *CPU) y() uint8    { return bit.Nibble(c.currentOpcode, 1) }
func (c *CPU) n() uint8    { return bit.Nibble(c.currentOpcode, 0) }
func (c *CPU) nn() uint8   { return bit.Low(c.currentOpcode) }
func (c *CPU) nnn() uint16 { return bit.Addr12(c.currentOpcode) }

func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc = bit.Addr12(c.pc + 2)
	}
}

// setWithFlag writes the result first and the flag last, so VF as a
// destination ends up holding the flag.
func (c *CPU) setWithFlag(x uint8, value uint8, flag bool) {
	c.v[x] = value
	if flag {
		c.v[flagRegister] = 1
	} else {
		c.v[flagRegister] = 0
	}
}

func unknown(c *CPU) error {
	return &UnknownOpcodeError{Opcode: c.currentOpcode, PC: bit.Addr12(c.pc - 2)}
}

//CLS
//#0x00E0:
func opcode00E0(c *CPU) error {
	c.screen.Clear()
	c.drawFlag = true
	return nil
}

//RET
//#0x00EE:
func opcode00EE(c *CPU) error {
	address, err := c.popStack()
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

//JP addr
//#0x1NNN:
func opcode1NNN(c *CPU) error {
	c.pc = c.nnn()
	return nil
}

//CALL addr
//#0x2NNN:
func opcode2NNN(c *CPU) error {
	// PC already points at the next instruction, which is the return address.
	if err := c.pushStack(c.pc); err != nil {
		return err
	}
	c.pc = c.nnn()
	return nil
}

//SE Vx, byte
//#0x3XNN:
func opcode3XNN(c *CPU) error {
	c.skipIf(c.v[c.x()] == c.nn())
	return nil
}

//SNE Vx, byte
//#0x4XNN:
func opcode4XNN(c *CPU) error {
	c.skipIf(c.v[c.x()] != c.nn())
	return nil
}

//SE Vx, Vy
//#0x5XY0:
func opcode5XY0(c *CPU) error {
	c.skipIf(c.v[c.x()] == c.v[c.y()])
	return nil
}

//LD Vx, byte
//#0x6XNN:
func opcode6XNN(c *CPU) error {
	c.v[c.x()] = c.nn()
	return nil
}

//ADD Vx, byte
//#0x7XNN:
func opcode7XNN(c *CPU) error {
	c.v[c.x()] += c.nn()
	return nil
}

//LD Vx, Vy
//#0x8XY0:
func opcode8XY0(c *CPU) error {
	c.v[c.x()] = c.v[c.y()]
	return nil
}

//OR Vx, Vy
//#0x8XY1:
func opcode8XY1(c *CPU) error {
	c.v[c.x()] |= c.v[c.y()]
	return nil
}

//AND Vx, Vy
//#0x8XY2:
func opcode8XY2(c *CPU) error {
	c.v[c.x()] &= c.v[c.y()]
	return nil
}

//XOR Vx, Vy
//#0x8XY3:
func opcode8XY3(c *CPU) error {
	c.v[c.x()] ^= c.v[c.y()]
	return nil
}

//ADD Vx, Vy
//#0x8XY4:
func opcode8XY4(c *CPU) error {
	result, carry := bit.CheckedAdd(c.v[c.x()], c.v[c.y()])
	c.setWithFlag(c.x(), result, carry)
	return nil
}

//SUB Vx, Vy
//#0x8XY5:
func opcode8XY5(c *CPU) error {
	result, borrow := bit.CheckedSub(c.v[c.x()], c.v[c.y()])
	c.setWithFlag(c.x(), result, !borrow)
	return nil
}

//SHR Vx
//#0x8XY6:
func opcode8XY6(c *CPU) error {
	value := c.v[c.x()]
	c.setWithFlag(c.x(), value>>1, bit.IsSet(0, value))
	return nil
}

//SUBN Vx, Vy
//#0x8XY7:
func opcode8XY7(c *CPU) error {
	result, borrow := bit.CheckedSub(c.v[c.y()], c.v[c.x()])
	c.setWithFlag(c.x(), result, !borrow)
	return nil
}

//SHL Vx
//#0x8XYE:
func opcode8XYE(c *CPU) error {
	value := c.v[c.x()]
	c.setWithFlag(c.x(), value<<1, bit.IsSet(7, value))
	return nil
}

//SNE Vx, Vy
//#0x9XY0:
func opcode9XY0(c *CPU) error {
	c.skipIf(c.v[c.x()] != c.v[c.y()])
	return nil
}

//LD I, addr
//#0xANNN:
func opcodeANNN(c *CPU) error {
	c.i = c.nnn()
	return nil
}

//JP V0, addr
//#0xBNNN:
func opcodeBNNN(c *CPU) error {
	c.pc = bit.Addr12(c.nnn() + uint16(c.v[0]))
	return nil
}

//RND Vx, byte
//#0xCXNN:
func opcodeCXNN(c *CPU) error {
	c.v[c.x()] = uint8(c.rng.UintN(256)) & c.nn()
	return nil
}

//DRW Vx, Vy, nibble
//#0xDXYN:
func opcodeDXYN(c *CPU) error {
	c.drawSprite(c.v[c.x()], c.v[c.y()], c.n())
	return nil
}

// drawSprite XORs an 8 pixel wide, height rows tall sprite read from I onto the
// screen at (x, y). Pixels wrap around the screen edges. VF is set when any lit
// pixel gets erased.
func (c *CPU) drawSprite(x, y, height uint8) {
	c.v[flagRegister] = 0

	for row := uint8(0); row < height; row++ {
		line := c.mem.Read(c.i + uint16(row))
		for col := uint8(0); col < 8; col++ {
			if !bit.IsSet(7-col, line) {
				continue
			}
			if c.screen.TogglePixel(uint(x)+uint(col), uint(y)+uint(row)) {
				c.v[flagRegister] = 1
			}
		}
	}

	c.drawFlag = true
}

//SKP Vx
//#0xEX9E:
func opcodeEX9E(c *CPU) error {
	c.skipIf(c.keys.IsPressed(memory.Key(c.v[c.x()])))
	return nil
}

//SKNP Vx
//#0xEXA1:
func opcodeEXA1(c *CPU) error {
	c.skipIf(!c.keys.IsPressed(memory.Key(c.v[c.x()])))
	return nil
}

//LD Vx, DT
//#0xFX07:
func opcodeFX07(c *CPU) error {
	c.v[c.x()] = c.delayTimer
	return nil
}

//LD Vx, K
//#0xFX0A:
func opcodeFX0A(c *CPU) error {
	key, ok := c.keys.FirstPressed()
	if !ok {
		c.awaitingKey = true
		return errAwaitingKey
	}

	c.awaitingKey = false
	c.v[c.x()] = uint8(key)
	return nil
}

//LD DT, Vx
//#0xFX15:
func opcodeFX15(c *CPU) error {
	c.delayTimer = c.v[c.x()]
	return nil
}

//LD ST, Vx
//#0xFX18:
func opcodeFX18(c *CPU) error {
	c.soundTimer = c.v[c.x()]
	return nil
}

//ADD I, Vx
//#0xFX1E:
func opcodeFX1E(c *CPU) error {
	c.i += uint16(c.v[c.x()])
	return nil
}

//LD F, Vx
//#0xFX29:
func opcodeFX29(c *CPU) error {
	c.i = FontAddress + uint16(c.v[c.x()]&0x0F)*GlyphSize
	return nil
}

//LD B, Vx
//#0xFX33:
func opcodeFX33(c *CPU) error {
	value := c.v[c.x()]
	c.mem.Write(c.i, value/100)
	c.mem.Write(c.i+1, (value/10)%10)
	c.mem.Write(c.i+2, value%10)
	return nil
}

//LD [I], Vx
//#0xFX55:
func opcodeFX55(c *CPU) error {
	for r := uint8(0); r <= c.x(); r++ {
		c.mem.Write(c.i+uint16(r), c.v[r])
	}
	return nil
}

//LD Vx, [I]
//#0xFX65:
func opcodeFX65(c *CPU) error {
	for r := uint8(0); r <= c.x(); r++ {
		c.v[r] = c.mem.Read(c.i + uint16(r))
	}
	return nil
}
