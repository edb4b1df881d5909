package cpu

import "github.com/ashgrove/goboy/internal/bus"

// execute decodes and runs one primary-table opcode (op != 0xCB, already
// known not to be one of the eleven undefined bytes) and returns its
// M-cycle cost.
func (c *CPU) execute(b bus.Reader, op byte) int {
	// LD r,r' / LD r,(HL) / LD (HL),r, and HALT at the one gap (0x76).
	if op >= 0x40 && op <= 0x7F {
		if op == 0x76 {
			c.halted = true
			return 1
		}
		dst := (op >> 3) & 7
		src := op & 7
		c.setReg8(b, dst, c.reg8(b, src))
		if dst == 6 || src == 6 {
			return 2
		}
		return 1
	}

	// 8-bit ALU A,r block.
	if op >= 0x80 && op <= 0xBF {
		return c.aluBlock(b, op)
	}

	switch op {
	case 0x00: // NOP
		return 1
	case 0x01:
		c.setBC(c.fetch16(b))
		return 3
	case 0x02:
		c.write8(b, c.getBC(), c.A)
		return 2
	case 0x03:
		c.setBC(c.getBC() + 1)
		return 2
	case 0x04:
		c.B = c.incReg(c.B)
		return 1
	case 0x05:
		c.B = c.decReg(c.B)
		return 1
	case 0x06:
		c.B = c.fetch8(b)
		return 2
	case 0x07: // RLCA
		cy := c.A&0x80 != 0
		c.A = c.A<<1 | boolBit(cy)
		c.setFlags(false, false, false, cy)
		return 1
	case 0x08:
		addr := c.fetch16(b)
		c.write16(b, addr, c.SP)
		return 5
	case 0x09:
		c.addHL(c.getBC())
		return 2
	case 0x0A:
		c.A = c.read8(b, c.getBC())
		return 2
	case 0x0B:
		c.setBC(c.getBC() - 1)
		return 2
	case 0x0C:
		c.C = c.incReg(c.C)
		return 1
	case 0x0D:
		c.C = c.decReg(c.C)
		return 1
	case 0x0E:
		c.C = c.fetch8(b)
		return 2
	case 0x0F: // RRCA
		cy := c.A&0x01 != 0
		c.A = c.A>>1 | boolBit(cy)<<7
		c.setFlags(false, false, false, cy)
		return 1

	case 0x10: // STOP: no speed-switch / button-wake modeling, treated as HALT
		c.fetch8(b)
		c.halted = true
		return 1
	case 0x11:
		c.setDE(c.fetch16(b))
		return 3
	case 0x12:
		c.write8(b, c.getDE(), c.A)
		return 2
	case 0x13:
		c.setDE(c.getDE() + 1)
		return 2
	case 0x14:
		c.D = c.incReg(c.D)
		return 1
	case 0x15:
		c.D = c.decReg(c.D)
		return 1
	case 0x16:
		c.D = c.fetch8(b)
		return 2
	case 0x17: // RLA
		cin := c.flag(flagC)
		cy := c.A&0x80 != 0
		c.A = c.A<<1 | boolBit(cin)
		c.setFlags(false, false, false, cy)
		return 1
	case 0x18:
		off := int8(c.fetch8(b))
		c.PC = uint16(int32(c.PC) + int32(off))
		return 3
	case 0x19:
		c.addHL(c.getDE())
		return 2
	case 0x1A:
		c.A = c.read8(b, c.getDE())
		return 2
	case 0x1B:
		c.setDE(c.getDE() - 1)
		return 2
	case 0x1C:
		c.E = c.incReg(c.E)
		return 1
	case 0x1D:
		c.E = c.decReg(c.E)
		return 1
	case 0x1E:
		c.E = c.fetch8(b)
		return 2
	case 0x1F: // RRA
		cin := c.flag(flagC)
		cy := c.A&0x01 != 0
		c.A = c.A>>1 | boolBit(cin)<<7
		c.setFlags(false, false, false, cy)
		return 1

	case 0x20:
		return c.jr(b, !c.flag(flagZ))
	case 0x21:
		c.setHL(c.fetch16(b))
		return 3
	case 0x22:
		hl := c.getHL()
		c.write8(b, hl, c.A)
		c.setHL(hl + 1)
		return 2
	case 0x23:
		c.setHL(c.getHL() + 1)
		return 2
	case 0x24:
		c.H = c.incReg(c.H)
		return 1
	case 0x25:
		c.H = c.decReg(c.H)
		return 1
	case 0x26:
		c.H = c.fetch8(b)
		return 2
	case 0x27: // DAA
		res, z, cy := daa(c.A, c.flag(flagN), c.flag(flagH), c.flag(flagC))
		c.A = res
		c.setFlags(z, c.flag(flagN), false, cy)
		return 1
	case 0x28:
		return c.jr(b, c.flag(flagZ))
	case 0x29:
		c.addHL(c.getHL())
		return 2
	case 0x2A:
		hl := c.getHL()
		c.A = c.read8(b, hl)
		c.setHL(hl + 1)
		return 2
	case 0x2B:
		c.setHL(c.getHL() - 1)
		return 2
	case 0x2C:
		c.L = c.incReg(c.L)
		return 1
	case 0x2D:
		c.L = c.decReg(c.L)
		return 1
	case 0x2E:
		c.L = c.fetch8(b)
		return 2
	case 0x2F: // CPL
		c.A = ^c.A
		c.setFlags(c.flag(flagZ), true, true, c.flag(flagC))
		return 1

	case 0x30:
		return c.jr(b, !c.flag(flagC))
	case 0x31:
		c.SP = c.fetch16(b)
		return 3
	case 0x32:
		hl := c.getHL()
		c.write8(b, hl, c.A)
		c.setHL(hl - 1)
		return 2
	case 0x33:
		c.SP++
		return 2
	case 0x34:
		hl := c.getHL()
		c.write8(b, hl, c.incReg(c.read8(b, hl)))
		return 3
	case 0x35:
		hl := c.getHL()
		c.write8(b, hl, c.decReg(c.read8(b, hl)))
		return 3
	case 0x36:
		c.write8(b, c.getHL(), c.fetch8(b))
		return 3
	case 0x37: // SCF
		c.setFlags(c.flag(flagZ), false, false, true)
		return 1
	case 0x38:
		return c.jr(b, c.flag(flagC))
	case 0x39:
		c.addHL(c.SP)
		return 2
	case 0x3A:
		hl := c.getHL()
		c.A = c.read8(b, hl)
		c.setHL(hl - 1)
		return 2
	case 0x3B:
		c.SP--
		return 2
	case 0x3C:
		c.A = c.incReg(c.A)
		return 1
	case 0x3D:
		c.A = c.decReg(c.A)
		return 1
	case 0x3E:
		c.A = c.fetch8(b)
		return 2
	case 0x3F: // CCF
		c.setFlags(c.flag(flagZ), false, false, !c.flag(flagC))
		return 1

	case 0xC0:
		return c.ret(b, !c.flag(flagZ), 2, 5)
	case 0xC1:
		c.setBC(c.pop16(b))
		return 3
	case 0xC2:
		return c.jp(b, !c.flag(flagZ))
	case 0xC3:
		c.PC = c.fetch16(b)
		return 4
	case 0xC4:
		return c.call(b, !c.flag(flagZ))
	case 0xC5:
		c.push16(b, c.getBC())
		return 4
	case 0xC6:
		c.aluOp(aluAdd, c.fetch8(b))
		return 2
	case 0xC7:
		return c.rst(b, 0x00)
	case 0xC8:
		return c.ret(b, c.flag(flagZ), 2, 5)
	case 0xC9:
		c.PC = c.pop16(b)
		return 4
	case 0xCA:
		return c.jp(b, c.flag(flagZ))
	case 0xCC:
		return c.call(b, c.flag(flagZ))
	case 0xCD:
		addr := c.fetch16(b)
		c.push16(b, c.PC)
		c.PC = addr
		return 6
	case 0xCE:
		c.aluOp(aluAdc, c.fetch8(b))
		return 2
	case 0xCF:
		return c.rst(b, 0x08)

	case 0xD0:
		return c.ret(b, !c.flag(flagC), 2, 5)
	case 0xD1:
		c.setDE(c.pop16(b))
		return 3
	case 0xD2:
		return c.jp(b, !c.flag(flagC))
	case 0xD4:
		return c.call(b, !c.flag(flagC))
	case 0xD5:
		c.push16(b, c.getDE())
		return 4
	case 0xD6:
		c.aluOp(aluSub, c.fetch8(b))
		return 2
	case 0xD7:
		return c.rst(b, 0x10)
	case 0xD8:
		return c.ret(b, c.flag(flagC), 2, 5)
	case 0xD9: // RETI: pops PC and re-enables interrupts immediately
		c.PC = c.pop16(b)
		c.ime = imeEnabled
		return 4
	case 0xDA:
		return c.jp(b, c.flag(flagC))
	case 0xDC:
		return c.call(b, c.flag(flagC))
	case 0xDE:
		c.aluOp(aluSbc, c.fetch8(b))
		return 2
	case 0xDF:
		return c.rst(b, 0x18)

	case 0xE0:
		c.write8(b, 0xFF00+uint16(c.fetch8(b)), c.A)
		return 3
	case 0xE1:
		c.setHL(c.pop16(b))
		return 3
	case 0xE2:
		c.write8(b, 0xFF00+uint16(c.C), c.A)
		return 2
	case 0xE5:
		c.push16(b, c.getHL())
		return 4
	case 0xE6:
		c.aluOp(aluAnd, c.fetch8(b))
		return 2
	case 0xE7:
		return c.rst(b, 0x20)
	case 0xE8:
		off := int8(c.fetch8(b))
		res, h, cy := addSPOffset(c.SP, off)
		c.SP = res
		c.setFlags(false, false, h, cy)
		return 4
	case 0xE9:
		c.PC = c.getHL()
		return 1
	case 0xEA:
		c.write8(b, c.fetch16(b), c.A)
		return 4
	case 0xEE:
		c.aluOp(aluXor, c.fetch8(b))
		return 2
	case 0xEF:
		return c.rst(b, 0x28)

	case 0xF0:
		c.A = c.read8(b, 0xFF00+uint16(c.fetch8(b)))
		return 3
	case 0xF1:
		c.setAF(c.pop16(b))
		return 3
	case 0xF2:
		c.A = c.read8(b, 0xFF00+uint16(c.C))
		return 2
	case 0xF3: // DI
		c.ime = imeDisabled
		return 1
	case 0xF5:
		c.push16(b, c.getAF())
		return 4
	case 0xF6:
		c.aluOp(aluOr, c.fetch8(b))
		return 2
	case 0xF7:
		return c.rst(b, 0x30)
	case 0xF8:
		off := int8(c.fetch8(b))
		res, h, cy := addSPOffset(c.SP, off)
		c.setHL(res)
		c.setFlags(false, false, h, cy)
		return 3
	case 0xF9:
		c.SP = c.getHL()
		return 2
	case 0xFA:
		c.A = c.read8(b, c.fetch16(b))
		return 4
	case 0xFB: // EI: takes effect after the *next* instruction
		c.ime = imeShouldEnable
		return 1
	case 0xFE:
		c.aluOp(aluCp, c.fetch8(b))
		return 2
	case 0xFF:
		return c.rst(b, 0x38)
	}

	// Unreachable: every byte not covered above is either in the LD/ALU
	// blocks handled at the top or in invalidOpcodes, checked by the
	// caller before execute is invoked.
	return 1
}

func boolBit(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func (c *CPU) incReg(v byte) byte {
	res, z, h := inc8(v)
	c.setFlags(z, false, h, c.flag(flagC))
	return res
}

func (c *CPU) decReg(v byte) byte {
	res, z, h := dec8(v)
	c.setFlags(z, true, h, c.flag(flagC))
	return res
}

func (c *CPU) addHL(operand uint16) {
	res, h, cy := add16(c.getHL(), operand)
	c.setHL(res)
	c.setFlags(c.flag(flagZ), false, h, cy)
}

func (c *CPU) jr(b bus.Reader, take bool) int {
	off := int8(c.fetch8(b))
	if !take {
		return 2
	}
	c.PC = uint16(int32(c.PC) + int32(off))
	return 3
}

func (c *CPU) jp(b bus.Reader, take bool) int {
	addr := c.fetch16(b)
	if !take {
		return 3
	}
	c.PC = addr
	return 4
}

func (c *CPU) call(b bus.Reader, take bool) int {
	addr := c.fetch16(b)
	if !take {
		return 3
	}
	c.push16(b, c.PC)
	c.PC = addr
	return 6
}

func (c *CPU) ret(b bus.Reader, take bool, costIfNot, costIfTaken int) int {
	if !take {
		return costIfNot
	}
	c.PC = c.pop16(b)
	return costIfTaken
}

func (c *CPU) rst(b bus.Reader, vector uint16) int {
	c.push16(b, c.PC)
	c.PC = vector
	return 4
}

type aluKind int

const (
	aluAdd aluKind = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

// aluBlock handles the 0x80-0xBF ALU-A,r block, shared with the immediate
// forms (0xC6/CE/D6/DE/E6/EE/F6/FE) via aluOp.
func (c *CPU) aluBlock(b bus.Reader, op byte) int {
	kind := aluKind((op >> 3) & 7)
	srcIdx := op & 7
	operand := c.reg8(b, srcIdx)
	c.aluOp(kind, operand)
	if srcIdx == 6 {
		return 2
	}
	return 1
}

func (c *CPU) aluOp(kind aluKind, operand byte) {
	switch kind {
	case aluAdd:
		res, z, _, h, cy := add8(c.A, operand, false)
		c.A = res
		c.setFlags(z, false, h, cy)
	case aluAdc:
		res, z, _, h, cy := add8(c.A, operand, c.flag(flagC))
		c.A = res
		c.setFlags(z, false, h, cy)
	case aluSub:
		res, z, _, h, cy := sub8(c.A, operand, false)
		c.A = res
		c.setFlags(z, true, h, cy)
	case aluSbc:
		res, z, _, h, cy := sub8(c.A, operand, c.flag(flagC))
		c.A = res
		c.setFlags(z, true, h, cy)
	case aluAnd:
		res, z, _, h, cy := and8(c.A, operand)
		c.A = res
		c.setFlags(z, false, h, cy)
	case aluXor:
		res, z, _, h, cy := xor8(c.A, operand)
		c.A = res
		c.setFlags(z, false, h, cy)
	case aluOr:
		res, z, _, h, cy := or8(c.A, operand)
		c.A = res
		c.setFlags(z, false, h, cy)
	case aluCp:
		_, z, _, h, cy := sub8(c.A, operand, false)
		c.setFlags(z, true, h, cy)
	}
}
