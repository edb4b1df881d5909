// Package cpu implements the SM83 instruction set: register file, ALU,
// primary and CB-prefixed opcode tables, and interrupt dispatch.
package cpu

import "github.com/ashgrove/goboy/internal/bus"

// imeState models the three-state interrupt-master-enable flag. EI does not
// take effect immediately; it schedules ShouldEnable, which becomes Enabled
// at the start of the *next* instruction.
type imeState int

const (
	imeDisabled imeState = iota
	imeShouldEnable
	imeEnabled
)

// CPU holds the SM83 register file and scheduling state. It never holds a
// reference to the Bus; every memory access takes the bus as a parameter,
// breaking the Bus<->CPU ownership cycle (the Device owns both).
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	ime    imeState
	halted bool
}

// New returns a CPU with A-L and F zeroed, SP at 0xFFFE and PC at 0x0000, suitable for
// running from a boot ROM. Use ResetNoBoot for boot-ROM-less execution.
func New() *CPU {
	return &CPU{SP: 0xFFFE}
}

// ResetNoBoot sets registers to the documented DMG post-boot-ROM state.
func (c *CPU) ResetNoBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.ime = imeDisabled
	c.halted = false
}

func (c *CPU) SetPC(pc uint16) { c.PC = pc }
func (c *CPU) Halted() bool    { return c.halted }
func (c *CPU) WakeFromHalt()   { c.halted = false }

func (c *CPU) read8(b bus.Reader, addr uint16) byte     { return b.Read(addr) }
func (c *CPU) write8(b bus.Reader, addr uint16, v byte) { b.Write(addr, v) }

func (c *CPU) fetch8(b bus.Reader) byte {
	v := c.read8(b, c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16(b bus.Reader) uint16 {
	lo := uint16(c.fetch8(b))
	hi := uint16(c.fetch8(b))
	return lo | hi<<8
}

func (c *CPU) read16(b bus.Reader, addr uint16) uint16 {
	lo := uint16(c.read8(b, addr))
	hi := uint16(c.read8(b, addr+1))
	return lo | hi<<8
}

func (c *CPU) write16(b bus.Reader, addr uint16, v uint16) {
	c.write8(b, addr, byte(v))
	c.write8(b, addr+1, byte(v>>8))
}

func (c *CPU) push16(b bus.Reader, v uint16) {
	c.SP -= 2
	c.write16(b, c.SP, v)
}

func (c *CPU) pop16(b bus.Reader) uint16 {
	v := c.read16(b, c.SP)
	c.SP += 2
	return v
}

// Step executes one instruction and returns the M-cycles it consumed. The
// caller (the Bus) is responsible for stepping PPU/Timer by the returned
// amount and for not calling Step while Halted() — the Bus instead charges
// a flat 1 M-cycle per step while halted.
func (c *CPU) Step(b bus.Reader) (int, error) {
	if c.ime == imeShouldEnable {
		c.ime = imeEnabled
	}

	pc := c.PC
	op := c.fetch8(b)
	if invalidOpcodes[op] {
		return 0, &InvalidOpcodeError{Bytes: []byte{op}, PC: pc}
	}
	if op == 0xCB {
		cb := c.fetch8(b)
		return c.executeCB(b, cb), nil
	}
	return c.execute(b, op), nil
}

// Dispatch attempts interrupt dispatch in VBlank/LCD/Timer/Serial/Joypad
// priority order. It only vectors when IME is fully Enabled; a Disabled or
// ShouldEnable state leaves pending untouched (the Bus has already woken
// the CPU from halt separately).
func (c *CPU) Dispatch(b bus.Reader, pending, enabled byte) (mCyclesUsed int, clearedBit byte) {
	if c.ime != imeEnabled {
		return 0, 0
	}
	active := pending & enabled & 0x1F
	if active == 0 {
		return 0, 0
	}
	for bit := uint(0); bit < 5; bit++ {
		mask := byte(1) << bit
		if active&mask == 0 {
			continue
		}
		c.ime = imeDisabled
		c.halted = false
		c.push16(b, c.PC)
		c.PC = 0x0040 + 8*uint16(bit)
		return 5, mask
	}
	return 0, 0
}
