// Package bus implements the memory-mapped I/O bus that routes the CPU's
// 16-bit address space to the cartridge, PPU, timer, work/high RAM, and the
// joypad, and drives the per-step CPU+PPU+Timer lockstep.
package bus

import (
	"io"

	"github.com/ashgrove/goboy/internal/cart"
	"github.com/ashgrove/goboy/internal/ppu"
	"github.com/ashgrove/goboy/internal/timer"
)

// Interrupt bits within pending_interrupts / enabled_interrupts.
const (
	InterruptVBlank byte = 1 << 0
	InterruptLCD    byte = 1 << 1
	InterruptTimer  byte = 1 << 2
	InterruptSerial byte = 1 << 3
	InterruptJoypad byte = 1 << 4

	interruptMask byte = 0x1F
)

// Stepper is the subset of the CPU the Bus needs to drive one step. Kept
// narrow to avoid a cart<->cpu<->bus import cycle; internal/cpu.CPU
// satisfies it.
type Stepper interface {
	// Step executes one instruction against the given bus and returns the
	// M-cycles it consumed. err is non-nil (and mCycles is 0) if the
	// instruction decoded to an invalid opcode.
	Step(b Reader) (mCycles int, err error)
	// Halted reports whether the CPU is currently halted.
	Halted() bool
	// WakeFromHalt clears the halted flag without dispatching an interrupt.
	WakeFromHalt()
	// Dispatch attempts interrupt dispatch given pending & enabled bits; it
	// returns the number of additional M-cycles consumed (5 if it vectored,
	// 0 otherwise) and the newly-cleared pending bit (0 if none).
	Dispatch(b Reader, pending, enabled byte) (mCyclesUsed int, clearedBit byte)
}

// Reader is the CPU-facing memory interface; the concrete Bus implements
// both this and the richer internal API the Device needs.
type Reader interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Bus owns work RAM, high RAM, the boot-ROM overlay flag, the interrupt
// registers, the joypad, and the PPU/Timer/Cartridge it routes to.
type Bus struct {
	cart cart.Cartridge
	ppu  *ppu.PPU
	tmr  *timer.Timer

	wram [0x2000]byte // 0xC000-0xDFFF, mirrored at 0xE000-0xFDFF (minus top 0x200)
	hram [0x7F]byte   // 0xFF80-0xFFFE

	ie      byte // 0xFFFF, masked to 5 bits
	pending byte // 0xFF0F, masked to 5 bits

	joypSelect byte // bits 4-5 as last written
	joypHeld   byte // Joyp* bitmask of currently-held buttons
	joypLower4 byte // last computed active-low lower nibble, for edge detection

	sb byte // 0xFF01
	sc byte // 0xFF02
	sw io.Writer

	bootROM     []byte
	bootEnabled bool
}

// Joypad button bitmasks for Press/Release. Bits set mean "held".
const (
	JoypRight     = 1 << 0
	JoypLeft      = 1 << 1
	JoypUp        = 1 << 2
	JoypDown      = 1 << 3
	JoypA         = 1 << 4
	JoypB         = 1 << 5
	JoypSelectBtn = 1 << 6
	JoypStart     = 1 << 7
)

// New wires a Bus around the given cartridge, with a fresh PPU and Timer,
// and the boot-ROM overlay disabled; SetBootROM installs and enables it
// until the first non-zero 0xFF50 write.
func New(c cart.Cartridge) *Bus {
	return &Bus{
		cart:        c,
		ppu:         ppu.New(),
		tmr:         timer.New(),
		bootEnabled: false,
	}
}

func (b *Bus) PPU() *ppu.PPU         { return b.ppu }
func (b *Bus) Cart() cart.Cartridge  { return b.cart }
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

// SetBootROM installs a 256-byte DMG boot ROM to be mapped over
// 0x0000-0x00FF until a 0xFF50 write disables the overlay.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = nil
	b.bootEnabled = false
	if len(data) >= 0x100 {
		b.bootROM = make([]byte, 0x100)
		copy(b.bootROM, data[:0x100])
		b.bootEnabled = true
	}
}

// Press marks the given buttons (OR of Joyp* constants) as held, raising
// the Joypad interrupt for any button that transitions released->pressed
// while its selector group is active.
func (b *Bus) Press(mask byte) {
	b.joypHeld |= mask
	b.updateJoypad()
}

// Release marks the given buttons as no longer held.
func (b *Bus) Release(mask byte) {
	b.joypHeld &^= mask
	b.updateJoypad()
}

// Reset clears bus-owned state and re-enables the boot-ROM overlay (if one
// was loaded).
func (b *Bus) Reset() {
	b.wram = [0x2000]byte{}
	b.hram = [0x7F]byte{}
	b.ie, b.pending = 0, 0
	b.joypSelect, b.joypHeld, b.joypLower4 = 0, 0, 0
	b.sb, b.sc = 0, 0
	b.tmr = timer.New()
	b.ppu = ppu.New()
	if b.bootROM != nil {
		b.bootEnabled = true
	}
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootEnabled:
		return b.bootROM[addr]
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr <= 0x9FFF:
		return b.ppu.Read(addr)
	case addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	case addr <= 0xFE9F:
		return b.ppu.Read(addr)
	case addr <= 0xFEFF:
		return 0xFF
	case addr == 0xFF00:
		return b.joypadRead()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr == 0xFF04:
		return b.tmr.Divider
	case addr == 0xFF05:
		return b.tmr.Counter
	case addr == 0xFF06:
		return b.tmr.Modulo
	case addr == 0xFF07:
		return 0xF8 | b.tmr.TAC()
	case addr == 0xFF0F:
		return 0xE0 | (b.pending & interruptMask)
	case addr == 0xFF46:
		return 0xFF
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.ppu.Read(addr)
	case addr == 0xFF50:
		return 0xFF
	case addr <= 0xFFFE && addr >= 0xFF80:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie & interruptMask
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x0100 && b.bootEnabled:
		return
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr <= 0x9FFF:
		b.ppu.Write(addr, value)
	case addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr <= 0xFDFF:
		b.wram[addr-0x2000-0xC000] = value
	case addr <= 0xFE9F:
		b.ppu.Write(addr, value)
	case addr <= 0xFEFF:
		// ignored
	case addr == 0xFF00:
		b.joypSelect = value & 0x30
		b.updateJoypad()
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value & 0x81
		if b.sc&0x80 != 0 {
			if b.sw != nil {
				_, _ = b.sw.Write([]byte{b.sb})
			}
			b.pending |= InterruptSerial
			b.sc &^= 0x80
		}
	case addr == 0xFF04:
		b.tmr.ResetDIV()
	case addr == 0xFF05:
		b.tmr.Counter = value
	case addr == 0xFF06:
		b.tmr.Modulo = value
	case addr == 0xFF07:
		b.tmr.SetTAC(value)
	case addr == 0xFF0F:
		b.pending = value & interruptMask
	case addr == 0xFF46:
		b.oamDMA(value)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.Write(addr, value)
	case addr == 0xFF50:
		if value != 0 {
			b.bootEnabled = false
		}
	case addr <= 0xFFFE && addr >= 0xFF80:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.ie = value & interruptMask
	}
}

// oamDMA performs the instantaneous 0xA0-byte block copy from
// (value<<8) into OAM, reading through the normal bus path so the source
// may be ROM, WRAM, or any other mapped region.
func (b *Bus) oamDMA(value byte) {
	src := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.ppu.Write(0xFE00+i, b.Read(src+i))
	}
}

func (b *Bus) joypadRead() byte {
	res := byte(0xC0 | (b.joypSelect & 0x30) | 0x0F)
	if b.joypSelect&0x10 == 0 {
		if b.joypHeld&JoypRight != 0 {
			res &^= 0x01
		}
		if b.joypHeld&JoypLeft != 0 {
			res &^= 0x02
		}
		if b.joypHeld&JoypUp != 0 {
			res &^= 0x04
		}
		if b.joypHeld&JoypDown != 0 {
			res &^= 0x08
		}
	}
	if b.joypSelect&0x20 == 0 {
		if b.joypHeld&JoypA != 0 {
			res &^= 0x01
		}
		if b.joypHeld&JoypB != 0 {
			res &^= 0x02
		}
		if b.joypHeld&JoypSelectBtn != 0 {
			res &^= 0x04
		}
		if b.joypHeld&JoypStart != 0 {
			res &^= 0x08
		}
	}
	return res
}

// updateJoypad recomputes the active-low lower nibble for the currently
// selected group(s) and raises the Joypad interrupt on any 1->0 transition.
func (b *Bus) updateJoypad() {
	lower := b.joypadRead() & 0x0F
	fallingEdge := b.joypLower4 &^ lower
	if fallingEdge != 0 {
		b.pending |= InterruptJoypad
	}
	b.joypLower4 = lower
}

// Step executes one CPU step (one instruction, or 4 T-cycles idle while
// halted), advances PPU and Timer in lockstep with the M-cycles consumed,
// merges their new interrupts into pending, attempts dispatch, and charges
// the dispatch's additional cycles to PPU/Timer too. Returns true iff the
// PPU reported a completed frame at any point during the step. A non-nil
// error means the CPU decoded an invalid opcode; the step still ticks
// PPU/Timer for whatever cycles were consumed (none, for an invalid
// opcode) before surfacing the error to the caller.
func (b *Bus) Step(cpu Stepper) (bool, error) {
	var mCycles int
	var err error
	if cpu.Halted() {
		mCycles = 1
	} else {
		mCycles, err = cpu.Step(b)
	}

	frameDone := b.tick(mCycles)
	if err != nil {
		return frameDone, err
	}

	if b.pending&b.ie&interruptMask != 0 {
		cpu.WakeFromHalt()
	}

	used, cleared := cpu.Dispatch(b, b.pending, b.ie)
	if cleared != 0 {
		b.pending &^= cleared
	}
	if used > 0 {
		if b.tick(used) {
			frameDone = true
		}
	}

	return frameDone, nil
}

func (b *Bus) tick(mCycles int) bool {
	frameDone, ppuInterrupts := b.ppu.Cycle(mCycles * 4)
	b.pending |= ppuInterrupts
	b.pending |= b.tmr.Cycle(mCycles)
	return frameDone
}
