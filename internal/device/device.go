// Package device composes the Bus and CPU into the emulator's public
// surface: the step primitives, button input, framebuffer access, and
// cartridge-save serialization a collaborator drives.
package device

import (
	"fmt"

	"github.com/ashgrove/goboy/internal/bus"
	"github.com/ashgrove/goboy/internal/cart"
	"github.com/ashgrove/goboy/internal/cpu"
)

// Button is one of the eight physical buttons. Directional buttons share
// selector bit 4; A/B/Start/Select share selector bit 5.
type Button byte

const (
	Right Button = bus.JoypRight
	Left  Button = bus.JoypLeft
	Up    Button = bus.JoypUp
	Down  Button = bus.JoypDown
	A     Button = bus.JoypA
	B     Button = bus.JoypB
	Select Button = bus.JoypSelectBtn
	Start Button = bus.JoypStart
)

// Device is the composition root: it owns the Bus and CPU and exposes the
// step-primitive surface a collaborator (headless runner or windowed UI)
// drives once per frame.
type Device struct {
	bus   *bus.Bus
	cpu   *cpu.CPU
	title string
}

// New loads rom into a cartridge and wires a fresh Bus/CPU pair around it.
// If bootROM is non-empty the CPU starts at 0x0000, and the first 256 bytes
// of bootROM are mapped at 0x0000-0x00FF until the first non-zero 0xFF50
// write (a bootROM shorter than 256 bytes is not mapped); otherwise the CPU
// starts directly in its post-boot state.
func New(rom []byte, bootROM []byte) (*Device, error) {
	c, err := cart.New(rom)
	if err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}

	b := bus.New(c)
	cp := cpu.New()
	if len(bootROM) > 0 {
		b.SetBootROM(bootROM)
		cp.SetPC(0x0000)
	} else {
		cp.ResetNoBoot()
	}

	return &Device{bus: b, cpu: cp, title: cart.Title(rom)}, nil
}

// Title returns the cartridge's header title, for deriving a save path.
func (d *Device) Title() string { return d.title }

// Step runs exactly one Bus.Step: one CPU instruction (or one idle M-cycle
// while halted), a PPU/Timer tick matched to the cycles consumed, and one
// interrupt-dispatch attempt. It returns whether a frame completed during
// this step, and a non-nil error if the CPU hit an invalid opcode.
func (d *Device) Step() (frameDone bool, err error) {
	return d.bus.Step(d.cpu)
}

// StepFrame runs Step in a loop until one reports a completed frame.
func (d *Device) StepFrame() error {
	for {
		done, err := d.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// StepFrameUntilPC runs Step until either a frame completes or the CPU's
// program counter equals pc, whichever happens first.
func (d *Device) StepFrameUntilPC(pc uint16) error {
	for {
		if d.cpu.PC == pc {
			return nil
		}
		done, err := d.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Press marks the given buttons held.
func (d *Device) Press(buttons Button) { d.bus.Press(byte(buttons)) }

// Release marks the given buttons no longer held.
func (d *Device) Release(buttons Button) { d.bus.Release(byte(buttons)) }

// Reset zeros CPU state and re-enables the boot-ROM overlay, if one was
// loaded.
func (d *Device) Reset() {
	d.cpu = cpu.New()
	d.bus.Reset()
}

// Framebuffer returns the current 160x144 array of 2-bit palette indices.
// Callers must not retain a reference across a Step call; the array is
// owned by the PPU and mutated in place.
func (d *Device) Framebuffer() *[160 * 144]byte {
	return &d.bus.PPU().Framebuffer
}

// Save returns a copy of the cartridge's external RAM, for a collaborator
// to persist to saves/<title>.sav. It returns nil for cartridges with no
// battery-backed RAM.
func (d *Device) Save() []byte {
	return d.bus.Cart().SaveRAM()
}

// LoadSave restores previously-saved cartridge RAM, e.g. read from
// saves/<title>.sav at startup.
func (d *Device) LoadSave(data []byte) {
	d.bus.Cart().LoadRAM(data)
}

// CPU exposes the CPU for tools (a headless trace runner, a debugger) that
// need direct register/PC visibility beyond the step-primitive surface.
func (d *Device) CPU() *cpu.CPU { return d.cpu }

// Bus exposes the Bus for the same reason.
func (d *Device) Bus() *bus.Bus { return d.bus }
