// Package cart owns the cartridge ROM image, external RAM, and the bank
// controller that remaps both into the CPU's 16-bit address window.
package cart

import "fmt"

// Cartridge is the minimal interface the Bus needs for ROM/RAM banking.
// Addresses are CPU addresses; implementations service 0x0000-0x7FFF
// (ROM + bank control) and 0xA000-0xBFFF (external RAM).
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)

	// SaveRAM returns a copy of the external RAM, or nil if the cartridge
	// has none. LoadRAM restores previously-saved bytes; it is a no-op if
	// the cartridge has no RAM or data is empty.
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// ErrUnsupportedController is returned by New when the header's cartridge
// type byte names a controller this emulator does not implement.
type ErrUnsupportedController struct {
	TypeByte byte
}

func (e *ErrUnsupportedController) Error() string {
	return fmt.Sprintf("unsupported cartridge controller type %#02x", e.TypeByte)
}

// New parses the ROM header and constructs the matching cartridge
// implementation. It is a fatal, construction-time error for the header to
// name a controller outside {None, MBC1, MBC3 (no RTC)}.
func New(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("parse cartridge header: %w", err)
	}

	switch h.CartType {
	case 0x00:
		return newROMOnly(rom), nil
	case 0x01, 0x02, 0x03:
		return newMBC1(rom, h.RAMSizeBytes), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return newMBC3(rom, h.RAMSizeBytes), nil
	default:
		return nil, &ErrUnsupportedController{TypeByte: h.CartType}
	}
}

// Title returns the trimmed ASCII title from rom's header, or "" if the
// ROM is too small to contain one. Collaborators use this to derive the
// saves/<title>.sav path.
func Title(rom []byte) string {
	h, err := ParseHeader(rom)
	if err != nil {
		return ""
	}
	return h.Title
}
