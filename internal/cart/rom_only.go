package cart

// romOnly implements a cartridge with no bank controller and no external
// RAM (header cartridge type 0x00).
type romOnly struct {
	rom []byte
}

func newROMOnly(rom []byte) *romOnly {
	return &romOnly{rom: rom}
}

func (c *romOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return c.rom[int(addr)%len(c.rom)]
	default:
		return 0xFF
	}
}

func (c *romOnly) Write(addr uint16, value byte) {
	// No bank control, no RAM: all writes are ignored.
}

func (c *romOnly) SaveRAM() []byte    { return nil }
func (c *romOnly) LoadRAM(data []byte) {}
