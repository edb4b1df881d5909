package cart

// mbc3 implements MBC3 ROM/RAM banking. RTC registers are not implemented
// (Non-goal): the latch-clock write at 0x6000-0x7FFF is accepted and
// ignored, and RAM-bank-select values in 0x08-0x0C (which would normally
// select an RTC register) fall back to RAM bank 0.
type mbc3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits, never zero
	ramBank    byte // 0-3
}

func newMBC3(rom []byte, ramSize int) *mbc3 {
	m := &mbc3{rom: rom, romBank: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *mbc3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.rom[int(addr)%len(m.rom)]
	case addr < 0x8000:
		offset := int(m.romBank)*0x4000 + int(addr&0x3FFF)
		return m.rom[offset%len(m.rom)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := int(m.ramBank)*0x2000 + int(addr&0x1FFF)
		return m.ram[offset%len(m.ram)]
	default:
		return 0xFF
	}
}

func (m *mbc3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		if value <= 0x03 {
			m.ramBank = value
		} else {
			m.ramBank = 0
		}
	case addr < 0x8000:
		// Latch-clock strobe: no RTC present, accepted and ignored.
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := int(m.ramBank)*0x2000 + int(addr&0x1FFF)
		m.ram[offset%len(m.ram)] = value
	}
}

func (m *mbc3) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *mbc3) LoadRAM(data []byte) {
	if len(m.ram) == 0 || len(data) == 0 {
		return
	}
	copy(m.ram, data)
}
