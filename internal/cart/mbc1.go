package cart

// mbc1 implements MBC1 ROM/RAM banking: a 5-bit primary bank register
// (never zero; 0 remaps to 1) combined with a 2-bit secondary register
// that always supplies the high bits of the switchable ROM bank and, in
// mode 1 only, also selects the RAM bank and the bank visible at 0x0000.
type mbc1 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	bank1      byte // 5 bits, never zero
	bank2      byte // 2 bits
	modeFlag   bool
}

func newMBC1(rom []byte, ramSize int) *mbc1 {
	m := &mbc1{rom: rom, bank1: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *mbc1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		var offset int
		if m.modeFlag {
			offset = int(m.bank2<<5) * 0x4000
		}
		offset += int(addr)
		return m.rom[offset%len(m.rom)]
	case addr < 0x8000:
		bank := (m.bank2 << 5) | m.bank1
		offset := int(bank)*0x4000 + int(addr&0x3FFF)
		return m.rom[offset%len(m.rom)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		var bank byte
		if m.modeFlag {
			bank = m.bank2
		}
		offset := int(bank)*0x2000 + int(addr&0x1FFF)
		return m.ram[offset%len(m.ram)]
	default:
		return 0xFF
	}
}

func (m *mbc1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}
	case addr < 0x6000:
		m.bank2 = value & 0x03
	case addr < 0x8000:
		m.modeFlag = (value & 0x01) != 0
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		var bank byte
		if m.modeFlag {
			bank = m.bank2
		}
		offset := int(bank)*0x2000 + int(addr&0x1FFF)
		m.ram[offset%len(m.ram)] = value
	}
}

func (m *mbc1) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *mbc1) LoadRAM(data []byte) {
	if len(m.ram) == 0 || len(data) == 0 {
		return
	}
	copy(m.ram, data)
}
