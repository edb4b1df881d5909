package cart

import "testing"

func TestMBC3_ROMBanking(t *testing.T) {
	rom := make([]byte, 256*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMBC3(rom, 0)

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("switchable bank defaults to 1: got %02X", got)
	}
	m.Write(0x2000, 0x07)
	if got := m.Read(0x4000); got != 0x07 {
		t.Fatalf("bank7 select got %02X want 07", got)
	}

	// Like MBC1, MBC3 forces bank 1 when the 7-bit register would be 0, so
	// bank 0 is never visible through the switchable window.
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank register 0 forces bank 1: got %02X", got)
	}
}

func TestMBC3_RAMBanking(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := newMBC3(rom, 32*1024) // 4 banks of 8KB

	m.Write(0x0000, 0x0A) // RAM enable
	m.Write(0x4000, 0x02) // RAM bank 2
	m.Write(0xA000, 0x99)
	if got := m.Read(0xA000); got != 0x99 {
		t.Fatalf("RAM bank 2 RW got %02X want 99", got)
	}

	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got == 0x99 {
		t.Fatal("RAM bank 0 should not alias bank 2's contents")
	}
}

func TestMBC3_RAMBankSelectAboveThreeFallsBackToZero(t *testing.T) {
	// Values 0x08-0x0C would select an RTC register on real MBC3 hardware;
	// with no RTC implemented they fall back to RAM bank 0 (Non-goal: RTC).
	rom := make([]byte, 32*1024)
	m := newMBC3(rom, 32*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x00)
	m.Write(0xA000, 0x11)

	m.Write(0x4000, 0x08)
	if got := m.Read(0xA000); got != 0x11 {
		t.Fatalf("RTC-register select should fall back to RAM bank 0, got %02X want 11", got)
	}
}

func TestMBC3_LatchWriteIsAcceptedAndIgnored(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := newMBC3(rom, 8*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x01)
	m.Write(0x6000, 0x00) // latch strobe: must not panic or corrupt RAM
	m.Write(0x6000, 0x01)
	if got := m.Read(0xA000); got != 0x01 {
		t.Fatalf("latch write should not disturb RAM contents, got %02X", got)
	}
}

func TestMBC3_SaveLoadRAMRoundTrip(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := newMBC3(rom, 8*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0xA005, 0xCD)

	saved := m.SaveRAM()
	m2 := newMBC3(rom, 8*1024)
	m2.Write(0x0000, 0x0A)
	m2.LoadRAM(saved)
	if got := m2.Read(0xA005); got != 0xCD {
		t.Fatalf("LoadRAM round trip got %02X want CD", got)
	}
}
