package ppu

import "testing"

func statMode(p *PPU) byte { return p.Read(0xFF41) & 0x03 }

func TestModeSequenceOneLine(t *testing.T) {
	p := New()
	p.Write(0xFF40, 0x80) // LCD on
	if m := statMode(p); m != ModeOAM {
		t.Fatalf("expected OAM mode right after LCD on, got %d", m)
	}

	p.Cycle(80)
	if m := statMode(p); m != ModeVRAM {
		t.Fatalf("expected VRAM mode at dot 80, got %d", m)
	}

	p.Cycle(172)
	if m := statMode(p); m != ModeHBlank {
		t.Fatalf("expected HBlank mode at dot 252, got %d", m)
	}

	p.Cycle(204)
	if got := p.LY(); got != 1 {
		t.Fatalf("expected LY=1 at line end, got %d", got)
	}
	if m := statMode(p); m != ModeOAM {
		t.Fatalf("expected OAM mode at the start of the next line, got %d", m)
	}
}

func TestFrameTakes70224TCycles(t *testing.T) {
	p := New()
	p.Write(0xFF40, 0x80)

	// A frame is 144 visible lines plus 10 VBlank lines of 456 T-cycles
	// each. frame_done fires once, on entering VBlank at 144*456 T-cycles,
	// and after the full 70224 the PPU is back at line 0 in OAM mode.
	frames := 0
	for total := 0; total < 70224; total += 4 {
		fd, _ := p.Cycle(4)
		if fd {
			frames++
			if total+4 != 144*lineCycles {
				t.Fatalf("frame_done at %d T-cycles, want %d", total+4, 144*lineCycles)
			}
		}
	}
	if frames != 1 {
		t.Fatalf("frame_done fired %d times in 70224 T-cycles, want 1", frames)
	}
	if p.LY() != 0 || statMode(p) != ModeOAM {
		t.Fatalf("after 70224 T-cycles got LY=%d mode=%d, want LY=0 mode=%d", p.LY(), statMode(p), ModeOAM)
	}
}

// advanceLine runs one visible scanline's worth of Cycle calls, matching the
// oam/vram/hblank thresholds exactly (Cycle only processes one mode
// transition per call, so a single oversized call would leave cycle debt).
func advanceLine(p *PPU) {
	p.Cycle(oamCycles)
	p.Cycle(vramCycles)
	p.Cycle(hblankCycles)
}

func TestVBlankInterruptAtLine144(t *testing.T) {
	p := New()
	p.Write(0xFF40, 0x80)
	for i := 0; i < 144; i++ {
		advanceLine(p)
	}
	if m := statMode(p); m != ModeVBlank {
		t.Fatalf("expected VBlank mode at LY=144, got %d", m)
	}
}

func TestLYCCoincidenceFlagAndInterrupt(t *testing.T) {
	p := New()
	p.Write(0xFF40, 0x80)
	p.Write(0xFF41, statLYCEnable)
	p.Write(0xFF45, 1) // LYC=1

	advanceLine(p)
	stat := p.Read(0xFF41)
	if stat&(1<<2) == 0 {
		t.Fatal("expected LYC=LY coincidence flag set at LY=1")
	}
}

func TestVRAMReadWriteAndOAM(t *testing.T) {
	p := New()
	p.Write(0x8010, 0xAB)
	if got := p.Read(0x8010); got != 0xAB {
		t.Fatalf("VRAM read got %#02x want %#02x", got, 0xAB)
	}
	p.Write(0xFE03, 0x42)
	if got := p.Read(0xFE03); got != 0x42 {
		t.Fatalf("OAM read got %#02x want %#02x", got, 0x42)
	}
}

func TestLYIsReadOnly(t *testing.T) {
	p := New()
	p.Write(0xFF44, 0x50)
	if got := p.LY(); got != 0 {
		t.Fatalf("LY write should be ignored, got %d", got)
	}
}
