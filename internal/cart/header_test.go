package cart

import "testing"

// buildROM makes a synthetic ROM of size bytes with a valid header &
// checksum; callers pass a size that matches romSizeCode.
func buildROM(title string, cartType, romSizeCode, ramSizeCode byte, size int) []byte {
	rom := make([]byte, size)
	copy(rom[0x0104:0x0104+len(nintendoLogo)], nintendoLogo[:])

	tbytes := []byte(title)
	if len(tbytes) > 16 {
		tbytes = tbytes[:16]
	}
	copy(rom[0x0134:0x0144], tbytes)

	rom[0x0143] = 0x00
	rom[0x0144], rom[0x0145] = '0', '1'
	rom[0x0146] = 0x00
	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	rom[0x0149] = ramSizeCode
	rom[0x014A] = 0x00
	rom[0x014B] = 0x33
	rom[0x014C] = 0x01

	var hsum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		hsum = hsum - rom[addr] - 1
	}
	rom[0x014D] = hsum

	return rom
}

func TestParseHeader_TitleAndSizes(t *testing.T) {
	rom := buildROM("TESTGAME", 0x01, 0x01, 0x02, 64*1024)
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Title != "TESTGAME" {
		t.Fatalf("Title got %q want TESTGAME", h.Title)
	}
	if h.ROMSizeBytes != 64*1024 || h.ROMBanks != 4 {
		t.Fatalf("ROM size decode got %d bytes / %d banks", h.ROMSizeBytes, h.ROMBanks)
	}
	if h.RAMSizeBytes != 8*1024 {
		t.Fatalf("RAM size decode got %d, want 8192", h.RAMSizeBytes)
	}
}

func TestParseHeader_TooSmall(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 0x10)); err == nil {
		t.Fatal("expected error parsing an undersized ROM")
	}
}

func TestHeaderChecksumAndVerify(t *testing.T) {
	rom := buildROM("CHECKSUM", 0x00, 0x00, 0x00, 32*1024)
	if !HeaderChecksumOK(rom) {
		t.Fatal("expected a freshly-built header checksum to validate")
	}
	if !Verify(rom) {
		t.Fatal("expected Verify to pass with the Nintendo logo and a valid checksum")
	}

	rom[0x014D] ^= 0xFF
	if HeaderChecksumOK(rom) {
		t.Fatal("corrupting the checksum byte should invalidate it")
	}
}

func TestTitle(t *testing.T) {
	rom := buildROM("POKEMON", 0x00, 0x00, 0x00, 32*1024)
	if got := Title(rom); got != "POKEMON" {
		t.Fatalf("Title got %q want POKEMON", got)
	}
	if got := Title(make([]byte, 4)); got != "" {
		t.Fatalf("Title of an undersized ROM got %q want empty", got)
	}
}
