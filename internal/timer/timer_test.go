package timer

import "testing"

func TestDivider_IncrementsEvery64MCycles(t *testing.T) {
	tm := New()
	tm.Cycle(63)
	if tm.Divider != 0 {
		t.Fatalf("DIV got %d want 0 before 64 M-cycles", tm.Divider)
	}
	tm.Cycle(1)
	if tm.Divider != 1 {
		t.Fatalf("DIV got %d want 1 after 64 M-cycles", tm.Divider)
	}
}

func TestResetDIV(t *testing.T) {
	tm := New()
	tm.Cycle(64 * 3)
	if tm.Divider == 0 {
		t.Fatal("expected DIV to have advanced")
	}
	tm.ResetDIV()
	if tm.Divider != 0 {
		t.Fatalf("ResetDIV left DIV at %d, want 0", tm.Divider)
	}
}

func TestTACPackAndUnpack(t *testing.T) {
	tm := New()
	tm.SetTAC(0x07) // enabled, speed select 3
	if tm.Speed != 3 || !tm.Enabled {
		t.Fatalf("SetTAC(0x07) got Speed=%d Enabled=%v", tm.Speed, tm.Enabled)
	}
	if got := tm.TAC(); got != 0x07 {
		t.Fatalf("TAC() got %#02x want %#02x", got, 0x07)
	}

	tm.SetTAC(0x01) // disabled, speed select 1
	if tm.Enabled {
		t.Fatal("expected Enabled=false for TAC bit2 clear")
	}
	if got := tm.TAC(); got != 0x01 {
		t.Fatalf("TAC() got %#02x want %#02x", got, 0x01)
	}
}

func TestCounter_OverflowReloadsFromModuloAndInterrupts(t *testing.T) {
	tm := New()
	tm.SetTAC(0x05) // enabled, speed select 1 -> period 4 M-cycles per tick
	tm.Modulo = 0xF0
	tm.Counter = 0xFF

	irq := tm.Cycle(4)
	if irq&InterruptTimer == 0 {
		t.Fatal("expected a timer interrupt on TIMA overflow")
	}
	if tm.Counter != 0xF0 {
		t.Fatalf("Counter after overflow got %#02x want %#02x", tm.Counter, 0xF0)
	}
}

func TestCounter_DisabledDoesNotAdvance(t *testing.T) {
	tm := New()
	tm.SetTAC(0x00) // disabled
	tm.Cycle(1000)
	if tm.Counter != 0 {
		t.Fatalf("disabled timer advanced Counter to %d", tm.Counter)
	}
}

func TestCounter_PeriodVariesBySpeedSelect(t *testing.T) {
	// Speed select 0 -> period 256 M-cycles (the slowest of the four).
	tm := New()
	tm.SetTAC(0x04) // enabled, speed select 0
	tm.Cycle(255)
	if tm.Counter != 0 {
		t.Fatalf("Counter got %d want 0 before a full period", tm.Counter)
	}
	tm.Cycle(1)
	if tm.Counter != 1 {
		t.Fatalf("Counter got %d want 1 after a full period", tm.Counter)
	}
}
