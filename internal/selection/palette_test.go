package selection

import "testing"

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Len() == 0 {
		t.Fatal("default palette is empty")
	}
}

func TestColorAtDeterministic(t *testing.T) {
	p := DefaultPalette()
	a := p.ColorAt(2, 1)
	b := p.ColorAt(2, 1)
	if a != b {
		t.Error("same inputs should give the same color")
	}
}

func TestColorAtWrapsAround(t *testing.T) {
	p := DefaultPalette()
	n := p.Len()

	if p.ColorAt(0, 0) != p.ColorAt(n, 0) {
		t.Error("selection index should wrap modulo palette size")
	}
	if p.ColorAt(3, 2) != p.ColorAt(3+n, 2) {
		t.Error("wraparound should be independent of metric offset")
	}
}

func TestColorAtOffsetShifts(t *testing.T) {
	p := DefaultPalette()
	if p.ColorAt(0, 0) == p.ColorAt(0, 1) {
		t.Error("metric offset should shift the palette position")
	}
}

func TestNewPaletteRejectsBadInput(t *testing.T) {
	if _, err := NewPalette(nil); err == nil {
		t.Error("empty palette should be rejected")
	}
	if _, err := NewPalette([]string{"notacolor"}); err == nil {
		t.Error("invalid hex should be rejected")
	}
}

func TestHexAtRoundTrips(t *testing.T) {
	p, err := NewPalette([]string{"#112233", "#445566"})
	if err != nil {
		t.Fatalf("NewPalette failed: %v", err)
	}
	if got := p.HexAt(0, 0); got != "#112233" {
		t.Errorf("expected #112233, got %s", got)
	}
	if got := p.HexAt(1, 0); got != "#445566" {
		t.Errorf("expected #445566, got %s", got)
	}
	if got := p.HexAt(0, 1); got != "#445566" {
		t.Errorf("offset 1 should select the next color, got %s", got)
	}
}
