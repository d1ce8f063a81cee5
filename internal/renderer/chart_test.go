package renderer

import (
	"testing"

	"github.com/dshills/procscope/internal/timeline"
)

func TestSparklineScalesToMax(t *testing.T) {
	samples := []timeline.Sample{
		timeline.Value(0),
		timeline.Value(50),
		timeline.Value(100),
	}
	got := []rune(sparkline(samples, 10))
	if len(got) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(got))
	}
	if got[0] != '▁' {
		t.Errorf("zero should be the lowest block, got %c", got[0])
	}
	if got[2] != '█' {
		t.Errorf("max should be the highest block, got %c", got[2])
	}
}

func TestSparklineGapsAreSpaces(t *testing.T) {
	samples := []timeline.Sample{
		timeline.Value(10),
		timeline.Gap(),
		timeline.Gap(),
		timeline.Value(10),
	}
	got := sparkline(samples, 10)
	if got != "█  █" {
		t.Errorf("expected %q, got %q", "█  █", got)
	}
}

func TestSparklineClipsToWidth(t *testing.T) {
	samples := make([]timeline.Sample, 30)
	for i := range samples {
		samples[i] = timeline.Value(float64(i))
	}
	got := []rune(sparkline(samples, 5))
	if len(got) != 5 {
		t.Fatalf("expected 5 cells, got %d", len(got))
	}
	// Newest samples win.
	if got[4] != '█' {
		t.Errorf("newest sample should be max block, got %c", got[4])
	}
}

func TestSparklineAllZero(t *testing.T) {
	samples := []timeline.Sample{timeline.Value(0), timeline.Value(0)}
	if got := sparkline(samples, 5); got != "▁▁" {
		t.Errorf("flat zero series should render baseline, got %q", got)
	}
}

func TestSparklineEmpty(t *testing.T) {
	if got := sparkline(nil, 5); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	if got := sparkline([]timeline.Sample{timeline.Value(1)}, 0); got != "" {
		t.Errorf("expected empty for zero width, got %q", got)
	}
}
