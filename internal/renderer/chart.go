package renderer

import (
	"math"
	"strings"

	"github.com/dshills/procscope/internal/timeline"
)

// sparkBlocks are the eight vertical bar glyphs, lowest to highest.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline renders the newest samples of a series as a bar string of
// at most width cells. Gaps and NaN values render as spaces so the
// timeline stays index-aligned with the timestamp axis.
func sparkline(samples []timeline.Sample, width int) string {
	if width < 1 || len(samples) == 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	max := 0.0
	for _, s := range samples {
		if s.Valid && !math.IsNaN(s.Value) && s.Value > max {
			max = s.Value
		}
	}

	var b strings.Builder
	for _, s := range samples {
		if !s.Valid || math.IsNaN(s.Value) {
			b.WriteRune(' ')
			continue
		}
		if max == 0 {
			b.WriteRune(sparkBlocks[0])
			continue
		}
		idx := int(s.Value / max * float64(len(sparkBlocks)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
