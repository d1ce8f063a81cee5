package selection

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// defaultHex is the built-in chart palette.
var defaultHex = []string{
	"#4FC3F7", // light blue
	"#81C784", // green
	"#FFB74D", // orange
	"#E57373", // red
	"#BA68C8", // purple
	"#FFD54F", // yellow
	"#4DB6AC", // teal
	"#F06292", // pink
	"#A1887F", // brown
	"#90A4AE", // gray
}

// Palette assigns colors to chart series from a fixed finite color
// list. Assignment is a pure function of (selection order index, metric
// category offset) with modulo wraparound: a process keeps its color
// across ticks while its position in the selection ordering is stable,
// and may be recolored when the ordering changes. That positional
// behavior is intentional.
type Palette struct {
	colors []colorful.Color
}

// NewPalette parses a palette from hex color strings.
func NewPalette(hex []string) (*Palette, error) {
	if len(hex) == 0 {
		return nil, fmt.Errorf("palette needs at least one color")
	}
	colors := make([]colorful.Color, 0, len(hex))
	for _, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette color %q: %w", h, err)
		}
		colors = append(colors, c)
	}
	return &Palette{colors: colors}, nil
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() *Palette {
	p, err := NewPalette(defaultHex)
	if err != nil {
		panic(err) // built-in colors are known good
	}
	return p
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.colors)
}

// ColorAt returns the color for the series at the given selection index
// and metric category offset.
func (p *Palette) ColorAt(selIndex, metricOffset int) colorful.Color {
	i := (selIndex + metricOffset) % len(p.colors)
	if i < 0 {
		i += len(p.colors)
	}
	return p.colors[i]
}

// HexAt returns ColorAt formatted as "#rrggbb".
func (p *Palette) HexAt(selIndex, metricOffset int) string {
	return p.ColorAt(selIndex, metricOffset).Hex()
}
