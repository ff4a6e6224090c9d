package notation

import (
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// glyphRingScale keeps the ring inside its square so the arrow head stays visible.
const glyphRingScale float32 = 0.8

// layout splits the notation area into one cell per light, left to right. A cell is
// area.W/n wide, capped by the width cap; the glyph is the largest square that fits
// the cell height, centered in the cell.
func (p *Pass) layout() []core.Glyph {
	n := len(p.lights)
	if n == 0 || p.area.Empty() {
		return nil
	}

	cellW := p.area.Width() / float32(n)
	if p.widthCap > 0 && cellW > p.widthCap {
		cellW = p.widthCap
	}
	side := cellW
	if h := p.area.Height(); h < side {
		side = h
	}

	glyphs := make([]core.Glyph, n)
	for i := range p.lights {
		l := &p.lights[i]
		cellX := p.area.Min.X() + float32(i)*cellW
		bounds := core.NewRect(
			cellX+(cellW-side)/2,
			p.area.Min.Y()+(p.area.Height()-side)/2,
			side, side,
		)
		center := bounds.Center()
		radius := side / 2 * glyphRingScale

		dir := l.Direction()
		// Screen y grows downwards, light +Y points up.
		tip := center.Add(mgl32.Vec2{dir.X(), -dir.Y()}.Mul(radius))

		g := core.Glyph{
			Index:     i,
			Bounds:    bounds,
			HitRegion: bounds.Expand(HitMargin),
			Center:    center,
			Radius:    radius,
			ArrowTip:  tip,
			Density:   l.Density,
			Selected:  i == p.selected,
			Color:     core.GlyphColor,
		}
		switch {
		case g.Selected:
			g.Color = core.GlyphSelectedColor
		case l.Density == 0:
			g.Color = core.GlyphDimColor
		}
		glyphs[i] = g
	}
	return glyphs
}
