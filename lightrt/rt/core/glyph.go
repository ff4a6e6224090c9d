package core

import "github.com/go-gl/mathgl/mgl32"

var (
	GlyphColor         = [4]float32{0.75, 0.75, 0.75, 0.9}
	GlyphSelectedColor = [4]float32{1.0, 0.78, 0.1, 1.0}
	GlyphDimColor      = [4]float32{0.4, 0.4, 0.4, 0.6}
)

// Rect is an axis-aligned screen-space rectangle, y growing downwards.
type Rect struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

func NewRect(x, y, w, h float32) Rect {
	return Rect{Min: mgl32.Vec2{x, y}, Max: mgl32.Vec2{x + w, y + h}}
}

func (r Rect) Width() float32  { return r.Max.X() - r.Min.X() }
func (r Rect) Height() float32 { return r.Max.Y() - r.Min.Y() }

func (r Rect) Center() mgl32.Vec2 {
	return r.Min.Add(r.Max).Mul(0.5)
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains is inclusive on every edge so that a point on a shared border hits both neighbours.
func (r Rect) Contains(p mgl32.Vec2) bool {
	return p.X() >= r.Min.X() && p.X() <= r.Max.X() &&
		p.Y() >= r.Min.Y() && p.Y() <= r.Max.Y()
}

func (r Rect) Expand(m float32) Rect {
	return Rect{
		Min: mgl32.Vec2{r.Min.X() - m, r.Min.Y() - m},
		Max: mgl32.Vec2{r.Max.X() + m, r.Max.Y() + m},
	}
}

// Glyph is the overlay representation of one light: a ring sized to its cell with
// an arrow from the ring center towards the projected light direction.
type Glyph struct {
	Index     int
	Bounds    Rect
	HitRegion Rect
	Center    mgl32.Vec2
	Radius    float32
	ArrowTip  mgl32.Vec2
	Density   float32
	Selected  bool
	Color     [4]float32
}
