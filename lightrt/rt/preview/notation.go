// Package preview renders the lighting overlay and a lit sphere on the CPU, for
// snapshots and for environments without a GPU.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	ringSegments = 48
	lineWidth    = 2
)

type NotationOptions struct {
	Background color.Color
	Face       font.Face
	// Labels are drawn under each glyph, by glyph index. Missing entries fall back to
	// the density value.
	Labels []string
}

// NewNotationImage allocates an image covering the notation area and renders glyphs into it.
func NewNotationImage(area core.Rect, glyphs []core.Glyph, opts NotationOptions) *image.RGBA {
	w := int(math.Ceil(float64(area.Max.X())))
	h := int(math.Ceil(float64(area.Max.Y())))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	RenderNotation(img, glyphs, opts)
	return img
}

// RenderNotation draws each glyph: its ring, the light direction arrow, a density bar,
// a frame around the selected light and a label.
func RenderNotation(dst draw.Image, glyphs []core.Glyph, opts NotationOptions) {
	b := dst.Bounds()
	if opts.Background != nil {
		draw.Draw(dst, b, image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}
	face := opts.Face
	if face == nil {
		face = DefaultFace
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	fill := func(c [4]float32, path func(z *vector.Rasterizer)) {
		z.Reset(b.Dx(), b.Dy())
		path(z)
		z.Draw(dst, b, image.NewUniform(toNRGBA(c)), image.Point{})
	}

	for _, g := range glyphs {
		fill(g.Color, func(z *vector.Rasterizer) {
			ring(z, g.Center, g.Radius, lineWidth)
		})

		arrow := g.ArrowTip.Sub(g.Center)
		if arrow.Len() > 1e-3 {
			fill(g.Color, func(z *vector.Rasterizer) {
				segment(z, g.Center, g.ArrowTip, lineWidth)
				dir := arrow.Normalize()
				perp := mgl32.Vec2{-dir.Y(), dir.X()}
				head := g.Radius * 0.25
				back := g.ArrowTip.Sub(dir.Mul(head))
				z.MoveTo(g.ArrowTip.X(), g.ArrowTip.Y())
				z.LineTo(back.X()+perp.X()*head/2, back.Y()+perp.Y()*head/2)
				z.LineTo(back.X()-perp.X()*head/2, back.Y()-perp.Y()*head/2)
				z.ClosePath()
			})
		}

		if bar := g.Bounds.Width() * 0.8 * mgl32.Clamp(g.Density/core.MaxDensity, 0, 1); bar > 0 {
			x0 := g.Bounds.Min.X() + g.Bounds.Width()*0.1
			y := g.Bounds.Max.Y() - g.Bounds.Width()*0.05
			fill(g.Color, func(z *vector.Rasterizer) {
				segment(z, mgl32.Vec2{x0, y}, mgl32.Vec2{x0 + bar, y}, lineWidth)
			})
		}

		if g.Selected {
			fill(core.GlyphSelectedColor, func(z *vector.Rasterizer) {
				frame(z, g.Bounds, lineWidth)
			})
		}

		label := fmt.Sprintf("%.2f", g.Density)
		if g.Index < len(opts.Labels) && opts.Labels[g.Index] != "" {
			label = opts.Labels[g.Index]
		}
		drawLabel(dst, face, label, g, toNRGBA(g.Color))
	}
}

func drawLabel(dst draw.Image, face font.Face, label string, g core.Glyph, c color.Color) {
	adv := font.MeasureString(face, label).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	x := int(g.Center.X()) - adv/2
	y := int(g.Bounds.Min.Y()) + ascent
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

// ring adds a circle outline of the given width; the inner loop winds the other way.
func ring(z *vector.Rasterizer, c mgl32.Vec2, r, width float32) {
	outer := r + width/2
	inner := r - width/2
	if inner < 0 {
		inner = 0
	}
	step := 2 * math.Pi / ringSegments
	z.MoveTo(c.X()+outer, c.Y())
	for i := 1; i <= ringSegments; i++ {
		a := float64(i) * step
		z.LineTo(c.X()+outer*float32(math.Cos(a)), c.Y()+outer*float32(math.Sin(a)))
	}
	z.ClosePath()
	if inner == 0 {
		return
	}
	z.MoveTo(c.X()+inner, c.Y())
	for i := ringSegments - 1; i >= 0; i-- {
		a := float64(i) * step
		z.LineTo(c.X()+inner*float32(math.Cos(a)), c.Y()+inner*float32(math.Sin(a)))
	}
	z.ClosePath()
}

func segment(z *vector.Rasterizer, a, b mgl32.Vec2, width float32) {
	d := b.Sub(a)
	if d.Len() == 0 {
		return
	}
	n := mgl32.Vec2{-d.Y(), d.X()}.Normalize().Mul(width / 2)
	z.MoveTo(a.X()+n.X(), a.Y()+n.Y())
	z.LineTo(b.X()+n.X(), b.Y()+n.Y())
	z.LineTo(b.X()-n.X(), b.Y()-n.Y())
	z.LineTo(a.X()-n.X(), a.Y()-n.Y())
	z.ClosePath()
}

func frame(z *vector.Rasterizer, r core.Rect, width float32) {
	tl, br := r.Min, r.Max
	tr, bl := mgl32.Vec2{br.X(), tl.Y()}, mgl32.Vec2{tl.X(), br.Y()}
	segment(z, tl, tr, width)
	segment(z, tr, br, width)
	segment(z, br, bl, width)
	segment(z, bl, tl, width)
}

func toNRGBA(c [4]float32) color.NRGBA {
	return color.NRGBA{R: unit8(c[0]), G: unit8(c[1]), B: unit8(c[2]), A: unit8(c[3])}
}

func unit8(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
