package lightnotation

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gekko3d/lightnotation/lightrt/rt/preview"
)

var snapshotBackground = color.RGBA{R: 24, G: 24, B: 28, A: 255}

// Snapshot renders a frame on the CPU the way the runtime lays it out: the lighting ball
// above the notation overlay, in a window-sized image. Labels are light names.
func (v *Viewer) Snapshot(r *preview.BallRenderer) (image.Image, error) {
	f, cfg := v.frameAndConfig()

	sampler, err := cfg.Lighting.Sampler.Sampler()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	face, err := preview.LoadFace(cfg.Notation.Font, cfg.Notation.FontSize)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	w, h := cfg.Window.Width, cfg.Window.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(snapshotBackground), image.Point{}, draw.Src)

	center, radius := cfg.BallViewport(w, h)
	if size := int(2 * radius); size > 0 {
		opts := preview.DefaultBallOptions(size)
		opts.Sampler = sampler
		ball := r.Render(f.Lighting, opts)
		at := image.Pt(int(center.X())-size/2, int(center.Y())-size/2)
		draw.Draw(img, ball.Bounds().Add(at), ball, image.Point{}, draw.Over)
	}

	labels := make([]string, len(f.Lights))
	for i, l := range f.Lights {
		labels[i] = l.Name
	}
	preview.RenderNotation(img, f.Glyphs, preview.NotationOptions{Face: face, Labels: labels})

	if n := cfg.Preview.ThumbnailSize; n > 0 {
		return preview.Thumbnail(img, n, n), nil
	}
	return img, nil
}
