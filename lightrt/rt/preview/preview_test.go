package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.RGBA{A: 255}

func testGlyph(selected bool) core.Glyph {
	bounds := core.NewRect(0, 0, 100, 100)
	return core.Glyph{
		Bounds:    bounds,
		HitRegion: bounds.Expand(4),
		Center:    bounds.Center(),
		Radius:    40,
		ArrowTip:  mgl32.Vec2{90, 50},
		Density:   1,
		Selected:  selected,
		Color:     core.GlyphColor,
	}
}

func TestRenderNotation_DrawsRingAndArrow(t *testing.T) {
	img := NewNotationImage(core.NewRect(0, 0, 100, 100), []core.Glyph{testGlyph(false)},
		NotationOptions{Background: black})

	assert.NotEqual(t, black, img.RGBAAt(50, 10), "top of the ring")
	assert.NotEqual(t, black, img.RGBAAt(70, 50), "arrow shaft")
	assert.Equal(t, black, img.RGBAAt(50, 30), "inside the ring, off the arrow")
	assert.Equal(t, black, img.RGBAAt(1, 1), "corner")
}

func TestRenderNotation_SelectedFrame(t *testing.T) {
	img := NewNotationImage(core.NewRect(0, 0, 100, 100), []core.Glyph{testGlyph(true)},
		NotationOptions{Background: black})

	px := img.RGBAAt(0, 50)
	assert.NotEqual(t, black, px)
	assert.Greater(t, px.R, px.B, "selection frame is drawn in the highlight color")
}

func TestRenderNotation_NoGlyphs(t *testing.T) {
	img := NewNotationImage(core.NewRect(0, 0, 20, 10), nil, NotationOptions{Background: black})
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	assert.Equal(t, black, img.RGBAAt(10, 5))
}

func frontLight(castShadow bool) core.LightSource {
	l := core.NewLightSource("front")
	l.SetDensity(1)
	l.SetSpecular(0.5)
	l.CastShadow = castShadow
	return l
}

func TestBallRenderer_LitFromFront(t *testing.T) {
	r := NewBallRenderer(2)
	opts := DefaultBallOptions(32)

	lit := r.Render(core.BuildLightUniform([]core.LightSource{frontLight(false)}, 0.25, 1), opts)
	dark := r.Render(core.BuildLightUniform(nil, 0.25, 1), opts)

	center := lit.NRGBAAt(16, 16)
	assert.Greater(t, center.R, dark.NRGBAAt(16, 16).R)
	assert.Equal(t, uint8(255), center.A)
	assert.Equal(t, uint8(0), lit.NRGBAAt(0, 0).A, "corner is outside the sphere")
}

func TestBallRenderer_Deterministic(t *testing.T) {
	u := core.BuildLightUniform([]core.LightSource{frontLight(false)}, 0.25, 1)
	opts := DefaultBallOptions(24)

	a := NewBallRenderer(1).Render(u, opts)
	b := NewBallRenderer(4).Render(u, opts)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestBallRenderer_ShadowDarkens(t *testing.T) {
	r := NewBallRenderer(2)
	u := core.BuildLightUniform([]core.LightSource{frontLight(true)}, 0.25, 1)

	free := r.Render(u, DefaultBallOptions(32))

	occluder := shading.NewDepthMap(16, 16)
	occluder.Fill(0)
	opts := DefaultBallOptions(32)
	opts.ShadowMaps[0] = occluder
	shadowed := r.Render(u, opts)

	assert.Less(t, shadowed.NRGBAAt(16, 16).R, free.NRGBAAt(16, 16).R)
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	thumb := Thumbnail(src, 50, 50)
	assert.Equal(t, 50, thumb.Bounds().Dx())
	assert.Equal(t, 25, thumb.Bounds().Dy())
}

func TestWritePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, src))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), decoded.Bounds())
}

func TestLoadFace_DefaultsToBasicFont(t *testing.T) {
	face, err := LoadFace("", 12)
	require.NoError(t, err)
	assert.Equal(t, DefaultFace, face)

	_, err = LoadFace("/does/not/exist.ttf", 12)
	assert.Error(t, err)
}
