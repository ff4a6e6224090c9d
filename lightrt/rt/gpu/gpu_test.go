package gpu

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestNotationLayouts(t *testing.T) {
	assert.Equal(t, uintptr(8), unsafe.Sizeof(NotationVertex{}))
	assert.Equal(t, uintptr(48), unsafe.Sizeof(NotationInstance{}))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(NotationInstance{}.Color))
}

func glyph(selected bool, density float32) core.Glyph {
	bounds := core.NewRect(0, 0, 100, 100)
	return core.Glyph{
		Bounds:   bounds,
		Center:   bounds.Center(),
		Radius:   40,
		ArrowTip: mgl32.Vec2{90, 50},
		Density:  density,
		Selected: selected,
		Color:    core.GlyphColor,
	}
}

func TestBuildNotationInstances(t *testing.T) {
	out := BuildNotationInstances([]core.Glyph{glyph(false, 1), glyph(true, 0)})

	assert.Len(t, out[ShapeRing], 2)
	assert.Len(t, out[ShapeArrowHead], 2)
	// Two arrows plus one density bar; the dark light has none.
	assert.Len(t, out[ShapeSegment], 3)
	require.Len(t, out[ShapeFrame], 1)
	assert.Equal(t, core.GlyphSelectedColor, out[ShapeFrame][0].Color)

	ring := out[ShapeRing][0]
	assert.Equal(t, [2]float32{50, 50}, ring.Origin)
	assert.Equal(t, [2]float32{40, 0}, ring.AxisX)

	arrow := out[ShapeArrowHead][0]
	assert.Equal(t, [2]float32{40, 0}, arrow.AxisX)
	assert.Equal(t, [2]float32{0, 40}, arrow.AxisY)
}

func TestBuildNotationInstances_DensityBarScales(t *testing.T) {
	full := BuildNotationInstances([]core.Glyph{glyph(false, core.MaxDensity)})
	half := BuildNotationInstances([]core.Glyph{glyph(false, core.MaxDensity/2)})

	fullBar := full[ShapeSegment][1].AxisX[0]
	halfBar := half[ShapeSegment][1].AxisX[0]
	assert.InDelta(t, 80, fullBar, 1e-4)
	assert.InDelta(t, 40, halfBar, 1e-4)
}

func TestBuildNotationInstances_Empty(t *testing.T) {
	out := BuildNotationInstances(nil)
	for _, shapes := range out {
		assert.Empty(t, shapes)
	}
}

func TestBallParamsMarshal(t *testing.T) {
	mat := core.DefaultMaterial()
	mat.PhysicalReflection = true
	buf := BallParams{Center: [2]float32{320, 240}, Radius: 100, Material: mat, Opacity: 1}.Marshal()

	require.Len(t, buf, BallParamsSize)
	assert.Equal(t, float32(320), f32At(buf, 0))
	assert.Equal(t, float32(240), f32At(buf, 4))
	assert.Equal(t, float32(100), f32At(buf, 8))
	assert.Equal(t, float32(0.6), f32At(buf, 16))
	assert.Equal(t, float32(1), f32At(buf, 28))
	assert.Equal(t, float32(100), f32At(buf, 60))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[64:]))
}
