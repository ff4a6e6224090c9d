package shading

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDiffuse_KeepsColorAndScalesAlpha(t *testing.T) {
	texel := mgl32.Vec4{0.2, 0.4, 0.6, 0.8}
	out := Diffuse(texel, 0.5)

	assert.Equal(t, texel.Vec3(), out.Vec3())
	assert.InDelta(t, 0.4, out.W(), 1e-6)

	assert.Equal(t, float32(1), Diffuse(mgl32.Vec4{0, 0, 0, 0.9}, 4).W(), "alpha clamps at 1")
	assert.Equal(t, float32(0), Diffuse(texel, -2).W(), "negative opacity clamps at 0")
}

func TestDiffuse_OpacityComposes(t *testing.T) {
	texel := mgl32.Vec4{1, 1, 1, 0.9}
	twice := Diffuse(Diffuse(texel, 0.5), 0.5)
	once := Diffuse(texel, 0.25)
	assert.InDelta(t, once.W(), twice.W(), 1e-6)
}

func TestDiffuse_MonotonicInOpacity(t *testing.T) {
	texel := mgl32.Vec4{0.3, 0.3, 0.3, 0.7}
	prev := float32(-1)
	for op := float32(0); op <= 3; op += 0.05 {
		a := Diffuse(texel, op).W()
		assert.GreaterOrEqual(t, a, prev, "opacity %v", op)
		prev = a
	}
}

func TestSpecular_BlinnPhong(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	h := mgl32.Vec3{0, 0.6, 0.8}
	got := Specular(SpecularTerm{
		Color:                  mgl32.Vec3{1, 0.5, 0.25},
		Power:                  2,
		LightIntensity:         3,
		LightSpecularIntensity: 0.5,
		Normal:                 n,
		Halfway:                h,
		DotNL:                  0.7,
	})
	// 0.8^2 * 0.5 = 0.32
	assert.InDelta(t, 0.32, got.X(), 1e-5)
	assert.InDelta(t, 0.16, got.Y(), 1e-5)
	assert.InDelta(t, 0.08, got.Z(), 1e-5)
}

func TestSpecular_ZeroWhenBackFacing(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		h := mgl32.Vec3{float32(rng.NormFloat64()), float32(rng.NormFloat64()), float32(rng.NormFloat64())}
		dotNL := -float32(rng.Float64())
		if i == 0 {
			dotNL = 0
		}
		for _, physical := range []bool{false, true} {
			got := Specular(SpecularTerm{
				Color:                  mgl32.Vec3{1, 1, 1},
				Power:                  16,
				LightVector:            mgl32.Vec3{0, 0, 1},
				LightIntensity:         1,
				LightSpecularIntensity: 1,
				Normal:                 mgl32.Vec3{0, 0, 1},
				Halfway:                h,
				DotNL:                  dotNL,
				Physical:               physical,
			})
			assert.Equal(t, mgl32.Vec3{}, got)
		}
	}
}

func TestSpecular_PhysicalIsWeightedByIntensity(t *testing.T) {
	term := SpecularTerm{
		Color:                  mgl32.Vec3{0.04, 0.04, 0.04},
		Power:                  8,
		LightVector:            mgl32.Vec3{0, 0, 1},
		LightIntensity:         1,
		LightSpecularIntensity: 1,
		Normal:                 mgl32.Vec3{0, 0, 1},
		Halfway:                mgl32.Vec3{0, 0, 1},
		DotNL:                  1,
		Physical:               true,
	}
	one := Specular(term)
	term.LightIntensity = 2
	two := Specular(term)

	assert.Greater(t, one.X(), float32(0))
	assert.InDelta(t, 2*one.X(), two.X(), 1e-6)
}

func TestRand_IsPureAndInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		co := mgl32.Vec2{float32(rng.Float64()*2000 - 1000), float32(rng.Float64()*2000 - 1000)}
		a := Rand(co)
		assert.GreaterOrEqual(t, a, float32(0))
		assert.Less(t, a, float32(1))
		assert.Equal(t, a, Rand(co))
	}
}

func TestRand_Spreads(t *testing.T) {
	var sum float64
	const n = 4096
	for i := 0; i < n; i++ {
		sum += float64(Rand(mgl32.Vec2{float32(i%64) / 64, float32(i/64) / 64}))
	}
	mean := sum / n
	assert.InDelta(t, 0.5, mean, 0.05)
}

func TestHalfway(t *testing.T) {
	h := Halfway(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, 1.0, h.Len(), 1e-6)
	assert.InDelta(t, math.Sqrt2/2, h.X(), 1e-6)
	assert.Equal(t, mgl32.Vec3{}, Halfway(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{-1, 0, 0}))
}
