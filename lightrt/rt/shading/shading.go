// Package shading evaluates the per-fragment lighting shared by every lit pass:
// diffuse opacity, Blinn-Phong specular, percentage-closer soft shadows and the
// composite of up to MaxLights lights. Every function is pure; all tables,
// samplers and shadow maps are passed in explicitly so the same code can run
// inside a CPU preview, a test, or be mirrored one-to-one by the WGSL in
// lightrt/rt/shaders.
package shading

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Diffuse keeps the texel color and scales its alpha by extraOpacity, clamped to [0,1].
func Diffuse(texel mgl32.Vec4, extraOpacity float32) mgl32.Vec4 {
	a := clamp01(texel.W() * max32(extraOpacity, 0))
	return mgl32.Vec4{texel.X(), texel.Y(), texel.Z(), a}
}

// SpecularTerm carries the inputs of one specular evaluation.
type SpecularTerm struct {
	Color mgl32.Vec3
	Power float32

	LightVector            mgl32.Vec3
	LightIntensity         float32
	LightSpecularIntensity float32

	Normal  mgl32.Vec3
	Halfway mgl32.Vec3
	DotNL   float32

	Physical bool
}

// Specular returns Color * LightSpecularIntensity * max(0, N.H)^Power.
// A surface facing away from the light (DotNL <= 0) gets no highlight.
func Specular(t SpecularTerm) mgl32.Vec3 {
	if !(t.DotNL > 0) {
		return mgl32.Vec3{}
	}
	nh := max32(t.Normal.Dot(t.Halfway), 0)
	power := max32(t.Power, 0)
	falloff := float32(math.Pow(float64(nh), float64(power)))
	if nh == 0 && power == 0 {
		falloff = 0
	}
	spec := t.Color.Mul(max32(t.LightSpecularIntensity, 0) * falloff)

	if !t.Physical {
		return spec
	}

	lh := clamp01(t.LightVector.Dot(t.Halfway))
	fresnel := schlick(t.Color, lh)
	norm := (power + 8) / 8
	w := max32(t.LightIntensity, 0) * t.DotNL * norm
	return mgl32.Vec3{
		fresnel[0] * spec[0] * w,
		fresnel[1] * spec[1] * w,
		fresnel[2] * spec[2] * w,
	}
}

func schlick(f0 mgl32.Vec3, cosTheta float32) mgl32.Vec3 {
	k := float32(math.Pow(float64(1-cosTheta), 5))
	return mgl32.Vec3{
		f0[0] + (1-f0[0])*k,
		f0[1] + (1-f0[1])*k,
		f0[2] + (1-f0[2])*k,
	}
}

// Rand hashes a 2D coordinate into [0,1). It has no seed: equal inputs give equal outputs.
func Rand(co mgl32.Vec2) float32 {
	d := float64(co.X())*12.9898 + float64(co.Y())*78.233
	v := math.Sin(d) * 43758.5453
	f := float32(v - math.Floor(v))
	if f >= 1 {
		f = math.Nextafter32(1, 0)
	}
	if f < 0 || f != f {
		f = 0
	}
	return f
}

// Halfway is the normalized sum of the light and eye vectors.
func Halfway(light, eye mgl32.Vec3) mgl32.Vec3 {
	h := light.Add(eye)
	if h.Len() == 0 {
		return mgl32.Vec3{}
	}
	return h.Normalize()
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
