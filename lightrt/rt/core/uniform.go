package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MaxLights        = 4
	MaxShadowCasters = 2

	// LightUniformSize is the byte size of the WGSL LightUniform struct.
	LightUniformSize = MaxLights*48 + MaxShadowCasters*16 + 16

	DefaultShadowSampleRadius float32 = 2.0
	DefaultAmbientDensity     float32 = 0.25

	// Bits of the WGSL ShadowParams.flags word.
	ShadowFlagEnabled uint32 = 1 << 0
	ShadowFlagPCSS    uint32 = 1 << 1
)

// LightParams is the per-light block of the frame uniform.
type LightParams struct {
	Direction     mgl32.Vec3
	Density       float32
	Specular      float32
	DiffuseColor  mgl32.Vec3
	SpecularColor mgl32.Vec3
}

// ShadowParams configures the soft shadow of one of the first MaxShadowCasters lights.
type ShadowParams struct {
	Soften       float32
	Bias         float32
	SampleRadius float32
	Enabled      bool
	PCSS         bool
}

// LightUniform is the frame-boundary snapshot of the light collection.
// It is a plain value: copying it detaches it from the collection.
type LightUniform struct {
	Lights         [MaxLights]LightParams
	Shadows        [MaxShadowCasters]ShadowParams
	AmbientDensity float32
	LightCount     int
}

// BuildLightUniform snapshots up to MaxLights lights. Only the first MaxShadowCasters
// lights are eligible to cast shadows, and only when CastShadow is set.
func BuildLightUniform(lights []LightSource, ambientDensity, sampleRadius float32) LightUniform {
	var u LightUniform
	u.AmbientDensity = clampRange(ambientDensity, 1)
	n := len(lights)
	if n > MaxLights {
		n = MaxLights
	}
	u.LightCount = n
	for i := 0; i < n; i++ {
		l := lights[i]
		u.Lights[i] = LightParams{
			Direction:     l.Direction(),
			Density:       l.Density,
			Specular:      l.Specular,
			DiffuseColor:  l.DiffuseColor,
			SpecularColor: l.SpecularColor,
		}
		if i < MaxShadowCasters {
			u.Shadows[i] = ShadowParams{
				Soften:       l.ShadowSoften,
				Bias:         l.ShadowBias,
				SampleRadius: clampRange(sampleRadius, MaxShadowSoften),
				Enabled:      l.CastShadow,
				PCSS:         l.ShadowPCSS,
			}
		}
	}
	return u
}

// Marshal packs the uniform for the WGSL struct:
//
//	struct LightParams  { direction: vec4<f32>, diffuse: vec4<f32>, specular: vec4<f32> } -- 48
//	                      (diffuse.w = density, specular.w = specular weight)
//	struct ShadowParams { soften: f32, bias: f32, radius: f32, flags: u32 }              -- 16
//	                      (flags bit 0 = enabled, bit 1 = PCSS)
//	struct LightUniform {
//	  lights: array<LightParams, 4>;   -- 0
//	  shadows: array<ShadowParams, 2>; -- 192
//	  ambient_density: f32;            -- 224
//	  light_count: u32;                -- 228
//	} -> 240 bytes (padded)
func (u *LightUniform) Marshal() []byte {
	buf := make([]byte, LightUniformSize)
	putF := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	putV := func(off int, v mgl32.Vec3, w float32) {
		putF(off, v[0])
		putF(off+4, v[1])
		putF(off+8, v[2])
		putF(off+12, w)
	}

	for i, l := range u.Lights {
		off := i * 48
		putV(off, l.Direction, 0)
		putV(off+16, l.DiffuseColor, l.Density)
		putV(off+32, l.SpecularColor, l.Specular)
	}

	for i, s := range u.Shadows {
		off := MaxLights*48 + i*16
		putF(off+0, s.Soften)
		putF(off+4, s.Bias)
		putF(off+8, s.SampleRadius)
		var flags uint32
		if s.Enabled {
			flags |= ShadowFlagEnabled
		}
		if s.PCSS {
			flags |= ShadowFlagPCSS
		}
		binary.LittleEndian.PutUint32(buf[off+12:], flags)
	}

	off := MaxLights*48 + MaxShadowCasters*16
	putF(off, u.AmbientDensity)
	binary.LittleEndian.PutUint32(buf[off+4:], uint32(u.LightCount))
	return buf
}
