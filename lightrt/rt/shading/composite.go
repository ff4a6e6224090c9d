package shading

import (
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Fragment is the interpolated per-fragment input of a lit pass.
type Fragment struct {
	Eye mgl32.Vec3

	DiffuseColor  mgl32.Vec3
	AmbientColor  mgl32.Vec3
	SpecularColor mgl32.Vec3
	SpecularPower float32
	Opacity       float32

	ShadowPosition [core.MaxShadowCasters]mgl32.Vec4

	PhysicalReflection bool
}

// NewFragment fills a fragment from material constants; shadow positions are left unset.
func NewFragment(m core.Material, eye mgl32.Vec3) Fragment {
	return Fragment{
		Eye:                eye,
		DiffuseColor:       m.DiffuseColor,
		AmbientColor:       m.AmbientColor,
		SpecularColor:      m.SpecularColor,
		SpecularPower:      m.SpecularPower,
		Opacity:            1,
		PhysicalReflection: m.PhysicalReflection,
	}
}

// Composite lights one fragment with every light in lighting. Direct terms of the first
// MaxShadowCasters lights are scaled by 1 - coverage when their shadow is enabled; the
// ambient term is never shadowed.
func Composite(frag Fragment, normal mgl32.Vec3, lighting core.LightUniform, texel mgl32.Vec4,
	shadowMaps [core.MaxShadowCasters]ShadowMap, s Sampler) mgl32.Vec4 {

	if normal.Len() > 0 {
		normal = normal.Normalize()
	}
	eye := frag.Eye
	if eye.Len() > 0 {
		eye = eye.Normalize()
	}
	base := mulVec(frag.DiffuseColor, texel.Vec3())

	ambient := mulVec(frag.AmbientColor, texel.Vec3()).Mul(clamp01(lighting.AmbientDensity))

	var direct mgl32.Vec3
	n := lighting.LightCount
	if n > core.MaxLights {
		n = core.MaxLights
	}
	for i := 0; i < n; i++ {
		lp := lighting.Lights[i]
		l := lp.Direction
		if l.Len() == 0 {
			continue
		}
		l = l.Normalize()
		dotNL := normal.Dot(l)

		diffuse := mulVec(lp.DiffuseColor, base).Mul(max32(dotNL, 0) * lp.Density)
		specular := Specular(SpecularTerm{
			Color:                  mulVec(frag.SpecularColor, lp.SpecularColor),
			Power:                  frag.SpecularPower,
			LightVector:            l,
			LightIntensity:         lp.Density,
			LightSpecularIntensity: lp.Specular,
			Normal:                 normal,
			Halfway:                Halfway(l, eye),
			DotNL:                  dotNL,
			Physical:               frag.PhysicalReflection,
		})

		lit := float32(1)
		if i < core.MaxShadowCasters && lighting.Shadows[i].Enabled {
			sp := lighting.Shadows[i]
			coverage := ShadowCoverage(ShadowQuery{
				Position:     frag.ShadowPosition[i],
				BiasFactor:   sp.Bias,
				SurfaceAngle: dotNL,
				SoftenFactor: sp.Soften,
				SampleRadius: sp.SampleRadius,
				PCSS:         sp.PCSS,
			}, shadowMaps[i], s)
			lit = 1 - coverage
		}

		direct = direct.Add(diffuse.Add(specular).Mul(lit))
	}

	rgb := ambient.Add(direct)
	alpha := Diffuse(texel, frag.Opacity).W()
	return mgl32.Vec4{rgb.X(), rgb.Y(), rgb.Z(), alpha}
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
