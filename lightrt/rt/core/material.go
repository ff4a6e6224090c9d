package core

import "github.com/go-gl/mathgl/mgl32"

// Material holds the reflectance constants a lit pass feeds into the shading functions.
type Material struct {
	AmbientColor  mgl32.Vec3
	DiffuseColor  mgl32.Vec3
	SpecularColor mgl32.Vec3
	SpecularPower float32

	// PhysicalReflection weights the specular term with Fresnel and energy normalization.
	PhysicalReflection bool
}

func DefaultMaterial() Material {
	return Material{
		AmbientColor:  mgl32.Vec3{0.6, 0.6, 0.6},
		DiffuseColor:  mgl32.Vec3{0.6, 0.6, 0.6},
		SpecularColor: mgl32.Vec3{1, 1, 1},
		SpecularPower: 100,
	}
}

// LightColors are the colors a light contributes when none were imported.
type LightColors struct {
	DiffuseColor  mgl32.Vec3
	SpecularColor mgl32.Vec3
}

func DefaultLightColors() LightColors {
	return LightColors{
		DiffuseColor:  mgl32.Vec3{1, 1, 1},
		SpecularColor: mgl32.Vec3{0.5, 0.5, 0.5},
	}
}
