package shading

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightSpacePosition projects p into an orthographic clip space looking along -toLight,
// sized so a sphere of radius extent around the origin fills [-1,1]. Depth runs from 0
// at the light-facing side to 1 at the far side. A degenerate light or extent yields
// W = 0, which ShadowCoverage treats as lit.
func LightSpacePosition(p, toLight mgl32.Vec3, extent float32) mgl32.Vec4 {
	if toLight.Len() == 0 || !(extent > 0) {
		return mgl32.Vec4{}
	}
	w := toLight.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(w.Y())) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	inv := 1 / extent
	return mgl32.Vec4{
		p.Dot(u) * inv,
		p.Dot(v) * inv,
		0.5 - 0.5*p.Dot(w)*inv,
		1,
	}
}
