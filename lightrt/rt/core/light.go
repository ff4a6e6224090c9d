package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const (
	MaxDensity      float32 = 8.0
	MaxSpecular     float32 = 8.0
	MaxShadowSoften float32 = 32.0
	MaxShadowBias   float32 = 0.1

	DefaultShadowSoften float32 = 1.0
	DefaultShadowBias   float32 = 0.002
)

// LightSource is one directional light as seen by the notation overlay.
// The direction is held as two absolute angles so the overlay can drive it
// from independent sliders; Direction derives the unit vector on demand.
type LightSource struct {
	ID   uuid.UUID
	Name string

	RotateX float32 // radians, [-Pi, Pi)
	RotateY float32 // radians, [-Pi, Pi)

	Density      float32
	Specular     float32
	ShadowSoften float32
	ShadowBias   float32

	DiffuseColor  mgl32.Vec3
	SpecularColor mgl32.Vec3

	CastShadow bool
	// ShadowPCSS makes the soft shadow's penumbra follow the blocker distance.
	ShadowPCSS bool
}

// NewLightSource returns an unlit light pointing down +Z with the default light colors.
func NewLightSource(name string) LightSource {
	colors := DefaultLightColors()
	return LightSource{
		ID:            uuid.New(),
		Name:          name,
		DiffuseColor:  colors.DiffuseColor,
		SpecularColor: colors.SpecularColor,
	}
}

// Direction returns the surface-to-light unit vector RotY(ry) * RotX(rx) * +Z.
func (l *LightSource) Direction() mgl32.Vec3 {
	rot := mgl32.Rotate3DY(l.RotateY).Mul3(mgl32.Rotate3DX(l.RotateX))
	dir := rot.Mul3x1(mgl32.Vec3{0, 0, 1})
	if dir.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return dir.Normalize()
}

// SetDirection stores the angles that reproduce dir. A zero vector leaves the light unchanged.
func (l *LightSource) SetDirection(dir mgl32.Vec3) {
	if dir.Len() == 0 || !finite3(dir) {
		return
	}
	dir = dir.Normalize()
	rx := -math.Asin(float64(mgl32.Clamp(dir.Y(), -1, 1)))
	ry := math.Atan2(float64(dir.X()), float64(dir.Z()))
	l.SetRotateX(float32(rx))
	l.SetRotateY(float32(ry))
}

func (l *LightSource) SetRotateX(v float32) { l.RotateX = WrapAngle(v) }
func (l *LightSource) SetRotateY(v float32) { l.RotateY = WrapAngle(v) }

func (l *LightSource) SetDensity(v float32)      { l.Density = clampRange(v, MaxDensity) }
func (l *LightSource) SetSpecular(v float32)     { l.Specular = clampRange(v, MaxSpecular) }
func (l *LightSource) SetShadowSoften(v float32) { l.ShadowSoften = clampRange(v, MaxShadowSoften) }
func (l *LightSource) SetShadowBias(v float32)   { l.ShadowBias = clampRange(v, MaxShadowBias) }

func (l *LightSource) SetDiffuseColor(c mgl32.Vec3)  { l.DiffuseColor = clampColor(c) }
func (l *LightSource) SetSpecularColor(c mgl32.Vec3) { l.SpecularColor = clampColor(c) }

// Sanitize re-applies every range rule, used after a light was built from external data.
func (l *LightSource) Sanitize() {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.SetRotateX(l.RotateX)
	l.SetRotateY(l.RotateY)
	l.SetDensity(l.Density)
	l.SetSpecular(l.Specular)
	l.SetShadowSoften(l.ShadowSoften)
	l.SetShadowBias(l.ShadowBias)
	l.SetDiffuseColor(l.DiffuseColor)
	l.SetSpecularColor(l.SpecularColor)
}

// WrapAngle maps any finite angle into [-Pi, Pi). Non-finite input becomes 0.
func WrapAngle(v float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	w := math.Mod(f+math.Pi, 2*math.Pi)
	if w < 0 {
		w += 2 * math.Pi
	}
	r := float32(w - math.Pi)
	if r >= math.Pi {
		r = -math.Pi
	}
	return r
}

func clampRange(v, hi float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, -1) || v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

func clampColor(c mgl32.Vec3) mgl32.Vec3 {
	for i := range c {
		c[i] = clampRange(c[i], 1)
	}
	return c
}

func finite3(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
