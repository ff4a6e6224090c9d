// Package scene turns external scene descriptions into light definitions for the
// notation pass. It never parses model geometry; it only enumerates lights.
package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	ErrNilDescription     = errors.New("scene description is nil")
	ErrUnsupportedFormat  = errors.New("unsupported scene format")
	ErrUnsupportedVersion = errors.New("unsupported light state version")
)

// Description is an opaque handle to a scene produced by an external importer.
type Description interface {
	LightDefinitions() ([]LightDefinition, error)
}

// LightDefinition is one light as described by a scene. When Direction is non-zero it
// wins over RotateX/RotateY.
type LightDefinition struct {
	ID   uuid.UUID
	Name string

	Direction mgl32.Vec3
	RotateX   float32
	RotateY   float32

	Density      float32
	Specular     float32
	ShadowSoften float32
	ShadowBias   float32

	DiffuseColor  mgl32.Vec3
	SpecularColor mgl32.Vec3

	CastShadow bool
	ShadowPCSS bool
}

// NewLightDefinition returns a definition with the default light colors and shadow settings.
func NewLightDefinition(name string, dir mgl32.Vec3, density float32) LightDefinition {
	colors := core.DefaultLightColors()
	return LightDefinition{
		Name:          name,
		Direction:     dir,
		Density:       density,
		ShadowSoften:  core.DefaultShadowSoften,
		ShadowBias:    core.DefaultShadowBias,
		DiffuseColor:  colors.DiffuseColor,
		SpecularColor: colors.SpecularColor,
	}
}

// LightSource converts the definition, clamping every field into its valid range.
func (d LightDefinition) LightSource() core.LightSource {
	l := core.LightSource{
		ID:            d.ID,
		Name:          d.Name,
		RotateX:       d.RotateX,
		RotateY:       d.RotateY,
		Density:       d.Density,
		Specular:      d.Specular,
		ShadowSoften:  d.ShadowSoften,
		ShadowBias:    d.ShadowBias,
		DiffuseColor:  d.DiffuseColor,
		SpecularColor: d.SpecularColor,
		CastShadow:    d.CastShadow,
		ShadowPCSS:    d.ShadowPCSS,
	}
	if d.Direction.Len() > 0 {
		l.SetDirection(d.Direction)
	}
	l.Sanitize()
	return l
}

// Definitions is an in-memory description.
type Definitions []LightDefinition

func (d Definitions) LightDefinitions() ([]LightDefinition, error) {
	out := make([]LightDefinition, len(d))
	copy(out, d)
	return out, nil
}

// Open picks a reader by file extension: glTF (.gltf, .glb) or a light state file (.yaml, .yml).
func Open(path string) (Description, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return OpenGLTF(path)
	case ".yaml", ".yml":
		return ReadStateFile(path)
	default:
		return nil, fmt.Errorf("open %q: %w", path, ErrUnsupportedFormat)
	}
}
