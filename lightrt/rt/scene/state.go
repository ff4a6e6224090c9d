package scene

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const StateVersion = 1

// State is the on-disk form of a light rig. It is itself a Description so a saved
// rig can be imported like any other scene.
type State struct {
	Version int          `yaml:"version"`
	Lights  []LightState `yaml:"lights"`
}

type LightState struct {
	ID           string     `yaml:"id,omitempty"`
	Name         string     `yaml:"name,omitempty"`
	RotateX      float32    `yaml:"rotate_x"`
	RotateY      float32    `yaml:"rotate_y"`
	Density      float32    `yaml:"density"`
	Specular     float32    `yaml:"specular"`
	ShadowSoften float32    `yaml:"shadow_soften"`
	ShadowBias   float32    `yaml:"shadow_bias"`
	Diffuse      [3]float32 `yaml:"diffuse_color,flow"`
	SpecularTint [3]float32 `yaml:"specular_color,flow"`
	CastShadow   bool       `yaml:"cast_shadow"`
	ShadowPCSS   bool       `yaml:"shadow_pcss,omitempty"`
}

func NewState(lights []core.LightSource) *State {
	s := &State{Version: StateVersion, Lights: make([]LightState, len(lights))}
	for i, l := range lights {
		s.Lights[i] = LightState{
			ID:           l.ID.String(),
			Name:         l.Name,
			RotateX:      l.RotateX,
			RotateY:      l.RotateY,
			Density:      l.Density,
			Specular:     l.Specular,
			ShadowSoften: l.ShadowSoften,
			ShadowBias:   l.ShadowBias,
			Diffuse:      l.DiffuseColor,
			SpecularTint: l.SpecularColor,
			CastShadow:   l.CastShadow,
			ShadowPCSS:   l.ShadowPCSS,
		}
	}
	return s
}

func (s *State) LightDefinitions() ([]LightDefinition, error) {
	if s == nil {
		return nil, ErrNilDescription
	}
	if s.Version != StateVersion {
		return nil, fmt.Errorf("light state version %d: %w", s.Version, ErrUnsupportedVersion)
	}
	defs := make([]LightDefinition, len(s.Lights))
	for i, l := range s.Lights {
		var id uuid.UUID
		if l.ID != "" {
			parsed, err := uuid.Parse(l.ID)
			if err != nil {
				return nil, fmt.Errorf("light %d id: %w", i, err)
			}
			id = parsed
		}
		defs[i] = LightDefinition{
			ID:            id,
			Name:          l.Name,
			RotateX:       l.RotateX,
			RotateY:       l.RotateY,
			Density:       l.Density,
			Specular:      l.Specular,
			ShadowSoften:  l.ShadowSoften,
			ShadowBias:    l.ShadowBias,
			DiffuseColor:  mgl32.Vec3(l.Diffuse),
			SpecularColor: mgl32.Vec3(l.SpecularTint),
			CastShadow:    l.CastShadow,
			ShadowPCSS:    l.ShadowPCSS,
		}
	}
	return defs, nil
}

// SaveState writes lights as YAML.
func SaveState(w io.Writer, lights []core.LightSource) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewState(lights)); err != nil {
		return fmt.Errorf("encode light state: %w", err)
	}
	return enc.Close()
}

func LoadState(r io.Reader) (*State, error) {
	var s State
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode light state: empty document: %w", ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decode light state: %w", err)
	}
	return &s, nil
}

func ReadStateFile(path string) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadState(f)
}

func WriteStateFile(path string, lights []core.LightSource) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := SaveState(f, lights); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
