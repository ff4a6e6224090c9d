// Package lightnotation is the lighting overlay of a scene viewer: a small set of
// directional lights drawn as glyphs, picked with the mouse and edited with
// manipulators, plus the shading library the lit passes evaluate.
//
// Viewer is the entry point. It owns a notation pass, serializes access to it and
// hands the render loop immutable per-frame snapshots.
package lightnotation

import (
	"fmt"
	"io"
	"sync"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/notation"
	"github.com/gekko3d/lightnotation/lightrt/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Param names a manipulator of the selected light.
type Param int

const (
	ParamRotateX Param = iota
	ParamRotateY
	ParamDensity
	ParamSpecular
	ParamShadowSoften
	ParamShadowBias
)

func (p Param) String() string {
	switch p {
	case ParamRotateX:
		return "rotate_x"
	case ParamRotateY:
		return "rotate_y"
	case ParamDensity:
		return "density"
	case ParamSpecular:
		return "specular"
	case ParamShadowSoften:
		return "shadow_soften"
	case ParamShadowBias:
		return "shadow_bias"
	default:
		return fmt.Sprintf("Param(%d)", int(p))
	}
}

// Frame is a deep copy of everything a frame needs. It is never mutated after it is
// handed out, so a frame in flight cannot observe a concurrent edit.
type Frame struct {
	Index    uint64
	Lighting core.LightUniform
	Glyphs   []core.Glyph
	Lights   []core.LightSource
	Selected int // -1 when nothing is selected
}

type Viewer struct {
	mu     sync.Mutex
	pass   *notation.Pass
	cfg    Config
	logger core.Logger
	frame  uint64
}

// NewViewer builds a viewer from cfg for a window of cfg.Window size. A configured
// scene is imported immediately; without one the default rig is used when enabled.
func NewViewer(cfg Config, logger core.Logger) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = core.OrNop(logger)

	p := notation.NewPass(logger)
	p.SetNotationArea(cfg.NotationArea(cfg.Window.Width, cfg.Window.Height))
	p.SetNotationWidthCap(cfg.Notation.WidthCap)
	p.SetAmbientDensity(cfg.Lighting.AmbientDensity)
	p.SetShadowSampleRadius(cfg.Lighting.ShadowSampleRadius)
	if cfg.Lighting.DefaultLights {
		p.SetLightSources(notation.DefaultLightSources())
	}

	v := &Viewer{pass: p, cfg: cfg, logger: logger}
	if cfg.Scene != "" {
		if err := v.LoadScene(cfg.Scene); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *Viewer) Config() Config {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

// Frame snapshots the current state and advances the frame counter.
func (v *Viewer) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frameLocked()
}

// frameAndConfig takes a frame and the config it was laid out for under one lock.
func (v *Viewer) frameAndConfig() (Frame, Config) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frameLocked(), v.cfg
}

func (v *Viewer) frameLocked() Frame {
	v.frame++
	sel, ok := v.pass.SelectedIndex()
	if !ok {
		sel = -1
	}
	return Frame{
		Index:    v.frame,
		Lighting: v.pass.FrameUniforms(),
		Glyphs:   v.pass.Glyphs(),
		Lights:   v.pass.LightSources(),
		Selected: sel,
	}
}

func (v *Viewer) LightSources() []core.LightSource {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pass.LightSources()
}

func (v *Viewer) ImportScene(desc scene.Description) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pass.ImportScene(desc)
}

// LoadScene imports lights from a .gltf/.glb scene or a saved .yaml light state.
func (v *Viewer) LoadScene(path string) error {
	desc, err := scene.Open(path)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	if err := v.ImportScene(desc); err != nil {
		return fmt.Errorf("load scene %q: %w", path, err)
	}
	v.logger.Infof("loaded lights from %s", path)
	return nil
}

func (v *Viewer) WriteState(w io.Writer) error {
	return scene.SaveState(w, v.LightSources())
}

func (v *Viewer) SaveState(path string) error {
	if err := scene.WriteStateFile(path, v.LightSources()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	v.logger.Infof("saved light state to %s", path)
	return nil
}

// Resize moves a docked notation strip to the new window size. An explicit area is kept.
func (v *Viewer) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cfg.Window.Width, v.cfg.Window.Height = width, height
	v.pass.SetNotationArea(v.cfg.NotationArea(width, height))
}

func (v *Viewer) SetNotationArea(r core.Rect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pass.SetNotationArea(r)
}

func (v *Viewer) SetNotationWidthCap(c float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pass.SetNotationWidthCap(c)
}

func (v *Viewer) Select(point mgl32.Vec2) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pass.SelectCurrentLightVector(point)
}

func (v *Viewer) SelectByID(id uuid.UUID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pass.SelectByID(id)
}

func (v *Viewer) Selected() (core.LightSource, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pass.SelectedLightSource()
}

func (v *Viewer) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pass.ClearSelection()
}

// Set applies a manipulator to the selected light. It reports false when nothing is selected.
func (v *Viewer) Set(p Param, value float32) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.set(p, value)
}

// SetShadowPCSS toggles blocker-distance penumbras on the selected light.
func (v *Viewer) SetShadowPCSS(on bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	ok := v.pass.SetShadowPCSS(on)
	if ok {
		v.logger.Debugf("shadow_pcss = %v", on)
	}
	return ok
}

// Adjust adds delta to a parameter of the selected light, clamping like Set.
func (v *Viewer) Adjust(p Param, delta float32) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	l, ok := v.pass.SelectedLightSource()
	if !ok {
		return false
	}
	var cur float32
	switch p {
	case ParamRotateX:
		cur = l.RotateX
	case ParamRotateY:
		cur = l.RotateY
	case ParamDensity:
		cur = l.Density
	case ParamSpecular:
		cur = l.Specular
	case ParamShadowSoften:
		cur = l.ShadowSoften
	case ParamShadowBias:
		cur = l.ShadowBias
	default:
		return false
	}
	return v.set(p, cur+delta)
}

func (v *Viewer) set(p Param, value float32) bool {
	var ok bool
	switch p {
	case ParamRotateX:
		ok = v.pass.SetRotateX(value)
	case ParamRotateY:
		ok = v.pass.SetRotateY(value)
	case ParamDensity:
		ok = v.pass.SetDensity(value)
	case ParamSpecular:
		ok = v.pass.SetSpecular(value)
	case ParamShadowSoften:
		ok = v.pass.SetShadowSoften(value)
	case ParamShadowBias:
		ok = v.pass.SetShadowBias(value)
	default:
		v.logger.Warnf("unknown manipulator %v", p)
		return false
	}
	if ok {
		v.logger.Debugf("%v = %v", p, value)
	}
	return ok
}
