// Package notation owns the light-source collection behind the lighting overlay.
// A Pass lays out one glyph per light inside the notation area, resolves screen
// points to lights, applies manipulator edits to the selected light and hands
// the lit passes a per-frame LightUniform snapshot.
//
// A Pass is not safe for concurrent use; it is driven from the control thread and
// read once per frame boundary.
package notation

import (
	"fmt"
	"math"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// HitMargin grows every glyph's hit region so neighbouring regions overlap.
const HitMargin float32 = 4

const noSelection = -1

type Pass struct {
	lights   []core.LightSource
	selected int

	area     core.Rect
	widthCap float32

	ambientDensity     float32
	shadowSampleRadius float32

	logger core.Logger
}

func NewPass(logger core.Logger) *Pass {
	return &Pass{
		selected:           noSelection,
		ambientDensity:     core.DefaultAmbientDensity,
		shadowSampleRadius: core.DefaultShadowSampleRadius,
		logger:             core.OrNop(logger),
	}
}

// DefaultLightSources returns the initial rig used when no scene is loaded:
// a shadow-casting key light and three dark lights ready to be turned up.
func DefaultLightSources() []core.LightSource {
	lights := make([]core.LightSource, core.MaxLights)
	for i := range lights {
		lights[i] = core.NewLightSource(fmt.Sprintf("light %d", i))
	}
	lights[0].SetDensity(1)
	lights[0].SetSpecular(0.6)
	lights[0].SetShadowSoften(core.DefaultShadowSoften)
	lights[0].SetShadowBias(core.DefaultShadowBias)
	lights[0].CastShadow = true

	lights[1].SetRotateY(math.Pi / 4)
	lights[2].SetRotateY(-math.Pi / 4)
	lights[3].SetRotateX(-math.Pi / 4)
	return lights
}

func (p *Pass) SetNotationArea(r core.Rect) { p.area = r }
func (p *Pass) NotationArea() core.Rect     { return p.area }

// SetNotationWidthCap limits the width of each light's cell; <= 0 removes the cap.
func (p *Pass) SetNotationWidthCap(c float32) {
	if c != c {
		c = 0
	}
	p.widthCap = c
}
func (p *Pass) NotationWidthCap() float32 { return p.widthCap }

func (p *Pass) SetAmbientDensity(v float32) {
	if !(v > 0) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.ambientDensity = v
}
func (p *Pass) AmbientDensity() float32 { return p.ambientDensity }

func (p *Pass) SetShadowSampleRadius(v float32) {
	if !(v > 0) {
		v = 0
	}
	if v > core.MaxShadowSoften {
		v = core.MaxShadowSoften
	}
	p.shadowSampleRadius = v
}
func (p *Pass) ShadowSampleRadius() float32 { return p.shadowSampleRadius }

// LightSources returns a copy of the collection in selection order.
func (p *Pass) LightSources() []core.LightSource {
	out := make([]core.LightSource, len(p.lights))
	copy(out, p.lights)
	return out
}

// SelectedIndex returns the selected light index, or -1 with false when nothing is selected.
func (p *Pass) SelectedIndex() (int, bool) {
	if p.selected == noSelection {
		return noSelection, false
	}
	return p.selected, true
}

// SelectedLightSource returns a copy of the selected light.
func (p *Pass) SelectedLightSource() (core.LightSource, bool) {
	if p.selected == noSelection {
		return core.LightSource{}, false
	}
	return p.lights[p.selected], true
}

// SetLightSources replaces the collection wholesale and clears the selection. Lights past
// core.MaxLights are dropped: they would get glyphs the frame uniform never carries.
func (p *Pass) SetLightSources(lights []core.LightSource) {
	if extra := len(lights) - core.MaxLights; extra > 0 {
		p.logger.Warnf("dropping %d light(s) past the limit of %d", extra, core.MaxLights)
		lights = lights[:core.MaxLights]
	}
	p.lights = make([]core.LightSource, len(lights))
	copy(p.lights, lights)
	for i := range p.lights {
		p.lights[i].Sanitize()
		if i >= core.MaxShadowCasters {
			p.lights[i].CastShadow = false
		}
	}
	p.selected = noSelection
}

// ImportScene replaces the collection with the lights of desc. The selection is always
// cleared on success. A description without lights empties the collection; an
// enumeration failure keeps the previous collection and selection.
func (p *Pass) ImportScene(desc scene.Description) error {
	if desc == nil {
		return fmt.Errorf("import scene: %w", scene.ErrNilDescription)
	}
	defs, err := desc.LightDefinitions()
	if err != nil {
		p.logger.Errorf("light import failed, keeping %d light(s): %v", len(p.lights), err)
		return fmt.Errorf("import scene: %w", err)
	}

	lights := make([]core.LightSource, 0, len(defs))
	for _, d := range defs {
		lights = append(lights, d.LightSource())
	}
	p.SetLightSources(lights)

	if len(lights) == 0 {
		p.logger.Warnf("scene description has no lights; notation is empty")
	} else {
		p.logger.Infof("imported %d light source(s)", len(lights))
	}
	return nil
}

// SelectCurrentLightVector selects the first light, in collection order, whose glyph
// hit region contains point. A miss clears the selection.
func (p *Pass) SelectCurrentLightVector(point mgl32.Vec2) (int, bool) {
	p.selected = noSelection
	for _, g := range p.layout() {
		if g.HitRegion.Contains(point) {
			p.selected = g.Index
			break
		}
	}
	if p.selected != noSelection {
		p.logger.Debugf("selected light %d at %v", p.selected, point)
	}
	return p.SelectedIndex()
}

// SelectByID selects the light with the given id; an unknown id clears the selection.
func (p *Pass) SelectByID(id uuid.UUID) bool {
	p.selected = noSelection
	for i := range p.lights {
		if p.lights[i].ID == id {
			p.selected = i
			return true
		}
	}
	return false
}

func (p *Pass) ClearSelection() { p.selected = noSelection }

// Manipulators. Each edits only the selected light and reports whether one was selected.

func (p *Pass) SetRotateX(v float32) bool {
	return p.edit(func(l *core.LightSource) { l.SetRotateX(v) })
}

func (p *Pass) SetRotateY(v float32) bool {
	return p.edit(func(l *core.LightSource) { l.SetRotateY(v) })
}

func (p *Pass) SetDensity(v float32) bool {
	return p.edit(func(l *core.LightSource) { l.SetDensity(v) })
}

func (p *Pass) SetSpecular(v float32) bool {
	return p.edit(func(l *core.LightSource) { l.SetSpecular(v) })
}

func (p *Pass) SetShadowSoften(v float32) bool {
	return p.edit(func(l *core.LightSource) { l.SetShadowSoften(v) })
}

func (p *Pass) SetShadowBias(v float32) bool {
	return p.edit(func(l *core.LightSource) { l.SetShadowBias(v) })
}

// SetShadowPCSS switches the selected light between fixed-width and blocker-distance penumbras.
func (p *Pass) SetShadowPCSS(on bool) bool {
	return p.edit(func(l *core.LightSource) { l.ShadowPCSS = on })
}

func (p *Pass) edit(fn func(l *core.LightSource)) bool {
	if p.selected == noSelection {
		return false
	}
	fn(&p.lights[p.selected])
	return true
}

// FrameUniforms snapshots the collection for one frame.
func (p *Pass) FrameUniforms() core.LightUniform {
	return core.BuildLightUniform(p.lights, p.ambientDensity, p.shadowSampleRadius)
}

// Glyphs lays out the overlay for the current collection and selection.
func (p *Pass) Glyphs() []core.Glyph {
	return p.layout()
}
