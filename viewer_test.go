package lightnotation

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/preview"
	"github.com/gekko3d/lightnotation/lightrt/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig docks a 400x100 strip under a 400x400 window; with the four default
// lights each glyph is the 100x100 square of its cell.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 400, 400
	cfg.Notation.StripHeight = 100
	cfg.Notation.WidthCap = 0
	return cfg
}

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	v, err := NewViewer(testConfig(), nil)
	require.NoError(t, err)
	return v
}

func TestNewViewer_DefaultRig(t *testing.T) {
	v := newTestViewer(t)
	f := v.Frame()

	assert.Len(t, f.Lights, core.MaxLights)
	assert.Len(t, f.Glyphs, core.MaxLights)
	assert.Equal(t, -1, f.Selected)
	assert.Equal(t, core.MaxLights, f.Lighting.LightCount)
}

func TestNewViewer_WithoutDefaultLights(t *testing.T) {
	cfg := testConfig()
	cfg.Lighting.DefaultLights = false
	v, err := NewViewer(cfg, nil)
	require.NoError(t, err)

	assert.Empty(t, v.Frame().Lights)
	_, ok := v.Select(mgl32.Vec2{50, 350})
	assert.False(t, ok)
	assert.False(t, v.Set(ParamDensity, 1))
}

func TestNewViewer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Window.Width = -1
	_, err := NewViewer(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestViewer_SelectAndEdit(t *testing.T) {
	v := newTestViewer(t)

	idx, ok := v.Select(mgl32.Vec2{150, 350})
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	assert.True(t, v.Set(ParamDensity, 2))
	assert.True(t, v.Adjust(ParamDensity, 0.5))

	f := v.Frame()
	assert.Equal(t, 1, f.Selected)
	assert.Equal(t, float32(2.5), f.Lights[1].Density)
	assert.Equal(t, float32(1), f.Lights[0].Density)
	assert.True(t, f.Glyphs[1].Selected)
}

func TestViewer_AdjustClamps(t *testing.T) {
	v := newTestViewer(t)
	v.Select(mgl32.Vec2{50, 350})

	v.Adjust(ParamShadowBias, 10)
	l, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, core.MaxShadowBias, l.ShadowBias)
}

func TestViewer_FrameIsDetached(t *testing.T) {
	v := newTestViewer(t)
	v.Select(mgl32.Vec2{50, 350})

	before := v.Frame()
	v.Set(ParamDensity, 5)
	after := v.Frame()

	assert.Equal(t, float32(1), before.Lights[0].Density)
	assert.Equal(t, float32(1), before.Lighting.Lights[0].Density)
	assert.Equal(t, float32(5), after.Lighting.Lights[0].Density)
	assert.Greater(t, after.Index, before.Index)
}

func TestViewer_ConcurrentEditsAndFrames(t *testing.T) {
	v := newTestViewer(t)
	v.Select(mgl32.Vec2{50, 350})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				v.Adjust(ParamDensity, 0.001)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				f := v.Frame()
				assert.Len(t, f.Glyphs, core.MaxLights)
			}
		}()
	}
	wg.Wait()

	l, _ := v.Selected()
	assert.InDelta(t, 1.4, l.Density, 1e-3)
}

func TestViewer_StateRoundTrip(t *testing.T) {
	v := newTestViewer(t)
	v.Select(mgl32.Vec2{250, 350})
	v.Set(ParamSpecular, 1.25)

	path := filepath.Join(t.TempDir(), "rig.yaml")
	require.NoError(t, v.SaveState(path))

	cfg := testConfig()
	cfg.Lighting.DefaultLights = false
	cfg.Scene = path
	restored, err := NewViewer(cfg, nil)
	require.NoError(t, err)

	want := v.LightSources()
	got := restored.LightSources()
	require.Len(t, got, len(want))
	assert.Equal(t, want[2].ID, got[2].ID)
	assert.Equal(t, float32(1.25), got[2].Specular)
	assert.True(t, restored.SelectByID(want[2].ID))
}

func TestViewer_WriteState(t *testing.T) {
	v := newTestViewer(t)
	var buf bytes.Buffer
	require.NoError(t, v.WriteState(&buf))

	st, err := scene.LoadState(&buf)
	require.NoError(t, err)
	assert.Len(t, st.Lights, core.MaxLights)
}

func TestViewer_LoadSceneUnsupported(t *testing.T) {
	v := newTestViewer(t)
	err := v.LoadScene("scene.fbx")
	assert.ErrorIs(t, err, scene.ErrUnsupportedFormat)
	assert.Len(t, v.LightSources(), core.MaxLights, "failed load keeps the rig")
}

func TestViewer_ResizeMovesDockedStrip(t *testing.T) {
	v := newTestViewer(t)
	v.Resize(800, 600)

	_, ok := v.Select(mgl32.Vec2{50, 550})
	assert.True(t, ok)
}

func TestViewer_Snapshot(t *testing.T) {
	cfg := testConfig()
	cfg.Preview.ThumbnailSize = 100
	v, err := NewViewer(cfg, nil)
	require.NoError(t, err)

	img, err := v.Snapshot(preview.NewBallRenderer(2))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestParam_String(t *testing.T) {
	assert.Equal(t, "density", ParamDensity.String())
	assert.Equal(t, "Param(42)", Param(42).String())
}

func TestViewer_FrameMatchesConfigUnderResize(t *testing.T) {
	v := newTestViewer(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				v.Resize(800, 600)
			} else {
				v.Resize(400, 400)
			}
		}
	}()
	for i := 0; i < 100; i++ {
		f, cfg := v.frameAndConfig()
		area := cfg.NotationArea(cfg.Window.Width, cfg.Window.Height)
		require.NotEmpty(t, f.Glyphs)
		assert.Equal(t, area.Max.Y(), f.Glyphs[0].Bounds.Max.Y(), "glyphs belong to the window they are drawn into")
	}
	wg.Wait()
}

func TestViewer_SetShadowPCSS(t *testing.T) {
	v := newTestViewer(t)
	assert.False(t, v.SetShadowPCSS(true))

	v.Select(mgl32.Vec2{50, 350})
	require.True(t, v.SetShadowPCSS(true))
	f := v.Frame()
	assert.True(t, f.Lights[0].ShadowPCSS)
	assert.True(t, f.Lighting.Shadows[0].PCSS)
}
