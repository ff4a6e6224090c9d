package lightnotation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gekko3d/lightnotation/lightrt/rt/shading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestParseConfig_OverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
window:
  width: 800
  height: 600
notation:
  width_cap: 64
lighting:
  ambient_density: 0.5
  sampler:
    filter: nearest
    address: border
`))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "Light Notation", cfg.Window.Title, "omitted keys keep defaults")
	assert.Equal(t, float32(64), cfg.Notation.WidthCap)
	assert.Equal(t, float32(0.5), cfg.Lighting.AmbientDensity)
	assert.True(t, cfg.Lighting.DefaultLights)

	s, err := cfg.Lighting.Sampler.Sampler()
	require.NoError(t, err)
	assert.Equal(t, shading.FilterNearest, s.Filter)
	assert.Equal(t, shading.AddressClampToBorder, s.Address)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("lighting:\n  ambiant: 0.3\n"))
	assert.Error(t, err)
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"window":  "window:\n  width: 0\n",
		"ambient": "lighting:\n  ambient_density: 2\n",
		"sampler": "lighting:\n  sampler:\n    filter: cubic\n",
		"radius":  "lighting:\n  shadow_sample_radius: -1\n",
		"workers": "preview:\n  workers: -2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightrt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_NotationArea(t *testing.T) {
	cfg := DefaultConfig()

	docked := cfg.NotationArea(1000, 500)
	assert.Equal(t, float32(404), docked.Min.Y())
	assert.Equal(t, float32(1000), docked.Width())
	assert.Equal(t, float32(96), docked.Height())

	cfg.Notation.Area = RectConfig{X: 10, Y: 20, W: 300, H: 50}
	fixed := cfg.NotationArea(1000, 500)
	assert.Equal(t, float32(10), fixed.Min.X())
	assert.Equal(t, float32(70), fixed.Max.Y())
}

func TestConfig_BallViewportAboveStrip(t *testing.T) {
	cfg := DefaultConfig()
	center, radius := cfg.BallViewport(1000, 596)

	assert.Equal(t, float32(500), center.X())
	assert.Equal(t, float32(250), center.Y())
	assert.Equal(t, float32(200), radius)
}
