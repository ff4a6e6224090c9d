package lightnotation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/shading"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Window    WindowConfig   `yaml:"window"`
	Notation  NotationConfig `yaml:"notation"`
	Lighting  LightingConfig `yaml:"lighting"`
	Preview   PreviewConfig  `yaml:"preview"`
	Scene     string         `yaml:"scene,omitempty"`
	Debug     bool           `yaml:"debug"`
	LogPrefix string         `yaml:"log_prefix"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type RectConfig struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	W float32 `yaml:"w"`
	H float32 `yaml:"h"`
}

type NotationConfig struct {
	// Area is in window pixels. A zero area docks a strip of StripHeight along the
	// bottom of the window and follows resizes.
	Area        RectConfig `yaml:"area"`
	StripHeight float32    `yaml:"strip_height"`
	WidthCap    float32    `yaml:"width_cap"`
	Font        string     `yaml:"font,omitempty"`
	FontSize    float64    `yaml:"font_size"`
}

type SamplerConfig struct {
	Filter  string `yaml:"filter"`  // nearest | linear
	Address string `yaml:"address"` // clamp | repeat | border
}

type LightingConfig struct {
	DefaultLights      bool          `yaml:"default_lights"`
	AmbientDensity     float32       `yaml:"ambient_density"`
	ShadowSampleRadius float32       `yaml:"shadow_sample_radius"`
	Sampler            SamplerConfig `yaml:"sampler"`
}

type PreviewConfig struct {
	Workers       int  `yaml:"workers"`
	ThumbnailSize uint `yaml:"thumbnail_size"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "Light Notation"},
		Notation: NotationConfig{
			StripHeight: 96,
			WidthCap:    128,
			FontSize:    13,
		},
		Lighting: LightingConfig{
			DefaultLights:      true,
			AmbientDensity:     core.DefaultAmbientDensity,
			ShadowSampleRadius: core.DefaultShadowSampleRadius,
			Sampler:            SamplerConfig{Filter: "linear", Address: "clamp"},
		},
		Preview:   PreviewConfig{ThumbnailSize: 256},
		LogPrefix: "lightrt",
	}
}

// ParseConfig reads YAML over DefaultConfig, so omitted keys keep their defaults.
// Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

func (c Config) Validate() error {
	var problems []string
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	a := c.Notation.Area
	if a.W < 0 || a.H < 0 {
		problems = append(problems, fmt.Sprintf("notation area %vx%v", a.W, a.H))
	}
	if c.Notation.StripHeight < 0 {
		problems = append(problems, fmt.Sprintf("notation strip height %v", c.Notation.StripHeight))
	}
	if c.Notation.FontSize <= 0 {
		problems = append(problems, fmt.Sprintf("font size %v", c.Notation.FontSize))
	}
	if c.Lighting.AmbientDensity < 0 || c.Lighting.AmbientDensity > 1 {
		problems = append(problems, fmt.Sprintf("ambient density %v outside [0,1]", c.Lighting.AmbientDensity))
	}
	if c.Lighting.ShadowSampleRadius < 0 || c.Lighting.ShadowSampleRadius > core.MaxShadowSoften {
		problems = append(problems, fmt.Sprintf("shadow sample radius %v", c.Lighting.ShadowSampleRadius))
	}
	if _, err := c.Lighting.Sampler.Sampler(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Preview.Workers < 0 {
		problems = append(problems, fmt.Sprintf("preview workers %d", c.Preview.Workers))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// NotationArea resolves the notation area for a window of the given size.
func (c Config) NotationArea(width, height int) core.Rect {
	a := c.Notation.Area
	if a.W > 0 && a.H > 0 {
		return core.NewRect(a.X, a.Y, a.W, a.H)
	}
	h := c.Notation.StripHeight
	if h > float32(height) {
		h = float32(height)
	}
	return core.NewRect(0, float32(height)-h, float32(width), h)
}

// BallViewport centers the lighting ball in the window space above a docked notation strip.
func (c Config) BallViewport(width, height int) (center mgl32.Vec2, radius float32) {
	area := c.NotationArea(width, height)
	top := float32(height)
	if area.Max.X() >= float32(width) && area.Max.Y() >= float32(height) {
		top = area.Min.Y()
	}
	center = mgl32.Vec2{float32(width) / 2, top / 2}
	radius = 0.4 * min(float32(width), top)
	return center, radius
}

func (s SamplerConfig) Sampler() (shading.Sampler, error) {
	out := shading.DefaultSampler()
	switch strings.ToLower(s.Filter) {
	case "", "linear":
		out.Filter = shading.FilterLinear
	case "nearest":
		out.Filter = shading.FilterNearest
	default:
		return out, fmt.Errorf("sampler filter %q", s.Filter)
	}
	switch strings.ToLower(s.Address) {
	case "", "clamp":
		out.Address = shading.AddressClampToEdge
	case "repeat":
		out.Address = shading.AddressRepeat
	case "border":
		out.Address = shading.AddressClampToBorder
	default:
		return out, fmt.Errorf("sampler address %q", s.Address)
	}
	return out, nil
}
