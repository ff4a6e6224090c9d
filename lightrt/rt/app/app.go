package app

import (
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	lightnotation "github.com/gekko3d/lightnotation"
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	rotateStep  float32 = 0.05
	densityStep float32 = 0.1
	softenStep  float32 = 0.5
	biasStep    float32 = 0.0005

	statsPeriod = 2 * time.Second
)

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Viewer   *lightnotation.Viewer
	Uniforms *gpu.UniformManager
	Ball     *gpu.LightingBallPass
	Notation *gpu.NotationRenderPass
	Profiler *Profiler
	Logger   core.Logger

	// StatePath is where the S key writes the light state; empty disables saving.
	StatePath string
	DebugMode bool

	material core.Material
}

func NewApp(window *glfw.Window, viewer *lightnotation.Viewer, logger core.Logger) *App {
	return &App{
		Window:   window,
		Viewer:   viewer,
		Profiler: NewProfiler(),
		Logger:   core.OrNop(logger),
		material: core.DefaultMaterial(),
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)
	a.Viewer.Resize(width, height)

	a.Uniforms = gpu.NewUniformManager(a.Device)
	if a.Ball, err = gpu.NewLightingBallPass(a.Device, format); err != nil {
		return err
	}
	if a.Notation, err = gpu.NewNotationRenderPass(a.Device, format); err != nil {
		return err
	}
	if err := a.Ball.SetShadowMaps(nil, nil); err != nil {
		return fmt.Errorf("shadow maps: %w", err)
	}

	// Buffers must exist before the first bind groups.
	if err := a.Update(); err != nil {
		return err
	}
	a.Profiler.Reset()
	a.Logger.Infof("renderer ready: %dx%d %v", width, height, format)
	return nil
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.Viewer.Resize(w, h)
}

// Update snapshots the viewer and uploads the frame. Bind groups are rebuilt only when
// a uniform buffer was recreated.
func (a *App) Update() error {
	defer a.Profiler.Scope("update")()

	f := a.Viewer.Frame()
	a.Profiler.SetCount("lights", f.Lighting.LightCount)

	w, h := int(a.Config.Width), int(a.Config.Height)
	center, radius := a.Viewer.Config().BallViewport(w, h)

	lightNew, err := a.Uniforms.UpdateLighting(f.Lighting)
	if err != nil {
		return err
	}
	ballNew, err := a.Uniforms.UpdateBall(gpu.BallParams{
		Center:   [2]float32{center.X(), center.Y()},
		Radius:   radius,
		Material: a.material,
		Opacity:  1,
	})
	if err != nil {
		return err
	}
	screenNew, err := a.Uniforms.UpdateScreen(a.Config.Width, a.Config.Height)
	if err != nil {
		return err
	}

	if lightNew || ballNew || a.Ball.UniformBindGroup == nil {
		if err := a.Ball.CreateBindGroup(a.Uniforms.LightBuf, a.Uniforms.BallBuf); err != nil {
			return fmt.Errorf("lighting bind group: %w", err)
		}
	}
	if screenNew || a.Notation.BindGroup == nil {
		if err := a.Notation.CreateBindGroup(a.Uniforms.ScreenBuf); err != nil {
			return fmt.Errorf("notation bind group: %w", err)
		}
	}
	return a.Notation.Update(a.Queue, f.Glyphs)
}

func (a *App) Render() {
	endRender := a.Profiler.Scope("render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		endRender()
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		endRender()
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		endRender()
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.094, G: 0.094, B: 0.11, A: 1},
		}},
	})
	for _, p := range []gpu.Pass{a.Ball, a.Notation} {
		p.Draw(rPass)
	}
	if err := rPass.End(); err != nil {
		a.Logger.Errorf("render pass End failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		endRender()
		a.Logger.Errorf("encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()
	endRender()

	if a.Profiler.FrameDone(statsPeriod) {
		if a.DebugMode {
			a.Logger.Debugf("frame stats:\n%s", a.Profiler.Stats())
		}
		a.Profiler.Reset()
	}
}

// HandleClick selects the light under the cursor on a left press.
func (a *App) HandleClick(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft || action != glfw.Press {
		return
	}
	x, y := a.Window.GetCursorPos()
	w, h := a.Window.GetSize()
	fw, fh := a.Window.GetFramebufferSize()
	point := cursorToFramebuffer(x, y, w, h, fw, fh)

	if idx, ok := a.Viewer.Select(point); ok {
		a.Logger.Infof("selected light %d", idx)
	}
}

// cursorToFramebuffer maps window coordinates to framebuffer pixels, which differ on
// high-DPI displays.
func cursorToFramebuffer(x, y float64, w, h, fw, fh int) mgl32.Vec2 {
	sx, sy := 1.0, 1.0
	if w > 0 && h > 0 {
		sx = float64(fw) / float64(w)
		sy = float64(fh) / float64(h)
	}
	return mgl32.Vec2{float32(x * sx), float32(y * sy)}
}

// HandleKey maps keys to manipulators of the selected light.
//
//	arrows   rotate (left/right about Y, up/down about X)
//	+ / -    density, or specular with shift
//	[ / ]    shadow soften
//	, / .    shadow bias
//	P        toggle PCSS soft shadows
//	S        save the light state
//	Esc      clear selection, or quit when nothing is selected
func (a *App) HandleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	if key == glfw.KeyEscape && action == glfw.Press {
		if _, ok := a.Viewer.Selected(); ok {
			a.Viewer.ClearSelection()
		} else {
			a.Window.SetShouldClose(true)
		}
		return
	}
	if key == glfw.KeyS && action == glfw.Press {
		a.saveState()
		return
	}
	if key == glfw.KeyP && action == glfw.Press {
		if l, ok := a.Viewer.Selected(); ok {
			a.Viewer.SetShadowPCSS(!l.ShadowPCSS)
		}
		return
	}

	p, delta, ok := keyManipulator(key, mods)
	if !ok {
		return
	}
	if !a.Viewer.Adjust(p, delta) {
		a.Logger.Debugf("%v ignored: no light selected", p)
	}
}

func keyManipulator(key glfw.Key, mods glfw.ModifierKey) (lightnotation.Param, float32, bool) {
	shift := mods&glfw.ModShift != 0
	densityParam := lightnotation.ParamDensity
	if shift {
		densityParam = lightnotation.ParamSpecular
	}

	switch key {
	case glfw.KeyLeft:
		return lightnotation.ParamRotateY, -rotateStep, true
	case glfw.KeyRight:
		return lightnotation.ParamRotateY, rotateStep, true
	case glfw.KeyUp:
		return lightnotation.ParamRotateX, -rotateStep, true
	case glfw.KeyDown:
		return lightnotation.ParamRotateX, rotateStep, true
	case glfw.KeyEqual, glfw.KeyKPAdd:
		return densityParam, densityStep, true
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		return densityParam, -densityStep, true
	case glfw.KeyRightBracket:
		return lightnotation.ParamShadowSoften, softenStep, true
	case glfw.KeyLeftBracket:
		return lightnotation.ParamShadowSoften, -softenStep, true
	case glfw.KeyPeriod:
		return lightnotation.ParamShadowBias, biasStep, true
	case glfw.KeyComma:
		return lightnotation.ParamShadowBias, -biasStep, true
	}
	return 0, 0, false
}

func (a *App) saveState() {
	if a.StatePath == "" {
		a.Logger.Warnf("no state path configured, not saving")
		return
	}
	if err := a.Viewer.SaveState(a.StatePath); err != nil {
		a.Logger.Errorf("%v", err)
	}
}

func (a *App) Release() {
	if a.Notation != nil {
		a.Notation.Release()
	}
	if a.Ball != nil {
		a.Ball.Release()
	}
	if a.Uniforms != nil {
		a.Uniforms.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
}
