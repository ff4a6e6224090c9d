package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	lightnotation "github.com/gekko3d/lightnotation"
	"github.com/gekko3d/lightnotation/lightrt/rt/app"
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/preview"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	scenePath := flag.String("scene", "", "glTF scene or saved light state to import")
	debug := flag.Bool("debug", false, "Enable debug logging and frame stats")
	snapshot := flag.String("snapshot", "", "Render a PNG snapshot to this path and exit")
	stateOut := flag.String("state-out", "lights.yaml", "Where the S key saves the light state")
	flag.Parse()

	if err := run(*configPath, *scenePath, *snapshot, *stateOut, *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, scenePath, snapshot, stateOut string, debug bool) error {
	cfg := lightnotation.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = lightnotation.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if scenePath != "" {
		cfg.Scene = scenePath
	}
	cfg.Debug = cfg.Debug || debug

	logger := core.NewDefaultLogger(cfg.LogPrefix, cfg.Debug)
	viewer, err := lightnotation.NewViewer(cfg, logger)
	if err != nil {
		return err
	}

	if snapshot != "" {
		img, err := viewer.Snapshot(preview.NewBallRenderer(cfg.Preview.Workers))
		if err != nil {
			return err
		}
		if err := preview.SavePNG(snapshot, img); err != nil {
			return err
		}
		logger.Infof("wrote %s", snapshot)
		return nil
	}

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	application := app.NewApp(window, viewer, logger)
	application.DebugMode = cfg.Debug
	application.StatePath = stateOut
	if err := application.Init(); err != nil {
		return err
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleKey(key, action, mods)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleClick(button, action)
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		if err := application.Update(); err != nil {
			logger.Errorf("update: %v", err)
		}
		application.Render()
	}
	return nil
}
