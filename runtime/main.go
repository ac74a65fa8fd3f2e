// Command runtime shows a scene file with the render settings of a config
// file, reloading the config whenever it changes on disk.
package main

import (
	"Prism3D/internal/engine"
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

func main() {
	var (
		scenePath  = flag.String("scene", "", "scene file, defaults to scene.json next to the binary or in assets/")
		configPath = flag.String("config", "", "render config file (.toml or .json), defaults to render.toml found like the scene")
		screenshot = flag.String("screenshot", "screenshot.png", "file written when F12 is pressed")
		preset     = flag.String("preset", "default", "settings used when the config file is missing: default, high or performance")
		level      = flag.String("log", "info", "log level")
	)
	flag.Parse()

	logger.Init()
	defer logger.Sync()
	if err := logger.SetLevel(*level); err != nil {
		logger.Log.Warn("Unknown log level", zap.String("level", *level))
	}

	if err := run(*scenePath, *configPath, *preset, *screenshot); err != nil {
		logger.Log.Error("Viewer failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(scenePath, configPath, preset, screenshot string) error {
	if configPath == "" {
		configPath = findAsset("render.toml")
	}
	if configPath == "" {
		configPath = "render.toml"
	}
	config, err := loadConfig(configPath, preset)
	if err != nil {
		return err
	}
	scene, dir, err := loadScene(scenePath)
	if err != nil {
		return err
	}

	window, err := engine.NewWindow(engine.WindowSettingsFromConfig(config))
	if err != nil {
		return err
	}
	defer window.Close()

	width, height := window.Size()
	v, err := newViewer(window.Context(), config, renderer.NewViewportAtOrigo(width, height), scene, dir)
	if err != nil {
		return err
	}
	defer v.Release()

	var updates <-chan renderer.RenderConfig
	if watcher, err := engine.NewConfigWatcher(configPath); err != nil {
		logger.Log.Warn("Render config will not reload", zap.Error(err))
	} else {
		defer watcher.Close()
		updates = watcher.Updates()
	}

	orbit := engine.NewOrbitControl(vec3(scene.Camera.Target), 0.5, scene.Camera.Far/2)
	window.RenderLoop(func(frame engine.FrameInput) engine.FrameOutput {
		select {
		case next := <-updates:
			v.switchConfig(next)
		default:
		}
		orbit.HandleEvents(v.camera, frame.Events)
		exit, shot := v.handleKeys(frame.Events, screenshot)
		if err := v.render(frame.Screen); err != nil {
			logger.Log.Error("Frame failed", zap.Error(err))
			return engine.FrameOutput{Exit: true}
		}
		return engine.FrameOutput{Exit: exit, Swap: true, Screenshot: shot}
	})
	return nil
}

// loadConfig falls back to preset when path does not exist.
func loadConfig(path, preset string) (renderer.RenderConfig, error) {
	config, err := renderer.LoadRenderConfig(path)
	if !errors.Is(err, fs.ErrNotExist) {
		return config, err
	}
	logger.Log.Info("No render config, using a preset", zap.String("path", path), zap.String("preset", preset))
	switch preset {
	case "high":
		return renderer.HighQualityRenderConfig(), nil
	case "performance":
		return renderer.PerformanceRenderConfig(), nil
	case "default", "":
		return renderer.DefaultRenderConfig(), nil
	}
	return config, fmt.Errorf("unknown preset %q", preset)
}

// loadScene returns the scene and the directory its assets are relative to.
func loadScene(path string) (*SceneData, string, error) {
	if path == "" {
		path = findAsset("scene.json")
	}
	if path == "" {
		logger.Log.Info("No scene file found, showing the default scene")
		return DefaultScene(), ".", nil
	}
	scene, err := LoadScene(path)
	if err != nil {
		return nil, "", err
	}
	return scene, filepath.Dir(path), nil
}

func findAsset(name string) string {
	exePath, _ := os.Executable()
	exeDir := filepath.Dir(exePath)

	paths := []string{
		filepath.Join(exeDir, "assets", name),
		filepath.Join(exeDir, name),
		filepath.Join("assets", name),
		name,
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
