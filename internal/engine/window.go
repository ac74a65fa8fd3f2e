package engine

import (
	"Prism3D/internal/gpu/glctx"
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// WindowSettings describe the window and its GL context.
type WindowSettings struct {
	Title  string
	Width  uint32
	Height uint32
	VSync  bool
	// X and Y place the window on screen. Negative values leave it to the
	// window manager.
	X, Y int
}

// WindowSettingsFromConfig takes the window part of a render config.
func WindowSettingsFromConfig(c renderer.RenderConfig) WindowSettings {
	return WindowSettings{Title: c.Title, Width: c.Width, Height: c.Height, VSync: c.VSync, X: -1, Y: -1}
}

// Window owns a glfw window, its OpenGL 4.1 core context and the renderer
// context on top of it. Every method must be called from the goroutine that
// created the window.
type Window struct {
	window *glfw.Window
	ctx    *renderer.Context

	events     []Event
	cursor     mgl32.Vec2
	haveCursor bool
}

// NewWindow opens a window and makes its GL context current.
func NewWindow(settings WindowSettings) (*Window, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		logger.Log.Error("Could not initialize glfw", zap.Error(err))
		return nil, err
	}
	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 32)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(settings.Width), int(settings.Height), settings.Title, nil, nil)
	if err != nil {
		logger.Log.Error("Could not create glfw window", zap.Error(err))
		glfw.Terminate()
		return nil, err
	}
	window.MakeContextCurrent()
	if settings.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if settings.X >= 0 && settings.Y >= 0 {
		window.SetPos(settings.X, settings.Y)
	}

	api, err := glctx.New()
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("window: %w", err)
	}
	ctx, err := renderer.NewContext(api)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("window: %w", err)
	}

	w := &Window{window: window, ctx: ctx}
	window.SetKeyCallback(w.keyCallback)
	window.SetMouseButtonCallback(w.mouseButtonCallback)
	window.SetCursorPosCallback(w.cursorCallback)
	window.SetScrollCallback(w.scrollCallback)
	window.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered {
			w.haveCursor = false
		}
	})

	width, height := w.Size()
	logger.Log.Info("Window created",
		zap.String("title", settings.Title),
		zap.Uint32("width", width),
		zap.Uint32("height", height))
	return w, nil
}

// Context is the renderer context of the window.
func (w *Window) Context() *renderer.Context { return w.ctx }

// Size is the framebuffer size in pixels.
func (w *Window) Size() (uint32, uint32) {
	width, height := w.window.GetFramebufferSize()
	return uint32(width), uint32(height)
}

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) { w.window.SetTitle(title) }

// RenderLoop calls frame once per frame until frame asks to exit or the
// window is closed.
func (w *Window) RenderLoop(frame func(FrameInput) FrameOutput) {
	start := glfw.GetTime()
	last := start
	first := true
	for !w.window.ShouldClose() {
		now := glfw.GetTime()
		width, height := w.Size()
		windowWidth, windowHeight := w.window.GetSize()
		ratio := float32(1)
		if windowWidth > 0 {
			ratio = float32(width) / float32(windowWidth)
		}

		input := FrameInput{
			Events:           w.events,
			ElapsedTime:      (now - last) * 1000,
			AccumulatedTime:  (now - start) * 1000,
			Viewport:         renderer.NewViewportAtOrigo(width, height),
			WindowWidth:      uint32(windowWidth),
			WindowHeight:     uint32(windowHeight),
			DevicePixelRatio: ratio,
			FirstFrame:       first,
			Context:          w.ctx,
			Screen:           renderer.Screen(w.ctx, width, height),
		}
		w.events = nil
		first = false
		last = now

		output := frame(input)
		if output.Screenshot != "" {
			if err := SaveScreenshot(output.Screenshot, input.Screen); err != nil {
				logger.Log.Error("Screenshot failed", zap.String("path", output.Screenshot), zap.Error(err))
			} else {
				logger.Log.Info("Screenshot saved", zap.String("path", output.Screenshot))
			}
		}
		if output.Exit {
			break
		}
		if output.Swap {
			w.window.SwapBuffers()
		}
		if output.WaitNextEvent {
			glfw.WaitEvents()
		} else {
			glfw.PollEvents()
		}
	}
}

// Close frees the renderer context and the window.
func (w *Window) Close() {
	w.ctx.Close()
	w.window.Destroy()
	glfw.Terminate()
}

// pixel converts window coordinates, origin top left, to framebuffer pixels
// with the origin at the bottom left.
func (w *Window) pixel(x, y float64) mgl32.Vec2 {
	width, height := w.Size()
	windowWidth, windowHeight := w.window.GetSize()
	if windowWidth == 0 || windowHeight == 0 {
		return mgl32.Vec2{}
	}
	sx := float64(width) / float64(windowWidth)
	sy := float64(height) / float64(windowHeight)
	return mgl32.Vec2{float32(x * sx), float32((float64(windowHeight) - y) * sy)}
}

func (w *Window) keyCallback(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	switch action {
	case glfw.Press:
		w.events = append(w.events, KeyPress{Key: key, Modifiers: mods})
	case glfw.Release:
		w.events = append(w.events, KeyRelease{Key: key, Modifiers: mods})
	}
}

func (w *Window) mouseButtonCallback(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	position := w.pixel(w.window.GetCursorPos())
	switch action {
	case glfw.Press:
		w.events = append(w.events, MousePress{Button: button, Position: position, Modifiers: mods})
	case glfw.Release:
		w.events = append(w.events, MouseRelease{Button: button, Position: position, Modifiers: mods})
	}
}

func (w *Window) cursorCallback(_ *glfw.Window, x, y float64) {
	position := w.pixel(x, y)
	var delta mgl32.Vec2
	if w.haveCursor {
		delta = position.Sub(w.cursor)
	}
	w.cursor, w.haveCursor = position, true
	w.events = append(w.events, MouseMotion{Position: position, Delta: delta})
}

func (w *Window) scrollCallback(_ *glfw.Window, x, y float64) {
	position := w.pixel(w.window.GetCursorPos())
	w.events = append(w.events, MouseWheel{Position: position, Delta: mgl32.Vec2{float32(x), float32(y)}})
}
