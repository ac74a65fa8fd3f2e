package engine

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Event is one input event collected since the previous frame. Positions are
// in framebuffer pixels with the origin at the bottom left, the same
// convention as renderer.Camera.
type Event interface {
	isEvent()
}

type KeyPress struct {
	Key       glfw.Key
	Modifiers glfw.ModifierKey
}

type KeyRelease struct {
	Key       glfw.Key
	Modifiers glfw.ModifierKey
}

type MousePress struct {
	Button    glfw.MouseButton
	Position  mgl32.Vec2
	Modifiers glfw.ModifierKey
}

type MouseRelease struct {
	Button    glfw.MouseButton
	Position  mgl32.Vec2
	Modifiers glfw.ModifierKey
}

// MouseMotion has Delta zero for the first motion after the cursor entered.
type MouseMotion struct {
	Position mgl32.Vec2
	Delta    mgl32.Vec2
}

// MouseWheel carries the scroll offset, positive Y away from the user.
type MouseWheel struct {
	Position mgl32.Vec2
	Delta    mgl32.Vec2
}

func (KeyPress) isEvent()     {}
func (KeyRelease) isEvent()   {}
func (MousePress) isEvent()   {}
func (MouseRelease) isEvent() {}
func (MouseMotion) isEvent()  {}
func (MouseWheel) isEvent()   {}
