package engine

import (
	"Prism3D/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitControl orbits the camera around Target while the left mouse button
// is held and zooms with the wheel.
type OrbitControl struct {
	Target      mgl32.Vec3
	MinDistance float32
	MaxDistance float32
	RotateSpeed float32
	ZoomSpeed   float32

	dragging bool
}

func NewOrbitControl(target mgl32.Vec3, minDistance, maxDistance float32) *OrbitControl {
	return &OrbitControl{
		Target:      target,
		MinDistance: minDistance,
		MaxDistance: maxDistance,
		RotateSpeed: 1,
		ZoomSpeed:   1,
	}
}

// HandleEvents applies events to camera and reports whether it moved.
func (c *OrbitControl) HandleEvents(camera *renderer.Camera, events []Event) bool {
	changed := false
	for _, event := range events {
		switch e := event.(type) {
		case MousePress:
			if e.Button == glfw.MouseButtonLeft {
				c.dragging = true
			}
		case MouseRelease:
			if e.Button == glfw.MouseButtonLeft {
				c.dragging = false
			}
		case MouseMotion:
			if !c.dragging || e.Delta == (mgl32.Vec2{}) {
				continue
			}
			// Scaled so a drag moves the same angle at every distance.
			scale := c.RotateSpeed * camera.Position().Sub(c.Target).Len() * 0.01
			camera.RotateAroundWithFixedUp(c.Target, -e.Delta.X()*scale, e.Delta.Y()*scale)
			changed = true
		case MouseWheel:
			if e.Delta.Y() == 0 {
				continue
			}
			distance := camera.Position().Sub(c.Target).Len()
			camera.ZoomTowards(c.Target, e.Delta.Y()*c.ZoomSpeed*distance*0.1, c.MinDistance, c.MaxDistance)
			changed = true
		}
	}
	return changed
}

// FlyControl moves the camera with WASD, Space and Left Shift, and turns it
// while the right mouse button is held.
type FlyControl struct {
	// Speed is in world units per second.
	Speed float32
	// Sensitivity is in radians per pixel.
	Sensitivity float32

	held    map[glfw.Key]bool
	looking bool
}

func NewFlyControl(speed float32) *FlyControl {
	return &FlyControl{Speed: speed, Sensitivity: 0.003, held: map[glfw.Key]bool{}}
}

// HandleEvents turns camera and records held keys. Call Update each frame to
// move.
func (c *FlyControl) HandleEvents(camera *renderer.Camera, events []Event) bool {
	changed := false
	for _, event := range events {
		switch e := event.(type) {
		case KeyPress:
			c.held[e.Key] = true
		case KeyRelease:
			delete(c.held, e.Key)
		case MousePress:
			if e.Button == glfw.MouseButtonRight {
				c.looking = true
			}
		case MouseRelease:
			if e.Button == glfw.MouseButtonRight {
				c.looking = false
			}
		case MouseMotion:
			if !c.looking || e.Delta == (mgl32.Vec2{}) {
				continue
			}
			camera.Yaw(-e.Delta.X() * c.Sensitivity)
			camera.Pitch(e.Delta.Y() * c.Sensitivity)
			changed = true
		}
	}
	return changed
}

// Update moves camera for elapsed milliseconds along the held directions.
func (c *FlyControl) Update(camera *renderer.Camera, elapsed float64) bool {
	var move mgl32.Vec3
	for key, direction := range map[glfw.Key]mgl32.Vec3{
		glfw.KeyW:         camera.ViewDirection(),
		glfw.KeyS:         camera.ViewDirection().Mul(-1),
		glfw.KeyD:         camera.RightDirection(),
		glfw.KeyA:         camera.RightDirection().Mul(-1),
		glfw.KeySpace:     camera.Up(),
		glfw.KeyLeftShift: camera.Up().Mul(-1),
	} {
		if c.held[key] {
			move = move.Add(direction)
		}
	}
	if move.Len() == 0 {
		return false
	}
	camera.Translate(move.Normalize().Mul(c.Speed * float32(elapsed/1000)))
	return true
}
