package engine

import (
	"Prism3D/internal/renderer"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func newControlCamera(t *testing.T) *renderer.Camera {
	t.Helper()
	camera, err := renderer.NewPerspectiveCamera(nil, renderer.NewViewportAtOrigo(64, 64),
		mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(60), 0.1, 100)
	if err != nil {
		t.Fatal(err)
	}
	return camera
}

func TestOrbitControlDragKeepsDistance(t *testing.T) {
	camera := newControlCamera(t)
	control := NewOrbitControl(mgl32.Vec3{}, 1, 10)

	if control.HandleEvents(camera, []Event{MouseMotion{Delta: mgl32.Vec2{10, 0}}}) {
		t.Error("Motion without a held button should not move the camera")
	}

	events := []Event{
		MousePress{Button: glfw.MouseButtonLeft},
		MouseMotion{Delta: mgl32.Vec2{10, 5}},
	}
	if !control.HandleEvents(camera, events) {
		t.Fatal("Drag should move the camera")
	}
	if camera.Position() == (mgl32.Vec3{0, 0, 5}) {
		t.Error("Camera did not orbit")
	}
	if d := camera.Position().Len(); !mgl32.FloatEqualThreshold(d, 5, 1e-3) {
		t.Errorf("Orbit changed the distance to %f", d)
	}

	control.HandleEvents(camera, []Event{MouseRelease{Button: glfw.MouseButtonLeft}})
	before := camera.Position()
	control.HandleEvents(camera, []Event{MouseMotion{Delta: mgl32.Vec2{10, 0}}})
	if camera.Position() != before {
		t.Error("Release should end the drag")
	}
}

func TestOrbitControlZoomClamps(t *testing.T) {
	camera := newControlCamera(t)
	control := NewOrbitControl(mgl32.Vec3{}, 1, 10)

	control.HandleEvents(camera, []Event{MouseWheel{Delta: mgl32.Vec2{0, 100}}})
	if d := camera.Position().Len(); !mgl32.FloatEqualThreshold(d, 1, 1e-4) {
		t.Errorf("Zoom in should stop at the minimum distance, got %f", d)
	}
	control.HandleEvents(camera, []Event{MouseWheel{Delta: mgl32.Vec2{0, -1000}}})
	if d := camera.Position().Len(); !mgl32.FloatEqualThreshold(d, 10, 1e-4) {
		t.Errorf("Zoom out should stop at the maximum distance, got %f", d)
	}
}

func TestFlyControlMovesWhileKeyHeld(t *testing.T) {
	camera := newControlCamera(t)
	control := NewFlyControl(2)

	control.HandleEvents(camera, []Event{KeyPress{Key: glfw.KeyW}})
	if !control.Update(camera, 1000) {
		t.Fatal("Held key should move the camera")
	}
	if !camera.Position().ApproxEqualThreshold(mgl32.Vec3{0, 0, 3}, 1e-4) {
		t.Errorf("Expected to move 2 units forward, at %v", camera.Position())
	}

	control.HandleEvents(camera, []Event{KeyRelease{Key: glfw.KeyW}})
	if control.Update(camera, 1000) {
		t.Error("Released key should not move the camera")
	}
}

func TestFlyControlLooksWithRightButton(t *testing.T) {
	camera := newControlCamera(t)
	control := NewFlyControl(1)

	control.HandleEvents(camera, []Event{MouseMotion{Delta: mgl32.Vec2{100, 0}}})
	if camera.ViewDirection() != (mgl32.Vec3{0, 0, -1}) {
		t.Error("Motion without the right button should not turn")
	}

	control.HandleEvents(camera, []Event{
		MousePress{Button: glfw.MouseButtonRight},
		MouseMotion{Delta: mgl32.Vec2{100, 0}},
	})
	if camera.ViewDirection().X() <= 0 {
		t.Errorf("Moving the mouse right should turn right, view %v", camera.ViewDirection())
	}
	if camera.Position() != (mgl32.Vec3{0, 0, 5}) {
		t.Error("Looking should not move the camera")
	}
}
