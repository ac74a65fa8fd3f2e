package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFrustumOrthographic(t *testing.T) {
	// 4 units tall and wide, looking down -z from z=5, near 0.1 far 20.
	cam, err := NewOrthographicCamera(nil, NewViewportAtOrigo(64, 64),
		mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, 4, 0.1, 20)
	if err != nil {
		t.Fatalf("NewOrthographicCamera failed: %v", err)
	}
	frustum := cam.Frustum()

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"inside", NewAABB([]mgl32.Vec3{{-0.5, -0.5, -0.5}, {0.5, 0.5, 0.5}}), true},
		{"straddling right edge", NewAABB([]mgl32.Vec3{{1.5, 0, 0}, {2.5, 1, 1}}), true},
		{"right of volume", NewAABB([]mgl32.Vec3{{2.5, 0, 0}, {3, 1, 1}}), false},
		{"above volume", NewAABB([]mgl32.Vec3{{0, 2.5, 0}, {1, 3, 1}}), false},
		{"behind near plane", NewAABB([]mgl32.Vec3{{-1, -1, 5}, {1, 1, 6}}), false},
		{"past far plane", NewAABB([]mgl32.Vec3{{-1, -1, -30}, {1, 1, -16}}), false},
		{"infinite", InfiniteAABB(), true},
		{"empty", EmptyAABB(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := frustum.IntersectsAABB(tt.box); got != tt.want {
				t.Errorf("IntersectsAABB = %v, want %v", got, tt.want)
			}
			if got := cam.InFrustum(tt.box); got != tt.want {
				t.Errorf("InFrustum = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrustumSphere(t *testing.T) {
	cam := newMathCamera(t, NewViewportAtOrigo(64, 64))
	frustum := cam.Frustum()
	if !frustum.IntersectsSphere(mgl32.Vec3{}, 1) {
		t.Error("Sphere at the target should be visible")
	}
	if frustum.IntersectsSphere(mgl32.Vec3{0, 0, 20}, 1) {
		t.Error("Sphere behind the camera should be culled")
	}
	if !frustum.IntersectsSphere(mgl32.Vec3{0, 0, 5.5}, 1) {
		t.Error("Sphere touching the near plane should be visible")
	}
}
