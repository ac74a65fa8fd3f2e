package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// DistanceToPoint is positive on the side the normal points to.
func (p *Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Frustum is the six planes bounding a view volume, normals pointing inside.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the planes of the clip volume of viewProjection.
func NewFrustum(vp mgl32.Mat4) Frustum {
	var frustum Frustum

	// Left Plane
	frustum.Planes[0] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[0], vp[7] + vp[4], vp[11] + vp[8]},
		Distance: vp[15] + vp[12],
	}

	// Right Plane
	frustum.Planes[1] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[0], vp[7] - vp[4], vp[11] - vp[8]},
		Distance: vp[15] - vp[12],
	}

	// Bottom Plane
	frustum.Planes[2] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[1], vp[7] + vp[5], vp[11] + vp[9]},
		Distance: vp[15] + vp[13],
	}

	// Top Plane
	frustum.Planes[3] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[1], vp[7] - vp[5], vp[11] - vp[9]},
		Distance: vp[15] - vp[13],
	}

	// Near Plane
	frustum.Planes[4] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[2], vp[7] + vp[6], vp[11] + vp[10]},
		Distance: vp[15] + vp[14],
	}

	// Far Plane
	frustum.Planes[5] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[2], vp[7] - vp[6], vp[11] - vp[10]},
		Distance: vp[15] - vp[14],
	}

	for i := 0; i < 6; i++ {
		length := frustum.Planes[i].Normal.Len()
		if length == 0 {
			continue
		}
		frustum.Planes[i].Normal = frustum.Planes[i].Normal.Mul(1.0 / length)
		frustum.Planes[i].Distance /= length
	}

	return frustum
}

func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

// IntersectsAABB is false only when the box lies fully outside one plane.
// Boxes close to a frustum corner may be reported as intersecting, never the
// other way round.
func (f *Frustum) IntersectsAABB(box AABB) bool {
	if box.IsInfinite() {
		return true
	}
	if box.IsEmpty() {
		return false
	}
	for _, plane := range f.Planes {
		// The corner farthest along the plane normal.
		var p mgl32.Vec3
		for i := 0; i < 3; i++ {
			if plane.Normal[i] >= 0 {
				p[i] = box.Max[i]
			} else {
				p[i] = box.Min[i]
			}
		}
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}
