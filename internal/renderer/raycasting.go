package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// RayIntersectAABB tests a ray against a box with the slab method. A ray
// starting inside the box hits at distance 0.
// Returns: (intersected, distance, intersection point)
func RayIntersectAABB(ray Ray, box AABB) (bool, float32, mgl32.Vec3) {
	if box.IsEmpty() {
		return false, 0, mgl32.Vec3{}
	}
	tMin, tMax := negInf, inf
	for i := 0; i < 3; i++ {
		if ray.Direction[i] == 0 {
			if ray.Origin[i] < box.Min[i] || ray.Origin[i] > box.Max[i] {
				return false, 0, mgl32.Vec3{}
			}
			continue
		}
		inv := 1 / ray.Direction[i]
		t0 := (box.Min[i] - ray.Origin[i]) * inv
		t1 := (box.Max[i] - ray.Origin[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = max(tMin, t0)
		tMax = min(tMax, t1)
		if tMax < tMin {
			return false, 0, mgl32.Vec3{}
		}
	}
	if tMax < 0 {
		return false, 0, mgl32.Vec3{}
	}
	t := max(tMin, 0)
	return true, t, ray.At(t)
}

// RayIntersectTriangle tests if a ray intersects a triangle
// Returns: (intersected, distance, intersection point)
// Uses Möller-Trumbore algorithm
func RayIntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return false, 0, mgl32.Vec3{} // Ray is parallel to triangle
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	t := f * edge2.Dot(q)
	if t > epsilon {
		return true, t, ray.At(t)
	}
	return false, 0, mgl32.Vec3{} // Line intersection but not ray intersection
}

// RayIntersectCPUMesh returns the closest hit of ray with the triangles of
// mesh after transform.
func RayIntersectCPUMesh(ray Ray, mesh *CPUMesh, transform mgl32.Mat4) (bool, float32, mgl32.Vec3) {
	hit, best, point := false, inf, mgl32.Vec3{}
	mesh.forEachTriangle(func(a, b, c mgl32.Vec3) {
		a = mgl32.TransformCoordinate(a, transform)
		b = mgl32.TransformCoordinate(b, transform)
		c = mgl32.TransformCoordinate(c, transform)
		if ok, t, p := RayIntersectTriangle(ray, a, b, c); ok && t < best {
			hit, best, point = true, t, p
		}
	})
	if !hit {
		return false, 0, mgl32.Vec3{}
	}
	return true, best, point
}
