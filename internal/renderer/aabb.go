package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	inf    = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// AABB is an axis aligned bounding box. The empty box has Min above Max and
// contains nothing; the infinite box contains everything.
type AABB struct {
	Min, Max mgl32.Vec3
}

func EmptyAABB() AABB {
	return AABB{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{negInf, negInf, negInf}}
}

func InfiniteAABB() AABB {
	return AABB{Min: mgl32.Vec3{negInf, negInf, negInf}, Max: mgl32.Vec3{inf, inf, inf}}
}

// NewAABB returns the smallest box containing points.
func NewAABB(points []mgl32.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box.ExpandWithPoint(p)
	}
	return box
}

func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

func (a AABB) IsInfinite() bool {
	return a.Min.X() == negInf && a.Min.Y() == negInf && a.Min.Z() == negInf &&
		a.Max.X() == inf && a.Max.Y() == inf && a.Max.Z() == inf
}

func (a AABB) Center() mgl32.Vec3 { return a.Min.Add(a.Max).Mul(0.5) }

func (a AABB) Size() mgl32.Vec3 { return a.Max.Sub(a.Min) }

// MaxExtent is the length of the diagonal.
func (a AABB) MaxExtent() float32 { return a.Size().Len() }

func (a AABB) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()},
		{a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()},
		{a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()},
		{a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()},
		{a.Max.X(), a.Max.Y(), a.Max.Z()},
	}
}

func (a *AABB) ExpandWithPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		a.Min[i] = min(a.Min[i], p[i])
		a.Max[i] = max(a.Max[i], p[i])
	}
}

func (a *AABB) ExpandWithAABB(other AABB) {
	if other.IsEmpty() {
		return
	}
	a.ExpandWithPoint(other.Min)
	a.ExpandWithPoint(other.Max)
}

// Transformed returns the box containing a after the affine transform m.
func (a AABB) Transformed(m mgl32.Mat4) AABB {
	if a.IsEmpty() || a.IsInfinite() {
		return a
	}
	box := EmptyAABB()
	for _, c := range a.Corners() {
		box.ExpandWithPoint(mgl32.TransformCoordinate(c, m))
	}
	return box
}

func (a AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// Distance returns the distance from p to the closest point of the box, zero
// when p is inside.
func (a AABB) Distance(p mgl32.Vec3) float32 {
	var d mgl32.Vec3
	for i := 0; i < 3; i++ {
		d[i] = max(a.Min[i]-p[i], 0, p[i]-a.Max[i])
	}
	return d.Len()
}

// DistanceMax returns the distance from p to the farthest point of the box.
func (a AABB) DistanceMax(p mgl32.Vec3) float32 {
	var d mgl32.Vec3
	for i := 0; i < 3; i++ {
		d[i] = max(abs32(a.Min[i]-p[i]), abs32(p[i]-a.Max[i]))
	}
	return d.Len()
}
