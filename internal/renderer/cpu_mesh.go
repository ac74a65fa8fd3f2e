package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidMesh = errors.New("invalid mesh")

// CPUMesh is triangle data before upload. Every optional attribute slice is
// either empty or as long as Positions. Without Indices, every three
// positions form a triangle.
type CPUMesh struct {
	Name      string
	Positions []mgl32.Vec3
	Indices   []uint32
	Normals   []mgl32.Vec3
	Tangents  []mgl32.Vec4 // w is the handedness of the bitangent
	UVs       []mgl32.Vec2
	Colors    []mgl32.Vec4
}

func (m *CPUMesh) VertexCount() int { return len(m.Positions) }

func (m *CPUMesh) TriangleCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Validate checks attribute lengths and index ranges.
func (m *CPUMesh) Validate() error {
	n := len(m.Positions)
	if n == 0 {
		return fmt.Errorf("%w %q: no positions", ErrInvalidMesh, m.Name)
	}
	for _, a := range []struct {
		name string
		len  int
	}{
		{"normals", len(m.Normals)},
		{"tangents", len(m.Tangents)},
		{"uvs", len(m.UVs)},
		{"colors", len(m.Colors)},
	} {
		if a.len != 0 && a.len != n {
			return fmt.Errorf("%w %q: %d %s for %d positions", ErrInvalidMesh, m.Name, a.len, a.name, n)
		}
	}
	if len(m.Indices) > 0 {
		if len(m.Indices)%3 != 0 {
			return fmt.Errorf("%w %q: %d indices is not a triangle list", ErrInvalidMesh, m.Name, len(m.Indices))
		}
		for _, i := range m.Indices {
			if int(i) >= n {
				return fmt.Errorf("%w %q: index %d out of range", ErrInvalidMesh, m.Name, i)
			}
		}
	} else if n%3 != 0 {
		return fmt.Errorf("%w %q: %d positions is not a triangle list", ErrInvalidMesh, m.Name, n)
	}
	return nil
}

func (m *CPUMesh) forEachTriangleIndex(fn func(a, b, c int)) {
	if len(m.Indices) > 0 {
		for i := 0; i+2 < len(m.Indices); i += 3 {
			fn(int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2]))
		}
		return
	}
	for i := 0; i+2 < len(m.Positions); i += 3 {
		fn(i, i+1, i+2)
	}
}

func (m *CPUMesh) forEachTriangle(fn func(a, b, c mgl32.Vec3)) {
	m.forEachTriangleIndex(func(a, b, c int) {
		fn(m.Positions[a], m.Positions[b], m.Positions[c])
	})
}

// ComputeAABB returns the bounding box of the positions.
func (m *CPUMesh) ComputeAABB() AABB {
	return NewAABB(m.Positions)
}

// ComputeNormals replaces the normals with area weighted face normals
// averaged per vertex.
func (m *CPUMesh) ComputeNormals() {
	normals := make([]mgl32.Vec3, len(m.Positions))
	m.forEachTriangleIndex(func(a, b, c int) {
		v0, v1, v2 := m.Positions[a], m.Positions[b], m.Positions[c]
		normal := v1.Sub(v0).Cross(v2.Sub(v0))
		normals[a] = normals[a].Add(normal)
		normals[b] = normals[b].Add(normal)
		normals[c] = normals[c].Add(normal)
	})
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	m.Normals = normals
}

// ComputeTangents derives tangents from positions, normals and uvs.
func (m *CPUMesh) ComputeTangents() error {
	if len(m.Normals) == 0 {
		return fmt.Errorf("%w %q: tangents need normals", ErrInvalidMesh, m.Name)
	}
	if len(m.UVs) == 0 {
		return fmt.Errorf("%w %q: tangents need uvs", ErrInvalidMesh, m.Name)
	}
	tangents := make([]mgl32.Vec3, len(m.Positions))
	bitangents := make([]mgl32.Vec3, len(m.Positions))
	m.forEachTriangleIndex(func(a, b, c int) {
		e1 := m.Positions[b].Sub(m.Positions[a])
		e2 := m.Positions[c].Sub(m.Positions[a])
		d1 := m.UVs[b].Sub(m.UVs[a])
		d2 := m.UVs[c].Sub(m.UVs[a])
		det := d1.X()*d2.Y() - d2.X()*d1.Y()
		if det == 0 {
			return
		}
		r := 1 / det
		t := e1.Mul(d2.Y()).Sub(e2.Mul(d1.Y())).Mul(r)
		bt := e2.Mul(d1.X()).Sub(e1.Mul(d2.X())).Mul(r)
		for _, i := range [3]int{a, b, c} {
			tangents[i] = tangents[i].Add(t)
			bitangents[i] = bitangents[i].Add(bt)
		}
	})
	m.Tangents = make([]mgl32.Vec4, len(m.Positions))
	for i, n := range m.Normals {
		// Gram-Schmidt against the normal.
		t := tangents[i].Sub(n.Mul(n.Dot(tangents[i])))
		if t.Len() == 0 {
			t = anyPerpendicular(n)
		}
		t = t.Normalize()
		w := float32(1)
		if n.Cross(t).Dot(bitangents[i]) < 0 {
			w = -1
		}
		m.Tangents[i] = t.Vec4(w)
	}
	return nil
}

func anyPerpendicular(n mgl32.Vec3) mgl32.Vec3 {
	if abs32(n.X()) < 0.9 {
		return n.Cross(mgl32.Vec3{1, 0, 0})
	}
	return n.Cross(mgl32.Vec3{0, 1, 0})
}

// Transform applies m to positions, normals and tangents in place.
func (m *CPUMesh) Transform(t mgl32.Mat4) {
	normalMatrix := t.Inv().Transpose()
	for i, p := range m.Positions {
		m.Positions[i] = mgl32.TransformCoordinate(p, t)
	}
	for i, n := range m.Normals {
		m.Normals[i] = mgl32.TransformNormal(n, normalMatrix).Normalize()
	}
	for i, tan := range m.Tangents {
		m.Tangents[i] = mgl32.TransformNormal(tan.Vec3(), t).Normalize().Vec4(tan.W())
	}
}

// CPUMeshSquare is a square from -1 to 1 in the xy plane facing +z.
func CPUMeshSquare() *CPUMesh {
	return &CPUMesh{
		Name:      "square",
		Positions: []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Tangents:  []mgl32.Vec4{{1, 0, 0, 1}, {1, 0, 0, 1}, {1, 0, 0, 1}, {1, 0, 0, 1}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
}

// CPUMeshCube is a cube from -1 to 1 with separate vertices per face.
func CPUMeshCube() *CPUMesh {
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	mesh := &CPUMesh{Name: "cube"}
	corners := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for _, f := range faces {
		base := uint32(len(mesh.Positions))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c.X()*2 - 1)).Add(f.v.Mul(c.Y()*2 - 1))
			mesh.Positions = append(mesh.Positions, p)
			mesh.Normals = append(mesh.Normals, f.normal)
			mesh.Tangents = append(mesh.Tangents, f.u.Vec4(1))
			mesh.UVs = append(mesh.UVs, c)
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return mesh
}

// CPUMeshSphere is a unit sphere with angleSubdivisions rings and twice as
// many segments.
func CPUMeshSphere(angleSubdivisions uint32) *CPUMesh {
	rings := max(angleSubdivisions, 2)
	segments := rings * 2
	mesh := &CPUMesh{Name: "sphere"}
	for r := uint32(0); r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := uint32(0); s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			p := mgl32.Vec3{
				float32(math.Sin(theta) * math.Cos(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			mesh.Positions = append(mesh.Positions, p)
			mesh.Normals = append(mesh.Normals, p)
			mesh.UVs = append(mesh.UVs, mgl32.Vec2{float32(s) / float32(segments), 1 - float32(r)/float32(rings)})
			tangent := mgl32.Vec3{-float32(math.Sin(phi)), 0, float32(math.Cos(phi))}
			mesh.Tangents = append(mesh.Tangents, tangent.Vec4(1))
		}
	}
	stride := segments + 1
	for r := uint32(0); r < rings; r++ {
		for s := uint32(0); s < segments; s++ {
			a := r*stride + s
			b := a + stride
			mesh.Indices = append(mesh.Indices, a, a+1, b, b, a+1, b+1)
		}
	}
	return mesh
}
