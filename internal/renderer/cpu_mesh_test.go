package renderer

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCPUMeshComputeNormals(t *testing.T) {
	mesh := CPUMeshSquare()
	mesh.Normals = nil
	mesh.ComputeNormals()
	for i, n := range mesh.Normals {
		if !vec3Near(n, mgl32.Vec3{0, 0, 1}, 1e-6) {
			t.Errorf("Normal %d = %v, want +z", i, n)
		}
	}
}

func TestCPUMeshComputeTangents(t *testing.T) {
	mesh := CPUMeshSquare()
	mesh.Tangents = nil
	if err := mesh.ComputeTangents(); err != nil {
		t.Fatalf("ComputeTangents failed: %v", err)
	}
	for i, tan := range mesh.Tangents {
		if !vec3Near(tan.Vec3(), mgl32.Vec3{1, 0, 0}, 1e-6) || tan.W() != 1 {
			t.Errorf("Tangent %d = %v, want (1,0,0,1)", i, tan)
		}
	}

	mesh.UVs = nil
	if err := mesh.ComputeTangents(); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("Tangents without uvs should fail, got %v", err)
	}
}

func TestCPUMeshValidate(t *testing.T) {
	mesh := CPUMeshCube()
	if err := mesh.Validate(); err != nil {
		t.Fatalf("Cube invalid: %v", err)
	}
	mesh.UVs = mesh.UVs[:3]
	if err := mesh.Validate(); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("Short uv slice should be invalid, got %v", err)
	}
	if err := (&CPUMesh{}).Validate(); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("Empty mesh should be invalid, got %v", err)
	}
}

func TestCPUMeshSphereIsUnit(t *testing.T) {
	mesh := CPUMeshSphere(8)
	if err := mesh.Validate(); err != nil {
		t.Fatalf("Sphere invalid: %v", err)
	}
	for _, p := range mesh.Positions {
		if math.Abs(float64(p.Len()-1)) > 1e-5 {
			t.Fatalf("Position %v not on the unit sphere", p)
		}
	}
	box := mesh.ComputeAABB()
	if !vec3Near(box.Min, mgl32.Vec3{-1, -1, -1}, 1e-5) || !vec3Near(box.Max, mgl32.Vec3{1, 1, 1}, 1e-5) {
		t.Errorf("Sphere AABB = %+v", box)
	}
}

func TestCPUMeshCodecRoundTrip(t *testing.T) {
	mesh := CPUMeshCube()
	mesh.Colors = make([]mgl32.Vec4, len(mesh.Positions))
	for i := range mesh.Colors {
		mesh.Colors[i] = mgl32.Vec4{float32(i) / 24, 0, 1, 1}
	}

	var buf bytes.Buffer
	if err := EncodeCPUMesh(&buf, mesh); err != nil {
		t.Fatalf("EncodeCPUMesh failed: %v", err)
	}
	decoded, err := DecodeCPUMesh(&buf)
	if err != nil {
		t.Fatalf("DecodeCPUMesh failed: %v", err)
	}
	if decoded.Name != mesh.Name || len(decoded.Positions) != len(mesh.Positions) || len(decoded.Indices) != len(mesh.Indices) {
		t.Fatalf("Decoded mesh differs: %q %d %d", decoded.Name, len(decoded.Positions), len(decoded.Indices))
	}
	for i := range mesh.Positions {
		if decoded.Positions[i] != mesh.Positions[i] || decoded.Colors[i] != mesh.Colors[i] || decoded.Tangents[i] != mesh.Tangents[i] {
			t.Fatalf("Vertex %d differs after decoding", i)
		}
	}
}

func TestDecodeCPUMeshRejectsGarbage(t *testing.T) {
	if _, err := DecodeCPUMesh(bytes.NewReader([]byte("not a mesh"))); err == nil {
		t.Error("Expected an error for non gzip input")
	}

	var buf bytes.Buffer
	square := CPUMeshSquare()
	if err := EncodeCPUMesh(&buf, square); err != nil {
		t.Fatalf("EncodeCPUMesh failed: %v", err)
	}
	data := buf.Bytes()
	if _, err := DecodeCPUMesh(bytes.NewReader(data[:len(data)/2])); err == nil {
		t.Error("Expected an error for truncated input")
	}
}

func TestRayIntersectCPUMesh(t *testing.T) {
	mesh := CPUMeshSquare()
	ray := Ray{Origin: mgl32.Vec3{0.5, 0.5, 5}, Direction: mgl32.Vec3{0, 0, -1}}

	hit, distance, point := RayIntersectCPUMesh(ray, mesh, mgl32.Translate3D(0, 0, 1))
	if !hit {
		t.Fatal("Expected a hit")
	}
	if math.Abs(float64(distance-4)) > 1e-5 || !vec3Near(point, mgl32.Vec3{0.5, 0.5, 1}, 1e-5) {
		t.Errorf("Hit at %v distance %v", point, distance)
	}

	miss := Ray{Origin: mgl32.Vec3{5, 5, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	if hit, _, _ := RayIntersectCPUMesh(miss, mesh, mgl32.Ident4()); hit {
		t.Error("Expected a miss")
	}
}
