package renderer

import (
	"Prism3D/internal/gpu"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestCube(t *testing.T, ctx *Context, center mgl32.Vec3, halfSize float32) *Mesh {
	t.Helper()
	mesh, err := NewMesh(ctx, CPUMeshCube())
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}
	mesh.SetTransform(Transform(center, mgl32.QuatIdent(), mgl32.Vec3{halfSize, halfSize, halfSize}))
	t.Cleanup(mesh.Release)
	return mesh
}

func newTestCamera(t *testing.T, ctx *Context, viewport Viewport) *Camera {
	t.Helper()
	cam, err := NewPerspectiveCamera(ctx, viewport,
		mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(60), 0.1, 100)
	if err != nil {
		t.Fatalf("NewPerspectiveCamera failed: %v", err)
	}
	t.Cleanup(cam.Release)
	return cam
}

func TestMeshAABBFollowsTransform(t *testing.T) {
	ctx, _ := newTestContext(t)
	mesh := newTestCube(t, ctx, mgl32.Vec3{2, 0, 0}, 0.5)

	box := mesh.AABB()
	if !vec3Near(box.Min, mgl32.Vec3{1.5, -0.5, -0.5}, 1e-5) || !vec3Near(box.Max, mgl32.Vec3{2.5, 0.5, 0.5}, 1e-5) {
		t.Errorf("AABB = %+v", box)
	}
}

func TestMeshMissingNormals(t *testing.T) {
	ctx, fake := newTestContext(t)
	cpu := CPUMeshCube()
	cpu.Normals = nil
	cpu.Tangents = nil
	mesh, err := NewMesh(ctx, cpu)
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}
	defer mesh.Release()
	cam := newTestCamera(t, ctx, NewViewportAtOrigo(64, 64))

	err = RenderWithMaterial(NewNormalMaterial(), mesh, cam, nil)
	var missing *gpu.MissingMeshBufferError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingMeshBufferError, got %v", err)
	}
	if missing.Attribute != "normal" {
		t.Errorf("Missing attribute = %q, want normal", missing.Attribute)
	}
	if !errors.Is(err, gpu.ErrMissingMeshBuffer) {
		t.Error("Error should match ErrMissingMeshBuffer")
	}
	if len(fake.Draws) != 0 {
		t.Error("Nothing should be drawn")
	}

	if err := RenderWithMaterial(NewOpaqueColorMaterial(mgl32.Vec4{1, 0, 0, 1}, nil), mesh, cam, nil); err != nil {
		t.Errorf("A material without normals should still render: %v", err)
	}
}

func TestMeshRejectsInvalidData(t *testing.T) {
	ctx, _ := newTestContext(t)
	cpu := CPUMeshSquare()
	cpu.Indices = append(cpu.Indices, 0, 1, 9)
	if _, err := NewMesh(ctx, cpu); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("Expected ErrInvalidMesh, got %v", err)
	}
}

func TestMeshDrawBindsCameraBlock(t *testing.T) {
	ctx, fake := newTestContext(t)
	mesh := newTestCube(t, ctx, mgl32.Vec3{}, 1)
	cam := newTestCamera(t, ctx, NewViewportAtOrigo(64, 64))

	if err := RenderWithMaterial(NewNormalMaterial(), mesh, cam, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(fake.Draws) != 1 {
		t.Fatalf("Expected one draw, got %d", len(fake.Draws))
	}
	if !fake.Draws[0].Indexed || fake.Draws[0].Count != 36 {
		t.Errorf("Unexpected draw %+v", fake.Draws[0])
	}
	if fake.UniformBufferAt(0) == nil {
		t.Error("Camera block should be bound")
	}
}

func TestInstancedMesh(t *testing.T) {
	ctx, fake := newTestContext(t)
	instances := Instances{
		Transformations: []mgl32.Mat4{mgl32.Translate3D(-2, 0, 0), mgl32.Translate3D(2, 0, 0)},
		Colors:          []mgl32.Vec4{{1, 0, 0, 1}, {0, 1, 0, 1}},
	}
	im, err := NewInstancedMesh(ctx, instances, CPUMeshCube())
	if err != nil {
		t.Fatalf("NewInstancedMesh failed: %v", err)
	}
	defer im.Release()

	box := im.AABB()
	if box.Min.X() != -3 || box.Max.X() != 3 {
		t.Errorf("Instanced AABB = %+v", box)
	}

	cam := newTestCamera(t, ctx, NewViewportAtOrigo(64, 64))
	if err := RenderWithMaterial(NewOpaqueColorMaterial(mgl32.Vec4{1, 1, 1, 1}, nil), im, cam, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(fake.Draws) != 1 || fake.Draws[0].Instances != 2 {
		t.Errorf("Expected one draw of two instances, got %+v", fake.Draws)
	}

	bad := Instances{Transformations: instances.Transformations, Colors: instances.Colors[:1]}
	if err := im.SetInstances(bad); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("Expected ErrInvalidMesh, got %v", err)
	}
}
