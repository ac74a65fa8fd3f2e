package loader

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLoadPlane(t *testing.T) {
	mesh, err := LoadPlane(3, 2)
	if err != nil {
		t.Fatalf("LoadPlane failed: %v", err)
	}
	if len(mesh.Positions) != 9 || mesh.TriangleCount() != 8 {
		t.Errorf("Expected 9 vertices and 8 triangles, got %d and %d", len(mesh.Positions), mesh.TriangleCount())
	}
	box := mesh.ComputeAABB()
	if box.Min != (mgl32.Vec3{-2, 0, -2}) || box.Max != (mgl32.Vec3{2, 0, 2}) {
		t.Errorf("Plane should be centered, got %v", box)
	}
	for i, n := range mesh.Normals {
		if !n.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
			t.Errorf("Normal %d = %v, want +y", i, n)
		}
	}
	if err := mesh.Validate(); err != nil {
		t.Errorf("Plane invalid: %v", err)
	}

	if _, err := LoadPlane(1, 1); err == nil {
		t.Error("Expected an error for a single vertex grid")
	}
	if _, err := LoadPlane(4, 0); err == nil {
		t.Error("Expected an error for zero spacing")
	}
}

func TestLoadHeightfieldIsDeterministic(t *testing.T) {
	opts := DefaultHeightfieldOptions()
	opts.GridSize = 16

	a, err := LoadHeightfield(opts)
	if err != nil {
		t.Fatalf("LoadHeightfield failed: %v", err)
	}
	b, err := LoadHeightfield(opts)
	if err != nil {
		t.Fatalf("LoadHeightfield failed: %v", err)
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("Same seed gave different heights at %d", i)
		}
	}

	box := a.ComputeAABB()
	if box.Max.Y() > 2*opts.Amplitude || box.Min.Y() < -2*opts.Amplitude || box.Size().Y() == 0 {
		t.Errorf("Heights outside the amplitude: %v", box)
	}
	if len(a.Colors) != len(a.Positions) {
		t.Fatal("Expected height colors")
	}
	for _, c := range a.Colors {
		for i := 0; i < 4; i++ {
			lo, hi := min(opts.Low[i], opts.High[i]), max(opts.Low[i], opts.High[i])
			if c[i] < lo-1e-5 || c[i] > hi+1e-5 {
				t.Fatalf("Color %v outside the gradient", c)
			}
		}
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Heightfield invalid: %v", err)
	}
}

func TestLoadHeightfieldWithoutColors(t *testing.T) {
	opts := HeightfieldOptions{GridSize: 4, GridSpacing: 1, Amplitude: 1, Frequency: 0.1, Seed: 7}
	mesh, err := LoadHeightfield(opts)
	if err != nil {
		t.Fatalf("LoadHeightfield failed: %v", err)
	}
	if mesh.Colors != nil {
		t.Error("Zero gradient should leave the mesh without colors")
	}
}
