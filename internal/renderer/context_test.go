package renderer

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/gpu/gputest"
	"testing"
)

func newTestContext(t *testing.T) (*Context, *gputest.Fake) {
	t.Helper()
	fake := gputest.New(64, 64)
	ctx, err := NewContext(fake)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	t.Cleanup(ctx.Close)
	return ctx, fake
}

func TestViewportIntersection(t *testing.T) {
	a := Viewport{X: 0, Y: 0, Width: 10, Height: 10}
	b := Viewport{X: 5, Y: 2, Width: 10, Height: 4}
	got := a.Intersection(b)
	want := Viewport{X: 5, Y: 2, Width: 5, Height: 4}
	if got != want {
		t.Errorf("Intersection = %+v, want %+v", got, want)
	}

	disjoint := a.Intersection(Viewport{X: 20, Y: 20, Width: 5, Height: 5})
	if disjoint.Width != 0 || disjoint.Height != 0 {
		t.Errorf("Disjoint viewports should intersect empty, got %+v", disjoint)
	}
}

func TestSetRenderStatesOnlyChangesDifferences(t *testing.T) {
	ctx, fake := newTestContext(t)

	ctx.SetRenderStates(DefaultRenderStates())
	if !fake.IsEnabled(gpu.DepthTestCap) {
		t.Error("Default states should enable the depth test")
	}
	if fake.IsEnabled(gpu.BlendCap) {
		t.Error("Default states should not blend")
	}

	states := DefaultRenderStates()
	states.DepthTest = DepthAlways
	states.WriteMask = WriteMaskColor
	ctx.SetRenderStates(states)
	if fake.IsEnabled(gpu.DepthTestCap) {
		t.Error("Always without depth writes should disable the depth test")
	}
}

func TestContextCloseReleasesPrograms(t *testing.T) {
	fake := gputest.New(8, 8)
	ctx, err := NewContext(fake)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	if _, err := ctx.Programs().GetOrCompile(testVertexSource, testFragmentSource); err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	ctx.Close()

	if n := fake.LiveCount(gpu.KindProgram); n != 0 {
		t.Errorf("Expected no live programs after Close, got %d", n)
	}
	if n := fake.LiveCount(gpu.KindVertexArray); n != 0 {
		t.Errorf("Expected no live vertex arrays after Close, got %d", n)
	}
	if fake.DoubleDeletes != 0 {
		t.Errorf("Expected no double deletes, got %d", fake.DoubleDeletes)
	}
}
