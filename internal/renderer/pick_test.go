package renderer

import (
	"Prism3D/internal/gpu"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPickRendersOnePixel(t *testing.T) {
	ctx, fake := newTestContext(t)
	viewport := Viewport{X: 0, Y: 0, Width: 64, Height: 48}
	cam := newTestCamera(t, ctx, viewport)
	cube := newTestCube(t, ctx, mgl32.Vec3{}, 1)

	_, ok, err := Pick(ctx, cam, mgl32.Vec2{20, 10}, []Geometry{cube})
	if err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	// The fake does not rasterize, so the cleared texel reads as a miss.
	if ok {
		t.Error("Expected a miss on an empty texel")
	}
	if len(fake.Draws) != 1 {
		t.Fatalf("Expected one draw, got %d", len(fake.Draws))
	}
	if got := fake.Draws[0].Viewport; got != [4]int32{-20, -10, 64, 48} {
		t.Errorf("Pick viewport = %v, want the pixel moved to the origin", got)
	}
	if cam.Viewport() != viewport {
		t.Error("Camera viewport should be restored")
	}
	if fake.LiveCount(gpu.KindFramebuffer) != 0 || fake.LiveCount(gpu.KindRenderbuffer) != 0 {
		t.Error("Pick should free its target")
	}
}

func TestEnvironmentMaps(t *testing.T) {
	ctx, fake := newTestContext(t)
	source, err := NewEmptyTextureCubeMap(ctx, "sky", 16, 16, FormatRGBA, TypeF16, TargetSampling())
	if err != nil {
		t.Fatalf("NewEmptyTextureCubeMap failed: %v", err)
	}
	defer source.Release()

	env, err := NewEnvironment(ctx, source)
	if err != nil {
		t.Fatalf("NewEnvironment failed: %v", err)
	}
	defer env.Release()

	if env.Irradiance.Width() != irradianceSize || env.Prefilter.MipLevels() != prefilterMips {
		t.Errorf("Unexpected maps: irradiance %d, prefilter levels %d", env.Irradiance.Width(), env.Prefilter.MipLevels())
	}
	if env.BRDF.Width() != brdfSize {
		t.Errorf("BRDF size = %d", env.BRDF.Width())
	}
	want := 6 + 6*prefilterMips + 1
	if len(fake.Draws) != want {
		t.Errorf("Expected %d effect draws, got %d", want, len(fake.Draws))
	}
	if fake.LiveCount(gpu.KindFramebuffer) != 0 {
		t.Error("Environment targets should be freed")
	}
}

func TestEnvironmentFailureFreesMaps(t *testing.T) {
	ctx, fake := newTestContext(t)
	source, err := NewEmptyTextureCubeMap(ctx, "sky", 16, 16, FormatRGBA, TypeF16, TargetSampling())
	if err != nil {
		t.Fatalf("NewEmptyTextureCubeMap failed: %v", err)
	}
	defer source.Release()
	fake.FailCreate[gpu.KindFramebuffer] = true

	if _, err := NewEnvironment(ctx, source); err == nil {
		t.Fatal("Expected an error")
	}
	if n := fake.LiveCount(gpu.KindTexture); n != 1 {
		t.Errorf("Only the source texture should remain, %d live", n)
	}
}

func TestSolidColorSkybox(t *testing.T) {
	ctx, fake := newTestContext(t)
	cam := newTestCamera(t, ctx, NewViewportAtOrigo(64, 64))
	sky, err := NewSolidColorSkybox(ctx, SkyDay)
	if err != nil {
		t.Fatalf("NewSolidColorSkybox failed: %v", err)
	}
	defer sky.Release()

	side := fake.Texture(sky.Texture().ID())
	if side == nil || side.Width != 1 {
		t.Fatal("Expected a 1x1 cube map")
	}

	if err := NewForwardPipeline(ctx).LightPass(cam, []Object{sky}, nil); err != nil {
		t.Fatalf("LightPass failed: %v", err)
	}
	if len(fake.Draws) != 1 {
		t.Fatalf("Skybox should never be culled, got %d draws", len(fake.Draws))
	}
	d := fake.Draws[0]
	if d.DepthMask || d.DepthFunc != gpu.Lequal {
		t.Errorf("Skybox should test at the far plane without writing depth, got %+v", d)
	}
}
