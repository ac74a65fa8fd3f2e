package renderer

import (
	"Prism3D/internal/gpu"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// shadowCoordinates applies a shadow matrix and the perspective divide.
func shadowCoordinates(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	return v.Vec3().Mul(1 / v.W())
}

// inUnitCube is false for NaN coordinates.
func inUnitCube(p mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if !(p[i] >= -eps && p[i] <= 1+eps) {
			return false
		}
	}
	return true
}

func matrixFinite(m mgl32.Mat4) bool {
	for _, v := range m {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// shaderShadowBias reads SHADOW_BIAS from the shared light shader.
func shaderShadowBias(t *testing.T) float32 {
	t.Helper()
	const decl = "const float SHADOW_BIAS = "
	i := strings.Index(lightSharedSource, decl)
	if i < 0 {
		t.Fatal("SHADOW_BIAS not declared")
	}
	rest := lightSharedSource[i+len(decl):]
	v, err := strconv.ParseFloat(rest[:strings.IndexByte(rest, ';')], 32)
	if err != nil {
		t.Fatalf("Bad SHADOW_BIAS: %v", err)
	}
	return float32(v)
}

// binaryShadow mirrors calculate_shadow_binary for a texel holding stored.
func binaryShadow(coord mgl32.Vec3, stored, bias float32) float32 {
	if coord.Z() < 0 {
		return 1
	}
	if coord.Z()-bias > stored {
		return 0
	}
	return 1
}

func TestDirectionalShadowCoversCasters(t *testing.T) {
	ctx, fake := newTestContext(t)
	casters := []Geometry{
		newTestCube(t, ctx, mgl32.Vec3{0, 0.5, 0}, 0.5),
		newTestCube(t, ctx, mgl32.Vec3{3, 1, -2}, 1),
	}
	light := NewDirectionalLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-1, -2, -0.5})

	if err := light.GenerateShadowMap(256, casters); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	if light.ShadowMap() == nil {
		t.Fatal("Expected a shadow map")
	}
	if w, h := light.ShadowMap().Width(), light.ShadowMap().Height(); w != 256 || h != 256 {
		t.Errorf("Shadow map is %dx%d, want 256x256", w, h)
	}

	m := light.ShadowMatrix()
	for _, g := range casters {
		box := g.AABB()
		for _, c := range box.Corners() {
			if p := shadowCoordinates(m, c); !inUnitCube(p, 1e-4) {
				t.Errorf("Caster corner %v maps outside the shadow map: %v", c, p)
			}
		}
	}

	if len(fake.Draws) != len(casters) {
		t.Fatalf("Expected %d shadow draws, got %d", len(casters), len(fake.Draws))
	}
	for _, d := range fake.Draws {
		if d.ColorMask != [4]bool{} || !d.DepthMask || d.DepthFunc != gpu.Lequal {
			t.Errorf("Shadow draw should write depth only, got %+v", d)
		}
		if d.Viewport != [4]int32{0, 0, 256, 256} {
			t.Errorf("Shadow draw viewport = %v", d.Viewport)
		}
		if d.Framebuffer == 0 {
			t.Error("Shadow draw should not target the screen")
		}
	}
	if ctx.BoundFramebuffer() != 0 {
		t.Error("Shadow generation should restore the bound target")
	}
}

func TestShadowDepthOrdersOccluders(t *testing.T) {
	ctx, _ := newTestContext(t)
	casters := []Geometry{newTestCube(t, ctx, mgl32.Vec3{}, 1)}
	light := NewDirectionalLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, -1, 0})
	if err := light.GenerateShadowMap(64, casters); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}

	top := shadowCoordinates(light.ShadowMatrix(), mgl32.Vec3{0, 0.9, 0})
	bottom := shadowCoordinates(light.ShadowMatrix(), mgl32.Vec3{0, -0.9, 0})
	if top.Z() >= bottom.Z() {
		t.Errorf("Occluder depth %v should be less than receiver depth %v", top.Z(), bottom.Z())
	}
	if math.Abs(float64(top.X()-bottom.X())) > 1e-4 || math.Abs(float64(top.Y()-bottom.Y())) > 1e-4 {
		t.Error("Points along the light direction should share a shadow map texel")
	}
}

func TestSpotShadowCoversCasters(t *testing.T) {
	ctx, _ := newTestContext(t)
	cube := newTestCube(t, ctx, mgl32.Vec3{}, 0.5)
	light := NewSpotLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0},
		math.Pi/2, NoAttenuation())

	if err := light.GenerateShadowMap(128, []Geometry{cube}); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	for _, c := range cube.AABB().Corners() {
		if p := shadowCoordinates(light.ShadowMatrix(), c); !inUnitCube(p, 1e-4) {
			t.Errorf("Corner %v maps outside the shadow map: %v", c, p)
		}
	}
	center := shadowCoordinates(light.ShadowMatrix(), mgl32.Vec3{0, 0, 0})
	if math.Abs(float64(center.X()-0.5)) > 1e-4 || math.Abs(float64(center.Y()-0.5)) > 1e-4 {
		t.Errorf("Point on the light axis should map to the map center, got %v", center)
	}
}

func TestShadowMapSkippedWithoutCasters(t *testing.T) {
	ctx, fake := newTestContext(t)
	light := NewDirectionalLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, -1, 0})

	if err := light.GenerateShadowMap(512, nil); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	if light.ShadowMap() != nil {
		t.Error("No casters should give no shadow map")
	}
	if light.ShadowMatrix() != mgl32.Ident4() {
		t.Error("Shadow matrix should stay the identity")
	}
	if len(fake.Draws) != 0 {
		t.Error("Nothing should be drawn")
	}
}

func TestClearShadowMap(t *testing.T) {
	ctx, fake := newTestContext(t)
	casters := []Geometry{newTestCube(t, ctx, mgl32.Vec3{}, 1)}
	light := NewDirectionalLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, -1, 0})
	if err := light.GenerateShadowMap(64, casters); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	first := light.ShadowMap().ID()

	if err := light.GenerateShadowMap(64, casters); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	if light.ShadowMap().ID() != first {
		t.Error("Same resolution should reuse the shadow texture")
	}
	if err := light.GenerateShadowMap(128, casters); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	if fake.IsLive(gpu.KindTexture, first) {
		t.Error("Old shadow texture should be deleted on resize")
	}

	second := light.ShadowMap().ID()
	light.ClearShadowMap()
	if light.ShadowMap() != nil || fake.IsLive(gpu.KindTexture, second) {
		t.Error("ClearShadowMap should delete the texture")
	}
	if light.ShadowMatrix() != mgl32.Ident4() {
		t.Error("ClearShadowMap should reset the matrix")
	}
}

func TestShadowShaderSource(t *testing.T) {
	ctx, _ := newTestContext(t)
	light := NewDirectionalLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, -1, 0})

	if src := light.ShaderSource(2); strings.Contains(src, "shadowMap2") {
		t.Error("Light without shadow map should not declare a shadow sampler")
	}
	if err := light.GenerateShadowMap(64, []Geometry{newTestCube(t, ctx, mgl32.Vec3{}, 1)}); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	src := light.ShaderSource(2)
	for _, want := range []string{"uniform sampler2D shadowMap2;", "uniform mat4 shadowMVP2;", "calculate_shadow_pcf(shadowMap2"} {
		if !strings.Contains(src, want) {
			t.Errorf("Shader source missing %q", want)
		}
	}
	light.ShadowFilter = ShadowBinary
	if !strings.Contains(light.ShaderSource(2), "calculate_shadow_binary(") {
		t.Error("Binary filter should use the single sample comparison")
	}
}

func TestDepthRangeNearPlane(t *testing.T) {
	box := NewAABB([]mgl32.Vec3{{-1, -1, -1}, {1, 1, 1}})
	near, far := depthRange(box, mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0})
	if math.Abs(float64(near-4)) > 1e-5 {
		t.Errorf("near = %v, want 4", near)
	}
	if far < 6 {
		t.Errorf("far = %v should reach the far side of the box", far)
	}

	inside, _ := depthRange(box, mgl32.Vec3{}, mgl32.Vec3{0, -1, 0})
	if inside != shadowMinNear {
		t.Errorf("A light inside the box should clamp near to %v, got %v", shadowMinNear, inside)
	}
}

func TestShadowSkipsUnboundedCasters(t *testing.T) {
	ctx, fake := newTestContext(t)
	cube := newTestCube(t, ctx, mgl32.Vec3{0, 1, 0}, 1)
	sky, err := NewSolidColorSkybox(ctx, SkySunset)
	if err != nil {
		t.Fatalf("NewSolidColorSkybox failed: %v", err)
	}
	defer sky.Release()

	directional := NewDirectionalLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-1, -1, 0})
	spot := NewSpotLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 6, 0}, mgl32.Vec3{0, -1, 0},
		math.Pi/2, NoAttenuation())
	for _, light := range []ShadowCaster{directional, spot} {
		fake.ResetDraws()
		if err := light.GenerateShadowMap(64, []Geometry{cube, sky}); err != nil {
			t.Fatalf("GenerateShadowMap failed: %v", err)
		}
		m := light.ShadowMatrix()
		if !matrixFinite(m) {
			t.Fatalf("Shadow matrix should be finite, got %v", m)
		}
		if p := shadowCoordinates(m, mgl32.Vec3{0, 1, 0}); !inUnitCube(p, 1e-4) {
			t.Errorf("Cube center maps to %v", p)
		}
		if len(fake.Draws) != 1 {
			t.Errorf("Only the cube should be drawn, got %d draws", len(fake.Draws))
		}
		light.ClearShadowMap()
	}

	if err := directional.GenerateShadowMap(64, []Geometry{sky}); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	if directional.ShadowMap() != nil || directional.ShadowMatrix() != mgl32.Ident4() {
		t.Error("Unbounded casters alone should give no shadow map")
	}
}

func TestBinaryShadowOccludesQuadBehind(t *testing.T) {
	ctx, fake := newTestContext(t)
	quad := func(z float32) *Mesh {
		mesh, err := NewMesh(ctx, CPUMeshSquare())
		if err != nil {
			t.Fatalf("NewMesh failed: %v", err)
		}
		t.Cleanup(mesh.Release)
		mesh.SetTransform(mgl32.Translate3D(0, 0, z))
		return mesh
	}
	front, back := quad(1), quad(-1)
	light := NewDirectionalLight(ctx, 1, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0, -1})
	light.ShadowFilter = ShadowBinary
	if err := light.GenerateShadowMap(64, []Geometry{front, back}); err != nil {
		t.Fatalf("GenerateShadowMap failed: %v", err)
	}
	if len(fake.Draws) != 2 {
		t.Fatalf("Expected both quads drawn, got %d draws", len(fake.Draws))
	}

	m := light.ShadowMatrix()
	bias := shaderShadowBias(t)
	frontCoord := shadowCoordinates(m, mgl32.Vec3{0.3, -0.2, 1})
	backCoord := shadowCoordinates(m, mgl32.Vec3{0.3, -0.2, -1})
	if !inUnitCube(frontCoord, 1e-4) || !inUnitCube(backCoord, 1e-4) {
		t.Fatalf("Quads should map into the shadow map: %v %v", frontCoord, backCoord)
	}
	if frontCoord.Sub(backCoord).Vec2().Len() > 1e-4 {
		t.Fatal("Both points should fall on the same texel")
	}

	// The texel keeps the nearest depth, the one of the front quad.
	stored := min(frontCoord.Z(), backCoord.Z())
	if got := binaryShadow(frontCoord, stored, bias); got != 1 {
		t.Errorf("Front quad attenuation = %v, want 1", got)
	}
	if got := binaryShadow(backCoord, stored, bias); got != 0 {
		t.Errorf("Quad behind attenuation = %v, want 0", got)
	}
}
