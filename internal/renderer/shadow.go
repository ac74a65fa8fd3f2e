package renderer

import (
	"Prism3D/internal/logger"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// shadowBias maps clip space [-1,1] to texture space [0,1].
var shadowBias = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

const shadowMinNear = 0.01

// shadowMap is the depth texture and light space transform of a shadow
// casting light. Without a texture the transform is the identity.
type shadowMap struct {
	texture *DepthTexture2D
	matrix  mgl32.Mat4
}

func newShadowMap() shadowMap { return shadowMap{matrix: mgl32.Ident4()} }

func (s *shadowMap) enabled() bool { return s.texture != nil }

func (s *shadowMap) clear() {
	if s.texture != nil {
		s.texture.Release()
		s.texture = nil
	}
	s.matrix = mgl32.Ident4()
}

// declare writes the shadow uniforms of light i.
func (s *shadowMap) declare(b *strings.Builder, i uint32) {
	if s.enabled() {
		fmt.Fprintf(b, "uniform sampler2D shadowMap%d;\nuniform mat4 shadowMVP%d;\n", i, i)
	}
}

// attenuate scales light_color by the lit fraction inside calculate_lighting{i}.
func (s *shadowMap) attenuate(b *strings.Builder, i uint32, filter ShadowFilter) {
	if s.enabled() {
		fmt.Fprintf(b, "    light_color *= %s(shadowMap%d, shadowMVP%d, position);\n", filter.function(), i, i)
	}
}

func (s *shadowMap) use(program *Program, i uint32) {
	if s.enabled() {
		program.UseTexture(fmt.Sprintf("shadowMap%d", i), s.texture)
		program.UseUniform(fmt.Sprintf("shadowMVP%d", i), s.matrix)
	}
}

// castersAABB is the union of the bounded boxes of geometries. Unbounded
// geometries such as a skybox cannot be framed and cast no shadow.
func castersAABB(geometries []Geometry) AABB {
	box := EmptyAABB()
	for _, g := range geometries {
		if b := g.AABB(); bounded(b) {
			box.ExpandWithAABB(b)
		}
	}
	return box
}

func bounded(box AABB) bool {
	if box.IsEmpty() {
		return false
	}
	for i := 0; i < 3; i++ {
		if math.IsInf(float64(box.Min[i]), 0) || math.IsInf(float64(box.Max[i]), 0) {
			return false
		}
	}
	return true
}

// depthRange bounds box along direction as seen from position. The near
// plane is the smaller of the distance to the box and the shallowest corner
// depth, clamped to a small positive epsilon.
func depthRange(box AABB, position, direction mgl32.Vec3) (near, far float32) {
	near = box.Distance(position)
	for _, c := range box.Corners() {
		near = min(near, c.Sub(position).Dot(direction))
	}
	near = max(near, shadowMinNear)
	far = max(box.DistanceMax(position), near*2)
	return near, far
}

func shadowUp(direction mgl32.Vec3) mgl32.Vec3 {
	if abs32(direction.Normalize().Y()) > 0.99 {
		return mgl32.Vec3{1, 0, 0}
	}
	return mgl32.Vec3{0, 1, 0}
}

// directionalShadowCamera frames box with an orthographic camera looking along
// direction from outside the box.
func directionalShadowCamera(ctx *Context, direction mgl32.Vec3, box AABB, resolution uint32) (*Camera, error) {
	direction = direction.Normalize()
	target := box.Center()
	extent := box.MaxExtent()
	if extent == 0 {
		extent = 1
	}
	position := target.Sub(direction.Mul(extent))
	near, far := depthRange(box, position, direction)
	return NewOrthographicCamera(ctx, NewViewportAtOrigo(resolution, resolution),
		position, target, shadowUp(direction), extent, near, far)
}

// spotShadowCamera is a perspective camera at the light whose field of view
// equals the cone of the light.
func spotShadowCamera(ctx *Context, position, direction mgl32.Vec3, cutoff float32, box AABB, resolution uint32) (*Camera, error) {
	direction = direction.Normalize()
	fov := clamp(cutoff, 0.01, math.Pi-0.01)
	near, far := depthRange(box, position, direction)
	return NewPerspectiveCamera(ctx, NewViewportAtOrigo(resolution, resolution),
		position, position.Add(direction), shadowUp(direction), fov, near, far)
}

// render draws every geometry visible to camera into a resolution sized depth
// texture and stores bias * projection * view.
func (s *shadowMap) render(ctx *Context, camera *Camera, resolution uint32, geometries []Geometry) error {
	if s.texture == nil || s.texture.Width() != resolution {
		s.clear()
		texture, err := NewDepthTexture2D(ctx, "", resolution, resolution, Depth32F)
		if err != nil {
			return fmt.Errorf("shadow map: %w", err)
		}
		s.texture = texture
	}
	target, err := NewRenderTarget(ctx, nil, s.texture.AsDepthTarget())
	if err != nil {
		s.clear()
		return fmt.Errorf("shadow map: %w", err)
	}
	defer target.Release()

	material := NewDepthMaterial()
	drawn := 0
	err = target.Write(ClearDepthOnly(1), func() error {
		for _, g := range geometries {
			if box := g.AABB(); !bounded(box) || !camera.InFrustum(box) {
				continue
			}
			if err := RenderWithMaterial(material, g, camera, nil); err != nil {
				return err
			}
			drawn++
		}
		return nil
	})
	if err != nil {
		s.clear()
		return fmt.Errorf("shadow map: %w", err)
	}
	s.matrix = shadowBias.Mul4(camera.ViewProjection())
	logger.Log.Debug("Shadow map generated",
		zap.String("texture", s.texture.Label()),
		zap.Uint32("resolution", resolution),
		zap.Int("casters", drawn))
	return nil
}
