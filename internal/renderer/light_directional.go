package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight shines in one direction everywhere, like the sun.
type DirectionalLight struct {
	ctx          *Context
	Color        mgl32.Vec3
	Intensity    float32
	Direction    mgl32.Vec3
	ShadowFilter ShadowFilter
	shadow       shadowMap
}

func NewDirectionalLight(ctx *Context, intensity float32, color, direction mgl32.Vec3) *DirectionalLight {
	return &DirectionalLight{
		ctx:       ctx,
		Color:     color,
		Intensity: intensity,
		Direction: direction.Normalize(),
		shadow:    newShadowMap(),
	}
}

// NewSunLight is a slightly warm directional light.
func NewSunLight(ctx *Context, direction mgl32.Vec3) *DirectionalLight {
	return NewDirectionalLight(ctx, 1.2, ColorFromTemperature(5800), direction)
}

func (l *DirectionalLight) ShaderSource(i uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "uniform vec3 color%d;\nuniform vec3 direction%d;\n", i, i)
	l.shadow.declare(&b, i)
	lightFunctionHeader(&b, i)
	fmt.Fprintf(&b, "    vec3 light_color = color%d;\n", i)
	l.shadow.attenuate(&b, i, l.ShadowFilter)
	fmt.Fprintf(&b, "    return calculate_light(light_color, -direction%d, surface_color, view_direction, normal, metallic, roughness);\n}\n", i)
	return b.String()
}

func (l *DirectionalLight) UseUniforms(program *Program, i uint32) {
	program.UseUniform(fmt.Sprintf("color%d", i), l.Color.Mul(l.Intensity))
	program.UseUniform(fmt.Sprintf("direction%d", i), l.Direction.Normalize())
	l.shadow.use(program, i)
}

// GenerateShadowMap renders the depth of geometries as seen from the light
// into a resolution x resolution map. Nothing happens when the geometries
// have no extent.
func (l *DirectionalLight) GenerateShadowMap(resolution uint32, geometries []Geometry) error {
	box := castersAABB(geometries)
	if box.IsEmpty() {
		return nil
	}
	camera, err := directionalShadowCamera(l.ctx, l.Direction, box, resolution)
	if err != nil {
		return fmt.Errorf("directional light: %w", err)
	}
	defer camera.Release()
	return l.shadow.render(l.ctx, camera, resolution, geometries)
}

// ClearShadowMap disables shadows from this light.
func (l *DirectionalLight) ClearShadowMap() { l.shadow.clear() }

// ShadowMatrix maps world positions to shadow map uv and depth.
func (l *DirectionalLight) ShadowMatrix() mgl32.Mat4 { return l.shadow.matrix }

// ShadowMap returns the depth texture, nil without shadows.
func (l *DirectionalLight) ShadowMap() *DepthTexture2D { return l.shadow.texture }
