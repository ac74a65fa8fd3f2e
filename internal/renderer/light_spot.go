package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// SpotLight shines a cone from Position along Direction. Cutoff is the full
// opening angle of the cone in radians.
type SpotLight struct {
	ctx          *Context
	Color        mgl32.Vec3
	Intensity    float32
	Position     mgl32.Vec3
	Direction    mgl32.Vec3
	Cutoff       float32
	Attenuation  Attenuation
	ShadowFilter ShadowFilter
	shadow       shadowMap
}

func NewSpotLight(ctx *Context, intensity float32, color, position, direction mgl32.Vec3, cutoff float32, attenuation Attenuation) *SpotLight {
	return &SpotLight{
		ctx:         ctx,
		Color:       color,
		Intensity:   intensity,
		Position:    position,
		Direction:   direction.Normalize(),
		Cutoff:      cutoff,
		Attenuation: attenuation,
		shadow:      newShadowMap(),
	}
}

func (l *SpotLight) ShaderSource(i uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "uniform vec3 color%[1]d;\nuniform vec3 position%[1]d;\nuniform vec3 direction%[1]d;\nuniform vec3 attenuation%[1]d;\nuniform float cutoffCos%[1]d;\n", i)
	l.shadow.declare(&b, i)
	lightFunctionHeader(&b, i)
	fmt.Fprintf(&b, `    vec3 to_light = position%[1]d - position;
    float distance = length(to_light);
    vec3 light_direction = to_light / distance;
    float cos_angle = dot(-light_direction, direction%[1]d);
    float cone = smoothstep(cutoffCos%[1]d, mix(cutoffCos%[1]d, 1.0, 0.05), cos_angle);
    if (cone <= 0.0) {
        return vec3(0.0);
    }
    vec3 light_color = cone * attenuate(attenuation%[1]d, distance) * color%[1]d;
`, i)
	l.shadow.attenuate(&b, i, l.ShadowFilter)
	b.WriteString("    return calculate_light(light_color, light_direction, surface_color, view_direction, normal, metallic, roughness);\n}\n")
	return b.String()
}

func (l *SpotLight) UseUniforms(program *Program, i uint32) {
	program.UseUniform(fmt.Sprintf("color%d", i), l.Color.Mul(l.Intensity))
	program.UseUniform(fmt.Sprintf("position%d", i), l.Position)
	program.UseUniform(fmt.Sprintf("direction%d", i), l.Direction.Normalize())
	program.UseUniform(fmt.Sprintf("attenuation%d", i), l.Attenuation.vec())
	program.UseUniform(fmt.Sprintf("cutoffCos%d", i), float32(math.Cos(float64(l.Cutoff)*0.5)))
	l.shadow.use(program, i)
}

// GenerateShadowMap renders the depth of geometries inside the cone into a
// resolution x resolution map.
func (l *SpotLight) GenerateShadowMap(resolution uint32, geometries []Geometry) error {
	box := castersAABB(geometries)
	if box.IsEmpty() {
		return nil
	}
	camera, err := spotShadowCamera(l.ctx, l.Position, l.Direction, l.Cutoff, box, resolution)
	if err != nil {
		return fmt.Errorf("spot light: %w", err)
	}
	defer camera.Release()
	return l.shadow.render(l.ctx, camera, resolution, geometries)
}

func (l *SpotLight) ClearShadowMap() { l.shadow.clear() }

func (l *SpotLight) ShadowMatrix() mgl32.Mat4 { return l.shadow.matrix }

func (l *SpotLight) ShadowMap() *DepthTexture2D { return l.shadow.texture }
