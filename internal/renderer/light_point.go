package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// PointLight shines in every direction from Position.
type PointLight struct {
	Color       mgl32.Vec3
	Intensity   float32
	Position    mgl32.Vec3
	Attenuation Attenuation
}

func NewPointLight(intensity float32, color, position mgl32.Vec3, attenuation Attenuation) *PointLight {
	return &PointLight{Color: color, Intensity: intensity, Position: position, Attenuation: attenuation}
}

// NewWarmLight is an incandescent bulb reaching about r units.
func NewWarmLight(position mgl32.Vec3, intensity, r float32) *PointLight {
	return NewPointLight(intensity, ColorFromTemperature(2700), position, AttenuationForRange(r))
}

// NewCoolLight is a fluorescent tube reaching about r units.
func NewCoolLight(position mgl32.Vec3, intensity, r float32) *PointLight {
	return NewPointLight(intensity, ColorFromTemperature(6500), position, AttenuationForRange(r))
}

func (l *PointLight) ShaderSource(i uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "uniform vec3 color%[1]d;\nuniform vec3 position%[1]d;\nuniform vec3 attenuation%[1]d;\n", i)
	lightFunctionHeader(&b, i)
	fmt.Fprintf(&b, `    vec3 to_light = position%[1]d - position;
    float distance = length(to_light);
    vec3 light_color = attenuate(attenuation%[1]d, distance) * color%[1]d;
    return calculate_light(light_color, to_light / distance, surface_color, view_direction, normal, metallic, roughness);
}
`, i)
	return b.String()
}

func (l *PointLight) UseUniforms(program *Program, i uint32) {
	program.UseUniform(fmt.Sprintf("color%d", i), l.Color.Mul(l.Intensity))
	program.UseUniform(fmt.Sprintf("position%d", i), l.Position)
	program.UseUniform(fmt.Sprintf("attenuation%d", i), l.Attenuation.vec())
}
