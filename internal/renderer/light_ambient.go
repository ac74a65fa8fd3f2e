package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// AmbientLight lights every surface equally from all directions. With an
// Environment the light is image based instead.
type AmbientLight struct {
	Color       mgl32.Vec3
	Intensity   float32
	Environment *Environment
}

func NewAmbientLight(intensity float32, color mgl32.Vec3) *AmbientLight {
	return &AmbientLight{Color: color, Intensity: intensity}
}

// NewAmbientLightWithEnvironment lights surfaces with the precomputed
// irradiance and reflections of environment.
func NewAmbientLightWithEnvironment(intensity float32, color mgl32.Vec3, environment *Environment) *AmbientLight {
	return &AmbientLight{Color: color, Intensity: intensity, Environment: environment}
}

func (l *AmbientLight) ShaderSource(i uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "uniform vec3 ambientColor%d;\n", i)
	if l.Environment != nil {
		fmt.Fprintf(&b, "uniform samplerCube irradianceMap%d;\nuniform samplerCube prefilterMap%d;\nuniform sampler2D brdfMap%d;\nuniform float prefilterLevels%d;\n", i, i, i, i)
	}
	lightFunctionHeader(&b, i)
	if l.Environment == nil {
		fmt.Fprintf(&b, "    return occlusion * ambientColor%d * mix(surface_color, vec3(0.0), metallic);\n}\n", i)
		return b.String()
	}
	fmt.Fprintf(&b, `    float n_dot_v = max(dot(normal, view_direction), 0.0);
    vec3 f0 = mix(vec3(0.04), surface_color, metallic);
    vec3 f = fresnel_schlick_roughness(n_dot_v, f0, roughness);
    vec3 k_d = (vec3(1.0) - f) * (1.0 - metallic);
    vec3 diffuse = texture(irradianceMap%[1]d, normal).rgb * surface_color;
    vec3 reflected = reflect(-view_direction, normal);
    vec3 prefiltered = textureLod(prefilterMap%[1]d, reflected, roughness * prefilterLevels%[1]d).rgb;
    vec2 brdf = texture(brdfMap%[1]d, vec2(n_dot_v, roughness)).rg;
    vec3 specular = prefiltered * (f * brdf.x + brdf.y);
    return occlusion * ambientColor%[1]d * (k_d * diffuse + specular);
}
`, i)
	return b.String()
}

func (l *AmbientLight) UseUniforms(program *Program, i uint32) {
	program.UseUniform(fmt.Sprintf("ambientColor%d", i), l.Color.Mul(l.Intensity))
	if l.Environment != nil {
		program.UseTexture(fmt.Sprintf("irradianceMap%d", i), l.Environment.Irradiance)
		program.UseTexture(fmt.Sprintf("prefilterMap%d", i), l.Environment.Prefilter)
		program.UseTexture(fmt.Sprintf("brdfMap%d", i), l.Environment.BRDF)
		program.UseUniform(fmt.Sprintf("prefilterLevels%d", i), float32(l.Environment.Prefilter.MipLevels()-1))
	}
}
