package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Light contributes to the shading of every lit material. At index i a light
// declares a function calculate_lighting{i} and binds the uniforms it reads.
type Light interface {
	ShaderSource(index uint32) string
	UseUniforms(program *Program, index uint32)
}

// ShadowCaster is a light that can occlude itself with a shadow map.
type ShadowCaster interface {
	Light
	GenerateShadowMap(resolution uint32, geometries []Geometry) error
	ClearShadowMap()
	ShadowMap() *DepthTexture2D
	ShadowMatrix() mgl32.Mat4
}

var (
	_ ShadowCaster = (*DirectionalLight)(nil)
	_ ShadowCaster = (*SpotLight)(nil)
)

// Attenuation is the constant, linear and quadratic falloff of a positional
// light: 1 / (constant + linear*d + quadratic*d*d).
type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

// NoAttenuation keeps full intensity at every distance.
func NoAttenuation() Attenuation { return Attenuation{Constant: 1} }

// AttenuationForRange falls off to about one percent at distance r.
func AttenuationForRange(r float32) Attenuation {
	return Attenuation{Constant: 1, Linear: 2 / r, Quadratic: 1 / (r * r)}
}

func (a Attenuation) vec() mgl32.Vec3 { return mgl32.Vec3{a.Constant, a.Linear, a.Quadratic} }

// ColorFromTemperature approximates the color of a black body at kelvin,
// between 1000 and 40000 K.
func ColorFromTemperature(kelvin float32) mgl32.Vec3 {
	t := float64(clamp(kelvin, 1000, 40000)) / 100
	var r, g, b float64
	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}
	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}
	return mgl32.Vec3{
		float32(clamp(r, 0, 255) / 255),
		float32(clamp(g, 0, 255) / 255),
		float32(clamp(b, 0, 255) / 255),
	}
}

// ShadowFilter selects how the shadow map is compared.
type ShadowFilter int

const (
	// ShadowPCF averages a 3x3 neighbourhood of depth comparisons.
	ShadowPCF ShadowFilter = iota
	// ShadowBinary compares a single texel.
	ShadowBinary
)

func (f ShadowFilter) String() string {
	if f == ShadowBinary {
		return "binary"
	}
	return "pcf"
}

func ParseShadowFilter(name string) (ShadowFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pcf", "":
		return ShadowPCF, nil
	case "binary":
		return ShadowBinary, nil
	}
	return ShadowPCF, fmt.Errorf("unknown shadow filter %q", name)
}

func (f ShadowFilter) function() string {
	if f == ShadowBinary {
		return "calculate_shadow_binary"
	}
	return "calculate_shadow_pcf"
}

// lightFunctionHeader opens calculate_lighting{i}.
func lightFunctionHeader(b *strings.Builder, i uint32) {
	fmt.Fprintf(b, "vec3 calculate_lighting%d(vec3 surface_color, vec3 position, vec3 normal, vec3 view_direction, float metallic, float roughness, float occlusion)\n{\n", i)
}
