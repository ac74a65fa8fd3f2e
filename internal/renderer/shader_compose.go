package renderer

import (
	"Prism3D/internal/gpu"
	"fmt"
	"strings"
)

// FragmentAttributes are the vertex outputs a fragment source reads.
type FragmentAttributes struct {
	Position bool
	Normal   bool
	Tangents bool
	UV       bool
	Color    bool
}

// Marker declarations. A fragment source that contains one of them reads the
// matching vertex output.
const (
	markerPosition  = "in vec3 pos;"
	markerNormal    = "in vec3 nor;"
	markerTangent   = "in vec3 tang;"
	markerBitangent = "in vec3 bitang;"
	markerUV        = "in vec2 uvs;"
	markerColor     = "in vec4 col;"
)

// InferAttributes reports which vertex outputs fragment declares. Tangents
// are only valid together with bitangents.
func InferAttributes(fragment string) (FragmentAttributes, error) {
	attrs := FragmentAttributes{
		Position: strings.Contains(fragment, markerPosition),
		Normal:   strings.Contains(fragment, markerNormal),
		UV:       strings.Contains(fragment, markerUV),
		Color:    strings.Contains(fragment, markerColor),
	}
	tangent := strings.Contains(fragment, markerTangent)
	bitangent := strings.Contains(fragment, markerBitangent)
	if tangent != bitangent {
		return FragmentAttributes{}, gpu.ErrMissingBitangent
	}
	attrs.Tangents = tangent
	return attrs, nil
}

func (a FragmentAttributes) String() string {
	var b strings.Builder
	for _, f := range []struct {
		on   bool
		name string
	}{
		{a.Position, "position"},
		{a.Normal, "normal"},
		{a.Tangents, "tangents"},
		{a.UV, "uv"},
		{a.Color, "color"},
	} {
		if f.on {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			b.WriteString(f.name)
		}
	}
	return b.String()
}

// declarations writes the marker of every requested input, plus the define
// that enables vertex colors in material sources.
func (a FragmentAttributes) declarations() string {
	var b strings.Builder
	if a.Color {
		b.WriteString("#define USE_VERTEX_COLORS\n")
	}
	if a.Position {
		b.WriteString(markerPosition + "\n")
	}
	if a.Normal {
		b.WriteString(markerNormal + "\n")
	}
	if a.Tangents {
		b.WriteString(markerTangent + "\n" + markerBitangent + "\n")
	}
	if a.UV {
		b.WriteString(markerUV + "\n")
	}
	if a.Color {
		b.WriteString(markerColor + "\n")
	}
	return b.String()
}

// LightingShaderSource assembles the lighting model header, the shared light
// helpers, one contribution function per light and the calculate_lighting
// driver summing them.
func LightingShaderSource(model LightingModel, lights []Light) string {
	var b strings.Builder
	b.WriteString(model.shaderDefines())
	b.WriteString(lightSharedSource)
	for i, light := range lights {
		b.WriteString(light.ShaderSource(uint32(i)))
	}
	b.WriteString("\nvec3 calculate_lighting(vec3 camera_position, vec3 surface_color, vec3 position, vec3 normal, float metallic, float roughness, float occlusion)\n{\n")
	b.WriteString("    vec3 color = vec3(0.0);\n")
	b.WriteString("    vec3 view_direction = normalize(camera_position - position);\n")
	for i := range lights {
		fmt.Fprintf(&b, "    color += calculate_lighting%d(surface_color, position, normal, view_direction, metallic, roughness, occlusion);\n", i)
	}
	b.WriteString("    return color;\n}\n")
	return b.String()
}

// ComposeFragmentShader returns the complete fragment source for material lit
// by lights.
func ComposeFragmentShader(material Material, useVertexColors bool, lights []Light) string {
	return sharedSource + material.FragmentShaderSource(useVertexColors, lights)
}

// UseLights binds the uniforms of every light at its index.
func UseLights(program *Program, lights []Light) {
	for i, light := range lights {
		light.UseUniforms(program, uint32(i))
	}
}
