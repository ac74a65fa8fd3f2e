package renderer

import (
	"strings"
)

// DepthMaterial writes depth only. Used by depth passes and shadow maps.
type DepthMaterial struct {
	States RenderStates
}

func NewDepthMaterial() *DepthMaterial {
	return &DepthMaterial{States: depthOnlyStates(CullNone)}
}

func (m *DepthMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	return depthMaterialSource
}

func (m *DepthMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {}

func (m *DepthMaterial) RenderStates() RenderStates { return m.States }

func (m *DepthMaterial) MaterialType() MaterialType { return Opaque }

// NormalMaterial shows world space normals as colors.
type NormalMaterial struct {
	NormalScale   float32
	NormalTexture *Texture2DRef
	States        RenderStates
}

func NewNormalMaterial() *NormalMaterial {
	return &NormalMaterial{NormalScale: 1, States: DefaultRenderStates()}
}

func (m *NormalMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	var b strings.Builder
	writeDefines(&b, define{m.NormalTexture != nil, "USE_NORMAL_TEXTURE"})
	b.WriteString(FragmentAttributes{
		Normal:   true,
		Tangents: m.NormalTexture != nil,
		UV:       m.NormalTexture != nil,
	}.declarations())
	b.WriteString(normalMaterialSource)
	return b.String()
}

func (m *NormalMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {
	if m.NormalTexture != nil {
		m.NormalTexture.use(program, "normalTexture", "normalTexTransform")
		program.UseUniform("normalScale", m.NormalScale)
	}
}

func (m *NormalMaterial) RenderStates() RenderStates { return m.States }

func (m *NormalMaterial) MaterialType() MaterialType { return Opaque }

// PositionMaterial writes world positions as colors. Picking renders with it
// into a float target.
type PositionMaterial struct {
	States RenderStates
}

func NewPositionMaterial() *PositionMaterial {
	return &PositionMaterial{States: DefaultRenderStates()}
}

func (m *PositionMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	return FragmentAttributes{Position: true}.declarations() + positionMaterialSource
}

func (m *PositionMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {}

func (m *PositionMaterial) RenderStates() RenderStates { return m.States }

func (m *PositionMaterial) MaterialType() MaterialType { return Opaque }

// UVMaterial shows uv coordinates as red and green.
type UVMaterial struct {
	States RenderStates
}

func NewUVMaterial() *UVMaterial {
	return &UVMaterial{States: DefaultRenderStates()}
}

func (m *UVMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	return FragmentAttributes{UV: true}.declarations() + uvMaterialSource
}

func (m *UVMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {}

func (m *UVMaterial) RenderStates() RenderStates { return m.States }

func (m *UVMaterial) MaterialType() MaterialType { return Opaque }

// ORMMaterial shows occlusion, roughness and metallic in the red, green and
// blue channels.
type ORMMaterial struct {
	Metallic                 float32
	Roughness                float32
	MetallicRoughnessTexture *Texture2DRef
	OcclusionStrength        float32
	OcclusionTexture         *Texture2DRef
	States                   RenderStates
}

// NewORMMaterial shares the textures of m.
func NewORMMaterial(m *PhysicalMaterial) *ORMMaterial {
	return &ORMMaterial{
		Metallic:                 m.Metallic,
		Roughness:                m.Roughness,
		MetallicRoughnessTexture: m.MetallicRoughnessTexture,
		OcclusionStrength:        m.OcclusionStrength,
		OcclusionTexture:         m.OcclusionTexture,
		States:                   DefaultRenderStates(),
	}
}

func (m *ORMMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	var b strings.Builder
	writeDefines(&b,
		define{m.MetallicRoughnessTexture != nil, "USE_METALLIC_ROUGHNESS_TEXTURE"},
		define{m.OcclusionTexture != nil, "USE_OCCLUSION_TEXTURE"},
	)
	b.WriteString(FragmentAttributes{UV: m.MetallicRoughnessTexture != nil || m.OcclusionTexture != nil}.declarations())
	b.WriteString(ormMaterialSource)
	return b.String()
}

func (m *ORMMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {
	program.UseUniform("metallic", m.Metallic)
	program.UseUniform("roughness", m.Roughness)
	if m.MetallicRoughnessTexture != nil {
		m.MetallicRoughnessTexture.use(program, "metallicRoughnessTexture", "metallicRoughnessTexTransform")
	}
	if m.OcclusionTexture != nil {
		m.OcclusionTexture.use(program, "occlusionTexture", "occlusionTexTransform")
		program.UseUniform("occlusionStrength", m.OcclusionStrength)
	}
}

func (m *ORMMaterial) RenderStates() RenderStates { return m.States }

func (m *ORMMaterial) MaterialType() MaterialType { return Opaque }
