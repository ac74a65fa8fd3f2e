package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DeferredPhysicalMaterial writes the surface parameters of a physical
// material into the two layers of a G-buffer. Lighting happens later in the
// deferred light pass, so lights are ignored here. Emission is not stored.
type DeferredPhysicalMaterial struct {
	Name string

	Albedo                   mgl32.Vec4
	AlbedoTexture            *Texture2DRef
	Metallic                 float32
	Roughness                float32
	MetallicRoughnessTexture *Texture2DRef
	OcclusionStrength        float32
	OcclusionTexture         *Texture2DRef
	NormalScale              float32
	NormalTexture            *Texture2DRef

	IsTransparent bool
	States        RenderStates
}

// NewDeferredPhysicalMaterial uploads the textures of cpu.
func NewDeferredPhysicalMaterial(ctx *Context, cpu *CPUMaterial) (*DeferredPhysicalMaterial, error) {
	pm, err := NewPhysicalMaterial(ctx, cpu)
	if err != nil {
		return nil, fmt.Errorf("deferred material: %w", err)
	}
	if pm.EmissiveTexture != nil {
		pm.EmissiveTexture.Texture.Release()
		pm.EmissiveTexture = nil
	}
	return DeferredFromPhysical(pm), nil
}

// DeferredFromPhysical shares the textures of m.
func DeferredFromPhysical(m *PhysicalMaterial) *DeferredPhysicalMaterial {
	states := m.States
	if !m.IsTransparent {
		states = DefaultRenderStates()
	}
	return &DeferredPhysicalMaterial{
		Name:                     m.Name,
		Albedo:                   m.Albedo,
		AlbedoTexture:            m.AlbedoTexture,
		Metallic:                 m.Metallic,
		Roughness:                m.Roughness,
		MetallicRoughnessTexture: m.MetallicRoughnessTexture,
		OcclusionStrength:        m.OcclusionStrength,
		OcclusionTexture:         m.OcclusionTexture,
		NormalScale:              m.NormalScale,
		NormalTexture:            m.NormalTexture,
		IsTransparent:            m.IsTransparent,
		States:                   states,
	}
}

func (m *DeferredPhysicalMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	uvs := m.AlbedoTexture != nil || m.MetallicRoughnessTexture != nil || m.OcclusionTexture != nil || m.NormalTexture != nil
	var b strings.Builder
	writeDefines(&b,
		define{m.AlbedoTexture != nil, "USE_ALBEDO_TEXTURE"},
		define{m.MetallicRoughnessTexture != nil, "USE_METALLIC_ROUGHNESS_TEXTURE"},
		define{m.OcclusionTexture != nil, "USE_OCCLUSION_TEXTURE"},
		define{m.NormalTexture != nil, "USE_NORMAL_TEXTURE"},
	)
	b.WriteString(FragmentAttributes{
		Normal:   true,
		Tangents: m.NormalTexture != nil,
		UV:       uvs,
		Color:    useVertexColors,
	}.declarations())
	b.WriteString(deferredPhysicalMaterialSource)
	return b.String()
}

func (m *DeferredPhysicalMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {
	program.UseUniform("albedo", m.Albedo)
	program.UseUniform("metallic", m.Metallic)
	program.UseUniform("roughness", m.Roughness)
	if m.AlbedoTexture != nil {
		m.AlbedoTexture.use(program, "albedoTexture", "albedoTexTransform")
	}
	if m.MetallicRoughnessTexture != nil {
		m.MetallicRoughnessTexture.use(program, "metallicRoughnessTexture", "metallicRoughnessTexTransform")
	}
	if m.OcclusionTexture != nil {
		m.OcclusionTexture.use(program, "occlusionTexture", "occlusionTexTransform")
		program.UseUniform("occlusionStrength", m.OcclusionStrength)
	}
	if m.NormalTexture != nil {
		m.NormalTexture.use(program, "normalTexture", "normalTexTransform")
		program.UseUniform("normalScale", m.NormalScale)
	}
}

func (m *DeferredPhysicalMaterial) RenderStates() RenderStates { return m.States }

func (m *DeferredPhysicalMaterial) MaterialType() MaterialType {
	if m.IsTransparent {
		return Transparent
	}
	return Opaque
}
