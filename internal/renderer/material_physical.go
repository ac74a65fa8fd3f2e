package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// PhysicalMaterial is a metallic-roughness material lit by every light of the
// draw in the forward pipeline.
type PhysicalMaterial struct {
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
	Emissive                 mgl32.Vec3
	EmissiveTexture          *Texture2DRef

	LightingModel LightingModel
	IsTransparent bool
	States        RenderStates
}

// NewPhysicalMaterial uploads the textures of cpu. The material is
// transparent when the albedo or its texture has alpha below one.
func NewPhysicalMaterial(ctx *Context, cpu *CPUMaterial) (*PhysicalMaterial, error) {
	return newPhysicalMaterial(cpu, func(t *CPUTexture) (*Texture2D, error) {
		return NewTexture2D(ctx, t)
	})
}

// NewPhysicalMaterialCached shares textures with the same name through cache.
// The material holds its own reference, so it may outlive the cache entries.
func NewPhysicalMaterialCached(cache *TextureCache, cpu *CPUMaterial) (*PhysicalMaterial, error) {
	return newPhysicalMaterial(cpu, func(t *CPUTexture) (*Texture2D, error) {
		if t.Name == "" {
			return NewTexture2D(cache.ctx, t)
		}
		texture, err := cache.Acquire(t.Name, func() (*CPUTexture, error) { return t, nil })
		if err != nil {
			return nil, err
		}
		texture.Retain()
		return texture, nil
	})
}

func newPhysicalMaterial(cpu *CPUMaterial, upload func(*CPUTexture) (*Texture2D, error)) (*PhysicalMaterial, error) {
	m := &PhysicalMaterial{
		Name:              cpu.Name,
		Albedo:            cpu.Albedo,
		Metallic:          cpu.Metallic,
		Roughness:         cpu.Roughness,
		OcclusionStrength: cpu.OcclusionStrength,
		NormalScale:       cpu.NormalScale,
		Emissive:          cpu.Emissive,
		LightingModel:     cpu.LightingModel,
		States:            DefaultRenderStates(),
	}
	textures := []struct {
		source *CPUTexture
		dest   **Texture2DRef
	}{
		{cpu.AlbedoTexture, &m.AlbedoTexture},
		{cpu.MetallicRoughnessTexture, &m.MetallicRoughnessTexture},
		{cpu.OcclusionTexture, &m.OcclusionTexture},
		{cpu.NormalTexture, &m.NormalTexture},
		{cpu.EmissiveTexture, &m.EmissiveTexture},
	}
	for _, t := range textures {
		if t.source == nil {
			continue
		}
		texture, err := upload(t.source)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("material %q: %w", cpu.Name, err)
		}
		*t.dest = NewTexture2DRef(texture)
	}
	if m.Albedo.W() < 1 || m.AlbedoTexture.hasTransparency() {
		m.IsTransparent = true
		m.States = transparentStates()
	}
	return m, nil
}

// Release drops the material's reference to its textures.
func (m *PhysicalMaterial) Release() {
	for _, ref := range m.textures() {
		if ref != nil {
			ref.Texture.Release()
		}
	}
}

func (m *PhysicalMaterial) textures() []*Texture2DRef {
	return []*Texture2DRef{m.AlbedoTexture, m.MetallicRoughnessTexture, m.OcclusionTexture, m.NormalTexture, m.EmissiveTexture}
}

func (m *PhysicalMaterial) usesUVs() bool {
	for _, ref := range m.textures() {
		if ref != nil {
			return true
		}
	}
	return false
}

func (m *PhysicalMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	var b strings.Builder
	writeDefines(&b,
		define{m.AlbedoTexture != nil, "USE_ALBEDO_TEXTURE"},
		define{m.MetallicRoughnessTexture != nil, "USE_METALLIC_ROUGHNESS_TEXTURE"},
		define{m.OcclusionTexture != nil, "USE_OCCLUSION_TEXTURE"},
		define{m.NormalTexture != nil, "USE_NORMAL_TEXTURE"},
		define{m.EmissiveTexture != nil, "USE_EMISSIVE_TEXTURE"},
	)
	b.WriteString(FragmentAttributes{
		Position: true,
		Normal:   true,
		Tangents: m.NormalTexture != nil,
		UV:       m.usesUVs(),
		Color:    useVertexColors,
	}.declarations())
	b.WriteString(LightingShaderSource(m.LightingModel, lights))
	b.WriteString(physicalMaterialSource)
	return b.String()
}

func (m *PhysicalMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {
	UseLights(program, lights)
	program.UseUniform("cameraPosition", camera.Position())
	program.UseUniform("albedo", m.Albedo)
	program.UseUniform("metallic", m.Metallic)
	program.UseUniform("roughness", m.Roughness)
	program.UseUniform("emissive", m.Emissive)
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
	if m.EmissiveTexture != nil {
		m.EmissiveTexture.use(program, "emissiveTexture", "emissiveTexTransform")
	}
}

func (m *PhysicalMaterial) RenderStates() RenderStates { return m.States }

func (m *PhysicalMaterial) MaterialType() MaterialType {
	if m.IsTransparent {
		return Transparent
	}
	return Opaque
}
