package renderer

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MaterialType decides the order objects are drawn in by the forward
// pipeline, and whether the deferred pipeline accepts a material.
type MaterialType int

const (
	Opaque MaterialType = iota
	Transparent
)

func (t MaterialType) String() string {
	if t == Transparent {
		return "transparent"
	}
	return "opaque"
}

// Material describes how a surface is shaded. A material produces the
// fragment source for a combination of vertex colors and lights, and binds the
// uniforms that source expects.
//
// The returned source must be a pure function of the material fields, the
// flag and the lights, since programs are cached by their text.
type Material interface {
	FragmentShaderSource(useVertexColors bool, lights []Light) string
	UseUniforms(program *Program, camera *Camera, lights []Light)
	RenderStates() RenderStates
	MaterialType() MaterialType
}

// Texture2DRef is a texture plus the transform applied to uv coordinates
// before sampling it.
type Texture2DRef struct {
	Texture   *Texture2D
	Transform mgl32.Mat3
}

// NewTexture2DRef references texture with an identity uv transform.
func NewTexture2DRef(texture *Texture2D) *Texture2DRef {
	return &Texture2DRef{Texture: texture, Transform: mgl32.Ident3()}
}

func (r *Texture2DRef) use(program *Program, sampler, transform string) {
	program.UseTexture(sampler, r.Texture)
	program.UseUniform(transform, r.Transform)
}

// hasTransparency reports whether a texture carries alpha below one.
func (r *Texture2DRef) hasTransparency() bool {
	return r != nil && r.Texture != nil && r.Texture.transparent
}

// CPUMaterial is the loader's description of a physically based material.
type CPUMaterial struct {
	Name                     string
	Albedo                   mgl32.Vec4
	AlbedoTexture            *CPUTexture
	Metallic                 float32
	Roughness                float32
	MetallicRoughnessTexture *CPUTexture
	OcclusionStrength        float32
	OcclusionTexture         *CPUTexture
	NormalScale              float32
	NormalTexture            *CPUTexture
	Emissive                 mgl32.Vec3
	EmissiveTexture          *CPUTexture
	LightingModel            LightingModel
}

// DefaultCPUMaterial is a white, fully rough dielectric.
func DefaultCPUMaterial() CPUMaterial {
	return CPUMaterial{
		Albedo:            mgl32.Vec4{1, 1, 1, 1},
		Roughness:         1,
		OcclusionStrength: 1,
		NormalScale:       1,
		LightingModel:     DefaultLightingModel(),
	}
}

func transparentStates() RenderStates {
	return RenderStates{
		WriteMask: WriteMaskColor,
		DepthTest: DepthLess,
		Blend:     BlendTransparency,
		Cull:      CullNone,
	}
}

type define struct {
	on   bool
	name string
}

func writeDefines(b *strings.Builder, flags ...define) {
	for _, f := range flags {
		if f.on {
			b.WriteString("#define " + f.name + "\n")
		}
	}
}
