package renderer

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ColorMaterial shades a surface with a flat color, optionally modulated by a
// texture and vertex colors. It ignores lights.
type ColorMaterial struct {
	Color         mgl32.Vec4
	Texture       *Texture2DRef
	IsTransparent bool
	States        RenderStates
}

// NewColorMaterial returns an opaque or transparent material depending on the
// alpha of color and texture.
func NewColorMaterial(color mgl32.Vec4, texture *Texture2DRef) *ColorMaterial {
	if color.W() < 1 || texture.hasTransparency() {
		return NewTransparentColorMaterial(color, texture)
	}
	return NewOpaqueColorMaterial(color, texture)
}

func NewOpaqueColorMaterial(color mgl32.Vec4, texture *Texture2DRef) *ColorMaterial {
	return &ColorMaterial{Color: color, Texture: texture, States: DefaultRenderStates()}
}

func NewTransparentColorMaterial(color mgl32.Vec4, texture *Texture2DRef) *ColorMaterial {
	return &ColorMaterial{Color: color, Texture: texture, IsTransparent: true, States: transparentStates()}
}

func (m *ColorMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	var b strings.Builder
	writeDefines(&b, define{m.Texture != nil, "USE_TEXTURE"})
	b.WriteString(FragmentAttributes{UV: m.Texture != nil, Color: useVertexColors}.declarations())
	b.WriteString(colorMaterialSource)
	return b.String()
}

func (m *ColorMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {
	program.UseUniform("surfaceColor", m.Color)
	if m.Texture != nil {
		m.Texture.use(program, "tex", "textureTransform")
	}
}

func (m *ColorMaterial) RenderStates() RenderStates { return m.States }

func (m *ColorMaterial) MaterialType() MaterialType {
	if m.IsTransparent {
		return Transparent
	}
	return Opaque
}
