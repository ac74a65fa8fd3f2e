package renderer

import (
	"Prism3D/internal/logger"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Sky colors for solid color skyboxes.
var (
	SkyDay        = mgl32.Vec3{0.5, 0.7, 1.0}
	SkySunset     = mgl32.Vec3{1.0, 0.6, 0.3}
	SkyNight      = mgl32.Vec3{0.1, 0.1, 0.3}
	SkyBrightBlue = mgl32.Vec3{0.3, 0.6, 1.0}
)

// SkyboxMaterial samples a cube map in the view direction. HDR maps are tone
// mapped.
type SkyboxMaterial struct {
	Texture *TextureCubeMap
	IsHDR   bool
}

func (m *SkyboxMaterial) FragmentShaderSource(useVertexColors bool, lights []Light) string {
	return skyboxMaterialSource
}

func (m *SkyboxMaterial) UseUniforms(program *Program, camera *Camera, lights []Light) {
	program.UseTexture("environmentMap", m.Texture)
	program.UseUniform("isHDR", m.IsHDR)
}

// RenderStates draw the box behind everything without writing depth.
func (m *SkyboxMaterial) RenderStates() RenderStates {
	return RenderStates{WriteMask: WriteMaskColor, DepthTest: DepthLessOrEqual, Cull: CullNone}
}

func (m *SkyboxMaterial) MaterialType() MaterialType { return Opaque }

// Skybox is a unit cube drawn at the far plane around the camera.
type Skybox struct {
	ctx       *Context
	positions *VertexBuffer
	indices   *ElementBuffer
	material  *SkyboxMaterial
	owned     bool
}

// NewSkyboxFromTexture draws texture, which stays owned by the caller.
func NewSkyboxFromTexture(ctx *Context, texture *TextureCubeMap, isHDR bool) (*Skybox, error) {
	cube := CPUMeshCube()
	positions, err := NewVertexBuffer(ctx, cube.Positions)
	if err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}
	indices, err := newIndexBuffer(ctx, cube.Indices, cube.VertexCount())
	if err != nil {
		positions.Release()
		return nil, fmt.Errorf("skybox: %w", err)
	}
	return &Skybox{
		ctx:       ctx,
		positions: positions,
		indices:   indices,
		material:  &SkyboxMaterial{Texture: texture, IsHDR: isHDR},
	}, nil
}

// NewSkybox uploads six images in CubeMapSides order.
func NewSkybox(ctx *Context, sides [6]*CPUTexture) (*Skybox, error) {
	texture, err := NewTextureCubeMap(ctx, "skybox", sides)
	if err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}
	s, err := NewSkyboxFromTexture(ctx, texture, sides[0].DataType() != TypeU8)
	if err != nil {
		texture.Release()
		return nil, err
	}
	s.owned = true
	logger.Log.Info("Skybox created",
		zap.String("texture", texture.Label()),
		zap.Uint32("size", texture.Width()))
	return s, nil
}

// NewSolidColorSkybox is a skybox of one color.
func NewSolidColorSkybox(ctx *Context, color mgl32.Vec3) (*Skybox, error) {
	texture, err := NewEmptyTextureCubeMap(ctx, "sky color", 1, 1, FormatRGBA, TypeF32, TargetSampling())
	if err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}
	s, err := NewSkyboxFromTexture(ctx, texture, false)
	if err != nil {
		texture.Release()
		return nil, err
	}
	s.owned = true
	if err := s.SetColor(color); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// SetColor fills every face with color. Textured skyboxes are resampled to a
// single texel per face.
func (s *Skybox) SetColor(color mgl32.Vec3) error {
	texture := s.material.Texture
	texel := []float32{color.X(), color.Y(), color.Z(), 1}
	data := make([]float32, 0, int(texture.Width()*texture.Height())*4)
	for i, n := uint32(0), texture.Width()*texture.Height(); i < n; i++ {
		data = append(data, texel...)
	}
	for _, side := range CubeMapSides {
		if err := texture.Fill(side, data); err != nil {
			return fmt.Errorf("skybox: %w", err)
		}
	}
	return nil
}

// Texture returns the sampled cube map.
func (s *Skybox) Texture() *TextureCubeMap { return s.material.Texture }

func (s *Skybox) VertexShaderSource(attributes FragmentAttributes) (string, error) {
	return skyboxVertexSource, nil
}

func (s *Skybox) Draw(camera *Camera, program *Program, states RenderStates, attributes FragmentAttributes) error {
	program.UseUniformBlock("Camera", camera.UniformBuffer())
	program.UseVertexAttribute("position", s.positions)
	program.DrawElements(states, camera.Viewport(), s.indices)
	return nil
}

// AABB is infinite so the skybox is never culled.
func (s *Skybox) AABB() AABB { return InfiniteAABB() }

func (s *Skybox) HasVertexColors() bool { return false }

func (s *Skybox) Render(camera *Camera, lights []Light) error {
	return RenderWithMaterial(s.material, s, camera, lights)
}

func (s *Skybox) MaterialType() MaterialType { return Opaque }

// Release frees the cube geometry, and the texture when the skybox created it.
func (s *Skybox) Release() {
	s.positions.Release()
	s.indices.Release()
	if s.owned {
		s.material.Texture.Release()
	}
}
