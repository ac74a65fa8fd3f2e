package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrNoRenderContext = errors.New("camera has no render context")

// Geometry is anything that can be drawn with a Program. It tells which
// vertex source serves a set of fragment inputs, and fails with a
// MissingMeshBufferError when it lacks the data for one of them.
type Geometry interface {
	Draw(camera *Camera, program *Program, states RenderStates, attributes FragmentAttributes) error
	VertexShaderSource(attributes FragmentAttributes) (string, error)
	AABB() AABB
	HasVertexColors() bool
}

// Object is a Geometry that knows its own material.
type Object interface {
	Geometry
	Render(camera *Camera, lights []Light) error
	MaterialType() MaterialType
}

// Gm pairs a geometry with a material.
type Gm struct {
	Geometry
	Material Material
}

func NewGm(geometry Geometry, material Material) *Gm {
	return &Gm{Geometry: geometry, Material: material}
}

func (gm *Gm) Render(camera *Camera, lights []Light) error {
	return RenderWithMaterial(gm.Material, gm.Geometry, camera, lights)
}

func (gm *Gm) MaterialType() MaterialType { return gm.Material.MaterialType() }

// RenderWithMaterial draws geometry with material into the bound target.
//
// The fragment source is composed first; the vertex inputs it declares
// select the vertex source, and the pair is looked up in the program cache.
func RenderWithMaterial(material Material, geometry Geometry, camera *Camera, lights []Light) error {
	return renderWithStates(material, geometry, camera, lights, material.RenderStates())
}

func renderWithStates(material Material, geometry Geometry, camera *Camera, lights []Light, states RenderStates) error {
	if camera.ctx == nil {
		return ErrNoRenderContext
	}
	fragment := ComposeFragmentShader(material, geometry.HasVertexColors(), lights)
	attributes, err := InferAttributes(fragment)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	vertex, err := geometry.VertexShaderSource(attributes)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	program, err := camera.ctx.programs.GetOrCompile(vertex, fragment)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	material.UseUniforms(program, camera, lights)
	return geometry.Draw(camera, program, states, attributes)
}

// Transform composes translation, rotation and scale in that order, so
// vertices are scaled first.
func Transform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	translationMatrix := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	scaleMatrix := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return translationMatrix.Mul4(rotation.Normalize().Mat4()).Mul4(scaleMatrix)
}
