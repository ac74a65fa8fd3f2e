package renderer

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/logger"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Mesh is a triangle mesh in GPU buffers with a local to world transform.
type Mesh struct {
	ctx  *Context
	name string

	positions *VertexBuffer
	normals   *VertexBuffer
	tangents  *VertexBuffer
	uvs       *VertexBuffer
	colors    *VertexBuffer
	indices   *ElementBuffer

	transform mgl32.Mat4
	localAABB AABB
	aabb      AABB
}

// NewMesh uploads cpu. Indices use the smallest type that fits.
func NewMesh(ctx *Context, cpu *CPUMesh) (*Mesh, error) {
	if err := cpu.Validate(); err != nil {
		return nil, err
	}
	m := &Mesh{ctx: ctx, name: cpu.Name, transform: mgl32.Ident4()}
	var cleanup Unwind
	defer cleanup.Unwind()

	var err error
	if m.positions, err = NewVertexBuffer(ctx, cpu.Positions); err != nil {
		return nil, fmt.Errorf("mesh %q: %w", cpu.Name, err)
	}
	cleanup.Add(m.positions.Release)
	if len(cpu.Normals) > 0 {
		if m.normals, err = NewVertexBuffer(ctx, cpu.Normals); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", cpu.Name, err)
		}
		cleanup.Add(m.normals.Release)
	}
	if len(cpu.Tangents) > 0 {
		if m.tangents, err = NewVertexBuffer(ctx, cpu.Tangents); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", cpu.Name, err)
		}
		cleanup.Add(m.tangents.Release)
	}
	if len(cpu.UVs) > 0 {
		if m.uvs, err = NewVertexBuffer(ctx, cpu.UVs); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", cpu.Name, err)
		}
		cleanup.Add(m.uvs.Release)
	}
	if len(cpu.Colors) > 0 {
		if m.colors, err = NewVertexBuffer(ctx, cpu.Colors); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", cpu.Name, err)
		}
		cleanup.Add(m.colors.Release)
	}
	if len(cpu.Indices) > 0 {
		m.indices, err = newIndexBuffer(ctx, cpu.Indices, len(cpu.Positions))
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", cpu.Name, err)
		}
	}
	cleanup.Discard()

	m.localAABB = cpu.ComputeAABB()
	m.aabb = m.localAABB
	logger.Log.Debug("Mesh created",
		zap.String("name", cpu.Name),
		zap.Int("vertices", cpu.VertexCount()),
		zap.Int("triangles", cpu.TriangleCount()))
	return m, nil
}

func newIndexBuffer(ctx *Context, indices []uint32, vertices int) (*ElementBuffer, error) {
	switch {
	case vertices <= 1<<8:
		small := make([]uint8, len(indices))
		for i, v := range indices {
			small[i] = uint8(v)
		}
		return NewElementBuffer(ctx, small)
	case vertices <= 1<<16:
		small := make([]uint16, len(indices))
		for i, v := range indices {
			small[i] = uint16(v)
		}
		return NewElementBuffer(ctx, small)
	}
	return NewElementBuffer(ctx, indices)
}

func (m *Mesh) Name() string { return m.name }

func (m *Mesh) Transform() mgl32.Mat4 { return m.transform }

// SetTransform moves the mesh and updates its world space bounding box.
func (m *Mesh) SetTransform(transform mgl32.Mat4) {
	m.transform = transform
	m.aabb = m.localAABB.Transformed(transform)
}

func (m *Mesh) AABB() AABB { return m.aabb }

func (m *Mesh) HasVertexColors() bool { return m.colors != nil }

// Release frees the vertex and index buffers.
func (m *Mesh) Release() {
	for _, b := range []*VertexBuffer{m.positions, m.normals, m.tangents, m.uvs, m.colors} {
		if b != nil {
			b.Release()
		}
	}
	if m.indices != nil {
		m.indices.Release()
	}
}

func (m *Mesh) checkAttributes(attributes FragmentAttributes) error {
	switch {
	case attributes.Normal && m.normals == nil:
		return &gpu.MissingMeshBufferError{Attribute: "normal"}
	case attributes.Tangents && m.normals == nil:
		return &gpu.MissingMeshBufferError{Attribute: "normal"}
	case attributes.Tangents && m.tangents == nil:
		return &gpu.MissingMeshBufferError{Attribute: "tangent"}
	case attributes.UV && m.uvs == nil:
		return &gpu.MissingMeshBufferError{Attribute: "uv"}
	case attributes.Color && m.colors == nil:
		return &gpu.MissingMeshBufferError{Attribute: "color"}
	}
	return nil
}

func meshVertexDefines(b *strings.Builder, attributes FragmentAttributes, vertexColors, instanceColors, instanced bool) {
	writeDefines(b,
		define{attributes.Normal || attributes.Tangents, "USE_NORMALS"},
		define{attributes.Tangents, "USE_TANGENTS"},
		define{attributes.UV, "USE_UVS"},
		define{attributes.Color && vertexColors, "USE_VERTEX_COLORS"},
		define{attributes.Color && instanceColors, "USE_INSTANCE_COLORS"},
		define{instanced, "USE_INSTANCE_TRANSFORMS"},
	)
}

func (m *Mesh) VertexShaderSource(attributes FragmentAttributes) (string, error) {
	if err := m.checkAttributes(attributes); err != nil {
		return "", fmt.Errorf("mesh %q: %w", m.name, err)
	}
	var b strings.Builder
	meshVertexDefines(&b, attributes, true, false, false)
	b.WriteString(meshVertexSource)
	return b.String(), nil
}

// bind feeds the camera block, the transform and the requested attributes.
func (m *Mesh) bind(camera *Camera, program *Program, attributes FragmentAttributes) error {
	if err := m.checkAttributes(attributes); err != nil {
		return fmt.Errorf("mesh %q: %w", m.name, err)
	}
	program.UseUniformBlock("Camera", camera.UniformBuffer())
	program.UseUniform("modelMatrix", m.transform)
	program.UseVertexAttribute("position", m.positions)
	if attributes.Normal || attributes.Tangents {
		program.UseUniform("normalMatrix", m.transform.Inv().Transpose())
		program.UseVertexAttribute("normal", m.normals)
	}
	if attributes.Tangents {
		program.UseVertexAttribute("tangent", m.tangents)
	}
	if attributes.UV {
		program.UseVertexAttribute("uv_coordinates", m.uvs)
	}
	if attributes.Color && m.colors != nil {
		program.UseVertexAttribute("color", m.colors)
	}
	return nil
}

func (m *Mesh) Draw(camera *Camera, program *Program, states RenderStates, attributes FragmentAttributes) error {
	if err := m.bind(camera, program, attributes); err != nil {
		return err
	}
	if m.indices != nil {
		program.DrawElements(states, camera.Viewport(), m.indices)
	} else {
		program.DrawArrays(states, camera.Viewport(), m.positions.Count())
	}
	return nil
}

// Instances are the per instance data of an InstancedMesh. Colors is empty
// or as long as Transformations.
type Instances struct {
	Transformations []mgl32.Mat4
	Colors          []mgl32.Vec4
}

// InstancedMesh draws one mesh many times in a single draw call.
type InstancedMesh struct {
	mesh           *Mesh
	columns        [4]*VertexBuffer
	instanceColors *VertexBuffer
	instances      Instances
	aabb           AABB
}

// NewInstancedMesh uploads cpu once and instances as per instance buffers.
func NewInstancedMesh(ctx *Context, instances Instances, cpu *CPUMesh) (*InstancedMesh, error) {
	mesh, err := NewMesh(ctx, cpu)
	if err != nil {
		return nil, err
	}
	im := &InstancedMesh{mesh: mesh}
	if err := im.SetInstances(instances); err != nil {
		mesh.Release()
		return nil, err
	}
	return im, nil
}

// SetInstances replaces the per instance data.
func (im *InstancedMesh) SetInstances(instances Instances) error {
	if len(instances.Colors) != 0 && len(instances.Colors) != len(instances.Transformations) {
		return fmt.Errorf("%w: %d instance colors for %d instances", ErrInvalidMesh,
			len(instances.Colors), len(instances.Transformations))
	}
	ctx := im.mesh.ctx
	for col := 0; col < 4; col++ {
		data := make([]mgl32.Vec4, len(instances.Transformations))
		for i, t := range instances.Transformations {
			data[i] = t.Col(col)
		}
		if im.columns[col] == nil {
			b, err := NewVertexBuffer(ctx, data)
			if err != nil {
				return fmt.Errorf("instanced mesh %q: %w", im.mesh.name, err)
			}
			im.columns[col] = b
		} else {
			FillVertexBuffer(im.columns[col], data)
		}
	}
	switch {
	case len(instances.Colors) == 0 && im.instanceColors != nil:
		im.instanceColors.Release()
		im.instanceColors = nil
	case len(instances.Colors) > 0 && im.instanceColors == nil:
		b, err := NewVertexBuffer(ctx, instances.Colors)
		if err != nil {
			return fmt.Errorf("instanced mesh %q: %w", im.mesh.name, err)
		}
		im.instanceColors = b
	case len(instances.Colors) > 0:
		FillVertexBuffer(im.instanceColors, instances.Colors)
	}
	im.instances = instances
	im.updateAABB()
	return nil
}

func (im *InstancedMesh) updateAABB() {
	box := EmptyAABB()
	for _, t := range im.instances.Transformations {
		box.ExpandWithAABB(im.mesh.localAABB.Transformed(im.mesh.transform.Mul4(t)))
	}
	im.aabb = box
}

func (im *InstancedMesh) InstanceCount() int { return len(im.instances.Transformations) }

func (im *InstancedMesh) SetTransform(transform mgl32.Mat4) {
	im.mesh.SetTransform(transform)
	im.updateAABB()
}

func (im *InstancedMesh) Transform() mgl32.Mat4 { return im.mesh.transform }

func (im *InstancedMesh) AABB() AABB { return im.aabb }

func (im *InstancedMesh) HasVertexColors() bool {
	return im.mesh.colors != nil || im.instanceColors != nil
}

func (im *InstancedMesh) VertexShaderSource(attributes FragmentAttributes) (string, error) {
	check := attributes
	check.Color = false
	if err := im.mesh.checkAttributes(check); err != nil {
		return "", fmt.Errorf("instanced mesh %q: %w", im.mesh.name, err)
	}
	if attributes.Color && !im.HasVertexColors() {
		return "", fmt.Errorf("instanced mesh %q: %w", im.mesh.name, &gpu.MissingMeshBufferError{Attribute: "color"})
	}
	var b strings.Builder
	meshVertexDefines(&b, attributes, im.mesh.colors != nil, im.instanceColors != nil, true)
	b.WriteString(meshVertexSource)
	return b.String(), nil
}

func (im *InstancedMesh) Draw(camera *Camera, program *Program, states RenderStates, attributes FragmentAttributes) error {
	if im.InstanceCount() == 0 {
		return nil
	}
	check := attributes
	check.Color = false
	if err := im.mesh.bind(camera, program, check); err != nil {
		return err
	}
	if attributes.Color && im.mesh.colors != nil {
		program.UseVertexAttribute("color", im.mesh.colors)
	}
	for col, b := range im.columns {
		program.UseInstanceAttribute(fmt.Sprintf("instance_transform_col%d", col), b)
	}
	if attributes.Color && im.instanceColors != nil {
		program.UseInstanceAttribute("instance_color", im.instanceColors)
	}
	count := uint32(im.InstanceCount())
	if im.mesh.indices != nil {
		program.DrawElementsInstanced(states, camera.Viewport(), im.mesh.indices, count)
	} else {
		program.DrawArraysInstanced(states, camera.Viewport(), im.mesh.positions.Count(), count)
	}
	return nil
}

// Release frees the mesh and instance buffers.
func (im *InstancedMesh) Release() {
	im.mesh.Release()
	for _, b := range im.columns {
		if b != nil {
			b.Release()
		}
	}
	if im.instanceColors != nil {
		im.instanceColors.Release()
	}
}
