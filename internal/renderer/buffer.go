package renderer

import (
	"Prism3D/internal/gpu"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexData is the per vertex element types a VertexBuffer can hold.
type VertexData interface {
	float32 | mgl32.Vec2 | mgl32.Vec3 | mgl32.Vec4
}

// ElementData is the index types an ElementBuffer can hold.
type ElementData interface {
	uint8 | uint16 | uint32
}

func componentsOf[T VertexData]() int32 {
	var zero T
	switch any(zero).(type) {
	case mgl32.Vec2:
		return 2
	case mgl32.Vec3:
		return 3
	case mgl32.Vec4:
		return 4
	}
	return 1
}

// VertexBuffer holds one attribute for every vertex or, when bound as an
// instance attribute, for every instance.
type VertexBuffer struct {
	ctx        *Context
	handle     *gpu.Handle
	count      uint32
	components int32
}

// NewVertexBuffer uploads data into a new buffer.
func NewVertexBuffer[T VertexData](ctx *Context, data []T) (*VertexBuffer, error) {
	id, err := ctx.api.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	b := &VertexBuffer{
		ctx:        ctx,
		handle:     gpu.NewHandle(ctx.api, gpu.KindBuffer, id),
		components: componentsOf[T](),
	}
	FillVertexBuffer(b, data)
	return b, nil
}

// FillVertexBuffer replaces the contents of b. The element type may differ from
// the one the buffer was created with.
func FillVertexBuffer[T VertexData](b *VertexBuffer, data []T) {
	b.components = componentsOf[T]()
	b.count = uint32(len(data))
	b.ctx.api.BindBuffer(gpu.ArrayBuffer, b.handle.ID())
	b.ctx.api.BufferData(gpu.ArrayBuffer, len(data)*int(b.components)*4, data, gpu.StaticDraw)
	b.ctx.api.BindBuffer(gpu.ArrayBuffer, 0)
}

// Count returns the number of elements.
func (b *VertexBuffer) Count() uint32 { return b.count }

// Components returns the number of floats per element.
func (b *VertexBuffer) Components() int32 { return b.components }

func (b *VertexBuffer) ID() uint32 { return b.handle.ID() }

func (b *VertexBuffer) Release() { b.handle.Release() }

// ElementBuffer holds triangle indices.
type ElementBuffer struct {
	ctx      *Context
	handle   *gpu.Handle
	count    uint32
	dataType gpu.Enum
}

// NewElementBuffer uploads indices into a new buffer.
func NewElementBuffer[T ElementData](ctx *Context, indices []T) (*ElementBuffer, error) {
	id, err := ctx.api.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("element buffer: %w", err)
	}
	b := &ElementBuffer{ctx: ctx, handle: gpu.NewHandle(ctx.api, gpu.KindBuffer, id)}
	FillElementBuffer(b, indices)
	return b, nil
}

// FillElementBuffer replaces the indices of b.
func FillElementBuffer[T ElementData](b *ElementBuffer, indices []T) {
	var zero T
	size := 4
	switch any(zero).(type) {
	case uint8:
		b.dataType, size = gpu.UnsignedByte, 1
	case uint16:
		b.dataType, size = gpu.UnsignedShort, 2
	default:
		b.dataType = gpu.UnsignedInt
	}
	b.count = uint32(len(indices))
	b.ctx.api.BindBuffer(gpu.ElementArrayBuffer, b.handle.ID())
	b.ctx.api.BufferData(gpu.ElementArrayBuffer, len(indices)*size, indices, gpu.StaticDraw)
	b.ctx.api.BindBuffer(gpu.ElementArrayBuffer, 0)
}

// Count returns the number of indices.
func (b *ElementBuffer) Count() uint32 { return b.count }

func (b *ElementBuffer) ID() uint32 { return b.handle.ID() }

func (b *ElementBuffer) Release() { b.handle.Release() }

var ErrUniformBufferIndex = errors.New("uniform buffer: index or data size out of range")

// UniformBuffer is a std140 uniform block made of float, vec2, vec3, vec4 and
// mat4 members given by their float counts.
type UniformBuffer struct {
	ctx     *Context
	handle  *gpu.Handle
	offsets []int
	sizes   []int
	data    []float32
}

// NewUniformBuffer allocates a block with the given member sizes in floats.
func NewUniformBuffer(ctx *Context, sizes []int) (*UniformBuffer, error) {
	id, err := ctx.api.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("uniform buffer: %w", err)
	}
	b := &UniformBuffer{
		ctx:    ctx,
		handle: gpu.NewHandle(ctx.api, gpu.KindBuffer, id),
		sizes:  sizes,
	}
	offset := 0
	for _, size := range sizes {
		align := 4
		switch size {
		case 1:
			align = 1
		case 2:
			align = 2
		}
		offset = (offset + align - 1) / align * align
		b.offsets = append(b.offsets, offset)
		offset += size
	}
	// Blocks are padded to a vec4 boundary.
	offset = (offset + 3) / 4 * 4
	b.data = make([]float32, offset)
	b.send()
	return b, nil
}

// Update writes member index and uploads the block.
func (b *UniformBuffer) Update(index int, data []float32) error {
	if index < 0 || index >= len(b.sizes) || len(data) != b.sizes[index] {
		return fmt.Errorf("%w: member %d with %d floats", ErrUniformBufferIndex, index, len(data))
	}
	copy(b.data[b.offsets[index]:], data)
	b.send()
	return nil
}

// Get returns a copy of member index.
func (b *UniformBuffer) Get(index int) []float32 {
	if index < 0 || index >= len(b.sizes) {
		return nil
	}
	out := make([]float32, b.sizes[index])
	copy(out, b.data[b.offsets[index]:])
	return out
}

func (b *UniformBuffer) send() {
	b.ctx.api.BindBuffer(gpu.UniformBuffer, b.handle.ID())
	b.ctx.api.BufferData(gpu.UniformBuffer, len(b.data)*4, b.data, gpu.DynamicDraw)
	b.ctx.api.BindBuffer(gpu.UniformBuffer, 0)
}

func (b *UniformBuffer) ID() uint32 { return b.handle.ID() }

func (b *UniformBuffer) Release() { b.handle.Release() }
