package renderer

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Texture is anything a Program can sample.
type Texture interface {
	ID() uint32
	textureTarget() gpu.Enum
}

// Program is a linked vertex and fragment shader pair. Locations of uniforms,
// attributes and blocks are looked up once and cached.
type Program struct {
	ctx            *Context
	handle         *gpu.Handle
	vertexSource   string
	fragmentSource string

	uniforms   map[string]int32
	attributes map[string]int32
	textures   map[string]uint32
	blocks     map[string]uint32
	enabled    []uint32
}

func newProgram(ctx *Context, handle *gpu.Handle, vertex, fragment string) *Program {
	return &Program{
		ctx:            ctx,
		handle:         handle,
		vertexSource:   vertex,
		fragmentSource: fragment,
		uniforms:       make(map[string]int32),
		attributes:     make(map[string]int32),
		textures:       make(map[string]uint32),
		blocks:         make(map[string]uint32),
	}
}

func (p *Program) ID() uint32 { return p.handle.ID() }

func (p *Program) VertexSource() string { return p.vertexSource }

func (p *Program) FragmentSource() string { return p.fragmentSource }

// Retain adds an owner besides the cache.
func (p *Program) Retain() { p.handle.Retain() }

// Release drops one owner. The program is deleted with the last one.
func (p *Program) Release() {
	id := p.ID()
	if p.handle.Release() {
		if p.ctx.program == id {
			p.ctx.program = 0
		}
		logger.Log.Debug("Program freed", zap.Uint32("id", id))
	}
}

func (p *Program) use() { p.ctx.useProgram(p.ID()) }

// UniformLocation returns the cached location of name, -1 when the linked
// program does not use it.
func (p *Program) UniformLocation(name string) int32 {
	if loc, exists := p.uniforms[name]; exists {
		return loc
	}
	loc := p.ctx.api.GetUniformLocation(p.ID(), name)
	p.uniforms[name] = loc
	return loc
}

// Requires reports whether the program uses the uniform or attribute name.
func (p *Program) Requires(name string) bool {
	return p.UniformLocation(name) != -1 || p.attributeLocation(name) != -1
}

func (p *Program) attributeLocation(name string) int32 {
	if loc, exists := p.attributes[name]; exists {
		return loc
	}
	loc := p.ctx.api.GetAttribLocation(p.ID(), name)
	p.attributes[name] = loc
	return loc
}

// UseUniform sends value to name. Unused uniforms are skipped. Supported
// values are bool, int, int32, uint32, float32 and the mgl32 vector and matrix
// types.
func (p *Program) UseUniform(name string, value any) {
	loc := p.UniformLocation(name)
	if loc == -1 {
		return
	}
	p.use()
	api := p.ctx.api
	switch v := value.(type) {
	case bool:
		if v {
			api.Uniform1i(loc, 1)
		} else {
			api.Uniform1i(loc, 0)
		}
	case int:
		api.Uniform1i(loc, int32(v))
	case int32:
		api.Uniform1i(loc, v)
	case uint32:
		api.Uniform1i(loc, int32(v))
	case float32:
		api.Uniform1f(loc, v)
	case mgl32.Vec2:
		api.Uniform2f(loc, v[0], v[1])
	case mgl32.Vec3:
		api.Uniform3f(loc, v[0], v[1], v[2])
	case mgl32.Vec4:
		api.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case mgl32.Mat3:
		api.UniformMatrix3fv(loc, v)
	case mgl32.Mat4:
		api.UniformMatrix4fv(loc, v)
	default:
		logger.Log.Warn("Unsupported uniform type", zap.String("name", name), zap.Any("value", value))
	}
}

// UseTexture binds texture to the sampler name. Each sampler keeps its own
// texture unit for the lifetime of the program.
func (p *Program) UseTexture(name string, texture Texture) {
	loc := p.UniformLocation(name)
	if loc == -1 {
		return
	}
	unit, exists := p.textures[name]
	if !exists {
		unit = uint32(len(p.textures))
		p.textures[name] = unit
	}
	p.use()
	p.ctx.api.ActiveTexture(unit)
	p.ctx.api.BindTexture(texture.textureTarget(), texture.ID())
	p.ctx.api.Uniform1i(loc, int32(unit))
}

// UseUniformBlock binds buffer to the uniform block name.
func (p *Program) UseUniformBlock(name string, buffer *UniformBuffer) {
	binding, exists := p.blocks[name]
	if !exists {
		index := p.ctx.api.GetUniformBlockIndex(p.ID(), name)
		if index == gpu.InvalidIndex {
			return
		}
		binding = uint32(len(p.blocks))
		p.blocks[name] = binding
		p.ctx.api.UniformBlockBinding(p.ID(), index, binding)
	}
	p.ctx.api.BindBufferBase(gpu.UniformBuffer, binding, buffer.ID())
}

// UseVertexAttribute feeds buffer to the per vertex input name.
func (p *Program) UseVertexAttribute(name string, buffer *VertexBuffer) {
	p.useAttribute(name, buffer, 0)
}

// UseInstanceAttribute feeds buffer to name, advancing once per instance.
func (p *Program) UseInstanceAttribute(name string, buffer *VertexBuffer) {
	p.useAttribute(name, buffer, 1)
}

func (p *Program) useAttribute(name string, buffer *VertexBuffer, divisor uint32) {
	loc := p.attributeLocation(name)
	if loc == -1 {
		return
	}
	api := p.ctx.api
	p.use()
	api.BindVertexArray(p.ctx.vertexArray.ID())
	api.BindBuffer(gpu.ArrayBuffer, buffer.ID())
	api.VertexAttribPointer(uint32(loc), buffer.Components(), gpu.Float, false, 0, 0)
	api.VertexAttribDivisor(uint32(loc), divisor)
	api.EnableVertexAttribArray(uint32(loc))
	api.BindBuffer(gpu.ArrayBuffer, 0)
	p.enabled = append(p.enabled, uint32(loc))
}

func (p *Program) prepareDraw(states RenderStates, viewport Viewport) {
	p.ctx.SetRenderStates(states)
	p.ctx.SetViewport(viewport)
	p.use()
	p.ctx.api.BindVertexArray(p.ctx.vertexArray.ID())
}

// unuse disables the attributes enabled for the last draw.
func (p *Program) unuse() {
	for _, loc := range p.enabled {
		p.ctx.api.DisableVertexAttribArray(loc)
	}
	p.enabled = p.enabled[:0]
}

// DrawArrays draws count vertices as triangles.
func (p *Program) DrawArrays(states RenderStates, viewport Viewport, count uint32) {
	p.prepareDraw(states, viewport)
	p.ctx.api.DrawArrays(gpu.Triangles, 0, int32(count))
	p.unuse()
}

// DrawArraysInstanced draws count vertices instances times.
func (p *Program) DrawArraysInstanced(states RenderStates, viewport Viewport, count, instances uint32) {
	p.prepareDraw(states, viewport)
	p.ctx.api.DrawArraysInstanced(gpu.Triangles, 0, int32(count), int32(instances))
	p.unuse()
}

// DrawElements draws the triangles indexed by elements.
func (p *Program) DrawElements(states RenderStates, viewport Viewport, elements *ElementBuffer) {
	p.prepareDraw(states, viewport)
	p.ctx.api.BindBuffer(gpu.ElementArrayBuffer, elements.ID())
	p.ctx.api.DrawElements(gpu.Triangles, int32(elements.Count()), elements.dataType, 0)
	p.ctx.api.BindBuffer(gpu.ElementArrayBuffer, 0)
	p.unuse()
}

// DrawElementsInstanced draws the indexed triangles instances times.
func (p *Program) DrawElementsInstanced(states RenderStates, viewport Viewport, elements *ElementBuffer, instances uint32) {
	p.prepareDraw(states, viewport)
	p.ctx.api.BindBuffer(gpu.ElementArrayBuffer, elements.ID())
	p.ctx.api.DrawElementsInstanced(gpu.Triangles, int32(elements.Count()), elements.dataType, 0, int32(instances))
	p.ctx.api.BindBuffer(gpu.ElementArrayBuffer, 0)
	p.unuse()
}
