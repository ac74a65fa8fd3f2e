// Package gpu is the boundary between the rendering core and the graphics API.
//
// Context mirrors the graphics API one call per function. The core never talks
// to the driver except through it, which keeps every piece of process wide GPU
// state (bound framebuffer, program, textures) behind a single object that must
// only be used from the thread owning the native context.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Context is the primitive graphics API surface consumed by the renderer.
//
// Creation functions return ErrResourceCreation (wrapped) when the driver
// refuses to allocate the object. Data arguments accept the slice types the
// renderer uploads ([]uint8, []uint16, []uint32, []float32 and the mgl32 vector
// slices) or nil to allocate storage without contents.
type Context interface {
	// Buffers
	CreateBuffer() (uint32, error)
	DeleteBuffer(id uint32)
	BindBuffer(target Enum, id uint32)
	BufferData(target Enum, size int, data any, usage Enum)
	BindBufferBase(target Enum, index, id uint32)

	// Vertex arrays and attributes
	CreateVertexArray() (uint32, error)
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	EnableVertexAttribArray(location uint32)
	DisableVertexAttribArray(location uint32)
	VertexAttribPointer(location uint32, size int32, typ Enum, normalized bool, stride int32, offset int)
	VertexAttribDivisor(location, divisor uint32)

	// Textures
	CreateTexture() (uint32, error)
	DeleteTexture(id uint32)
	ActiveTexture(unit uint32)
	BindTexture(target Enum, id uint32)
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, typ Enum, data any)
	TexImage3D(target Enum, level int32, internalFormat Enum, width, height, depth int32, format, typ Enum, data any)
	TexSubImage2D(target Enum, level, x, y, width, height int32, format, typ Enum, data any)
	TexSubImage3D(target Enum, level, x, y, z, width, height, depth int32, format, typ Enum, data any)
	TexParameteri(target, name Enum, value int32)
	GenerateMipmap(target Enum)

	// Framebuffers and renderbuffers
	CreateFramebuffer() (uint32, error)
	DeleteFramebuffer(id uint32)
	BindFramebuffer(target Enum, id uint32)
	FramebufferTexture2D(target, attachment, textureTarget Enum, texture uint32, level int32)
	FramebufferTextureLayer(target, attachment Enum, texture uint32, level, layer int32)
	FramebufferRenderbuffer(target, attachment, renderbufferTarget Enum, renderbuffer uint32)
	CheckFramebufferStatus(target Enum) Enum
	DrawBuffers(attachments []Enum)
	ReadBuffer(source Enum)
	ReadPixels(x, y, width, height int32, format, typ Enum, dst any)
	CreateRenderbuffer() (uint32, error)
	DeleteRenderbuffer(id uint32)
	BindRenderbuffer(id uint32)
	RenderbufferStorage(internalFormat Enum, width, height int32)

	// Shaders and programs
	CreateShader(stage Enum) (uint32, error)
	DeleteShader(id uint32)
	ShaderSource(id uint32, source string)
	CompileShader(id uint32)
	ShaderCompiled(id uint32) bool
	ShaderInfoLog(id uint32) string
	CreateProgram() (uint32, error)
	DeleteProgram(id uint32)
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(id uint32)
	ProgramLinked(id uint32) bool
	ProgramInfoLog(id uint32) string
	UseProgram(id uint32)
	GetUniformLocation(program uint32, name string) int32
	GetAttribLocation(program uint32, name string) int32
	GetUniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, blockIndex, binding uint32)

	// Uniforms
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	UniformMatrix3fv(location int32, m mgl32.Mat3)
	UniformMatrix4fv(location int32, m mgl32.Mat4)

	// Fixed function state
	Enable(capability Enum)
	Disable(capability Enum)
	DepthFunc(function Enum)
	DepthMask(write bool)
	ColorMask(r, g, b, a bool)
	CullFace(face Enum)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	BlendEquationSeparate(rgb, alpha Enum)
	Viewport(x, y, width, height int32)
	Scissor(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	ClearDepth(depth float64)
	Clear(mask Enum)

	// Drawing
	DrawArrays(mode Enum, first, count int32)
	DrawArraysInstanced(mode Enum, first, count, instances int32)
	DrawElements(mode Enum, count int32, typ Enum, offset int)
	DrawElementsInstanced(mode Enum, count int32, typ Enum, offset int, instances int32)

	// Synchronisation and diagnostics
	Finish()
	GetError() Enum
}

// InvalidIndex is returned by GetUniformBlockIndex for unknown blocks.
const InvalidIndex uint32 = 0xFFFFFFFF

// FramebufferStatusString describes a CheckFramebufferStatus result.
func FramebufferStatusString(status Enum) string {
	switch status {
	case FramebufferComplete:
		return "complete"
	case FramebufferUndefined:
		return "undefined"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment"
	case FramebufferIncompleteMissingAttachment:
		return "missing attachment"
	case FramebufferIncompleteDrawBuffer:
		return "incomplete draw buffer"
	case FramebufferIncompleteReadBuffer:
		return "incomplete read buffer"
	case FramebufferUnsupported:
		return "unsupported attachment combination"
	case FramebufferIncompleteMultisample:
		return "incomplete multisample"
	case FramebufferIncompleteLayerTargets:
		return "incomplete layer targets"
	default:
		return "unknown status"
	}
}
