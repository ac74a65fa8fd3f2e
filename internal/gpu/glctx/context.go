// Package glctx implements gpu.Context on top of OpenGL 4.1 core through go-gl.
//
// All calls must be made from the thread that owns the current GL context.
package glctx

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/logger"
	"reflect"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Context forwards every gpu.Context call to the GL driver.
type Context struct{}

var _ gpu.Context = (*Context)(nil)

// New loads the GL function pointers for the current context.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		logger.Log.Error("OpenGL initialization failed", zap.Error(err))
		return nil, err
	}
	// Tightly packed rows for every texture upload and read back.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	logger.Log.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return &Context{}, nil
}

// ptr returns a pointer to the first element of data, or nil for empty data.
func ptr(data any) unsafe.Pointer {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice && v.Len() == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func cstr(name string) *uint8 {
	return gl.Str(name + "\x00")
}

func (c *Context) CreateBuffer() (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, gpu.CreationError(gpu.KindBuffer)
	}
	return id, nil
}

func (c *Context) DeleteBuffer(id uint32)                 { gl.DeleteBuffers(1, &id) }
func (c *Context) BindBuffer(target gpu.Enum, id uint32) { gl.BindBuffer(uint32(target), id) }

func (c *Context) BufferData(target gpu.Enum, size int, data any, usage gpu.Enum) {
	gl.BufferData(uint32(target), size, ptr(data), uint32(usage))
}

func (c *Context) BindBufferBase(target gpu.Enum, index, id uint32) {
	gl.BindBufferBase(uint32(target), index, id)
}

func (c *Context) CreateVertexArray() (uint32, error) {
	var id uint32
	gl.GenVertexArrays(1, &id)
	if id == 0 {
		return 0, gpu.CreationError(gpu.KindVertexArray)
	}
	return id, nil
}

func (c *Context) DeleteVertexArray(id uint32)             { gl.DeleteVertexArrays(1, &id) }
func (c *Context) BindVertexArray(id uint32)               { gl.BindVertexArray(id) }
func (c *Context) EnableVertexAttribArray(location uint32) { gl.EnableVertexAttribArray(location) }
func (c *Context) DisableVertexAttribArray(location uint32) {
	gl.DisableVertexAttribArray(location)
}

func (c *Context) VertexAttribPointer(location uint32, size int32, typ gpu.Enum, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(location, size, uint32(typ), normalized, stride, gl.PtrOffset(offset))
}

func (c *Context) VertexAttribDivisor(location, divisor uint32) {
	gl.VertexAttribDivisor(location, divisor)
}

func (c *Context) CreateTexture() (uint32, error) {
	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return 0, gpu.CreationError(gpu.KindTexture)
	}
	return id, nil
}

func (c *Context) DeleteTexture(id uint32)                { gl.DeleteTextures(1, &id) }
func (c *Context) ActiveTexture(unit uint32)              { gl.ActiveTexture(gl.TEXTURE0 + unit) }
func (c *Context) BindTexture(target gpu.Enum, id uint32) { gl.BindTexture(uint32(target), id) }

func (c *Context) TexImage2D(target gpu.Enum, level int32, internalFormat gpu.Enum, width, height int32, format, typ gpu.Enum, data any) {
	gl.TexImage2D(uint32(target), level, int32(internalFormat), width, height, 0, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexImage3D(target gpu.Enum, level int32, internalFormat gpu.Enum, width, height, depth int32, format, typ gpu.Enum, data any) {
	gl.TexImage3D(uint32(target), level, int32(internalFormat), width, height, depth, 0, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexSubImage2D(target gpu.Enum, level, x, y, width, height int32, format, typ gpu.Enum, data any) {
	gl.TexSubImage2D(uint32(target), level, x, y, width, height, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexSubImage3D(target gpu.Enum, level, x, y, z, width, height, depth int32, format, typ gpu.Enum, data any) {
	gl.TexSubImage3D(uint32(target), level, x, y, z, width, height, depth, uint32(format), uint32(typ), ptr(data))
}

func (c *Context) TexParameteri(target, name gpu.Enum, value int32) {
	gl.TexParameteri(uint32(target), uint32(name), value)
}

func (c *Context) GenerateMipmap(target gpu.Enum) { gl.GenerateMipmap(uint32(target)) }

func (c *Context) CreateFramebuffer() (uint32, error) {
	var id uint32
	gl.GenFramebuffers(1, &id)
	if id == 0 {
		return 0, gpu.CreationError(gpu.KindFramebuffer)
	}
	return id, nil
}

func (c *Context) DeleteFramebuffer(id uint32) { gl.DeleteFramebuffers(1, &id) }

func (c *Context) BindFramebuffer(target gpu.Enum, id uint32) {
	gl.BindFramebuffer(uint32(target), id)
}

func (c *Context) FramebufferTexture2D(target, attachment, textureTarget gpu.Enum, texture uint32, level int32) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(textureTarget), texture, level)
}

func (c *Context) FramebufferTextureLayer(target, attachment gpu.Enum, texture uint32, level, layer int32) {
	gl.FramebufferTextureLayer(uint32(target), uint32(attachment), texture, level, layer)
}

func (c *Context) FramebufferRenderbuffer(target, attachment, renderbufferTarget gpu.Enum, renderbuffer uint32) {
	gl.FramebufferRenderbuffer(uint32(target), uint32(attachment), uint32(renderbufferTarget), renderbuffer)
}

func (c *Context) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	return gpu.Enum(gl.CheckFramebufferStatus(uint32(target)))
}

func (c *Context) DrawBuffers(attachments []gpu.Enum) {
	if len(attachments) == 0 {
		none := uint32(gl.NONE)
		gl.DrawBuffers(1, &none)
		return
	}
	bufs := make([]uint32, len(attachments))
	for i, a := range attachments {
		bufs[i] = uint32(a)
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
}

func (c *Context) ReadBuffer(source gpu.Enum) { gl.ReadBuffer(uint32(source)) }

func (c *Context) ReadPixels(x, y, width, height int32, format, typ gpu.Enum, dst any) {
	gl.ReadPixels(x, y, width, height, uint32(format), uint32(typ), ptr(dst))
}

func (c *Context) CreateRenderbuffer() (uint32, error) {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	if id == 0 {
		return 0, gpu.CreationError(gpu.KindRenderbuffer)
	}
	return id, nil
}

func (c *Context) DeleteRenderbuffer(id uint32) { gl.DeleteRenderbuffers(1, &id) }
func (c *Context) BindRenderbuffer(id uint32)   { gl.BindRenderbuffer(gl.RENDERBUFFER, id) }

func (c *Context) RenderbufferStorage(internalFormat gpu.Enum, width, height int32) {
	gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(internalFormat), width, height)
}

func (c *Context) CreateShader(stage gpu.Enum) (uint32, error) {
	id := gl.CreateShader(uint32(stage))
	if id == 0 {
		return 0, gpu.CreationError(gpu.KindShader)
	}
	return id, nil
}

func (c *Context) DeleteShader(id uint32) { gl.DeleteShader(id) }

func (c *Context) ShaderSource(id uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
}

func (c *Context) CompileShader(id uint32) { gl.CompileShader(id) }

func (c *Context) ShaderCompiled(id uint32) bool {
	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (c *Context) ShaderInfoLog(id uint32) string {
	var logLength int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(id, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) CreateProgram() (uint32, error) {
	id := gl.CreateProgram()
	if id == 0 {
		return 0, gpu.CreationError(gpu.KindProgram)
	}
	return id, nil
}

func (c *Context) DeleteProgram(id uint32)              { gl.DeleteProgram(id) }
func (c *Context) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (c *Context) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }
func (c *Context) LinkProgram(id uint32)                { gl.LinkProgram(id) }
func (c *Context) UseProgram(id uint32)                 { gl.UseProgram(id) }

func (c *Context) ProgramLinked(id uint32) bool {
	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (c *Context) ProgramInfoLog(id uint32) string {
	var logLength int32
	gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, cstr(name))
}

func (c *Context) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, cstr(name))
}

func (c *Context) GetUniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, cstr(name))
}

func (c *Context) UniformBlockBinding(program, blockIndex, binding uint32) {
	gl.UniformBlockBinding(program, blockIndex, binding)
}

func (c *Context) Uniform1i(location int32, v int32)            { gl.Uniform1i(location, v) }
func (c *Context) Uniform1f(location int32, v float32)          { gl.Uniform1f(location, v) }
func (c *Context) Uniform2f(location int32, x, y float32)       { gl.Uniform2f(location, x, y) }
func (c *Context) Uniform3f(location int32, x, y, z float32)    { gl.Uniform3f(location, x, y, z) }
func (c *Context) Uniform4f(location int32, x, y, z, w float32) { gl.Uniform4f(location, x, y, z, w) }

func (c *Context) UniformMatrix3fv(location int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(location, 1, false, &m[0])
}

func (c *Context) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (c *Context) Enable(capability gpu.Enum)  { gl.Enable(uint32(capability)) }
func (c *Context) Disable(capability gpu.Enum) { gl.Disable(uint32(capability)) }
func (c *Context) DepthFunc(function gpu.Enum) { gl.DepthFunc(uint32(function)) }
func (c *Context) DepthMask(write bool)        { gl.DepthMask(write) }
func (c *Context) ColorMask(r, g, b, a bool)   { gl.ColorMask(r, g, b, a) }
func (c *Context) CullFace(face gpu.Enum)      { gl.CullFace(uint32(face)) }

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.Enum) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (c *Context) BlendEquationSeparate(rgb, alpha gpu.Enum) {
	gl.BlendEquationSeparate(uint32(rgb), uint32(alpha))
}

func (c *Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (c *Context) Scissor(x, y, width, height int32)  { gl.Scissor(x, y, width, height) }
func (c *Context) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (c *Context) ClearDepth(depth float64)           { gl.ClearDepth(depth) }
func (c *Context) Clear(mask gpu.Enum)                { gl.Clear(uint32(mask)) }

func (c *Context) DrawArrays(mode gpu.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (c *Context) DrawArraysInstanced(mode gpu.Enum, first, count, instances int32) {
	gl.DrawArraysInstanced(uint32(mode), first, count, instances)
}

func (c *Context) DrawElements(mode gpu.Enum, count int32, typ gpu.Enum, offset int) {
	gl.DrawElements(uint32(mode), count, uint32(typ), gl.PtrOffset(offset))
}

func (c *Context) DrawElementsInstanced(mode gpu.Enum, count int32, typ gpu.Enum, offset int, instances int32) {
	gl.DrawElementsInstanced(uint32(mode), count, uint32(typ), gl.PtrOffset(offset), instances)
}

func (c *Context) Finish()            { gl.Finish() }
func (c *Context) GetError() gpu.Enum { return gpu.Enum(gl.GetError()) }
