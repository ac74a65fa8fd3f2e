package gpu

import (
	"Prism3D/internal/logger"
	"sync/atomic"

	"go.uber.org/zap"
)

// Kind identifies the native object type behind a Handle.
type Kind uint8

const (
	KindBuffer Kind = iota
	KindVertexArray
	KindTexture
	KindFramebuffer
	KindRenderbuffer
	KindShader
	KindProgram
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindVertexArray:
		return "vertex array"
	case KindTexture:
		return "texture"
	case KindFramebuffer:
		return "framebuffer"
	case KindRenderbuffer:
		return "renderbuffer"
	case KindShader:
		return "shader"
	case KindProgram:
		return "program"
	}
	return "unknown"
}

// Handle owns one native GPU object. The object is deleted exactly once, when
// the last owner calls Release.
type Handle struct {
	api  Context
	kind Kind
	id   uint32
	refs atomic.Int32
}

// NewHandle wraps id with a single owner.
func NewHandle(api Context, kind Kind, id uint32) *Handle {
	h := &Handle{api: api, kind: kind, id: id}
	h.refs.Store(1)
	return h
}

// ID returns the native object name, or 0 once the handle has been destroyed.
func (h *Handle) ID() uint32 {
	if h == nil || h.refs.Load() <= 0 {
		return 0
	}
	return h.id
}

func (h *Handle) Kind() Kind { return h.kind }

// Live reports whether the native object still exists.
func (h *Handle) Live() bool { return h != nil && h.refs.Load() > 0 }

// Retain adds an owner and returns the same handle.
func (h *Handle) Retain() *Handle {
	if h.refs.Add(1) <= 1 {
		// Resurrecting a destroyed handle would hand out a dangling id.
		h.refs.Store(0)
		panic("gpu: Retain on released " + h.kind.String() + " handle")
	}
	return h
}

// Release drops one owner. It returns true when this call destroyed the object.
// Releasing an already destroyed handle only logs a warning.
func (h *Handle) Release() bool {
	if h == nil {
		return false
	}
	for {
		n := h.refs.Load()
		if n <= 0 {
			logger.Log.Warn("Release of destroyed GPU object",
				zap.String("kind", h.kind.String()),
				zap.Uint32("id", h.id))
			return false
		}
		if h.refs.CompareAndSwap(n, n-1) {
			if n-1 > 0 {
				return false
			}
			break
		}
	}
	h.destroy()
	return true
}

func (h *Handle) destroy() {
	switch h.kind {
	case KindBuffer:
		h.api.DeleteBuffer(h.id)
	case KindVertexArray:
		h.api.DeleteVertexArray(h.id)
	case KindTexture:
		h.api.DeleteTexture(h.id)
	case KindFramebuffer:
		h.api.DeleteFramebuffer(h.id)
	case KindRenderbuffer:
		h.api.DeleteRenderbuffer(h.id)
	case KindShader:
		h.api.DeleteShader(h.id)
	case KindProgram:
		h.api.DeleteProgram(h.id)
	}
	logger.Log.Debug("GPU object destroyed",
		zap.String("kind", h.kind.String()),
		zap.Uint32("id", h.id))
}
