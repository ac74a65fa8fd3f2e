package renderer

import (
	"Prism3D/internal/gpu"
	"fmt"

	"github.com/google/uuid"
)

// DepthFormat is the precision of a depth attachment.
type DepthFormat int

const (
	Depth32F DepthFormat = iota
	Depth24
	Depth16
)

func (f DepthFormat) gl() gpu.Enum {
	switch f {
	case Depth24:
		return gpu.DepthComponent24
	case Depth16:
		return gpu.DepthComponent16
	}
	return gpu.DepthComponent32F
}

func depthSampling() Sampling {
	return Sampling{MinFilter: Nearest, MagFilter: Nearest, WrapS: ClampToEdge, WrapT: ClampToEdge, WrapR: ClampToEdge}
}

// DepthTexture2D is a sampleable depth buffer, used by depth passes and
// shadow maps.
type DepthTexture2D struct {
	textureBase
	width, height uint32
	depthFormat   DepthFormat
}

// NewDepthTexture2D allocates a width x height depth texture.
func NewDepthTexture2D(ctx *Context, label string, width, height uint32, format DepthFormat) (*DepthTexture2D, error) {
	base, err := newTextureBase(ctx, gpu.Texture2D, label, FormatR, TypeF32, depthSampling())
	if err != nil {
		return nil, err
	}
	t := &DepthTexture2D{textureBase: base, width: width, height: height, depthFormat: format}
	t.levels = 1
	t.bind()
	ctx.api.TexImage2D(gpu.Texture2D, 0, format.gl(), int32(width), int32(height), gpu.DepthComponent, gpu.Float, nil)
	applySampling(ctx.api, gpu.Texture2D, t.sampling, 1)
	return t, nil
}

func (t *DepthTexture2D) Width() uint32  { return t.width }
func (t *DepthTexture2D) Height() uint32 { return t.height }

// AsDepthTarget selects the texture as a depth attachment.
func (t *DepthTexture2D) AsDepthTarget() *DepthTarget {
	return &DepthTarget{textureID: t.ID(), target: gpu.Texture2D, width: t.width, height: t.height}
}

func (t *DepthTexture2D) depthSamplerSource() string {
	return "uniform sampler2D depthMap;\nfloat sample_depth(vec2 uv) { return texture(depthMap, uv).x; }\n"
}

func (t *DepthTexture2D) useDepthSampler(program *Program) {
	program.UseTexture("depthMap", t)
}

func (t *DepthTexture2D) size() (uint32, uint32) { return t.width, t.height }

// DepthTexture2DArray is a stack of depth layers.
type DepthTexture2DArray struct {
	textureBase
	width, height, depth uint32
}

// NewDepthTexture2DArray allocates depth layers of width x height.
func NewDepthTexture2DArray(ctx *Context, label string, width, height, depth uint32, format DepthFormat) (*DepthTexture2DArray, error) {
	base, err := newTextureBase(ctx, gpu.Texture2DArray, label, FormatR, TypeF32, depthSampling())
	if err != nil {
		return nil, err
	}
	t := &DepthTexture2DArray{textureBase: base, width: width, height: height, depth: depth}
	t.levels = 1
	t.bind()
	ctx.api.TexImage3D(gpu.Texture2DArray, 0, format.gl(), int32(width), int32(height), int32(depth), gpu.DepthComponent, gpu.Float, nil)
	applySampling(ctx.api, gpu.Texture2DArray, t.sampling, 1)
	return t, nil
}

func (t *DepthTexture2DArray) Width() uint32  { return t.width }
func (t *DepthTexture2DArray) Height() uint32 { return t.height }
func (t *DepthTexture2DArray) Depth() uint32  { return t.depth }

// AsDepthTarget selects one layer as a depth attachment.
func (t *DepthTexture2DArray) AsDepthTarget(layer uint32) *DepthTarget {
	return &DepthTarget{textureID: t.ID(), target: gpu.Texture2DArray, layer: layer, width: t.width, height: t.height}
}

// Layer selects one layer for sampling in a screen effect.
func (t *DepthTexture2DArray) Layer(layer uint32) DepthTexture {
	return depthArrayLayer{array: t, layer: layer}
}

type depthArrayLayer struct {
	array *DepthTexture2DArray
	layer uint32
}

func (d depthArrayLayer) depthSamplerSource() string {
	return "uniform sampler2DArray depthMap;\nuniform int depthLayer;\n" +
		"float sample_depth(vec2 uv) { return texture(depthMap, vec3(uv, float(depthLayer))).x; }\n"
}

func (d depthArrayLayer) useDepthSampler(program *Program) {
	program.UseTexture("depthMap", d.array)
	program.UseUniform("depthLayer", int32(d.layer))
}

func (d depthArrayLayer) size() (uint32, uint32) { return d.array.width, d.array.height }

// DepthRenderbuffer is a depth attachment that cannot be sampled.
type DepthRenderbuffer struct {
	ctx           *Context
	handle        *gpu.Handle
	label         string
	width, height uint32
}

// NewDepthRenderbuffer allocates a width x height depth renderbuffer.
func NewDepthRenderbuffer(ctx *Context, width, height uint32, format DepthFormat) (*DepthRenderbuffer, error) {
	id, err := ctx.api.CreateRenderbuffer()
	if err != nil {
		return nil, fmt.Errorf("depth renderbuffer: %w", err)
	}
	ctx.api.BindRenderbuffer(id)
	ctx.api.RenderbufferStorage(format.gl(), int32(width), int32(height))
	ctx.api.BindRenderbuffer(0)
	return &DepthRenderbuffer{
		ctx:    ctx,
		handle: gpu.NewHandle(ctx.api, gpu.KindRenderbuffer, id),
		label:  uuid.NewString(),
		width:  width,
		height: height,
	}, nil
}

// AsDepthTarget selects the renderbuffer as a depth attachment.
func (r *DepthRenderbuffer) AsDepthTarget() *DepthTarget {
	return &DepthTarget{renderbufferID: r.handle.ID(), width: r.width, height: r.height}
}

func (r *DepthRenderbuffer) Release() { r.handle.Release() }
