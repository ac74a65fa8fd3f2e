package renderer

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/logger"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// textureBase is the state every texture kind shares.
type textureBase struct {
	ctx      *Context
	handle   *gpu.Handle
	target   gpu.Enum
	label    string
	format   Format
	dataType DataType
	sampling Sampling
	levels   uint32
}

func newTextureBase(ctx *Context, target gpu.Enum, label string, format Format, dataType DataType, sampling Sampling) (textureBase, error) {
	id, err := ctx.api.CreateTexture()
	if err != nil {
		return textureBase{}, fmt.Errorf("texture %q: %w", label, err)
	}
	if label == "" {
		label = uuid.NewString()
	}
	return textureBase{
		ctx:      ctx,
		handle:   gpu.NewHandle(ctx.api, gpu.KindTexture, id),
		target:   target,
		label:    label,
		format:   format,
		dataType: dataType,
		sampling: sampling,
	}, nil
}

func (t *textureBase) bind() {
	t.ctx.api.BindTexture(t.target, t.handle.ID())
}

// generateMipmaps regenerates the chain after a content write, when one was
// requested at creation.
func (t *textureBase) generateMipmaps() {
	if t.levels > 1 {
		t.bind()
		t.ctx.api.GenerateMipmap(t.target)
	}
}

// ID returns the native texture name.
func (t *textureBase) ID() uint32 { return t.handle.ID() }

func (t *textureBase) textureTarget() gpu.Enum { return t.target }

// Label is the debug name of the texture.
func (t *textureBase) Label() string { return t.label }

// MipLevels returns the number of mip levels.
func (t *textureBase) MipLevels() uint32 { return t.levels }

func (t *textureBase) Format() Format { return t.format }

// Retain adds an owner. Each owner calls Release once.
func (t *textureBase) Retain() { t.handle.Retain() }

// Release drops one owner and deletes the texture with the last one.
func (t *textureBase) Release() {
	if t.handle.Release() {
		logger.Log.Debug("Texture freed", zap.String("label", t.label))
	}
}

// Texture2D is a 2D texture with an optional mip chain.
type Texture2D struct {
	textureBase
	width, height uint32
	transparent   bool
}

// NewTexture2D uploads cpu into a new texture.
func NewTexture2D(ctx *Context, cpu *CPUTexture) (*Texture2D, error) {
	if err := cpu.Validate(); err != nil {
		return nil, fmt.Errorf("texture %q: %w", cpu.Name, err)
	}
	t, err := NewEmptyTexture2D(ctx, cpu.Name, cpu.Width, cpu.Height, cpu.Format, cpu.DataType(), cpu.Sampling)
	if err != nil {
		return nil, err
	}
	if err := t.Fill(cpu.data()); err != nil {
		t.Release()
		return nil, err
	}
	t.transparent = cpu.HasTransparency()
	logger.Log.Info("Texture created",
		zap.String("label", t.label),
		zap.Uint32("width", t.width),
		zap.Uint32("height", t.height),
		zap.Uint32("mipLevels", t.levels))
	return t, nil
}

// NewEmptyTexture2D allocates a texture without contents, typically to render
// into.
func NewEmptyTexture2D(ctx *Context, label string, width, height uint32, format Format, dataType DataType, sampling Sampling) (*Texture2D, error) {
	base, err := newTextureBase(ctx, gpu.Texture2D, label, format, dataType, sampling)
	if err != nil {
		return nil, err
	}
	t := &Texture2D{textureBase: base, width: width, height: height}
	t.levels = mipLevels(sampling, width, height, 1)
	t.bind()
	internal := internalFormat(format, dataType)
	w, h := width, height
	for level := uint32(0); level < t.levels; level++ {
		ctx.api.TexImage2D(gpu.Texture2D, int32(level), internal, int32(w), int32(h), format.gl(), dataType.gl(), nil)
		w, h = max(w/2, 1), max(h/2, 1)
	}
	applySampling(ctx.api, gpu.Texture2D, sampling, t.levels)
	return t, nil
}

// Fill replaces the texels of level 0 with data ([]uint8 or []float32) and
// regenerates the mip chain.
func (t *Texture2D) Fill(data any) error {
	if err := checkTexels(data, t.width, t.height, 1, t.format); err != nil {
		return fmt.Errorf("texture %q: %w", t.label, err)
	}
	t.bind()
	t.ctx.api.TexSubImage2D(gpu.Texture2D, 0, 0, 0, int32(t.width), int32(t.height), t.format.gl(), dataTypeOf(data).gl(), data)
	t.generateMipmaps()
	return nil
}

func (t *Texture2D) Width() uint32  { return t.width }
func (t *Texture2D) Height() uint32 { return t.height }

// AsColorTarget selects mip level mip of the texture as a color attachment.
func (t *Texture2D) AsColorTarget(mip uint32) *ColorTarget {
	return &ColorTarget{
		textureID: t.ID(),
		target:    gpu.Texture2D,
		mip:       mip,
		width:     max(t.width>>mip, 1),
		height:    max(t.height>>mip, 1),
		owner:     &t.textureBase,
	}
}

func (t *Texture2D) samplerSource() string {
	return "uniform sampler2D colorMap;\nvec4 sample_color(vec2 uv) { return texture(colorMap, uv); }\n"
}

func (t *Texture2D) useSampler(program *Program) {
	program.UseTexture("colorMap", t)
}

func (t *Texture2D) size() (uint32, uint32) { return t.width, t.height }
