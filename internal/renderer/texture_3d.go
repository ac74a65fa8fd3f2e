package renderer

import (
	"Prism3D/internal/gpu"
	"fmt"
)

// Texture3D is a volume of width x height x depth texels. Unlike an array,
// every mip level halves the depth as well.
type Texture3D struct {
	textureBase
	width, height, depth uint32
}

// NewEmptyTexture3D allocates a volume and its mip chain.
func NewEmptyTexture3D(ctx *Context, label string, width, height, depth uint32, format Format, dataType DataType, sampling Sampling) (*Texture3D, error) {
	if width == 0 || height == 0 || depth == 0 {
		return nil, fmt.Errorf("texture 3d %q: %w: %dx%dx%d", label, ErrTextureData, width, height, depth)
	}
	base, err := newTextureBase(ctx, gpu.Texture3D, label, format, dataType, sampling)
	if err != nil {
		return nil, err
	}
	t := &Texture3D{textureBase: base, width: width, height: height, depth: depth}
	t.levels = mipLevels(sampling, width, height, depth)
	t.bind()
	internal := internalFormat(format, dataType)
	w, h, d := width, height, depth
	for level := uint32(0); level < t.levels; level++ {
		ctx.api.TexImage3D(gpu.Texture3D, int32(level), internal, int32(w), int32(h), int32(d), format.gl(), dataType.gl(), nil)
		w, h, d = max(w/2, 1), max(h/2, 1), max(d/2, 1)
	}
	applySampling(ctx.api, gpu.Texture3D, sampling, t.levels)
	return t, nil
}

// NewTexture3D allocates a volume and uploads data, slice after slice.
func NewTexture3D(ctx *Context, label string, width, height, depth uint32, format Format, sampling Sampling, data any) (*Texture3D, error) {
	t, err := NewEmptyTexture3D(ctx, label, width, height, depth, format, dataTypeOf(data), sampling)
	if err != nil {
		return nil, err
	}
	if err := t.Fill(data); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// Fill replaces every texel of level 0 and regenerates the mip chain.
func (t *Texture3D) Fill(data any) error {
	if err := checkTexels(data, t.width, t.height, t.depth, t.format); err != nil {
		return fmt.Errorf("texture 3d %q: %w", t.label, err)
	}
	t.bind()
	t.ctx.api.TexSubImage3D(gpu.Texture3D, 0, 0, 0, 0, int32(t.width), int32(t.height), int32(t.depth), t.format.gl(), dataTypeOf(data).gl(), data)
	t.generateMipmaps()
	return nil
}

func (t *Texture3D) Width() uint32  { return t.width }
func (t *Texture3D) Height() uint32 { return t.height }
func (t *Texture3D) Depth() uint32  { return t.depth }

// AsColorTarget selects depth slices of mip level mip as color attachments 0..n-1.
func (t *Texture3D) AsColorTarget(slices []uint32, mip uint32) *ColorTarget {
	return &ColorTarget{
		textureID: t.ID(),
		target:    gpu.Texture3D,
		layers:    append([]uint32(nil), slices...),
		mip:       mip,
		width:     max(t.width>>mip, 1),
		height:    max(t.height>>mip, 1),
		owner:     &t.textureBase,
	}
}

// Slice samples the volume at depth w in [0,1] in a screen effect. Between
// slices the sampling filter interpolates.
func (t *Texture3D) Slice(w float32) ColorTexture {
	return volumeSlice{volume: t, w: w}
}

type volumeSlice struct {
	volume *Texture3D
	w      float32
}

func (s volumeSlice) samplerSource() string {
	return "uniform sampler3D colorMap;\nuniform float colorDepth;\n" +
		"vec4 sample_color(vec2 uv) { return texture(colorMap, vec3(uv, colorDepth)); }\n"
}

func (s volumeSlice) useSampler(program *Program) {
	program.UseTexture("colorMap", s.volume)
	program.UseUniform("colorDepth", s.w)
}

func (s volumeSlice) size() (uint32, uint32) { return s.volume.width, s.volume.height }
