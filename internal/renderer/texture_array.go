package renderer

import (
	"Prism3D/internal/gpu"
	"fmt"
)

// Texture2DArray is a stack of equally sized 2D layers.
type Texture2DArray struct {
	textureBase
	width, height, depth uint32
}

// NewEmptyTexture2DArray allocates depth layers of width x height texels.
func NewEmptyTexture2DArray(ctx *Context, label string, width, height, depth uint32, format Format, dataType DataType, sampling Sampling) (*Texture2DArray, error) {
	base, err := newTextureBase(ctx, gpu.Texture2DArray, label, format, dataType, sampling)
	if err != nil {
		return nil, err
	}
	t := &Texture2DArray{textureBase: base, width: width, height: height, depth: depth}
	t.levels = mipLevels(sampling, width, height, 1)
	t.bind()
	internal := internalFormat(format, dataType)
	w, h := width, height
	for level := uint32(0); level < t.levels; level++ {
		ctx.api.TexImage3D(gpu.Texture2DArray, int32(level), internal, int32(w), int32(h), int32(depth), format.gl(), dataType.gl(), nil)
		w, h = max(w/2, 1), max(h/2, 1)
	}
	applySampling(ctx.api, gpu.Texture2DArray, sampling, t.levels)
	return t, nil
}

// NewTexture2DArray uploads equally sized images as layers.
func NewTexture2DArray(ctx *Context, label string, layers []*CPUTexture) (*Texture2DArray, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("texture array %q: %w: no layers", label, ErrTextureData)
	}
	first := layers[0]
	t, err := NewEmptyTexture2DArray(ctx, label, first.Width, first.Height, uint32(len(layers)), first.Format, first.DataType(), first.Sampling)
	if err != nil {
		return nil, err
	}
	for i, layer := range layers {
		if layer.Width != first.Width || layer.Height != first.Height || layer.Format != first.Format {
			t.Release()
			return nil, fmt.Errorf("texture array %q: layer %d: %w", label, i, ErrTextureData)
		}
		if err := t.Fill(uint32(i), layer.data()); err != nil {
			t.Release()
			return nil, err
		}
	}
	return t, nil
}

// Fill replaces the texels of one layer and regenerates the mip chain.
func (t *Texture2DArray) Fill(layer uint32, data any) error {
	if layer >= t.depth {
		return fmt.Errorf("texture array %q: layer %d of %d: %w", t.label, layer, t.depth, ErrTextureData)
	}
	if err := checkTexels(data, t.width, t.height, 1, t.format); err != nil {
		return fmt.Errorf("texture array %q: %w", t.label, err)
	}
	t.bind()
	t.ctx.api.TexSubImage3D(gpu.Texture2DArray, 0, 0, 0, int32(layer), int32(t.width), int32(t.height), 1, t.format.gl(), dataTypeOf(data).gl(), data)
	t.generateMipmaps()
	return nil
}

func (t *Texture2DArray) Width() uint32  { return t.width }
func (t *Texture2DArray) Height() uint32 { return t.height }
func (t *Texture2DArray) Depth() uint32  { return t.depth }

// AsColorTarget selects layers of mip level mip as color attachments 0..n-1.
func (t *Texture2DArray) AsColorTarget(layers []uint32, mip uint32) *ColorTarget {
	return &ColorTarget{
		textureID: t.ID(),
		target:    gpu.Texture2DArray,
		layers:    append([]uint32(nil), layers...),
		mip:       mip,
		width:     max(t.width>>mip, 1),
		height:    max(t.height>>mip, 1),
		owner:     &t.textureBase,
	}
}

// Layer selects one layer for sampling in a screen effect.
func (t *Texture2DArray) Layer(layer uint32) ColorTexture {
	return arrayLayer{array: t, layer: layer}
}

type arrayLayer struct {
	array *Texture2DArray
	layer uint32
}

func (a arrayLayer) samplerSource() string {
	return "uniform sampler2DArray colorMap;\nuniform int colorLayer;\n" +
		"vec4 sample_color(vec2 uv) { return texture(colorMap, vec3(uv, float(colorLayer))); }\n"
}

func (a arrayLayer) useSampler(program *Program) {
	program.UseTexture("colorMap", a.array)
	program.UseUniform("colorLayer", int32(a.layer))
}

func (a arrayLayer) size() (uint32, uint32) { return a.array.width, a.array.height }
