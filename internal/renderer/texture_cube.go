package renderer

import (
	"Prism3D/internal/gpu"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// CubeMapSide names one face of a cube map.
type CubeMapSide uint32

const (
	CubeRight CubeMapSide = iota
	CubeLeft
	CubeTop
	CubeBottom
	CubeFront
	CubeBack
)

// CubeMapSides lists the faces in attachment order.
var CubeMapSides = []CubeMapSide{CubeRight, CubeLeft, CubeTop, CubeBottom, CubeFront, CubeBack}

func (s CubeMapSide) gl() gpu.Enum { return gpu.CubeMapSides[s] }

// Direction is the outward axis of the face.
func (s CubeMapSide) Direction() mgl32.Vec3 {
	return [...]mgl32.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}[s]
}

// Up is the up vector the face is rendered with.
func (s CubeMapSide) Up() mgl32.Vec3 {
	return [...]mgl32.Vec3{
		{0, -1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
		{0, -1, 0}, {0, -1, 0},
	}[s]
}

// TextureCubeMap is six square faces sampled by direction.
type TextureCubeMap struct {
	textureBase
	width, height uint32
}

// NewEmptyTextureCubeMap allocates six faces of width x height texels.
func NewEmptyTextureCubeMap(ctx *Context, label string, width, height uint32, format Format, dataType DataType, sampling Sampling) (*TextureCubeMap, error) {
	base, err := newTextureBase(ctx, gpu.TextureCubeMap, label, format, dataType, sampling)
	if err != nil {
		return nil, err
	}
	t := &TextureCubeMap{textureBase: base, width: width, height: height}
	t.levels = mipLevels(sampling, width, height, 1)
	t.bind()
	internal := internalFormat(format, dataType)
	w, h := width, height
	for level := uint32(0); level < t.levels; level++ {
		for _, side := range CubeMapSides {
			ctx.api.TexImage2D(side.gl(), int32(level), internal, int32(w), int32(h), format.gl(), dataType.gl(), nil)
		}
		w, h = max(w/2, 1), max(h/2, 1)
	}
	applySampling(ctx.api, gpu.TextureCubeMap, sampling, t.levels)
	return t, nil
}

// NewTextureCubeMap uploads six equally sized images in CubeMapSides order.
func NewTextureCubeMap(ctx *Context, label string, sides [6]*CPUTexture) (*TextureCubeMap, error) {
	first := sides[0]
	if first == nil {
		return nil, fmt.Errorf("cube map %q: %w: missing side", label, ErrTextureData)
	}
	t, err := NewEmptyTextureCubeMap(ctx, label, first.Width, first.Height, first.Format, first.DataType(), first.Sampling)
	if err != nil {
		return nil, err
	}
	for i, cpu := range sides {
		if cpu == nil || cpu.Width != first.Width || cpu.Height != first.Height || cpu.Format != first.Format {
			t.Release()
			return nil, fmt.Errorf("cube map %q: side %d: %w", label, i, ErrTextureData)
		}
		if err := t.fillSide(CubeMapSide(i), cpu.data()); err != nil {
			t.Release()
			return nil, err
		}
	}
	t.generateMipmaps()
	return t, nil
}

// Fill replaces one face and regenerates the mip chain.
func (t *TextureCubeMap) Fill(side CubeMapSide, data any) error {
	if err := t.fillSide(side, data); err != nil {
		return err
	}
	t.generateMipmaps()
	return nil
}

func (t *TextureCubeMap) fillSide(side CubeMapSide, data any) error {
	if err := checkTexels(data, t.width, t.height, 1, t.format); err != nil {
		return fmt.Errorf("cube map %q: %w", t.label, err)
	}
	t.bind()
	t.ctx.api.TexSubImage2D(side.gl(), 0, 0, 0, int32(t.width), int32(t.height), t.format.gl(), dataTypeOf(data).gl(), data)
	return nil
}

func (t *TextureCubeMap) Width() uint32  { return t.width }
func (t *TextureCubeMap) Height() uint32 { return t.height }

// AsColorTarget selects faces of mip level mip as color attachments 0..n-1.
func (t *TextureCubeMap) AsColorTarget(sides []CubeMapSide, mip uint32) *ColorTarget {
	layers := make([]uint32, len(sides))
	for i, s := range sides {
		layers[i] = uint32(s)
	}
	return &ColorTarget{
		textureID: t.ID(),
		target:    gpu.TextureCubeMap,
		layers:    layers,
		mip:       mip,
		width:     max(t.width>>mip, 1),
		height:    max(t.height>>mip, 1),
		owner:     &t.textureBase,
	}
}
