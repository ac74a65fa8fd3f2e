package renderer

import (
	"Prism3D/internal/gpu"
	"errors"
	"fmt"
	"math/bits"
)

var ErrTextureData = errors.New("texture: data does not match size and format")

// Format is the channel layout of texture data.
type Format int

const (
	FormatR Format = iota
	FormatRG
	FormatRGB
	FormatRGBA
)

// Channels returns the number of components per texel.
func (f Format) Channels() int { return int(f) + 1 }

func (f Format) gl() gpu.Enum {
	return [...]gpu.Enum{gpu.Red, gpu.RG, gpu.RGB, gpu.RGBA}[f]
}

// DataType is the storage precision of a texture.
type DataType int

const (
	TypeU8 DataType = iota
	TypeF16
	TypeF32
)

func internalFormat(f Format, t DataType) gpu.Enum {
	table := [3][4]gpu.Enum{
		{gpu.R8, gpu.RG8, gpu.RGB8, gpu.RGBA8},
		{gpu.R16F, gpu.RG16F, gpu.RGB16F, gpu.RGBA16F},
		{gpu.R32F, gpu.RG32F, gpu.RGB32F, gpu.RGBA32F},
	}
	return table[t][f]
}

func (t DataType) gl() gpu.Enum {
	if t == TypeU8 {
		return gpu.UnsignedByte
	}
	return gpu.Float
}

type Interpolation int

const (
	Nearest Interpolation = iota
	Linear
)

type Wrapping int

const (
	Repeat Wrapping = iota
	MirroredRepeat
	ClampToEdge
)

func (w Wrapping) gl() int32 {
	switch w {
	case MirroredRepeat:
		return int32(gpu.MirroredRepeat)
	case ClampToEdge:
		return int32(gpu.ClampToEdge)
	}
	return int32(gpu.Repeat)
}

// Mipmap requests a mip chain. MaxLevels of 0 means the full chain.
type Mipmap struct {
	Filter    Interpolation
	MaxLevels uint32
}

// Sampling groups the filter and wrap parameters of a texture.
type Sampling struct {
	MinFilter Interpolation
	MagFilter Interpolation
	Mipmap    *Mipmap
	WrapS     Wrapping
	WrapT     Wrapping
	WrapR     Wrapping
}

// DefaultSampling is linear filtering with a full mip chain and repeat wrapping.
func DefaultSampling() Sampling {
	return Sampling{MinFilter: Linear, MagFilter: Linear, Mipmap: &Mipmap{Filter: Linear}}
}

// TargetSampling suits render target attachments: linear, clamped, no mips.
func TargetSampling() Sampling {
	return Sampling{MinFilter: Linear, MagFilter: Linear, WrapS: ClampToEdge, WrapT: ClampToEdge, WrapR: ClampToEdge}
}

func minFilter(s Sampling) int32 {
	if s.Mipmap == nil {
		if s.MinFilter == Nearest {
			return int32(gpu.Nearest)
		}
		return int32(gpu.Linear)
	}
	switch {
	case s.MinFilter == Nearest && s.Mipmap.Filter == Nearest:
		return int32(gpu.NearestMipmapNearest)
	case s.MinFilter == Nearest:
		return int32(gpu.NearestMipmapLinear)
	case s.Mipmap.Filter == Nearest:
		return int32(gpu.LinearMipmapNearest)
	}
	return int32(gpu.LinearMipmapLinear)
}

func magFilter(s Sampling) int32 {
	if s.MagFilter == Nearest {
		return int32(gpu.Nearest)
	}
	return int32(gpu.Linear)
}

// mipLevels returns floor(log2(max(width, height, depth))) + 1, capped by the
// requested maximum. Without a mip request the count is 1.
func mipLevels(s Sampling, width, height, depth uint32) uint32 {
	if s.Mipmap == nil {
		return 1
	}
	largest := max(width, height, depth, 1)
	levels := uint32(bits.Len32(largest))
	if s.Mipmap.MaxLevels > 0 && s.Mipmap.MaxLevels < levels {
		levels = s.Mipmap.MaxLevels
	}
	return levels
}

func applySampling(api gpu.Context, target gpu.Enum, s Sampling, levels uint32) {
	api.TexParameteri(target, gpu.TextureMinFilter, minFilter(s))
	api.TexParameteri(target, gpu.TextureMagFilter, magFilter(s))
	api.TexParameteri(target, gpu.TextureWrapS, s.WrapS.gl())
	api.TexParameteri(target, gpu.TextureWrapT, s.WrapT.gl())
	if target == gpu.Texture3D || target == gpu.TextureCubeMap {
		api.TexParameteri(target, gpu.TextureWrapR, s.WrapR.gl())
	}
	api.TexParameteri(target, gpu.TextureBaseLevel, 0)
	api.TexParameteri(target, gpu.TextureMaxLevel, int32(levels)-1)
}

// CPUTexture is decoded 2D image data ready for upload. Exactly one of U8 and
// F32 holds the texels, row by row from the bottom.
type CPUTexture struct {
	Name     string
	Width    uint32
	Height   uint32
	Format   Format
	U8       []uint8
	F32      []float32
	Sampling Sampling
}

// DataType returns the precision the texture is uploaded with.
func (t *CPUTexture) DataType() DataType {
	if t.F32 != nil {
		return TypeF32
	}
	return TypeU8
}

func (t *CPUTexture) data() any {
	if t.F32 != nil {
		return t.F32
	}
	return t.U8
}

// HasTransparency reports whether an RGBA texture has a texel with alpha
// below one.
func (t *CPUTexture) HasTransparency() bool {
	if t.Format != FormatRGBA {
		return false
	}
	for i := 3; i < len(t.U8); i += 4 {
		if t.U8[i] < 255 {
			return true
		}
	}
	for i := 3; i < len(t.F32); i += 4 {
		if t.F32[i] < 1 {
			return true
		}
	}
	return false
}

// Validate checks that the texel data matches the declared size and format.
func (t *CPUTexture) Validate() error {
	return checkTexels(t.data(), t.Width, t.Height, 1, t.Format)
}

func checkTexels(data any, width, height, depth uint32, format Format) error {
	want := int(width) * int(height) * int(depth) * format.Channels()
	var got int
	switch d := data.(type) {
	case []uint8:
		got = len(d)
	case []float32:
		got = len(d)
	case nil:
		return fmt.Errorf("%w: no data", ErrTextureData)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrTextureData, data)
	}
	if got != want {
		return fmt.Errorf("%w: %d values, want %d for %dx%dx%d", ErrTextureData, got, want, width, height, depth)
	}
	return nil
}

func dataTypeOf(data any) DataType {
	if _, ok := data.([]float32); ok {
		return TypeF32
	}
	return TypeU8
}
