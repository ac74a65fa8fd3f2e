package renderer

import "Prism3D/internal/gpu"

// WriteMask selects which channels a draw writes.
type WriteMask struct {
	Red, Green, Blue, Alpha, Depth bool
}

var (
	WriteMaskColorDepth = WriteMask{Red: true, Green: true, Blue: true, Alpha: true, Depth: true}
	WriteMaskColor      = WriteMask{Red: true, Green: true, Blue: true, Alpha: true}
	WriteMaskDepth      = WriteMask{Depth: true}
	WriteMaskNone       = WriteMask{}
)

// DepthTest is the comparison a fragment must pass against the depth buffer.
type DepthTest int

const (
	DepthLess DepthTest = iota
	DepthLessOrEqual
	DepthEqual
	DepthNotEqual
	DepthGreater
	DepthGreaterOrEqual
	DepthNever
	DepthAlways
)

func (t DepthTest) gl() gpu.Enum {
	switch t {
	case DepthLessOrEqual:
		return gpu.Lequal
	case DepthEqual:
		return gpu.Equal
	case DepthNotEqual:
		return gpu.Notequal
	case DepthGreater:
		return gpu.Greater
	case DepthGreaterOrEqual:
		return gpu.Gequal
	case DepthNever:
		return gpu.Never
	case DepthAlways:
		return gpu.Always
	}
	return gpu.Less
}

type BlendMultiplier int

const (
	BlendZero BlendMultiplier = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

func (m BlendMultiplier) gl() gpu.Enum {
	return [...]gpu.Enum{
		gpu.Zero, gpu.One,
		gpu.SrcColor, gpu.OneMinusSrcColor,
		gpu.SrcAlpha, gpu.OneMinusSrcAlpha,
		gpu.DstColor, gpu.OneMinusDstColor,
		gpu.DstAlpha, gpu.OneMinusDstAlpha,
	}[m]
}

type BlendEquation int

const (
	BlendAdd BlendEquation = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

func (e BlendEquation) gl() gpu.Enum {
	return [...]gpu.Enum{gpu.FuncAdd, gpu.FuncSubtract, gpu.FuncReverseSubtract, gpu.FuncMin, gpu.FuncMax}[e]
}

// Blend describes how fragment colors combine with the target.
type Blend struct {
	Enabled          bool
	SourceRGB        BlendMultiplier
	SourceAlpha      BlendMultiplier
	DestinationRGB   BlendMultiplier
	DestinationAlpha BlendMultiplier
	RGBEquation      BlendEquation
	AlphaEquation    BlendEquation
}

var (
	BlendDisabled = Blend{}
	// BlendTransparency is standard alpha blending over the target.
	BlendTransparency = Blend{
		Enabled:          true,
		SourceRGB:        BlendSrcAlpha,
		SourceAlpha:      BlendZero,
		DestinationRGB:   BlendOneMinusSrcAlpha,
		DestinationAlpha: BlendOne,
	}
	// BlendAdditive adds the fragment color to the target.
	BlendAdditive = Blend{
		Enabled:          true,
		SourceRGB:        BlendOne,
		SourceAlpha:      BlendOne,
		DestinationRGB:   BlendOne,
		DestinationAlpha: BlendOne,
	}
)

// Cull selects which triangle faces are discarded.
type Cull int

const (
	CullNone Cull = iota
	CullBack
	CullFront
	CullFrontAndBack
)

func (c Cull) gl() gpu.Enum {
	switch c {
	case CullFront:
		return gpu.Front
	case CullFrontAndBack:
		return gpu.FrontAndBack
	}
	return gpu.Back
}

// RenderStates is the fixed function state a draw call runs under.
type RenderStates struct {
	WriteMask WriteMask
	DepthTest DepthTest
	Blend     Blend
	Cull      Cull
}

// DefaultRenderStates writes color and depth, tests less and blends nothing.
func DefaultRenderStates() RenderStates {
	return RenderStates{WriteMask: WriteMaskColorDepth, DepthTest: DepthLess}
}

// depthOnlyStates are forced by every depth pass.
func depthOnlyStates(cull Cull) RenderStates {
	return RenderStates{WriteMask: WriteMaskDepth, DepthTest: DepthLessOrEqual, Cull: cull}
}

// effectStates disable depth testing for full screen passes.
func effectStates() RenderStates {
	return RenderStates{WriteMask: WriteMaskColor, DepthTest: DepthAlways}
}
