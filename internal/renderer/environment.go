package renderer

import (
	"Prism3D/internal/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	irradianceSize = 32
	prefilterSize  = 128
	prefilterMips  = 5
	brdfSize       = 512
)

// Environment holds the precomputed lighting of an environment cube map used
// by image based ambient light.
type Environment struct {
	// Irradiance is the cosine weighted convolution, for diffuse light.
	Irradiance *TextureCubeMap
	// Prefilter holds specular reflections, one roughness per mip level.
	Prefilter *TextureCubeMap
	// BRDF is the split sum lookup table indexed by n.v and roughness.
	BRDF *Texture2D
}

// NewEnvironment convolves environment into the maps of an Environment.
// The result does not reference environment.
func NewEnvironment(ctx *Context, environment *TextureCubeMap) (*Environment, error) {
	start := time.Now()
	var unwind Unwind
	defer unwind.Unwind()

	irradiance, err := NewEmptyTextureCubeMap(ctx, "irradiance", irradianceSize, irradianceSize, FormatRGBA, TypeF16, TargetSampling())
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	unwind.Add(irradiance.Release)
	if err := renderCubeSides(ctx, irradiance, 0, irradianceSource, func(p *Program) {
		p.UseTexture("environmentMap", environment)
	}); err != nil {
		return nil, fmt.Errorf("environment irradiance: %w", err)
	}

	sampling := TargetSampling()
	sampling.Mipmap = &Mipmap{Filter: Linear, MaxLevels: prefilterMips}
	prefilter, err := NewEmptyTextureCubeMap(ctx, "prefilter", prefilterSize, prefilterSize, FormatRGBA, TypeF16, sampling)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	unwind.Add(prefilter.Release)
	levels := prefilter.MipLevels()
	for mip := uint32(0); mip < levels; mip++ {
		roughness := float32(0)
		if levels > 1 {
			roughness = float32(mip) / float32(levels-1)
		}
		if err := renderCubeSides(ctx, prefilter, mip, iblSharedSource+prefilterSource, func(p *Program) {
			p.UseTexture("environmentMap", environment)
			p.UseUniform("roughness", roughness)
			p.UseUniform("resolution", float32(environment.Width()))
		}); err != nil {
			return nil, fmt.Errorf("environment prefilter mip %d: %w", mip, err)
		}
	}

	brdf, err := NewEmptyTexture2D(ctx, "brdf", brdfSize, brdfSize, FormatRG, TypeF16, TargetSampling())
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	unwind.Add(brdf.Release)
	target, err := NewRenderTarget(ctx, brdf.AsColorTarget(0), nil)
	if err != nil {
		return nil, fmt.Errorf("environment brdf: %w", err)
	}
	err = target.Write(ClearNone(), func() error {
		return ApplyScreenEffect(ctx, iblSharedSource+brdfSource, effectStates(), target.Viewport(), nil)
	})
	target.Release()
	if err != nil {
		return nil, fmt.Errorf("environment brdf: %w", err)
	}

	unwind.Discard()
	logger.Log.Info("Environment generated",
		zap.String("source", environment.Label()),
		zap.Uint32("prefilterLevels", levels),
		zap.Duration("elapsed", time.Since(start)))
	return &Environment{Irradiance: irradiance, Prefilter: prefilter, BRDF: brdf}, nil
}

// renderCubeSides runs an effect over every face of mip level mip of cube.
// The effect reads the face through the side uniform.
func renderCubeSides(ctx *Context, cube *TextureCubeMap, mip uint32, fragment string, use func(*Program)) error {
	for _, side := range CubeMapSides {
		target, err := NewRenderTarget(ctx, cube.AsColorTarget([]CubeMapSide{side}, mip), nil)
		if err != nil {
			return err
		}
		err = target.Write(ClearNone(), func() error {
			return ApplyScreenEffect(ctx, fragment, effectStates(), target.Viewport(), func(p *Program) {
				use(p)
				p.UseUniform("side", int32(side))
			})
		})
		target.Release()
		if err != nil {
			return err
		}
	}
	return nil
}

// Release frees the three maps.
func (e *Environment) Release() {
	e.Irradiance.Release()
	e.Prefilter.Release()
	e.BRDF.Release()
}
