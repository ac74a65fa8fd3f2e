package renderer

import (
	"Prism3D/internal/logger"
	"cmp"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// ForwardPipeline shades every object completely in one draw call per
// object, into whatever target is bound.
type ForwardPipeline struct {
	passGuard
	ctx *Context
	// FrustumCulling skips objects whose box is outside the camera frustum.
	FrustumCulling bool
}

func NewForwardPipeline(ctx *Context) *ForwardPipeline {
	return &ForwardPipeline{ctx: ctx, FrustumCulling: true}
}

func (p *ForwardPipeline) visible(camera *Camera, box AABB) bool {
	if p.FrustumCulling && !camera.InFrustum(box) {
		p.stats.Culled++
		return false
	}
	return true
}

// LightPass renders objects lit by lights. Opaque objects are drawn first,
// then transparent ones from back to front.
func (p *ForwardPipeline) LightPass(camera *Camera, objects []Object, lights []Light) error {
	if err := p.begin(StateLightPass); err != nil {
		return err
	}
	defer p.end()

	var opaque, transparent []Object
	for _, o := range objects {
		if !p.visible(camera, o.AABB()) {
			continue
		}
		if o.MaterialType() == Transparent {
			transparent = append(transparent, o)
		} else {
			opaque = append(opaque, o)
		}
	}
	eye := camera.Position()
	slices.SortStableFunc(transparent, func(a, b Object) int {
		return cmp.Compare(b.AABB().Distance(eye), a.AABB().Distance(eye))
	})

	for _, o := range append(opaque, transparent...) {
		if err := o.Render(camera, lights); err != nil {
			return fmt.Errorf("forward light pass: %w", err)
		}
		p.stats.Drawn++
	}
	logger.Log.Debug("Forward light pass",
		zap.Int("drawn", p.stats.Drawn),
		zap.Int("culled", p.stats.Culled),
		zap.Int("lights", len(lights)))
	return nil
}

// DepthPass writes only the depth of geometries into the bound target.
func (p *ForwardPipeline) DepthPass(camera *Camera, geometries []Geometry) error {
	if err := p.begin(StateDepthPass); err != nil {
		return err
	}
	defer p.end()
	return p.depthPass(camera, geometries)
}

func (p *ForwardPipeline) depthPass(camera *Camera, geometries []Geometry) error {
	material := NewDepthMaterial()
	states := depthOnlyStates(CullNone)
	for _, g := range geometries {
		if !p.visible(camera, g.AABB()) {
			continue
		}
		if err := renderWithStates(material, g, camera, nil, states); err != nil {
			return fmt.Errorf("forward depth pass: %w", err)
		}
		p.stats.Drawn++
	}
	return nil
}

// DepthPassTexture renders the depth of geometries into a new texture of the
// camera viewport size. The caller owns the texture.
func (p *ForwardPipeline) DepthPassTexture(camera *Camera, geometries []Geometry) (*DepthTexture2D, error) {
	if err := p.begin(StateDepthPass); err != nil {
		return nil, err
	}
	defer p.end()

	viewport := camera.Viewport()
	texture, err := NewDepthTexture2D(p.ctx, "", viewport.Width, viewport.Height, Depth32F)
	if err != nil {
		return nil, fmt.Errorf("forward depth pass: %w", err)
	}
	target, err := NewRenderTarget(p.ctx, nil, texture.AsDepthTarget())
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("forward depth pass: %w", err)
	}
	defer target.Release()

	err = target.Write(ClearDepthOnly(1), func() error {
		return atOrigo(camera, func() error { return p.depthPass(camera, geometries) })
	})
	if err != nil {
		texture.Release()
		return nil, err
	}
	return texture, nil
}
