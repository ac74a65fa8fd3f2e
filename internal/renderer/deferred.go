package renderer

import (
	"Prism3D/internal/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DebugType selects what the deferred light pass displays.
type DebugType int

const (
	DebugNone DebugType = iota
	DebugPosition
	DebugNormal
	DebugColor
	DebugDepth
	DebugORM
	DebugUV
)

var debugNames = [...]string{"none", "position", "normal", "color", "depth", "orm", "uv"}

func (d DebugType) String() string {
	if d < 0 || int(d) >= len(debugNames) {
		return "none"
	}
	return debugNames[d]
}

func (d DebugType) define() string {
	return "#define DEBUG_" + strings.ToUpper(d.String()) + "\n"
}

func ParseDebugType(name string) (DebugType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DebugNone, nil
	}
	for i, n := range debugNames {
		if n == name {
			return DebugType(i), nil
		}
	}
	return DebugNone, fmt.Errorf("unknown debug view %q", name)
}

// DeferredObject is a geometry drawn into the G-buffer with a deferred
// material.
type DeferredObject struct {
	Geometry Geometry
	Material *DeferredPhysicalMaterial
}

// DeferredPipeline renders surfaces into a G-buffer once, then lights every
// pixel in a single full screen pass.
//
// Layer 0 of the G-buffer holds albedo and metallic, layer 1 the octahedral
// normal, roughness and occlusion. Positions are rebuilt from depth.
type DeferredPipeline struct {
	passGuard
	ctx *Context

	// Debug replaces lighting with a view of one G-buffer channel.
	Debug         DebugType
	LightingModel LightingModel
	// FrustumCulling skips objects whose box is outside the camera frustum.
	FrustumCulling bool
	// Precision of the color layers, TypeF16 or TypeF32.
	Precision DataType

	gbuffer *Texture2DArray
	depth   *DepthTexture2DArray
	target  *RenderTarget
}

func NewDeferredPipeline(ctx *Context) *DeferredPipeline {
	return &DeferredPipeline{
		ctx:            ctx,
		LightingModel:  DefaultLightingModel(),
		FrustumCulling: true,
		Precision:      TypeF16,
	}
}

// GBuffer returns the color layers, nil before the first geometry pass.
func (p *DeferredPipeline) GBuffer() *Texture2DArray { return p.gbuffer }

// DepthBuffer returns the G-buffer depth, nil before the first geometry pass.
func (p *DeferredPipeline) DepthBuffer() *DepthTexture2DArray { return p.depth }

// Release frees the G-buffer.
func (p *DeferredPipeline) Release() {
	if p.target != nil {
		p.target.Release()
		p.gbuffer.Release()
		p.depth.Release()
		p.target, p.gbuffer, p.depth = nil, nil, nil
	}
}

// ensureGBuffer allocates the G-buffer at width x height, replacing one of
// another size.
func (p *DeferredPipeline) ensureGBuffer(width, height uint32) error {
	if p.gbuffer != nil && p.gbuffer.Width() == width && p.gbuffer.Height() == height {
		return nil
	}
	reallocated := p.gbuffer != nil
	p.Release()

	var unwind Unwind
	defer unwind.Unwind()
	gbuffer, err := NewEmptyTexture2DArray(p.ctx, "gbuffer", width, height, 2, FormatRGBA, p.Precision, TargetSampling())
	if err != nil {
		return err
	}
	unwind.Add(gbuffer.Release)
	depth, err := NewDepthTexture2DArray(p.ctx, "gbuffer depth", width, height, 1, Depth32F)
	if err != nil {
		return err
	}
	unwind.Add(depth.Release)
	target, err := NewRenderTarget(p.ctx, gbuffer.AsColorTarget([]uint32{0, 1}, 0), depth.AsDepthTarget(0))
	if err != nil {
		return err
	}
	unwind.Discard()
	p.gbuffer, p.depth, p.target = gbuffer, depth, target

	logger.Log.Info("G-buffer allocated",
		zap.Uint32("width", width),
		zap.Uint32("height", height),
		zap.Bool("reallocated", reallocated))
	return nil
}

// GeometryPass writes the surfaces of objects into the G-buffer, sized to the
// camera viewport. Nothing is drawn when any material is transparent.
func (p *DeferredPipeline) GeometryPass(camera *Camera, objects []DeferredObject) error {
	if err := p.begin(StateGeometryPass); err != nil {
		return err
	}
	defer p.end()

	for i, o := range objects {
		if o.Geometry == nil || o.Material == nil {
			return fmt.Errorf("%w: object %d", ErrIncompleteObject, i)
		}
		if o.Material.MaterialType() == Transparent {
			return fmt.Errorf("%w: %q", ErrDeferredTransparency, o.Material.Name)
		}
	}
	viewport := camera.Viewport()
	if err := p.ensureGBuffer(viewport.Width, viewport.Height); err != nil {
		return fmt.Errorf("deferred geometry pass: %w", err)
	}
	err := p.target.Write(ClearColorDepth(0, 0, 0, 0, 1), func() error {
		return atOrigo(camera, func() error {
			for _, o := range objects {
				if p.FrustumCulling && !camera.InFrustum(o.Geometry.AABB()) {
					p.stats.Culled++
					continue
				}
				if err := RenderWithMaterial(o.Material, o.Geometry, camera, nil); err != nil {
					return err
				}
				p.stats.Drawn++
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("deferred geometry pass: %w", err)
	}
	return nil
}

// lightingSource is the fragment source of the light pass, without the
// shared helpers ApplyScreenEffect prepends.
func (p *DeferredPipeline) lightingSource(lights []Light) string {
	if p.Debug != DebugNone {
		return p.Debug.define() + deferredDebugSource
	}
	return LightingShaderSource(p.LightingModel, lights) + deferredLightingSource
}

// LightPass shades the G-buffer with lights into the camera viewport of the
// bound target, writing depth as well so forward passes can follow.
func (p *DeferredPipeline) LightPass(camera *Camera, lights []Light) error {
	if err := p.begin(StateLightPass); err != nil {
		return err
	}
	defer p.end()
	if p.gbuffer == nil {
		return ErrNoGeometryPass
	}

	states := RenderStates{WriteMask: WriteMaskColorDepth, DepthTest: DepthAlways}
	err := ApplyScreenEffect(p.ctx, p.lightingSource(lights), states, camera.Viewport(), func(program *Program) {
		program.UseTexture("gbuffer", p.gbuffer)
		program.UseTexture("depthMap", p.depth)
		program.UseUniform("viewProjectionInverse", camera.ViewProjection().Inv())
		program.UseUniform("cameraPosition", camera.Position())
		if p.Debug == DebugNone {
			UseLights(program, lights)
		}
	})
	if err != nil {
		return fmt.Errorf("deferred light pass: %w", err)
	}
	logger.Log.Debug("Deferred light pass",
		zap.String("debug", p.Debug.String()),
		zap.String("lightingModel", p.LightingModel.String()),
		zap.Int("lights", len(lights)))
	return nil
}
