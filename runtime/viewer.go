package main

import (
	"Prism3D/internal/engine"
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type sceneObject struct {
	name        string
	mesh        *renderer.Mesh
	material    *renderer.PhysicalMaterial
	deferred    *renderer.DeferredPhysicalMaterial
	castShadows bool
	hasUVs      bool
}

// viewer holds a loaded scene and draws it with the pipeline the render
// config selects.
type viewer struct {
	ctx      *renderer.Context
	textures *renderer.TextureCache
	config   renderer.RenderConfig
	camera   *renderer.Camera
	forward  *renderer.ForwardPipeline
	deferred *renderer.DeferredPipeline

	objects     []sceneObject
	lights      []renderer.Light
	skybox      *renderer.Skybox
	environment *renderer.Environment

	shadowsDirty bool
}

func newViewer(ctx *renderer.Context, config renderer.RenderConfig, viewport renderer.Viewport, scene *SceneData, dir string) (*viewer, error) {
	c := scene.Camera
	camera, err := renderer.NewPerspectiveCamera(ctx, viewport, vec3(c.Position), vec3(c.Target),
		mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(c.FOV), c.Near, c.Far)
	if err != nil {
		return nil, err
	}
	v := &viewer{
		ctx:          ctx,
		textures:     renderer.NewTextureCache(ctx),
		camera:       camera,
		forward:      renderer.NewForwardPipeline(ctx),
		deferred:     renderer.NewDeferredPipeline(ctx),
		shadowsDirty: true,
	}
	start := time.Now()
	for _, m := range scene.Models {
		if err := v.addModel(m, dir, config.Sampling()); err != nil {
			v.Release()
			return nil, fmt.Errorf("model %q: %w", m.Name, err)
		}
	}
	if scene.Skybox != nil {
		v.skybox, err = scene.Skybox.Build(ctx, dir)
		if err != nil {
			v.Release()
			return nil, err
		}
	}
	for _, l := range scene.Lights {
		if l.Environment && v.environment == nil && v.skybox != nil {
			v.environment, err = renderer.NewEnvironment(ctx, v.skybox.Texture())
			if err != nil {
				v.Release()
				return nil, err
			}
		}
		v.lights = append(v.lights, l.Build(ctx, v.environment))
	}
	if err := v.applyConfig(config); err != nil {
		v.Release()
		return nil, err
	}
	logger.Log.Info("Scene loaded",
		zap.Int("objects", len(v.objects)),
		zap.Int("lights", len(v.lights)),
		zap.Duration("elapsed", time.Since(start)))
	return v, nil
}

func (v *viewer) addModel(m SceneModel, dir string, sampling renderer.Sampling) error {
	parts, err := m.Parts(dir)
	if err != nil {
		return err
	}
	transform := m.Transform()
	for _, p := range parts {
		for _, texture := range []*renderer.CPUTexture{
			p.Material.AlbedoTexture, p.Material.MetallicRoughnessTexture,
			p.Material.OcclusionTexture, p.Material.NormalTexture, p.Material.EmissiveTexture,
		} {
			if texture != nil {
				texture.Sampling = sampling
			}
		}
		mesh, err := renderer.NewMesh(v.ctx, p.Mesh)
		if err != nil {
			return err
		}
		material, err := renderer.NewPhysicalMaterialCached(v.textures, p.Material)
		if err != nil {
			mesh.Release()
			return err
		}
		mesh.SetTransform(transform)
		v.objects = append(v.objects, sceneObject{
			name:        p.Mesh.Name,
			mesh:        mesh,
			material:    material,
			deferred:    renderer.DeferredFromPhysical(material),
			castShadows: m.Casts(),
			hasUVs:      p.Mesh.UVs != nil,
		})
	}
	return nil
}

// applyConfig switches to config. Shadow maps are regenerated at the next
// frame when a shadow setting changed.
func (v *viewer) applyConfig(config renderer.RenderConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	model, err := config.Lighting()
	if err != nil {
		return err
	}
	if err := config.ApplyDeferred(v.deferred); err != nil {
		return err
	}
	config.ApplyForward(v.forward)
	for _, o := range v.objects {
		o.material.LightingModel = model
	}
	if config.EnableShadows != v.config.EnableShadows ||
		config.ShadowResolution != v.config.ShadowResolution ||
		config.ShadowFilter != v.config.ShadowFilter {
		v.shadowsDirty = true
	}
	v.config = config
	return nil
}

func (v *viewer) casters() []renderer.Geometry {
	var geometries []renderer.Geometry
	for _, o := range v.objects {
		if o.castShadows {
			geometries = append(geometries, o.mesh)
		}
	}
	return geometries
}

func (v *viewer) updateShadows() error {
	if !v.shadowsDirty {
		return nil
	}
	v.shadowsDirty = false
	filter, err := v.config.Shadow()
	if err != nil {
		return err
	}
	casters := v.casters()
	for _, l := range v.lights {
		caster, ok := l.(renderer.ShadowCaster)
		if !ok {
			continue
		}
		if !v.config.EnableShadows {
			caster.ClearShadowMap()
			continue
		}
		switch light := caster.(type) {
		case *renderer.DirectionalLight:
			light.ShadowFilter = filter
		case *renderer.SpotLight:
			light.ShadowFilter = filter
		}
		if err := caster.GenerateShadowMap(v.config.ShadowResolution, casters); err != nil {
			return err
		}
	}
	return nil
}

// render draws one frame into screen.
func (v *viewer) render(screen *renderer.RenderTarget) error {
	v.camera.SetViewport(screen.Viewport())
	if err := v.updateShadows(); err != nil {
		return err
	}
	return screen.Write(v.config.ClearState(), func() error {
		if v.config.Pipeline == renderer.PipelineDeferred {
			return v.renderDeferred()
		}
		return v.renderForward()
	})
}

func (v *viewer) renderForward() error {
	objects := make([]renderer.Object, 0, len(v.objects)+1)
	for _, o := range v.objects {
		objects = append(objects, renderer.NewGm(o.mesh, o.forwardMaterial(v.deferred.Debug)))
	}
	if v.skybox != nil {
		objects = append(objects, v.skybox)
	}
	return v.forward.LightPass(v.camera, objects, v.lights)
}

// renderDeferred sends opaque objects through the G-buffer. Transparent
// objects and the skybox are drawn forward on top, against the depth the
// light pass wrote.
func (v *viewer) renderDeferred() error {
	var opaque []renderer.DeferredObject
	var rest []renderer.Object
	for _, o := range v.objects {
		if o.material.IsTransparent {
			rest = append(rest, renderer.NewGm(o.mesh, o.material))
			continue
		}
		opaque = append(opaque, renderer.DeferredObject{Geometry: o.mesh, Material: o.deferred})
	}
	if v.skybox != nil {
		rest = append(rest, v.skybox)
	}
	if err := v.deferred.GeometryPass(v.camera, opaque); err != nil {
		return err
	}
	if err := v.deferred.LightPass(v.camera, v.lights); err != nil {
		return err
	}
	if len(rest) == 0 {
		return nil
	}
	return v.forward.LightPass(v.camera, rest, v.lights)
}

// forwardMaterial shows the debug view the deferred pipeline would show.
// Depth has no forward equivalent and is drawn shaded.
func (o sceneObject) forwardMaterial(debug renderer.DebugType) renderer.Material {
	switch debug {
	case renderer.DebugPosition:
		return renderer.NewPositionMaterial()
	case renderer.DebugNormal:
		return renderer.NewNormalMaterial()
	case renderer.DebugColor:
		return renderer.NewColorMaterial(o.material.Albedo, o.material.AlbedoTexture)
	case renderer.DebugORM:
		return renderer.NewORMMaterial(o.material)
	case renderer.DebugUV:
		if o.hasUVs {
			return renderer.NewUVMaterial()
		}
	}
	return o.material
}

// pick finds the surface under pixel. Only objects whose bounding box the
// pixel ray hits are rendered; a ray missing all of them skips the GPU.
func (v *viewer) pick(pixel mgl32.Vec2) (mgl32.Vec3, bool, error) {
	ray := v.camera.RayAtPixel(pixel)
	var geometries []renderer.Geometry
	for _, o := range v.objects {
		if hit, _, _ := renderer.RayIntersectAABB(ray, o.mesh.AABB()); hit {
			geometries = append(geometries, o.mesh)
		}
	}
	if len(geometries) == 0 {
		return mgl32.Vec3{}, false, nil
	}
	return renderer.Pick(v.ctx, v.camera, pixel, geometries)
}

// handleKeys applies the viewer shortcuts. It reports whether the viewer
// should exit and the screenshot to take, if any.
func (v *viewer) handleKeys(events []engine.Event, screenshot string) (exit bool, shot string) {
	for _, e := range events {
		switch e := e.(type) {
		case engine.KeyPress:
			switch e.Key {
			case glfw.KeyEscape:
				exit = true
			case glfw.KeyF12:
				shot = screenshot
			case glfw.KeyF1:
				next := v.config
				if next.Pipeline == renderer.PipelineDeferred {
					next.Pipeline = renderer.PipelineForward
				} else {
					next.Pipeline = renderer.PipelineDeferred
				}
				v.switchConfig(next)
			case glfw.KeyF2:
				next := v.config
				debug, _ := v.config.Debug()
				next.DebugView = ((debug + 1) % (renderer.DebugUV + 1)).String()
				v.switchConfig(next)
			}
		case engine.MousePress:
			if e.Button != glfw.MouseButtonLeft || e.Modifiers&glfw.ModControl == 0 {
				continue
			}
			position, ok, err := v.pick(e.Position)
			switch {
			case err != nil:
				logger.Log.Warn("Pick failed", zap.Error(err))
			case ok:
				logger.Log.Info("Picked", zap.Float32s("position", position[:]))
			default:
				logger.Log.Info("Nothing picked")
			}
		}
	}
	return exit, shot
}

func (v *viewer) switchConfig(next renderer.RenderConfig) {
	if err := v.applyConfig(next); err != nil {
		logger.Log.Warn("Config not applied", zap.Error(err))
		return
	}
	logger.Log.Info("Render config changed",
		zap.String("pipeline", next.Pipeline),
		zap.String("debug", next.DebugView))
}

func (v *viewer) Release() {
	for _, o := range v.objects {
		o.mesh.Release()
		o.material.Release()
	}
	v.objects = nil
	for _, l := range v.lights {
		if caster, ok := l.(renderer.ShadowCaster); ok {
			caster.ClearShadowMap()
		}
	}
	if v.environment != nil {
		v.environment.Release()
	}
	if v.skybox != nil {
		v.skybox.Release()
	}
	v.textures.LogStats()
	v.textures.Clear()
	v.deferred.Release()
}
