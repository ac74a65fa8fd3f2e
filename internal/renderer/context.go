package renderer

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/logger"
	"fmt"

	"go.uber.org/zap"
)

// Viewport is a rectangle of the bound render target in pixels, origin at the
// bottom left corner.
type Viewport struct {
	X, Y          int32
	Width, Height uint32
}

// NewViewportAtOrigo returns a viewport covering width x height from (0,0).
func NewViewportAtOrigo(width, height uint32) Viewport {
	return Viewport{Width: width, Height: height}
}

// Aspect returns width / height.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Intersection returns the overlap of two viewports.
func (v Viewport) Intersection(other Viewport) Viewport {
	x0 := max(v.X, other.X)
	y0 := max(v.Y, other.Y)
	x1 := min(v.X+int32(v.Width), other.X+int32(other.Width))
	y1 := min(v.Y+int32(v.Height), other.Y+int32(other.Height))
	if x1 <= x0 || y1 <= y0 {
		return Viewport{X: x0, Y: y0}
	}
	return Viewport{X: x0, Y: y0, Width: uint32(x1 - x0), Height: uint32(y1 - y0)}
}

// Context is the single owner of graphics state for one native context.
//
// Every GPU call of the renderer goes through a Context. The bound framebuffer,
// program and fixed function state are process wide slots, so a Context must
// only be used from the thread that owns the native context.
type Context struct {
	api      gpu.Context
	programs *ProgramCache

	vertexArray *gpu.Handle
	framebuffer uint32
	program     uint32
	viewport    Viewport
	states      RenderStates
	statesValid bool
}

// NewContext wraps a graphics binding.
func NewContext(api gpu.Context) (*Context, error) {
	ctx := &Context{api: api}
	id, err := api.CreateVertexArray()
	if err != nil {
		return nil, fmt.Errorf("creating vertex array: %w", err)
	}
	ctx.vertexArray = gpu.NewHandle(api, gpu.KindVertexArray, id)
	api.BindVertexArray(id)
	ctx.programs = newProgramCache(ctx)

	logger.Log.Info("Render context created")
	return ctx, nil
}

// API returns the underlying graphics binding.
func (c *Context) API() gpu.Context { return c.api }

// Programs returns the shared program cache.
func (c *Context) Programs() *ProgramCache { return c.programs }

// Finish blocks until the GPU has executed every issued command.
func (c *Context) Finish() { c.api.Finish() }

// Close releases the program cache and context owned objects.
func (c *Context) Close() {
	c.programs.Teardown()
	c.vertexArray.Release()
	logger.Log.Info("Render context closed")
}

// BoundFramebuffer returns the framebuffer currently bound for drawing.
func (c *Context) BoundFramebuffer() uint32 { return c.framebuffer }

// CurrentViewport returns the viewport of the last draw or bind.
func (c *Context) CurrentViewport() Viewport { return c.viewport }

func (c *Context) bindFramebuffer(id uint32) {
	c.framebuffer = id
	c.api.BindFramebuffer(gpu.Framebuffer, id)
}

// SetViewport sets the area of the bound target that draws touch.
func (c *Context) SetViewport(v Viewport) {
	c.viewport = v
	c.api.Viewport(v.X, v.Y, int32(v.Width), int32(v.Height))
}

func (c *Context) useProgram(id uint32) {
	if c.program != id {
		c.program = id
		c.api.UseProgram(id)
	}
}

// SetRenderStates applies the states that differ from the last applied set.
func (c *Context) SetRenderStates(s RenderStates) {
	if !c.statesValid || c.states.WriteMask != s.WriteMask {
		c.setWriteMask(s.WriteMask)
	}
	if !c.statesValid || c.states.DepthTest != s.DepthTest || c.states.WriteMask.Depth != s.WriteMask.Depth {
		c.setDepthTest(s.DepthTest, s.WriteMask.Depth)
	}
	if !c.statesValid || c.states.Blend != s.Blend {
		c.setBlend(s.Blend)
	}
	if !c.statesValid || c.states.Cull != s.Cull {
		c.setCull(s.Cull)
	}
	c.states = s
	c.statesValid = true
}

func (c *Context) setWriteMask(m WriteMask) {
	c.api.ColorMask(m.Red, m.Green, m.Blue, m.Alpha)
	c.api.DepthMask(m.Depth)
}

func (c *Context) setDepthTest(t DepthTest, depthWrite bool) {
	// GL skips depth writes when the test is disabled, so only disable it
	// when nothing is written either.
	if t == DepthAlways && !depthWrite {
		c.api.Disable(gpu.DepthTestCap)
		return
	}
	c.api.Enable(gpu.DepthTestCap)
	c.api.DepthFunc(t.gl())
}

func (c *Context) setBlend(b Blend) {
	if !b.Enabled {
		c.api.Disable(gpu.BlendCap)
		return
	}
	c.api.Enable(gpu.BlendCap)
	c.api.BlendFuncSeparate(b.SourceRGB.gl(), b.DestinationRGB.gl(), b.SourceAlpha.gl(), b.DestinationAlpha.gl())
	c.api.BlendEquationSeparate(b.RGBEquation.gl(), b.AlphaEquation.gl())
}

func (c *Context) setCull(cull Cull) {
	if cull == CullNone {
		c.api.Disable(gpu.CullFaceCap)
		return
	}
	c.api.Enable(gpu.CullFaceCap)
	c.api.CullFace(cull.gl())
}

// logGLError reports a pending driver error, if any, after op.
func (c *Context) logGLError(op string) {
	if e := c.api.GetError(); e != gpu.NoError {
		logger.Log.Warn("Graphics API error",
			zap.String("operation", op),
			zap.Uint32("code", uint32(e)))
	}
}
