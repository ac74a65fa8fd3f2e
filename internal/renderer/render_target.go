package renderer

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/logger"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoColorAttachment = errors.New("render target: no color attachment")
	ErrNoDepthAttachment = errors.New("render target: no depth attachment")
)

// ColorTarget is one mip level of a color texture, with the selected layers or
// cube faces, used as color attachments. It borrows the texture.
type ColorTarget struct {
	textureID     uint32
	target        gpu.Enum
	layers        []uint32
	mip           uint32
	width, height uint32
	owner         *textureBase
}

func (c *ColorTarget) Width() uint32  { return c.width }
func (c *ColorTarget) Height() uint32 { return c.height }

// attachments returns the number of color attachments the target binds.
func (c *ColorTarget) attachments() int {
	if c.target == gpu.Texture2D {
		return 1
	}
	return len(c.layers)
}

func (c *ColorTarget) attach(api gpu.Context) []gpu.Enum {
	points := make([]gpu.Enum, 0, c.attachments())
	switch c.target {
	case gpu.Texture2D:
		api.FramebufferTexture2D(gpu.Framebuffer, gpu.ColorAttachment0, gpu.Texture2D, c.textureID, int32(c.mip))
		points = append(points, gpu.ColorAttachment0)
	case gpu.Texture2DArray, gpu.Texture3D:
		for i, layer := range c.layers {
			point := gpu.ColorAttachment0 + gpu.Enum(i)
			api.FramebufferTextureLayer(gpu.Framebuffer, point, c.textureID, int32(c.mip), int32(layer))
			points = append(points, point)
		}
	case gpu.TextureCubeMap:
		for i, side := range c.layers {
			point := gpu.ColorAttachment0 + gpu.Enum(i)
			api.FramebufferTexture2D(gpu.Framebuffer, point, CubeMapSide(side).gl(), c.textureID, int32(c.mip))
			points = append(points, point)
		}
	}
	return points
}

// DepthTarget is a depth texture, one layer of a depth texture array or a
// depth renderbuffer used as depth attachment. It borrows the storage.
type DepthTarget struct {
	textureID      uint32
	renderbufferID uint32
	target         gpu.Enum
	layer          uint32
	width, height  uint32
}

func (d *DepthTarget) Width() uint32  { return d.width }
func (d *DepthTarget) Height() uint32 { return d.height }

func (d *DepthTarget) attach(api gpu.Context) {
	switch {
	case d.renderbufferID != 0:
		api.FramebufferRenderbuffer(gpu.Framebuffer, gpu.DepthAttachment, gpu.Renderbuffer, d.renderbufferID)
	case d.target == gpu.Texture2DArray:
		api.FramebufferTextureLayer(gpu.Framebuffer, gpu.DepthAttachment, d.textureID, 0, int32(d.layer))
	default:
		api.FramebufferTexture2D(gpu.Framebuffer, gpu.DepthAttachment, gpu.Texture2D, d.textureID, 0)
	}
}

// ColorTexture selects color data to sample in a screen effect.
type ColorTexture interface {
	samplerSource() string
	useSampler(program *Program)
	size() (uint32, uint32)
}

// DepthTexture selects depth data to sample in a screen effect.
type DepthTexture interface {
	depthSamplerSource() string
	useDepthSampler(program *Program)
	size() (uint32, uint32)
}

// ClearState says which attachments a clear touches and with what value. A nil
// field leaves that attachment untouched.
type ClearState struct {
	Color *mgl32.Vec4
	Depth *float32
}

func ClearColorDepth(r, g, b, a, depth float32) ClearState {
	return ClearState{Color: &mgl32.Vec4{r, g, b, a}, Depth: &depth}
}

func ClearColorOnly(r, g, b, a float32) ClearState {
	return ClearState{Color: &mgl32.Vec4{r, g, b, a}}
}

func ClearDepthOnly(depth float32) ClearState {
	return ClearState{Depth: &depth}
}

// ClearNone leaves the contents untouched.
func ClearNone() ClearState { return ClearState{} }

func (c *Context) clear(cs ClearState) {
	if cs.Color == nil && cs.Depth == nil {
		return
	}
	// Clears honour the write mask.
	states := c.states
	if !c.statesValid {
		states = DefaultRenderStates()
	}
	color := cs.Color != nil
	states.WriteMask = WriteMask{Red: color, Green: color, Blue: color, Alpha: color, Depth: cs.Depth != nil}
	c.SetRenderStates(states)

	var mask gpu.Enum
	if cs.Color != nil {
		c.api.ClearColor(cs.Color[0], cs.Color[1], cs.Color[2], cs.Color[3])
		mask |= gpu.ColorBufferBit
	}
	if cs.Depth != nil {
		c.api.ClearDepth(float64(*cs.Depth))
		mask |= gpu.DepthBufferBit
	}
	c.api.Clear(mask)
}

// RenderTarget is a framebuffer binding borrowed color and depth attachments.
// The framebuffer cannot be resized; create a new target when the attachment
// size changes.
type RenderTarget struct {
	ctx           *Context
	handle        *gpu.Handle
	label         string
	color         *ColorTarget
	depth         *DepthTarget
	width, height uint32
}

// NewRenderTarget binds color and depth into a new framebuffer. At least one of
// them must be given, and both must have the same size.
func NewRenderTarget(ctx *Context, color *ColorTarget, depth *DepthTarget) (*RenderTarget, error) {
	if color == nil && depth == nil {
		return nil, gpu.ErrNoAttachments
	}
	if color != nil && color.attachments() == 0 {
		return nil, fmt.Errorf("%w: color target selects no layers", gpu.ErrNoAttachments)
	}
	var width, height uint32
	switch {
	case color != nil && depth != nil:
		if color.width != depth.width || color.height != depth.height {
			return nil, fmt.Errorf("%w: color %dx%d, depth %dx%d",
				gpu.ErrDimensionMismatch, color.width, color.height, depth.width, depth.height)
		}
		width, height = color.width, color.height
	case color != nil:
		width, height = color.width, color.height
	default:
		width, height = depth.width, depth.height
	}

	id, err := ctx.api.CreateFramebuffer()
	if err != nil {
		return nil, fmt.Errorf("render target: %w", err)
	}
	handle := gpu.NewHandle(ctx.api, gpu.KindFramebuffer, id)

	previous := ctx.framebuffer
	defer ctx.bindFramebuffer(previous)
	ctx.bindFramebuffer(id)

	var points []gpu.Enum
	if color != nil {
		points = color.attach(ctx.api)
	}
	if depth != nil {
		depth.attach(ctx.api)
	}
	ctx.api.DrawBuffers(points)
	if len(points) > 0 {
		ctx.api.ReadBuffer(points[0])
	} else {
		ctx.api.ReadBuffer(gpu.None)
	}

	if status := ctx.api.CheckFramebufferStatus(gpu.Framebuffer); status != gpu.FramebufferComplete {
		handle.Release()
		err := &gpu.TargetIncompleteError{Status: status, Diagnostic: gpu.FramebufferStatusString(status)}
		logger.Log.Error("Render target incomplete", zap.Error(err))
		return nil, err
	}

	rt := &RenderTarget{
		ctx:    ctx,
		handle: handle,
		label:  uuid.NewString(),
		color:  color,
		depth:  depth,
		width:  width,
		height: height,
	}
	logger.Log.Debug("Render target created",
		zap.String("label", rt.label),
		zap.Uint32("width", width),
		zap.Uint32("height", height))
	return rt, nil
}

// Screen returns the default framebuffer of a width x height window as a
// render target.
func Screen(ctx *Context, width, height uint32) *RenderTarget {
	return &RenderTarget{ctx: ctx, label: "screen", width: width, height: height}
}

func (r *RenderTarget) id() uint32 { return r.handle.ID() }

func (r *RenderTarget) Width() uint32  { return r.width }
func (r *RenderTarget) Height() uint32 { return r.height }

// Viewport covers the whole target.
func (r *RenderTarget) Viewport() Viewport { return NewViewportAtOrigo(r.width, r.height) }

// Bind makes r the target of subsequent draws. Only one target is bound at a
// time.
func (r *RenderTarget) Bind() {
	r.ctx.bindFramebuffer(r.id())
	r.ctx.SetViewport(r.Viewport())
}

// Clear sets the selected attachments to the values in cs.
func (r *RenderTarget) Clear(cs ClearState) error {
	return r.Write(cs, nil)
}

// Write binds r, applies cs, then calls render once. The previously bound
// target and viewport are restored on return, including when render fails.
// Mip chains of the color attachment are regenerated after a successful
// render into level 0.
func (r *RenderTarget) Write(cs ClearState, render func() error) error {
	previous, viewport := r.ctx.framebuffer, r.ctx.viewport
	defer func() {
		r.ctx.bindFramebuffer(previous)
		r.ctx.SetViewport(viewport)
	}()

	r.Bind()
	r.ctx.clear(cs)
	if render != nil {
		if err := render(); err != nil {
			return err
		}
	}
	if r.color != nil && r.color.owner != nil && r.color.mip == 0 {
		r.color.owner.generateMipmaps()
	}
	return nil
}

func (r *RenderTarget) read(format gpu.Enum, components int) []float32 {
	previous := r.ctx.framebuffer
	defer r.ctx.bindFramebuffer(previous)
	r.ctx.bindFramebuffer(r.id())

	pixels := make([]float32, int(r.width)*int(r.height)*components)
	r.ctx.api.ReadPixels(0, 0, int32(r.width), int32(r.height), format, gpu.Float, pixels)
	return pixels
}

// ReadColor returns the RGBA contents of the first color attachment, row by row
// from the bottom.
func (r *RenderTarget) ReadColor() ([]float32, error) {
	if r.handle != nil && r.color == nil {
		return nil, ErrNoColorAttachment
	}
	return r.read(gpu.RGBA, 4), nil
}

// ReadColorBytes is ReadColor quantized to 8 bits per channel.
func (r *RenderTarget) ReadColorBytes() ([]uint8, error) {
	if r.handle != nil && r.color == nil {
		return nil, ErrNoColorAttachment
	}
	previous := r.ctx.framebuffer
	defer r.ctx.bindFramebuffer(previous)
	r.ctx.bindFramebuffer(r.id())

	pixels := make([]uint8, int(r.width)*int(r.height)*4)
	r.ctx.api.ReadPixels(0, 0, int32(r.width), int32(r.height), gpu.RGBA, gpu.UnsignedByte, pixels)
	return pixels, nil
}

// ReadDepth returns the depth attachment contents, row by row from the bottom.
func (r *RenderTarget) ReadDepth() ([]float32, error) {
	if r.handle != nil && r.depth == nil {
		return nil, ErrNoDepthAttachment
	}
	return r.read(gpu.DepthComponent, 1), nil
}

// CopyFrom draws color and/or depth into viewport of r. Either may be nil.
func (r *RenderTarget) CopyFrom(color ColorTexture, depth DepthTexture, viewport Viewport) error {
	if color == nil && depth == nil {
		return nil
	}
	if color != nil && r.handle != nil && r.color == nil {
		return ErrNoColorAttachment
	}
	if depth != nil && r.handle != nil && r.depth == nil {
		return ErrNoDepthAttachment
	}
	return r.Write(ClearNone(), func() error {
		return applyCopyEffect(r.ctx, color, depth, viewport)
	})
}

// Release deletes the framebuffer. The attachments are not touched.
func (r *RenderTarget) Release() {
	if r.handle != nil {
		r.handle.Release()
	}
}
