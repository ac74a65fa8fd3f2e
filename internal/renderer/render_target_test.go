package renderer

import (
	"Prism3D/internal/gpu"
	"errors"
	"testing"
)

func newColorTexture(t *testing.T, ctx *Context, width, height uint32) *Texture2D {
	t.Helper()
	tex, err := NewEmptyTexture2D(ctx, "", width, height, FormatRGBA, TypeF32, TargetSampling())
	if err != nil {
		t.Fatalf("NewEmptyTexture2D failed: %v", err)
	}
	t.Cleanup(tex.Release)
	return tex
}

func newDepthTexture(t *testing.T, ctx *Context, width, height uint32) *DepthTexture2D {
	t.Helper()
	tex, err := NewDepthTexture2D(ctx, "", width, height, Depth32F)
	if err != nil {
		t.Fatalf("NewDepthTexture2D failed: %v", err)
	}
	t.Cleanup(tex.Release)
	return tex
}

func TestRenderTargetClearAndRead(t *testing.T) {
	ctx, _ := newTestContext(t)
	color := newColorTexture(t, ctx, 4, 4)
	depth := newDepthTexture(t, ctx, 4, 4)

	target, err := NewRenderTarget(ctx, color.AsColorTarget(0), depth.AsDepthTarget())
	if err != nil {
		t.Fatalf("NewRenderTarget failed: %v", err)
	}
	defer target.Release()

	if err := target.Clear(ClearColorDepth(0.25, 0.5, 0.75, 1, 0.5)); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	pixels, err := target.ReadColor()
	if err != nil {
		t.Fatalf("ReadColor failed: %v", err)
	}
	if len(pixels) != 4*4*4 {
		t.Fatalf("Expected %d values, got %d", 4*4*4, len(pixels))
	}
	want := [4]float32{0.25, 0.5, 0.75, 1}
	for i := 0; i < len(pixels); i += 4 {
		for c := 0; c < 4; c++ {
			if pixels[i+c] != want[c] {
				t.Fatalf("Pixel %d channel %d = %v, want %v", i/4, c, pixels[i+c], want[c])
			}
		}
	}

	depths, err := target.ReadDepth()
	if err != nil {
		t.Fatalf("ReadDepth failed: %v", err)
	}
	for i, d := range depths {
		if d != 0.5 {
			t.Fatalf("Depth %d = %v, want 0.5", i, d)
		}
	}
}

func TestRenderTargetClearColorOnlyKeepsDepth(t *testing.T) {
	ctx, _ := newTestContext(t)
	color := newColorTexture(t, ctx, 2, 2)
	depth := newDepthTexture(t, ctx, 2, 2)
	target, err := NewRenderTarget(ctx, color.AsColorTarget(0), depth.AsDepthTarget())
	if err != nil {
		t.Fatalf("NewRenderTarget failed: %v", err)
	}
	defer target.Release()

	if err := target.Clear(ClearColorDepth(0, 0, 0, 0, 0.25)); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := target.Clear(ClearColorOnly(1, 0, 0, 1)); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	depths, _ := target.ReadDepth()
	if depths[0] != 0.25 {
		t.Errorf("Color only clear changed depth to %v", depths[0])
	}
	pixels, _ := target.ReadColor()
	if pixels[0] != 1 || pixels[1] != 0 {
		t.Errorf("Color clear not applied, got %v", pixels[:4])
	}
}

func TestRenderTargetDimensionMismatch(t *testing.T) {
	ctx, fake := newTestContext(t)
	color := newColorTexture(t, ctx, 4, 4)
	depth := newDepthTexture(t, ctx, 8, 8)

	before := fake.LiveCount(gpu.KindFramebuffer)
	_, err := NewRenderTarget(ctx, color.AsColorTarget(0), depth.AsDepthTarget())
	if !errors.Is(err, gpu.ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
	if fake.LiveCount(gpu.KindFramebuffer) != before {
		t.Error("A failed target should not leave a framebuffer behind")
	}
}

func TestRenderTargetNoAttachments(t *testing.T) {
	ctx, _ := newTestContext(t)
	if _, err := NewRenderTarget(ctx, nil, nil); !errors.Is(err, gpu.ErrNoAttachments) {
		t.Errorf("Expected ErrNoAttachments, got %v", err)
	}

	array, err := NewEmptyTexture2DArray(ctx, "", 2, 2, 2, FormatRGBA, TypeF16, TargetSampling())
	if err != nil {
		t.Fatalf("NewEmptyTexture2DArray failed: %v", err)
	}
	defer array.Release()
	if _, err := NewRenderTarget(ctx, array.AsColorTarget(nil, 0), nil); !errors.Is(err, gpu.ErrNoAttachments) {
		t.Errorf("Expected ErrNoAttachments for an empty layer selection, got %v", err)
	}
}

func TestRenderTargetIncomplete(t *testing.T) {
	ctx, fake := newTestContext(t)
	fake.FramebufferStatus = func(id uint32) gpu.Enum {
		if id != 0 {
			return gpu.FramebufferIncompleteAttachment
		}
		return 0
	}
	color := newColorTexture(t, ctx, 4, 4)

	_, err := NewRenderTarget(ctx, color.AsColorTarget(0), nil)
	var incomplete *gpu.TargetIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Expected TargetIncompleteError, got %v", err)
	}
	if !errors.Is(err, gpu.ErrTargetIncomplete) {
		t.Error("TargetIncompleteError should match ErrTargetIncomplete")
	}
	if incomplete.Status != gpu.FramebufferIncompleteAttachment {
		t.Errorf("Status = %#x, want %#x", incomplete.Status, gpu.FramebufferIncompleteAttachment)
	}
	if fake.LiveCount(gpu.KindFramebuffer) != 0 {
		t.Error("Incomplete framebuffer should be deleted")
	}
	if ctx.BoundFramebuffer() != 0 {
		t.Errorf("Expected the screen bound after failure, got %d", ctx.BoundFramebuffer())
	}
}

func TestRenderTargetWriteRestoresBinding(t *testing.T) {
	ctx, fake := newTestContext(t)
	screen := Viewport{X: 3, Y: 4, Width: 20, Height: 10}
	ctx.SetViewport(screen)

	color := newColorTexture(t, ctx, 4, 4)
	target, err := NewRenderTarget(ctx, color.AsColorTarget(0), nil)
	if err != nil {
		t.Fatalf("NewRenderTarget failed: %v", err)
	}
	defer target.Release()

	failure := errors.New("draw failed")
	err = target.Write(ClearColorOnly(0, 0, 0, 1), func() error {
		if ctx.BoundFramebuffer() != target.id() {
			t.Error("Target should be bound while writing")
		}
		if ctx.CurrentViewport() != target.Viewport() {
			t.Errorf("Viewport while writing = %+v", ctx.CurrentViewport())
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Expected the render error, got %v", err)
	}
	if ctx.BoundFramebuffer() != 0 || fake.BoundFramebuffer() != 0 {
		t.Error("Previous framebuffer was not restored")
	}
	if ctx.CurrentViewport() != screen {
		t.Errorf("Viewport = %+v, want %+v", ctx.CurrentViewport(), screen)
	}
}

func TestRenderTargetArrayLayer(t *testing.T) {
	ctx, fake := newTestContext(t)
	array, err := NewEmptyTexture2DArray(ctx, "", 2, 2, 2, FormatRGBA, TypeF32, TargetSampling())
	if err != nil {
		t.Fatalf("NewEmptyTexture2DArray failed: %v", err)
	}
	defer array.Release()

	target, err := NewRenderTarget(ctx, array.AsColorTarget([]uint32{1}, 0), nil)
	if err != nil {
		t.Fatalf("NewRenderTarget failed: %v", err)
	}
	defer target.Release()
	if err := target.Clear(ClearColorOnly(0, 1, 0, 1)); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	tex := fake.Texture(array.ID())
	if got := tex.Level(0, 1).At(0, 0); got != [4]float32{0, 1, 0, 1} {
		t.Errorf("Layer 1 = %v, want green", got)
	}
	if got := tex.Level(0, 0).At(0, 0); got != [4]float32{} {
		t.Errorf("Layer 0 should be untouched, got %v", got)
	}
}

func TestRenderTargetMipmapsRegenerated(t *testing.T) {
	ctx, fake := newTestContext(t)
	tex, err := NewEmptyTexture2D(ctx, "", 8, 8, FormatRGBA, TypeU8, DefaultSampling())
	if err != nil {
		t.Fatalf("NewEmptyTexture2D failed: %v", err)
	}
	defer tex.Release()
	target, err := NewRenderTarget(ctx, tex.AsColorTarget(0), nil)
	if err != nil {
		t.Fatalf("NewRenderTarget failed: %v", err)
	}
	defer target.Release()

	before := fake.Texture(tex.ID()).MipmapGenerations
	if err := target.Clear(ClearColorOnly(1, 1, 1, 1)); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if fake.Texture(tex.ID()).MipmapGenerations != before+1 {
		t.Error("Writing level 0 should regenerate the mip chain")
	}
}

func TestRenderTargetCopyFrom(t *testing.T) {
	ctx, fake := newTestContext(t)
	color := newColorTexture(t, ctx, 4, 4)
	depth := newDepthTexture(t, ctx, 4, 4)

	screen := Screen(ctx, 64, 64)
	fake.ResetDraws()
	if err := screen.CopyFrom(color, depth, screen.Viewport()); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	if len(fake.Draws) != 1 {
		t.Fatalf("Expected one draw, got %d", len(fake.Draws))
	}
	draw := fake.Draws[0]
	if draw.Framebuffer != 0 || draw.Count != 3 {
		t.Errorf("Unexpected copy draw %+v", draw)
	}
	if draw.DepthFunc != gpu.Always || !draw.DepthMask {
		t.Error("Depth copy should write depth without testing it")
	}

	colorOnly, err := NewRenderTarget(ctx, newColorTexture(t, ctx, 4, 4).AsColorTarget(0), nil)
	if err != nil {
		t.Fatalf("NewRenderTarget failed: %v", err)
	}
	defer colorOnly.Release()
	if err := colorOnly.CopyFrom(nil, depth, colorOnly.Viewport()); !errors.Is(err, ErrNoDepthAttachment) {
		t.Errorf("Expected ErrNoDepthAttachment, got %v", err)
	}
	if _, err := colorOnly.ReadDepth(); !errors.Is(err, ErrNoDepthAttachment) {
		t.Errorf("Expected ErrNoDepthAttachment from ReadDepth, got %v", err)
	}
}
