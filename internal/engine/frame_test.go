package engine

import (
	"Prism3D/internal/gpu/gputest"
	"Prism3D/internal/renderer"
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestWriteScreenshotTopRowFirst(t *testing.T) {
	ctx, err := renderer.NewContext(gputest.New(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()

	// Bottom row blue, top row red, stored from the bottom.
	texels := []uint8{
		0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255, 255,
		255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255,
	}
	texture, err := renderer.NewTexture2D(ctx, &renderer.CPUTexture{
		Name: "rows", Width: 3, Height: 2, Format: renderer.FormatRGBA, U8: texels,
		Sampling: renderer.TargetSampling(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer texture.Release()
	target, err := renderer.NewRenderTarget(ctx, texture.AsColorTarget(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer target.Release()

	var buf bytes.Buffer
	if err := WriteScreenshot(&buf, target); err != nil {
		t.Fatalf("WriteScreenshot failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("Screenshot size %v", b)
	}
	red := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
	blue := color.NRGBAModel.Convert(img.At(0, 1)).(color.NRGBA)
	if red != (color.NRGBA{255, 0, 0, 255}) || blue != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("Rows not flipped: top %v bottom %v", red, blue)
	}
}

func TestSaveScreenshotOfScreen(t *testing.T) {
	ctx, err := renderer.NewContext(gputest.New(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()
	screen := renderer.Screen(ctx, 8, 8)
	if err := screen.Clear(renderer.ClearColorOnly(0, 1, 0, 1)); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "shot.png")
	if err := SaveScreenshot(path, screen); err != nil {
		t.Fatalf("SaveScreenshot failed: %v", err)
	}
	if err := SaveScreenshot(filepath.Join(t.TempDir(), "missing", "shot.png"), screen); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}
