package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"Prism3D/internal/renderer"

	"golang.org/x/image/bmp"
)

// checker has a red top row and a blue bottom row.
func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		c := color.NRGBA{0, 0, 255, 255}
		if y < h/2 {
			c = color.NRGBA{255, 0, 0, 255}
		}
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, checker(w, h)); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeImageFlipsRows(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, checker(2, 2)); err != nil {
		t.Fatal(err)
	}
	texture, err := DecodeImage(&buf, "checker.png", 0)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if texture.Width != 2 || texture.Height != 2 || texture.Format != renderer.FormatRGBA {
		t.Fatalf("Unexpected texture %dx%d format %d", texture.Width, texture.Height, texture.Format)
	}
	if err := texture.Validate(); err != nil {
		t.Errorf("Texture invalid: %v", err)
	}
	// First stored row is the bottom of the image.
	if texture.U8[2] != 255 || texture.U8[0] != 0 {
		t.Errorf("Bottom row should be blue, got %v", texture.U8[:4])
	}
	if texture.U8[8] != 255 || texture.U8[10] != 0 {
		t.Errorf("Top row should be red, got %v", texture.U8[8:12])
	}
	if texture.HasTransparency() {
		t.Error("Opaque image reported as transparent")
	}
}

func TestDecodeImageBMPAndDownscale(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, checker(8, 4)); err != nil {
		t.Fatal(err)
	}
	texture, err := DecodeImage(&buf, "wide.bmp", 4)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if texture.Width != 4 || texture.Height != 2 {
		t.Errorf("Expected 4x2 after scaling, got %dx%d", texture.Width, texture.Height)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := DecodeImage(bytes.NewReader([]byte("not an image")), "garbage", 0); err == nil {
		t.Error("Expected an error")
	}
}

func TestScaledSize(t *testing.T) {
	cases := []struct {
		w, h, limit, wantW, wantH int
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 200, 100, 50},
		{100, 50, 10, 10, 5},
		{50, 100, 10, 5, 10},
		{1000, 1, 10, 10, 1},
	}
	for _, c := range cases {
		w, h := scaledSize(c.w, c.h, c.limit)
		if w != c.wantW || h != c.wantH {
			t.Errorf("scaledSize(%d, %d, %d) = %d, %d", c.w, c.h, c.limit, w, h)
		}
	}
}
