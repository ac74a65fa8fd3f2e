package engine

import (
	"Prism3D/internal/renderer"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// FrameInput is everything a host needs to draw one frame.
type FrameInput struct {
	Events []Event
	// ElapsedTime is the time since the previous frame in milliseconds.
	ElapsedTime float64
	// AccumulatedTime is the time since the loop started in milliseconds.
	AccumulatedTime  float64
	Viewport         renderer.Viewport
	WindowWidth      uint32
	WindowHeight     uint32
	DevicePixelRatio float32
	FirstFrame       bool
	Context          *renderer.Context
	// Screen is the default framebuffer sized to Viewport.
	Screen *renderer.RenderTarget
}

// FrameOutput tells the loop what to do after the frame.
type FrameOutput struct {
	Exit bool
	Swap bool
	// Screenshot, when set, is a PNG file the screen is written to before
	// the swap.
	Screenshot string
	// WaitNextEvent blocks until input arrives instead of polling.
	WaitNextEvent bool
}

// SaveScreenshot writes the color contents of target to a PNG file.
func SaveScreenshot(path string, target *renderer.RenderTarget) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteScreenshot(file, target); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteScreenshot encodes the color contents of target as PNG.
func WriteScreenshot(w io.Writer, target *renderer.RenderTarget) error {
	pixels, err := target.ReadColorBytes()
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	width, height := int(target.Width()), int(target.Height())
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	// Read back rows start at the bottom.
	for y := 0; y < height; y++ {
		src := pixels[(height-1-y)*width*4 : (height-y)*width*4]
		copy(img.Pix[y*img.Stride:], src)
	}
	return png.Encode(w, img)
}
