package loader

import (
	"Prism3D/internal/renderer"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes a png, jpeg, bmp, tiff or webp file into RGBA texels.
// Images larger than maxSize on either side are downscaled, keeping the
// aspect ratio. A maxSize of 0 disables scaling.
func LoadImage(path string, maxSize int) (*renderer.CPUTexture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeImage(file, filepath.Base(path), maxSize)
}

// DecodeImage is LoadImage for an already opened stream.
func DecodeImage(r io.Reader, name string, maxSize int) (*renderer.CPUTexture, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", name, err)
	}
	bounds := src.Bounds()
	w, h := scaledSize(bounds.Dx(), bounds.Dy(), maxSize)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image %q: empty %s image", name, format)
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), src, bounds, draw.Src, nil)
	}

	// Rows are stored from the bottom, the way texture coordinates address them.
	texels := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		copy(texels[(h-1-y)*w*4:], row)
	}
	return &renderer.CPUTexture{
		Name:     name,
		Width:    uint32(w),
		Height:   uint32(h),
		Format:   renderer.FormatRGBA,
		U8:       texels,
		Sampling: renderer.DefaultSampling(),
	}, nil
}

func scaledSize(w, h, maxSize int) (int, int) {
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return w, h
	}
	if w >= h {
		return maxSize, max(h*maxSize/w, 1)
	}
	return max(w*maxSize/h, 1), maxSize
}
