package loader

import (
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"errors"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// LoadPlane is a flat grid of gridSize x gridSize vertices in the xz plane,
// centered on the origin and facing +y.
func LoadPlane(gridSize int, gridSpacing float32) (*renderer.CPUMesh, error) {
	return grid("plane", gridSize, gridSpacing, func(x, z int) float32 { return 0 })
}

// HeightfieldOptions describe a noise generated terrain.
type HeightfieldOptions struct {
	GridSize    int
	GridSpacing float32
	Amplitude   float32
	// Frequency is the noise frequency of the largest features, per vertex.
	Frequency float64
	Seed      int64
	// Low and High color the terrain by height. Zero values leave the mesh
	// without vertex colors.
	Low, High mgl32.Vec4
}

// DefaultHeightfieldOptions is a gentle 128 x 128 terrain.
func DefaultHeightfieldOptions() HeightfieldOptions {
	return HeightfieldOptions{
		GridSize:    128,
		GridSpacing: 0.5,
		Amplitude:   6,
		Frequency:   0.05,
		Seed:        1,
		Low:         mgl32.Vec4{0.25, 0.4, 0.15, 1},
		High:        mgl32.Vec4{0.9, 0.9, 0.85, 1},
	}
}

// LoadHeightfield builds a terrain from three octaves of Perlin noise. The
// same seed always gives the same terrain.
func LoadHeightfield(opts HeightfieldOptions) (*renderer.CPUMesh, error) {
	p := perlin.NewPerlin(2, 2, 3, opts.Seed)
	height := func(x, z int) float32 {
		fx, fz := float64(x)*opts.Frequency, float64(z)*opts.Frequency
		base := p.Noise2D(fx, fz)
		detail := p.Noise2D(fx*3, fz*3)
		fine := p.Noise2D(fx*6, fz*6)
		return float32(base*0.6+detail*0.3+fine*0.1) * opts.Amplitude
	}
	mesh, err := grid("heightfield", opts.GridSize, opts.GridSpacing, height)
	if err != nil {
		return nil, err
	}
	if opts.Low != (mgl32.Vec4{}) || opts.High != (mgl32.Vec4{}) {
		box := mesh.ComputeAABB()
		span := box.Size().Y()
		mesh.Colors = make([]mgl32.Vec4, len(mesh.Positions))
		for i, pos := range mesh.Positions {
			t := float32(0.5)
			if span > 0 {
				t = (pos.Y() - box.Min.Y()) / span
			}
			mesh.Colors[i] = opts.Low.Mul(1 - t).Add(opts.High.Mul(t))
		}
	}
	logger.Log.Info("Heightfield generated",
		zap.Int("gridSize", opts.GridSize),
		zap.Int64("seed", opts.Seed),
		zap.Int("triangles", mesh.TriangleCount()))
	return mesh, nil
}

func grid(name string, gridSize int, gridSpacing float32, height func(x, z int) float32) (*renderer.CPUMesh, error) {
	if gridSize < 2 {
		return nil, errors.New("gridSize must be at least 2")
	}
	if gridSpacing <= 0 {
		return nil, errors.New("gridSpacing must be positive")
	}
	mesh := &renderer.CPUMesh{
		Name:      name,
		Positions: make([]mgl32.Vec3, 0, gridSize*gridSize),
		UVs:       make([]mgl32.Vec2, 0, gridSize*gridSize),
		Indices:   make([]uint32, 0, (gridSize-1)*(gridSize-1)*6),
	}
	offset := float32(gridSize-1) * gridSpacing * 0.5
	last := float32(gridSize - 1)
	for x := 0; x < gridSize; x++ {
		for z := 0; z < gridSize; z++ {
			mesh.Positions = append(mesh.Positions, mgl32.Vec3{
				float32(x)*gridSpacing - offset,
				height(x, z),
				float32(z)*gridSpacing - offset,
			})
			mesh.UVs = append(mesh.UVs, mgl32.Vec2{float32(x) / last, float32(z) / last})
		}
	}
	for x := 0; x < gridSize-1; x++ {
		for z := 0; z < gridSize-1; z++ {
			topLeft := uint32(x*gridSize + z)
			topRight := topLeft + 1
			bottomLeft := uint32((x+1)*gridSize + z)
			bottomRight := bottomLeft + 1
			// Counter clockwise seen from above.
			mesh.Indices = append(mesh.Indices, topLeft, bottomRight, bottomLeft, topLeft, topRight, bottomRight)
		}
	}
	mesh.ComputeNormals()
	return mesh, nil
}
