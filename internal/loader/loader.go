package loader

import (
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var ErrMalformedOBJ = errors.New("malformed obj")

// Options control how models are turned into CPU data.
type Options struct {
	// RecalculateNormals ignores the normals of the file. Some exporters
	// write broken ones.
	RecalculateNormals bool
	// MaxTextureSize downscales larger textures. 0 keeps the original size.
	MaxTextureSize int
}

// Part is the geometry of a model drawn with one material.
type Part struct {
	Mesh     *renderer.CPUMesh
	Material *renderer.CPUMaterial
}

// Model is a loaded OBJ file, split by material.
type Model struct {
	Name  string
	Parts []Part
}

// AABB bounds every part.
func (m *Model) AABB() renderer.AABB {
	box := renderer.EmptyAABB()
	for _, p := range m.Parts {
		box.ExpandWithAABB(p.Mesh.ComputeAABB())
	}
	return box
}

// Merged concatenates the parts into one mesh. Attributes missing from any
// part are dropped.
func (m *Model) Merged() *renderer.CPUMesh {
	merged := &renderer.CPUMesh{Name: m.Name}
	all := func(has func(*renderer.CPUMesh) bool) bool {
		for _, p := range m.Parts {
			if !has(p.Mesh) {
				return false
			}
		}
		return len(m.Parts) > 0
	}
	normals := all(func(c *renderer.CPUMesh) bool { return len(c.Normals) > 0 })
	tangents := all(func(c *renderer.CPUMesh) bool { return len(c.Tangents) > 0 })
	uvs := all(func(c *renderer.CPUMesh) bool { return len(c.UVs) > 0 })
	colors := all(func(c *renderer.CPUMesh) bool { return len(c.Colors) > 0 })
	for _, p := range m.Parts {
		base := uint32(len(merged.Positions))
		for _, i := range p.Mesh.Indices {
			merged.Indices = append(merged.Indices, base+i)
		}
		merged.Positions = append(merged.Positions, p.Mesh.Positions...)
		if normals {
			merged.Normals = append(merged.Normals, p.Mesh.Normals...)
		}
		if tangents {
			merged.Tangents = append(merged.Tangents, p.Mesh.Tangents...)
		}
		if uvs {
			merged.UVs = append(merged.UVs, p.Mesh.UVs...)
		}
		if colors {
			merged.Colors = append(merged.Colors, p.Mesh.Colors...)
		}
	}
	return merged
}

// LoadModel reads an OBJ file and the material libraries it references.
// A missing material library falls back to the default material.
func LoadModel(path string, opts Options) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dir := filepath.Dir(path)
	textures := map[string]*renderer.CPUTexture{}
	libraries := func(name string) (map[string]*renderer.CPUMaterial, error) {
		return loadMaterialsShared(filepath.Join(dir, name), opts, textures)
	}
	model, err := ParseOBJ(file, filepath.Base(path), libraries, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

// LoadMesh loads an OBJ file as a single mesh without materials. A non nil
// cache keeps the decoded mesh on disk between runs.
func LoadMesh(path string, opts Options, cache *MeshCache) (*renderer.CPUMesh, error) {
	build := func() (*renderer.CPUMesh, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		model, err := ParseOBJ(file, filepath.Base(path), nil, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return model.Merged(), nil
	}
	if cache == nil {
		return build()
	}
	return cache.Load(path, fmt.Sprintf("merged normals=%t", opts.RecalculateNormals), build)
}

// MaterialLibraries resolves a mtllib name. It may be nil, in which case
// every part gets the default material.
type MaterialLibraries func(name string) (map[string]*renderer.CPUMaterial, error)

// faceVertex holds zero based indices, -1 when absent.
type faceVertex struct {
	v, vt, vn int
}

// partBuilder unifies position/uv/normal triplets into the vertices of one
// material group.
type partBuilder struct {
	material string
	mesh     *renderer.CPUMesh
	vertices map[faceVertex]uint32
	hasUV    bool
	hasNorm  bool
	complete bool // every vertex had a normal
}

// ParseOBJ reads OBJ data. Faces with more than three vertices are
// triangulated as fans, and negative indices count back from the last
// element read.
func ParseOBJ(r io.Reader, name string, libraries MaterialLibraries, opts Options) (*Model, error) {
	var (
		positions []mgl32.Vec3
		colors    []mgl32.Vec4
		hasColor  bool
		uvs       []mgl32.Vec2
		normals   []mgl32.Vec3
		materials = map[string]*renderer.CPUMaterial{}
		parts     []*partBuilder
		current   *partBuilder
		byName    = map[string]*partBuilder{}
	)
	use := func(material string) {
		if p, ok := byName[material]; ok {
			current = p
			return
		}
		current = &partBuilder{
			material: material,
			mesh:     &renderer.CPUMesh{Name: name + "/" + material},
			vertices: map[faceVertex]uint32{},
			complete: true,
		}
		byName[material] = current
		parts = append(parts, current)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			values, err := parseFloats(fields[1:], 3, 7)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: vertex: %v", ErrMalformedOBJ, line, err)
			}
			positions = append(positions, mgl32.Vec3{values[0], values[1], values[2]})
			color := mgl32.Vec4{1, 1, 1, 1}
			if len(values) >= 6 {
				hasColor = true
				color = mgl32.Vec4{values[3], values[4], values[5], 1}
			}
			colors = append(colors, color)
		case "vt":
			values, err := parseFloats(fields[1:], 1, 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: texture coordinate: %v", ErrMalformedOBJ, line, err)
			}
			uv := mgl32.Vec2{values[0], 0}
			if len(values) > 1 {
				uv[1] = values[1]
			}
			uvs = append(uvs, uv)
		case "vn":
			values, err := parseFloats(fields[1:], 3, 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: normal: %v", ErrMalformedOBJ, line, err)
			}
			normals = append(normals, mgl32.Vec3{values[0], values[1], values[2]})
		case "f":
			face, err := parseFace(fields[1:], len(positions), len(uvs), len(normals))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: face: %v", ErrMalformedOBJ, line, err)
			}
			if current == nil {
				use("default")
			}
			for i := 1; i+1 < len(face); i++ {
				for _, fv := range [3]faceVertex{face[0], face[i], face[i+1]} {
					current.mesh.Indices = append(current.mesh.Indices, current.vertex(fv, positions, colors, uvs, normals))
				}
			}
		case "usemtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: usemtl without a name", ErrMalformedOBJ, line)
			}
			use(fields[1])
		case "mtllib":
			if libraries == nil {
				continue
			}
			for _, lib := range fields[1:] {
				loaded, err := libraries(lib)
				if err != nil {
					logger.Log.Warn("Material library not loaded",
						zap.String("model", name),
						zap.String("library", lib),
						zap.Error(err))
					continue
				}
				for k, m := range loaded {
					materials[k] = m
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrMalformedOBJ)
	}

	model := &Model{Name: name}
	for _, p := range parts {
		mesh := p.mesh
		if !hasColor {
			mesh.Colors = nil
		}
		if !p.hasUV {
			mesh.UVs = nil
		}
		if opts.RecalculateNormals || !p.hasNorm || !p.complete {
			mesh.ComputeNormals()
		}
		material, ok := materials[p.material]
		if !ok {
			if p.material != "default" {
				logger.Log.Debug("Material not found", zap.String("material", p.material))
			}
			def := renderer.DefaultCPUMaterial()
			def.Name = p.material
			material = &def
		}
		if material.NormalTexture != nil && len(mesh.UVs) > 0 {
			if err := mesh.ComputeTangents(); err != nil {
				return nil, err
			}
		}
		model.Parts = append(model.Parts, Part{Mesh: mesh, Material: material})
	}
	logger.Log.Info("Model loaded",
		zap.String("name", name),
		zap.Int("parts", len(model.Parts)),
		zap.Int("positions", len(positions)))
	return model, nil
}

func (p *partBuilder) vertex(fv faceVertex, positions []mgl32.Vec3, colors []mgl32.Vec4, uvs []mgl32.Vec2, normals []mgl32.Vec3) uint32 {
	if index, ok := p.vertices[fv]; ok {
		return index
	}
	index := uint32(len(p.mesh.Positions))
	p.vertices[fv] = index
	p.mesh.Positions = append(p.mesh.Positions, positions[fv.v])
	p.mesh.Colors = append(p.mesh.Colors, colors[fv.v])
	uv := mgl32.Vec2{}
	if fv.vt >= 0 {
		uv = uvs[fv.vt]
		p.hasUV = true
	}
	p.mesh.UVs = append(p.mesh.UVs, uv)
	normal := mgl32.Vec3{0, 1, 0}
	if fv.vn >= 0 {
		normal = normals[fv.vn]
		p.hasNorm = true
	} else {
		p.complete = false
	}
	p.mesh.Normals = append(p.mesh.Normals, normal)
	return index
}

func parseFloats(fields []string, minCount, maxCount int) ([]float32, error) {
	if len(fields) < minCount {
		return nil, fmt.Errorf("%d values, want at least %d", len(fields), minCount)
	}
	if len(fields) > maxCount {
		fields = fields[:maxCount]
	}
	values := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		values[i] = float32(v)
	}
	return values, nil
}

// parseFace reads v, v/vt, v//vn and v/vt/vn references.
func parseFace(fields []string, nv, nvt, nvn int) ([]faceVertex, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("%d vertices", len(fields))
	}
	face := make([]faceVertex, 0, len(fields))
	for _, field := range fields {
		refs := strings.Split(field, "/")
		if len(refs) > 3 {
			return nil, fmt.Errorf("reference %q", field)
		}
		fv := faceVertex{v: -1, vt: -1, vn: -1}
		var err error
		if fv.v, err = resolveIndex(refs[0], nv); err != nil {
			return nil, err
		}
		if fv.v < 0 {
			return nil, fmt.Errorf("reference %q has no position", field)
		}
		if len(refs) > 1 {
			if fv.vt, err = resolveIndex(refs[1], nvt); err != nil {
				return nil, err
			}
		}
		if len(refs) > 2 {
			if fv.vn, err = resolveIndex(refs[2], nvn); err != nil {
				return nil, err
			}
		}
		face = append(face, fv)
	}
	return face, nil
}

// resolveIndex turns a one based or negative reference into a zero based
// index. An empty reference is -1.
func resolveIndex(ref string, count int) (int, error) {
	if ref == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("index %d out of range 1..%d", i, count)
}
