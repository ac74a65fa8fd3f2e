package loader

import (
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// LoadMaterials reads a .mtl file. Texture paths are relative to the file.
func LoadMaterials(path string, opts Options) (map[string]*renderer.CPUMaterial, error) {
	return loadMaterialsShared(path, opts, map[string]*renderer.CPUTexture{})
}

func loadMaterialsShared(path string, opts Options, textures map[string]*renderer.CPUTexture) (map[string]*renderer.CPUMaterial, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dir := filepath.Dir(path)
	load := func(name string) (*renderer.CPUTexture, error) {
		full := name
		if !filepath.IsAbs(full) {
			full = filepath.Join(dir, name)
		}
		if t, ok := textures[full]; ok {
			return t, nil
		}
		t, err := LoadImage(full, opts.MaxTextureSize)
		if err != nil {
			return nil, err
		}
		textures[full] = t
		return t, nil
	}
	materials, err := ParseMTL(file, load)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return materials, nil
}

// ParseMTL reads material definitions. Phong shininess maps to roughness
// unless the PBR extension (Pr, Pm) is present. Textures that fail to load
// are logged and skipped.
func ParseMTL(r io.Reader, textures func(name string) (*renderer.CPUTexture, error)) (map[string]*renderer.CPUMaterial, error) {
	materials := map[string]*renderer.CPUMaterial{}
	var current *renderer.CPUMaterial
	explicitRoughness := map[*renderer.CPUMaterial]bool{}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: newmtl without a name", line)
			}
			m := renderer.DefaultCPUMaterial()
			m.Name = fields[1]
			// Plain Phong files describe non metals with some gloss.
			m.Roughness = 0.5
			current = &m
			materials[m.Name] = current
			continue
		}
		if current == nil {
			continue
		}
		values := func(n int) ([]float32, bool) {
			v, err := parseFloats(fields[1:], n, n)
			if err != nil {
				logger.Log.Warn("Malformed material line",
					zap.Int("line", line),
					zap.String("material", current.Name),
					zap.Error(err))
				return nil, false
			}
			return v, true
		}
		texture := func(dest **renderer.CPUTexture) {
			if len(fields) < 2 {
				return
			}
			// Options come first, the path is the last field.
			name := fields[len(fields)-1]
			t, err := textures(name)
			if err != nil {
				logger.Log.Warn("Material texture not loaded",
					zap.String("material", current.Name),
					zap.String("texture", name),
					zap.Error(err))
				return
			}
			*dest = t
		}

		switch fields[0] {
		case "Kd":
			if v, ok := values(3); ok {
				current.Albedo = mgl32.Vec4{v[0], v[1], v[2], current.Albedo.W()}
			}
		case "d":
			if v, ok := values(1); ok {
				current.Albedo[3] = v[0]
			}
		case "Tr":
			if v, ok := values(1); ok {
				current.Albedo[3] = 1 - v[0]
			}
		case "Ns":
			if v, ok := values(1); ok && !explicitRoughness[current] {
				current.Roughness = shininessToRoughness(v[0])
			}
		case "Pr":
			if v, ok := values(1); ok {
				current.Roughness = v[0]
				explicitRoughness[current] = true
			}
		case "Pm":
			if v, ok := values(1); ok {
				current.Metallic = v[0]
			}
		case "Ke":
			if v, ok := values(3); ok {
				current.Emissive = mgl32.Vec3{v[0], v[1], v[2]}
			}
		case "map_Kd":
			texture(&current.AlbedoTexture)
		case "map_Ke":
			texture(&current.EmissiveTexture)
		case "map_Pr", "map_Pm", "map_ORM":
			texture(&current.MetallicRoughnessTexture)
		case "map_AO", "map_Ka":
			texture(&current.OcclusionTexture)
		case "map_Bump", "map_bump", "bump", "norm":
			texture(&current.NormalTexture)
			if scale, ok := bumpScale(fields[1:]); ok {
				current.NormalScale = scale
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

// shininessToRoughness is the usual Blinn-Phong exponent to GGX mapping.
func shininessToRoughness(ns float32) float32 {
	return float32(math.Sqrt(2 / (float64(max(ns, 0)) + 2)))
}

func bumpScale(fields []string) (float32, bool) {
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "-bm" {
			v, err := strconv.ParseFloat(fields[i+1], 32)
			return float32(v), err == nil
		}
	}
	return 0, false
}
