package loader

import (
	"Prism3D/internal/renderer"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quadOBJ = `# quad and a triangle
mtllib quad.mtl
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
usemtl red
f 1/1/1 4/4/1 3/3/1 2/2/1
usemtl blue
f 1 3 2
`

func TestParseOBJSplitsByMaterial(t *testing.T) {
	red := renderer.DefaultCPUMaterial()
	red.Name = "red"
	libraries := func(name string) (map[string]*renderer.CPUMaterial, error) {
		if name != "quad.mtl" {
			t.Errorf("Unexpected library %q", name)
		}
		return map[string]*renderer.CPUMaterial{"red": &red}, nil
	}

	model, err := ParseOBJ(strings.NewReader(quadOBJ), "quad", libraries, Options{})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(model.Parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(model.Parts))
	}

	quad := model.Parts[0]
	if quad.Material != &red {
		t.Error("First part should use the library material")
	}
	if len(quad.Mesh.Positions) != 4 || len(quad.Mesh.Indices) != 6 {
		t.Errorf("Quad should unify to 4 vertices and 2 triangles, got %d/%d", len(quad.Mesh.Positions), len(quad.Mesh.Indices))
	}
	if len(quad.Mesh.UVs) != 4 || len(quad.Mesh.Colors) != 0 {
		t.Error("Quad should carry uvs and no vertex colors")
	}
	for _, n := range quad.Mesh.Normals {
		if n != (mgl32.Vec3{0, 1, 0}) {
			t.Errorf("Normal from the file was not kept: %v", n)
		}
	}
	if err := quad.Mesh.Validate(); err != nil {
		t.Errorf("Quad mesh invalid: %v", err)
	}

	tri := model.Parts[1]
	if tri.Material.Name != "blue" || tri.Material.Albedo != renderer.DefaultCPUMaterial().Albedo {
		t.Errorf("Unknown material should fall back to the default, got %+v", tri.Material)
	}
	if len(tri.Mesh.UVs) != 0 {
		t.Error("Triangle without texture coordinates should have no uvs")
	}
	// Computed, since the face had no normal references.
	for _, n := range tri.Mesh.Normals {
		if !n.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
			t.Errorf("Computed normal = %v", n)
		}
	}
}

func TestParseOBJNegativeIndicesAndColors(t *testing.T) {
	src := "v 0 0 0 1 0 0\nv 1 0 0 0 1 0\nv 0 1 0 0 0 1\nf -3 -2 -1\n"
	model, err := ParseOBJ(strings.NewReader(src), "tri", nil, Options{})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	mesh := model.Parts[0].Mesh
	if len(mesh.Positions) != 3 || mesh.Positions[2] != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Unexpected positions %v", mesh.Positions)
	}
	if len(mesh.Colors) != 3 || mesh.Colors[1] != (mgl32.Vec4{0, 1, 0, 1}) {
		t.Errorf("Vertex colors not read: %v", mesh.Colors)
	}
	if !mesh.Normals[0].ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Counter clockwise triangle should face +z, got %v", mesh.Normals[0])
	}
}

func TestParseOBJErrors(t *testing.T) {
	cases := map[string]string{
		"index out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"bad number":         "v 0 zero 0\n",
		"two vertex face":    "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"no faces":           "v 0 0 0\n",
	}
	for name, src := range cases {
		_, err := ParseOBJ(strings.NewReader(src), name, nil, Options{})
		if !errors.Is(err, ErrMalformedOBJ) {
			t.Errorf("%s: expected ErrMalformedOBJ, got %v", name, err)
		}
	}
}

func TestModelMerged(t *testing.T) {
	model, err := ParseOBJ(strings.NewReader(quadOBJ), "quad", nil, Options{})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	merged := model.Merged()
	if len(merged.Positions) != 7 || len(merged.Indices) != 9 {
		t.Errorf("Merged mesh has %d positions and %d indices", len(merged.Positions), len(merged.Indices))
	}
	if len(merged.UVs) != 0 {
		t.Error("UVs missing from one part should be dropped")
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("Merged mesh invalid: %v", err)
	}
	box := model.AABB()
	if box.Min != (mgl32.Vec3{-1, 0, -1}) || box.Max != (mgl32.Vec3{1, 0, 1}) {
		t.Errorf("Model AABB = %v", box)
	}
}

func TestParseMTL(t *testing.T) {
	src := `newmtl shiny
Kd 1 0 0
d 0.5
Ns 98
map_Kd -s 1 1 1 albedo.png
map_Bump -bm 0.5 missing.png
newmtl rough
Pr 0.8
Ns 1000
Pm 1
`
	albedo := &renderer.CPUTexture{Name: "albedo"}
	textures := func(name string) (*renderer.CPUTexture, error) {
		if name == "albedo.png" {
			return albedo, nil
		}
		return nil, os.ErrNotExist
	}
	materials, err := ParseMTL(strings.NewReader(src), textures)
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}

	shiny := materials["shiny"]
	if shiny.Albedo != (mgl32.Vec4{1, 0, 0, 0.5}) {
		t.Errorf("Albedo = %v", shiny.Albedo)
	}
	if !mgl32.FloatEqualThreshold(shiny.Roughness, 0.1414, 1e-3) {
		t.Errorf("Roughness from Ns 98 = %f", shiny.Roughness)
	}
	if shiny.AlbedoTexture != albedo {
		t.Error("Albedo texture should be resolved from the last field")
	}
	if shiny.NormalTexture != nil || shiny.NormalScale != 0.5 {
		t.Errorf("Missing normal map should be skipped, scale kept: %v %f", shiny.NormalTexture, shiny.NormalScale)
	}

	rough := materials["rough"]
	if rough.Roughness != 0.8 || rough.Metallic != 1 {
		t.Errorf("PBR values should win over Ns, got roughness %f metallic %f", rough.Roughness, rough.Metallic)
	}
}

func TestLoadModelFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quad.obj"), quadOBJ)
	writeFile(t, filepath.Join(dir, "quad.mtl"), "newmtl red\nKd 1 0 0\nmap_Kd checker.png\nnewmtl blue\nmap_Kd checker.png\n")
	writePNG(t, filepath.Join(dir, "checker.png"), 4, 4)

	model, err := LoadModel(filepath.Join(dir, "quad.obj"), Options{})
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	red, blue := model.Parts[0].Material, model.Parts[1].Material
	if red.AlbedoTexture == nil || red.AlbedoTexture != blue.AlbedoTexture {
		t.Error("A texture used twice should be decoded once")
	}
	if red.AlbedoTexture.Width != 4 {
		t.Errorf("Texture width = %d", red.AlbedoTexture.Width)
	}
}

func TestLoadModelWithoutMaterialLibrary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quad.obj"), quadOBJ)

	model, err := LoadModel(filepath.Join(dir, "quad.obj"), Options{RecalculateNormals: true})
	if err != nil {
		t.Fatalf("A missing library should not fail the model: %v", err)
	}
	if model.Parts[0].Material.Name != "red" {
		t.Errorf("Default material should keep the group name, got %q", model.Parts[0].Material.Name)
	}

	if _, err := LoadModel(filepath.Join(dir, "missing.obj"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
