package loader

import (
	"Prism3D/internal/renderer"
	"os"
	"path/filepath"
	"testing"
)

func TestMeshCacheBuildsOnce(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "quad.obj")
	writeFile(t, source, quadOBJ)
	cache, err := NewMeshCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	first, err := LoadMesh(source, Options{}, cache)
	if err != nil {
		t.Fatalf("LoadMesh failed: %v", err)
	}
	builds := 0
	second, err := cache.Load(source, "merged normals=false", func() (*renderer.CPUMesh, error) {
		builds++
		return nil, os.ErrInvalid
	})
	if err != nil {
		t.Fatalf("Cached load failed: %v", err)
	}
	if builds != 0 {
		t.Error("Second load should come from the cache")
	}
	if len(second.Positions) != len(first.Positions) || len(second.Indices) != len(first.Indices) {
		t.Error("Cached mesh differs from the built one")
	}
	for i := range first.Positions {
		if first.Positions[i] != second.Positions[i] {
			t.Fatalf("Position %d differs", i)
		}
	}
}

func TestMeshCacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "quad.obj")
	writeFile(t, source, quadOBJ)
	cache, err := NewMeshCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	before, err := cache.Entry(source, "a")
	if err != nil {
		t.Fatal(err)
	}
	if other, _ := cache.Entry(source, "b"); other == before {
		t.Error("Variants should not share an entry")
	}
	writeFile(t, source, quadOBJ+"f 2 3 4\n")
	after, err := cache.Entry(source, "a")
	if err != nil {
		t.Fatal(err)
	}
	if after == before {
		t.Error("Editing the source should change the entry")
	}
}

func TestMeshCacheRebuildsCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "quad.obj")
	writeFile(t, source, quadOBJ)
	cache, err := NewMeshCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	entry, err := cache.Entry(source, "v")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, entry, "corrupt")

	builds := 0
	mesh, err := cache.Load(source, "v", func() (*renderer.CPUMesh, error) {
		builds++
		return renderer.CPUMeshCube(), nil
	})
	if err != nil || builds != 1 || mesh == nil {
		t.Fatalf("Corrupt entry should be rebuilt, builds %d err %v", builds, err)
	}
	if _, err := cache.Load(source, "v", nil); err != nil {
		t.Errorf("Rebuilt entry should be readable: %v", err)
	}
}
