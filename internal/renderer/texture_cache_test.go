package renderer

import (
	"Prism3D/internal/gpu"
	"errors"
	"testing"
)

func checkerTexture() (*CPUTexture, error) {
	return &CPUTexture{
		Width:    2,
		Height:   2,
		Format:   FormatRGBA,
		U8:       []uint8{255, 255, 255, 255, 0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 255, 255},
		Sampling: DefaultSampling(),
	}, nil
}

func TestTextureCacheSharesTextures(t *testing.T) {
	ctx, fake := newTestContext(t)
	cache := NewTextureCache(ctx)
	loads := 0
	load := func() (*CPUTexture, error) {
		loads++
		return checkerTexture()
	}

	first, err := cache.Acquire("checker", load)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	second, err := cache.Acquire("checker", load)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if first != second || loads != 1 {
		t.Errorf("Expected one shared texture, loaded %d times", loads)
	}
	if first.Label() != "checker" {
		t.Errorf("Texture label = %q, want the cache name", first.Label())
	}
	if cache.RefCount("checker") != 2 {
		t.Errorf("RefCount = %d, want 2", cache.RefCount("checker"))
	}

	id := first.ID()
	cache.Release("checker")
	if !fake.IsLive(gpu.KindTexture, id) {
		t.Error("Texture freed while still referenced")
	}
	cache.Release("checker")
	if fake.IsLive(gpu.KindTexture, id) {
		t.Error("Texture should be freed with the last reference")
	}
	if cache.RefCount("checker") != 0 {
		t.Error("Released texture should leave the cache")
	}

	stats := cache.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 || stats.ActiveTextures != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestTextureCacheLoadError(t *testing.T) {
	ctx, _ := newTestContext(t)
	cache := NewTextureCache(ctx)
	failure := errors.New("file not found")

	_, err := cache.Acquire("missing", func() (*CPUTexture, error) { return nil, failure })
	if !errors.Is(err, failure) {
		t.Errorf("Expected the load error, got %v", err)
	}
	if cache.RefCount("missing") != 0 {
		t.Error("Failed loads should not be cached")
	}
	cache.Release("missing")
}

func TestTextureCacheMemoryAndClear(t *testing.T) {
	ctx, fake := newTestContext(t)
	cache := NewTextureCache(ctx)
	if _, err := cache.Acquire("checker", checkerTexture); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if cache.Stats().TotalMemoryMB <= 0 {
		t.Error("Cached texture should count towards memory")
	}
	cache.Clear()
	if fake.LiveCount(gpu.KindTexture) != 0 {
		t.Error("Clear should free every texture")
	}
}

func TestPhysicalMaterialsShareCachedTextures(t *testing.T) {
	ctx, fake := newTestContext(t)
	cache := NewTextureCache(ctx)

	albedo, _ := checkerTexture()
	albedo.Name = "bricks.png"
	first := DefaultCPUMaterial()
	first.AlbedoTexture = albedo
	second := DefaultCPUMaterial()
	second.AlbedoTexture = albedo

	a, err := NewPhysicalMaterialCached(cache, &first)
	if err != nil {
		t.Fatalf("NewPhysicalMaterialCached failed: %v", err)
	}
	b, err := NewPhysicalMaterialCached(cache, &second)
	if err != nil {
		t.Fatal(err)
	}
	if n := fake.LiveCount(gpu.KindTexture); n != 1 {
		t.Errorf("Expected one shared texture, %d alive", n)
	}

	// The cache going away first leaves the materials working.
	cache.Clear()
	if n := fake.LiveCount(gpu.KindTexture); n != 1 {
		t.Errorf("Materials lost their texture, %d alive", n)
	}
	a.Release()
	b.Release()
	if n := fake.LiveCount(gpu.KindTexture); n != 0 {
		t.Errorf("%d textures alive after releasing every owner", n)
	}
}
