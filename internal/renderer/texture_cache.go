package renderer

import (
	"Prism3D/internal/logger"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// TextureStats provides debugging and profiling information
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
	TotalMemoryMB  float64
}

type cachedTexture struct {
	texture *Texture2D
	refs    int
	bytes   int
}

// TextureCache shares textures by name. Every Acquire must be paired with a
// Release of the same name; the texture is freed with the last one.
type TextureCache struct {
	ctx      *Context
	mu       sync.RWMutex
	textures map[string]*cachedTexture
	stats    TextureStats
}

func NewTextureCache(ctx *Context) *TextureCache {
	return &TextureCache{ctx: ctx, textures: make(map[string]*cachedTexture)}
}

// Acquire returns the texture cached under name, calling load to create it on
// a miss.
func (tc *TextureCache) Acquire(name string, load func() (*CPUTexture, error)) (*Texture2D, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if entry, exists := tc.textures[name]; exists {
		entry.refs++
		tc.stats.CacheHits++
		logger.Log.Debug("Texture cache hit",
			zap.String("name", name),
			zap.Int("refCount", entry.refs))
		return entry.texture, nil
	}

	tc.stats.CacheMisses++
	cpu, err := load()
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", name, err)
	}
	if cpu.Name == "" {
		cpu.Name = name
	}
	texture, err := NewTexture2D(tc.ctx, cpu)
	if err != nil {
		return nil, err
	}
	entry := &cachedTexture{texture: texture, refs: 1, bytes: textureBytes(texture)}
	tc.textures[name] = entry
	tc.stats.TotalTextures++
	logger.Log.Info("Texture loaded and cached",
		zap.String("name", name),
		zap.Uint32("width", texture.Width()),
		zap.Uint32("height", texture.Height()))
	return texture, nil
}

// Release drops one reference to the texture cached under name.
func (tc *TextureCache) Release(name string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, exists := tc.textures[name]
	if !exists {
		logger.Log.Warn("Attempted to release unknown texture", zap.String("name", name))
		return
	}
	entry.refs--
	if entry.refs > 0 {
		logger.Log.Debug("Texture reference released",
			zap.String("name", name),
			zap.Int("refCount", entry.refs))
		return
	}
	entry.texture.Release()
	delete(tc.textures, name)
	logger.Log.Info("Texture freed", zap.String("name", name))
}

// RefCount returns the references held on name, 0 when it is not cached.
func (tc *TextureCache) RefCount(name string) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if entry, exists := tc.textures[name]; exists {
		return entry.refs
	}
	return 0
}

// Stats returns current texture cache statistics
func (tc *TextureCache) Stats() TextureStats {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	stats := tc.stats
	stats.ActiveTextures = len(tc.textures)
	bytes := 0
	for _, entry := range tc.textures {
		bytes += entry.bytes
	}
	stats.TotalMemoryMB = float64(bytes) / (1024 * 1024)
	return stats
}

func (tc *TextureCache) LogStats() {
	stats := tc.Stats()
	hitRate := 0.0
	if lookups := stats.CacheHits + stats.CacheMisses; lookups > 0 {
		hitRate = float64(stats.CacheHits) / float64(lookups)
	}
	logger.Log.Info("Texture cache stats",
		zap.Int("totalTextures", stats.TotalTextures),
		zap.Int("activeTextures", stats.ActiveTextures),
		zap.Int("cacheHits", stats.CacheHits),
		zap.Int("cacheMisses", stats.CacheMisses),
		zap.Float64("memoryMB", stats.TotalMemoryMB),
		zap.Float64("hitRate", hitRate))
}

// Clear frees every cached texture regardless of references.
func (tc *TextureCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	for _, entry := range tc.textures {
		entry.texture.Release()
	}
	tc.textures = make(map[string]*cachedTexture)
	logger.Log.Info("Texture cache cleared")
}

// textureBytes estimates the GPU memory of t including its mip chain.
func textureBytes(t *Texture2D) int {
	texel := t.format.Channels()
	switch t.dataType {
	case TypeF16:
		texel *= 2
	case TypeF32:
		texel *= 4
	}
	bytes := 0
	w, h := int(t.width), int(t.height)
	for i := uint32(0); i < t.levels; i++ {
		bytes += w * h * texel
		w, h = max(w/2, 1), max(h/2, 1)
	}
	return bytes
}
