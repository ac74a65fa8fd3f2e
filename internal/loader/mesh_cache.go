package loader

import (
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MeshCache keeps decoded meshes on disk. An entry is keyed by the absolute
// source path, its size and modification time, and a variant naming the
// options the mesh was built with, so editing the source invalidates it.
type MeshCache struct {
	Dir string
}

func NewMeshCache(dir string) (*MeshCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mesh cache: %w", err)
	}
	return &MeshCache{Dir: dir}, nil
}

// Entry returns the cache file for source and variant.
func (c *MeshCache) Entry(source, variant string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s|%d|%d|%s", abs, info.Size(), info.ModTime().UnixNano(), variant)
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
	return filepath.Join(c.Dir, id.String()+".mesh"), nil
}

// Load returns the cached mesh for source, or runs build and stores the
// result. A corrupt entry is rebuilt.
func (c *MeshCache) Load(source, variant string, build func() (*renderer.CPUMesh, error)) (*renderer.CPUMesh, error) {
	entry, err := c.Entry(source, variant)
	if err != nil {
		return nil, fmt.Errorf("mesh cache: %w", err)
	}
	if file, err := os.Open(entry); err == nil {
		mesh, decodeErr := renderer.DecodeCPUMesh(file)
		file.Close()
		if decodeErr == nil {
			logger.Log.Debug("Mesh cache hit", zap.String("source", source))
			return mesh, nil
		}
		logger.Log.Warn("Discarding mesh cache entry",
			zap.String("entry", entry),
			zap.Error(decodeErr))
	}

	mesh, err := build()
	if err != nil {
		return nil, err
	}
	if err := c.store(entry, mesh); err != nil {
		logger.Log.Warn("Mesh not cached", zap.String("source", source), zap.Error(err))
	}
	return mesh, nil
}

func (c *MeshCache) store(entry string, mesh *renderer.CPUMesh) error {
	tmp, err := os.CreateTemp(c.Dir, "mesh-*.tmp")
	if err != nil {
		return err
	}
	if err := renderer.EncodeCPUMesh(tmp, mesh); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), entry)
}
