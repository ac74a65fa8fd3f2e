package renderer

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	meshMagic   = 0x4D455348 // "MESH"
	meshVersion = 2
)

const (
	meshHasIndices uint32 = 1 << iota
	meshHasNormals
	meshHasTangents
	meshHasUVs
	meshHasColors
)

var ErrMeshEncoding = errors.New("mesh encoding")

// EncodeCPUMesh writes mesh to w in a gzip compressed little endian format.
func EncodeCPUMesh(w io.Writer, mesh *CPUMesh) error {
	gz := gzip.NewWriter(w)
	var flags uint32
	for _, f := range []struct {
		on   bool
		flag uint32
	}{
		{len(mesh.Indices) > 0, meshHasIndices},
		{len(mesh.Normals) > 0, meshHasNormals},
		{len(mesh.Tangents) > 0, meshHasTangents},
		{len(mesh.UVs) > 0, meshHasUVs},
		{len(mesh.Colors) > 0, meshHasColors},
	} {
		if f.on {
			flags |= f.flag
		}
	}
	header := []uint32{meshMagic, meshVersion, flags, uint32(len(mesh.Name))}
	if err := binary.Write(gz, binary.LittleEndian, header); err != nil {
		return err
	}
	if _, err := io.WriteString(gz, mesh.Name); err != nil {
		return err
	}
	if err := writeSlice(gz, mesh.Positions); err != nil {
		return err
	}
	if flags&meshHasIndices != 0 {
		if err := writeSlice(gz, mesh.Indices); err != nil {
			return err
		}
	}
	if flags&meshHasNormals != 0 {
		if err := writeSlice(gz, mesh.Normals); err != nil {
			return err
		}
	}
	if flags&meshHasTangents != 0 {
		if err := writeSlice(gz, mesh.Tangents); err != nil {
			return err
		}
	}
	if flags&meshHasUVs != 0 {
		if err := writeSlice(gz, mesh.UVs); err != nil {
			return err
		}
	}
	if flags&meshHasColors != 0 {
		if err := writeSlice(gz, mesh.Colors); err != nil {
			return err
		}
	}
	return gz.Close()
}

// DecodeCPUMesh reads a mesh written by EncodeCPUMesh and validates it.
func DecodeCPUMesh(r io.Reader) (*CPUMesh, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMeshEncoding, err)
	}
	defer gz.Close()

	var header [4]uint32
	if err := binary.Read(gz, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMeshEncoding, err)
	}
	if header[0] != meshMagic {
		return nil, fmt.Errorf("%w: invalid magic %x", ErrMeshEncoding, header[0])
	}
	if header[1] != meshVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMeshEncoding, header[1])
	}
	flags := header[2]
	name := make([]byte, header[3])
	if _, err := io.ReadFull(gz, name); err != nil {
		return nil, fmt.Errorf("%w: name: %w", ErrMeshEncoding, err)
	}

	mesh := &CPUMesh{Name: string(name)}
	if mesh.Positions, err = readSlice[mgl32.Vec3](gz); err != nil {
		return nil, err
	}
	if flags&meshHasIndices != 0 {
		if mesh.Indices, err = readSlice[uint32](gz); err != nil {
			return nil, err
		}
	}
	if flags&meshHasNormals != 0 {
		if mesh.Normals, err = readSlice[mgl32.Vec3](gz); err != nil {
			return nil, err
		}
	}
	if flags&meshHasTangents != 0 {
		if mesh.Tangents, err = readSlice[mgl32.Vec4](gz); err != nil {
			return nil, err
		}
	}
	if flags&meshHasUVs != 0 {
		if mesh.UVs, err = readSlice[mgl32.Vec2](gz); err != nil {
			return nil, err
		}
	}
	if flags&meshHasColors != 0 {
		if mesh.Colors, err = readSlice[mgl32.Vec4](gz); err != nil {
			return nil, err
		}
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func writeSlice[T any](w io.Writer, data []T) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, data)
}

func readSlice[T any](r io.Reader) ([]T, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMeshEncoding, err)
	}
	if count > math.MaxInt32/16 {
		return nil, fmt.Errorf("%w: %d elements", ErrMeshEncoding, count)
	}
	data := make([]T, count)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMeshEncoding, err)
	}
	return data, nil
}
