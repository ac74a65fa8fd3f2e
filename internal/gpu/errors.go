package gpu

import (
	"errors"
	"fmt"
)

var (
	ErrResourceCreation  = errors.New("gpu: resource creation failed")
	ErrDimensionMismatch = errors.New("gpu: attachment dimensions differ")
	ErrNoAttachments     = errors.New("gpu: render target needs a color or depth attachment")
	ErrTargetIncomplete  = errors.New("gpu: render target incomplete")
	ErrShaderCompile     = errors.New("gpu: shader compilation failed")
	ErrMissingMeshBuffer = errors.New("gpu: missing mesh buffer")
	ErrMissingBitangent  = errors.New("gpu: tangent output requested without bitangent")
)

// TargetIncompleteError carries the framebuffer status reported by the driver.
type TargetIncompleteError struct {
	Status     Enum
	Diagnostic string
}

func (e *TargetIncompleteError) Error() string {
	return fmt.Sprintf("gpu: render target incomplete (0x%04X): %s", uint32(e.Status), e.Diagnostic)
}

func (e *TargetIncompleteError) Unwrap() error { return ErrTargetIncomplete }

// ShaderCompileError carries the compiler or linker log. Stage is "vertex",
// "fragment" or "link".
type ShaderCompileError struct {
	Stage string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("gpu: %s shader failed: %s", e.Stage, e.Log)
}

func (e *ShaderCompileError) Unwrap() error { return ErrShaderCompile }

// MissingMeshBufferError names the vertex attribute a geometry cannot supply.
type MissingMeshBufferError struct {
	Attribute string
}

func (e *MissingMeshBufferError) Error() string {
	return fmt.Sprintf("gpu: missing mesh buffer %q", e.Attribute)
}

func (e *MissingMeshBufferError) Unwrap() error { return ErrMissingMeshBuffer }

// CreationError wraps ErrResourceCreation with the object kind.
func CreationError(kind Kind) error {
	return fmt.Errorf("%w: %s", ErrResourceCreation, kind)
}
