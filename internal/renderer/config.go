package renderer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Pipeline names accepted by RenderConfig.
const (
	PipelineForward  = "forward"
	PipelineDeferred = "deferred"
)

var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig represents the configurable rendering features of a host.
type RenderConfig struct {
	// Window
	Width  uint32 `json:"width" toml:"width"`
	Height uint32 `json:"height" toml:"height"`
	Title  string `json:"title" toml:"title"`
	VSync  bool   `json:"vsync" toml:"vsync"`

	// Pipeline is "forward" or "deferred".
	Pipeline       string     `json:"pipeline" toml:"pipeline"`
	LightingModel  string     `json:"lightingModel" toml:"lighting_model"`
	DebugView      string     `json:"debugView" toml:"debug_view"`
	FrustumCulling bool       `json:"frustumCulling" toml:"frustum_culling"`
	ClearColor     [4]float32 `json:"clearColor" toml:"clear_color"`

	// Shadows
	EnableShadows    bool   `json:"enableShadows" toml:"enable_shadows"`
	ShadowResolution uint32 `json:"shadowResolution" toml:"shadow_resolution"`
	ShadowFilter     string `json:"shadowFilter" toml:"shadow_filter"`

	// Textures
	TextureMipmaps bool `json:"textureMipmaps" toml:"texture_mipmaps"`
	// GBufferPrecision is "f16" or "f32".
	GBufferPrecision string `json:"gbufferPrecision" toml:"gbuffer_precision"`
}

// DefaultRenderConfig returns sensible defaults for every field.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:            1280,
		Height:           720,
		Title:            "Prism3D",
		VSync:            true,
		Pipeline:         PipelineForward,
		LightingModel:    DefaultLightingModel().String(),
		DebugView:        DebugNone.String(),
		FrustumCulling:   true,
		ClearColor:       [4]float32{0, 0, 0, 1},
		EnableShadows:    true,
		ShadowResolution: 1024,
		ShadowFilter:     ShadowPCF.String(),
		TextureMipmaps:   true,
		GBufferPrecision: "f16",
	}
}

// HighQualityRenderConfig returns settings optimized for maximum visual quality
func HighQualityRenderConfig() RenderConfig {
	config := DefaultRenderConfig()
	config.ShadowResolution = 4096
	config.GBufferPrecision = "f32"
	return config
}

// PerformanceRenderConfig returns settings optimized for performance
func PerformanceRenderConfig() RenderConfig {
	config := DefaultRenderConfig()
	config.LightingModel = Blinn.String()
	config.ShadowResolution = 512
	config.ShadowFilter = ShadowBinary.String()
	config.TextureMipmaps = false
	return config
}

// LoadRenderConfig reads a .json or .toml file over the defaults and
// validates the result.
func LoadRenderConfig(path string) (RenderConfig, error) {
	config := DefaultRenderConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".toml":
		err = toml.Unmarshal(data, &config)
	default:
		return config, fmt.Errorf("%w: unsupported file type %q", ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return config, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return config, config.Validate()
}

// SaveRenderConfig writes config as json or toml depending on the extension.
func SaveRenderConfig(path string, config RenderConfig) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".toml":
		data, err = toml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported file type %q", ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first field that cannot be used.
func (c RenderConfig) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Pipeline != PipelineForward && c.Pipeline != PipelineDeferred {
		return fmt.Errorf("%w: pipeline %q", ErrInvalidConfig, c.Pipeline)
	}
	if c.EnableShadows && (c.ShadowResolution == 0 || c.ShadowResolution > 16384) {
		return fmt.Errorf("%w: shadow resolution %d", ErrInvalidConfig, c.ShadowResolution)
	}
	if _, err := c.Precision(); err != nil {
		return err
	}
	for _, check := range []func() error{
		func() error { _, err := c.Lighting(); return err },
		func() error { _, err := c.Debug(); return err },
		func() error { _, err := c.Shadow(); return err },
	} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Lighting converts LightingModel.
func (c RenderConfig) Lighting() (LightingModel, error) { return ParseLightingModel(c.LightingModel) }

// Debug converts DebugView.
func (c RenderConfig) Debug() (DebugType, error) { return ParseDebugType(c.DebugView) }

// Shadow converts ShadowFilter.
func (c RenderConfig) Shadow() (ShadowFilter, error) { return ParseShadowFilter(c.ShadowFilter) }

// Precision converts GBufferPrecision.
func (c RenderConfig) Precision() (DataType, error) {
	switch strings.ToLower(c.GBufferPrecision) {
	case "f16", "":
		return TypeF16, nil
	case "f32":
		return TypeF32, nil
	}
	return TypeF16, fmt.Errorf("%w: gbuffer precision %q", ErrInvalidConfig, c.GBufferPrecision)
}

// ApplyForward copies the forward settings of c to p.
func (c RenderConfig) ApplyForward(p *ForwardPipeline) {
	p.FrustumCulling = c.FrustumCulling
}

// ApplyDeferred copies the deferred settings of c to p. The G-buffer is
// reallocated at the next geometry pass when the precision changed.
func (c RenderConfig) ApplyDeferred(p *DeferredPipeline) error {
	model, err := c.Lighting()
	if err != nil {
		return err
	}
	debug, err := c.Debug()
	if err != nil {
		return err
	}
	precision, err := c.Precision()
	if err != nil {
		return err
	}
	p.LightingModel = model
	p.Debug = debug
	p.FrustumCulling = c.FrustumCulling
	if p.Precision != precision {
		p.Precision = precision
		p.Release()
	}
	return nil
}

// ClearState is the clear of the screen at the start of a frame.
func (c RenderConfig) ClearState() ClearState {
	return ClearColorDepth(c.ClearColor[0], c.ClearColor[1], c.ClearColor[2], c.ClearColor[3], 1)
}

// Sampling is the sampling of loaded textures.
func (c RenderConfig) Sampling() Sampling {
	s := DefaultSampling()
	if !c.TextureMipmaps {
		s.Mipmap = nil
	}
	return s
}
