package renderer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderConfigPresetsValidate(t *testing.T) {
	for name, config := range map[string]RenderConfig{
		"default":      DefaultRenderConfig(),
		"high quality": HighQualityRenderConfig(),
		"performance":  PerformanceRenderConfig(),
	} {
		if err := config.Validate(); err != nil {
			t.Errorf("%s config invalid: %v", name, err)
		}
	}
}

func TestRenderConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RenderConfig)
	}{
		{"zero width", func(c *RenderConfig) { c.Width = 0 }},
		{"unknown pipeline", func(c *RenderConfig) { c.Pipeline = "raytraced" }},
		{"zero shadow resolution", func(c *RenderConfig) { c.ShadowResolution = 0 }},
		{"unknown lighting model", func(c *RenderConfig) { c.LightingModel = "toon" }},
		{"unknown debug view", func(c *RenderConfig) { c.DebugView = "albedo" }},
		{"unknown shadow filter", func(c *RenderConfig) { c.ShadowFilter = "vsm" }},
		{"unknown precision", func(c *RenderConfig) { c.GBufferPrecision = "f64" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultRenderConfig()
			tt.modify(&config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	config := DefaultRenderConfig()
	config.EnableShadows = false
	config.ShadowResolution = 0
	if err := config.Validate(); err != nil {
		t.Errorf("Shadow resolution should not matter without shadows: %v", err)
	}
}

func TestLoadRenderConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	data := `
pipeline = "deferred"
lighting_model = "blinn"
debug_view = "normal"
shadow_resolution = 2048
gbuffer_precision = "f32"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadRenderConfig(path)
	if err != nil {
		t.Fatalf("LoadRenderConfig failed: %v", err)
	}
	if config.Pipeline != PipelineDeferred || config.ShadowResolution != 2048 {
		t.Errorf("Fields not loaded: %+v", config)
	}
	if config.Width != 1280 || config.Title != "Prism3D" {
		t.Error("Missing fields should keep their defaults")
	}

	pipeline := NewDeferredPipeline(nil)
	if err := config.ApplyDeferred(pipeline); err != nil {
		t.Fatalf("ApplyDeferred failed: %v", err)
	}
	if pipeline.LightingModel != Blinn || pipeline.Debug != DebugNormal || pipeline.Precision != TypeF32 {
		t.Errorf("Deferred settings not applied: %+v", pipeline)
	}
}

func TestRenderConfigJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.json")
	config := PerformanceRenderConfig()
	config.ClearColor = [4]float32{0.1, 0.2, 0.3, 1}
	if err := SaveRenderConfig(path, config); err != nil {
		t.Fatalf("SaveRenderConfig failed: %v", err)
	}
	loaded, err := LoadRenderConfig(path)
	if err != nil {
		t.Fatalf("LoadRenderConfig failed: %v", err)
	}
	if loaded != config {
		t.Errorf("Loaded %+v, want %+v", loaded, config)
	}
	if loaded.Sampling().Mipmap != nil {
		t.Error("Performance config should sample without mips")
	}
}

func TestLoadRenderConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadRenderConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	yaml := filepath.Join(dir, "render.yaml")
	if err := os.WriteFile(yaml, []byte("pipeline: forward"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRenderConfig(yaml); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for an unknown extension, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"pipeline": "sideways"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRenderConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for an invalid pipeline, got %v", err)
	}
}
