package main

import (
	"Prism3D/internal/loader"
	"Prism3D/internal/renderer"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidScene = errors.New("invalid scene")

// SceneData is the scene file read by the viewer.
type SceneData struct {
	Models []SceneModel `json:"models"`
	Lights []SceneLight `json:"lights"`
	Camera *SceneCamera `json:"camera,omitempty"`
	Skybox *SceneSkybox `json:"skybox,omitempty"`
}

type SceneModel struct {
	Name string `json:"name"`
	// Path is an OBJ file relative to the scene. Shape is used instead when
	// empty: cube, sphere, plane or heightfield.
	Path               string      `json:"path,omitempty"`
	Shape              string      `json:"shape,omitempty"`
	Position           [3]float32  `json:"position"`
	Rotation           [3]float32  `json:"rotation"` // degrees
	Scale              [3]float32  `json:"scale"`
	Albedo             *[4]float32 `json:"albedo,omitempty"`
	Metallic           *float32    `json:"metallic,omitempty"`
	Roughness          *float32    `json:"roughness,omitempty"`
	RecalculateNormals bool        `json:"recalculate_normals"`
	CastShadows        *bool       `json:"cast_shadows,omitempty"`
}

type SceneLight struct {
	Name string `json:"name"`
	// Mode is ambient, directional, point or spot.
	Mode      string     `json:"mode"`
	Position  [3]float32 `json:"position"`
	Direction [3]float32 `json:"direction"`
	Color     [3]float32 `json:"color"`
	// Temperature in kelvin replaces Color when set.
	Temperature float32 `json:"temperature,omitempty"`
	Intensity   float32 `json:"intensity"`
	// Range of point and spot lights. Zero means no attenuation.
	Range  float32 `json:"range,omitempty"`
	Cutoff float32 `json:"cutoff_degrees,omitempty"`
	// Environment makes an ambient light image based, lit by the skybox.
	Environment bool `json:"environment,omitempty"`
}

type SceneCamera struct {
	Position [3]float32 `json:"position"`
	Target   [3]float32 `json:"target"`
	FOV      float32    `json:"fov"` // degrees
	Near     float32    `json:"near,omitempty"`
	Far      float32    `json:"far,omitempty"`
}

type SceneSkybox struct {
	// Type is color or images.
	Type  string     `json:"type"`
	Color [3]float32 `json:"color"`
	// Images are the right, left, top, bottom, front and back faces.
	Images []string `json:"images,omitempty"`
}

// LoadScene reads a scene file and fills in defaults.
func LoadScene(path string) (*SceneData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scene SceneData
	if err := json.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScene, path, err)
	}
	scene.applyDefaults()
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scene, nil
}

// DefaultScene is a lit cube on a plane, shown when no scene file exists.
func DefaultScene() *SceneData {
	scene := &SceneData{
		Models: []SceneModel{
			{Name: "ground", Shape: "plane", Scale: [3]float32{1, 1, 1}},
			{Name: "cube", Shape: "cube", Position: [3]float32{0, 1, 0}},
		},
		Lights: []SceneLight{
			{Name: "sky", Mode: "ambient", Color: [3]float32{1, 1, 1}, Intensity: 0.2},
			{Name: "sun", Mode: "directional", Direction: [3]float32{-1, -2, -1}, Temperature: 5800, Intensity: 1.5},
		},
	}
	scene.applyDefaults()
	return scene
}

func (s *SceneData) applyDefaults() {
	for i := range s.Models {
		m := &s.Models[i]
		if m.Scale == [3]float32{} {
			m.Scale = [3]float32{1, 1, 1}
		}
		if m.Name == "" {
			m.Name = fmt.Sprintf("model%d", i)
		}
	}
	if s.Camera == nil {
		s.Camera = &SceneCamera{Position: [3]float32{0, 4, 10}}
	}
	if s.Camera.FOV == 0 {
		s.Camera.FOV = 60
	}
	if s.Camera.Near == 0 {
		s.Camera.Near = 0.1
	}
	if s.Camera.Far == 0 {
		s.Camera.Far = 500
	}
}

// Validate reports the first entry that cannot be built.
func (s *SceneData) Validate() error {
	for _, m := range s.Models {
		if m.Path == "" {
			switch m.Shape {
			case "cube", "sphere", "plane", "heightfield":
			default:
				return fmt.Errorf("%w: model %q has no path and shape %q", ErrInvalidScene, m.Name, m.Shape)
			}
		}
	}
	for _, l := range s.Lights {
		switch l.Mode {
		case "ambient", "point":
		case "directional", "spot":
			if l.Direction == [3]float32{} {
				return fmt.Errorf("%w: light %q has no direction", ErrInvalidScene, l.Name)
			}
		default:
			return fmt.Errorf("%w: light %q mode %q", ErrInvalidScene, l.Name, l.Mode)
		}
		if l.Environment && s.Skybox == nil {
			return fmt.Errorf("%w: light %q needs a skybox for its environment", ErrInvalidScene, l.Name)
		}
	}
	if c := s.Camera; c != nil && c.Position == c.Target {
		return fmt.Errorf("%w: camera position equals target", ErrInvalidScene)
	}
	if s.Skybox != nil {
		switch s.Skybox.Type {
		case "color":
		case "images":
			if len(s.Skybox.Images) != 6 {
				return fmt.Errorf("%w: skybox needs 6 images, got %d", ErrInvalidScene, len(s.Skybox.Images))
			}
		default:
			return fmt.Errorf("%w: skybox type %q", ErrInvalidScene, s.Skybox.Type)
		}
	}
	return nil
}

// Transform places the model in the world.
func (m SceneModel) Transform() mgl32.Mat4 {
	rotation := mgl32.AnglesToQuat(
		mgl32.DegToRad(m.Rotation[0]),
		mgl32.DegToRad(m.Rotation[1]),
		mgl32.DegToRad(m.Rotation[2]),
		mgl32.XYZ)
	return renderer.Transform(vec3(m.Position), rotation, vec3(m.Scale))
}

// Casts reports whether the model occludes shadow casting lights.
func (m SceneModel) Casts() bool { return m.CastShadows == nil || *m.CastShadows }

// Parts loads the model geometry with its materials, applying the material
// overrides of the scene.
func (m SceneModel) Parts(dir string) ([]loader.Part, error) {
	var parts []loader.Part
	if m.Path != "" {
		path := m.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		model, err := loader.LoadModel(path, loader.Options{RecalculateNormals: m.RecalculateNormals, MaxTextureSize: 2048})
		if err != nil {
			return nil, err
		}
		parts = model.Parts
	} else {
		mesh, err := shapeMesh(m.Shape)
		if err != nil {
			return nil, err
		}
		material := renderer.DefaultCPUMaterial()
		material.Name = m.Name
		parts = []loader.Part{{Mesh: mesh, Material: &material}}
	}
	for _, p := range parts {
		if m.Albedo != nil {
			p.Material.Albedo = mgl32.Vec4(*m.Albedo)
		}
		if m.Metallic != nil {
			p.Material.Metallic = *m.Metallic
		}
		if m.Roughness != nil {
			p.Material.Roughness = *m.Roughness
		}
	}
	return parts, nil
}

func shapeMesh(shape string) (*renderer.CPUMesh, error) {
	switch shape {
	case "cube":
		return renderer.CPUMeshCube(), nil
	case "sphere":
		return renderer.CPUMeshSphere(32), nil
	case "plane":
		return loader.LoadPlane(21, 1)
	case "heightfield":
		return loader.LoadHeightfield(loader.DefaultHeightfieldOptions())
	}
	return nil, fmt.Errorf("%w: shape %q", ErrInvalidScene, shape)
}

// Build creates the light. Shadow casting lights keep ctx for their maps.
// environment serves ambient lights asking for one and may be nil.
func (l SceneLight) Build(ctx *renderer.Context, environment *renderer.Environment) renderer.Light {
	color := vec3(l.Color)
	if l.Temperature > 0 {
		color = renderer.ColorFromTemperature(l.Temperature)
	}
	attenuation := renderer.NoAttenuation()
	if l.Range > 0 {
		attenuation = renderer.AttenuationForRange(l.Range)
	}
	switch l.Mode {
	case "ambient":
		if l.Environment && environment != nil {
			return renderer.NewAmbientLightWithEnvironment(l.Intensity, color, environment)
		}
		return renderer.NewAmbientLight(l.Intensity, color)
	case "directional":
		return renderer.NewDirectionalLight(ctx, l.Intensity, color, vec3(l.Direction))
	case "spot":
		cutoff := l.Cutoff
		if cutoff == 0 {
			cutoff = 45
		}
		return renderer.NewSpotLight(ctx, l.Intensity, color, vec3(l.Position), vec3(l.Direction), mgl32.DegToRad(cutoff), attenuation)
	}
	return renderer.NewPointLight(l.Intensity, color, vec3(l.Position), attenuation)
}

// Build creates the skybox. Image paths are relative to dir.
func (s SceneSkybox) Build(ctx *renderer.Context, dir string) (*renderer.Skybox, error) {
	if s.Type == "color" {
		return renderer.NewSolidColorSkybox(ctx, vec3(s.Color))
	}
	var sides [6]*renderer.CPUTexture
	for i, name := range s.Images {
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		texture, err := loader.LoadImage(name, 2048)
		if err != nil {
			return nil, fmt.Errorf("skybox: %w", err)
		}
		sides[i] = texture
	}
	return renderer.NewSkybox(ctx, sides)
}

func vec3(v [3]float32) mgl32.Vec3 { return mgl32.Vec3(v) }
