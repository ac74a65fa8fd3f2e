package renderer

import (
	_ "embed"
)

// =============================================================
//
//	Shader sources
//
// =============================================================

var (
	//go:embed shaders/mesh.vert
	meshVertexSource string
	//go:embed shaders/fullscreen.vert
	fullscreenVertexSource string
	//go:embed shaders/skybox.vert
	skyboxVertexSource string

	//go:embed shaders/shared.frag
	sharedSource string
	//go:embed shaders/light_shared.frag
	lightSharedSource string
	//go:embed shaders/ibl_shared.frag
	iblSharedSource string

	//go:embed shaders/color_material.frag
	colorMaterialSource string
	//go:embed shaders/physical_material.frag
	physicalMaterialSource string
	//go:embed shaders/deferred_physical_material.frag
	deferredPhysicalMaterialSource string
	//go:embed shaders/depth_material.frag
	depthMaterialSource string
	//go:embed shaders/normal_material.frag
	normalMaterialSource string
	//go:embed shaders/position_material.frag
	positionMaterialSource string
	//go:embed shaders/uv_material.frag
	uvMaterialSource string
	//go:embed shaders/orm_material.frag
	ormMaterialSource string
	//go:embed shaders/skybox_material.frag
	skyboxMaterialSource string

	//go:embed shaders/deferred_lighting.frag
	deferredLightingSource string
	//go:embed shaders/deferred_debug.frag
	deferredDebugSource string
	//go:embed shaders/copy.frag
	copySource string
	//go:embed shaders/irradiance.frag
	irradianceSource string
	//go:embed shaders/prefilter.frag
	prefilterSource string
	//go:embed shaders/brdf.frag
	brdfSource string
)
