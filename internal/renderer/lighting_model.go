package renderer

import (
	"fmt"
	"strings"
)

// NormalDistribution is the microfacet distribution of the Cook-Torrance model.
type NormalDistribution int

const (
	DistributionTrowbridgeReitzGGX NormalDistribution = iota
	DistributionBeckmann
	DistributionBlinn
)

// GeometryFunction is the masking-shadowing term of the Cook-Torrance model.
type GeometryFunction int

const (
	GeometrySmithSchlickGGX GeometryFunction = iota
)

type lightingKind int

const (
	kindPhong lightingKind = iota
	kindBlinn
	kindCook
)

// LightingModel selects the BRDF every light contribution is computed with.
type LightingModel struct {
	kind         lightingKind
	Distribution NormalDistribution
	Geometry     GeometryFunction
}

var (
	Phong = LightingModel{kind: kindPhong}
	Blinn = LightingModel{kind: kindBlinn}
)

// Cook returns the Cook-Torrance model with the given terms.
func Cook(distribution NormalDistribution, geometry GeometryFunction) LightingModel {
	return LightingModel{kind: kindCook, Distribution: distribution, Geometry: geometry}
}

// DefaultLightingModel is Cook-Torrance with GGX and Smith-Schlick.
func DefaultLightingModel() LightingModel {
	return Cook(DistributionTrowbridgeReitzGGX, GeometrySmithSchlickGGX)
}

// shaderDefines is the header that selects the BRDF branch in light_shared.
func (m LightingModel) shaderDefines() string {
	switch m.kind {
	case kindPhong:
		return "#define PHONG\n"
	case kindBlinn:
		return "#define BLINN\n"
	}
	var b strings.Builder
	b.WriteString("#define COOK\n")
	switch m.Distribution {
	case DistributionBeckmann:
		b.WriteString("#define COOK_BECKMANN\n")
	case DistributionBlinn:
		b.WriteString("#define COOK_BLINN\n")
	default:
		b.WriteString("#define COOK_GGX\n")
	}
	b.WriteString("#define SMITH_SCHLICK_GGX\n")
	return b.String()
}

func (m LightingModel) String() string {
	switch m.kind {
	case kindPhong:
		return "phong"
	case kindBlinn:
		return "blinn"
	}
	switch m.Distribution {
	case DistributionBeckmann:
		return "cook-beckmann"
	case DistributionBlinn:
		return "cook-blinn"
	}
	return "cook-ggx"
}

// ParseLightingModel accepts the names produced by String, plus "cook" for the
// default Cook-Torrance variant.
func ParseLightingModel(name string) (LightingModel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "phong":
		return Phong, nil
	case "blinn":
		return Blinn, nil
	case "cook", "cook-ggx", "":
		return DefaultLightingModel(), nil
	case "cook-beckmann":
		return Cook(DistributionBeckmann, GeometrySmithSchlickGGX), nil
	case "cook-blinn":
		return Cook(DistributionBlinn, GeometrySmithSchlickGGX), nil
	}
	return LightingModel{}, fmt.Errorf("unknown lighting model %q", name)
}
