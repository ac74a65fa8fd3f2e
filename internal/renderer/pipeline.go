package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrPipelineBusy is returned when a pass starts while another pass of the
	// same pipeline is running.
	ErrPipelineBusy = errors.New("pipeline: a pass is already running")
	// ErrDeferredTransparency rejects transparent materials in the geometry pass.
	ErrDeferredTransparency = errors.New("deferred pipeline: transparent materials are not supported")
	// ErrIncompleteObject rejects a deferred object without geometry or material.
	ErrIncompleteObject = errors.New("deferred pipeline: object needs a geometry and a material")
	// ErrNoGeometryPass is returned by a deferred light pass that has no G-buffer to read.
	ErrNoGeometryPass = errors.New("deferred pipeline: light pass before geometry pass")
)

// PipelineState is the pass a pipeline is currently running.
type PipelineState int

const (
	StateIdle PipelineState = iota
	StateLightPass
	StateDepthPass
	StateGeometryPass
)

func (s PipelineState) String() string {
	switch s {
	case StateLightPass:
		return "light pass"
	case StateDepthPass:
		return "depth pass"
	case StateGeometryPass:
		return "geometry pass"
	}
	return "idle"
}

// PassStats counts the objects of the last pass.
type PassStats struct {
	Drawn  int
	Culled int
}

// passGuard moves a pipeline from Idle into one pass and back.
type passGuard struct {
	state PipelineState
	stats PassStats
}

func (g *passGuard) begin(state PipelineState) error {
	if g.state != StateIdle {
		return fmt.Errorf("%w: %s while in %s", ErrPipelineBusy, state, g.state)
	}
	g.state = state
	g.stats = PassStats{}
	return nil
}

func (g *passGuard) end() { g.state = StateIdle }

// State is the pass currently running, StateIdle between passes.
func (g *passGuard) State() PipelineState { return g.state }

// Stats describes the last pass.
func (g *passGuard) Stats() PassStats { return g.stats }

// atOrigo runs draw with the camera viewport moved to (0,0), for passes that
// render into textures of the viewport size.
func atOrigo(camera *Camera, draw func() error) error {
	original := camera.Viewport()
	if original.X == 0 && original.Y == 0 {
		return draw()
	}
	camera.SetViewport(NewViewportAtOrigo(original.Width, original.Height))
	defer camera.SetViewport(original)
	return draw()
}
