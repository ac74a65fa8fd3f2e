package renderer

import (
	"fmt"
	"strings"
)

// ApplyScreenEffect runs fragment once per pixel of viewport on the bound
// target. fragment may read "in vec2 uvs;" and the shared helpers. use binds
// the uniforms of the effect before the draw.
func ApplyScreenEffect(ctx *Context, fragment string, states RenderStates, viewport Viewport, use func(program *Program)) error {
	program, err := ctx.programs.GetOrCompile(fullscreenVertexSource, sharedSource+fragment)
	if err != nil {
		return fmt.Errorf("screen effect: %w", err)
	}
	if use != nil {
		use(program)
	}
	program.DrawArrays(states, viewport, 3)
	return nil
}

// applyCopyEffect draws color and depth, either of which may be nil, into
// viewport of the bound target.
func applyCopyEffect(ctx *Context, color ColorTexture, depth DepthTexture, viewport Viewport) error {
	var b strings.Builder
	states := RenderStates{DepthTest: DepthAlways}
	if color != nil {
		b.WriteString("#define USE_COLOR\n")
		b.WriteString(color.samplerSource())
		states.WriteMask.Red, states.WriteMask.Green = true, true
		states.WriteMask.Blue, states.WriteMask.Alpha = true, true
	}
	if depth != nil {
		b.WriteString("#define USE_DEPTH\n")
		b.WriteString(depth.depthSamplerSource())
		states.WriteMask.Depth = true
	}
	b.WriteString(copySource)
	return ApplyScreenEffect(ctx, b.String(), states, viewport, func(program *Program) {
		if color != nil {
			color.useSampler(program)
		}
		if depth != nil {
			depth.useDepthSampler(program)
		}
	})
}
