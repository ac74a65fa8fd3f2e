package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Pick returns the world position of the closest surface of geometries under
// pixel, origin at the bottom left. ok is false when the pixel shows nothing.
//
// Positions are rendered into a single float texel; the camera viewport is
// shifted so that pixel lands on it.
func Pick(ctx *Context, camera *Camera, pixel mgl32.Vec2, geometries []Geometry) (position mgl32.Vec3, ok bool, err error) {
	texture, err := NewEmptyTexture2D(ctx, "pick", 1, 1, FormatRGBA, TypeF32, depthSampling())
	if err != nil {
		return mgl32.Vec3{}, false, fmt.Errorf("pick: %w", err)
	}
	defer texture.Release()
	depth, err := NewDepthRenderbuffer(ctx, 1, 1, Depth32F)
	if err != nil {
		return mgl32.Vec3{}, false, fmt.Errorf("pick: %w", err)
	}
	defer depth.Release()
	target, err := NewRenderTarget(ctx, texture.AsColorTarget(0), depth.AsDepthTarget())
	if err != nil {
		return mgl32.Vec3{}, false, fmt.Errorf("pick: %w", err)
	}
	defer target.Release()

	original := camera.Viewport()
	shifted := original
	shifted.X = original.X - int32(pixel.X())
	shifted.Y = original.Y - int32(pixel.Y())
	camera.SetViewport(shifted)
	defer camera.SetViewport(original)

	material := NewPositionMaterial()
	err = target.Write(ClearColorDepth(0, 0, 0, 0, 1), func() error {
		for _, g := range geometries {
			if !camera.InFrustum(g.AABB()) {
				continue
			}
			if err := RenderWithMaterial(material, g, camera, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mgl32.Vec3{}, false, fmt.Errorf("pick: %w", err)
	}
	texel, err := target.ReadColor()
	if err != nil {
		return mgl32.Vec3{}, false, fmt.Errorf("pick: %w", err)
	}
	if texel[3] <= 0 {
		return mgl32.Vec3{}, false, nil
	}
	return mgl32.Vec3{texel[0], texel[1], texel[2]}, true, nil
}
