// camera.go
package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionType is the kind of projection of a Camera.
type ProjectionType int

const (
	Perspective ProjectionType = iota
	Orthographic
)

// Camera uniform block layout: viewProjection, projection, view, position.
var cameraBlockSizes = []int{16, 16, 16, 3}

const (
	cameraBlockViewProjection = iota
	cameraBlockProjection
	cameraBlockView
	cameraBlockPosition
)

// Camera is a view and a projection of a viewport.
//
// All derived state (view, projection, the inverse used for screen rays, the
// frustum planes and the uniform block) is recomputed together by every
// mutator.
type Camera struct {
	ctx      *Context
	uniforms *UniformBuffer

	viewport       Viewport
	projectionType ProjectionType
	fovY           float32 // radians, perspective
	height         float32 // world units, orthographic
	zNear, zFar    float32

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	view       mgl32.Mat4
	projection mgl32.Mat4
	screen2ray mgl32.Mat4
	frustum    Frustum
}

func newCamera(ctx *Context, viewport Viewport) (*Camera, error) {
	c := &Camera{ctx: ctx, viewport: viewport}
	if ctx != nil {
		uniforms, err := NewUniformBuffer(ctx, cameraBlockSizes)
		if err != nil {
			return nil, fmt.Errorf("camera: %w", err)
		}
		c.uniforms = uniforms
	}
	return c, nil
}

// NewPerspectiveCamera returns a camera at position looking at target with a
// vertical field of view of fovY radians. A nil ctx gives a camera without a
// uniform block, usable for math only.
func NewPerspectiveCamera(ctx *Context, viewport Viewport, position, target, up mgl32.Vec3, fovY, zNear, zFar float32) (*Camera, error) {
	c, err := newCamera(ctx, viewport)
	if err != nil {
		return nil, err
	}
	c.projectionType = Perspective
	c.fovY, c.zNear, c.zFar = fovY, zNear, zFar
	c.position, c.target, c.up = position, target, up
	c.update()
	return c, nil
}

// NewOrthographicCamera returns a camera whose view volume is height world
// units tall and as wide as the viewport aspect requires.
func NewOrthographicCamera(ctx *Context, viewport Viewport, position, target, up mgl32.Vec3, height, zNear, zFar float32) (*Camera, error) {
	c, err := newCamera(ctx, viewport)
	if err != nil {
		return nil, err
	}
	c.projectionType = Orthographic
	c.height, c.zNear, c.zFar = height, zNear, zFar
	c.position, c.target, c.up = position, target, up
	c.update()
	return c, nil
}

// Release frees the uniform block.
func (c *Camera) Release() {
	if c.uniforms != nil {
		c.uniforms.Release()
		c.uniforms = nil
	}
}

func (c *Camera) update() {
	c.view = mgl32.LookAtV(c.position, c.target, c.up)
	aspect := c.viewport.Aspect()
	switch c.projectionType {
	case Orthographic:
		h := c.height * 0.5
		w := h * aspect
		c.projection = mgl32.Ortho(-w, w, -h, h, c.zNear, c.zFar)
	default:
		c.projection = mgl32.Perspective(c.fovY, aspect, c.zNear, c.zFar)
	}
	viewProjection := c.projection.Mul4(c.view)
	c.screen2ray = viewProjection.Inv()
	c.frustum = NewFrustum(viewProjection)

	if c.uniforms != nil {
		// Errors only come from a mismatched layout, which is fixed above.
		_ = c.uniforms.Update(cameraBlockViewProjection, viewProjection[:])
		_ = c.uniforms.Update(cameraBlockProjection, c.projection[:])
		_ = c.uniforms.Update(cameraBlockView, c.view[:])
		_ = c.uniforms.Update(cameraBlockPosition, c.position[:])
	}
}

// UniformBuffer returns the camera block bound as "Camera" in every program.
func (c *Camera) UniformBuffer() *UniformBuffer { return c.uniforms }

func (c *Camera) Viewport() Viewport             { return c.viewport }
func (c *Camera) ProjectionType() ProjectionType { return c.projectionType }
func (c *Camera) ZNear() float32                 { return c.zNear }
func (c *Camera) ZFar() float32                  { return c.zFar }
func (c *Camera) Position() mgl32.Vec3           { return c.position }
func (c *Camera) Target() mgl32.Vec3             { return c.target }
func (c *Camera) Up() mgl32.Vec3                 { return c.up }
func (c *Camera) View() mgl32.Mat4               { return c.view }
func (c *Camera) Projection() mgl32.Mat4         { return c.projection }
func (c *Camera) Frustum() Frustum               { return c.frustum }

// FovY is the vertical field of view in radians of a perspective camera.
func (c *Camera) FovY() float32 { return c.fovY }

// Height is the view volume height of an orthographic camera.
func (c *Camera) Height() float32 { return c.height }

func (c *Camera) ViewProjection() mgl32.Mat4 { return c.projection.Mul4(c.view) }

func (c *Camera) ViewDirection() mgl32.Vec3 { return c.target.Sub(c.position).Normalize() }

func (c *Camera) RightDirection() mgl32.Vec3 { return c.ViewDirection().Cross(c.up).Normalize() }

// InFrustum reports whether any part of box may be visible.
func (c *Camera) InFrustum(box AABB) bool { return c.frustum.IntersectsAABB(box) }

// SetView moves the camera to position, looking at target.
func (c *Camera) SetView(position, target, up mgl32.Vec3) {
	c.position, c.target, c.up = position, target, up
	c.update()
}

func (c *Camera) SetPerspectiveProjection(fovY, zNear, zFar float32) {
	c.projectionType = Perspective
	c.fovY, c.zNear, c.zFar = fovY, zNear, zFar
	c.update()
}

func (c *Camera) SetOrthographicProjection(height, zNear, zFar float32) {
	c.projectionType = Orthographic
	c.height, c.zNear, c.zFar = height, zNear, zFar
	c.update()
}

// SetViewport returns whether the viewport changed.
func (c *Camera) SetViewport(viewport Viewport) bool {
	if c.viewport == viewport {
		return false
	}
	c.viewport = viewport
	c.update()
	return true
}

// Translate moves position and target by change.
func (c *Camera) Translate(change mgl32.Vec3) {
	c.SetView(c.position.Add(change), c.target.Add(change), c.up)
}

// Pitch rotates the view direction around the right direction.
func (c *Camera) Pitch(delta float32) {
	c.rotate(delta, c.RightDirection(), true)
}

// Yaw rotates the view direction around the up direction.
func (c *Camera) Yaw(delta float32) {
	c.rotate(delta, c.up, false)
}

// Roll rotates the up direction around the view direction.
func (c *Camera) Roll(delta float32) {
	rotation := mgl32.HomogRotate3D(delta, c.ViewDirection())
	c.SetView(c.position, c.target, mgl32.TransformNormal(c.up, rotation).Normalize())
}

func (c *Camera) rotate(angle float32, axis mgl32.Vec3, rotateUp bool) {
	rotation := mgl32.HomogRotate3D(angle, axis)
	direction := mgl32.TransformNormal(c.target.Sub(c.position), rotation)
	up := c.up
	if rotateUp {
		up = mgl32.TransformNormal(up, rotation).Normalize()
	}
	c.SetView(c.position, c.position.Add(direction), up)
}

// RotateAroundWithFixedUp orbits point by x and y while keeping the up
// direction. Rotations that would align the view direction with up are
// ignored.
func (c *Camera) RotateAroundWithFixedUp(point mgl32.Vec3, x, y float32) {
	toPoint := point.Sub(c.position)
	dir := toPoint.Normalize()
	right := dir.Cross(c.up).Normalize()
	up := right.Cross(dir)
	newDir := toPoint.Add(right.Mul(x)).Sub(up.Mul(y)).Normalize()
	if abs32(newDir.Dot(c.up)) >= 0.999 {
		return
	}
	rotation := mgl32.QuatBetweenVectors(dir, newDir).Mat4()
	position := mgl32.TransformCoordinate(c.position.Sub(point), rotation).Add(point)
	target := mgl32.TransformCoordinate(c.target.Sub(point), rotation).Add(point)
	c.SetView(position, target, c.up)
}

// ZoomTowards moves delta closer to point, keeping the distance within
// [minDistance, maxDistance]. Orthographic cameras scale their height along.
func (c *Camera) ZoomTowards(point mgl32.Vec3, delta, minDistance, maxDistance float32) {
	toPoint := point.Sub(c.position)
	distance := toPoint.Len()
	if distance == 0 {
		return
	}
	newDistance := clamp(distance-delta, minDistance, maxDistance)
	direction := toPoint.Mul(1 / distance)
	position := point.Sub(direction.Mul(newDistance))
	if c.projectionType == Orthographic {
		c.height *= newDistance / distance
	}
	c.SetView(position, position.Add(c.target.Sub(c.position)), c.up)
}

// UVCoordinatesAtPixel maps a pixel, origin at the bottom left of the
// target, to [0,1]^2 over the viewport.
func (c *Camera) UVCoordinatesAtPixel(pixel mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		(pixel.X() - float32(c.viewport.X)) / float32(c.viewport.Width),
		(pixel.Y() - float32(c.viewport.Y)) / float32(c.viewport.Height),
	}
}

func (c *Camera) unproject(uv mgl32.Vec2, depth float32) mgl32.Vec3 {
	ndc := mgl32.Vec4{uv.X()*2 - 1, uv.Y()*2 - 1, depth, 1}
	p := c.screen2ray.Mul4x1(ndc)
	return p.Vec3().Mul(1 / p.W())
}

// PositionAtPixel is the origin of the ray through pixel: the camera position
// for perspective cameras, a point on the near plane for orthographic ones.
func (c *Camera) PositionAtPixel(pixel mgl32.Vec2) mgl32.Vec3 {
	if c.projectionType == Perspective {
		return c.position
	}
	return c.unproject(c.UVCoordinatesAtPixel(pixel), -1)
}

// ViewDirectionAtPixel is the normalized direction of the ray through pixel.
func (c *Camera) ViewDirectionAtPixel(pixel mgl32.Vec2) mgl32.Vec3 {
	if c.projectionType == Orthographic {
		return c.ViewDirection()
	}
	uv := c.UVCoordinatesAtPixel(pixel)
	return c.unproject(uv, 1).Sub(c.unproject(uv, -1)).Normalize()
}

// RayAtPixel returns the world space ray through pixel.
func (c *Camera) RayAtPixel(pixel mgl32.Vec2) Ray {
	return Ray{Origin: c.PositionAtPixel(pixel), Direction: c.ViewDirectionAtPixel(pixel)}
}

// PixelAtPosition projects a world position to pixel coordinates, origin at
// the bottom left of the target.
func (c *Camera) PixelAtPosition(position mgl32.Vec3) mgl32.Vec2 {
	clip := c.ViewProjection().Mul4x1(position.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	return mgl32.Vec2{
		float32(c.viewport.X) + (ndc.X()*0.5+0.5)*float32(c.viewport.Width),
		float32(c.viewport.Y) + (ndc.Y()*0.5+0.5)*float32(c.viewport.Height),
	}
}
