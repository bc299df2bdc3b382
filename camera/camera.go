// Package camera turns a viewpoint (position, orientation, field of view)
// into the primary ray for a given pixel. It keeps the teacher's
// dirty-flag-cached-matrix pattern from scene/camera.go, generalized from
// feeding a rasterizer's view/projection uniforms to generating one ray
// per sample for the ray tracer's trace loop.
package camera

import (
	"math"

	pmath "povcore/math"
)

// Camera is a perspective pinhole camera: Position/Rotation define the
// viewpoint, FOV/AspectRatio the frustum. Forward/Right/Up are cached and
// recomputed lazily, mirroring scene.Camera's dirty-flag convention.
type Camera struct {
	Position    pmath.Vec3
	Rotation    pmath.Quaternion
	FOV         float64 // vertical field of view, radians
	AspectRatio float64

	forward, right, up pmath.Vec3
	dirty              bool
}

func New(fov, aspectRatio float64) *Camera {
	return &Camera{
		Position:    pmath.Vec3Zero,
		Rotation:    pmath.QuaternionIdentity(),
		FOV:         fov,
		AspectRatio: aspectRatio,
		dirty:       true,
	}
}

func (c *Camera) SetPosition(pos pmath.Vec3) {
	c.Position = pos
}

func (c *Camera) SetRotation(rot pmath.Quaternion) {
	c.Rotation = rot
	c.dirty = true
}

func (c *Camera) UpdateAspectRatio(width, height float64) {
	if height > 0 {
		c.AspectRatio = width / height
	}
}

// LookAt orients the camera at target, matching scene.Camera.LookAt's
// forward/right/up construction but expressed directly in basis vectors
// rather than a view matrix, since the ray generator only ever needs the
// three basis vectors, never a 4x4 view/projection pair.
func (c *Camera) LookAt(target, up pmath.Vec3) {
	forward := target.Sub(c.Position).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)
	c.forward, c.right, c.up = forward, right, trueUp
	c.dirty = false
}

func (c *Camera) updateBasis() {
	if !c.dirty {
		return
	}
	c.forward = c.Rotation.RotateVector(pmath.Vec3{X: 0, Y: 0, Z: -1})
	c.right = c.Rotation.RotateVector(pmath.Vec3{X: 1, Y: 0, Z: 0})
	c.up = c.Rotation.RotateVector(pmath.Vec3Up)
	c.dirty = false
}

func (c *Camera) Forward() pmath.Vec3 {
	c.updateBasis()
	return c.forward
}

func (c *Camera) Right() pmath.Vec3 {
	c.updateBasis()
	return c.right
}

func (c *Camera) Up() pmath.Vec3 {
	c.updateBasis()
	return c.up
}

// RayForPixel returns the primary-ray origin and (unit) direction for
// pixel (px,py) in an image of size (width,height), using a standard
// pinhole projection: pixel centers are sampled at +0.5 offsets, then
// mapped to [-1,1] normalized device coordinates.
func (c *Camera) RayForPixel(px, py, width, height int) (origin, direction pmath.Vec3) {
	c.updateBasis()

	ndcX := (2*(float64(px)+0.5)/float64(width) - 1) * c.AspectRatio
	ndcY := 1 - 2*(float64(py)+0.5)/float64(height)

	halfHeight := math.Tan(c.FOV / 2)
	ndcX *= halfHeight
	ndcY *= halfHeight

	dir := c.forward.Add(c.right.Mul(ndcX)).Add(c.up.Mul(ndcY))
	return c.Position, dir.Normalize()
}
