// Package camera provides the viewer's perspective camera and orbit controls.
package camera

import "github.com/go-gl/mathgl/mgl32"

// Perspective is a pinhole camera with a vertical field of view in degrees.
type Perspective struct {
	FOV    float32 // Vertical field of view (degrees)
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Up       mgl32.Vec3

	view mgl32.Mat4
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	c := &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl32.Vec3{0, 1, 0},
	}
	c.LookAt(mgl32.Vec3{0, 0, -1})
	return c
}

// SetPosition moves the camera without changing its view matrix until the
// next LookAt.
func (c *Perspective) SetPosition(x, y, z float32) {
	c.Position = mgl32.Vec3{x, y, z}
}

// LookAt orients the camera towards target.
func (c *Perspective) LookAt(target mgl32.Vec3) {
	c.view = mgl32.LookAtV(c.Position, target, c.Up)
}

// ViewMatrix returns the world-to-camera transform.
func (c *Perspective) ViewMatrix() mgl32.Mat4 {
	return c.view
}

// WorldMatrix returns the camera-to-world transform.
func (c *Perspective) WorldMatrix() mgl32.Mat4 {
	return c.view.Inv()
}

// ProjectionMatrix returns the perspective projection.
func (c *Perspective) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *Perspective) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.view)
}
