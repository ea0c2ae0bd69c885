package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// polarEpsilon keeps the polar angle away from the poles.
const polarEpsilon = 1e-6

// OrbitControls orbits a Perspective camera around Target.
// Input handlers accumulate deltas; Update applies them.
type OrbitControls struct {
	Camera *Perspective
	Target mgl32.Vec3

	// Constraints
	MinDistance        float32
	MaxDistance        float32
	MinPolarAngle      float32
	MaxPolarAngle      float32
	ScreenSpacePanning bool

	// Sensitivity
	RotateSpeed float32
	PanSpeed    float32
	ZoomSpeed   float32

	thetaDelta float32
	phiDelta   float32
	scale      float32
	panOffset  mgl32.Vec3
}

// NewOrbitControls creates controls for cam with the target at the origin.
func NewOrbitControls(cam *Perspective) *OrbitControls {
	return &OrbitControls{
		Camera:             cam,
		MinDistance:        0,
		MaxDistance:        float32(math.Inf(1)),
		MinPolarAngle:      0,
		MaxPolarAngle:      math.Pi,
		ScreenSpacePanning: true,
		RotateSpeed:        1,
		PanSpeed:           1,
		ZoomSpeed:          1,
		scale:              1,
	}
}

// Spherical returns the camera offset from the target as radius, polar angle
// (from +Y) and azimuth (around Y from +Z).
func (o *OrbitControls) Spherical() (radius, phi, theta float32) {
	offset := o.Camera.Position.Sub(o.Target)
	radius = offset.Len()
	if radius == 0 {
		return 0, 0, 0
	}
	theta = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	phi = float32(math.Acos(float64(mgl32.Clamp(offset.Y()/radius, -1, 1))))
	return radius, phi, theta
}

// HandleDrag rotates by a pointer drag of (dx, dy) pixels on a viewport of
// the given height.
func (o *OrbitControls) HandleDrag(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	o.thetaDelta -= 2 * math.Pi * dx / viewportHeight * o.RotateSpeed
	o.phiDelta -= 2 * math.Pi * dy / viewportHeight * o.RotateSpeed
}

// HandlePan moves the target by a pointer drag of (dx, dy) pixels.
func (o *OrbitControls) HandlePan(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	offset := o.Camera.Position.Sub(o.Target)
	targetDistance := offset.Len() * float32(math.Tan(float64(mgl32.DegToRad(o.Camera.FOV)/2)))

	world := o.Camera.WorldMatrix()
	right := world.Col(0).Vec3()

	left := right.Mul(-2 * dx * targetDistance / viewportHeight * o.PanSpeed)

	var up mgl32.Vec3
	if o.ScreenSpacePanning {
		up = world.Col(1).Vec3()
	} else {
		up = o.Camera.Up.Cross(right)
	}
	up = up.Mul(2 * dy * targetDistance / viewportHeight * o.PanSpeed)

	o.panOffset = o.panOffset.Add(left).Add(up)
}

// HandleZoom dollies towards the target for positive delta and away for negative.
func (o *OrbitControls) HandleZoom(delta float32) {
	if delta == 0 {
		return
	}
	step := float32(math.Pow(0.95, float64(o.ZoomSpeed)))
	if delta > 0 {
		o.scale *= step
	} else {
		o.scale /= step
	}
}

// Update applies pending input and re-aims the camera at the target.
func (o *OrbitControls) Update() {
	radius, phi, theta := o.Spherical()

	theta += o.thetaDelta
	phi += o.phiDelta
	phi = clamp(phi, o.MinPolarAngle, o.MaxPolarAngle)
	phi = clamp(phi, polarEpsilon, math.Pi-polarEpsilon)

	radius *= o.scale
	radius = clamp(radius, o.MinDistance, o.MaxDistance)

	o.Target = o.Target.Add(o.panOffset)

	sinPhi := float32(math.Sin(float64(phi)))
	offset := mgl32.Vec3{
		radius * sinPhi * float32(math.Sin(float64(theta))),
		radius * float32(math.Cos(float64(phi))),
		radius * sinPhi * float32(math.Cos(float64(theta))),
	}
	o.Camera.Position = o.Target.Add(offset)
	o.Camera.LookAt(o.Target)

	o.thetaDelta = 0
	o.phiDelta = 0
	o.scale = 1
	o.panOffset = mgl32.Vec3{}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
