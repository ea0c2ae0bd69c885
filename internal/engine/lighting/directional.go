// Package lighting provides light sources for the viewer's shading.
package lighting

import "github.com/go-gl/mathgl/mgl32"

// DirectionalLight shines parallel rays from Position towards Target.
type DirectionalLight struct {
	Color     [3]float32 // RGB color (0-1 range)
	Intensity float32
	Position  mgl32.Vec3
	Target    mgl32.Vec3
}

// NewDirectionalLight creates a light with a 0xRRGGBB color, shining down
// from straight above the origin.
func NewDirectionalLight(hex uint32, intensity float32) *DirectionalLight {
	return &DirectionalLight{
		Color: [3]float32{
			float32((hex>>16)&0xff) / 255,
			float32((hex>>8)&0xff) / 255,
			float32(hex&0xff) / 255,
		},
		Intensity: intensity,
		Position:  mgl32.Vec3{0, 1, 0},
	}
}

// SetPosition places the light. Pass normalize to scale the position to unit length.
func (l *DirectionalLight) SetPosition(p mgl32.Vec3, normalize bool) {
	if normalize && p.Len() > 0 {
		p = p.Normalize()
	}
	l.Position = p
}

// Direction returns the unit vector pointing from the target towards the light.
func (l *DirectionalLight) Direction() mgl32.Vec3 {
	d := l.Position.Sub(l.Target)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

// Radiance returns color scaled by intensity.
func (l *DirectionalLight) Radiance() [3]float32 {
	return [3]float32{
		l.Color[0] * l.Intensity,
		l.Color[1] * l.Intensity,
		l.Color[2] * l.Intensity,
	}
}
