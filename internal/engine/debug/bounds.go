package debug

import "github.com/go-gl/mathgl/mgl32"

// BoundsWireframe returns the 12 edges of an axis-aligned box as 24 line
// endpoints, expanded by padding on every side.
func BoundsWireframe(lo, hi mgl32.Vec3, padding float32) []mgl32.Vec3 {
	pad := mgl32.Vec3{padding, padding, padding}
	lo, hi = lo.Sub(pad), hi.Add(pad)

	corner := func(x, y, z bool) mgl32.Vec3 {
		c := lo
		if x {
			c[0] = hi[0]
		}
		if y {
			c[1] = hi[1]
		}
		if z {
			c[2] = hi[2]
		}
		return c
	}

	var lines []mgl32.Vec3
	for _, y := range []bool{false, true} {
		lines = append(lines,
			corner(false, y, false), corner(true, y, false),
			corner(true, y, false), corner(true, y, true),
			corner(true, y, true), corner(false, y, true),
			corner(false, y, true), corner(false, y, false),
		)
	}
	for _, x := range []bool{false, true} {
		for _, z := range []bool{false, true} {
			lines = append(lines, corner(x, false, z), corner(x, true, z))
		}
	}
	return lines
}
