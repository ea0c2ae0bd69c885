package vrm

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds returns the world-space axis-aligned box around every mesh vertex in
// its current pose. ok is false when the avatar has no vertices. World
// matrices must be current.
func (a *Avatar) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	inf := float32(math.Inf(1))
	lo = mgl32.Vec3{inf, inf, inf}
	hi = mgl32.Vec3{-inf, -inf, -inf}

	var joints []mgl32.Mat4
	for _, inst := range a.Meshes {
		world := inst.Node.WorldMatrix()
		joints = joints[:0]
		if inst.Skin != nil {
			joints = inst.Skin.AppendJointMatrices(joints)
		}

		for _, prim := range inst.Mesh.Primitives {
			skinned := len(joints) > 0 && prim.Skinned()
			for v, pos := range prim.Positions {
				p := mgl32.Vec4{pos[0], pos[1], pos[2], 1}
				if skinned {
					p = skinVertex(p, prim.Joints[v], prim.Weights[v], joints)
				} else {
					p = world.Mul4x1(p)
				}
				for i := 0; i < 3; i++ {
					lo[i] = min(lo[i], p[i])
					hi[i] = max(hi[i], p[i])
				}
				ok = true
			}
		}
	}
	return lo, hi, ok
}

// skinVertex blends p by up to four weighted joint matrices. Out of range
// joints are ignored.
func skinVertex(p mgl32.Vec4, joints [4]uint16, weights [4]float32, mats []mgl32.Mat4) mgl32.Vec4 {
	var out mgl32.Vec4
	var total float32
	for k := 0; k < 4; k++ {
		w := weights[k]
		if w == 0 || int(joints[k]) >= len(mats) {
			continue
		}
		out = out.Add(mats[joints[k]].Mul4x1(p).Mul(w))
		total += w
	}
	if total == 0 {
		return p
	}
	return out.Mul(1 / total)
}
