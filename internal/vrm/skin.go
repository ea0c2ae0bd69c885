package vrm

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vrmviewer/internal/engine/scene"
)

// Skin binds mesh vertices to joint nodes.
type Skin struct {
	Joints       []*scene.Node
	InverseBinds []mgl32.Mat4
}

// JointMatrices returns jointWorld * inverseBind for every joint. World
// matrices must be current.
func (s *Skin) JointMatrices() []mgl32.Mat4 {
	return s.AppendJointMatrices(make([]mgl32.Mat4, 0, len(s.Joints)))
}

// AppendJointMatrices is JointMatrices appending into dst.
func (s *Skin) AppendJointMatrices(dst []mgl32.Mat4) []mgl32.Mat4 {
	for i, j := range s.Joints {
		ib := mgl32.Ident4()
		if i < len(s.InverseBinds) {
			ib = s.InverseBinds[i]
		}
		dst = append(dst, j.WorldMatrix().Mul4(ib))
	}
	return dst
}
