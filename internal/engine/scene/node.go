package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Euler is a rotation in radians applied in X, Y, Z order.
type Euler struct {
	X, Y, Z float32
}

// Quat returns the quaternion equivalent of e.
func (e Euler) Quat() mgl32.Quat {
	c1, s1 := cosSin(e.X / 2)
	c2, s2 := cosSin(e.Y / 2)
	c3, s3 := cosSin(e.Z / 2)

	return mgl32.Quat{
		W: c1*c2*c3 - s1*s2*s3,
		V: mgl32.Vec3{
			s1*c2*c3 + c1*s2*s3,
			c1*s2*c3 - s1*c2*s3,
			c1*c2*s3 + s1*s2*c3,
		},
	}
}

// EulerFromQuat decomposes q into XYZ angles.
func EulerFromQuat(q mgl32.Quat) Euler {
	m := q.Normalize().Mat4()
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	var e Euler
	e.Y = float32(math.Asin(float64(mgl32.Clamp(m13, -1, 1))))
	if abs32(m13) < 0.9999999 {
		e.X = atan2(-m23, m33)
		e.Z = atan2(-m12, m11)
	} else {
		// Gimbal lock
		e.X = atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// Node is a transform in the scene graph. The Euler rotation is authoritative;
// the quaternion is kept in sync with it.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Scale    mgl32.Vec3

	Parent   *Node
	Children []*Node

	rotation   Euler
	quaternion mgl32.Quat
	world      mgl32.Mat4
}

// NewNode creates a node with identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:       name,
		Scale:      mgl32.Vec3{1, 1, 1},
		quaternion: mgl32.QuatIdent(),
		world:      mgl32.Ident4(),
	}
}

// Rotation returns the Euler rotation.
func (n *Node) Rotation() Euler {
	return n.rotation
}

// SetRotation sets the Euler rotation and updates the quaternion.
func (n *Node) SetRotation(e Euler) {
	n.rotation = e
	n.quaternion = e.Quat()
}

// Quaternion returns the rotation as a quaternion.
func (n *Node) Quaternion() mgl32.Quat {
	return n.quaternion
}

// SetQuaternion sets the rotation from q and updates the Euler angles.
func (n *Node) SetQuaternion(q mgl32.Quat) {
	n.quaternion = q.Normalize()
	n.rotation = EulerFromQuat(n.quaternion)
}

// Add appends child, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.Parent != nil {
		child.Parent.remove(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Traverse calls fn on n and every descendant, parents first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Find returns the first node in the subtree with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) {
		if found == nil && c.Name == name {
			found = c
		}
	})
	return found
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := n.quaternion.Mat4()
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// SetLocalMatrix decomposes m into position, rotation and scale.
// Shear is discarded.
func (n *Node) SetLocalMatrix(m mgl32.Mat4) {
	n.Position = m.Col(3).Vec3()

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Det() < 0 {
		sx = -sx
	}
	n.Scale = mgl32.Vec3{sx, sy, sz}

	var rot mgl32.Mat3
	for i, s := range [3]float32{sx, sy, sz} {
		if s == 0 {
			s = 1
		}
		rot.SetCol(i, m.Col(i).Vec3().Mul(1/s))
	}
	n.SetQuaternion(mgl32.Mat4ToQuat(rot.Mat4()))
}

// UpdateWorldMatrix recomputes world matrices for n and its subtree.
func (n *Node) UpdateWorldMatrix() {
	if n.Parent != nil {
		n.world = n.Parent.world.Mul4(n.LocalMatrix())
	} else {
		n.world = n.LocalMatrix()
	}
	for _, c := range n.Children {
		c.UpdateWorldMatrix()
	}
}

// WorldMatrix returns the matrix computed by the last UpdateWorldMatrix.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	return n.world
}

// WorldPosition returns the translation part of the world matrix.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.world.Col(3).Vec3()
}

func cosSin(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(c), float32(s)
}

func atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
