package vrm

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vrmviewer/internal/engine/scene"
)

// leafTailLength is the tail distance assumed for joints without children.
const leafTailLength = 0.07

// SpringCollider is a sphere attached to a node.
type SpringCollider struct {
	Node   *scene.Node
	Offset mgl32.Vec3
	Radius float32
}

// worldCenter returns the sphere center in world space.
func (c *SpringCollider) worldCenter() mgl32.Vec3 {
	return mgl32.TransformCoordinate(c.Offset, c.Node.WorldMatrix())
}

// SpringJoint simulates one bone swinging its tail.
type SpringJoint struct {
	Bone *scene.Node

	Stiffness    float32
	GravityPower float32
	GravityDir   mgl32.Vec3
	DragForce    float32
	HitRadius    float32
	Colliders    []*SpringCollider

	initialRotation mgl32.Quat
	initialLocal    mgl32.Mat4
	localTail       mgl32.Vec3 // Tail in bone local space
	boneAxis        mgl32.Vec3
	length          float32

	currentTail mgl32.Vec3
	prevTail    mgl32.Vec3
}

func newSpringJoint(bone *scene.Node) *SpringJoint {
	j := &SpringJoint{
		Bone:            bone,
		initialRotation: bone.Quaternion(),
		initialLocal:    bone.LocalMatrix(),
	}
	if len(bone.Children) > 0 {
		j.localTail = bone.Children[0].Position
	} else if bone.Position.Len() > 0 {
		j.localTail = bone.Position.Normalize().Mul(leafTailLength)
	} else {
		j.localTail = mgl32.Vec3{0, leafTailLength, 0}
	}
	if j.localTail.Len() > 0 {
		j.boneAxis = j.localTail.Normalize()
	} else {
		j.boneAxis = mgl32.Vec3{0, 1, 0}
	}
	return j
}

// reset restores the rest rotation and places the tail at rest.
func (j *SpringJoint) reset() {
	j.Bone.SetQuaternion(j.initialRotation)
	j.Bone.UpdateWorldMatrix()

	world := j.Bone.WorldMatrix()
	j.currentTail = mgl32.TransformCoordinate(j.localTail, world)
	j.prevTail = j.currentTail
	j.length = j.currentTail.Sub(j.Bone.WorldPosition()).Len()
}

func (j *SpringJoint) update(dt float32) {
	parentWorld := mgl32.Ident4()
	if j.Bone.Parent != nil {
		parentWorld = j.Bone.Parent.WorldMatrix()
	}
	parentRot := mgl32.Mat4ToQuat(normalizedRotation(parentWorld))

	// Rest world position of the bone with its current parent
	worldPos := parentWorld.Mul4(j.initialLocal).Col(3).Vec3()

	inertia := j.currentTail.Sub(j.prevTail).Mul(1 - j.DragForce)
	stiffness := parentRot.Mul(j.initialRotation).Rotate(j.boneAxis).Mul(j.Stiffness * dt)
	external := j.GravityDir.Mul(j.GravityPower * dt)

	next := j.currentTail.Add(inertia).Add(stiffness).Add(external)
	next = worldPos.Add(safeNormalize(next.Sub(worldPos)).Mul(j.length))

	for _, c := range j.Colliders {
		center := c.worldCenter()
		r := j.HitRadius + c.Radius
		if next.Sub(center).Len() <= r {
			normal := safeNormalize(next.Sub(center))
			onSurface := center.Add(normal.Mul(r))
			next = worldPos.Add(safeNormalize(onSurface.Sub(worldPos)).Mul(j.length))
		}
	}

	j.prevTail = j.currentTail
	j.currentTail = next

	// Rotate the rest axis onto the new tail direction in parent-rest space
	toLocal := parentWorld.Mul4(j.initialLocal).Inv()
	to := safeNormalize(mgl32.TransformCoordinate(next, toLocal))
	rot := mgl32.QuatBetweenVectors(j.boneAxis, to)

	j.Bone.SetQuaternion(j.initialRotation.Mul(rot))
	j.Bone.UpdateWorldMatrix()
}

// SpringBoneManager drives every spring joint of an avatar.
type SpringBoneManager struct {
	Joints []*SpringJoint
	root   *scene.Node
}

func newSpringBoneManager(def SecondaryAnimation, nodes []*scene.Node, root *scene.Node) *SpringBoneManager {
	m := &SpringBoneManager{root: root}

	groups := make([][]*SpringCollider, len(def.ColliderGroups))
	for i, g := range def.ColliderGroups {
		if g.Node < 0 || g.Node >= len(nodes) {
			continue
		}
		for _, c := range g.Colliders {
			groups[i] = append(groups[i], &SpringCollider{
				Node: nodes[g.Node],
				// Stored in a left-handed frame
				Offset: mgl32.Vec3{c.Offset.X, c.Offset.Y, -c.Offset.Z},
				Radius: c.Radius,
			})
		}
	}

	seen := make(map[*scene.Node]bool)
	for _, bg := range def.BoneGroups {
		var colliders []*SpringCollider
		for _, gi := range bg.ColliderGroups {
			if gi >= 0 && gi < len(groups) {
				colliders = append(colliders, groups[gi]...)
			}
		}
		gravity := mgl32.Vec3{bg.GravityDir.X, bg.GravityDir.Y, bg.GravityDir.Z}

		for _, bi := range bg.Bones {
			if bi < 0 || bi >= len(nodes) {
				continue
			}
			nodes[bi].Traverse(func(n *scene.Node) {
				if seen[n] {
					return
				}
				seen[n] = true
				j := newSpringJoint(n)
				j.Stiffness = bg.Stiffness
				j.GravityPower = bg.GravityPower
				j.GravityDir = gravity
				j.DragForce = bg.DragForce
				j.HitRadius = bg.HitRadius
				j.Colliders = colliders
				m.Joints = append(m.Joints, j)
			})
		}
	}
	return m
}

// Reset restores every joint's rest rotation and tail.
func (m *SpringBoneManager) Reset() {
	if m == nil {
		return
	}
	if m.root != nil {
		m.root.UpdateWorldMatrix()
	}
	for _, j := range m.Joints {
		j.reset()
	}
}

// Update advances the simulation by dt seconds. Joints are visited parents
// first so children see their parent's new pose.
func (m *SpringBoneManager) Update(dt float32) {
	if m == nil || dt <= 0 {
		return
	}
	if m.root != nil {
		m.root.UpdateWorldMatrix()
	}
	for _, j := range m.Joints {
		j.update(dt)
	}
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

// normalizedRotation strips scale from the upper 3x3 of m.
func normalizedRotation(m mgl32.Mat4) mgl32.Mat4 {
	var r mgl32.Mat3
	for i := 0; i < 3; i++ {
		r.SetCol(i, safeNormalize(m.Col(i).Vec3()))
	}
	return r.Mat4()
}
