package vrm

import "github.com/Faultbox/vrmviewer/internal/engine/scene"

// BoneName is a VRM humanoid bone name.
type BoneName string

// Humanoid bone names.
const (
	Hips          BoneName = "hips"
	Spine         BoneName = "spine"
	Chest         BoneName = "chest"
	UpperChest    BoneName = "upperChest"
	Neck          BoneName = "neck"
	Head          BoneName = "head"
	LeftEye       BoneName = "leftEye"
	RightEye      BoneName = "rightEye"
	Jaw           BoneName = "jaw"
	LeftShoulder  BoneName = "leftShoulder"
	LeftUpperArm  BoneName = "leftUpperArm"
	LeftLowerArm  BoneName = "leftLowerArm"
	LeftHand      BoneName = "leftHand"
	RightShoulder BoneName = "rightShoulder"
	RightUpperArm BoneName = "rightUpperArm"
	RightLowerArm BoneName = "rightLowerArm"
	RightHand     BoneName = "rightHand"
	LeftUpperLeg  BoneName = "leftUpperLeg"
	LeftLowerLeg  BoneName = "leftLowerLeg"
	LeftFoot      BoneName = "leftFoot"
	LeftToes      BoneName = "leftToes"
	RightUpperLeg BoneName = "rightUpperLeg"
	RightLowerLeg BoneName = "rightLowerLeg"
	RightFoot     BoneName = "rightFoot"
	RightToes     BoneName = "rightToes"
)

// Humanoid resolves humanoid bone names to scene nodes.
type Humanoid struct {
	bones map[BoneName]*scene.Node
}

func newHumanoid(def HumanoidDef, nodes []*scene.Node) *Humanoid {
	h := &Humanoid{bones: make(map[BoneName]*scene.Node, len(def.HumanBones))}
	for _, b := range def.HumanBones {
		if b.Node < 0 || b.Node >= len(nodes) {
			continue
		}
		// First mapping wins
		if _, ok := h.bones[b.Bone]; !ok {
			h.bones[b.Bone] = nodes[b.Node]
		}
	}
	return h
}

// BoneNode returns the node bound to name, or nil.
func (h *Humanoid) BoneNode(name BoneName) *scene.Node {
	if h == nil {
		return nil
	}
	return h.bones[name]
}

// Len returns the number of mapped bones.
func (h *Humanoid) Len() int {
	if h == nil {
		return 0
	}
	return len(h.bones)
}
