// Package vrm reads VRM 0.x avatars: glTF binaries carrying the "VRM"
// extension with humanoid bone mapping, metadata and spring bone settings.
package vrm

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

// ExtensionName is the glTF extension key of VRM 0.x documents.
const ExtensionName = "VRM"

func init() {
	gltf.RegisterExtension(ExtensionName, unmarshalExtension)
}

func unmarshalExtension(data []byte) (any, error) {
	ext := new(Extension)
	if err := json.Unmarshal(data, ext); err != nil {
		return nil, err
	}
	return ext, nil
}

// Extension is the document-level VRM extension object.
type Extension struct {
	ExporterVersion    string             `json:"exporterVersion,omitempty"`
	SpecVersion        string             `json:"specVersion,omitempty"`
	Meta               Meta               `json:"meta"`
	Humanoid           HumanoidDef        `json:"humanoid"`
	SecondaryAnimation SecondaryAnimation `json:"secondaryAnimation"`
}

// Meta describes the avatar and its license.
type Meta struct {
	Title              string `json:"title,omitempty"`
	Version            string `json:"version,omitempty"`
	Author             string `json:"author,omitempty"`
	ContactInformation string `json:"contactInformation,omitempty"`
	Reference          string `json:"reference,omitempty"`
	Texture            *int   `json:"texture,omitempty"`
	AllowedUserName    string `json:"allowedUserName,omitempty"`
	ViolentUsage       string `json:"violentUssageName,omitempty"`
	SexualUsage        string `json:"sexualUssageName,omitempty"`
	CommercialUsage    string `json:"commercialUssageName,omitempty"`
	OtherPermissionURL string `json:"otherPermissionUrl,omitempty"`
	LicenseName        string `json:"licenseName,omitempty"`
	OtherLicenseURL    string `json:"otherLicenseUrl,omitempty"`
}

// HumanoidDef maps humanoid bone names to node indices.
type HumanoidDef struct {
	HumanBones []HumanBoneDef `json:"humanBones"`
}

// HumanBoneDef binds one bone name to a node.
type HumanBoneDef struct {
	Bone BoneName `json:"bone"`
	Node int      `json:"node"`
}

// Vec3 is the VRM JSON vector form.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// SecondaryAnimation holds spring bone settings.
type SecondaryAnimation struct {
	BoneGroups     []BoneGroup     `json:"boneGroups"`
	ColliderGroups []ColliderGroup `json:"colliderGroups"`
}

// BoneGroup is a set of spring chains sharing physics parameters.
// Field names follow the file format, including its spelling of stiffness.
type BoneGroup struct {
	Comment        string  `json:"comment,omitempty"`
	Stiffness      float32 `json:"stiffiness"`
	GravityPower   float32 `json:"gravityPower"`
	GravityDir     Vec3    `json:"gravityDir"`
	DragForce      float32 `json:"dragForce"`
	Center         int     `json:"center"`
	HitRadius      float32 `json:"hitRadius"`
	Bones          []int   `json:"bones"`
	ColliderGroups []int   `json:"colliderGroups"`
}

// ColliderGroup is a set of spheres attached to a node.
type ColliderGroup struct {
	Node      int        `json:"node"`
	Colliders []Collider `json:"colliders"`
}

// Collider is a sphere in the local space of its group node.
type Collider struct {
	Offset Vec3    `json:"offset"`
	Radius float32 `json:"radius"`
}

// ExtensionOf returns the VRM extension of doc, or ErrNotVRM.
func ExtensionOf(doc *gltf.Document) (*Extension, error) {
	if doc == nil || doc.Extensions == nil {
		return nil, ErrNotVRM
	}
	switch v := doc.Extensions[ExtensionName].(type) {
	case *Extension:
		return v, nil
	case json.RawMessage:
		// Decoded before the extension was registered
		ext, err := unmarshalExtension(v)
		if err != nil {
			return nil, err
		}
		return ext.(*Extension), nil
	}
	return nil, ErrNotVRM
}
