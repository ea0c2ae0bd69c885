package vrm

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/vrmviewer/internal/engine/scene"
)

// MeshInstance is a mesh placed at a node, optionally skinned.
type MeshInstance struct {
	Node *scene.Node
	Mesh *Mesh
	Skin *Skin // nil for rigid meshes
}

// Avatar is a VRM model converted to a scene graph.
type Avatar struct {
	Meta        Meta
	Root        *scene.Node
	Nodes       []*scene.Node // Indexed like the document nodes
	Meshes      []MeshInstance
	Materials   []Material
	Images      []image.Image
	Humanoid    *Humanoid
	SpringBones *SpringBoneManager
}

// FromDocument converts a decoded document without mesh passes.
func FromDocument(doc *gltf.Document) (*Avatar, error) {
	if _, err := ExtensionOf(doc); err != nil {
		return nil, err
	}
	m, err := ReadModel(doc, "", nil)
	if err != nil {
		return nil, err
	}
	return FromModel(m)
}

// FromModel builds the avatar scene graph from a model.
func FromModel(m *Model) (*Avatar, error) {
	ext, err := ExtensionOf(m.Doc)
	if err != nil {
		return nil, err
	}
	doc := m.Doc

	av := &Avatar{
		Meta:      ext.Meta,
		Root:      scene.NewNode("VRM"),
		Nodes:     make([]*scene.Node, len(doc.Nodes)),
		Materials: m.Materials,
		Images:    m.Images,
	}

	for i, n := range doc.Nodes {
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node%d", i)
		}
		node := scene.NewNode(name)
		applyTransform(node, n)
		av.Nodes[i] = node
	}

	hasParent := make([]bool, len(doc.Nodes))
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(doc.Nodes) || c == i {
				return nil, errors.Errorf("node %d: invalid child %d", i, c)
			}
			if hasParent[c] {
				return nil, errors.Errorf("node %d has more than one parent", c)
			}
			hasParent[c] = true
			av.Nodes[i].Add(av.Nodes[c])
		}
	}

	for _, i := range sceneRoots(doc, hasParent) {
		av.Root.Add(av.Nodes[i])
	}

	skins := make([]*Skin, len(m.Skins))
	for i, sd := range m.Skins {
		s := &Skin{InverseBinds: sd.InverseBinds}
		for _, j := range sd.Joints {
			if j < 0 || j >= len(av.Nodes) {
				return nil, errors.Errorf("skin %d: joint node %d out of range", i, j)
			}
			s.Joints = append(s.Joints, av.Nodes[j])
		}
		skins[i] = s
	}

	for i, n := range doc.Nodes {
		if n.Mesh == nil || *n.Mesh < 0 || *n.Mesh >= len(m.Meshes) {
			continue
		}
		inst := MeshInstance{Node: av.Nodes[i], Mesh: m.Meshes[*n.Mesh]}
		if n.Skin != nil && *n.Skin >= 0 && *n.Skin < len(skins) {
			inst.Skin = skins[*n.Skin]
		}
		av.Meshes = append(av.Meshes, inst)
	}

	av.Humanoid = newHumanoid(ext.Humanoid, av.Nodes)

	av.Root.UpdateWorldMatrix()
	av.SpringBones = newSpringBoneManager(ext.SecondaryAnimation, av.Nodes, av.Root)

	return av, nil
}

// sceneRoots returns the root nodes of the default scene, falling back to
// every parentless node.
func sceneRoots(doc *gltf.Document, hasParent []bool) []int {
	si := 0
	if doc.Scene != nil {
		si = *doc.Scene
	}
	if si >= 0 && si < len(doc.Scenes) && len(doc.Scenes[si].Nodes) > 0 {
		var roots []int
		for _, n := range doc.Scenes[si].Nodes {
			if n >= 0 && n < len(doc.Nodes) && !hasParent[n] {
				roots = append(roots, n)
			}
		}
		return roots
	}

	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// applyTransform copies the node transform. A non-identity matrix wins over
// TRS; zero-valued rotation and scale mean the glTF defaults.
func applyTransform(dst *scene.Node, n *gltf.Node) {
	var m mgl32.Mat4
	zero, ident := true, true
	id := mgl32.Ident4()
	for i, v := range n.Matrix {
		m[i] = float32(v)
		if v != 0 {
			zero = false
		}
		if m[i] != id[i] {
			ident = false
		}
	}
	if !zero && !ident {
		dst.SetLocalMatrix(m)
		return
	}

	dst.Position = mgl32.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])}

	r := n.Rotation
	if r != [4]float64{} {
		dst.SetQuaternion(mgl32.Quat{
			W: float32(r[3]),
			V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
		})
	}

	s := n.Scale
	if s != [3]float64{} {
		dst.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	}
}
