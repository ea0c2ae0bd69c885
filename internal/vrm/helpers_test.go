package vrm

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// recorder collects Tracker calls.
type recorder struct {
	calls []string
}

func (r *recorder) ItemStart(url string)            { r.calls = append(r.calls, "start "+url) }
func (r *recorder) ItemEnd(url string)              { r.calls = append(r.calls, "end "+url) }
func (r *recorder) ItemError(url string, err error) { r.calls = append(r.calls, "error "+url) }

func toArray(m mgl32.Mat4) [4][4]float32 {
	var out [4][4]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col][row] = m[col*4+row]
		}
	}
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// testDocument builds a small skinned VRM:
//
//	0 Armature
//	  1 Hips (0,1,0)
//	    2 Spine (0,0.2,0)
//	      3 Hair (0,0.3,0)
//	        4 HairTip (0,0,-0.2)
//	5 Body  mesh 0, skin 0 (joints 1..4)
//
// Vertex 1 is referenced by no index and is the only vertex weighting the
// Hair and HairTip joints.
func testDocument(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()

	positions := modeler.WritePosition(doc, [][3]float32{
		{0, 1, 0}, {9, 9, 9}, {1, 1, 0}, {0, 2, 0}, {1, 2, 0},
	})
	indices := modeler.WriteIndices(doc, []uint32{0, 2, 3, 3, 2, 4})
	joints := modeler.WriteJoints(doc, [][4]uint16{
		{0, 1, 0, 0},
		{2, 3, 0, 0},
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 0, 0, 0},
	})
	weights := modeler.WriteWeights(doc, [][4]float32{
		{1, 0, 0, 0},
		{0.5, 0.5, 0, 0},
		{1, 0, 0, 0},
		{0.5, 0.5, 0, 0},
		{1, 0, 0, 0},
	})
	ibm := modeler.WriteAccessor(doc, gltf.TargetNone, [][4][4]float32{
		toArray(mgl32.Translate3D(0, -1, 0)),
		toArray(mgl32.Translate3D(0, -1.2, 0)),
		toArray(mgl32.Translate3D(0, -1.5, 0)),
		toArray(mgl32.Translate3D(0, -1.5, 0.2)),
	})

	good, err := modeler.WriteImage(doc, "body", "image/png", bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatalf("write image: %v", err)
	}
	if _, err := modeler.WriteImage(doc, "broken", "image/png", bytes.NewReader([]byte("not a png"))); err != nil {
		t.Fatalf("write image: %v", err)
	}
	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(good)})
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: "Body",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float64{1, 0.5, 0.5, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "Body",
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(indices),
			Attributes: map[string]int{
				attrPosition: positions,
				attrJoints:   joints,
				attrWeights:  weights,
			},
			Material: gltf.Index(0),
		}},
	})
	doc.Skins = append(doc.Skins, &gltf.Skin{
		Joints:              []int{1, 2, 3, 4},
		InverseBindMatrices: gltf.Index(ibm),
	})

	doc.Nodes = []*gltf.Node{
		{Name: "Armature", Children: []int{1}},
		{Name: "Hips", Translation: [3]float64{0, 1, 0}, Children: []int{2}},
		{Name: "Spine", Translation: [3]float64{0, 0.2, 0}, Children: []int{3}},
		{Name: "Hair", Translation: [3]float64{0, 0.3, 0}, Children: []int{4}},
		{Name: "HairTip", Translation: [3]float64{0, 0, -0.2}},
		{Name: "Body", Mesh: gltf.Index(0), Skin: gltf.Index(0)},
	}
	doc.Scenes[0].Nodes = []int{0, 5}

	doc.ExtensionsUsed = append(doc.ExtensionsUsed, ExtensionName)
	doc.Extensions = gltf.Extensions{ExtensionName: testExtension()}
	return doc
}

func testExtension() *Extension {
	return &Extension{
		ExporterVersion: "test",
		Meta:            Meta{Title: "Test Avatar", Version: "1.0", Author: "tester"},
		Humanoid: HumanoidDef{HumanBones: []HumanBoneDef{
			{Bone: Hips, Node: 1},
			{Bone: Spine, Node: 2},
			{Bone: Head, Node: 99},
		}},
		SecondaryAnimation: SecondaryAnimation{
			BoneGroups: []BoneGroup{{
				Stiffness:      1,
				GravityPower:   1,
				GravityDir:     Vec3{0, -1, 0},
				DragForce:      0.4,
				Center:         -1,
				HitRadius:      0.02,
				Bones:          []int{3},
				ColliderGroups: []int{0},
			}},
			ColliderGroups: []ColliderGroup{{
				Node:      1,
				Colliders: []Collider{{Offset: Vec3{0, 0.1, 0}, Radius: 0.05}},
			}},
		},
	}
}

func testModel(t *testing.T) *Model {
	t.Helper()
	m, err := ReadModel(testDocument(t), "avatar.vrm", nil)
	if err != nil {
		t.Fatalf("ReadModel: %v", err)
	}
	return m
}
