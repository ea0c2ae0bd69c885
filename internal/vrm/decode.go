package vrm

import (
	"bytes"
	"fmt"
	"image"
	"io"

	// Image formats seen in VRM textures
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotVRM is returned for glTF documents without the VRM extension.
var ErrNotVRM = errors.New("vrm: document has no VRM extension")

// Vertex attribute names.
const (
	attrPosition = "POSITION"
	attrNormal   = "NORMAL"
	attrTexcoord = "TEXCOORD_0"
	attrJoints   = "JOINTS_0"
	attrWeights  = "WEIGHTS_0"
)

// Tracker is notified as embedded resources are decoded.
type Tracker interface {
	ItemStart(url string)
	ItemEnd(url string)
	ItemError(url string, err error)
}

type nopTracker struct{}

func (nopTracker) ItemStart(string)        {}
func (nopTracker) ItemEnd(string)          {}
func (nopTracker) ItemError(string, error) {}

// Decode parses a binary or JSON glTF stream.
func Decode(r io.Reader) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "decode gltf")
	}
	return doc, nil
}

// Primitive is one drawable vertex set with a single material.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Joints    [][4]uint16
	Weights   [][4]float32
	Indices   []uint32
	Material  int // Index into Model.Materials, -1 for none
}

// VertexCount returns the number of vertices.
func (p *Primitive) VertexCount() int {
	return len(p.Positions)
}

// Skinned reports whether the primitive carries joint weights.
func (p *Primitive) Skinned() bool {
	return len(p.Joints) == len(p.Positions) && len(p.Weights) == len(p.Positions) && len(p.Positions) > 0
}

// Mesh is a decoded glTF mesh.
type Mesh struct {
	Name       string
	Primitives []*Primitive
}

// SkinData is a glTF skin in document terms: joint node indices and their
// inverse bind matrices.
type SkinData struct {
	Joints       []int
	InverseBinds []mgl32.Mat4
}

// Material holds what the viewer shades with.
type Material struct {
	Name        string
	BaseColor   [4]float32
	Image       int // Index into Model.Images, -1 for none
	AlphaMode   string
	AlphaCutoff float32
	DoubleSided bool
}

// Model is the geometry of a document, ready for mesh passes and conversion.
type Model struct {
	Doc       *gltf.Document
	Meshes    []*Mesh // Indexed like Doc.Meshes
	Skins     []*SkinData
	Materials []Material
	Images    []image.Image // nil entries for images that failed to decode
}

// ReadModel extracts meshes, skins, materials and images from doc. Each
// embedded image is reported to tr as an item named "{base}#image{i}".
// Images that fail to decode are reported and left nil.
func ReadModel(doc *gltf.Document, base string, tr Tracker) (*Model, error) {
	if tr == nil {
		tr = nopTracker{}
	}
	m := &Model{Doc: doc}

	m.Images = make([]image.Image, len(doc.Images))
	for i := range doc.Images {
		url := fmt.Sprintf("%s#image%d", base, i)
		tr.ItemStart(url)
		img, err := decodeImage(doc, i)
		if err != nil {
			tr.ItemError(url, err)
		}
		m.Images[i] = img
		tr.ItemEnd(url)
	}

	m.Materials = make([]Material, len(doc.Materials))
	for i, mat := range doc.Materials {
		m.Materials[i] = readMaterial(doc, mat)
	}

	m.Meshes = make([]*Mesh, len(doc.Meshes))
	for i, mesh := range doc.Meshes {
		out := &Mesh{Name: mesh.Name}
		for j, prim := range mesh.Primitives {
			p, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", i, j)
			}
			out.Primitives = append(out.Primitives, p)
		}
		m.Meshes[i] = out
	}

	m.Skins = make([]*SkinData, len(doc.Skins))
	for i, skin := range doc.Skins {
		s, err := readSkin(doc, skin)
		if err != nil {
			return nil, errors.Wrapf(err, "skin %d", i)
		}
		m.Skins[i] = s
	}

	return m, nil
}

func decodeImage(doc *gltf.Document, index int) (image.Image, error) {
	img := doc.Images[index]
	var data []byte
	switch {
	case img.BufferView != nil:
		var err error
		if data, err = bufferViewData(doc, *img.BufferView); err != nil {
			return nil, err
		}
	case img.IsEmbeddedResource():
		var err error
		if data, err = img.MarshalData(); err != nil {
			return nil, errors.Wrap(err, "image data uri")
		}
	default:
		return nil, errors.Errorf("image %d: external uri %q not supported", index, img.URI)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "image %d", index)
	}
	return decoded, nil
}

func bufferViewData(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, errors.Errorf("buffer view %d out of range", index)
	}
	bv := doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, errors.Errorf("buffer %d out of range", bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if end > len(buf) {
		return nil, errors.Errorf("buffer view %d exceeds buffer", index)
	}
	return buf[bv.ByteOffset:end], nil
}

func readMaterial(doc *gltf.Document, mat *gltf.Material) Material {
	out := Material{
		Name:        mat.Name,
		BaseColor:   [4]float32{1, 1, 1, 1},
		Image:       -1,
		AlphaMode:   "OPAQUE",
		AlphaCutoff: 0.5,
		DoubleSided: mat.DoubleSided,
	}
	switch mat.AlphaMode {
	case gltf.AlphaMask:
		out.AlphaMode = "MASK"
	case gltf.AlphaBlend:
		out.AlphaMode = "BLEND"
	}
	if mat.AlphaCutoff != nil {
		out.AlphaCutoff = float32(*mat.AlphaCutoff)
	}

	pbr := mat.PBRMetallicRoughness
	if pbr == nil {
		return out
	}
	if pbr.BaseColorFactor != nil {
		for i, v := range pbr.BaseColorFactor {
			out.BaseColor[i] = float32(v)
		}
	}
	if pbr.BaseColorTexture != nil {
		ti := pbr.BaseColorTexture.Index
		if ti >= 0 && ti < len(doc.Textures) && doc.Textures[ti].Source != nil {
			out.Image = *doc.Textures[ti].Source
		}
	}
	return out
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*Primitive, error) {
	p := &Primitive{Material: -1}
	if prim.Material != nil {
		p.Material = *prim.Material
	}

	accessor := func(idx int) (*gltf.Accessor, error) {
		if idx < 0 || idx >= len(doc.Accessors) {
			return nil, errors.Errorf("accessor %d out of range", idx)
		}
		return doc.Accessors[idx], nil
	}

	idx, ok := prim.Attributes[attrPosition]
	if !ok {
		return nil, errors.New("primitive has no POSITION")
	}
	acr, err := accessor(idx)
	if err != nil {
		return nil, err
	}
	if p.Positions, err = modeler.ReadPosition(doc, acr, nil); err != nil {
		return nil, errors.Wrap(err, "read positions")
	}

	if idx, ok := prim.Attributes[attrNormal]; ok {
		if acr, err = accessor(idx); err != nil {
			return nil, err
		}
		if p.Normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
			return nil, errors.Wrap(err, "read normals")
		}
	}

	if idx, ok := prim.Attributes[attrTexcoord]; ok {
		if acr, err = accessor(idx); err != nil {
			return nil, err
		}
		if p.UVs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
			return nil, errors.Wrap(err, "read texcoords")
		}
	}

	if idx, ok := prim.Attributes[attrJoints]; ok {
		if acr, err = accessor(idx); err != nil {
			return nil, err
		}
		if p.Joints, err = modeler.ReadJoints(doc, acr, nil); err != nil {
			return nil, errors.Wrap(err, "read joints")
		}
	}

	if idx, ok := prim.Attributes[attrWeights]; ok {
		if acr, err = accessor(idx); err != nil {
			return nil, err
		}
		if p.Weights, err = modeler.ReadWeights(doc, acr, nil); err != nil {
			return nil, errors.Wrap(err, "read weights")
		}
	}

	if prim.Indices != nil {
		if acr, err = accessor(*prim.Indices); err != nil {
			return nil, err
		}
		if p.Indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return nil, errors.Wrap(err, "read indices")
		}
	}

	if len(p.Normals) != len(p.Positions) {
		p.Normals = computeNormals(p.Positions, p.Indices)
	}
	return p, nil
}

func readSkin(doc *gltf.Document, skin *gltf.Skin) (*SkinData, error) {
	s := &SkinData{Joints: append([]int(nil), skin.Joints...)}
	s.InverseBinds = make([]mgl32.Mat4, len(skin.Joints))
	for i := range s.InverseBinds {
		s.InverseBinds[i] = mgl32.Ident4()
	}
	if skin.InverseBindMatrices == nil {
		return s, nil
	}

	idx := *skin.InverseBindMatrices
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", idx)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[idx], nil)
	if err != nil {
		return nil, errors.Wrap(err, "read inverse bind matrices")
	}
	mats, ok := data.([][4][4]float32)
	if !ok {
		return nil, errors.Errorf("inverse bind matrices: unexpected type %T", data)
	}
	for i := 0; i < len(mats) && i < len(s.InverseBinds); i++ {
		var m mgl32.Mat4
		for col := 0; col < 4; col++ {
			for row := 0; row < 4; row++ {
				m[col*4+row] = mats[i][col][row]
			}
		}
		s.InverseBinds[i] = m
	}
	return s, nil
}

// computeNormals builds smooth per-vertex normals from triangle faces.
func computeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	face := func(a, b, c uint32) {
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			return
		}
		pa, pb, pc := mgl32.Vec3(positions[a]), mgl32.Vec3(positions[b]), mgl32.Vec3(positions[c])
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		for _, i := range [3]uint32{a, b, c} {
			normals[i] = mgl32.Vec3(normals[i]).Add(n)
		}
	}
	if len(indices) > 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			face(indices[i], indices[i+1], indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(positions); i += 3 {
			face(uint32(i), uint32(i+1), uint32(i+2))
		}
	}
	for i, n := range normals {
		v := mgl32.Vec3(n)
		if v.Len() > 0 {
			normals[i] = v.Normalize()
		} else {
			normals[i] = [3]float32{0, 1, 0}
		}
	}
	return normals
}
