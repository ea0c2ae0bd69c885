package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vrmviewer/internal/engine/scene"
	"github.com/Faultbox/vrmviewer/internal/vrm"
)

func TestInterleaveSkinned(t *testing.T) {
	p := &vrm.Primitive{
		Positions: [][3]float32{{1, 2, 3}, {4, 5, 6}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 1, 0}},
		UVs:       [][2]float32{{0.25, 0.75}, {1, 0}},
		Joints:    [][4]uint16{{0, 1, 0, 0}, {2, 0, 0, 0}},
		Weights:   [][4]float32{{0.5, 0.5, 0, 0}, {1, 0, 0, 0}},
	}
	got := interleave(p)
	if len(got) != 2*meshStride {
		t.Fatalf("len = %d, want %d", len(got), 2*meshStride)
	}
	want := []float32{1, 2, 3, 0, 0, 1, 0.25, 0.75, 0, 1, 0, 0, 0.5, 0.5, 0, 0}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("vertex 0 float %d = %v, want %v", i, got[i], v)
		}
	}
	if got[meshStride+8] != 2 || got[meshStride+12] != 1 {
		t.Errorf("vertex 1 skin data = %v", got[meshStride+8:])
	}
}

func TestInterleaveFillsMissingAttributes(t *testing.T) {
	p := &vrm.Primitive{Positions: [][3]float32{{1, 1, 1}}}
	got := interleave(p)
	want := []float32{1, 1, 1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("float %d = %v, want %v", i, got[i], v)
		}
	}
}

func TestLineVertices(t *testing.T) {
	g := scene.NewGridHelper(10, 10)
	data := lineVertices(g.Vertices())
	if len(data) != len(g.Vertices())*lineStride {
		t.Fatalf("len = %d", len(data))
	}
	first := g.Vertices()[0]
	if data[0] != first.X || data[3] != first.R {
		t.Errorf("first vertex packed as %v", data[:lineStride])
	}

	seg := segmentVertices([]mgl32.Vec3{{0, 0, 0}, {1, 2, 3}}, [3]float32{1, 0, 0})
	if len(seg) != 12 || seg[6] != 1 || seg[8] != 3 || seg[9] != 1 {
		t.Errorf("segment data = %v", seg)
	}
}

func TestDrawListPutsBlendLast(t *testing.T) {
	prim := func(material int) *vrm.Primitive {
		return &vrm.Primitive{Positions: [][3]float32{{0, 0, 0}}, Material: material}
	}
	av := &vrm.Avatar{
		Materials: []vrm.Material{
			{AlphaMode: "BLEND"},
			{AlphaMode: "OPAQUE"},
			{AlphaMode: "MASK"},
		},
		Meshes: []vrm.MeshInstance{
			{Mesh: &vrm.Mesh{Primitives: []*vrm.Primitive{prim(0), prim(1)}}},
			{Mesh: &vrm.Mesh{Primitives: []*vrm.Primitive{prim(2), {}, prim(-1)}}},
		},
	}

	got := drawList(av)
	want := []drawItem{
		{mesh: 0, prim: 1, alpha: alphaOpaque},
		{mesh: 1, prim: 0, alpha: alphaMask},
		{mesh: 1, prim: 2, alpha: alphaOpaque},
		{mesh: 0, prim: 0, alpha: alphaBlend},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAlphaModeOf(t *testing.T) {
	mats := []vrm.Material{{AlphaMode: "MASK"}}
	if alphaModeOf(mats, 0) != alphaMask {
		t.Error("expected mask")
	}
	if alphaModeOf(mats, 5) != alphaOpaque || alphaModeOf(mats, -1) != alphaOpaque {
		t.Error("out of range materials should be opaque")
	}
}
