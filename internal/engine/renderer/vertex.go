package renderer

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vrmviewer/internal/engine/scene"
	"github.com/Faultbox/vrmviewer/internal/vrm"
)

const (
	meshStride = 16 // position(3) + normal(3) + uv(2) + joints(4) + weights(4)
	lineStride = 6  // position(3) + color(3)
)

// alpha modes as understood by mesh.frag
const (
	alphaOpaque int32 = iota
	alphaMask
	alphaBlend
)

// interleave packs a primitive into the mesh vertex layout. Missing
// attributes are zero filled.
func interleave(p *vrm.Primitive) []float32 {
	n := p.VertexCount()
	out := make([]float32, 0, n*meshStride)
	skinned := p.Skinned()
	for i := 0; i < n; i++ {
		pos := p.Positions[i]
		out = append(out, pos[0], pos[1], pos[2])

		if i < len(p.Normals) {
			nm := p.Normals[i]
			out = append(out, nm[0], nm[1], nm[2])
		} else {
			out = append(out, 0, 1, 0)
		}

		if i < len(p.UVs) {
			out = append(out, p.UVs[i][0], p.UVs[i][1])
		} else {
			out = append(out, 0, 0)
		}

		if skinned {
			j, w := p.Joints[i], p.Weights[i]
			out = append(out,
				float32(j[0]), float32(j[1]), float32(j[2]), float32(j[3]),
				w[0], w[1], w[2], w[3])
		} else {
			out = append(out, 0, 0, 0, 0, 0, 0, 0, 0)
		}
	}
	return out
}

// lineVertices packs grid vertices into the line layout.
func lineVertices(vs []scene.LineVertex) []float32 {
	out := make([]float32, 0, len(vs)*lineStride)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z, v.R, v.G, v.B)
	}
	return out
}

// segmentVertices packs line endpoints of a single color.
func segmentVertices(points []mgl32.Vec3, color [3]float32) []float32 {
	out := make([]float32, 0, len(points)*lineStride)
	for _, p := range points {
		out = append(out, p[0], p[1], p[2], color[0], color[1], color[2])
	}
	return out
}

// alphaModeOf maps a material to the shader alpha mode. Primitives without
// a material are opaque.
func alphaModeOf(materials []vrm.Material, index int) int32 {
	if index < 0 || index >= len(materials) {
		return alphaOpaque
	}
	switch materials[index].AlphaMode {
	case "MASK":
		return alphaMask
	case "BLEND":
		return alphaBlend
	}
	return alphaOpaque
}

// drawItem addresses one primitive of one mesh instance.
type drawItem struct {
	mesh, prim int
	alpha      int32
}

// drawList orders every primitive of av so blended ones come last, keeping
// document order otherwise.
func drawList(av *vrm.Avatar) []drawItem {
	var items []drawItem
	for mi, inst := range av.Meshes {
		for pi, p := range inst.Mesh.Primitives {
			if p.VertexCount() == 0 {
				continue
			}
			items = append(items, drawItem{mesh: mi, prim: pi, alpha: alphaModeOf(av.Materials, p.Material)})
		}
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].alpha != alphaBlend && items[b].alpha == alphaBlend
	})
	return items
}
