package scene

// Default grid colors.
const (
	GridCenterColor = 0x444444
	GridLineColor   = 0x888888
)

// LineVertex is a colored line endpoint.
type LineVertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

// GridHelper is a square grid of lines on the XZ plane centered at the origin.
type GridHelper struct {
	Size      float32
	Divisions int

	vertices []LineVertex
}

// NewGridHelper creates a size x size grid split into divisions cells per side.
func NewGridHelper(size float32, divisions int) *GridHelper {
	if divisions < 1 {
		divisions = 1
	}
	g := &GridHelper{Size: size, Divisions: divisions}
	g.vertices = g.generate()
	return g
}

// Vertices returns line vertex pairs.
func (g *GridHelper) Vertices() []LineVertex {
	return g.vertices
}

func (g *GridHelper) generate() []LineVertex {
	half := g.Size / 2
	step := g.Size / float32(g.Divisions)
	center := g.Divisions / 2

	centerColor := HexColor(GridCenterColor)
	lineColor := HexColor(GridLineColor)

	vertices := make([]LineVertex, 0, (g.Divisions+1)*4)
	for i := 0; i <= g.Divisions; i++ {
		k := -half + float32(i)*step
		c := lineColor
		if i == center {
			c = centerColor
		}
		vertices = append(vertices,
			// Along X
			LineVertex{-half, 0, k, c[0], c[1], c[2]},
			LineVertex{half, 0, k, c[0], c[1], c[2]},
			// Along Z
			LineVertex{k, 0, -half, c[0], c[1], c[2]},
			LineVertex{k, 0, half, c[0], c[1], c[2]},
		)
	}
	return vertices
}

// HexColor converts 0xRRGGBB to normalized RGB.
func HexColor(hex uint32) [3]float32 {
	return [3]float32{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}
