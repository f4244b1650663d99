package scene

import "github.com/go-gl/mathgl/mgl32"

// Grid is a square ground-reference grid in the XZ plane at y = 0.
type Grid struct {
	Size        float32
	Divisions   int
	Color       mgl32.Vec3
	CenterColor mgl32.Vec3
}

// NewGrid creates a grid with the default line colors.
func NewGrid(size float32, divisions int) *Grid {
	if divisions < 1 {
		divisions = 1
	}
	return &Grid{
		Size:        size,
		Divisions:   divisions,
		Color:       mgl32.Vec3{0.53, 0.53, 0.53},
		CenterColor: mgl32.Vec3{0.27, 0.27, 0.27},
	}
}

// LineVertex is one endpoint of a grid line.
type LineVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Lines returns line-list vertices, two per line, Divisions+1 lines on each axis.
func (g *Grid) Lines() []LineVertex {
	half := g.Size / 2
	step := g.Size / float32(g.Divisions)
	center := g.Divisions / 2

	verts := make([]LineVertex, 0, (g.Divisions+1)*4)
	for i := 0; i <= g.Divisions; i++ {
		k := -half + float32(i)*step
		color := g.Color
		if i == center && g.Divisions%2 == 0 {
			color = g.CenterColor
		}
		verts = append(verts,
			LineVertex{mgl32.Vec3{-half, 0, k}, color},
			LineVertex{mgl32.Vec3{half, 0, k}, color},
			LineVertex{mgl32.Vec3{k, 0, -half}, color},
			LineVertex{mgl32.Vec3{k, 0, half}, color},
		)
	}
	return verts
}

// Contains reports whether the local XZ point lies on the grid's square.
func (g *Grid) Contains(x, z float32) bool {
	half := g.Size / 2
	return x >= -half && x <= half && z >= -half && z <= half
}
