package scene

import "github.com/go-gl/mathgl/mgl32"

// Group is a contiguous index range drawn with one entry of Mesh.Materials.
type Group struct {
	Start    int // First index into Geometry.Indices
	Count    int
	Material int
}

// Geometry is an indexed triangle list in the owning node's local space.
type Geometry struct {
	Positions []mgl32.Vec3
	Indices   []uint32
	Groups    []Group

	bounds     Box
	boundsDone bool
}

// NewGeometry builds geometry from positions and triangle indices. When
// indices is nil the positions are taken as consecutive triangles.
func NewGeometry(positions []mgl32.Vec3, indices []uint32) *Geometry {
	if indices == nil {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return &Geometry{Positions: positions, Indices: indices}
}

// TriangleCount returns the number of complete triangles.
func (g *Geometry) TriangleCount() int { return len(g.Indices) / 3 }

// Triangle returns the local-space corners of triangle i.
// ok is false when an index points outside Positions.
func (g *Geometry) Triangle(i int) (a, b, c mgl32.Vec3, ok bool) {
	i0, i1, i2 := g.Indices[3*i], g.Indices[3*i+1], g.Indices[3*i+2]
	n := uint32(len(g.Positions))
	if i0 >= n || i1 >= n || i2 >= n {
		return a, b, c, false
	}
	return g.Positions[i0], g.Positions[i1], g.Positions[i2], true
}

// Bounds returns the local-space box around all positions.
func (g *Geometry) Bounds() Box {
	if !g.boundsDone {
		g.bounds = EmptyBox()
		for _, p := range g.Positions {
			g.bounds = g.bounds.ExpandPoint(p)
		}
		g.boundsDone = true
	}
	return g.bounds
}

// Mesh pairs geometry with one material, or a material array addressed by Geometry.Groups.
type Mesh struct {
	Geometry  *Geometry
	Materials []*Material
}

// MaterialFor returns the material that draws group gi.
func (m *Mesh) MaterialFor(gi int) *Material {
	if len(m.Materials) == 0 {
		return nil
	}
	if gi < 0 || gi >= len(m.Geometry.Groups) {
		return m.Materials[0]
	}
	idx := m.Geometry.Groups[gi].Material
	if idx < 0 || idx >= len(m.Materials) {
		return m.Materials[0]
	}
	return m.Materials[idx]
}
