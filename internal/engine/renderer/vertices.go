package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepview/internal/engine/scene"
)

// meshStride is the float count per mesh vertex: position then face normal.
const meshStride = 6

// lineStride is the float count per line vertex: position then color.
const lineStride = 6

// drawRange is a run of de-indexed vertices drawn with one material.
type drawRange struct {
	first int32
	count int32
	group int // Index into Geometry.Groups, -1 for the whole mesh
}

// meshVertices expands indexed geometry into flat-shaded triangles, one
// draw range per geometry group. Geometry without groups yields one range.
func meshVertices(geo *scene.Geometry) ([]float32, []drawRange) {
	verts := make([]float32, 0, geo.TriangleCount()*3*meshStride)

	emit := func(startTri, endTri int) int32 {
		n := int32(0)
		for i := startTri; i < endTri; i++ {
			a, b, c, ok := geo.Triangle(i)
			if !ok {
				continue
			}
			normal := b.Sub(a).Cross(c.Sub(a))
			if l := normal.Len(); l > 0 {
				normal = normal.Mul(1 / l)
			}
			for _, p := range [3]mgl32.Vec3{a, b, c} {
				verts = append(verts, p[0], p[1], p[2], normal[0], normal[1], normal[2])
			}
			n += 3
		}
		return n
	}

	tris := geo.TriangleCount()
	if len(geo.Groups) == 0 {
		return verts, []drawRange{{first: 0, count: emit(0, tris), group: -1}}
	}

	ranges := make([]drawRange, 0, len(geo.Groups))
	var first int32
	for gi, grp := range geo.Groups {
		start := min(grp.Start/3, tris)
		end := min((grp.Start+grp.Count)/3, tris)
		count := emit(start, end)
		ranges = append(ranges, drawRange{first: first, count: count, group: gi})
		first += count
	}
	return verts, ranges
}

// gridVertices flattens grid lines into position/color pairs.
func gridVertices(g *scene.Grid) []float32 {
	lines := g.Lines()
	verts := make([]float32, 0, len(lines)*lineStride)
	for _, v := range lines {
		verts = append(verts,
			v.Position[0], v.Position[1], v.Position[2],
			v.Color[0], v.Color[1], v.Color[2])
	}
	return verts
}
