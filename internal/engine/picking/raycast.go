package picking

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepview/internal/engine/scene"
)

// Intersection is a single ray hit.
type Intersection struct {
	Node     scene.NodeID
	Kind     scene.Kind
	Distance float32
	Point    mgl32.Vec3
}

// IntersectGraph casts ray against from and all of its descendants and
// returns the hits sorted nearest first. Each node contributes at most its
// nearest hit.
func IntersectGraph(g *scene.Graph, from scene.NodeID, ray Ray) []Intersection {
	var hits []Intersection
	g.Walk(from, func(id scene.NodeID, n *scene.Node, world mgl32.Mat4) bool {
		switch n.Kind {
		case scene.KindMesh:
			if hit, ok := intersectMesh(n.Mesh, world, ray); ok {
				hit.Node = id
				hits = append(hits, hit)
			}
		case scene.KindHelper:
			if hit, ok := intersectGrid(n.Grid, world, ray); ok {
				hit.Node = id
				hits = append(hits, hit)
			}
		}
		return true
	})
	slices.SortStableFunc(hits, func(a, b Intersection) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
	return hits
}

// FirstMesh returns the nearest hit whose target is a mesh, skipping helpers.
func FirstMesh(hits []Intersection) (Intersection, bool) {
	for _, h := range hits {
		if h.Kind == scene.KindMesh {
			return h, true
		}
	}
	return Intersection{}, false
}

func intersectMesh(m *scene.Mesh, world mgl32.Mat4, ray Ray) (Intersection, bool) {
	if m == nil || m.Geometry == nil {
		return Intersection{}, false
	}
	geo := m.Geometry
	if _, ok := ray.IntersectBox(geo.Bounds().Transform(world)); !ok {
		return Intersection{}, false
	}

	best := Intersection{Kind: scene.KindMesh}
	found := false
	for i := 0; i < geo.TriangleCount(); i++ {
		a, b, c, ok := geo.Triangle(i)
		if !ok {
			continue
		}
		a = mgl32.TransformCoordinate(a, world)
		b = mgl32.TransformCoordinate(b, world)
		c = mgl32.TransformCoordinate(c, world)
		t, hit := ray.IntersectTriangle(a, b, c)
		if !hit || (found && t >= best.Distance) {
			continue
		}
		best.Distance = t
		found = true
	}
	if !found {
		return Intersection{}, false
	}
	best.Point = ray.At(best.Distance)
	return best, true
}

func intersectGrid(grid *scene.Grid, world mgl32.Mat4, ray Ray) (Intersection, bool) {
	if grid == nil {
		return Intersection{}, false
	}
	local := ray.Transform(world.Inv())
	x, z, _, ok := local.IntersectPlaneY(0)
	if !ok || !grid.Contains(x, z) {
		return Intersection{}, false
	}
	point := mgl32.TransformCoordinate(mgl32.Vec3{x, 0, z}, world)
	return Intersection{
		Kind:     scene.KindHelper,
		Distance: point.Sub(ray.Origin).Len(),
		Point:    point,
	}, true
}
