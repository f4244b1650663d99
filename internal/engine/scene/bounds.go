package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box. A box with Min > Max on any axis is empty.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns a box that contains nothing and absorbs the first point expanded into it.
func EmptyBox() Box {
	inf := float32(math.Inf(1))
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewBox creates a box from two corners in any order.
func NewBox(a, b mgl32.Vec3) Box {
	return EmptyBox().ExpandPoint(a).ExpandPoint(b)
}

// Empty reports whether the box contains no points.
func (b Box) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// ExpandPoint returns b grown to include p.
func (b Box) ExpandPoint(p mgl32.Vec3) Box {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest box holding both b and o.
func (b Box) Union(o Box) Box {
	if o.Empty() {
		return b
	}
	return b.ExpandPoint(o.Min).ExpandPoint(o.Max)
}

// Center returns the box midpoint. The center of an empty box is the origin.
func (b Box) Center() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent on each axis, zero for an empty box.
func (b Box) Size() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// MaxDim returns the largest of the three extents.
func (b Box) MaxDim() float32 {
	s := b.Size()
	return max(s[0], s[1], s[2])
}

// Transform returns the box around all eight corners of b transformed by m.
func (b Box) Transform(m mgl32.Mat4) Box {
	if b.Empty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out = out.ExpandPoint(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

// Bounds returns the world-space box over every mesh at or below id.
// Helpers are excluded. Vertices are transformed individually so rotated
// meshes produce a tight box.
func (g *Graph) Bounds(id NodeID) Box {
	box := EmptyBox()
	g.Walk(id, func(_ NodeID, n *Node, world mgl32.Mat4) bool {
		if n.Kind != KindMesh || n.Mesh == nil || n.Mesh.Geometry == nil {
			return true
		}
		for _, p := range n.Mesh.Geometry.Positions {
			box = box.ExpandPoint(mgl32.TransformCoordinate(p, world))
		}
		return true
	})
	return box
}
