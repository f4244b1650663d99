package scene

import "github.com/go-gl/mathgl/mgl32"

// Fit describes how Normalize placed a model.
type Fit struct {
	Box        Box // World-space box before normalization
	Scale      float32
	Offset     mgl32.Vec3 // Translation applied after scaling
	Degenerate bool       // Box had zero extent; scaling was skipped
}

// Normalize scales id uniformly so its largest extent equals targetSize and
// translates it so the scaled box center sits at the origin. A model whose
// box has zero extent (or no geometry at all) keeps scale 1.
func (g *Graph) Normalize(id NodeID, targetSize float32) Fit {
	n := g.Node(id)
	if n == nil {
		return Fit{Scale: 1, Box: EmptyBox(), Degenerate: true}
	}

	box := g.Bounds(id)
	fit := Fit{Box: box, Scale: 1}

	maxDim := box.MaxDim()
	if maxDim > 0 {
		fit.Scale = targetSize / maxDim
	} else {
		fit.Degenerate = true
	}

	fit.Offset = box.Center().Mul(-fit.Scale)
	s := fit.Scale
	n.Local = mgl32.Translate3D(fit.Offset[0], fit.Offset[1], fit.Offset[2]).
		Mul4(mgl32.Scale3D(s, s, s)).
		Mul4(n.Local)
	return fit
}
