package picking

import (
	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/engine/camera"
	"github.com/Faultbox/stepview/internal/engine/scene"
	"github.com/Faultbox/stepview/internal/logger"
	"github.com/Faultbox/stepview/internal/metadata"
)

// Highlighter swaps a temporary material onto at most one mesh at a time and
// restores the original when the highlight moves or clears.
type Highlighter struct {
	graph    *scene.Graph
	template *scene.Material // Cloned per use, never assigned directly

	current scene.NodeID
	saved   []*scene.Material // Non-nil iff current != NoNode
}

// NewHighlighter creates an idle highlighter for meshes of g.
func NewHighlighter(g *scene.Graph, template *scene.Material) *Highlighter {
	return &Highlighter{graph: g, template: template, current: scene.NoNode}
}

// Current returns the highlighted mesh, or NoNode when idle.
func (h *Highlighter) Current() scene.NodeID { return h.current }

// Apply highlights id. Applying the already highlighted mesh leaves its
// materials untouched. It returns true if the materials changed.
func (h *Highlighter) Apply(id scene.NodeID) bool {
	if id == h.current {
		return false
	}
	h.Revert()

	n := h.graph.Node(id)
	if n == nil || n.Kind != scene.KindMesh || n.Mesh == nil {
		return false
	}

	mesh := n.Mesh
	h.saved = make([]*scene.Material, len(mesh.Materials))
	copy(h.saved, mesh.Materials)

	count := max(len(mesh.Materials), 1)
	clones := make([]*scene.Material, count)
	for i := range clones {
		clones[i] = h.template.Clone()
	}
	mesh.Materials = clones
	h.current = id
	return true
}

// Revert restores the highlighted mesh's original materials and disposes the
// temporary ones. It is a no-op when nothing is highlighted.
func (h *Highlighter) Revert() {
	if h.saved == nil {
		return
	}
	if n := h.graph.Node(h.current); n != nil && n.Mesh != nil {
		for _, m := range n.Mesh.Materials {
			m.Dispose()
		}
		n.Mesh.Materials = h.saved
	}
	h.saved = nil
	h.current = scene.NoNode
}

// HoverFunc receives the hovered component, or nil when the pointer hovers nothing.
type HoverFunc func(info *metadata.ComponentInfo)

// Picker turns pointer positions into highlight transitions and hover reports.
type Picker struct {
	graph      *scene.Graph
	cam        *camera.Camera
	highlight  *Highlighter
	components metadata.Components
	onHover    HoverFunc
	log        *zap.Logger
}

// NewPicker creates a picker casting from cam into every node of g.
func NewPicker(g *scene.Graph, cam *camera.Camera, template *scene.Material, onHover HoverFunc) *Picker {
	if onHover == nil {
		onHover = func(*metadata.ComponentInfo) {}
	}
	return &Picker{
		graph:     g,
		cam:       cam,
		highlight: NewHighlighter(g, template),
		onHover:   onHover,
		log:       logger.Named("picking"),
	}
}

// SetComponents replaces the component side table used for hover reports.
func (p *Picker) SetComponents(c metadata.Components) { p.components = c }

// Highlighted returns the highlighted mesh, or NoNode.
func (p *Picker) Highlighted() scene.NodeID { return p.highlight.Current() }

// PointerMove hit-tests the pointer at client coordinates over a surface
// occupying rect, moves the highlight to the nearest mesh under it and
// reports that mesh's component.
func (p *Picker) PointerMove(clientX, clientY float32, rect Rect) {
	ndcX, ndcY, ok := PointerToNDC(clientX, clientY, rect)
	if !ok {
		p.clear()
		return
	}

	ray := FromCamera(p.cam, ndcX, ndcY)
	hit, ok := FirstMesh(IntersectGraph(p.graph, p.graph.Root(), ray))
	if !ok {
		p.clear()
		return
	}

	if p.highlight.Apply(hit.Node) {
		p.log.Debug("highlight",
			zap.Int("node", int(hit.Node)),
			zap.Float32("distance", hit.Distance))
	}
	p.onHover(p.components.Get(hit.Node))
}

// PointerLeave clears the highlight when the pointer leaves the surface.
func (p *Picker) PointerLeave() { p.clear() }

// Reset reverts any highlight without reporting. Used on teardown and reload.
func (p *Picker) Reset() {
	p.highlight.Revert()
	p.components = nil
}

func (p *Picker) clear() {
	if p.highlight.Current() != scene.NoNode {
		p.log.Debug("highlight cleared", zap.Int("node", int(p.highlight.Current())))
	}
	p.highlight.Revert()
	p.onHover(nil)
}
