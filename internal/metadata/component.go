package metadata

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepview/internal/engine/scene"
)

// UnnamedComponent is the display name of a mesh with no name of its own and no named match.
const UnnamedComponent = "Unnamed component"

// ComponentInfo is the display record for one pickable mesh.
type ComponentInfo struct {
	InstanceID  scene.NodeID `json:"instanceId"`
	DisplayName string       `json:"displayName"`
	NodeID      *int         `json:"nodeId"`
	MeshIndex   *int         `json:"meshIndex"`
	ChildCount  int          `json:"childCount"`
}

// Components is the per-mesh side table of a loaded asset, keyed by mesh node.
type Components map[scene.NodeID]ComponentInfo

// Get returns a copy of the info for id, or nil if id is not a known mesh.
func (c Components) Get(id scene.NodeID) *ComponentInfo {
	info, ok := c[id]
	if !ok {
		return nil
	}
	return &info
}

// Correlate builds ComponentInfo for every mesh under root by looking each
// mesh's own name up in idx. Unmatched meshes, including every mesh when the
// metadata tree is absent, fall back to what the mesh itself provides.
func Correlate(g *scene.Graph, root scene.NodeID, idx Index) Components {
	out := make(Components)
	g.Walk(root, func(id scene.NodeID, n *scene.Node, _ mgl32.Mat4) bool {
		if n.Kind == scene.KindMesh {
			out[id] = describe(id, n, idx)
		}
		return true
	})
	return out
}

func describe(id scene.NodeID, n *scene.Node, idx Index) ComponentInfo {
	info := ComponentInfo{
		InstanceID:  id,
		DisplayName: n.Name,
	}

	rec, matched := idx.Lookup(n.Name)
	if info.DisplayName == "" && matched {
		info.DisplayName = rec.NameOrEmpty()
	}
	if info.DisplayName == "" {
		info.DisplayName = UnnamedComponent
	}

	if matched {
		info.NodeID = rec.ID
		info.MeshIndex = rec.Mesh
		info.ChildCount = len(rec.Children)
	} else {
		info.ChildCount = len(n.Children)
	}
	return info
}
