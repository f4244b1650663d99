// Package scene provides the typed scene graph the viewer loads assets into.
//
// Nodes live in an arena owned by a Graph and are addressed by NodeID. Every
// node carries an explicit Kind tag; code that needs drawable geometry checks
// Kind == KindMesh instead of probing for fields.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NodeID indexes a node in its Graph. IDs are stable for the lifetime of the graph.
type NodeID int

// NoNode is the parent of the root and the zero answer of lookups that miss.
const NoNode NodeID = -1

// Kind tags what a node is.
type Kind uint8

const (
	KindGroup  Kind = iota // Transform only
	KindMesh               // Drawable, pickable triangles
	KindHelper             // Drawable reference geometry (grid), never pickable
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindHelper:
		return "helper"
	default:
		return "unknown"
	}
}

// Node is a single scene graph entry.
type Node struct {
	Kind     Kind
	Name     string
	Parent   NodeID
	Children []NodeID
	Local    mgl32.Mat4

	Mesh *Mesh // Set when Kind == KindMesh
	Grid *Grid // Set when Kind == KindHelper
}

// Graph is an arena of nodes rooted at node 0.
type Graph struct {
	nodes []Node
}

// NewGraph creates a graph holding a single root group.
func NewGraph(rootName string) *Graph {
	g := &Graph{}
	g.nodes = append(g.nodes, Node{
		Kind:   KindGroup,
		Name:   rootName,
		Parent: NoNode,
		Local:  mgl32.Ident4(),
	})
	return g
}

// Root returns the root node ID.
func (g *Graph) Root() NodeID { return 0 }

// Len returns the number of nodes in the arena, detached ones included.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node for id, or nil if id is out of range.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[id]
}

// AddGroup appends an empty group under parent.
func (g *Graph) AddGroup(parent NodeID, name string, local mgl32.Mat4) NodeID {
	return g.add(parent, Node{Kind: KindGroup, Name: name, Local: local})
}

// AddMesh appends a mesh node under parent.
func (g *Graph) AddMesh(parent NodeID, name string, local mgl32.Mat4, mesh *Mesh) NodeID {
	return g.add(parent, Node{Kind: KindMesh, Name: name, Local: local, Mesh: mesh})
}

// AddGrid appends a grid helper under parent.
func (g *Graph) AddGrid(parent NodeID, name string, grid *Grid) NodeID {
	return g.add(parent, Node{Kind: KindHelper, Name: name, Local: mgl32.Ident4(), Grid: grid})
}

func (g *Graph) add(parent NodeID, n Node) NodeID {
	id := NodeID(len(g.nodes))
	n.Parent = parent
	g.nodes = append(g.nodes, n)
	if p := g.Node(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Detach unlinks id from its parent. The subtree stays in the arena but is no
// longer reachable from the root.
func (g *Graph) Detach(id NodeID) {
	n := g.Node(id)
	if n == nil || n.Parent == NoNode {
		return
	}
	if p := g.Node(n.Parent); p != nil {
		for i, c := range p.Children {
			if c == id {
				p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
				break
			}
		}
	}
	n.Parent = NoNode
}

// Graft copies the subtree rooted at src's root under parent and returns the
// ID of the copied root. Mesh and grid payloads are shared, not deep-copied.
func (g *Graph) Graft(parent NodeID, src *Graph) NodeID {
	var copyNode func(from NodeID, to NodeID) NodeID
	copyNode = func(from NodeID, to NodeID) NodeID {
		sn := src.Node(from)
		id := g.add(to, Node{
			Kind:  sn.Kind,
			Name:  sn.Name,
			Local: sn.Local,
			Mesh:  sn.Mesh,
			Grid:  sn.Grid,
		})
		for _, c := range sn.Children {
			copyNode(c, id)
		}
		return id
	}
	return copyNode(src.Root(), parent)
}

// World returns the world matrix of id by composing its ancestors' local matrices.
func (g *Graph) World(id NodeID) mgl32.Mat4 {
	m := mgl32.Ident4()
	for n := g.Node(id); n != nil; n = g.Node(n.Parent) {
		m = n.Local.Mul4(m)
	}
	return m
}

// WalkFunc is invoked for every visited node with its world matrix.
// Returning false skips the node's children.
type WalkFunc func(id NodeID, n *Node, world mgl32.Mat4) bool

// Walk visits from and its descendants depth-first in child order.
func (g *Graph) Walk(from NodeID, fn WalkFunc) {
	n := g.Node(from)
	if n == nil {
		return
	}
	parentWorld := mgl32.Ident4()
	if n.Parent != NoNode {
		parentWorld = g.World(n.Parent)
	}
	g.walk(from, parentWorld, fn)
}

func (g *Graph) walk(id NodeID, parentWorld mgl32.Mat4, fn WalkFunc) {
	n := &g.nodes[id]
	world := parentWorld.Mul4(n.Local)
	if !fn(id, n, world) {
		return
	}
	for _, c := range n.Children {
		g.walk(c, world, fn)
	}
}

// Meshes returns the IDs of every mesh node under from, in traversal order.
func (g *Graph) Meshes(from NodeID) []NodeID {
	var ids []NodeID
	g.Walk(from, func(id NodeID, n *Node, _ mgl32.Mat4) bool {
		if n.Kind == KindMesh {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// Dispose releases every material reachable from the root. The graph must not
// be drawn afterwards.
func (g *Graph) Dispose() {
	for i := range g.nodes {
		if m := g.nodes[i].Mesh; m != nil {
			for _, mat := range m.Materials {
				mat.Dispose()
			}
		}
	}
}
