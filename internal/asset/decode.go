package asset

import (
	"bytes"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/engine/scene"
	"github.com/Faultbox/stepview/internal/logger"
)

// RootName names the root group of every decoded asset.
const RootName = "asset"

var defaultColor = mgl32.Vec4{1, 1, 1, 1}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// DecodeBytes decodes a binary glTF payload into a scene graph.
func DecodeBytes(data []byte) (*scene.Graph, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a glTF document (binary or JSON with embedded buffers) from r
// and converts its default scene into a scene graph.
func Decode(r io.Reader) (*scene.Graph, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, decodeErr("parsing glTF: %v", err)
	}
	return Build(doc)
}

// Build converts a decoded glTF document into a scene graph rooted at a
// group named RootName. Mesh nodes keep the glTF node's name, or the mesh's
// name when the node has none. A mesh with several primitives becomes one
// mesh node with one geometry group and material per primitive.
func Build(doc *gltf.Document) (*scene.Graph, error) {
	b := &builder{
		doc:     doc,
		graph:   scene.NewGraph(RootName),
		visited: make(map[int]bool, len(doc.Nodes)),
		log:     logger.Named("decode"),
	}
	b.materials = make([]*scene.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		b.materials[i] = convertMaterial(m)
	}

	roots, err := b.sceneRoots()
	if err != nil {
		return nil, err
	}
	for _, idx := range roots {
		if err := b.addNode(b.graph.Root(), idx); err != nil {
			return nil, err
		}
	}
	return b.graph, nil
}

type builder struct {
	doc       *gltf.Document
	graph     *scene.Graph
	materials []*scene.Material
	fallback  *scene.Material
	visited   map[int]bool
	log       *zap.Logger
}

// sceneRoots returns the node indices of the default scene, the first scene
// when no default is set, or every parentless node when there are no scenes.
func (b *builder) sceneRoots() ([]int, error) {
	doc := b.doc
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = *doc.Scene
		}
		if si < 0 || si >= len(doc.Scenes) {
			return nil, decodeErr("default scene %d out of range", si)
		}
		return doc.Scenes[si].Nodes, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

func (b *builder) addNode(parent scene.NodeID, idx int) error {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return decodeErr("node %d out of range", idx)
	}
	if b.visited[idx] {
		return decodeErr("node %d appears twice in the hierarchy", idx)
	}
	b.visited[idx] = true

	n := b.doc.Nodes[idx]
	local := nodeMatrix(n)

	var id scene.NodeID
	if n.Mesh != nil {
		mesh, name, err := b.buildMesh(*n.Mesh)
		if err != nil {
			return err
		}
		if n.Name != "" {
			name = n.Name
		}
		if mesh != nil {
			id = b.graph.AddMesh(parent, name, local, mesh)
		} else {
			id = b.graph.AddGroup(parent, name, local)
		}
	} else {
		id = b.graph.AddGroup(parent, n.Name, local)
	}

	for _, c := range n.Children {
		if err := b.addNode(id, c); err != nil {
			return err
		}
	}
	return nil
}

// buildMesh returns nil when the mesh has no triangle primitives.
func (b *builder) buildMesh(mi int) (*scene.Mesh, string, error) {
	if mi < 0 || mi >= len(b.doc.Meshes) {
		return nil, "", decodeErr("mesh %d out of range", mi)
	}
	m := b.doc.Meshes[mi]

	geo := &scene.Geometry{}
	var materials []*scene.Material
	for pi, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			b.log.Debug("skipping non-triangle primitive", zap.Int("mesh", mi), zap.Int("primitive", pi))
			continue
		}
		positions, indices, err := b.readPrimitive(p)
		if err != nil {
			return nil, "", decodeErr("mesh %d primitive %d: %v", mi, pi, err)
		}

		base := uint32(len(geo.Positions))
		start := len(geo.Indices)
		for _, v := range positions {
			geo.Positions = append(geo.Positions, mgl32.Vec3(v))
		}
		for _, i := range indices {
			geo.Indices = append(geo.Indices, base+i)
		}
		geo.Groups = append(geo.Groups, scene.Group{
			Start:    start,
			Count:    len(indices),
			Material: len(materials),
		})
		materials = append(materials, b.material(p.Material))
	}

	if len(geo.Groups) == 0 {
		return nil, m.Name, nil
	}
	return &scene.Mesh{Geometry: geo, Materials: materials}, m.Name, nil
}

func (b *builder) readPrimitive(p *gltf.Primitive) ([][3]float32, []uint32, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, errMissingPosition
	}
	posAcc, err := b.accessor(posIdx)
	if err != nil {
		return nil, nil, err
	}
	positions, err := modeler.ReadPosition(b.doc, posAcc, nil)
	if err != nil {
		return nil, nil, err
	}

	if p.Indices == nil {
		indices := make([]uint32, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return positions, indices, nil
	}

	idxAcc, err := b.accessor(*p.Indices)
	if err != nil {
		return nil, nil, err
	}
	indices, err := modeler.ReadIndices(b.doc, idxAcc, nil)
	if err != nil {
		return nil, nil, err
	}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return nil, nil, errIndexRange
		}
	}
	return positions, indices[:len(indices)-len(indices)%3], nil
}

func (b *builder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(b.doc.Accessors) {
		return nil, errAccessorRange
	}
	return b.doc.Accessors[i], nil
}

func (b *builder) material(idx *int) *scene.Material {
	if idx != nil && *idx >= 0 && *idx < len(b.materials) {
		return b.materials[*idx]
	}
	if b.fallback == nil {
		b.fallback = scene.NewMaterial("default", defaultColor)
	}
	return b.fallback
}

func convertMaterial(m *gltf.Material) *scene.Material {
	color := defaultColor
	if m.PBRMetallicRoughness != nil {
		c := m.PBRMetallicRoughness.BaseColorFactorOrDefault()
		color = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
	}
	mat := scene.NewMaterial(m.Name, color)
	e := m.EmissiveFactor
	mat.Emissive = mgl32.Vec3{float32(e[0]), float32(e[1]), float32(e[2])}
	return mat
}

// nodeMatrix returns the node's matrix if it has one, otherwise T*R*S.
func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	if m := n.MatrixOrDefault(); m != identity {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize()

	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}
