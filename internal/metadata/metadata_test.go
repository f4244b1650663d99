package metadata

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/stepview/internal/engine/scene"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func part() *scene.Mesh {
	return &scene.Mesh{
		Geometry:  scene.NewGeometry([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil),
		Materials: []*scene.Material{scene.NewMaterial("grey", mgl32.Vec4{0.5, 0.5, 0.5, 1})},
	}
}

func TestParse(t *testing.T) {
	tree, err := Parse([]byte(`{
		"nodes": [
			{"id": 0, "name": "Assembly", "children": [1, 2]},
			{"id": 1, "name": "Arm", "mesh": 0},
			{"id": 2}
		],
		"meshes_count": 1,
		"materials_count": 3
	}`))
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 3)
	assert.Equal(t, []int{1, 2}, tree.Nodes[0].Children)
	assert.Equal(t, 0, *tree.Nodes[1].Mesh)
	assert.Nil(t, tree.Nodes[2].Name)
	assert.Equal(t, 1, *tree.MeshCount)
	assert.Equal(t, 3, *tree.MaterialCount)
}

func TestParseCamelCaseCounts(t *testing.T) {
	tree, err := Parse([]byte(`{"nodes": [], "meshCount": 4, "materialCount": 2}`))
	require.NoError(t, err)
	assert.Equal(t, 4, *tree.MeshCount)
	assert.Equal(t, 2, *tree.MaterialCount)
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "null"} {
		tree, err := Parse([]byte(in))
		assert.NoError(t, err)
		assert.Nil(t, tree)
	}

	_, err := Parse([]byte(`{"nodes": "nope"}`))
	assert.Error(t, err)
}

func TestParseProducerError(t *testing.T) {
	tree, err := Parse([]byte(`{"error": "no renderable geometry", "nodes": []}`))
	require.NoError(t, err)
	assert.Equal(t, "no renderable geometry", tree.Error)
	assert.Empty(t, BuildIndex(tree))
}

func TestTreeMarshalUsesProducerNames(t *testing.T) {
	data, err := json.Marshal(Tree{Nodes: []AssetNode{}, MeshCount: intp(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": [], "meshes_count": 2}`, string(data))
}

func TestBuildIndexKeys(t *testing.T) {
	tree := &Tree{Nodes: []AssetNode{
		{ID: intp(1), Name: strp("Arm")},
		{ID: intp(7), Name: strp("")},
		{ID: intp(8)},
		{Name: strp("Loose")},
		{}, // Neither name nor id: not indexable
	}}

	idx := BuildIndex(tree)
	assert.Len(t, idx, 4)
	for _, key := range []string{"Arm", "node_7", "node_8", "Loose"} {
		_, ok := idx.Lookup(key)
		assert.True(t, ok, key)
	}
	_, ok := idx.Lookup("")
	assert.False(t, ok)
}

func TestBuildIndexNil(t *testing.T) {
	idx := BuildIndex(nil)
	assert.NotNil(t, idx)
	assert.Empty(t, idx)
}

func TestBuildIndexLaterDuplicateWins(t *testing.T) {
	idx := BuildIndex(&Tree{Nodes: []AssetNode{
		{ID: intp(1), Name: strp("Bolt")},
		{ID: intp(2), Name: strp("Bolt")},
	}})
	rec, ok := idx.Lookup("Bolt")
	require.True(t, ok)
	assert.Equal(t, 2, *rec.ID)
}

func TestCorrelateEndToEnd(t *testing.T) {
	tree, err := Parse([]byte(`{"nodes": [{"id": 1, "name": "Arm", "mesh": 0, "children": []}]}`))
	require.NoError(t, err)

	g := scene.NewGraph("model")
	arm := g.AddMesh(g.Root(), "Arm", mgl32.Ident4(), part())

	infos := Correlate(g, g.Root(), BuildIndex(tree))
	require.Len(t, infos, 1)

	info := infos.Get(arm)
	require.NotNil(t, info)
	assert.Equal(t, arm, info.InstanceID)
	assert.Equal(t, "Arm", info.DisplayName)
	require.NotNil(t, info.NodeID)
	assert.Equal(t, 1, *info.NodeID)
	require.NotNil(t, info.MeshIndex)
	assert.Equal(t, 0, *info.MeshIndex)
	assert.Equal(t, 0, info.ChildCount)
}

func TestCorrelateFallback(t *testing.T) {
	idx := BuildIndex(&Tree{Nodes: []AssetNode{{ID: intp(1), Name: strp("Arm"), Children: []int{4, 5}}}})

	g := scene.NewGraph("model")
	bracket := g.AddMesh(g.Root(), "Bracket_01", mgl32.Ident4(), part())
	unnamed := g.AddMesh(g.Root(), "", mgl32.Ident4(), part())
	g.AddGroup(unnamed, "a", mgl32.Ident4())
	g.AddGroup(unnamed, "b", mgl32.Ident4())
	g.AddGroup(g.Root(), "not a mesh", mgl32.Ident4())

	infos := Correlate(g, g.Root(), idx)
	require.Len(t, infos, 2)

	b := infos.Get(bracket)
	assert.Equal(t, "Bracket_01", b.DisplayName)
	assert.Nil(t, b.NodeID)
	assert.Nil(t, b.MeshIndex)
	assert.Equal(t, 0, b.ChildCount)

	u := infos.Get(unnamed)
	assert.Equal(t, UnnamedComponent, u.DisplayName)
	assert.Equal(t, 2, u.ChildCount)
}

func TestCorrelateWithoutMetadataMatchesUnmatched(t *testing.T) {
	g := scene.NewGraph("model")
	arm := g.AddMesh(g.Root(), "Arm", mgl32.Ident4(), part())

	absent := Correlate(g, g.Root(), BuildIndex(nil))
	unmatched := Correlate(g, g.Root(), BuildIndex(&Tree{Nodes: []AssetNode{{ID: intp(3), Name: strp("Other")}}}))
	assert.Equal(t, absent, unmatched)
	assert.Equal(t, "Arm", absent.Get(arm).DisplayName)
}

func TestComponentsGetCopies(t *testing.T) {
	c := Components{3: {InstanceID: 3, DisplayName: "Arm"}}
	info := c.Get(3)
	info.DisplayName = "changed"
	assert.Equal(t, "Arm", c[3].DisplayName)
	assert.Nil(t, c.Get(4))
}

func TestComponentInfoJSON(t *testing.T) {
	data, err := json.Marshal(ComponentInfo{InstanceID: 5, DisplayName: "Arm", NodeID: intp(1), ChildCount: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"instanceId": 5, "displayName": "Arm", "nodeId": 1, "meshIndex": null, "childCount": 2}`, string(data))
}
