package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/stepview/internal/engine/scene"
)

func square() *scene.Geometry {
	return scene.NewGeometry([]mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	}, []uint32{0, 1, 2, 0, 2, 3})
}

func TestMeshVerticesWithoutGroups(t *testing.T) {
	verts, ranges := meshVertices(square())

	require.Len(t, ranges, 1)
	assert.Equal(t, drawRange{first: 0, count: 6, group: -1}, ranges[0])
	require.Len(t, verts, 6*meshStride)

	// Second vertex of the first triangle, then its face normal.
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 1}, verts[meshStride:2*meshStride])
}

func TestMeshVerticesPerGroup(t *testing.T) {
	geo := square()
	geo.Groups = []scene.Group{{Start: 0, Count: 3, Material: 1}, {Start: 3, Count: 3, Material: 0}}

	_, ranges := meshVertices(geo)
	require.Len(t, ranges, 2)
	assert.Equal(t, drawRange{first: 0, count: 3, group: 0}, ranges[0])
	assert.Equal(t, drawRange{first: 3, count: 3, group: 1}, ranges[1])
}

func TestMeshVerticesSkipsBrokenTriangles(t *testing.T) {
	geo := scene.NewGeometry([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []uint32{0, 1, 2, 0, 1, 9})
	verts, ranges := meshVertices(geo)
	assert.Equal(t, int32(3), ranges[0].count)
	assert.Len(t, verts, 3*meshStride)
}

func TestMeshVerticesDegenerateNormal(t *testing.T) {
	geo := scene.NewGeometry([]mgl32.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, nil)
	verts, _ := meshVertices(geo)
	require.Len(t, verts, 3*meshStride)
	assert.Equal(t, []float32{0, 0, 0}, verts[3:6])
}

func TestGridVertices(t *testing.T) {
	g := scene.NewGrid(10, 2)
	verts := gridVertices(g)
	assert.Len(t, verts, len(g.Lines())*lineStride)
	assert.Equal(t, []float32{-5, 0, -5}, verts[:3])
}
