package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

func fanPoints(n int) []r3.Vec {
	pts := []r3.Vec{{}}
	for i := 0; i < n; i++ {
		pts = append(pts, r3.Scale(5, DirectionFromAngle(-60+float64(i)*120/float64(n-1))))
	}
	return pts
}

func TestBuildTriangleFanIndices(t *testing.T) {
	for _, n := range []int{3, 4, 9, 200} {
		pts := fanPoints(n - 1)
		require.Len(t, pts, n)

		vertices, indices := BuildTriangleFan(pts)
		assert.Equal(t, pts, vertices)
		require.Len(t, indices, 3*(n-2))
		for i := 0; i < n-2; i++ {
			assert.Equal(t, []int{0, i + 1, i + 2}, indices[3*i:3*i+3])
		}
	}
}

func TestBuildTriangleFanTooFewPoints(t *testing.T) {
	for _, pts := range [][]r3.Vec{nil, {{}}, {{}, {Z: 1}}} {
		vertices, indices := BuildTriangleFan(pts)
		assert.Len(t, vertices, len(pts))
		assert.Empty(t, indices)
	}
}

func TestBuildTriangleFanCopiesVertices(t *testing.T) {
	pts := fanPoints(3)
	vertices, _ := BuildTriangleFan(pts)
	pts[1] = r3.Vec{X: 99}
	assert.NotEqual(t, pts[1], vertices[1])
}

func TestMeshRebuildInPlace(t *testing.T) {
	var m Mesh
	m.Rebuild(fanPoints(10))
	assert.Equal(t, MeshStats{Vertices: 11, Triangles: 9, Indices: 27}, m.Stats())

	vertexBuf := &m.Vertices[0]
	m.Rebuild(fanPoints(4))
	assert.Equal(t, MeshStats{Vertices: 5, Triangles: 3, Indices: 9}, m.Stats())
	assert.Same(t, vertexBuf, &m.Vertices[0], "buffers are reused")

	m.Rebuild([]r3.Vec{{}, {Z: 1}})
	assert.Zero(t, m.TriangleCount())

	m.Clear()
	assert.Equal(t, MeshStats{}, m.Stats())
}

func TestMeshNormalsFaceUp(t *testing.T) {
	var m Mesh
	m.Rebuild(fanPoints(6))
	require.Len(t, m.Normals, len(m.Vertices))
	for _, n := range m.Normals {
		assert.InDelta(t, 0, n.X, 1e-9)
		assert.InDelta(t, 1, n.Y, 1e-9)
		assert.InDelta(t, 0, n.Z, 1e-9)
	}

	// degenerate: all points collinear with the apex
	m.Rebuild([]r3.Vec{{}, {Z: 1}, {Z: 2}})
	for _, n := range m.Normals {
		assert.Equal(t, phys.Up, n)
	}
}
