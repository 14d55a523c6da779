package vision

import (
	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

// BuildTriangleFan turns an outline into a fan around points[0].
// Triangle i is (0, i+1, i+2). Fewer than three points yield no triangles.
func BuildTriangleFan(points []r3.Vec) (vertices []r3.Vec, indices []int) {
	vertices = make([]r3.Vec, len(points))
	copy(vertices, points)
	return vertices, appendFanIndices(nil, len(points))
}

func appendFanIndices(dst []int, vertexCount int) []int {
	if vertexCount < 3 {
		return dst
	}
	for i := 0; i < vertexCount-2; i++ {
		dst = append(dst, 0, i+1, i+2)
	}
	return dst
}

// MeshStats summarizes the last rebuild.
type MeshStats struct {
	Vertices  int
	Triangles int
	Indices   int
}

// Mesh holds renderable fan geometry. Rebuild overwrites the buffers in place,
// so slices obtained before a rebuild must not be retained.
type Mesh struct {
	Vertices []r3.Vec
	Indices  []int
	Normals  []r3.Vec
}

// Rebuild replaces the mesh contents with a fan over points.
func (m *Mesh) Rebuild(points []r3.Vec) {
	m.Vertices = append(m.Vertices[:0], points...)
	m.Indices = appendFanIndices(m.Indices[:0], len(points))
	m.recalculateNormals()
}

// Clear empties the mesh while keeping its buffers.
func (m *Mesh) Clear() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
	m.Normals = m.Normals[:0]
}

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

func (m *Mesh) Stats() MeshStats {
	return MeshStats{
		Vertices:  len(m.Vertices),
		Triangles: m.TriangleCount(),
		Indices:   len(m.Indices),
	}
}

// recalculateNormals accumulates area-weighted face normals per vertex.
// Vertices without a non-degenerate triangle fall back to the up axis.
func (m *Mesh) recalculateNormals() {
	m.Normals = m.Normals[:0]
	for range m.Vertices {
		m.Normals = append(m.Normals, r3.Vec{})
	}

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		v0 := m.Vertices[i0]
		face := r3.Cross(r3.Sub(m.Vertices[i1], v0), r3.Sub(m.Vertices[i2], v0))
		m.Normals[i0] = r3.Add(m.Normals[i0], face)
		m.Normals[i1] = r3.Add(m.Normals[i1], face)
		m.Normals[i2] = r3.Add(m.Normals[i2], face)
	}

	for i, n := range m.Normals {
		if phys.IsZero(n) {
			m.Normals[i] = phys.Up
			continue
		}
		m.Normals[i] = r3.Unit(n)
	}
}
