package geom

import (
	"math"
	"sort"
)

// Mesh is an indexed triangle mesh. Triangles are wound counter-clockwise
// when viewed from outside the solid, so the signed volume of a closed mesh
// is positive.
type Mesh struct {
	Verts []Vec3
	Tris  [][3]int
}

// Edge is an undirected mesh edge identified by its two vertex indices,
// with A < B.
type Edge struct {
	A, B int
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Verts: make([]Vec3, len(m.Verts)),
		Tris:  make([][3]int, len(m.Tris)),
	}
	copy(c.Verts, m.Verts)
	copy(c.Tris, m.Tris)
	return c
}

// Translate moves every vertex by d.
func (m *Mesh) Translate(d Vec3) {
	for i := range m.Verts {
		m.Verts[i] = m.Verts[i].Add(d)
	}
}

// Rotate rotates every vertex around an axis through origin by angleDeg
// degrees.
func (m *Mesh) Rotate(origin, axis Vec3, angleDeg float64) {
	for i := range m.Verts {
		m.Verts[i] = m.Verts[i].Sub(origin).RotateAround(axis, angleDeg).Add(origin)
	}
}

// Append merges other into m. Vertex indices of other are rebased; other is
// not modified.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Verts)
	m.Verts = append(m.Verts, other.Verts...)
	for _, t := range other.Tris {
		m.Tris = append(m.Tris, [3]int{t[0] + base, t[1] + base, t[2] + base})
	}
}

// Invert flips the orientation of every triangle. An inverted closed mesh
// appended to an enclosing solid represents a cavity: its signed volume is
// negative.
func (m *Mesh) Invert() {
	for i, t := range m.Tris {
		m.Tris[i] = [3]int{t[0], t[2], t[1]}
	}
}

// Volume returns the signed volume of the mesh via the divergence theorem.
// For a concatenation of disjoint closed meshes this is the sum of their
// volumes; cavities represented by inverted meshes subtract.
func (m *Mesh) Volume() float64 {
	var v float64
	for _, t := range m.Tris {
		a, b, c := m.Verts[t[0]], m.Verts[t[1]], m.Verts[t[2]]
		v += a.Dot(b.Cross(c))
	}
	return v / 6
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() Box {
	b := EmptyBox()
	for _, v := range m.Verts {
		b = b.Extend(v)
	}
	return b
}

// normal returns the (unnormalized is fine for comparisons after
// normalization) unit normal of triangle t.
func (m *Mesh) normal(t [3]int) Vec3 {
	a, b, c := m.Verts[t[0]], m.Verts[t[1]], m.Verts[t[2]]
	return b.Sub(a).Cross(c.Sub(a)).Normalized()
}

// FeatureEdges returns the mesh edges whose adjacent triangles meet at a
// dihedral angle of at least minAngleDeg, sorted by vertex index. These are
// the edges a user means when asking to fillet or chamfer "an edge": shared
// edges of coplanar triangles (the interior diagonals of tessellated planar
// faces) are excluded. Boundary edges with a single adjacent triangle are
// always included.
func (m *Mesh) FeatureEdges(minAngleDeg float64) []Edge {
	type adj struct {
		normals []Vec3
	}
	edges := make(map[Edge]*adj)
	for _, t := range m.Tris {
		n := m.normal(t)
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			e := Edge{a, b}
			if edges[e] == nil {
				edges[e] = &adj{}
			}
			edges[e].normals = append(edges[e].normals, n)
		}
	}

	cosThreshold := math.Cos(minAngleDeg * math.Pi / 180)
	var out []Edge
	for e, a := range edges {
		if len(a.normals) != 2 {
			out = append(out, e)
			continue
		}
		if a.normals[0].Dot(a.normals[1]) <= cosThreshold {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// PlanarFaceCount groups adjacent coplanar triangles and returns the number
// of groups. A tessellated box reports 6 faces.
func (m *Mesh) PlanarFaceCount() int {
	const eps = 1e-9

	parent := make([]int, len(m.Tris))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	// Map each edge to the triangles that share it.
	byEdge := make(map[Edge][]int)
	for ti, t := range m.Tris {
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			e := Edge{a, b}
			byEdge[e] = append(byEdge[e], ti)
		}
	}

	normals := make([]Vec3, len(m.Tris))
	for i, t := range m.Tris {
		normals[i] = m.normal(t)
	}

	for _, tris := range byEdge {
		for i := 1; i < len(tris); i++ {
			if normals[tris[0]].Dot(normals[tris[i]]) > 1-eps {
				union(tris[0], tris[i])
			}
		}
	}

	groups := make(map[int]struct{})
	for i := range m.Tris {
		groups[find(i)] = struct{}{}
	}
	return len(groups)
}
