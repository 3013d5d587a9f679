package geom

// triangulate performs ear-clipping triangulation of a simple
// counter-clockwise polygon and returns index triples into pts. Degenerate
// input (fewer than three points, or no clippable ear left) yields a fan as
// a last resort so the caller always receives a covering set of triangles.
func triangulate(pts []Vec2) [][3]int {
	n := len(pts)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var tris [][3]int
	for len(idx) > 3 {
		clipped := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !isEar(pts, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Collinear or self-intersecting leftovers; fan the rest.
			for i := 1; i < len(idx)-1; i++ {
				tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
			}
			return tris
		}
	}
	tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	return tris
}

func isEar(pts []Vec2, idx []int, a, b, c int) bool {
	// Convex corner for CCW winding.
	if pts[b].Sub(pts[a]).Cross(pts[c].Sub(pts[b])) <= 0 {
		return false
	}
	for _, i := range idx {
		if i == a || i == b || i == c {
			continue
		}
		if pointInTriangle(pts[i], pts[a], pts[b], pts[c]) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := p.Sub(a).Cross(b.Sub(a))
	d2 := p.Sub(b).Cross(c.Sub(b))
	d3 := p.Sub(c).Cross(a.Sub(c))
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
