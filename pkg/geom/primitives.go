package geom

import "math"

// BoxMesh returns a length x width x height box with one corner at the
// origin, extending along +X, +Y, +Z.
func BoxMesh(length, width, height float64) *Mesh {
	l, w, h := length, width, height
	m := &Mesh{
		Verts: []Vec3{
			{0, 0, 0}, {l, 0, 0}, {l, w, 0}, {0, w, 0},
			{0, 0, h}, {l, 0, h}, {l, w, h}, {0, w, h},
		},
		Tris: [][3]int{
			{0, 2, 1}, {0, 3, 2}, // bottom
			{4, 5, 6}, {4, 6, 7}, // top
			{0, 1, 5}, {0, 5, 4}, // y = 0
			{1, 2, 6}, {1, 6, 5}, // x = l
			{2, 3, 7}, {2, 7, 6}, // y = w
			{3, 0, 4}, {3, 4, 7}, // x = 0
		},
	}
	return m
}

// CylinderMesh returns a cylinder of the given radius and height with its
// base centered on the origin, extending along +Z.
func CylinderMesh(radius, height float64) *Mesh {
	return Extrude(CircleProfile(radius), Vec3{0, 0, height})
}

// SphereMesh returns a UV sphere of the given radius centered on the
// origin.
func SphereMesh(radius float64) *Mesh {
	const rings = 32
	segs := CircleSegments

	m := &Mesh{}
	// Poles plus interior rings.
	m.Verts = append(m.Verts, Vec3{0, 0, -radius})
	for r := 1; r < rings; r++ {
		phi := math.Pi * (float64(r)/rings - 0.5)
		z := radius * math.Sin(phi)
		rr := radius * math.Cos(phi)
		for s := 0; s < segs; s++ {
			a := 2 * math.Pi * float64(s) / float64(segs)
			m.Verts = append(m.Verts, Vec3{rr * math.Cos(a), rr * math.Sin(a), z})
		}
	}
	m.Verts = append(m.Verts, Vec3{0, 0, radius})
	top := len(m.Verts) - 1

	ring := func(r, s int) int { return 1 + (r-1)*segs + s%segs }

	for s := 0; s < segs; s++ {
		m.Tris = append(m.Tris, [3]int{0, ring(1, s+1), ring(1, s)})
	}
	for r := 1; r < rings-1; r++ {
		for s := 0; s < segs; s++ {
			a, b := ring(r, s), ring(r, s+1)
			c, d := ring(r+1, s), ring(r+1, s+1)
			m.Tris = append(m.Tris, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}
	for s := 0; s < segs; s++ {
		m.Tris = append(m.Tris, [3]int{top, ring(rings-1, s), ring(rings-1, s+1)})
	}
	return m
}

// Extrude sweeps a profile along the given vector into a closed solid. The
// profile sits in the z=0 plane; the sweep vector is direction times
// height and need not be axis-aligned.
func Extrude(p *Profile, sweep Vec3) *Mesh {
	n := len(p.Points)
	m := &Mesh{Verts: make([]Vec3, 0, 2*n)}
	for _, pt := range p.Points {
		m.Verts = append(m.Verts, Vec3{pt.X, pt.Y, 0})
	}
	for _, pt := range p.Points {
		m.Verts = append(m.Verts, Vec3{pt.X, pt.Y, 0}.Add(sweep))
	}

	// Side walls.
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.Tris = append(m.Tris,
			[3]int{i, j, j + n},
			[3]int{i, j + n, i + n},
		)
	}

	// Caps: bottom faces -sweep, top faces +sweep.
	for _, t := range triangulate(p.Points) {
		m.Tris = append(m.Tris, [3]int{t[0], t[2], t[1]})
		m.Tris = append(m.Tris, [3]int{t[0] + n, t[1] + n, t[2] + n})
	}

	if m.Volume() < 0 {
		m.Invert()
	}
	return m
}

// Revolve sweeps a profile around an axis through the world origin by
// angleDeg degrees. A full revolution closes on itself; partial
// revolutions are capped with the profile at both ends. Profiles that
// straddle the axis produce self-intersecting geometry; that is left to
// downstream consumers to reject or tolerate.
func Revolve(p *Profile, axis Vec3, angleDeg float64) *Mesh {
	n := len(p.Points)
	full := angleDeg >= 360-1e-9
	steps := int(math.Max(2, math.Round(CircleSegments*math.Abs(angleDeg)/360)))

	ringCount := steps + 1
	if full {
		ringCount = steps
	}

	m := &Mesh{}
	for r := 0; r < ringCount; r++ {
		a := angleDeg * float64(r) / float64(steps)
		for _, pt := range p.Points {
			m.Verts = append(m.Verts, Vec3{pt.X, pt.Y, 0}.RotateAround(axis, a))
		}
	}

	ring := func(r, i int) int { return (r%ringCount)*n + i%n }

	for r := 0; r < steps; r++ {
		for i := 0; i < n; i++ {
			a, b := ring(r, i), ring(r, i+1)
			c, d := ring(r+1, i), ring(r+1, i+1)
			m.Tris = append(m.Tris, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}

	if !full {
		for _, t := range triangulate(p.Points) {
			m.Tris = append(m.Tris, [3]int{t[0], t[2], t[1]})
			last := steps * n
			m.Tris = append(m.Tris, [3]int{t[0] + last, t[1] + last, t[2] + last})
		}
	}

	if m.Volume() < 0 {
		m.Invert()
	}
	return m
}
