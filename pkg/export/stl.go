package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/forgecad/forgecad/pkg/geom"
)

// WriteSTL writes the mesh as ASCII STL. The solid name appears in the
// header and footer as required by the format.
func WriteSTL(w io.Writer, name string, m *geom.Mesh) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "solid %s\n", name); err != nil {
		return err
	}
	for _, t := range m.Tris {
		a, b, c := m.Verts[t[0]], m.Verts[t[1]], m.Verts[t[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalized()
		if _, err := fmt.Fprintf(bw, "  facet normal %g %g %g\n    outer loop\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
		for _, v := range []geom.Vec3{a, b, c} {
			if _, err := fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(bw, "    endloop\n  endfacet\n"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "endsolid %s\n", name); err != nil {
		return err
	}
	return bw.Flush()
}
