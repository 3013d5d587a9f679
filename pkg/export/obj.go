package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/forgecad/forgecad/pkg/geom"
)

// WriteOBJ writes the mesh as Wavefront OBJ: comment header, one `v` line
// per vertex, one `f` line per triangle. OBJ face indices are 1-based.
func WriteOBJ(w io.Writer, comments []string, m *geom.Mesh) error {
	bw := bufio.NewWriter(w)
	for _, c := range comments {
		if _, err := fmt.Fprintf(bw, "# %s\n", c); err != nil {
			return err
		}
	}
	if len(comments) > 0 {
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	for _, v := range m.Verts {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z); err != nil {
			return err
		}
	}
	for _, t := range m.Tris {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}
