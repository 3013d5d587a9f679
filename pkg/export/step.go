package export

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/forgecad/forgecad/pkg/geom"
)

// WriteSTEP writes the mesh as an ISO 10303-21 file containing a faceted
// boundary representation: one CARTESIAN_POINT per vertex, one POLY_LOOP
// backed FACE per triangle, gathered into a CLOSED_SHELL and FACETED_BREP.
// This is the exchangeable subset of AP203; blend features recorded on a
// solid are not re-expressed as analytic surfaces.
func WriteSTEP(w io.Writer, name string, m *geom.Mesh, now time.Time) error {
	bw := bufio.NewWriter(w)

	write := func(format string, args ...interface{}) error {
		_, err := fmt.Fprintf(bw, format, args...)
		return err
	}

	if err := write("ISO-10303-21;\nHEADER;\n"); err != nil {
		return err
	}
	if err := write("FILE_DESCRIPTION(('%s'),'2;1');\n", name); err != nil {
		return err
	}
	if err := write("FILE_NAME('%s.step','%s',('forgecad'),(''),'forgecad','forgecad','');\n",
		name, now.UTC().Format("2006-01-02T15:04:05")); err != nil {
		return err
	}
	if err := write("FILE_SCHEMA(('CONFIG_CONTROL_DESIGN'));\nENDSEC;\nDATA;\n"); err != nil {
		return err
	}

	// Entity IDs are assigned sequentially: points first, then per-face
	// loop/bound/face triples, then the shell and brep.
	id := 0
	next := func() int { id++; return id }

	pointIDs := make([]int, len(m.Verts))
	for i, v := range m.Verts {
		pointIDs[i] = next()
		if err := write("#%d=CARTESIAN_POINT('',(%g,%g,%g));\n", pointIDs[i], v.X, v.Y, v.Z); err != nil {
			return err
		}
	}

	faceIDs := make([]int, 0, len(m.Tris))
	for _, t := range m.Tris {
		loop := next()
		if err := write("#%d=POLY_LOOP('',(#%d,#%d,#%d));\n",
			loop, pointIDs[t[0]], pointIDs[t[1]], pointIDs[t[2]]); err != nil {
			return err
		}
		bound := next()
		if err := write("#%d=FACE_OUTER_BOUND('',#%d,.T.);\n", bound, loop); err != nil {
			return err
		}
		face := next()
		if err := write("#%d=FACE_SURFACE('',(#%d),$,.T.);\n", face, bound); err != nil {
			return err
		}
		faceIDs = append(faceIDs, face)
	}

	shell := next()
	if err := write("#%d=CLOSED_SHELL('',(", shell); err != nil {
		return err
	}
	for i, f := range faceIDs {
		sep := ","
		if i == 0 {
			sep = ""
		}
		if err := write("%s#%d", sep, f); err != nil {
			return err
		}
	}
	if err := write("));\n"); err != nil {
		return err
	}
	if err := write("#%d=FACETED_BREP('%s',#%d);\n", next(), name, shell); err != nil {
		return err
	}

	if err := write("ENDSEC;\nEND-ISO-10303-21;\n"); err != nil {
		return err
	}
	return bw.Flush()
}
