package frame

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forgecad/forgecad/pkg/export"
	"github.com/forgecad/forgecad/pkg/kernel"
)

// Result is the structured outcome of a frame build.
type Result struct {
	Success     bool       `json:"success"`
	BuildID     string     `json:"build_id"`
	ProductType string     `json:"product_type"`
	RiderHeight float64    `json:"rider_height"`
	Material    Material   `json:"material"`
	Dimensions  Dimensions `json:"dimensions"`
	Files       []string   `json:"files"`
	Error       string     `json:"error,omitempty"`
}

// Export writes the frame in every requested format (all supported
// formats when none are given) and returns the structured result.
func Export(f *Frame, buildID, outputDir string, formats []export.Format) (*Result, error) {
	if len(formats) == 0 {
		formats = export.SupportedFormats
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, kernel.NewKernelError("cannot create output directory", err)
	}

	res := &Result{
		Success:     true,
		BuildID:     buildID,
		ProductType: "bicycle_frame",
		RiderHeight: f.RiderHeight,
		Material:    f.Material,
		Dimensions:  f.Dimensions,
		Files:       []string{},
	}

	name := "frame-" + buildID
	for _, format := range formats {
		path := filepath.Join(outputDir, buildID+"."+format.Ext())
		if err := writeFormat(f, format, name, path); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}
	return res, nil
}

func writeFormat(f *Frame, format export.Format, name, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return kernel.NewKernelError("cannot create export file", err)
	}
	defer file.Close()

	switch format {
	case export.FormatSTEP:
		err = export.WriteSTEP(file, name, f.Mesh, time.Now())
	case export.FormatSTL:
		err = export.WriteSTL(file, name, f.Mesh)
	case export.FormatOBJ:
		comments := []string{
			fmt.Sprintf("rider height %.0fmm", f.RiderHeight),
			fmt.Sprintf("material %s", f.Material),
		}
		err = export.WriteOBJ(file, comments, f.Mesh)
	default:
		err = kernel.NewConfigurationError("unknown export format "+string(format), nil)
	}
	if err != nil {
		return kernel.NewKernelError("export failed", err)
	}
	return nil
}
