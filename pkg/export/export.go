// Package export writes tessellated solids to exchange formats: STEP
// (ISO 10303-21), STL (ASCII), and OBJ (plain-text vertex/face lines).
package export

import (
	"fmt"
	"strings"
)

// Format identifies an exchange format.
type Format string

const (
	FormatSTEP Format = "step"
	FormatSTL  Format = "stl"
	FormatOBJ  Format = "obj"
)

// SupportedFormats lists every format the writers can produce, in the
// order builds export them.
var SupportedFormats = []Format{FormatSTEP, FormatSTL, FormatOBJ}

// ParseFormat normalizes a format name. Unknown names return an error so
// callers can reject them before any geometry work happens.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatSTEP:
		return FormatSTEP, nil
	case FormatSTL:
		return FormatSTL, nil
	case FormatOBJ:
		return FormatOBJ, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", name)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string { return string(f) }
