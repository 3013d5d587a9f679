package kernel

import "fmt"

// Unit is a supported input measurement unit. All geometry is computed in
// millimeters; adapters normalize once, before any geometric call.
type Unit string

const (
	UnitMM     Unit = "mm"
	UnitCM     Unit = "cm"
	UnitInches Unit = "inches"
)

// ParseUnit validates a unit name. The empty string defaults to mm.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitMM, "":
		return UnitMM, nil
	case UnitCM:
		return UnitCM, nil
	case UnitInches:
		return UnitInches, nil
	default:
		return "", NewValidationError(fmt.Sprintf("invalid units %q, must be one of: mm, cm, inches", s), nil)
	}
}

// Factor returns the multiplier converting the unit to millimeters.
func (u Unit) Factor() float64 {
	switch u {
	case UnitCM:
		return 10
	case UnitInches:
		return 25.4
	default:
		return 1
	}
}
