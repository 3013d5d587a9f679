// Package design decodes and validates design documents.
//
// A design document is the JSON input to a build: a product type plus
// either overall dimensions, an explicit operation pipeline, or the
// parameters of a dedicated generator. Validation happens in three
// layers: struct tags for field-level rules, cross-field checks for
// rules the tags cannot express, and an optional CUE schema pass for
// callers that want structural validation before decoding.
package design

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/forgecad/forgecad/pkg/kernel"
)

// Design is a decoded design document.
type Design struct {
	ProductType string `json:"product_type" validate:"required"`
	Units       string `json:"units,omitempty" validate:"omitempty,oneof=mm cm inches"`

	// Overall dimensions, used by template-driven products.
	Length        float64 `json:"length,omitempty" validate:"omitempty,gt=0"`
	Width         float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height        float64 `json:"height,omitempty" validate:"omitempty,gt=0"`
	WallThickness float64 `json:"wall_thickness,omitempty" validate:"omitempty,gt=0"`

	// Feature names a template may honor, e.g. "fillet" or "screw_holes".
	Features []string `json:"features,omitempty"`

	// Explicit operation pipeline; requires UseDesignLanguage.
	UseDesignLanguage bool               `json:"use_design_language,omitempty"`
	Operations        []kernel.Operation `json:"operations,omitempty"`

	// Bicycle frame generator parameters.
	RiderHeight float64 `json:"rider_height,omitempty" validate:"omitempty,gt=0"`
	Material    string  `json:"material,omitempty"`

	// Engine routing.
	Engine string `json:"engine,omitempty"`
	kernel.JobHints
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors by JSON field name, the way callers wrote them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Decode parses and validates a design document.
func Decode(data []byte) (*Design, error) {
	var d Design
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, kernel.NewValidationError("invalid design JSON", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the document's field-level and cross-field rules.
func (d *Design) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			return kernel.NewValidationError(describeFieldError(verrs[0]), err)
		}
		return kernel.NewValidationError("design validation failed", err)
	}

	if d.UseDesignLanguage && len(d.Operations) == 0 {
		return kernel.NewValidationError("use_design_language is set but operations is empty", nil)
	}
	if !d.UseDesignLanguage && len(d.Operations) > 0 {
		return kernel.NewValidationError("operations given without use_design_language", nil)
	}

	if d.UseDesignLanguage {
		return nil
	}
	switch d.ProductType {
	case "bicycle", "bicycle_frame":
		if d.RiderHeight <= 0 {
			return kernel.NewValidationError("rider_height must be a positive number", nil)
		}
	default:
		for _, dim := range []struct {
			name  string
			value float64
		}{
			{"length", d.Length},
			{"width", d.Width},
			{"height", d.Height},
		} {
			if dim.value <= 0 {
				return kernel.NewValidationError(
					fmt.Sprintf("%s must be a positive number, got: %v", dim.name, dim.value), nil)
			}
		}
	}
	return nil
}

// HasFeature reports whether the document requests a named feature.
func (d *Design) HasFeature(name string) bool {
	for _, f := range d.Features {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return "missing required field: " + field
	case "oneof":
		return fmt.Sprintf("invalid %s %q, must be one of: %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be a positive number, got: %v", field, fe.Value())
	default:
		return fmt.Sprintf("invalid %s: %v", field, fe.Value())
	}
}
