package design

import (
	"strings"
	"testing"

	"github.com/forgecad/forgecad/pkg/kernel"
)

func TestDecodeBoxDesign(t *testing.T) {
	d, err := Decode([]byte(`{
		"product_type": "box",
		"units": "mm",
		"length": 120,
		"width": 80,
		"height": 40,
		"wall_thickness": 2,
		"features": ["fillet", "screw_holes"]
	}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d.ProductType != "box" {
		t.Errorf("Expected product_type box, got %q", d.ProductType)
	}
	if d.Length != 120 || d.Width != 80 || d.Height != 40 {
		t.Errorf("Expected dimensions 120x80x40, got %vx%vx%v", d.Length, d.Width, d.Height)
	}
	if !d.HasFeature("Fillet") {
		t.Error("Expected fillet feature to match case-insensitively")
	}
	if d.HasFeature("shell") {
		t.Error("Expected shell feature to be absent")
	}
}

func TestDecodeOperationPipeline(t *testing.T) {
	d, err := Decode([]byte(`{
		"product_type": "custom",
		"use_design_language": true,
		"operations": [
			{"type": "SketchRectangle", "width": 100, "height": 50},
			{"type": "Extrude", "height": 20}
		]
	}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(d.Operations) != 2 {
		t.Fatalf("Expected 2 operations, got %d", len(d.Operations))
	}
	if d.Operations[0].Kind != kernel.OpSketchRectangle {
		t.Errorf("Expected SketchRectangle, got %s", d.Operations[0].Kind)
	}
	if d.Operations[1].Kind != kernel.OpExtrude {
		t.Errorf("Expected Extrude, got %s", d.Operations[1].Kind)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			"missing product type",
			`{"units": "mm", "length": 10, "width": 10, "height": 10}`,
			"product_type",
		},
		{
			"bad units",
			`{"product_type": "box", "units": "furlongs", "length": 10, "width": 10, "height": 10}`,
			"units",
		},
		{
			"negative length",
			`{"product_type": "box", "units": "mm", "length": -5, "width": 10, "height": 10}`,
			"length",
		},
		{
			"missing dimensions",
			`{"product_type": "box", "units": "mm"}`,
			"length",
		},
		{
			"flag without operations",
			`{"product_type": "custom", "use_design_language": true}`,
			"operations",
		},
		{
			"operations without flag",
			`{"product_type": "custom", "length": 10, "width": 10, "height": 10,
			  "operations": [{"type": "Extrude"}]}`,
			"use_design_language",
		},
		{
			"bicycle without rider height",
			`{"product_type": "bicycle"}`,
			"rider_height",
		},
		{
			"malformed JSON",
			`{"product_type":`,
			"JSON",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode([]byte(c.doc))
			if !kernel.IsValidation(err) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("Expected error to mention %q, got %q", c.want, err.Error())
			}
		})
	}
}

func TestDecodeBicycleDesign(t *testing.T) {
	d, err := Decode([]byte(`{"product_type": "bicycle", "units": "cm", "rider_height": 180, "material": "steel"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d.RiderHeight != 180 {
		t.Errorf("Expected rider_height 180, got %v", d.RiderHeight)
	}
	if d.Material != "steel" {
		t.Errorf("Expected material steel, got %q", d.Material)
	}
}

func TestDecodeRoutingHints(t *testing.T) {
	d, err := Decode([]byte(`{
		"product_type": "box", "length": 10, "width": 10, "height": 10,
		"engine": "meshkit", "is_assembly": true
	}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d.Engine != "meshkit" {
		t.Errorf("Expected engine meshkit, got %q", d.Engine)
	}
	if !d.Assembly {
		t.Error("Expected assembly hint to be set")
	}
}
