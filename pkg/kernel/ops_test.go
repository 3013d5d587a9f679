package kernel

import (
	"encoding/json"
	"testing"
)

func TestOperationUnmarshalJSON(t *testing.T) {
	var op Operation
	err := json.Unmarshal([]byte(`{"type":"SketchRectangle","width":40,"height":20}`), &op)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if op.Kind != OpSketchRectangle {
		t.Errorf("Expected kind %s, got %s", OpSketchRectangle, op.Kind)
	}

	p, err := op.Rectangle()
	if err != nil {
		t.Fatalf("Rectangle decode failed: %v", err)
	}
	if p.Width != 40 || p.Height != 20 {
		t.Errorf("Expected 40x20, got %vx%v", p.Width, p.Height)
	}
	if !p.Centered {
		t.Error("Expected centered default true")
	}
}

func TestOperationUnmarshalUnknownType(t *testing.T) {
	var op Operation
	err := json.Unmarshal([]byte(`{"type":"Bevel"}`), &op)
	if err == nil {
		t.Fatal("Expected error for unknown operation type")
	}
}

func TestOperationMarshalRoundTrip(t *testing.T) {
	raw := []byte(`{"type":"Extrude","height":25}`)
	var op Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	out, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("re-Unmarshal failed: %v", err)
	}
	if got["type"] != "Extrude" || got["height"] != float64(25) {
		t.Errorf("Round trip lost fields: %v", got)
	}
}

func TestRectangleDefaults(t *testing.T) {
	op := MustOperation(OpSketchRectangle, nil)
	p, err := op.Rectangle()
	if err != nil {
		t.Fatalf("Rectangle decode failed: %v", err)
	}
	if p.Width != 100 || p.Height != 100 || !p.Centered {
		t.Errorf("Expected 100x100 centered, got %+v", p)
	}
}

func TestCircleRadiusResolution(t *testing.T) {
	cases := []struct {
		name   string
		params interface{}
		want   float64
	}{
		{"explicit radius", map[string]float64{"radius": 12}, 12},
		{"diameter only", map[string]float64{"diameter": 30}, 15},
		{"radius wins over diameter", map[string]float64{"radius": 8, "diameter": 100}, 8},
		{"default", nil, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := MustOperation(OpSketchCircle, tc.params)
			p, err := op.Circle()
			if err != nil {
				t.Fatalf("Circle decode failed: %v", err)
			}
			if p.Radius != tc.want {
				t.Errorf("Expected radius %v, got %v", tc.want, p.Radius)
			}
		})
	}
}

func TestBooleanDefaults(t *testing.T) {
	op := MustOperation(OpCut, nil)
	p, err := op.Boolean()
	if err != nil {
		t.Fatalf("Boolean decode failed: %v", err)
	}
	if p.ToolType != ToolBox {
		t.Errorf("Expected default tool %q, got %q", ToolBox, p.ToolType)
	}
	if p.Length != 10 || p.Width != 10 || p.Height != 10 || p.Radius != 5 {
		t.Errorf("Unexpected tool defaults: %+v", p)
	}
}

func TestFilletDefaultSelectsAllEdges(t *testing.T) {
	op := MustOperation(OpFillet, nil)
	p, err := op.Fillet()
	if err != nil {
		t.Fatalf("Fillet decode failed: %v", err)
	}
	if p.Radius != 1 {
		t.Errorf("Expected radius 1, got %v", p.Radius)
	}
	if p.Edges != nil {
		t.Errorf("Expected nil edge list (all edges), got %v", p.Edges)
	}
}

func TestBooleanScale(t *testing.T) {
	p := BooleanParams{Length: 1, Width: 2, Height: 3, Radius: 4, Position: [3]float64{1, 1, 1}}
	p.Scale(25.4)
	if p.Length != 25.4 || p.Position[2] != 25.4 {
		t.Errorf("Expected inch scaling, got %+v", p)
	}
}

func TestLegsDefaults(t *testing.T) {
	op := MustOperation(OpAddLegs, nil)
	p, err := op.Legs()
	if err != nil {
		t.Fatalf("Legs decode failed: %v", err)
	}
	if p.Count != 4 || p.Height != 700 || p.Radius != 25 || p.Inset != 50 {
		t.Errorf("Unexpected leg defaults: %+v", p)
	}
}

func TestOpKindValid(t *testing.T) {
	for _, k := range AllOpKinds {
		if !k.Valid() {
			t.Errorf("Expected %s to be valid", k)
		}
	}
	if OpKind("Loft").Valid() {
		t.Error("Expected Loft to be invalid")
	}
}

func TestParseUnit(t *testing.T) {
	cases := []struct {
		in     string
		want   Unit
		factor float64
		ok     bool
	}{
		{"mm", UnitMM, 1, true},
		{"", UnitMM, 1, true},
		{"cm", UnitCM, 10, true},
		{"inches", UnitInches, 25.4, true},
		{"furlongs", "", 0, false},
	}
	for _, tc := range cases {
		u, err := ParseUnit(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseUnit(%q) failed: %v", tc.in, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("Expected error for %q", tc.in)
			} else if !IsValidation(err) {
				t.Errorf("Expected validation error for %q, got %v", tc.in, err)
			}
			continue
		}
		if u != tc.want || u.Factor() != tc.factor {
			t.Errorf("ParseUnit(%q) = %v (factor %v), want %v (factor %v)", tc.in, u, u.Factor(), tc.want, tc.factor)
		}
	}
}
