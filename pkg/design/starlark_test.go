package design

import (
	"context"
	"testing"
	"time"

	"github.com/forgecad/forgecad/pkg/kernel"
)

func TestEvaluateDesignFunction(t *testing.T) {
	se := NewStarlarkEvaluator(0)

	script := `
def generate_design(params):
    return {
        "product_type": "box",
        "units": "mm",
        "length": params["length"],
        "width": params["width"],
        "height": 30.0,
    }
`
	d, err := se.EvaluateDesign(context.Background(), script, map[string]interface{}{
		"length": 120.0,
		"width":  80.0,
	})
	if err != nil {
		t.Fatalf("EvaluateDesign failed: %v", err)
	}
	if d.Length != 120 || d.Width != 80 || d.Height != 30 {
		t.Errorf("Expected 120x80x30, got %vx%vx%v", d.Length, d.Width, d.Height)
	}
}

func TestEvaluateDesignGlobal(t *testing.T) {
	se := NewStarlarkEvaluator(0)

	script := `
design = {
    "product_type": "custom",
    "use_design_language": True,
    "operations": [
        {"type": "SketchRectangle", "width": 100.0, "height": 50.0},
        {"type": "Extrude", "height": 20.0},
    ],
}
`
	d, err := se.EvaluateDesign(context.Background(), script, nil)
	if err != nil {
		t.Fatalf("EvaluateDesign failed: %v", err)
	}
	if len(d.Operations) != 2 {
		t.Fatalf("Expected 2 operations, got %d", len(d.Operations))
	}
	if d.Operations[1].Kind != kernel.OpExtrude {
		t.Errorf("Expected Extrude, got %s", d.Operations[1].Kind)
	}
}

func TestEvaluateDesignGeneratedPipeline(t *testing.T) {
	se := NewStarlarkEvaluator(0)

	// Scripts can compute the pipeline, here a row of holes.
	script := `
def generate_design(params):
    ops = [
        {"type": "SketchRectangle", "width": 200.0, "height": 50.0},
        {"type": "Extrude", "height": 10.0},
    ]
    for i in range(int(params["holes"])):
        ops.append({
            "type": "AddHoles",
            "positions": [[20.0 + i * 40.0, 25.0, 10.0]],
            "diameter": 5.0,
        })
    return {
        "product_type": "plate",
        "use_design_language": True,
        "operations": ops,
    }
`
	d, err := se.EvaluateDesign(context.Background(), script, map[string]interface{}{"holes": 4})
	if err != nil {
		t.Fatalf("EvaluateDesign failed: %v", err)
	}
	if len(d.Operations) != 6 {
		t.Errorf("Expected 6 operations, got %d", len(d.Operations))
	}
}

func TestEvaluateDesignErrors(t *testing.T) {
	se := NewStarlarkEvaluator(0)
	ctx := context.Background()

	if _, err := se.EvaluateDesign(ctx, `x = (`, nil); !kernel.IsValidation(err) {
		t.Errorf("Expected validation error for broken script, got %v", err)
	}
	if _, err := se.EvaluateDesign(ctx, `y = 1`, nil); !kernel.IsValidation(err) {
		t.Errorf("Expected validation error when no design is produced, got %v", err)
	}
	if _, err := se.EvaluateDesign(ctx, `design = "not a dict"`, nil); !kernel.IsValidation(err) {
		t.Errorf("Expected validation error for non-dict design, got %v", err)
	}

	// The produced document still goes through full validation.
	bad := `design = {"product_type": "box", "length": -1.0, "width": 1.0, "height": 1.0}`
	if _, err := se.EvaluateDesign(ctx, bad, nil); !kernel.IsValidation(err) {
		t.Errorf("Expected validation error for bad dimensions, got %v", err)
	}
}

func TestEvaluateDesignTimeout(t *testing.T) {
	se := NewStarlarkEvaluator(50 * time.Millisecond)

	// An unbounded loop must be cut off by the evaluator deadline.
	script := `
def generate_design(params):
    n = 0
    for i in range(1000000000):
        n += i
    return {"product_type": "box", "length": 1.0, "width": 1.0, "height": 1.0}
`
	_, err := se.EvaluateDesign(context.Background(), script, nil)
	if !kernel.IsKernel(err) {
		t.Errorf("Expected kernel error on timeout, got %v", err)
	}
}
