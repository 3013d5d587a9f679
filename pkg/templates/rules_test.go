package templates

import (
	"testing"

	"github.com/forgecad/forgecad/pkg/kernel"
)

func newEngine() *RuleEngine {
	return NewRuleEngine(NewRegistry())
}

func TestMatchProduct(t *testing.T) {
	re := newEngine()

	cases := []struct {
		prompt string
		want   string
	}{
		{"box 100x80x50mm", "box"},
		{"create a storage container 15cm x 10cm x 8cm", "box"},
		{"enclosure for a raspberry pi", "enclosure"},
		{"phone stand for my desk", "phone_stand"},
		{"dining table 1200x800x740mm", "table"},
		{"spur gear with 40 teeth", "gear"},
		{"living hinge for a box lid", "hinge"},
		{"wall hook for coats", "hook"},
		{"bicycle frame for 180cm rider", "bicycle"},
	}
	for _, c := range cases {
		got, confidence := re.MatchProduct(c.prompt)
		if got != c.want {
			t.Errorf("Expected %q to match %q, got %q (%.2f)", c.prompt, c.want, got, confidence)
		}
	}

	if got, _ := re.MatchProduct("a poem about spring"); got != "" {
		t.Errorf("Expected no match, got %q", got)
	}
}

func TestMatchMultipleKeywordsBoost(t *testing.T) {
	re := newEngine()

	// Two bicycle keywords outrank one box keyword.
	got, confidence := re.MatchProduct("a bike frame in a box")
	if got != "bicycle" {
		t.Errorf("Expected bicycle, got %q", got)
	}
	if confidence <= 0.5 {
		t.Errorf("Expected boosted confidence above 0.5, got %.2f", confidence)
	}
}

func TestExtractParameters(t *testing.T) {
	re := newEngine()

	params := re.ExtractParameters("box 100x80x50mm")
	if params["length"] != 100.0 || params["width"] != 80.0 || params["height"] != 50.0 {
		t.Errorf("Expected 100x80x50, got %v", params)
	}
	if params["units"] != "mm" {
		t.Errorf("Expected mm, got %v", params["units"])
	}

	params = re.ExtractParameters("frame for a 180cm tall rider in carbon")
	if params["rider_height"] != 180.0 {
		t.Errorf("Expected rider height 180, got %v", params["rider_height"])
	}
	if params["units"] != "cm" {
		t.Errorf("Expected cm, got %v", params["units"])
	}
	if params["material"] != "carbon" {
		t.Errorf("Expected carbon, got %v", params["material"])
	}

	params = re.ExtractParameters("a stand 3 x 4 x 5 inches")
	if params["units"] != "inches" {
		t.Errorf("Expected inches, got %v", params["units"])
	}
}

func TestProcessPrompt(t *testing.T) {
	re := newEngine()

	d, match, err := re.Process("storage box 100x80x50mm")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if match.Template != "box" {
		t.Errorf("Expected box template, got %q", match.Template)
	}
	if d.Length != 100 || d.Width != 80 || d.Height != 50 {
		t.Errorf("Expected 100x80x50, got %vx%vx%v", d.Length, d.Width, d.Height)
	}
	if len(d.Operations) == 0 {
		t.Error("Expected an operation pipeline")
	}
}

func TestProcessUnmatchedPrompt(t *testing.T) {
	re := newEngine()

	_, _, err := re.Process("a nice poem")
	if !kernel.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestProcessMatchedButIncomplete(t *testing.T) {
	re := newEngine()

	// Matched template, but the prompt has no dimensions to extract.
	_, match, err := re.Process("make me a box")
	if !kernel.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if match == nil || match.Template != "box" {
		t.Error("Expected match info to survive the parameter failure")
	}
}
