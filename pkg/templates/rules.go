package templates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forgecad/forgecad/pkg/design"
	"github.com/forgecad/forgecad/pkg/kernel"
)

// matchThreshold is the minimum normalized score for a prompt match;
// below it the prompt is considered unmatched.
const matchThreshold = 0.15

var productPatterns = map[string][]*regexp.Regexp{
	"box": {
		regexp.MustCompile(`\bbox\b`),
		regexp.MustCompile(`\bcontainer\b`),
		regexp.MustCompile(`\bcase\b`),
		regexp.MustCompile(`\bstorage\b`),
		regexp.MustCompile(`\bcover\b`),
	},
	"enclosure": {
		regexp.MustCompile(`\benclosure\b`),
		regexp.MustCompile(`\belectronics\s+(box|enclosure|case)\b`),
		regexp.MustCompile(`\bproject\s+box\b`),
		regexp.MustCompile(`\bpcb\s+(case|enclosure|box)\b`),
		regexp.MustCompile(`\braspberry\s+pi\b`),
		regexp.MustCompile(`\barduino\b`),
		regexp.MustCompile(`\besp32\b`),
	},
	"phone_stand": {
		regexp.MustCompile(`\bphone\s+stand\b`),
		regexp.MustCompile(`\btablet\s+stand\b`),
		regexp.MustCompile(`\bphone\s+holder\b`),
		regexp.MustCompile(`\btablet\s+holder\b`),
		regexp.MustCompile(`\bdevice\s+(stand|holder)\b`),
	},
	"table": {
		regexp.MustCompile(`\btable\b`),
		regexp.MustCompile(`\bdesk\b`),
		regexp.MustCompile(`\bworkbench\b`),
		regexp.MustCompile(`\bdining\b`),
	},
	"gear": {
		regexp.MustCompile(`\bgear\b`),
		regexp.MustCompile(`\bcog\b`),
		regexp.MustCompile(`\bsprocket\b`),
		regexp.MustCompile(`\btransmission\b`),
	},
	"hinge": {
		regexp.MustCompile(`\bhinge\b`),
		regexp.MustCompile(`\bfolding\b`),
		regexp.MustCompile(`\bpivot\b`),
	},
	"hook": {
		regexp.MustCompile(`\bhook\b`),
		regexp.MustCompile(`\bhanger\b`),
		regexp.MustCompile(`\b(coat|key|tool|wall)\s+hook\b`),
	},
	"bicycle": {
		regexp.MustCompile(`\bbicycle\b`),
		regexp.MustCompile(`\bbike\b`),
		regexp.MustCompile(`\bframe\b`),
		regexp.MustCompile(`\brider\b`),
	},
}

// Match is the outcome of prompt matching.
type Match struct {
	Template   string
	Confidence float64
	Params     map[string]interface{}
}

// RuleEngine matches free-text prompts to templates and extracts their
// parameters.
type RuleEngine struct {
	registry *Registry
}

// NewRuleEngine creates a rule engine over a template registry.
func NewRuleEngine(registry *Registry) *RuleEngine {
	return &RuleEngine{registry: registry}
}

// MatchProduct scores the prompt against every product's patterns and
// returns the best template name with its confidence. An empty name
// means no template cleared the threshold.
func (re *RuleEngine) MatchProduct(prompt string) (string, float64) {
	lower := strings.ToLower(prompt)

	var bestName string
	var bestScore float64
	for name, patterns := range productPatterns {
		matches := 0
		for _, p := range patterns {
			if p.MatchString(lower) {
				matches++
			}
		}
		score := float64(matches) / float64(len(patterns))
		if matches > 1 {
			score *= 1.5
		}
		if score > bestScore || (score == bestScore && score > 0 && name < bestName) {
			bestScore = score
			bestName = name
		}
	}
	if bestScore < matchThreshold {
		return "", bestScore
	}
	return bestName, bestScore
}

// ExtractParameters pulls template parameters out of the prompt text.
func (re *RuleEngine) ExtractParameters(prompt string) map[string]interface{} {
	params := make(map[string]interface{})
	lower := strings.ToLower(prompt)

	extractDimensions(lower, params)
	extractUnits(lower, params)
	extractMaterial(lower, params)
	extractRiderHeight(lower, params)

	return params
}

// Process matches the prompt, extracts parameters, and generates the
// design from the winning template.
func (re *RuleEngine) Process(prompt string) (*design.Design, *Match, error) {
	name, confidence := re.MatchProduct(prompt)
	if name == "" {
		return nil, nil, kernel.NewValidationError(
			fmt.Sprintf("cannot match prompt to a product template, available: %s",
				strings.Join(re.registry.Names(), ", ")), nil)
	}

	match := &Match{
		Template:   name,
		Confidence: confidence,
		Params:     re.ExtractParameters(prompt),
	}
	d, err := re.registry.Generate(name, match.Params)
	if err != nil {
		return nil, match, err
	}
	return d, match, nil
}

var (
	dimensionsRx  = regexp.MustCompile(`(\d+\.?\d*)\s*[xX×]\s*(\d+\.?\d*)\s*[xX×]\s*(\d+\.?\d*)\s*(mm|cm|inch|inches)?`)
	riderHeightRx = regexp.MustCompile(`(\d+\.?\d*)\s*(mm|cm|inch|inches)?\s*(?:tall|rider|height)`)
)

func extractDimensions(text string, params map[string]interface{}) {
	m := dimensionsRx.FindStringSubmatch(text)
	if m == nil {
		return
	}
	length, _ := strconv.ParseFloat(m[1], 64)
	width, _ := strconv.ParseFloat(m[2], 64)
	height, _ := strconv.ParseFloat(m[3], 64)
	params["length"] = length
	params["width"] = width
	params["height"] = height
	if m[4] != "" {
		params["units"] = normalizeUnit(m[4])
	}
}

func extractUnits(text string, params map[string]interface{}) {
	if _, ok := params["units"]; ok {
		return
	}
	switch {
	case strings.Contains(text, "mm") || strings.Contains(text, "millimeter"):
		params["units"] = "mm"
	case strings.Contains(text, "cm") || strings.Contains(text, "centimeter"):
		params["units"] = "cm"
	case strings.Contains(text, "inch"):
		params["units"] = "inches"
	}
}

func extractMaterial(text string, params map[string]interface{}) {
	for _, material := range []string{"aluminum", "steel", "carbon"} {
		if strings.Contains(text, material) {
			params["material"] = material
			return
		}
	}
}

func extractRiderHeight(text string, params map[string]interface{}) {
	m := riderHeightRx.FindStringSubmatch(text)
	if m == nil {
		return
	}
	height, _ := strconv.ParseFloat(m[1], 64)
	params["rider_height"] = height
	if m[2] != "" {
		params["units"] = normalizeUnit(m[2])
	} else if _, ok := params["units"]; !ok {
		params["units"] = "cm"
	}
}

func normalizeUnit(u string) string {
	if u == "inch" {
		return "inches"
	}
	return u
}
