// Package templates maps product names and parameter bags to complete
// design documents. Each template declares its parameters with types,
// ranges, and defaults; generation applies defaults, validates, and
// builds either an operation pipeline or generator parameters.
package templates

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/forgecad/forgecad/pkg/design"
	"github.com/forgecad/forgecad/pkg/kernel"
)

// Parameter describes one template input.
type Parameter struct {
	Type        string   `json:"type"` // number, string, boolean
	Description string   `json:"description"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Template is a named product generator.
type Template struct {
	Name       string
	Category   string
	Parameters map[string]Parameter
	Defaults   map[string]interface{}

	// Rules are human-readable design guidance shown by the CLI.
	Rules []string

	// Build turns a validated, defaulted parameter bag into a design.
	Build func(params map[string]interface{}) (*design.Design, error)
}

// Generate applies defaults, validates the parameters, and builds the
// design document.
func (t *Template) Generate(userParams map[string]interface{}) (*design.Design, error) {
	params := t.applyDefaults(userParams)
	if errs := t.validateParams(params); len(errs) > 0 {
		return nil, kernel.NewValidationError("invalid parameters: "+strings.Join(errs, ", "), nil)
	}
	return t.Build(params)
}

func (t *Template) applyDefaults(userParams map[string]interface{}) map[string]interface{} {
	params := make(map[string]interface{}, len(userParams)+len(t.Defaults))
	for k, v := range userParams {
		params[k] = v
	}
	for k, v := range t.Defaults {
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}
	return params
}

func (t *Template) validateParams(params map[string]interface{}) []string {
	var errs []string

	for name, def := range t.Parameters {
		if def.Required {
			if _, ok := params[name]; !ok {
				errs = append(errs, "missing required parameter: "+name)
			}
		}
	}

	for name, value := range params {
		def, ok := t.Parameters[name]
		if !ok {
			continue
		}
		switch def.Type {
		case "number":
			n, ok := asNumber(value)
			if !ok {
				errs = append(errs, name+" must be a number")
				continue
			}
			if def.Min != nil && n < *def.Min {
				errs = append(errs, fmt.Sprintf("%s must be >= %v", name, *def.Min))
			}
			if def.Max != nil && n > *def.Max {
				errs = append(errs, fmt.Sprintf("%s must be <= %v", name, *def.Max))
			}
		case "string":
			s, ok := value.(string)
			if !ok {
				errs = append(errs, name+" must be a string")
				continue
			}
			if len(def.Enum) > 0 && !containsString(def.Enum, s) {
				errs = append(errs, fmt.Sprintf("%s must be one of: %s", name, strings.Join(def.Enum, ", ")))
			}
		case "boolean":
			if _, ok := value.(bool); !ok {
				errs = append(errs, name+" must be a boolean")
			}
		}
	}

	sort.Strings(errs)
	return errs
}

// Registry holds the available templates.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates a registry with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*Template)}
	for _, t := range builtinTemplates() {
		r.Register(t)
	}
	return r
}

// Register adds a template. Re-registering a name replaces it.
func (r *Registry) Register(t *Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds a design from a named template.
func (r *Registry) Generate(name string, params map[string]interface{}) (*design.Design, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, kernel.NewConfigurationError(
			fmt.Sprintf("unknown template %q, available: %s", name, strings.Join(r.Names(), ", ")), nil)
	}
	return t.Generate(params)
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func num(v float64) *float64 { return &v }
