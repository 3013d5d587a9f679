package design

import (
	"encoding/json"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/forgecad/forgecad/pkg/kernel"
)

// SchemaRegistry manages CUE schemas for structural validation of design
// documents before they are decoded into typed structs.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// NewSchemaRegistry creates a registry with the built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	sr := &SchemaRegistry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
	sr.registerBuiltInSchemas()
	return sr
}

func (sr *SchemaRegistry) registerBuiltInSchemas() {
	sr.RegisterSchema("design", builtinDesignSchema)
	sr.RegisterSchema("operation", builtinOperationSchema)
}

// RegisterSchema compiles and registers a CUE schema under a name.
func (sr *SchemaRegistry) RegisterSchema(name, schema string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	val := sr.ctx.CompileString(schema)
	if err := val.Err(); err != nil {
		return kernel.NewConfigurationError("cannot compile schema "+name, err)
	}
	sr.schemas[name] = val
	return nil
}

// GetSchema retrieves a schema by name.
func (sr *SchemaRegistry) GetSchema(name string) (cue.Value, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	val, ok := sr.schemas[name]
	return val, ok
}

// ListSchemas returns all registered schema names.
func (sr *SchemaRegistry) ListSchemas() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	return names
}

// ValidateAgainstSchema unifies data with a named schema's definition and
// reports any conflict as a validation error.
func (sr *SchemaRegistry) ValidateAgainstSchema(schemaName, defName string, data interface{}) error {
	schema, ok := sr.GetSchema(schemaName)
	if !ok {
		return kernel.NewConfigurationError("schema "+schemaName+" not found", nil)
	}

	dataVal := sr.ctx.Encode(data)
	if err := dataVal.Err(); err != nil {
		return kernel.NewValidationError("cannot encode document", err)
	}

	def := schema.LookupPath(cue.ParsePath(defName))
	if err := def.Err(); err != nil {
		return kernel.NewConfigurationError("definition "+defName+" not found in schema "+schemaName, err)
	}

	unified := def.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return kernel.NewValidationError("design does not match schema", err)
	}
	return nil
}

// ValidateDesignDocument checks raw JSON against the design schema.
func (sr *SchemaRegistry) ValidateDesignDocument(data []byte) error {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return kernel.NewValidationError("invalid design JSON", err)
	}
	return sr.ValidateAgainstSchema("design", "#Design", doc)
}

// Built-in schema definitions

const builtinDesignSchema = `
// Design document schema
#Design: {
	// ProductType names what to build, e.g. "box" or "bicycle"
	product_type: string & !=""

	// Units of all dimensions in the document
	units?: "mm" | "cm" | "inches"

	// Overall dimensions for template-driven products
	length?:         number & >0
	width?:          number & >0
	height?:         number & >0
	wall_thickness?: number & >0

	// Feature names a template may honor
	features?: [...string]

	// Explicit operation pipeline
	use_design_language?: bool
	operations?: [...#Operation]

	// Bicycle frame parameters
	rider_height?: number & >0
	material?:     string

	// Engine routing
	engine?:                string
	is_assembly?:           bool
	batch_mode?:            bool
	optimization_required?: bool

	...
}

// Operation schema: a type discriminator plus free-form parameters
#Operation: {
	type: string & !=""
	...
}
`

const builtinOperationSchema = `
#Operation: {
	type: string & !=""
	...
}
`
