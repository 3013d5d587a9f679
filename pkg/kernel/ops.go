package kernel

import (
	"encoding/json"
	"fmt"
)

// OpKind identifies one operation in the closed operation set. The string
// values are the `type` discriminator used in design documents.
type OpKind string

const (
	OpSketchRectangle OpKind = "SketchRectangle"
	OpSketchCircle    OpKind = "SketchCircle"
	OpSketchPolygon   OpKind = "SketchPolygon"
	OpExtrude         OpKind = "Extrude"
	OpRevolve         OpKind = "Revolve"
	OpCut             OpKind = "Cut"
	OpFuse            OpKind = "Fuse"
	OpCommon          OpKind = "Common"
	OpFillet          OpKind = "Fillet"
	OpChamfer         OpKind = "Chamfer"
	OpShell           OpKind = "Shell"
	OpAddLegs         OpKind = "AddLegs"
	OpAddHoles        OpKind = "AddHoles"
	OpAddSupports     OpKind = "AddSupports"
	OpLinearPattern   OpKind = "LinearPattern"
	OpCircularPattern OpKind = "CircularPattern"
)

// AllOpKinds lists every operation kind in pipeline order of introduction.
var AllOpKinds = []OpKind{
	OpSketchRectangle, OpSketchCircle, OpSketchPolygon,
	OpExtrude, OpRevolve,
	OpCut, OpFuse, OpCommon,
	OpFillet, OpChamfer, OpShell,
	OpAddLegs, OpAddHoles, OpAddSupports,
	OpLinearPattern, OpCircularPattern,
}

var knownKinds = func() map[OpKind]struct{} {
	m := make(map[OpKind]struct{}, len(AllOpKinds))
	for _, k := range AllOpKinds {
		m[k] = struct{}{}
	}
	return m
}()

// Valid reports whether k is a member of the closed operation set.
func (k OpKind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// IsSketch reports whether k starts a new 2-D profile.
func (k OpKind) IsSketch() bool {
	return k == OpSketchRectangle || k == OpSketchCircle || k == OpSketchPolygon
}

// Operation is one tagged operation from a design document: a kind plus a
// kind-specific parameter bag. Parameters are decoded lazily so each
// adapter can apply its own defaults and unit scaling.
type Operation struct {
	Kind OpKind
	raw  json.RawMessage
}

// NewOperation builds an operation from a kind and an already-marshaled
// parameter object. Used by templates and tests.
func NewOperation(kind OpKind, params interface{}) (Operation, error) {
	body := map[string]interface{}{"type": string(kind)}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return Operation{}, err
		}
		if err := json.Unmarshal(b, &body); err != nil {
			return Operation{}, err
		}
		body["type"] = string(kind)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return Operation{}, err
	}
	return Operation{Kind: kind, raw: raw}, nil
}

// MustOperation is NewOperation that panics on marshaling failure. For
// static template tables only.
func MustOperation(kind OpKind, params interface{}) Operation {
	op, err := NewOperation(kind, params)
	if err != nil {
		panic(err)
	}
	return op
}

// UnmarshalJSON reads the `type` discriminator and retains the full object
// for later parameter decoding.
func (o *Operation) UnmarshalJSON(b []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	kind := OpKind(head.Type)
	if !kind.Valid() {
		return fmt.Errorf("unknown operation type: %q", head.Type)
	}
	o.Kind = kind
	o.raw = append(o.raw[:0], b...)
	return nil
}

// MarshalJSON writes the operation back out as its original flat object.
func (o Operation) MarshalJSON() ([]byte, error) {
	if o.raw != nil {
		return o.raw, nil
	}
	return json.Marshal(map[string]string{"type": string(o.Kind)})
}

// decode unmarshals the parameter bag over target, which carries the
// defaults; absent fields keep their preset values.
func (o Operation) decode(target interface{}) error {
	if o.raw == nil {
		return nil
	}
	if err := json.Unmarshal(o.raw, target); err != nil {
		return NewConfigurationError("malformed operation parameters", err).WithOp(o.Kind)
	}
	return nil
}
