package design

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/forgecad/forgecad/pkg/kernel"
)

// StarlarkEvaluator executes procedural design scripts. A script either
// defines a generate_design(params) function or assigns a design global;
// both must produce a dict shaped like a design document.
type StarlarkEvaluator struct {
	timeout time.Duration
}

// NewStarlarkEvaluator creates an evaluator. A zero timeout means 30s.
func NewStarlarkEvaluator(timeout time.Duration) *StarlarkEvaluator {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &StarlarkEvaluator{timeout: timeout}
}

// EvaluateDesign runs a script and decodes its output as a design
// document.
func (se *StarlarkEvaluator) EvaluateDesign(ctx context.Context, script string, params map[string]interface{}) (*Design, error) {
	evalCtx, cancel := context.WithTimeout(ctx, se.timeout)
	defer cancel()

	type outcome struct {
		doc map[string]interface{}
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		doc, err := se.evaluateSync(script, params)
		ch <- outcome{doc, err}
	}()

	select {
	case <-evalCtx.Done():
		return nil, kernel.NewKernelError(fmt.Sprintf("design script timeout after %v", se.timeout), evalCtx.Err())
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		raw, err := json.Marshal(out.doc)
		if err != nil {
			return nil, kernel.NewValidationError("design script output is not encodable", err)
		}
		return Decode(raw)
	}
}

func (se *StarlarkEvaluator) evaluateSync(script string, params map[string]interface{}) (map[string]interface{}, error) {
	thread := &starlark.Thread{
		Name:  "forgecad",
		Print: func(_ *starlark.Thread, _ string) {},
	}

	predeclared := starlark.StringDict{
		"struct": starlarkstruct.Default,
	}

	globals, err := starlark.ExecFile(thread, "design.star", script, predeclared)
	if err != nil {
		return nil, kernel.NewValidationError("design script failed", err)
	}

	if fn, ok := globals["generate_design"]; ok {
		callable, ok := fn.(starlark.Callable)
		if !ok {
			return nil, kernel.NewValidationError("generate_design is not callable", nil)
		}
		arg, err := toStarlarkValue(params)
		if err != nil {
			return nil, kernel.NewValidationError("cannot convert script parameters", err)
		}
		result, err := starlark.Call(thread, callable, starlark.Tuple{arg}, nil)
		if err != nil {
			return nil, kernel.NewValidationError("generate_design failed", err)
		}
		return designDict(result)
	}

	if val, ok := globals["design"]; ok {
		return designDict(val)
	}
	return nil, kernel.NewValidationError("design script defines neither generate_design nor design", nil)
}

func designDict(v starlark.Value) (map[string]interface{}, error) {
	goVal, err := fromStarlarkValue(v)
	if err != nil {
		return nil, kernel.NewValidationError("cannot convert script output", err)
	}
	doc, ok := goVal.(map[string]interface{})
	if !ok {
		return nil, kernel.NewValidationError(fmt.Sprintf("design script must produce a dict, got %T", goVal), nil)
	}
	return doc, nil
}

// toStarlarkValue converts a Go value to a Starlark value.
func toStarlarkValue(v interface{}) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}
	switch val := v.(type) {
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []interface{}:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case map[string]interface{}:
		dict := starlark.NewDict(len(val))
		for k, item := range val {
			sv, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// fromStarlarkValue converts a Starlark value to a Go value.
func fromStarlarkValue(v starlark.Value) (interface{}, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer too large")
		}
		return i, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case *starlark.List:
		list := make([]interface{}, val.Len())
		for i := 0; i < val.Len(); i++ {
			item, err := fromStarlarkValue(val.Index(i))
			if err != nil {
				return nil, err
			}
			list[i] = item
		}
		return list, nil
	case starlark.Tuple:
		list := make([]interface{}, len(val))
		for i, item := range val {
			converted, err := fromStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = converted
		}
		return list, nil
	case *starlark.Dict:
		dict := make(map[string]interface{})
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string")
			}
			value, err := fromStarlarkValue(item[1])
			if err != nil {
				return nil, err
			}
			dict[string(key)] = value
		}
		return dict, nil
	case *starlarkstruct.Struct:
		dict := make(map[string]interface{})
		for _, name := range val.AttrNames() {
			attr, err := val.Attr(name)
			if err != nil {
				continue
			}
			value, err := fromStarlarkValue(attr)
			if err != nil {
				return nil, err
			}
			dict[name] = value
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported starlark type: %s", v.Type())
	}
}
