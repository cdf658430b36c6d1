// Package starvars loads build variable bindings authored in Starlark.
// A vars file is executed once and must leave a `variables` dict in its
// globals; each entry becomes one binding in the resulting frame, using
// the builtin constructors for value kinds that plain Starlark literals
// cannot express (artifacts, libraries, deduplicating sets).
package starvars

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

// variablesGlobal is the name the vars file must assign its bindings to.
const variablesGlobal = "variables"

// Load executes the Starlark file at path and builds a variables frame
// from its `variables` dict.
func Load(path string) (*buildvar.Variables, error) {
	thread := &starlark.Thread{
		Name:  "crosstool:" + path,
		Print: func(_ *starlark.Thread, _ string) {},
	}

	globals, err := starlark.ExecFile(thread, path, nil, Predeclared())
	if err != nil {
		return nil, fmt.Errorf("failed to execute vars file: %w", err)
	}
	return fromGlobals(globals)
}

// LoadSource executes Starlark source text, for embedded defaults and
// tests.
func LoadSource(filename, source string) (*buildvar.Variables, error) {
	thread := &starlark.Thread{
		Name:  "crosstool:" + filename,
		Print: func(_ *starlark.Thread, _ string) {},
	}

	globals, err := starlark.ExecFile(thread, filename, source, Predeclared())
	if err != nil {
		return nil, fmt.Errorf("failed to execute vars file: %w", err)
	}
	return fromGlobals(globals)
}

func fromGlobals(globals starlark.StringDict) (*buildvar.Variables, error) {
	value, ok := globals[variablesGlobal]
	if !ok {
		return nil, fmt.Errorf("vars file must define a '%s' dict", variablesGlobal)
	}
	dict, ok := value.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("'%s' must be a dict, got %s", variablesGlobal, value.Type())
	}

	builder := buildvar.NewBuilder()
	for _, item := range dict.Items() {
		name, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("variable names must be strings, got %s", item[0].Type())
		}
		if err := bindStarlark(builder, name, item[1]); err != nil {
			return nil, err
		}
	}
	return builder.Build()
}

// bindStarlark converts one Starlark value into a binding. There is no
// numeric value kind in the engine, so integers are rejected rather than
// silently stringified.
func bindStarlark(builder *buildvar.Builder, name string, v starlark.Value) error {
	switch val := v.(type) {
	case starlark.String:
		builder.BindString(name, string(val))
		return nil

	case starlark.Bool:
		builder.BindBool(name, bool(val))
		return nil

	case *wrappedValue:
		builder.BindValue(name, val.value)
		return nil

	case *starlark.List:
		return bindList(builder, name, val)

	case *starlark.Dict:
		fields, err := dictFields(val)
		if err != nil {
			return fmt.Errorf("variable '%s': %w", name, err)
		}
		builder.BindValue(name, buildvar.NewStruct("struct", fields))
		return nil

	default:
		return fmt.Errorf("variable '%s': unsupported value type %s", name, v.Type())
	}
}

// bindList binds a Starlark list: all-string lists become the raw string
// sequence backing, anything else a general sequence.
func bindList(builder *buildvar.Builder, name string, list *starlark.List) error {
	allStrings := true
	for i := 0; i < list.Len(); i++ {
		if _, ok := starlark.AsString(list.Index(i)); !ok {
			allStrings = false
			break
		}
	}

	if allStrings {
		values := make([]string, list.Len())
		for i := 0; i < list.Len(); i++ {
			values[i], _ = starlark.AsString(list.Index(i))
		}
		builder.BindStringSequence(name, values)
		return nil
	}

	values := make([]buildvar.Value, list.Len())
	for i := 0; i < list.Len(); i++ {
		elem, err := toValue(list.Index(i))
		if err != nil {
			return fmt.Errorf("variable '%s' element %d: %w", name, i, err)
		}
		values[i] = elem
	}
	builder.BindSequence(name, values)
	return nil
}

// toValue converts a Starlark value into an engine value.
func toValue(v starlark.Value) (buildvar.Value, error) {
	switch val := v.(type) {
	case starlark.String:
		return buildvar.NewStringValue(string(val)), nil
	case starlark.Bool:
		return buildvar.NewBooleanValue(bool(val)), nil
	case *wrappedValue:
		return val.value, nil
	case *starlark.Dict:
		fields, err := dictFields(val)
		if err != nil {
			return nil, err
		}
		return buildvar.NewStruct("struct", fields), nil
	case *starlark.List:
		values := make([]buildvar.Value, val.Len())
		for i := 0; i < val.Len(); i++ {
			elem, err := toValue(val.Index(i))
			if err != nil {
				return nil, err
			}
			values[i] = elem
		}
		return buildvar.NewSequence(values), nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", v.Type())
	}
}

func dictFields(dict *starlark.Dict) (map[string]buildvar.Value, error) {
	fields := make(map[string]buildvar.Value, dict.Len())
	for _, item := range dict.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("field names must be strings, got %s", item[0].Type())
		}
		fv, err := toValue(item[1])
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", key, err)
		}
		fields[key] = fv
	}
	return fields, nil
}
