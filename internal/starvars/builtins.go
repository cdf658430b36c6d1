package starvars

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

// wrappedValue carries an already-constructed engine value through
// Starlark evaluation. It is opaque on the Starlark side.
type wrappedValue struct {
	value buildvar.Value
	repr  string
}

func (w *wrappedValue) String() string        { return w.repr }
func (w *wrappedValue) Type() string          { return "build_value" }
func (w *wrappedValue) Freeze()               {}
func (w *wrappedValue) Truth() starlark.Bool  { return starlark.Bool(w.value.Truthy()) }
func (w *wrappedValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: build_value") }

func wrap(name string, v buildvar.Value) *wrappedValue {
	return &wrappedValue{value: v, repr: name + "(...)"}
}

// Predeclared returns the builtin constructors available to vars files.
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"artifact":                  starlark.NewBuiltin("artifact", artifactFn),
		"path_list":                 starlark.NewBuiltin("path_list", pathListFn),
		"string_set":                starlark.NewBuiltin("string_set", stringSetFn),
		"dynamic_library":           starlark.NewBuiltin("dynamic_library", dynamicLibraryFn),
		"versioned_dynamic_library": starlark.NewBuiltin("versioned_dynamic_library", versionedDynamicLibraryFn),
		"interface_library":         starlark.NewBuiltin("interface_library", interfaceLibraryFn),
		"static_library":            starlark.NewBuiltin("static_library", staticLibraryFn),
		"object_file":               starlark.NewBuiltin("object_file", objectFileFn),
		"object_file_group":         starlark.NewBuiltin("object_file_group", objectFileGroupFn),
	}
}

func artifactFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path string
	var tree bool
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "path", &path, "tree?", &tree); err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.NewArtifactValue(buildvar.Artifact{ExecPath: path, Tree: tree})), nil
}

func pathListFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	paths, err := unpackStringList(fn, args, kwargs, "paths")
	if err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.NewPathSequence(paths)), nil
}

func stringSetFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	values, err := unpackStringList(fn, args, kwargs, "values")
	if err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.NewStringSetSequence(values)), nil
}

func dynamicLibraryFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.ForDynamicLibrary(name)), nil
}

func versionedDynamicLibraryFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, path string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "path", &path); err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.ForVersionedDynamicLibrary(name, path)), nil
}

func interfaceLibraryFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.ForInterfaceLibrary(name)), nil
}

func staticLibraryFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var wholeArchive bool
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "is_whole_archive?", &wholeArchive); err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.ForStaticLibrary(name, wholeArchive)), nil
}

func objectFileFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var wholeArchive bool
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "is_whole_archive?", &wholeArchive); err != nil {
		return nil, err
	}
	return wrap(fn.Name(), buildvar.ForObjectFile(name, wholeArchive)), nil
}

func objectFileGroupFn(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var objects *starlark.List
	var wholeArchive bool
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "objects", &objects, "is_whole_archive?", &wholeArchive); err != nil {
		return nil, err
	}

	artifacts := make([]buildvar.Artifact, objects.Len())
	for i := 0; i < objects.Len(); i++ {
		elem := objects.Index(i)
		switch v := elem.(type) {
		case starlark.String:
			artifacts[i] = buildvar.Artifact{ExecPath: string(v)}
		case *wrappedValue:
			a, ok := buildvar.ArtifactOf(v.value)
			if !ok {
				return nil, fmt.Errorf("%s: objects[%d] is not an artifact", fn.Name(), i)
			}
			artifacts[i] = a
		default:
			return nil, fmt.Errorf("%s: objects[%d] must be a path or artifact, got %s", fn.Name(), i, elem.Type())
		}
	}
	return wrap(fn.Name(), buildvar.ForObjectFileGroup(artifacts, wholeArchive)), nil
}

func unpackStringList(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, argName string) ([]string, error) {
	var list *starlark.List
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, argName, &list); err != nil {
		return nil, err
	}
	values := make([]string, list.Len())
	for i := 0; i < list.Len(); i++ {
		s, ok := starlark.AsString(list.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s: %s[%d] must be a string, got %s", fn.Name(), argName, i, list.Index(i).Type())
		}
		values[i] = s
	}
	return values, nil
}
