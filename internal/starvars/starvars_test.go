package starvars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

func TestLoadSourceScalars(t *testing.T) {
	vars, err := LoadSource("vars.star", `
variables = {
    "output_file": "bin/a.out",
    "use_pic": True,
    "is_linux": False,
}
`)
	require.NoError(t, err)

	got, err := vars.StringVariable("output_file", nil)
	require.NoError(t, err)
	assert.Equal(t, "bin/a.out", got)

	got, err = vars.StringVariable("use_pic", nil)
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = vars.StringVariable("is_linux", nil)
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}

func TestLoadSourceStringList(t *testing.T) {
	vars, err := LoadSource("vars.star", `
variables = {
    "include_paths": ["a", "b", "a"],
}
`)
	require.NoError(t, err)

	values, err := vars.SequenceVariable("include_paths", nil, nil)
	require.NoError(t, err)
	require.Len(t, values, 3)

	first, err := values[0].AsString("include_paths", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", first)
}

func TestLoadSourceDictBecomesStructure(t *testing.T) {
	vars, err := LoadSource("vars.star", `
variables = {
    "libraries_to_link": {"name": "libfoo.a", "shared": False},
}
`)
	require.NoError(t, err)

	got, err := vars.StringVariable("libraries_to_link.name", nil)
	require.NoError(t, err)
	assert.Equal(t, "libfoo.a", got)

	got, err = vars.StringVariable("libraries_to_link.shared", nil)
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}

func TestLoadSourceBuiltins(t *testing.T) {
	vars, err := LoadSource("vars.star", `
variables = {
    "source_file": artifact("src/main.cc"),
    "quote_include_paths": string_set(["x", "y", "x"]),
    "system_include_paths": path_list(["/usr/include"]),
    "library": static_library("libbar.a", is_whole_archive = True),
}
`)
	require.NoError(t, err)

	got, err := vars.StringVariable("source_file", nil)
	require.NoError(t, err)
	assert.Equal(t, "src/main.cc", got)

	values, err := vars.SequenceVariable("quote_include_paths", nil, nil)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	got, err = vars.StringVariable("library.name", nil)
	require.NoError(t, err)
	assert.Equal(t, "libbar.a", got)

	assert.True(t, vars.IsAvailable("library.is_whole_archive", nil))
}

func TestLoadSourceObjectFileGroup(t *testing.T) {
	vars, err := LoadSource("vars.star", `
variables = {
    "library": object_file_group(["a.o", artifact("b.o")]),
}
`)
	require.NoError(t, err)

	objects, err := vars.LookupPath("library.object_files", nil, nil)
	require.NoError(t, err)

	elems, err := objects.AsSequence("library.object_files", nil)
	require.NoError(t, err)
	require.Len(t, elems, 2)

	second, err := elems[1].AsString("library.object_files", nil)
	require.NoError(t, err)
	assert.Equal(t, "b.o", second)
}

func TestLoadSourceObjectFileGroupRejectsNonArtifact(t *testing.T) {
	_, err := LoadSource("vars.star", `
variables = {
    "library": object_file_group([static_library("x")]),
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not an artifact")
}

func TestLoadSourceMixedListBecomesSequence(t *testing.T) {
	vars, err := LoadSource("vars.star", `
variables = {
    "libraries": [dynamic_library("libx.so"), static_library("liby.a")],
}
`)
	require.NoError(t, err)

	values, err := vars.SequenceVariable("libraries", nil, nil)
	require.NoError(t, err)
	require.Len(t, values, 2)

	name, err := values[0].Field("libraries", "name", nil, nil)
	require.NoError(t, err)
	got, err := name.AsString("libraries", nil)
	require.NoError(t, err)
	assert.Equal(t, "libx.so", got)
}

func TestLoadSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name:    "missing variables global",
			source:  `bindings = {}`,
			wantErr: "must define a 'variables' dict",
		},
		{
			name:    "variables is not a dict",
			source:  `variables = ["a"]`,
			wantErr: "must be a dict",
		},
		{
			name:    "integer values are rejected",
			source:  `variables = {"count": 3}`,
			wantErr: "unsupported value type int",
		},
		{
			name:    "non-string key",
			source:  `variables = {3: "x"}`,
			wantErr: "variable names must be strings",
		},
		{
			name:    "syntax error",
			source:  `variables = {`,
			wantErr: "failed to execute vars file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSource("vars.star", tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.star")
	source := `
flags = ["-O2", "-g"]

variables = {
    "user_compile_flags": flags,
    "output_file": "obj/main.o",
}
`
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	vars, err := Load(path)
	require.NoError(t, err)

	flags, err := buildvar.ToStringList(vars, "user_compile_flags", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"-O2", "-g"}, flags)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.star"))
	require.Error(t, err)
}
