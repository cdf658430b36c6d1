package buildvar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMetadata maps tree artifact exec paths to their leaf members.
type fakeMetadata map[string][]Artifact

func (f fakeMetadata) TreeChildren(a Artifact) []Artifact {
	return f[a.ExecPath]
}

// fieldString resolves a field and renders it as a string.
func fieldString(t *testing.T, v Value, field string, meta InputMetadataProvider, mapper PathMapper) string {
	t.Helper()
	fv, err := v.Field("lib", field, meta, mapper)
	require.NoError(t, err)
	require.NotNil(t, fv)
	s, err := fv.AsString("lib."+field, mapper)
	require.NoError(t, err)
	return s
}

func TestStruct_FieldAccess(t *testing.T) {
	v := NewStruct("LibraryToLink", map[string]Value{
		"name": NewStringValue("foo"),
	})

	assert.Equal(t, "foo", fieldString(t, v, "name", nil, nil))
	assert.True(t, v.Truthy())

	// Unrecognized fields yield absence, not an error.
	fv, err := v.Field("lib", "missing", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, fv)
}

func TestStruct_KindTagInErrors(t *testing.T) {
	v := NewStruct("LibraryToLink", nil)
	_, err := v.AsString("lib", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found structure (LibraryToLink)")
}

func TestLibraryToLink_Fields(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		wantType string
		wantName string
		wantPath string
		wantWA   string
	}{
		{
			name:     "dynamic library",
			value:    ForDynamicLibrary("libfoo.so"),
			wantType: "dynamic_library",
			wantName: "libfoo.so",
			wantWA:   "0",
		},
		{
			name:     "versioned dynamic library",
			value:    ForVersionedDynamicLibrary("libfoo.so", "libfoo.so.1.2"),
			wantType: "versioned_dynamic_library",
			wantName: "libfoo.so",
			wantPath: "libfoo.so.1.2",
			wantWA:   "0",
		},
		{
			name:     "interface library",
			value:    ForInterfaceLibrary("libfoo.ifso"),
			wantType: "interface_library",
			wantName: "libfoo.ifso",
			wantWA:   "0",
		},
		{
			name:     "whole-archive static library",
			value:    ForStaticLibrary("libfoo.a", true),
			wantType: "static_library",
			wantName: "libfoo.a",
			wantWA:   "1",
		},
		{
			name:     "object file",
			value:    ForObjectFile("foo.o", false),
			wantType: "object_file",
			wantName: "foo.o",
			wantWA:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, fieldString(t, tt.value, "type", nil, nil))
			assert.Equal(t, tt.wantName, fieldString(t, tt.value, "name", nil, nil))
			assert.Equal(t, tt.wantWA, fieldString(t, tt.value, "is_whole_archive", nil, nil))
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, fieldString(t, tt.value, "path", nil, nil))
			}
			assert.True(t, tt.value.Truthy())

			// Unknown fields are absent.
			fv, err := tt.value.Field("lib", "no_such_field", nil, nil)
			require.NoError(t, err)
			assert.Nil(t, fv)
		})
	}
}

func TestLibraryToLink_NameIsPathMapped(t *testing.T) {
	mapper := PathMapper(func(p string) string { return "m/" + p })
	assert.Equal(t, "m/libfoo.so", fieldString(t, ForDynamicLibrary("libfoo.so"), "name", nil, mapper))
}

func TestObjectFileGroup_ExpandsTreeArtifacts(t *testing.T) {
	group := ForObjectFileGroup([]Artifact{
		{ExecPath: "bin/a.o"},
		{ExecPath: "bin/objs", Tree: true},
	}, false)

	meta := fakeMetadata{
		"bin/objs": {{ExecPath: "bin/objs/1.o"}, {ExecPath: "bin/objs/2.o"}},
	}

	fv, err := group.Field("lib", "object_files", meta, nil)
	require.NoError(t, err)
	require.NotNil(t, fv)
	assert.Equal(t, []string{"bin/a.o", "bin/objs/1.o", "bin/objs/2.o"}, elements(t, fv, nil))

	// The group has no name field.
	nv, err := group.Field("lib", "name", meta, nil)
	require.NoError(t, err)
	assert.Nil(t, nv)
}

func TestObjectFileGroup_UnknownTreeContributesNoLeaves(t *testing.T) {
	group := ForObjectFileGroup([]Artifact{
		{ExecPath: "bin/objs", Tree: true},
		{ExecPath: "bin/b.o"},
	}, false)

	// Metadata has no entry for the tree artifact: not an error, the tree
	// simply contributes nothing.
	fv, err := group.Field("lib", "object_files", fakeMetadata{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bin/b.o"}, elements(t, fv, nil))
}
