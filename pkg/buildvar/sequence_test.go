package buildvar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// elements renders a sequence value's elements as strings.
func elements(t *testing.T, v Value, mapper PathMapper) []string {
	t.Helper()
	values, err := v.AsSequence("seq", mapper)
	require.NoError(t, err)
	out := make([]string, len(values))
	for i, e := range values {
		s, err := e.AsString("seq", mapper)
		require.NoError(t, err)
		out[i] = s
	}
	return out
}

func TestSequenceBackings_BehaveIdentically(t *testing.T) {
	// All backings must be indistinguishable to consumers; the choice is a
	// memory decision, not a semantic one.
	backings := map[string]Value{
		"sequence": NewSequence([]Value{
			NewStringValue("a"), NewStringValue("b"),
		}),
		"stringSequence":    NewStringSequence([]string{"a", "b"}),
		"stringSetSequence": NewStringSetSequence([]string{"a", "b"}),
		"pathSequence":      NewPathSequence([]string{"a", "b"}),
	}

	for name, v := range backings {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, []string{"a", "b"}, elements(t, v, nil))
			assert.True(t, v.Truthy())

			_, err := v.AsString("seq", nil)
			var expErr *ExpansionError
			require.ErrorAs(t, err, &expErr)
			assert.Equal(t, WrongKind, expErr.Kind)
			assert.Equal(t, "sequence", expErr.Actual)
		})
	}
}

func TestSequenceBackings_EmptyIsFalsy(t *testing.T) {
	// Uniform for every backing, including the plain sequence.
	empties := map[string]Value{
		"sequence":          NewSequence(nil),
		"stringSequence":    NewStringSequence(nil),
		"stringSetSequence": NewStringSetSequence(nil),
		"pathSequence":      NewPathSequence(nil),
		"artifactSequence":  NewArtifactSequence(nil),
	}
	for name, v := range empties {
		t.Run(name, func(t *testing.T) {
			assert.False(t, v.Truthy())
		})
	}
}

func TestStringSetSequence_DeduplicatesInOrder(t *testing.T) {
	v := NewStringSetSequence([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, elements(t, v, nil))
}

func TestPathSequence_MapsLazily(t *testing.T) {
	v := NewPathSequence([]string{"bin/a.o", "bin/b.o"})

	// Identity first, then a real mapper: mapping happens at iteration, so
	// the same value renders differently under different mappers.
	assert.Equal(t, []string{"bin/a.o", "bin/b.o"}, elements(t, v, nil))

	strip := PathMapper(func(p string) string { return "short/" + p })
	assert.Equal(t, []string{"short/bin/a.o", "short/bin/b.o"}, elements(t, v, strip))
}

func TestArtifactSequence_MapsExecPaths(t *testing.T) {
	v := NewArtifactSequence([]Artifact{
		{ExecPath: "bin/a.o"},
		{ExecPath: "bin/b.o"},
	})
	strip := PathMapper(func(p string) string { return "m/" + p })
	assert.Equal(t, []string{"m/bin/a.o", "m/bin/b.o"}, elements(t, v, strip))
}

func TestScalar_SequenceExpansionFails(t *testing.T) {
	_, err := NewStringValue("x").AsSequence("v", nil)
	require.Error(t, err)

	_, err = NewStringSequence([]string{"x"}).AsString("v", nil)
	require.Error(t, err)
	assert.Equal(t,
		"Invalid toolchain configuration: Cannot expand variable 'v': expected string, found sequence",
		err.Error())
}
