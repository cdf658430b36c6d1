package buildvar

import "fmt"

// Builder accumulates name→value bindings and freezes them into an
// immutable Variables frame. Re-binding a name within one builder is an
// error surfaced by Build; shadowing a name bound in the parent chain is
// allowed and is the normal mechanism for scoped overrides.
//
// Bind methods are chainable and record the first error instead of
// returning one, so configuration code reads as a flat sequence of binds.
type Builder struct {
	parent   *Variables
	bindings map[string]any
	err      error
}

// NewBuilder returns a builder for a frame without a parent.
func NewBuilder() *Builder {
	return NewBuilderWithParent(nil)
}

// NewBuilderWithParent returns a builder for a frame delegating to parent.
func NewBuilderWithParent(parent *Variables) *Builder {
	return &Builder{parent: parent, bindings: make(map[string]any)}
}

// bind records a raw binding, rejecting duplicates within this builder.
func (b *Builder) bind(name string, value any) *Builder {
	if _, ok := b.bindings[name]; ok {
		if b.err == nil {
			b.err = fmt.Errorf("cannot overwrite variable '%s'", name)
		}
		return b
	}
	b.bindings[name] = value
	return b
}

// BindString binds name to a scalar string value.
func (b *Builder) BindString(name, value string) *Builder {
	return b.bind(name, value)
}

// BindBool binds name to a boolean that expands to "1" or "0".
func (b *Builder) BindBool(name string, value bool) *Builder {
	return b.bind(name, NewBooleanValue(value))
}

// BindArtifact binds name to a file-like leaf.
func (b *Builder) BindArtifact(name string, value Artifact) *Builder {
	return b.bind(name, value)
}

// BindStringSequence binds name to a sequence backed by raw strings.
func (b *Builder) BindStringSequence(name string, values []string) *Builder {
	return b.bind(name, NewStringSequence(values))
}

// BindStringSetSequence binds name to a deduplicating ordered sequence.
func (b *Builder) BindStringSetSequence(name string, values []string) *Builder {
	return b.bind(name, NewStringSetSequence(values))
}

// BindPathSequence binds name to a lazily path-mapped sequence.
func (b *Builder) BindPathSequence(name string, values []string) *Builder {
	return b.bind(name, NewPathSequence(values))
}

// BindArtifactSequence binds name to a sequence of file-like leaves.
func (b *Builder) BindArtifactSequence(name string, values []Artifact) *Builder {
	return b.bind(name, NewArtifactSequence(values))
}

// BindSequence binds name to a sequence of arbitrary values.
func (b *Builder) BindSequence(name string, values []Value) *Builder {
	return b.bind(name, NewSequence(values))
}

// BindValue binds name to an already constructed value.
func (b *Builder) BindValue(name string, value Value) *Builder {
	return b.bind(name, value)
}

// BindAllStrings binds every entry of variables as a scalar string.
func (b *Builder) BindAllStrings(variables map[string]string) *Builder {
	for name, value := range variables {
		b.bind(name, value)
	}
	return b
}

// MergeNonTransitive adds the frame's own bindings (not its ancestors') to
// this builder, with the same duplicate rejection as any other bind.
func (b *Builder) MergeNonTransitive(other *Variables) *Builder {
	m := make(map[string]any)
	other.addOwnToMap(m)
	for _, name := range other.Keys() {
		b.bind(name, m[name])
	}
	return b
}

// Build freezes the builder into an immutable frame, choosing the
// single-entry backing for exactly one binding and the indexed map backing
// otherwise. It fails if any bind call re-bound a name.
func (b *Builder) Build() (*Variables, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.bindings) == 1 {
		for name, value := range b.bindings {
			return &Variables{
				backing: singleBacking{name: name, value: value},
				parent:  b.parent,
			}, nil
		}
	}
	return &Variables{backing: newMapBacking(b.bindings), parent: b.parent}, nil
}
