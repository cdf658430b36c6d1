package buildvar

import (
	"sort"
	"strings"
	"sync"
)

// Variables is an immutable binding of names to values for one build
// action, optionally delegating to a parent frame. Frames are built once,
// shared across any number of concurrent expansions, and discarded with
// the owning action configuration.
type Variables struct {
	backing backing
	parent  *Variables

	// structCache memoizes dotted-path resolution per frame. Entries are a
	// Value, an *ExpansionError, or absentMarker, published at most once;
	// racing first-resolvers redo the work and the loser's result is
	// discarded.
	structCache sync.Map
}

// backing is the storage strategy for one frame's own bindings. Values are
// held as string, Artifact, or Value and wrapped lazily on lookup; raw
// strings are by far the most common binding and wrapping them eagerly
// would double their footprint.
type backing interface {
	lookup(name string) (any, bool)
	keys() []string
	addToMap(m map[string]any)
	equal(other backing) bool
}

// absentMarker is the cache entry for "definitely not bound".
type absentMarkerType struct{}

var absentMarker = absentMarkerType{}

var emptyVariables = &Variables{backing: mapBacking{}}

// Empty returns the shared empty frame.
func Empty() *Variables { return emptyVariables }

// asValue wraps a raw stored binding into a Value.
func asValue(o any) Value {
	switch v := o.(type) {
	case string:
		return NewStringValue(v)
	case Artifact:
		return NewArtifactValue(v)
	default:
		return o.(Value)
	}
}

// Lookup returns the frame's own binding for name, delegating to the
// parent chain when absent. It never resolves dotted paths; nil means
// unbound.
func (v *Variables) Lookup(name string) Value {
	for f := v; f != nil; f = f.parent {
		if raw, ok := f.backing.lookup(name); ok {
			return asValue(raw)
		}
	}
	return nil
}

// LookupPath resolves a possibly dotted name strictly: the longest prefix
// bound as a non-structured variable is found via the parent chain, then
// the remaining segments are applied as field accesses in order. Any
// missing variable, missing field, or non-structure prefix fails with the
// innermost failure.
func (v *Variables) LookupPath(name string, meta InputMetadataProvider, mapper PathMapper) (Value, error) {
	return v.lookupVariable(name, true, meta, mapper)
}

// IsAvailable reports whether name (possibly dotted) resolves to a value.
// It never fails, even when strict resolution of the same name would.
func (v *Variables) IsAvailable(name string, meta InputMetadataProvider) bool {
	val, err := v.lookupVariable(name, false, meta, nil)
	return err == nil && val != nil
}

// StringVariable resolves name and renders it as a string.
func (v *Variables) StringVariable(name string, mapper PathMapper) (string, error) {
	val, err := v.lookupVariable(name, true, nil, mapper)
	if err != nil {
		return "", err
	}
	return val.AsString(name, mapper)
}

// SequenceVariable resolves name and returns its elements.
func (v *Variables) SequenceVariable(name string, meta InputMetadataProvider, mapper PathMapper) ([]Value, error) {
	val, err := v.lookupVariable(name, true, meta, mapper)
	if err != nil {
		return nil, err
	}
	return val.AsSequence(name, mapper)
}

// lookupVariable is the single resolution path. Strict mode turns absence
// into an error; non-strict mode reports it as a nil value and never
// fails.
func (v *Variables) lookupVariable(name string, strict bool, meta InputMetadataProvider, mapper PathMapper) (Value, error) {
	if val := v.Lookup(name); val != nil {
		return val, nil
	}

	if !strings.Contains(name, ".") {
		if strict {
			return nil, errUndefinedVariable(name)
		}
		return nil, nil
	}

	// Structured resolution costs O(depth) and the same paths are queried
	// for every flag group sharing this frame, so results (including
	// failures and definite absence) are memoized.
	entry, ok := v.structCache.Load(name)
	if !ok {
		computed := v.resolveStructured(name, meta, mapper)
		entry, _ = v.structCache.LoadOrStore(name, computed)
	}

	switch e := entry.(type) {
	case *ExpansionError:
		if strict {
			return nil, e
		}
		return nil, nil
	case absentMarkerType:
		if strict {
			return nil, errUndefinedVariable(name)
		}
		return nil, nil
	default:
		return e.(Value), nil
	}
}

// resolveStructured walks a dotted path: pop segments off the right until
// the prefix resolves as a plain binding, then apply the popped segments as
// field accesses left to right.
func (v *Variables) resolveStructured(name string, meta InputMetadataProvider, mapper PathMapper) any {
	structPath := name
	var fields []string
	var val Value
	for {
		dot := strings.LastIndex(structPath, ".")
		fields = append(fields, structPath[dot+1:])
		structPath = structPath[:dot]
		val = v.Lookup(structPath)
		if val != nil || !strings.Contains(structPath, ".") {
			break
		}
	}
	if val == nil {
		return absentMarker
	}

	for i := len(fields) - 1; i >= 0; i-- {
		field := fields[i]
		next, err := val.Field(structPath, field, meta, mapper)
		if err != nil {
			return err.(*ExpansionError)
		}
		if next == nil {
			return errMissingField(structPath, field)
		}
		val = next
	}
	return val
}

// Keys returns the names bound in this frame itself, excluding all
// ancestors, in sorted order.
func (v *Variables) Keys() []string {
	return v.backing.keys()
}

// Equal reports frame equality: same parent by reference identity, same
// key set, and equal values. The reference comparison on parents is a
// deliberate trade-off against recursive deep equality on long chains.
func (v *Variables) Equal(other *Variables) bool {
	if v == other {
		return true
	}
	if other == nil || v.parent != other.parent {
		return false
	}
	return v.backing.equal(other.backing)
}

// addOwnToMap copies this frame's own bindings into m, raw.
func (v *Variables) addOwnToMap(m map[string]any) {
	v.backing.addToMap(m)
}

// mapBacking stores multiple bindings behind a name→index indirection:
// many frames in one build share identical key sets, and keeping keys in a
// separate sorted structure lets the per-frame state shrink to a flat
// value slice.
type mapBacking struct {
	keyToIndex map[string]int
	values     []any
}

func newMapBacking(bindings map[string]any) mapBacking {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	keyToIndex := make(map[string]int, len(names))
	values := make([]any, len(names))
	for i, name := range names {
		keyToIndex[name] = i
		values[i] = bindings[name]
	}
	return mapBacking{keyToIndex: keyToIndex, values: values}
}

func (b mapBacking) lookup(name string) (any, bool) {
	i, ok := b.keyToIndex[name]
	if !ok {
		return nil, false
	}
	return b.values[i], true
}

func (b mapBacking) keys() []string {
	names := make([]string, len(b.values))
	for name, i := range b.keyToIndex {
		names[i] = name
	}
	return names
}

func (b mapBacking) addToMap(m map[string]any) {
	for name, i := range b.keyToIndex {
		m[name] = b.values[i]
	}
}

func (b mapBacking) equal(other backing) bool {
	o, ok := other.(mapBacking)
	if !ok || len(b.values) != len(o.values) {
		return false
	}
	for name, i := range b.keyToIndex {
		j, ok := o.keyToIndex[name]
		if !ok || !rawEqual(b.values[i], o.values[j]) {
			return false
		}
	}
	return true
}

// singleBacking holds exactly one binding. Derived per-element frames
// created while iterating sequence flag groups are all single-binding, so
// this shape is constructed constantly.
type singleBacking struct {
	name  string
	value any
}

func (b singleBacking) lookup(name string) (any, bool) {
	if name == b.name {
		return b.value, true
	}
	return nil, false
}

func (b singleBacking) keys() []string { return []string{b.name} }

func (b singleBacking) addToMap(m map[string]any) { m[b.name] = b.value }

func (b singleBacking) equal(other backing) bool {
	o, ok := other.(singleBacking)
	return ok && b.name == o.name && rawEqual(b.value, o.value)
}

// rawEqual compares two stored bindings. Raw strings and artifacts compare
// directly; wrapped values fall back to valueEqual.
func rawEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case Artifact:
		bv, ok := b.(Artifact)
		return ok && av == bv
	default:
		bv, ok := b.(Value)
		return ok && valueEqual(a.(Value), bv)
	}
}

// valueEqual compares two values structurally.
func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case stringValue:
		bv, ok := b.(stringValue)
		return ok && av.value == bv.value
	case booleanValue:
		bv, ok := b.(booleanValue)
		return ok && av.value == bv.value
	case artifactValue:
		bv, ok := b.(artifactValue)
		return ok && av.value == bv.value
	case stringSequence:
		bv, ok := b.(stringSequence)
		return ok && stringsEqual(av.values, bv.values)
	case stringSetSequence:
		bv, ok := b.(stringSetSequence)
		return ok && stringsEqual(av.values, bv.values)
	case pathSequence:
		bv, ok := b.(pathSequence)
		return ok && stringsEqual(av.values, bv.values)
	case artifactSequence:
		bv, ok := b.(artifactSequence)
		if !ok || len(av.values) != len(bv.values) {
			return false
		}
		for i := range av.values {
			if av.values[i] != bv.values[i] {
				return false
			}
		}
		return true
	case sequence:
		bv, ok := b.(sequence)
		if !ok || len(av.values) != len(bv.values) {
			return false
		}
		for i := range av.values {
			if !valueEqual(av.values[i], bv.values[i]) {
				return false
			}
		}
		return true
	case structValue:
		bv, ok := b.(structValue)
		if !ok || av.typeTag != bv.typeTag || len(av.fields) != len(bv.fields) {
			return false
		}
		for name, fv := range av.fields {
			ov, ok := bv.fields[name]
			if !ok || !valueEqual(fv, ov) {
				return false
			}
		}
		return true
	case libraryToLink:
		bv, ok := b.(libraryToLink)
		if !ok || av.libType != bv.libType || av.name != bv.name ||
			av.path != bv.path || av.wholeArchive != bv.wholeArchive ||
			len(av.objects) != len(bv.objects) {
			return false
		}
		for i := range av.objects {
			if av.objects[i] != bv.objects[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
