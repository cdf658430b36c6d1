package buildvar

// sequence holds arbitrary values in order. The general backing; the
// specialized ones below exist purely to cut memory, a typical build holds
// millions of sequence elements.
type sequence struct {
	adapter
	values []Value
}

// NewSequence returns a sequence of arbitrary values. The slice is stored
// directly and must not be mutated afterwards.
func NewSequence(values []Value) Value {
	return sequence{adapter: adapter{sequenceKind}, values: values}
}

func (s sequence) AsSequence(string, PathMapper) ([]Value, error) {
	return s.values, nil
}

func (s sequence) Truthy() bool { return len(s.values) > 0 }

// stringSequence stores plain strings and wraps them into scalar values
// only while being iterated, applying the path mapper to each element.
type stringSequence struct {
	adapter
	values []string
}

// NewStringSequence returns a sequence backed by raw strings.
func NewStringSequence(values []string) Value {
	return stringSequence{adapter: adapter{sequenceKind}, values: values}
}

func (s stringSequence) AsSequence(_ string, mapper PathMapper) ([]Value, error) {
	out := make([]Value, len(s.values))
	for i, v := range s.values {
		out[i] = NewStringValue(mapper.apply(v))
	}
	return out, nil
}

func (s stringSequence) Truthy() bool { return len(s.values) > 0 }

// stringSetSequence is an insertion-ordered set of strings: duplicates are
// dropped at construction, iteration order is first-occurrence order.
type stringSetSequence struct {
	adapter
	values []string
}

// NewStringSetSequence returns a deduplicating ordered sequence. The first
// occurrence of each element wins.
func NewStringSetSequence(values []string) Value {
	seen := make(map[string]struct{}, len(values))
	deduped := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		deduped = append(deduped, v)
	}
	return stringSetSequence{adapter: adapter{sequenceKind}, values: deduped}
}

func (s stringSetSequence) AsSequence(string, PathMapper) ([]Value, error) {
	out := make([]Value, len(s.values))
	for i, v := range s.values {
		out[i] = NewStringValue(v)
	}
	return out, nil
}

func (s stringSetSequence) Truthy() bool { return len(s.values) > 0 }

// pathSequence stores unmapped paths and defers path mapping until
// iteration, so a sequence that is bound but never expanded pays nothing.
type pathSequence struct {
	adapter
	values []string
}

// NewPathSequence returns a sequence of paths that are rewritten by the
// path mapper lazily, at iteration time.
func NewPathSequence(values []string) Value {
	return pathSequence{adapter: adapter{sequenceKind}, values: values}
}

func (s pathSequence) AsSequence(_ string, mapper PathMapper) ([]Value, error) {
	out := make([]Value, len(s.values))
	for i, v := range s.values {
		out[i] = NewStringValue(mapper.apply(v))
	}
	return out, nil
}

func (s pathSequence) Truthy() bool { return len(s.values) > 0 }

// artifactSequence stores artifacts and renders their mapped exec paths at
// iteration time.
type artifactSequence struct {
	adapter
	values []Artifact
}

// NewArtifactSequence returns a sequence of file-like leaves.
func NewArtifactSequence(values []Artifact) Value {
	return artifactSequence{adapter: adapter{sequenceKind}, values: values}
}

func (s artifactSequence) AsSequence(_ string, mapper PathMapper) ([]Value, error) {
	out := make([]Value, len(s.values))
	for i, v := range s.values {
		out[i] = NewStringValue(mapper.mapArtifact(v))
	}
	return out, nil
}

func (s artifactSequence) Truthy() bool { return len(s.values) > 0 }
