package buildvar

const (
	stringKind   = "string"
	booleanKind  = "boolean"
	artifactKind = "artifact"
	sequenceKind = "sequence"
)

// stringValue is a plain scalar leaf. Most leaves in a variable tree are
// strings; they are stored raw and only wrapped during expansion.
type stringValue struct {
	adapter
	value string
}

// NewStringValue returns a scalar string value. Truthy iff non-empty.
func NewStringValue(value string) Value {
	return stringValue{adapter: adapter{stringKind}, value: value}
}

func (s stringValue) AsString(string, PathMapper) (string, error) {
	return s.value, nil
}

func (s stringValue) Truthy() bool { return s.value != "" }

// booleanValue renders as "1" or "0" when read as a string. There is no
// numeric value kind; these two characters are the only numbers the
// template grammar ever produces.
type booleanValue struct {
	adapter
	value bool
}

var (
	trueValue  = booleanValue{adapter: adapter{booleanKind}, value: true}
	falseValue = booleanValue{adapter: adapter{booleanKind}, value: false}
)

// NewBooleanValue returns a boolean value. Truthy iff true.
func NewBooleanValue(value bool) Value {
	if value {
		return trueValue
	}
	return falseValue
}

func (b booleanValue) AsString(string, PathMapper) (string, error) {
	if b.value {
		return "1", nil
	}
	return "0", nil
}

func (b booleanValue) Truthy() bool { return b.value }

// artifactValue is a file-like leaf whose string form goes through the path
// mapper. Always truthy.
type artifactValue struct {
	adapter
	value Artifact
}

// NewArtifactValue returns a file-like leaf value.
func NewArtifactValue(a Artifact) Value {
	return artifactValue{adapter: adapter{artifactKind}, value: a}
}

func (a artifactValue) AsString(_ string, mapper PathMapper) (string, error) {
	return mapper.mapArtifact(a.value), nil
}

func (a artifactValue) Truthy() bool { return true }

// ArtifactOf returns the artifact behind a file-like leaf value, and false
// for every other value kind.
func ArtifactOf(v Value) (Artifact, bool) {
	av, ok := v.(artifactValue)
	if !ok {
		return Artifact{}, false
	}
	return av.value, true
}
