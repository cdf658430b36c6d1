package buildvar

// Value is a single build variable value: a scalar, boolean, artifact,
// sequence, or structure. Implementations are immutable and side-effect
// free; the same value is expanded and queried concurrently many times.
//
// The kind method is unexported on purpose: the set of value kinds is
// closed, new ones cannot be defined outside this package.
type Value interface {
	// AsString returns the scalar rendering of the value, or a WrongKind
	// error for values with no scalar form (sequences, structures).
	// variableName is only used to build the error message.
	AsString(variableName string, mapper PathMapper) (string, error)

	// AsSequence returns the value's elements in order, or a WrongKind
	// error for values that are not sequence-shaped. There is no implicit
	// coercion: a scalar never expands as a one-element sequence.
	AsSequence(variableName string, mapper PathMapper) ([]Value, error)

	// Field returns the named field's value for structures, or (nil, nil)
	// when the structure has no such field. Absence is not itself an
	// error; the caller decides whether it is fatal. Non-structure values
	// return a WrongKind error.
	Field(structPath, field string, meta InputMetadataProvider, mapper PathMapper) (Value, error)

	// Truthy reports whether the value counts as "set" for conditional
	// flag-group inclusion.
	Truthy() bool

	kind() string
}

// KindOf returns the human-readable kind of a value, as used in error
// messages ("string", "boolean", "sequence", "structure (...)").
func KindOf(v Value) string {
	return v.kind()
}

// adapter supplies the failure cases of the Value interface so concrete
// variants only implement the one or two capabilities they support. The
// kind name embedded here keeps the error format uniform across variants.
type adapter struct {
	kindName string
}

func (a adapter) AsString(variableName string, _ PathMapper) (string, error) {
	return "", errWrongKind(variableName, "string", a.kindName)
}

func (a adapter) AsSequence(variableName string, _ PathMapper) ([]Value, error) {
	return nil, errWrongKind(variableName, "sequence", a.kindName)
}

func (a adapter) Field(structPath, field string, _ InputMetadataProvider, _ PathMapper) (Value, error) {
	return nil, errStructureExpected(structPath, field, a.kindName)
}

func (a adapter) kind() string { return a.kindName }
