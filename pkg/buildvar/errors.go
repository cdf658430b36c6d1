package buildvar

import "fmt"

// ErrorKind classifies the reason an expansion failed.
type ErrorKind int

const (
	// UndefinedVariable means a referenced variable is bound in neither the
	// frame nor any of its ancestors.
	UndefinedVariable ErrorKind = iota
	// WrongKind means a variable was read as a kind it does not support,
	// e.g. sequence expansion of a scalar.
	WrongKind
	// MissingField means a dotted path addressed a field the structure does
	// not have.
	MissingField
	// MalformedTemplate means the template text itself could not be parsed.
	MalformedTemplate
)

// ExpansionError is the single error type raised by this package. It is
// terminal for the expansion call that produced it: the engine never retries
// or substitutes a fallback, the caller decides what aborting means.
type ExpansionError struct {
	Kind ErrorKind

	// Name is the variable name or dotted path involved, when known.
	Name string
	// Field is the missing field name for MissingField errors.
	Field string
	// Expected and Actual are human-readable kind tags for WrongKind errors.
	Expected string
	Actual   string
	// Pos and Template locate MalformedTemplate errors in the source text.
	Pos      int
	Template string

	msg string
}

// Error returns the full human-readable diagnosis.
func (e *ExpansionError) Error() string { return e.msg }

func errUndefinedVariable(name string) *ExpansionError {
	return &ExpansionError{
		Kind: UndefinedVariable,
		Name: name,
		msg:  fmt.Sprintf("Invalid toolchain configuration: Cannot find variable named '%s'.", name),
	}
}

func errWrongKind(name, expected, actual string) *ExpansionError {
	return &ExpansionError{
		Kind:     WrongKind,
		Name:     name,
		Expected: expected,
		Actual:   actual,
		msg: fmt.Sprintf(
			"Invalid toolchain configuration: Cannot expand variable '%s': expected %s, found %s",
			name, expected, actual),
	}
}

func errStructureExpected(structPath, field, actual string) *ExpansionError {
	return &ExpansionError{
		Kind:     WrongKind,
		Name:     structPath,
		Field:    field,
		Expected: "structure",
		Actual:   actual,
		msg: fmt.Sprintf(
			"Invalid toolchain configuration: Cannot expand variable '%s.%s': variable '%s' is %s, expected structure",
			structPath, field, structPath, actual),
	}
}

func errMissingField(structPath, field string) *ExpansionError {
	return &ExpansionError{
		Kind:  MissingField,
		Name:  structPath,
		Field: field,
		msg: fmt.Sprintf(
			"Invalid toolchain configuration: Cannot expand variable '%s.%s': structure %s doesn't have a field named '%s'",
			structPath, field, structPath, field),
	}
}

func errMalformedTemplate(reason string, pos int, template string) *ExpansionError {
	return &ExpansionError{
		Kind:     MalformedTemplate,
		Pos:      pos,
		Template: template,
		msg: fmt.Sprintf(
			"Invalid toolchain configuration: %s at position %d while parsing a flag containing '%s'",
			reason, pos, template),
	}
}
