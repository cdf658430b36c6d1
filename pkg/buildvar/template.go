package buildvar

import (
	"sort"
	"strings"
)

// chunk is one unit of a parsed template: literal text or a variable
// reference. Chunks are immutable and compare by content.
type chunk interface {
	// expand appends this chunk's contribution to out.
	expand(v *Variables, mapper PathMapper, out *strings.Builder) error
	// String returns the chunk's source form.
	String() string
}

// literalChunk is plain text containing no variables. A "%%" escape in the
// source is already folded into the text and never re-interpreted.
type literalChunk string

func (c literalChunk) expand(_ *Variables, _ PathMapper, out *strings.Builder) error {
	out.WriteString(string(c))
	return nil
}

func (c literalChunk) String() string { return string(c) }

// variableChunk is a placeholder to be replaced by the named variable's
// string rendering.
type variableChunk string

func (c variableChunk) expand(v *Variables, mapper PathMapper, out *strings.Builder) error {
	s, err := v.StringVariable(string(c), mapper)
	if err != nil {
		return err
	}
	out.WriteString(s)
	return nil
}

func (c variableChunk) String() string { return "%{" + string(c) + "}" }

// Template is the parse result of one flag template string. Parsing is
// deterministic and templates are parsed over and over across actions, so
// callers cache Templates keyed by the raw source string.
type Template struct {
	source string
	chunks []chunk
	used   map[string]struct{}
}

// Expand renders the template against one frame, concatenating each
// chunk's contribution. Any resolution or rendering failure aborts the
// whole expansion; partial results are never returned.
func (t *Template) Expand(v *Variables, mapper PathMapper) (string, error) {
	var out strings.Builder
	for _, c := range t.chunks {
		if err := c.expand(v, mapper, &out); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

// References returns the names of all variables the template refers to, in
// sorted order. Callers use it to detect references to undeclared
// variables before any expansion runs.
func (t *Template) References() []string {
	names := make([]string, 0, len(t.used))
	for name := range t.used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chunks returns the source form of each parsed chunk in order, for
// diagnostics. Variable references come back in their "%{name}" form.
func (t *Template) Chunks() []string {
	out := make([]string, len(t.chunks))
	for i, c := range t.chunks {
		out[i] = c.String()
	}
	return out
}

// Refers reports whether the template references the named variable.
func (t *Template) Refers(name string) bool {
	_, ok := t.used[name]
	return ok
}

// String returns the raw template source.
func (t *Template) String() string { return t.source }
