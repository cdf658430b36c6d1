package buildvar

import "strings"

// Parse splits a flag template into literal and variable chunks.
//
// A '%' not followed by another '%' opens a placeholder, which must be
// "%{name}" with a non-empty name. "%%" collapses to one literal '%'.
// Everything else up to the next unescaped '%' (or end of input) is one
// literal chunk, so "abc%%def" parses to the two literals "abc" and "%def".
func Parse(template string) (*Template, error) {
	p := &parser{
		source: template,
		used:   make(map[string]struct{}),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return &Template{source: template, chunks: p.chunks, used: p.used}, nil
}

type parser struct {
	source  string
	current int
	chunks  []chunk
	used    map[string]struct{}
}

func (p *parser) parse() error {
	for p.current < len(p.source) {
		if p.atVariableStart() {
			if err := p.parseVariableChunk(); err != nil {
				return err
			}
		} else {
			p.parseLiteralChunk()
		}
	}
	return nil
}

// atVariableStart reports whether the current position opens a placeholder:
// a '%' that is not the start of a "%%" escape.
func (p *parser) atVariableStart() bool {
	return p.source[p.current] == '%' &&
		(p.current+1 >= len(p.source) || p.source[p.current+1] != '%')
}

// parseLiteralChunk consumes text up to the next '%'. When the chunk opens
// with a "%%" escape, the first '%' is dropped and the literal starts at
// the second.
func (p *parser) parseLiteralChunk() {
	start := p.current
	if p.source[p.current] == '%' {
		p.current++
		start = p.current
	}
	next := strings.IndexByte(p.source[p.current+1:], '%')
	if next == -1 {
		p.current = len(p.source)
	} else {
		p.current = p.current + 1 + next
	}
	p.chunks = append(p.chunks, literalChunk(p.source[start:p.current]))
}

// parseVariableChunk consumes "%{name}" starting at the opening '%'.
func (p *parser) parseVariableChunk() error {
	p.current++
	if p.current >= len(p.source) || p.source[p.current] != '{' {
		return p.abort("expected '{'")
	}
	p.current++
	if p.current >= len(p.source) || p.source[p.current] == '}' {
		return p.abort("expected variable name")
	}
	end := strings.IndexByte(p.source[p.current:], '}')
	if end == -1 {
		return p.abort("expected '}'")
	}
	name := p.source[p.current : p.current+end]
	p.used[name] = struct{}{}
	p.chunks = append(p.chunks, variableChunk(name))
	p.current += end + 1
	return nil
}

func (p *parser) abort(reason string) error {
	return errMalformedTemplate(reason, p.current, p.source)
}
