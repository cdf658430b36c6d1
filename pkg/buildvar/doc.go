// Package buildvar implements the variable-binding and template-expansion
// engine that turns declarative toolchain configuration into concrete
// command-line arguments.
//
// A flag template is a string with placeholders ("-f %{var1}/%{var2}").
// Parse splits it into chunks once; the chunk list is then expanded any
// number of times against a set of Variables. Variables are immutable
// name→value bindings with optional parent-frame delegation, so a nested
// scope can shadow a handful of names without copying the whole set.
//
// Values are polymorphic: scalars, booleans, file-like artifacts, sequences
// (with several memory-optimized backings), and field-addressable
// structures reached through dotted paths like "libraries_to_link.name".
// A typical build holds millions of values across its action graph, so the
// backing representations trade generality for footprint while behaving
// identically to consumers.
//
// Everything here is built once and read concurrently by many independent
// action expansions. The only mutable state is the per-frame dotted-path
// cache, which publishes entries at most once.
package buildvar
