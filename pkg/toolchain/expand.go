package toolchain

import (
	"fmt"
	"slices"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

// CommandLine expands every enabled feature's flag sets matching action
// against the given variables and returns the resulting arguments in
// order. Any expansion failure aborts the whole command line.
func (c *Config) CommandLine(action string, vars *buildvar.Variables, meta buildvar.InputMetadataProvider, mapper buildvar.PathMapper) ([]string, error) {
	enabled := make(map[string]bool, len(c.Features))
	for _, feature := range c.Features {
		enabled[feature.Name] = feature.Enabled
	}

	var commandLine []string
	for _, feature := range c.Features {
		if !feature.Enabled {
			continue
		}
		for _, set := range feature.FlagSets {
			if !slices.Contains(set.Actions, action) {
				continue
			}
			if !set.enabledByFeatures(enabled) {
				continue
			}
			for _, group := range set.FlagGroups {
				if err := group.expandCommandLine(vars, meta, mapper, &commandLine); err != nil {
					return nil, fmt.Errorf("feature '%s': %w", feature.Name, err)
				}
			}
		}
	}
	return commandLine, nil
}

// Actions returns the sorted set of action names any flag set applies to.
func (c *Config) Actions() []string {
	seen := map[string]struct{}{}
	var actions []string
	for _, feature := range c.Features {
		for _, set := range feature.FlagSets {
			for _, action := range set.Actions {
				if _, ok := seen[action]; !ok {
					seen[action] = struct{}{}
					actions = append(actions, action)
				}
			}
		}
	}
	slices.Sort(actions)
	return actions
}

// enabledByFeatures evaluates the flag set's with_features gate against
// the enabled feature set. An empty gate always passes.
func (s *FlagSet) enabledByFeatures(enabled map[string]bool) bool {
	if len(s.WithFeatures) == 0 {
		return true
	}
	for _, wf := range s.WithFeatures {
		if wf.satisfied(enabled) {
			return true
		}
	}
	return false
}

func (w *WithFeatureSet) satisfied(enabled map[string]bool) bool {
	for _, name := range w.Features {
		if !enabled[name] {
			return false
		}
	}
	for _, name := range w.NotFeatures {
		if enabled[name] {
			return false
		}
	}
	return true
}

// canBeExpanded evaluates the group's conditions. A condition on a missing
// variable makes the group silently inapplicable, never an error: probing
// is non-strict by design so that optional flag groups cost nothing to
// skip.
func (g *FlagGroup) canBeExpanded(vars *buildvar.Variables, meta buildvar.InputMetadataProvider) (bool, error) {
	for _, name := range g.ExpandIfAvailable {
		if !vars.IsAvailable(name, meta) {
			return false, nil
		}
	}
	for _, name := range g.ExpandIfNotAvailable {
		if vars.IsAvailable(name, meta) {
			return false, nil
		}
	}
	if g.ExpandIfTrue != "" {
		if !vars.IsAvailable(g.ExpandIfTrue, meta) {
			return false, nil
		}
		val, err := vars.LookupPath(g.ExpandIfTrue, meta, nil)
		if err != nil {
			return false, err
		}
		if !val.Truthy() {
			return false, nil
		}
	}
	if g.ExpandIfFalse != "" {
		if !vars.IsAvailable(g.ExpandIfFalse, meta) {
			return false, nil
		}
		val, err := vars.LookupPath(g.ExpandIfFalse, meta, nil)
		if err != nil {
			return false, err
		}
		if val.Truthy() {
			return false, nil
		}
	}
	if g.ExpandIfEqual != nil {
		if !vars.IsAvailable(g.ExpandIfEqual.Variable, meta) {
			return false, nil
		}
		s, err := vars.StringVariable(g.ExpandIfEqual.Variable, nil)
		if err != nil {
			return false, err
		}
		if s != g.ExpandIfEqual.Value {
			return false, nil
		}
	}
	return true, nil
}

// expandCommandLine expands the group, iterating when iterate_over names a
// sequence variable: each element is bound under the iteration name in a
// derived single-binding child frame shadowing the sequence itself.
func (g *FlagGroup) expandCommandLine(vars *buildvar.Variables, meta buildvar.InputMetadataProvider, mapper buildvar.PathMapper, out *[]string) error {
	ok, err := g.canBeExpanded(vars, meta)
	if err != nil || !ok {
		return err
	}

	if g.IterateOver == "" {
		return g.expandOnce(vars, meta, mapper, out)
	}

	elements, err := vars.SequenceVariable(g.IterateOver, meta, mapper)
	if err != nil {
		return err
	}
	for _, element := range elements {
		child, err := buildvar.NewBuilderWithParent(vars).
			BindValue(g.IterateOver, element).
			Build()
		if err != nil {
			return err
		}
		if err := g.expandOnce(child, meta, mapper, out); err != nil {
			return err
		}
	}
	return nil
}

// expandOnce expands the group's own flags and nested groups within one
// scope.
func (g *FlagGroup) expandOnce(vars *buildvar.Variables, meta buildvar.InputMetadataProvider, mapper buildvar.PathMapper, out *[]string) error {
	for _, tmpl := range g.templates {
		flag, err := tmpl.Expand(vars, mapper)
		if err != nil {
			return err
		}
		*out = append(*out, flag)
	}
	for _, nested := range g.FlagGroups {
		if err := nested.expandCommandLine(vars, meta, mapper, out); err != nil {
			return err
		}
	}
	return nil
}
