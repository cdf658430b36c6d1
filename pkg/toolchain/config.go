// Package toolchain models the declarative toolchain configuration that
// drives flag expansion: features made of flag sets, flag sets made of flag
// groups, flag groups made of flag templates. It owns the iteration and
// conditional-inclusion logic that sits above the expansion engine, which
// only ever expands one template against one frame.
package toolchain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

// Config is a full toolchain configuration.
type Config struct {
	// Features are the named flag carriers, applied in declaration order.
	Features []*Feature `yaml:"features"`

	// BuildVariables declares the variable names build actions are expected
	// to bind. When non-empty, Load rejects templates referencing anything
	// else, so configuration authors get the error at load time instead of
	// deep inside some action's expansion.
	BuildVariables []string `yaml:"build_variables"`
}

// Feature is a named group of flag sets that can be toggled per build.
type Feature struct {
	Name     string     `yaml:"name"`
	Enabled  bool       `yaml:"enabled"`
	FlagSets []*FlagSet `yaml:"flag_sets"`
}

// FlagSet attaches flag groups to the actions they apply to, optionally
// gated on which features are enabled.
type FlagSet struct {
	Actions      []string          `yaml:"actions"`
	WithFeatures []*WithFeatureSet `yaml:"with_features"`
	FlagGroups   []*FlagGroup      `yaml:"flag_groups"`
}

// WithFeatureSet is one alternative in a flag set's feature gate: all of
// Features enabled and none of NotFeatures. The gate passes when any
// alternative does.
type WithFeatureSet struct {
	Features    []string `yaml:"features"`
	NotFeatures []string `yaml:"not_features"`
}

// VariableWithValue is the operand of an expand_if_equal condition.
type VariableWithValue struct {
	Variable string `yaml:"variable"`
	Value    string `yaml:"value"`
}

// FlagGroup is a list of flag templates expanded together, optionally
// conditional on variable availability or truthiness, optionally repeated
// once per element of a sequence variable, and optionally nesting further
// groups that expand within the same scope.
type FlagGroup struct {
	Flags      []string     `yaml:"flags"`
	FlagGroups []*FlagGroup `yaml:"flag_groups"`

	// IterateOver names a sequence variable; the group is expanded once per
	// element, with the element bound under the same name in a derived
	// child frame.
	IterateOver string `yaml:"iterate_over"`

	ExpandIfAvailable    []string           `yaml:"expand_if_available"`
	ExpandIfNotAvailable []string           `yaml:"expand_if_not_available"`
	ExpandIfTrue         string             `yaml:"expand_if_true"`
	ExpandIfFalse        string             `yaml:"expand_if_false"`
	ExpandIfEqual        *VariableWithValue `yaml:"expand_if_equal"`

	// templates are the parse results for Flags, produced once at load
	// time. Parsing is deterministic, so caching by position is safe.
	templates []*buildvar.Template
}

// Load reads and compiles a toolchain configuration from a YAML file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load toolchain config: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse toolchain config: %w", err)
	}

	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseBytes compiles a toolchain configuration from raw YAML, e.g. an
// embedded default config.
func ParseBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yamlv3.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse toolchain config: %w", err)
	}
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// compile parses every flag template once and, when build_variables is
// declared, checks all references against it.
func (c *Config) compile() error {
	declared := map[string]struct{}{}
	for _, name := range c.BuildVariables {
		declared[name] = struct{}{}
	}

	for _, feature := range c.Features {
		for _, set := range feature.FlagSets {
			for _, group := range set.FlagGroups {
				if err := group.compile(feature.Name, declared); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *FlagGroup) compile(featureName string, declared map[string]struct{}) error {
	// iterate_over introduces its variable for the whole subtree.
	if g.IterateOver != "" && len(declared) > 0 {
		inner := make(map[string]struct{}, len(declared)+1)
		for name := range declared {
			inner[name] = struct{}{}
		}
		inner[g.IterateOver] = struct{}{}
		declared = inner
	}

	g.templates = make([]*buildvar.Template, len(g.Flags))
	for i, flag := range g.Flags {
		tmpl, err := buildvar.Parse(flag)
		if err != nil {
			return fmt.Errorf("feature '%s': %w", featureName, err)
		}
		if len(declared) > 0 {
			for _, ref := range tmpl.References() {
				root, _, _ := strings.Cut(ref, ".")
				if _, ok := declared[root]; !ok {
					return fmt.Errorf(
						"feature '%s': flag '%s' references undeclared variable '%s'",
						featureName, flag, ref)
				}
			}
		}
		g.templates[i] = tmpl
	}

	for _, nested := range g.FlagGroups {
		if err := nested.compile(featureName, declared); err != nil {
			return err
		}
	}
	return nil
}

// Feature returns the named feature, or nil.
func (c *Config) Feature(name string) *Feature {
	for _, f := range c.Features {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// UsedVariables returns the root names of every variable referenced by any
// flag template, sorted, excluding names introduced by iterate_over.
func (c *Config) UsedVariables() []string {
	used := map[string]struct{}{}
	for _, feature := range c.Features {
		for _, set := range feature.FlagSets {
			for _, group := range set.FlagGroups {
				group.collectUsed(map[string]struct{}{}, used)
			}
		}
	}
	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *FlagGroup) collectUsed(bound map[string]struct{}, used map[string]struct{}) {
	if g.IterateOver != "" {
		inner := make(map[string]struct{}, len(bound)+1)
		for name := range bound {
			inner[name] = struct{}{}
		}
		inner[g.IterateOver] = struct{}{}
		bound = inner
	}
	for _, tmpl := range g.templates {
		for _, ref := range tmpl.References() {
			root, _, _ := strings.Cut(ref, ".")
			if _, ok := bound[root]; !ok {
				used[root] = struct{}{}
			}
		}
	}
	for _, nested := range g.FlagGroups {
		nested.collectUsed(bound, used)
	}
}
