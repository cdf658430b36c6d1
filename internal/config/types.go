// Package config provides project configuration for crosstool.
// This package is decoupled from CLI concerns so other tools that need to
// load a crosstool project can use it directly.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

// Config holds all project configuration options.
type Config struct {
	// ToolchainPath is the toolchain definition (features, flag sets).
	ToolchainPath string `koanf:"toolchain"`

	// VarsPath is the Starlark file defining build variables.
	VarsPath string `koanf:"vars"`

	// Actions are the default action names to expand when none are given
	// on the command line.
	Actions []string `koanf:"actions"`

	// PathMap rewrites exec path prefixes during expansion. Keys are
	// prefixes, values their replacements; the longest matching prefix
	// wins.
	PathMap map[string]string `koanf:"path_map"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}

// Config file names, searched in order.
const (
	ConfigFileName    = "crosstool.yaml"
	ConfigFileNameAlt = "crosstool.yml"
)

// Default configuration values.
const (
	DefaultToolchainPath = "toolchain.yaml"
	DefaultVarsPath      = "vars.star"
	DefaultOutput        = "text"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ToolchainPath == "" {
		return fmt.Errorf("toolchain is required")
	}
	switch c.OutputFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid output format %q (want text or json)", c.OutputFormat)
	}
	return nil
}

// ValidateFiles checks that the configured input files exist.
func (c *Config) ValidateFiles() error {
	if _, err := os.Stat(c.ToolchainPath); os.IsNotExist(err) {
		return fmt.Errorf("toolchain file does not exist: %s\nHint: Create the file or use --toolchain to specify a different path", c.ToolchainPath)
	}
	// The default vars file is optional; an explicitly configured one
	// must exist.
	if c.VarsPath != "" && c.VarsPath != DefaultVarsPath {
		if _, err := os.Stat(c.VarsPath); os.IsNotExist(err) {
			return fmt.Errorf("vars file does not exist: %s", c.VarsPath)
		}
	}
	return nil
}

// PathMapper builds the exec path rewriter from the path_map section.
// Returns nil (the identity mapping) when no rewrites are configured.
func (c *Config) PathMapper() buildvar.PathMapper {
	if len(c.PathMap) == 0 {
		return nil
	}

	// Longest prefix first so overlapping entries resolve deterministically.
	prefixes := make([]string, 0, len(c.PathMap))
	for prefix := range c.PathMap {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})

	replacements := make(map[string]string, len(c.PathMap))
	for prefix, repl := range c.PathMap {
		replacements[prefix] = repl
	}

	return func(path string) string {
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return replacements[prefix] + path[len(prefix):]
			}
		}
		return path
	}
}
