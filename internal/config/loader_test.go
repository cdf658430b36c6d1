package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	ResetConfig()

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultToolchainPath, cfg.ToolchainPath)
	assert.Equal(t, DefaultVarsPath, cfg.VarsPath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
toolchain: cc/toolchain.yaml
vars: cc/vars.star
actions:
  - c-compile
  - c++-link-executable
path_map:
  bazel-out/: out/
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))
	chdir(t, dir)
	ResetConfig()

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "cc/toolchain.yaml", cfg.ToolchainPath)
	assert.Equal(t, "cc/vars.star", cfg.VarsPath)
	assert.Equal(t, []string{"c-compile", "c++-link-executable"}, cfg.Actions)
	assert.Equal(t, ConfigFileName, GetConfigFileUsed())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("vars: from_file.star\n"), 0o644))
	chdir(t, dir)
	ResetConfig()
	t.Setenv("CROSSTOOL_VARS", "from_env.star")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env.star", cfg.VarsPath)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	ResetConfig()
	t.Setenv("CROSSTOOL_TOOLCHAIN", "from_env.yaml")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("toolchain", "", "")
	require.NoError(t, flags.Parse([]string{"--toolchain", "from_flag.yaml"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag.yaml", cfg.ToolchainPath)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	chdir(t, t.TempDir())
	ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("toolchain", "flag_default.yaml", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultToolchainPath, cfg.ToolchainPath)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o644))
	ResetConfig()

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	ResetConfig()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadInvalidOutputFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("output: xml\n"), 0o644))
	chdir(t, dir)
	ResetConfig()

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestPathMapper(t *testing.T) {
	cfg := &Config{PathMap: map[string]string{
		"bazel-out/":          "out/",
		"bazel-out/k8-fastbuild/": "fast/",
	}}
	mapper := cfg.PathMapper()
	require.NotNil(t, mapper)

	// Longest prefix wins
	assert.Equal(t, "fast/bin/a.o", mapper("bazel-out/k8-fastbuild/bin/a.o"))
	assert.Equal(t, "out/k8-opt/bin/a.o", mapper("bazel-out/k8-opt/bin/a.o"))
	assert.Equal(t, "src/main.cc", mapper("src/main.cc"))
}

func TestPathMapperEmpty(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.PathMapper())
}
