package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meisterT/crosstool/internal/config"
	"github.com/meisterT/crosstool/internal/starvars"
	"github.com/meisterT/crosstool/pkg/buildvar"
	"github.com/meisterT/crosstool/pkg/toolchain"
)

// debounceDelay coalesces bursts of filesystem events into one re-expansion.
const debounceDelay = 100 * time.Millisecond

// newExpandCommand creates the expand command.
func newExpandCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "expand [action...]",
		Short: "Expand flag templates into command lines",
		Long: `Load the toolchain definition and build variables, then expand the
flag templates of every enabled feature for the given actions.

With no action arguments, expands the actions listed in the project
config, or every action the toolchain mentions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			if err := cfg.ValidateFiles(); err != nil {
				return err
			}

			actions := args
			if len(actions) == 0 {
				actions = cfg.Actions
			}

			if !watch {
				return expandActions(cmd.OutOrStdout(), cfg, actions)
			}
			return watchAndExpand(cmd, cfg, actions)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-expand when the toolchain or vars file changes")
	return cmd
}

// loadInputs reads the toolchain definition and the build variables frame.
func loadInputs(cfg *config.Config) (*toolchain.Config, *buildvar.Variables, error) {
	tc, err := toolchain.Load(cfg.ToolchainPath)
	if err != nil {
		return nil, nil, err
	}

	vars := buildvar.Empty()
	if cfg.VarsPath != "" {
		if _, err := os.Stat(cfg.VarsPath); err == nil {
			vars, err = starvars.Load(cfg.VarsPath)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return tc, vars, nil
}

// expandActions expands every action and prints the command lines. Actions
// expand concurrently; the engine's frames are immutable so one frame is
// shared across all of them.
func expandActions(w io.Writer, cfg *config.Config, actions []string) error {
	tc, vars, err := loadInputs(cfg)
	if err != nil {
		return err
	}

	if len(actions) == 0 {
		actions = tc.Actions()
	}
	if len(actions) == 0 {
		return fmt.Errorf("no actions to expand")
	}

	mapper := cfg.PathMapper()
	results := make([][]string, len(actions))

	g := new(errgroup.Group)
	for i, action := range actions {
		i, action := i, action
		g.Go(func() error {
			line, err := tc.CommandLine(action, vars, nil, mapper)
			if err != nil {
				return fmt.Errorf("action '%s': %w", action, err)
			}
			results[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.OutputFormat == "json" {
		out := make(map[string][]string, len(actions))
		for i, action := range actions {
			out[action] = results[i]
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, action := range actions {
		fmt.Fprintf(w, "%s: %s\n", action, strings.Join(results[i], " "))
	}
	return nil
}

// watchAndExpand expands once, then re-expands whenever the toolchain or
// vars file changes. Expansion failures are reported but do not stop the
// watch loop.
func watchAndExpand(cmd *cobra.Command, cfg *config.Config, actions []string) error {
	logger := GetLogger(cmd.Context())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the parent directories; editors replace files on save and a
	// watch on the file itself is lost across the rename.
	watched := map[string]struct{}{
		filepath.Clean(cfg.ToolchainPath): {},
	}
	dirs := map[string]struct{}{
		filepath.Dir(cfg.ToolchainPath): {},
	}
	if cfg.VarsPath != "" {
		watched[filepath.Clean(cfg.VarsPath)] = struct{}{}
		dirs[filepath.Dir(cfg.VarsPath)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	run := func() {
		if err := expandActions(cmd.OutOrStdout(), cfg, actions); err != nil {
			logger.Error("expansion failed", "error", err)
		}
	}

	run()
	logger.Info("watching for changes", "toolchain", cfg.ToolchainPath, "vars", cfg.VarsPath)

	return watchLoop(cmd.Context(), watcher, watched, run)
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, watched map[string]struct{}, run func()) error {
	var debounce *time.Timer

	for {
		var fire <-chan time.Time
		if debounce != nil {
			fire = debounce.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-fire:
			debounce = nil
			run()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, ok := watched[filepath.Clean(event.Name)]; !ok {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
