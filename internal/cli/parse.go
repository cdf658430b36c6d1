package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

// newParseCommand creates the parse command.
func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <template>",
		Short: "Parse a flag template and show its structure",
		Long: `Parse a single flag template like "-o %{output_file}" and print its
chunks and the variables it references. Useful for debugging toolchain
definitions without running a full expansion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := buildvar.Parse(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Template: %s\n", tmpl)
			fmt.Fprintln(out, "Chunks:")
			for i, chunk := range tmpl.Chunks() {
				fmt.Fprintf(out, "  %2d. %s\n", i+1, chunk)
			}

			refs := tmpl.References()
			if len(refs) == 0 {
				fmt.Fprintln(out, "References: (none)")
			} else {
				fmt.Fprintf(out, "References: %s\n", strings.Join(refs, ", "))
			}
			return nil
		},
	}
}
