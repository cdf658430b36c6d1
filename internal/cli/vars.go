package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/meisterT/crosstool/pkg/buildvar"
)

// newVarsCommand creates the vars command.
func newVarsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "Show the bound build variables",
		Long:  `Load the build variables file and list every binding with its kind and truthiness.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			if err := cfg.ValidateFiles(); err != nil {
				return err
			}

			_, vars, err := loadInputs(cfg)
			if err != nil {
				return err
			}

			mapper := cfg.PathMapper()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Variable", "Kind", "Truthy", "Value"})

			for _, name := range vars.Keys() {
				value := vars.Lookup(name)
				preview := ""
				if s, err := value.AsString(name, mapper); err == nil {
					preview = s
				}
				t.AppendRow(table.Row{name, buildvar.KindOf(value), value.Truthy(), preview})
			}
			t.Render()
			return nil
		},
	}
}
