package commands

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqllineage/pkg/runner"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects",
		Long:  `List every registered analyzer and the SQL dialects it handles.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			supported := runner.SupportedDialects()

			names := make([]string, 0, len(supported))
			for name := range supported {
				names = append(names, name)
			}
			sort.Strings(names)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Analyzer", "Dialects"})
			for _, name := range names {
				t.AppendRow(table.Row{name, strings.Join(supported[name], ", ")})
			}
			t.Render()
			return nil
		},
	}
}
