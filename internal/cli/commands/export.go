package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqllineage/pkg/export"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	SQL      string
	Level    string
	Compound bool
	Output   string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the lineage graph as JSON",
		Long: `Analyze a SQL script and serialize its lineage graph as a cytoscape
document: a flat node list plus a typed edge list. At the column level,
--compound nests each column under its owning table.`,
		Example: `  # Table-level graph
  sqllineage export etl.sql --level table

  # Column-level compound graph to a file
  sqllineage export etl.sql --level column --compound -o graph.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SQL, "execute", "e", "", "Inline SQL to analyze")
	cmd.Flags().StringVarP(&opts.Level, "level", "l", "table", "Graph level (table|column)")
	cmd.Flags().BoolVar(&opts.Compound, "compound", false, "Nest columns under their tables")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write JSON to file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	cfg := getConfig()

	sql, err := readSQL(opts.SQL, args)
	if err != nil {
		return err
	}

	provider, closer, err := openProvider(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	r := newRunner(cfg, sql, provider)

	doc, err := r.Export(cmd.Context(), export.Level(opts.Level), opts.Compound)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		return doc.WriteJSON(cmd.OutOrStdout())
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return doc.WriteJSON(f)
}
