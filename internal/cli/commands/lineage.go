package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	SQL   string
	Level string
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage [file]",
		Short: "Analyze a SQL script and print its lineage",
		Long: `Parse a SQL script, aggregate table and column lineage across its
statements, and print a summary of source, target, and intermediate
tables. With --level table or --level column the derivation chains are
printed instead, one per line, target on the left.`,
		Example: `  # Summarize a script
  sqllineage lineage etl.sql

  # Inline SQL
  sqllineage lineage -e "INSERT INTO b SELECT x FROM a"

  # Column-level chains with catalog metadata
  sqllineage lineage etl.sql --level column --metadata schema.yaml

  # T-SQL batches separated by GO
  sqllineage lineage proc.sql -d tsql --tsql-no-semicolon`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SQL, "execute", "e", "", "Inline SQL to analyze")
	cmd.Flags().StringVarP(&opts.Level, "level", "l", "summary", "Output level (summary|table|column)")

	return cmd
}

func runLineage(cmd *cobra.Command, args []string, opts *LineageOptions) error {
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
	ctx := cmd.Context()

	switch opts.Level {
	case "summary":
		summary, err := r.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), summary)
		return nil
	case "table":
		return r.PrintTableLineage(ctx, cmd.OutOrStdout())
	case "column":
		return r.PrintColumnLineage(ctx, cmd.OutOrStdout())
	default:
		return fmt.Errorf("unknown level %q (summary|table|column)", opts.Level)
	}
}
