package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/sqllineage/internal/cli/config"
	"github.com/leapstack-labs/sqllineage/pkg/metadata"
	"github.com/leapstack-labs/sqllineage/pkg/runner"
)

func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Dialect:  config.DefaultDialect,
		LogLevel: config.DefaultLogLevel,
	}
}

// readSQL resolves the SQL text for a command: the -e flag wins, otherwise
// the positional argument names a file to read.
func readSQL(inline string, args []string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no SQL given: pass a file path or use -e")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read SQL file: %w", err)
	}
	return string(data), nil
}

// openProvider builds the metadata provider named by the config, if any.
// The returned closer is nil for providers without a connection.
func openProvider(cfg *config.Config) (metadata.Provider, io.Closer, error) {
	switch {
	case cfg.Postgres != "":
		p, err := metadata.OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case cfg.DuckDB != "":
		p, err := metadata.OpenDuckDB(cfg.DuckDB)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case cfg.MetadataFile != "":
		p, err := metadata.LoadYAML(cfg.MetadataFile)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	default:
		return nil, nil, nil
	}
}

// newRunner assembles a Runner from the merged config and SQL text.
func newRunner(cfg *config.Config, sql string, provider metadata.Provider) *runner.Runner {
	opts := []runner.Option{
		runner.WithDialect(strings.ToLower(cfg.Dialect)),
		runner.WithVerbose(cfg.Verbose),
		runner.WithLogger(slog.Default()),
		runner.WithTSQLNoSemicolon(cfg.TSQLNoSemicolon),
	}
	if provider != nil {
		opts = append(opts, runner.WithMetadataProvider(provider))
	}
	return runner.New(sql, opts...)
}
