// Package config provides configuration management for the sqllineage CLI.
//
// Settings merge from four layers, lowest priority first: built-in
// defaults, an optional sqllineage.yaml file, SQLLINEAGE_ environment
// variables, and explicitly set command-line flags.
package config

// Default values applied before any other configuration layer.
const (
	DefaultDialect  = "ansi"
	DefaultLogLevel = "warn"
)

// Config holds the merged CLI configuration.
type Config struct {
	// Dialect is the SQL dialect identifier used for parsing.
	Dialect string `koanf:"dialect"`

	// Verbose enables the per-statement breakdown in summaries.
	Verbose bool `koanf:"verbose"`

	// TSQLNoSemicolon switches splitting to GO batch separators.
	TSQLNoSemicolon bool `koanf:"tsql_no_semicolon"`

	// MetadataFile is a YAML schema file mapping tables to column lists.
	MetadataFile string `koanf:"metadata_file"`

	// DuckDB is a DuckDB database file to read catalog metadata from.
	DuckDB string `koanf:"duckdb"`

	// Postgres is a PostgreSQL DSN to read catalog metadata from.
	Postgres string `koanf:"postgres"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}
