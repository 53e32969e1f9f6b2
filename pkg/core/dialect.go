package core

import "strings"

// NormalizationStrategy defines how unquoted identifiers are case-folded.
type NormalizationStrategy int

const (
	// NormLowercase folds unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase folds unquoted identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
)

// SplitFamily selects how a dialect separates statements.
type SplitFamily int

const (
	// SplitSemicolon terminates statements with semicolons.
	SplitSemicolon SplitFamily = iota
	// SplitBatch separates statement batches with a keyword (T-SQL GO)
	// and permits statements with no semicolons at all.
	SplitBatch
)

// DialectConfig holds the static identifier and splitting rules for a
// SQL dialect. This is pure data; parsing behavior lives in the analyzers.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "ansi", "tsql").
	Name string

	// DefaultSchema is the schema assumed for unqualified tables when a
	// catalog lookup needs one ("public" for postgres, "main" for duckdb).
	// Empty means unqualified names stay unqualified.
	DefaultSchema string

	// Normalization is the identifier-casing rule.
	Normalization NormalizationStrategy

	// Splitting is the statement-separation family.
	Splitting SplitFamily

	// BracketIdentifiers allows [bracketed] identifier quoting (T-SQL).
	BracketIdentifiers bool
}

// Fold case-folds an identifier per the dialect rule.
func (d DialectConfig) Fold(ident string) string {
	switch d.Normalization {
	case NormUppercase:
		return strings.ToUpper(ident)
	case NormCaseSensitive:
		return ident
	default:
		return strings.ToLower(ident)
	}
}

// dialectConfigs lists every dialect the engine knows about. Analyzer
// implementations declare which subset they handle.
var dialectConfigs = map[string]DialectConfig{
	"ansi":      {Name: "ansi"},
	"hive":      {Name: "hive"},
	"sparksql":  {Name: "sparksql"},
	"mysql":     {Name: "mysql"},
	"postgres":  {Name: "postgres", DefaultSchema: "public"},
	"duckdb":    {Name: "duckdb", DefaultSchema: "main"},
	"sqlite":    {Name: "sqlite", DefaultSchema: "main"},
	"bigquery":  {Name: "bigquery"},
	"snowflake": {Name: "snowflake", Normalization: NormUppercase},
	"tsql":      {Name: "tsql", DefaultSchema: "dbo", Splitting: SplitBatch, BracketIdentifiers: true},
}

// DefaultDialect is used when no dialect is configured.
const DefaultDialect = "ansi"

// Dialect returns the configuration for a dialect name.
func Dialect(name string) (DialectConfig, bool) {
	d, ok := dialectConfigs[strings.ToLower(name)]
	return d, ok
}

// MustDialect returns the configuration for a known dialect name, falling
// back to ANSI rules for unknown names so canonicalization stays defined.
func MustDialect(name string) DialectConfig {
	if d, ok := Dialect(name); ok {
		return d
	}
	return DialectConfig{Name: strings.ToLower(name)}
}
