// Package standard implements the semicolon-family dialect analyzer: a
// hand-written SQL lexer and recursive-descent fact extractor covering
// the ANSI-style dialects. Statements are split on semicolons; wildcards
// are reported as single placeholder edges (expansion needs schema
// metadata and belongs to the aggregator); columns originating in
// subqueries and CTEs are attributed to derived pseudo-tables.
package standard

import (
	"github.com/leapstack-labs/sqllineage/pkg/analyzer"
	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// Name is the stable implementation name.
const Name = "standard"

// dialects enumerates the dialect identifiers this analyzer handles.
var dialects = []string{
	"ansi", "hive", "sparksql", "mysql", "postgres",
	"duckdb", "sqlite", "bigquery", "snowflake",
}

func init() {
	analyzer.Register(&Analyzer{})
}

// Analyzer is the semicolon-family analyzer implementation.
type Analyzer struct{}

// Name returns the stable implementation name.
func (a *Analyzer) Name() string { return Name }

// Dialects returns the supported dialect identifiers.
func (a *Analyzer) Dialects() []string {
	return append([]string(nil), dialects...)
}

// Split divides raw SQL text into statements on semicolons. The batch
// separator option does not apply to this family.
func (a *Analyzer) Split(sql string, _ analyzer.SplitOptions) []string {
	return SplitStatements(sql)
}

// Analyze parses one statement into a lineage fact.
func (a *Analyzer) Analyze(statement, dialect string, index int) (*core.StatementFact, error) {
	return parseStatement(statement, dialect, index)
}
