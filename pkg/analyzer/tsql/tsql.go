// Package tsql implements the batch-family dialect analyzer for T-SQL.
// It reuses the standard fact extractor (the tsql dialect config enables
// bracket-quoted identifiers) and adds GO batch splitting: T-SQL scripts
// may carry no semicolons at all, with batches separated by a GO line.
package tsql

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/analyzer"
	"github.com/leapstack-labs/sqllineage/pkg/analyzer/standard"
	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// Name is the stable implementation name.
const Name = "tsql"

func init() {
	analyzer.Register(&Analyzer{})
}

// Analyzer is the T-SQL analyzer implementation.
type Analyzer struct {
	inner standard.Analyzer
}

// Name returns the stable implementation name.
func (a *Analyzer) Name() string { return Name }

// Dialects returns the supported dialect identifiers.
func (a *Analyzer) Dialects() []string { return []string{"tsql"} }

// Split divides raw SQL text into statements. With the batch separator
// enabled, statements are separated by GO lines instead of semicolons.
func (a *Analyzer) Split(sql string, opts analyzer.SplitOptions) []string {
	if opts.BatchSeparator {
		return SplitBatches(sql)
	}
	return a.inner.Split(sql, opts)
}

// Analyze parses one statement into a lineage fact.
func (a *Analyzer) Analyze(statement, dialect string, index int) (*core.StatementFact, error) {
	return a.inner.Analyze(statement, dialect, index)
}

// SplitBatches splits a T-SQL script on GO separator lines. GO must stand
// alone on its line (an optional repeat count is discarded along with the
// separator). Batches without a trailing GO are kept as written.
func SplitBatches(sql string) []string {
	var statements []string
	var current []string

	flush := func() {
		batch := strings.TrimSpace(strings.Join(current, "\n"))
		current = current[:0]
		if batch != "" {
			statements = append(statements, batch)
		}
	}

	for _, line := range strings.Split(sql, "\n") {
		if isGoLine(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return statements
}

// isGoLine reports whether a line is a GO batch separator, optionally
// followed by a repeat count.
func isGoLine(line string) bool {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return strings.EqualFold(fields[0], "go")
	case 2:
		if !strings.EqualFold(fields[0], "go") {
			return false
		}
		for _, ch := range fields[1] {
			if ch < '0' || ch > '9' {
				return false
			}
		}
		return true
	}
	return false
}
