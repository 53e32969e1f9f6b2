// Package metadata provides table schema lookups for wildcard expansion:
// a provider contract, a static map-backed provider, and a database-backed
// provider reading information_schema.
//
// Provider misses are recoverable by design: the aggregator treats them as
// "unresolved" and continues, so lineage degrades at the column level
// while table-level results stay intact.
package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// Provider resolves a table's ordered column list.
type Provider interface {
	// ColumnsOf returns the table's column names in ordinal position.
	// It returns SchemaNotFoundError or TableNotFoundError when the
	// catalog has no entry.
	ColumnsOf(ctx context.Context, table core.Table) ([]string, error)
}

// SchemaNotFoundError reports that the catalog has no such schema.
type SchemaNotFoundError struct {
	Schema string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema not found: %s", e.Schema)
}

// TableNotFoundError reports that the catalog has no such table.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table not found: %s", e.Table)
}

// IsNotFound reports whether err is a recoverable catalog miss.
func IsNotFound(err error) bool {
	var schemaErr *SchemaNotFoundError
	var tableErr *TableNotFoundError
	return errors.As(err, &schemaErr) || errors.As(err, &tableErr)
}
