package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// PlaceholderStyle selects the parameter syntax of the backing database.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2 parameters (PostgreSQL).
	PlaceholderDollar
)

// SQLProvider resolves table schemas from a live catalog through
// database/sql, reading information_schema.columns. Lookups are blocking
// I/O; the aggregator caches results per run.
type SQLProvider struct {
	DB          *sql.DB
	Placeholder PlaceholderStyle
	Logger      *slog.Logger
}

// NewSQLProvider wraps an open database handle.
func NewSQLProvider(db *sql.DB, style PlaceholderStyle) *SQLProvider {
	return &SQLProvider{DB: db, Placeholder: style}
}

// Close closes the underlying database connection.
func (p *SQLProvider) Close() error {
	if p.DB != nil {
		if p.Logger != nil {
			p.Logger.Debug("closing metadata connection")
		}
		return p.DB.Close()
	}
	return nil
}

// ColumnsOf queries information_schema.columns for the table's columns in
// ordinal position. An empty result is reported as TableNotFoundError.
func (p *SQLProvider) ColumnsOf(ctx context.Context, table core.Table) ([]string, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query, args := p.buildQuery(table)
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}
	if len(columns) == 0 {
		return nil, &TableNotFoundError{Table: table.String()}
	}
	return columns, nil
}

// buildQuery renders the information_schema query in the backend's
// placeholder style.
func (p *SQLProvider) buildQuery(table core.Table) (string, []any) {
	if table.Schema != "" {
		if p.Placeholder == PlaceholderDollar {
			return "SELECT column_name FROM information_schema.columns " +
				"WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position", []any{table.Schema, table.Name}
		}
		return "SELECT column_name FROM information_schema.columns " +
			"WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position", []any{table.Schema, table.Name}
	}
	if p.Placeholder == PlaceholderDollar {
		return "SELECT column_name FROM information_schema.columns " +
			"WHERE table_name = $1 ORDER BY ordinal_position", []any{table.Name}
	}
	return "SELECT column_name FROM information_schema.columns " +
		"WHERE table_name = ? ORDER BY ordinal_position", []any{table.Name}
}
