package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"  // postgres driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// OpenDuckDB opens a DuckDB database file as a metadata provider. An empty
// path opens an in-memory database.
func OpenDuckDB(path string) (*SQLProvider, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database: %w", err)
	}
	if err := pingTimeout(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb database: %w", err)
	}
	return NewSQLProvider(db, PlaceholderQuestion), nil
}

// OpenPostgres connects to a PostgreSQL catalog using a standard DSN.
func OpenPostgres(dsn string) (*SQLProvider, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := pingTimeout(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewSQLProvider(db, PlaceholderDollar), nil
}

func pingTimeout(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
