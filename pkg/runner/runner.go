// Package runner is the façade of the lineage engine. A Runner takes raw
// SQL plus options, and evaluates lazily: the first query splits the text,
// analyzes every statement, and aggregates the facts; later queries reuse
// the result.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqllineage/pkg/analyzer"
	_ "github.com/leapstack-labs/sqllineage/pkg/analyzer/standard" // register standard analyzer
	_ "github.com/leapstack-labs/sqllineage/pkg/analyzer/tsql"     // register tsql analyzer
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/export"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
	"github.com/leapstack-labs/sqllineage/pkg/metadata"
)

// Option configures a Runner.
type Option func(*Runner)

// WithDialect selects the SQL dialect. Defaults to core.DefaultDialect.
func WithDialect(dialect string) Option {
	return func(r *Runner) { r.dialect = strings.ToLower(dialect) }
}

// WithMetadataProvider attaches a catalog for wildcard expansion and
// cross-table column binding.
func WithMetadataProvider(p metadata.Provider) Option {
	return func(r *Runner) { r.provider = p }
}

// WithVerbose enables the per-statement breakdown in Summary output.
func WithVerbose(verbose bool) Option {
	return func(r *Runner) { r.verbose = verbose }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithTSQLNoSemicolon switches splitting to T-SQL GO batch separators.
// Meaningful only with the tsql dialect; other dialects log an advisory
// and split on semicolons as usual.
func WithTSQLNoSemicolon(enabled bool) Option {
	return func(r *Runner) { r.tsqlNoSemicolon = enabled }
}

// Runner evaluates the lineage of a SQL script.
type Runner struct {
	sql             string
	dialect         string
	provider        metadata.Provider
	verbose         bool
	logger          *slog.Logger
	tsqlNoSemicolon bool

	once   sync.Once
	result *lineage.Result
	err    error
}

// New builds a Runner over the given SQL text. No parsing happens until
// the first query.
func New(sql string, opts ...Option) *Runner {
	r := &Runner{
		sql:     sql,
		dialect: core.DefaultDialect,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// evaluate runs split, analyze, and aggregate exactly once. Any error is
// sticky: every later query observes the same failure.
func (r *Runner) evaluate(ctx context.Context) (*lineage.Result, error) {
	r.once.Do(func() {
		r.result, r.err = r.run(ctx)
	})
	return r.result, r.err
}

func (r *Runner) run(ctx context.Context) (*lineage.Result, error) {
	a, ok := analyzer.For(r.dialect)
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", r.dialect)
	}
	if r.tsqlNoSemicolon && r.dialect != "tsql" {
		r.logger.Warn("tsql_no_semicolon takes effect only with the tsql dialect",
			"dialect", r.dialect)
	}

	statements := a.Split(r.sql, analyzer.SplitOptions{BatchSeparator: r.tsqlNoSemicolon})

	facts := make([]*core.StatementFact, len(statements))
	g, gctx := errgroup.WithContext(ctx)
	for i, stmt := range statements {
		i, stmt := i, stmt
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fact, err := a.Analyze(stmt, r.dialect, i)
			if err != nil {
				return err
			}
			facts[i] = fact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := lineage.NewAggregator(r.provider, r.logger)
	return agg.Aggregate(ctx, statements, facts), nil
}

// Result evaluates the script (once) and returns the aggregated lineage.
func (r *Runner) Result(ctx context.Context) (*lineage.Result, error) {
	return r.evaluate(ctx)
}

// SourceTables returns the run's source tables.
func (r *Runner) SourceTables(ctx context.Context) ([]core.Table, error) {
	res, err := r.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return res.SourceTables(), nil
}

// TargetTables returns the run's target tables.
func (r *Runner) TargetTables(ctx context.Context) ([]core.Table, error) {
	res, err := r.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return res.TargetTables(), nil
}

// IntermediateTables returns the run's intermediate tables.
func (r *Runner) IntermediateTables(ctx context.Context) ([]core.Table, error) {
	res, err := r.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return res.IntermediateTables(), nil
}

// Statements returns the split statement strings.
func (r *Runner) Statements(ctx context.Context) ([]string, error) {
	res, err := r.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return res.Statements(), nil
}

// ColumnLineage returns column derivation chains, origin first.
func (r *Runner) ColumnLineage(ctx context.Context, excludeSubquery bool) ([][]core.Column, error) {
	res, err := r.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return res.ColumnLineage(excludeSubquery), nil
}

// Summary renders the run overview, honoring the verbose option.
func (r *Runner) Summary(ctx context.Context) (string, error) {
	res, err := r.evaluate(ctx)
	if err != nil {
		return "", err
	}
	return res.Summary(r.verbose), nil
}

// PrintTableLineage writes table chains to w, one per line, newest first
// on the left joined by " <- ".
func (r *Runner) PrintTableLineage(ctx context.Context, w io.Writer) error {
	res, err := r.evaluate(ctx)
	if err != nil {
		return err
	}
	for _, chain := range res.TableLineage() {
		parts := make([]string, len(chain))
		for i, t := range chain {
			parts[len(chain)-1-i] = t.String()
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " <- ")); err != nil {
			return err
		}
	}
	return nil
}

// PrintColumnLineage writes column chains to w, one per line, target on
// the left joined by " <- ". Subquery hops are elided.
func (r *Runner) PrintColumnLineage(ctx context.Context, w io.Writer) error {
	res, err := r.evaluate(ctx)
	if err != nil {
		return err
	}
	for _, chain := range res.ColumnLineage(true) {
		parts := make([]string, len(chain))
		for i, c := range chain {
			parts[len(chain)-1-i] = c.String()
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " <- ")); err != nil {
			return err
		}
	}
	return nil
}

// Export builds the cytoscape document for the requested level. Compound
// nesting applies only to the column level, where tables become parents.
func (r *Runner) Export(ctx context.Context, level export.Level, compound bool) (*export.Doc, error) {
	res, err := r.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	switch level {
	case export.LevelColumn:
		return export.FromGraph(res.ColumnGraph(), compound), nil
	case export.LevelTable:
		return export.FromGraph(res.TableGraph(), false), nil
	default:
		return nil, fmt.Errorf("unknown export level %q", level)
	}
}

// SupportedDialects returns analyzer-name -> dialect list for every
// registered analyzer.
func SupportedDialects() map[string][]string {
	return analyzer.SupportedDialects()
}
