package lineage

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/graph"
	"github.com/leapstack-labs/sqllineage/pkg/metadata"
)

// Aggregator folds statement facts into a Result. A nil Provider disables
// wildcard expansion and cross-table column binding; placeholder edges are
// kept in the graph so the gap stays visible.
type Aggregator struct {
	Provider metadata.Provider
	Logger   *slog.Logger
}

// NewAggregator builds an aggregator. Both arguments may be nil.
func NewAggregator(provider metadata.Provider, logger *slog.Logger) *Aggregator {
	return &Aggregator{Provider: provider, Logger: logger}
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// run holds the mutable state of one aggregation pass. Catalog lookups are
// cached for the pass so each table is fetched at most once.
type run struct {
	agg     *Aggregator
	tables  *graph.Graph
	columns *graph.Graph

	firstWrite map[core.Table]int
	lastRead   map[core.Table]int

	colCache  map[string][]string
	missCache map[string]struct{}
}

// Aggregate folds facts in statement order. statements carries the raw SQL
// for each fact, in the same order, for the verbose summary.
func (a *Aggregator) Aggregate(ctx context.Context, statements []string, facts []*core.StatementFact) *Result {
	r := &run{
		agg:        a,
		tables:     graph.New(),
		columns:    graph.New(),
		firstWrite: make(map[core.Table]int),
		lastRead:   make(map[core.Table]int),
		colCache:   make(map[string][]string),
		missCache:  make(map[string]struct{}),
	}

	for _, f := range facts {
		r.foldFact(ctx, f)
	}

	res := &Result{
		statements: statements,
		facts:      facts,
		tables:     r.tables,
		columns:    r.columns,
	}
	r.classify(res)
	return res
}

func (r *run) foldFact(ctx context.Context, f *core.StatementFact) {
	for _, t := range f.Reads {
		if t.Derived() {
			continue
		}
		r.tables.AddNode(tableID(t), t)
		if last, seen := r.lastRead[t]; !seen || f.Index > last {
			r.lastRead[t] = f.Index
		}
	}
	for _, t := range f.Writes {
		if t.Derived() {
			continue
		}
		r.tables.AddNode(tableID(t), t)
		if first, seen := r.firstWrite[t]; !seen || f.Index < first {
			r.firstWrite[t] = f.Index
		}
	}
	for _, read := range f.Reads {
		if read.Derived() {
			continue
		}
		for _, write := range f.Writes {
			if write.Derived() {
				continue
			}
			_ = r.tables.AddEdge(tableID(read), tableID(write), graph.EdgeLineage)
		}
	}

	for _, e := range f.Edges {
		e.Source = r.bind(ctx, f, e.Source)
		for _, expanded := range r.expand(ctx, e) {
			r.addColumnEdge(expanded)
		}
	}
}

// bind resolves an unbound column against the statement's read tables.
// It binds only when the catalog names exactly one owner; ambiguity and
// catalog gaps leave the column unbound.
func (r *run) bind(ctx context.Context, f *core.StatementFact, c core.Column) core.Column {
	if !c.Unbound() || c.Wildcard() || r.agg.Provider == nil {
		return c
	}
	var owner core.Table
	owners := 0
	for _, t := range f.Reads {
		if t.Derived() {
			continue
		}
		cols, ok := r.columnsOf(ctx, t)
		if !ok {
			continue
		}
		for _, name := range cols {
			if name == c.Name {
				owner = t
				owners++
				break
			}
		}
	}
	if owners == 1 {
		c.Table = owner
	} else if owners > 1 {
		r.agg.logger().Debug("column owned by multiple read tables, leaving unbound",
			"column", c.Name, "owners", owners)
	}
	return c
}

// expand replaces a wildcard-to-wildcard edge with per-column edges when
// the catalog knows the source table. Failed lookups keep the placeholder.
func (r *run) expand(ctx context.Context, e core.ColumnEdge) []core.ColumnEdge {
	if !e.Source.Wildcard() || !e.Target.Wildcard() {
		return []core.ColumnEdge{e}
	}
	if e.Source.Unbound() || e.Source.Table.Derived() || e.Target.Unbound() {
		return []core.ColumnEdge{e}
	}
	srcCols, ok := r.columnsOf(ctx, e.Source.Table)
	if !ok {
		return []core.ColumnEdge{e}
	}

	// The statement's declared column list trumps the catalog's layout.
	tgtCols := e.TargetLayout
	if len(tgtCols) == 0 {
		tgtCols, _ = r.columnsOf(ctx, e.Target.Table)
	}

	edges := make([]core.ColumnEdge, 0, len(srcCols))
	if len(tgtCols) > 0 {
		// Pair by ordinal position against the target layout.
		n := len(srcCols)
		if len(tgtCols) < n {
			n = len(tgtCols)
		}
		for i := 0; i < n; i++ {
			edges = append(edges, core.ColumnEdge{
				Source: core.Column{Table: e.Source.Table, Name: srcCols[i]},
				Target: core.Column{Table: e.Target.Table, Name: tgtCols[i]},
			})
		}
		return edges
	}
	// Target layout unknown; assume the source column names carry over.
	for _, name := range srcCols {
		edges = append(edges, core.ColumnEdge{
			Source: core.Column{Table: e.Source.Table, Name: name},
			Target: core.Column{Table: e.Target.Table, Name: name},
		})
	}
	return edges
}

func (r *run) addColumnEdge(e core.ColumnEdge) {
	if e.Source == e.Target {
		return
	}
	r.addColumnNode(e.Source)
	r.addColumnNode(e.Target)
	_ = r.columns.AddEdge(columnID(e.Source), columnID(e.Target), graph.EdgeLineage)
}

func (r *run) addColumnNode(c core.Column) {
	r.columns.AddNode(columnID(c), c)
	if c.Unbound() {
		return
	}
	r.columns.AddNode(tableID(c.Table), c.Table)
	_ = r.columns.AddEdge(tableID(c.Table), columnID(c), graph.EdgeHasColumn)
}

// columnsOf fetches a table's columns through the provider, caching hits
// and misses for the rest of the pass.
func (r *run) columnsOf(ctx context.Context, t core.Table) ([]string, bool) {
	key := t.String()
	if cols, ok := r.colCache[key]; ok {
		return cols, true
	}
	if _, missed := r.missCache[key]; missed {
		return nil, false
	}
	if r.agg.Provider == nil {
		r.missCache[key] = struct{}{}
		return nil, false
	}
	cols, err := r.agg.Provider.ColumnsOf(ctx, t)
	if err != nil {
		r.missCache[key] = struct{}{}
		if metadata.IsNotFound(err) {
			r.agg.logger().Debug("table not found in catalog", "table", key)
		} else {
			r.agg.logger().Warn("catalog lookup failed", "table", key, "error", err)
		}
		return nil, false
	}
	r.colCache[key] = cols
	return cols, true
}

// classify assigns each table a role from its write and read indices.
// A table written and then read by a later statement is intermediate.
// Everything else read is a source, everything else written is a target;
// a table that reads from itself in one statement is both.
func (r *run) classify(res *Result) {
	for t := range r.lastRead {
		if fw, written := r.firstWrite[t]; written && r.lastRead[t] > fw {
			res.intermediates = append(res.intermediates, t)
			continue
		}
		res.sources = append(res.sources, t)
	}
	for t := range r.firstWrite {
		if lr, read := r.lastRead[t]; read && lr > r.firstWrite[t] {
			continue
		}
		res.targets = append(res.targets, t)
	}
	sortTables(res.sources)
	sortTables(res.targets)
	sortTables(res.intermediates)
}

// Node IDs are namespaced so a table "a.b" and a column "b" of table "a"
// never collide.

func tableID(t core.Table) string {
	return "table:" + t.String()
}

func columnID(c core.Column) string {
	return "column:" + c.String()
}
