package lineage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/graph"
)

// Result is the aggregated lineage of one run: the table and column
// graphs plus the role classification of every table touched.
type Result struct {
	statements []string
	facts      []*core.StatementFact

	tables  *graph.Graph
	columns *graph.Graph

	sources       []core.Table
	targets       []core.Table
	intermediates []core.Table
}

// SourceTables returns the tables read but never refreshed afterwards,
// sorted by canonical name.
func (r *Result) SourceTables() []core.Table { return r.sources }

// TargetTables returns the tables written and not read by any later
// statement, sorted by canonical name.
func (r *Result) TargetTables() []core.Table { return r.targets }

// IntermediateTables returns the tables written and then read by a later
// statement, sorted by canonical name.
func (r *Result) IntermediateTables() []core.Table { return r.intermediates }

// Statements returns the raw SQL of each analyzed statement in order.
func (r *Result) Statements() []string { return r.statements }

// TableGraph exposes the table-level graph for export.
func (r *Result) TableGraph() *graph.Graph { return r.tables }

// ColumnGraph exposes the column-level graph for export.
func (r *Result) ColumnGraph() *graph.Graph { return r.columns }

// ColumnLineage returns every column derivation chain ending at an
// ultimate target column, each chain ordered origin first. An ultimate
// target is any column with incoming lineage and no outgoing lineage,
// regardless of its table's classification: terminal columns of
// intermediate tables count too. Chains that touch an unexpanded
// * placeholder or an unbound column are dropped: without catalog
// metadata those prove table flow, not column flow. With excludeSubquery
// set, columns of subquery and CTE pseudo-tables never terminate a
// chain, chains originating at one with no base-table ancestor are
// dropped whole, and pseudo-table hops in the middle are elided so
// chains connect base tables directly.
func (r *Result) ColumnLineage(excludeSubquery bool) [][]core.Column {
	var chains [][]core.Column
	seen := make(map[string]struct{})
	for _, n := range r.columns.Nodes() {
		col, isColumn := n.Data.(core.Column)
		if !isColumn || col.Unbound() {
			continue
		}
		if excludeSubquery && col.SubqueryDerived() {
			continue
		}
		// Ultimate targets feed nothing further downstream.
		if r.columns.HasChildren(n.ID, graph.EdgeLineage) {
			continue
		}
		if !r.columns.HasParents(n.ID, graph.EdgeLineage) {
			continue
		}
		for _, ids := range r.columns.PathsToRoots(n.ID, graph.EdgeLineage) {
			chain := r.resolveChain(ids)
			if chain == nil || chainBroken(chain) {
				continue
			}
			if excludeSubquery {
				if chain[0].SubqueryDerived() {
					// The origin itself is derived and rootless; a truncated
					// remainder would misstate the provenance.
					continue
				}
				chain = dropDerived(chain)
			}
			if len(chain) < 2 {
				continue
			}
			key := chainKey(chain)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			chains = append(chains, chain)
		}
	}

	sort.Slice(chains, func(i, j int) bool {
		ti := chains[i][len(chains[i])-1].String()
		tj := chains[j][len(chains[j])-1].String()
		if ti != tj {
			return ti < tj
		}
		si := chains[i][0].String()
		sj := chains[j][0].String()
		if si != sj {
			return si < sj
		}
		return chainKey(chains[i]) < chainKey(chains[j])
	})
	return chains
}

// TableLineage returns every table derivation chain ending at a target
// table, each chain ordered origin first.
func (r *Result) TableLineage() [][]core.Table {
	var chains [][]core.Table
	seen := make(map[string]struct{})
	for _, t := range r.targets {
		id := tableID(t)
		if !r.tables.HasParents(id, graph.EdgeLineage) {
			continue
		}
		for _, ids := range r.tables.PathsToRoots(id, graph.EdgeLineage) {
			chain := make([]core.Table, 0, len(ids))
			for _, nodeID := range ids {
				n, ok := r.tables.Node(nodeID)
				if !ok {
					continue
				}
				tbl, isTable := n.Data.(core.Table)
				if !isTable {
					continue
				}
				chain = append(chain, tbl)
			}
			if len(chain) < 2 {
				continue
			}
			parts := make([]string, len(chain))
			for i, tbl := range chain {
				parts[i] = tbl.String()
			}
			key := strings.Join(parts, "\x00")
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			chains = append(chains, chain)
		}
	}
	sort.Slice(chains, func(i, j int) bool {
		ti := chains[i][len(chains[i])-1].String()
		tj := chains[j][len(chains[j])-1].String()
		if ti != tj {
			return ti < tj
		}
		return chains[i][0].String() < chains[j][0].String()
	})
	return chains
}

func (r *Result) resolveChain(ids []string) []core.Column {
	chain := make([]core.Column, 0, len(ids))
	for _, id := range ids {
		n, ok := r.columns.Node(id)
		if !ok {
			return nil
		}
		col, isColumn := n.Data.(core.Column)
		if !isColumn {
			return nil
		}
		chain = append(chain, col)
	}
	return chain
}

// chainBroken reports whether a chain passes through an unexpanded
// wildcard placeholder or an unbound column, either of which means the
// column flow is asserted rather than proven.
func chainBroken(chain []core.Column) bool {
	for _, c := range chain {
		if c.Wildcard() || c.Unbound() {
			return true
		}
	}
	return false
}

// dropDerived elides subquery and CTE pseudo-table hops from a chain.
func dropDerived(chain []core.Column) []core.Column {
	kept := chain[:0:0]
	for _, c := range chain {
		if c.SubqueryDerived() {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func chainKey(chain []core.Column) string {
	parts := make([]string, len(chain))
	for i, c := range chain {
		parts[i] = c.String()
	}
	return strings.Join(parts, "\x00")
}

// Summary renders the run overview. With verbose set, each statement's
// read and write sets are listed before the totals.
func (r *Result) Summary(verbose bool) string {
	var b strings.Builder
	if verbose {
		for i, f := range r.facts {
			stmt := ""
			if i < len(r.statements) {
				stmt = strings.TrimSpace(r.statements[i])
			}
			fmt.Fprintf(&b, "Statement #%d: %s\n", i+1, stmt)
			fmt.Fprintf(&b, "    table read: %s\n", tableList(f.Reads))
			fmt.Fprintf(&b, "    table write: %s\n", tableList(f.Writes))
		}
		b.WriteString("==========\nSummary:\n")
	}
	fmt.Fprintf(&b, "Statements(#): %d\n", len(r.statements))
	b.WriteString("Source Tables:\n")
	writeTableLines(&b, r.sources)
	b.WriteString("Target Tables:\n")
	writeTableLines(&b, r.targets)
	if len(r.intermediates) > 0 {
		b.WriteString("Intermediate Tables:\n")
		writeTableLines(&b, r.intermediates)
	}
	return b.String()
}

func tableList(tables []core.Table) string {
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		if t.Derived() {
			continue
		}
		parts = append(parts, t.String())
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, ", ") + "]"
}

func writeTableLines(b *strings.Builder, tables []core.Table) {
	for _, t := range tables {
		b.WriteString("    ")
		b.WriteString(t.String())
		b.WriteString("\n")
	}
}

func sortTables(tables []core.Table) {
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].String() < tables[j].String()
	})
}
