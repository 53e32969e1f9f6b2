package core

// ColumnEdge is one column-to-column derivation reported by a statement.
// A Source owned by a derived table is a subquery-derived origin; a Source
// or Target named "*" is an unexpanded wildcard placeholder.
type ColumnEdge struct {
	Source Column
	Target Column

	// TargetLayout carries the declared target columns a wildcard target
	// stands for, in declaration order. When set, wildcard expansion pairs
	// source columns against it instead of the catalog's table layout.
	TargetLayout []string
}

// StatementFact is the parse result for a single statement: which tables
// it reads and writes, and how columns flow between them. Facts are
// produced per statement and folded in sequence order by the aggregator.
type StatementFact struct {
	// Index is the statement's position in the run (0-based).
	Index int

	// Reads are the tables consumed, in clause order.
	Reads []Table

	// Writes are the tables produced, in clause order.
	Writes []Table

	// Edges are the column derivations, including wildcard placeholders
	// and hops through derived-table scopes.
	Edges []ColumnEdge
}

// ReadsTable reports whether t appears in the read set.
func (f *StatementFact) ReadsTable(t Table) bool {
	for _, r := range f.Reads {
		if r == t {
			return true
		}
	}
	return false
}

// WritesTable reports whether t appears in the write set.
func (f *StatementFact) WritesTable(t Table) bool {
	for _, w := range f.Writes {
		if w == t {
			return true
		}
	}
	return false
}
