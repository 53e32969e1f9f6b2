package core

import "strings"

// TableKind distinguishes physical base tables from derived pseudo-tables.
type TableKind int

const (
	// KindPhysical is a real catalog table (or view).
	KindPhysical TableKind = iota
	// KindDerived is a subquery or CTE materialization scope. Columns owned
	// by a derived table are "subquery-derived" for lineage purposes.
	KindDerived
)

// WildcardName is the column name used for unexpanded * placeholders.
const WildcardName = "*"

// Table identifies a table by optional catalog, optional schema, and name.
// The zero value is not a valid table; use NewTable.
type Table struct {
	Catalog string
	Schema  string
	Name    string
	Kind    TableKind
}

// NewTable builds a physical table from a dotted identifier
// (table, schema.table, or catalog.schema.table), case-folding each part
// per the dialect rule.
func NewTable(qualified string, d DialectConfig) Table {
	parts := strings.Split(qualified, ".")
	for i, part := range parts {
		parts[i] = d.Fold(part)
	}
	return TableFromParts(parts...)
}

// TableFromParts builds a physical table from identifier parts that are
// already case-folded. Quoted identifiers keep their exact case, so the
// parser folds token by token and assembles tables here.
func TableFromParts(parts ...string) Table {
	t := Table{Kind: KindPhysical}
	switch len(parts) {
	case 0:
	case 1:
		t.Name = parts[0]
	case 2:
		t.Schema = parts[0]
		t.Name = parts[1]
	default:
		t.Catalog = parts[0]
		t.Schema = parts[1]
		t.Name = strings.Join(parts[2:], ".")
	}
	return t
}

// NewDerivedTable builds a pseudo-table for a subquery or CTE scope.
func NewDerivedTable(name string, d DialectConfig) Table {
	return Table{Name: d.Fold(name), Kind: KindDerived}
}

// IsZero reports whether the table is unset.
func (t Table) IsZero() bool {
	return t.Name == ""
}

// Derived reports whether the table is a subquery/CTE pseudo-table.
func (t Table) Derived() bool {
	return t.Kind == KindDerived
}

// String returns the canonical identifier: dotted non-empty parts.
// Canonical strings are stable: parsing and re-rendering an identifier
// yields the same string.
func (t Table) String() string {
	parts := make([]string, 0, 3)
	if t.Catalog != "" {
		parts = append(parts, t.Catalog)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, ".")
}

// Column identifies a column by its owning table and name. An unbound
// column (zero Table) is a placeholder whose owner could not be resolved;
// it breaks lineage chains rather than guessing.
type Column struct {
	Table Table
	Name  string
}

// NewColumn builds a column owned by t.
func NewColumn(t Table, name string, d DialectConfig) Column {
	return Column{Table: t, Name: d.Fold(name)}
}

// UnboundColumn builds a column with no resolvable owner.
func UnboundColumn(name string, d DialectConfig) Column {
	return Column{Name: d.Fold(name)}
}

// Unbound reports whether the column has no owning table.
func (c Column) Unbound() bool {
	return c.Table.IsZero()
}

// Wildcard reports whether the column is an unexpanded * placeholder.
func (c Column) Wildcard() bool {
	return c.Name == WildcardName
}

// SubqueryDerived reports whether the column's immediate origin is a
// derived table rather than a physical base table.
func (c Column) SubqueryDerived() bool {
	return c.Table.Derived()
}

// String returns the canonical identifier: table.column, or the bare
// column name when unbound.
func (c Column) String() string {
	if c.Unbound() {
		return c.Name
	}
	return c.Table.String() + "." + c.Name
}
