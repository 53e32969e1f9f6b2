// Package core defines the shared entity model for the lineage engine:
// tables, columns, canonical identifiers, per-statement lineage facts,
// dialect identifier rules, and the error taxonomy.
//
// Entities are value types and immutable once constructed. Their canonical
// string form (schema.table, table.column) is the basis for equality,
// hashing, sorting, and display.
package core
