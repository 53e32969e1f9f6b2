// Package lineage folds per-statement facts into table and column graphs
// and answers lineage queries over them. Aggregation is where statement
// order matters: a table's role (source, target, intermediate) depends on
// when it is first written relative to when it is last read.
package lineage
