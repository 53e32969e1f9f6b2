package core

import "fmt"

// Position is a location in a SQL statement.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// ParseError reports a statement that cannot be parsed under the requested
// dialect. It is fatal to a run: no partial lineage is returned.
type ParseError struct {
	Statement string
	Dialect   string
	Pos       Position
	Message   string
}

func (e *ParseError) Error() string {
	stmt := e.Statement
	if len(stmt) > 50 {
		stmt = stmt[:50] + "..."
	}
	return fmt.Sprintf("parse error at line %d, column %d (dialect %s): %s in %q",
		e.Pos.Line, e.Pos.Column, e.Dialect, e.Message, stmt)
}
