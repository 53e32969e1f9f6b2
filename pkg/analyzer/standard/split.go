package standard

import "strings"

// SplitStatements divides raw SQL text into individual statement strings
// on semicolons, ignoring semicolons inside string literals, quoted
// identifiers, and comments. Empty statements are dropped; surrounding
// whitespace and trailing semicolons are trimmed.
func SplitStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		current.Reset()
		if stmt != "" && !commentOnly(stmt) {
			statements = append(statements, stmt)
		}
	}

	i := 0
	for i < len(sql) {
		ch := sql[i]
		switch {
		case ch == ';':
			flush()
			i++
		case ch == '\'' || ch == '"' || ch == '`':
			end := scanQuoted(sql, i, ch)
			current.WriteString(sql[i:end])
			i = end
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := scanLineComment(sql, i)
			current.WriteString(sql[i:end])
			i = end
		case ch == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := scanBlockComment(sql, i)
			current.WriteString(sql[i:end])
			i = end
		default:
			current.WriteByte(ch)
			i++
		}
	}
	flush()

	return statements
}

// commentOnly reports whether a statement consists solely of comments
// and whitespace.
func commentOnly(stmt string) bool {
	i := 0
	for i < len(stmt) {
		switch {
		case stmt[i] == ' ' || stmt[i] == '\t' || stmt[i] == '\n' || stmt[i] == '\r':
			i++
		case stmt[i] == '-' && i+1 < len(stmt) && stmt[i+1] == '-':
			i = scanLineComment(stmt, i)
		case stmt[i] == '/' && i+1 < len(stmt) && stmt[i+1] == '*':
			i = scanBlockComment(stmt, i)
		default:
			return false
		}
	}
	return true
}

// scanQuoted returns the index just past a quoted region starting at
// start, treating a doubled delimiter as an escape.
func scanQuoted(sql string, start int, q byte) int {
	i := start + 1
	for i < len(sql) {
		if sql[i] == q {
			if i+1 < len(sql) && sql[i+1] == q {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

// scanLineComment returns the index just past a -- comment.
func scanLineComment(sql string, start int) int {
	i := start
	for i < len(sql) && sql[i] != '\n' {
		i++
	}
	return i
}

// scanBlockComment returns the index just past a /* */ comment.
func scanBlockComment(sql string, start int) int {
	i := start + 2
	for i+1 < len(sql) {
		if sql[i] == '*' && sql[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return len(sql)
}
