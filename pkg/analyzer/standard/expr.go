package standard

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// colRef is an unresolved column reference collected from an expression.
type colRef struct {
	qualifier string // dotted qualifier ("" when unqualified)
	name      string // column name, or "*" for qualified wildcards
}

// itemExpr is one SELECT-list item (or SET right-hand side) before scope
// resolution: the column references it mentions, plus naming hints.
type itemExpr struct {
	refs     []colRef
	sub      []core.Column // sources contributed by scalar subqueries
	star     bool          // bare * item
	alias    string
	function string // outermost function name, for name inference
}

// outputName infers the output column name the way the dialect would.
func (it itemExpr) outputName() string {
	if it.alias != "" {
		return it.alias
	}
	if it.function != "" {
		return it.function
	}
	if len(it.refs) == 1 && it.refs[0].name != core.WildcardName && len(it.sub) == 0 {
		return it.refs[0].name
	}
	return ""
}

// isItemEnd reports whether the current token terminates a select item
// at paren depth zero.
func (p *parser) isItemEnd() bool {
	switch p.token.Type {
	case TOKEN_COMMA, TOKEN_FROM, TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING,
		TOKEN_ORDER, TOKEN_QUALIFY, TOKEN_LIMIT, TOKEN_OFFSET,
		TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT,
		TOKEN_RPAREN, TOKEN_SEMICOLON, TOKEN_EOF:
		return true
	}
	return false
}

// parseItemExpr consumes one expression, collecting column references and
// naming hints without building an AST. Scalar subqueries are parsed
// recursively so their reads and hop edges are recorded.
func (p *parser) parseItemExpr(sc *scope) itemExpr {
	var it itemExpr
	depth := 0
	prevOperand := false

	for {
		if depth == 0 && p.isItemEnd() {
			return it
		}
		switch p.token.Type {
		case TOKEN_EOF:
			return it

		case TOKEN_LPAREN:
			if p.checkPeek(TOKEN_SELECT) || p.checkPeek(TOKEN_WITH) {
				p.nextToken()
				inner := p.parseQuery(newScope(sc))
				p.expect(TOKEN_RPAREN)
				// A scalar subquery contributes its first output column.
				if len(inner.cols) > 0 {
					it.sub = append(it.sub, inner.cols[0].sources...)
				}
				prevOperand = true
				continue
			}
			depth++
			prevOperand = false
			p.nextToken()

		case TOKEN_RPAREN:
			depth--
			prevOperand = true
			p.nextToken()

		case TOKEN_STAR:
			if !prevOperand && depth == 0 {
				it.star = true
			}
			// Otherwise multiplication, or * inside count(*).
			prevOperand = false
			p.nextToken()

		case TOKEN_AS:
			p.nextToken()
			if depth == 0 {
				if p.check(TOKEN_IDENT) {
					it.alias = p.fold(p.token)
					p.nextToken()
				}
			} else if p.check(TOKEN_IDENT) {
				// CAST(expr AS type): swallow the type name.
				p.readChain()
				prevOperand = true
			}

		case TOKEN_IDENT:
			if p.checkPeek(TOKEN_LPAREN) {
				if it.function == "" {
					it.function = strings.ToLower(p.token.Literal)
				}
				p.nextToken() // parens handled on the next iteration
				prevOperand = false
				continue
			}
			if prevOperand {
				parts, _ := p.readChain()
				if depth == 0 {
					// Bare alias: SELECT a id FROM t.
					it.alias = parts[len(parts)-1]
				}
				// Inside parens an adjacent identifier is a type name or
				// modifier keyword, not a column.
				continue
			}
			parts, star := p.readChain()
			if p.check(TOKEN_LPAREN) && !star {
				// Qualified function call: schema.func(...).
				if it.function == "" {
					it.function = strings.ToLower(parts[len(parts)-1])
				}
				continue
			}
			switch {
			case star:
				it.refs = append(it.refs, colRef{qualifier: strings.Join(parts, "."), name: core.WildcardName})
			case len(parts) == 1:
				it.refs = append(it.refs, colRef{name: parts[0]})
			default:
				it.refs = append(it.refs, colRef{
					qualifier: strings.Join(parts[:len(parts)-1], "."),
					name:      parts[len(parts)-1],
				})
			}
			prevOperand = true

		case TOKEN_STRING, TOKEN_NUMBER, TOKEN_TRUE, TOKEN_FALSE, TOKEN_NULL, TOKEN_END:
			prevOperand = true
			p.nextToken()

		default:
			prevOperand = false
			p.nextToken()
		}
	}
}

// readChain reads a dotted identifier chain, optionally ending in .*.
// The current token must be an identifier.
func (p *parser) readChain() (parts []string, star bool) {
	parts = append(parts, p.fold(p.token))
	p.nextToken()
	for p.check(TOKEN_DOT) {
		if p.checkPeek(TOKEN_STAR) {
			p.nextToken()
			p.nextToken()
			return parts, true
		}
		if p.peek.Type != TOKEN_IDENT {
			return parts, false
		}
		p.nextToken()
		parts = append(parts, p.fold(p.token))
		p.nextToken()
	}
	return parts, false
}

// ---------- Resolution ----------

// resolveItem resolves one select item against the scope into output
// columns. Wildcards over physical tables stay single placeholders;
// wildcards over derived sources expand to the known inner columns.
func (p *parser) resolveItem(sc *scope, it itemExpr, _ int) []outCol {
	if it.star && len(it.refs) == 0 {
		var cols []outCol
		for _, src := range sc.sources {
			cols = append(cols, p.starOf(src)...)
		}
		if len(cols) == 0 {
			cols = []outCol{{name: core.WildcardName, star: true}}
		}
		return cols
	}

	// Qualified wildcard: t.*
	if len(it.refs) == 1 && it.refs[0].name == core.WildcardName &&
		it.function == "" && len(it.sub) == 0 {
		ref := it.refs[0]
		if src, ok := sc.lookup(ref.qualifier); ok {
			return p.starOf(src)
		}
		t := core.TableFromParts(strings.Split(ref.qualifier, ".")...)
		return []outCol{{
			name:    core.WildcardName,
			sources: []core.Column{{Table: t, Name: core.WildcardName}},
			star:    true,
		}}
	}

	return []outCol{{name: it.outputName(), sources: p.resolveRefs(sc, it)}}
}

// starOf returns the output columns a wildcard over one source produces.
func (p *parser) starOf(src scopeSource) []outCol {
	if src.derived != nil {
		return append([]outCol(nil), src.derived.cols...)
	}
	return []outCol{{
		name:    core.WildcardName,
		sources: []core.Column{{Table: src.table, Name: core.WildcardName}},
		star:    true,
	}}
}

// resolveRefs resolves every reference of an item to source columns.
func (p *parser) resolveRefs(sc *scope, it itemExpr) []core.Column {
	var sources []core.Column
	for _, ref := range it.refs {
		if col, ok := p.resolveRef(sc, ref); ok {
			sources = append(sources, col)
		}
	}
	sources = append(sources, it.sub...)
	return mergeColumns(sources, nil)
}

// resolveRef resolves one reference through the scope chain.
func (p *parser) resolveRef(sc *scope, ref colRef) (core.Column, bool) {
	if ref.name == core.WildcardName {
		// A qualified wildcard inside a larger expression is not traced.
		return core.Column{}, false
	}
	if ref.qualifier != "" {
		if src, ok := sc.lookup(ref.qualifier); ok {
			return core.Column{Table: src.table, Name: ref.name}, true
		}
		// Unknown qualifier: take it as a table identifier verbatim. The
		// parts were folded at collection, so skip the dialect fold here.
		return core.Column{Table: core.TableFromParts(strings.Split(ref.qualifier, ".")...), Name: ref.name}, true
	}
	if len(sc.sources) == 1 {
		return core.Column{Table: sc.sources[0].table, Name: ref.name}, true
	}
	// Ambiguous without schema knowledge; the aggregator may bind it
	// later through the metadata provider.
	return core.Column{Name: ref.name}, true
}

// ---------- Skipping ----------

// skipClauses consumes WHERE/GROUP BY/HAVING/ORDER BY/LIMIT and friends.
// Column references there carry no lineage, but embedded subqueries still
// contribute table reads, so nested SELECTs are parsed rather than skipped.
func (p *parser) skipClauses(sc *scope) {
	depth := 0
	for {
		switch {
		case p.check(TOKEN_EOF) || p.check(TOKEN_SEMICOLON):
			return
		case depth == 0 && (p.check(TOKEN_UNION) || p.check(TOKEN_INTERSECT) ||
			p.check(TOKEN_EXCEPT) || p.check(TOKEN_RPAREN)):
			return
		case p.check(TOKEN_LPAREN) && (p.checkPeek(TOKEN_SELECT) || p.checkPeek(TOKEN_WITH)):
			p.nextToken()
			p.parseQuery(newScope(sc))
			p.expect(TOKEN_RPAREN)
		case p.check(TOKEN_LPAREN):
			depth++
			p.nextToken()
		case p.check(TOKEN_RPAREN):
			depth--
			p.nextToken()
		default:
			p.nextToken()
		}
	}
}

// skipExpr consumes a JOIN ON condition up to the next clause boundary.
func (p *parser) skipExpr(sc *scope) {
	depth := 0
	for {
		if p.check(TOKEN_EOF) || p.check(TOKEN_SEMICOLON) {
			return
		}
		if depth == 0 {
			switch p.token.Type {
			case TOKEN_COMMA, TOKEN_JOIN, TOKEN_INNER, TOKEN_LEFT, TOKEN_RIGHT,
				TOKEN_FULL, TOKEN_CROSS, TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING,
				TOKEN_ORDER, TOKEN_QUALIFY, TOKEN_LIMIT, TOKEN_OFFSET,
				TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT, TOKEN_RPAREN:
				return
			}
		}
		switch {
		case p.check(TOKEN_LPAREN) && (p.checkPeek(TOKEN_SELECT) || p.checkPeek(TOKEN_WITH)):
			p.nextToken()
			p.parseQuery(newScope(sc))
			p.expect(TOKEN_RPAREN)
		case p.check(TOKEN_LPAREN):
			depth++
			p.nextToken()
		case p.check(TOKEN_RPAREN):
			depth--
			p.nextToken()
		default:
			p.nextToken()
		}
	}
}

// skipBalanced consumes a balanced parenthesized region starting at the
// current '(' token.
func (p *parser) skipBalanced() {
	if !p.check(TOKEN_LPAREN) {
		return
	}
	depth := 0
	for {
		switch p.token.Type {
		case TOKEN_EOF:
			return
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// skipRemainder consumes the rest of the statement, still collecting
// table reads from any embedded subqueries.
func (p *parser) skipRemainder() {
	for !p.check(TOKEN_EOF) && !p.check(TOKEN_SEMICOLON) {
		if p.check(TOKEN_LPAREN) && (p.checkPeek(TOKEN_SELECT) || p.checkPeek(TOKEN_WITH)) {
			p.nextToken()
			p.parseQuery(newScope(nil))
			p.expect(TOKEN_RPAREN)
			continue
		}
		p.nextToken()
	}
}
