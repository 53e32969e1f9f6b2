package standard

import (
	"fmt"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// parser extracts a core.StatementFact from one statement. It is a
// recursive descent parser that resolves column provenance on the fly
// instead of materializing a full AST: SELECT items are collected as raw
// references, the FROM clause is parsed to build the scope, and the items
// are then resolved against it.
type parser struct {
	lexer *Lexer
	token Token // current token
	peek  Token // lookahead token

	dialect    core.DialectConfig
	statement  string
	fact       *core.StatementFact
	errors     []*core.ParseError
	subqueries int // counter for anonymous derived-table names
}

// outCol is one output column of a query scope.
type outCol struct {
	name    string        // output name ("" when not inferable, "*" for wildcards)
	sources []core.Column // resolved source columns
	star    bool          // unexpanded wildcard item
}

// queryResult is the output column list of a parsed query.
type queryResult struct {
	cols []outCol
}

// scopeSource is one table-like source visible in a FROM scope.
type scopeSource struct {
	alias   string       // qualifier used to reference the source
	table   core.Table   // physical table or derived pseudo-table
	derived *queryResult // known output columns for derived/CTE sources
}

// scope is the column namespace visible at a point in the query.
type scope struct {
	sources []scopeSource
	ctes    map[string]scopeSource
	parent  *scope
}

func newScope(parent *scope) *scope {
	return &scope{ctes: make(map[string]scopeSource), parent: parent}
}

// lookup finds a source by qualifier, walking outward through parents.
func (s *scope) lookup(alias string) (scopeSource, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		for _, src := range sc.sources {
			if src.alias == alias {
				return src, true
			}
		}
	}
	return scopeSource{}, false
}

// lookupCTE finds a CTE by name, walking outward through parents.
func (s *scope) lookupCTE(name string) (scopeSource, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if src, ok := sc.ctes[name]; ok {
			return src, true
		}
	}
	return scopeSource{}, false
}

// parseStatement parses one statement into a fact.
func parseStatement(statement, dialect string, index int) (*core.StatementFact, error) {
	d := core.MustDialect(dialect)
	p := &parser{
		lexer:     NewLexer(statement, d),
		dialect:   d,
		statement: statement,
		fact:      &core.StatementFact{Index: index},
	}
	p.nextToken()
	p.nextToken()

	p.parseTopLevel()
	p.match(TOKEN_SEMICOLON)
	if len(p.errors) == 0 && p.token.Type != TOKEN_EOF {
		p.addError(fmt.Sprintf("unexpected trailing input %q", p.token.Literal))
	}
	if len(p.errors) > 0 {
		err := p.errors[0]
		err.Dialect = dialect
		err.Statement = statement
		return nil, err
	}
	return p.fact, nil
}

// ---------- Token helpers ----------

func (p *parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *parser) check(t TokenType) bool {
	return p.token.Type == t
}

func (p *parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

func (p *parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.token.Type))
	return false
}

func (p *parser) addError(msg string) {
	p.errors = append(p.errors, &core.ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// fold case-folds an identifier token per the dialect rule. Quoted
// identifiers keep their exact case.
func (p *parser) fold(tok Token) string {
	if tok.Quoted {
		return tok.Literal
	}
	return p.dialect.Fold(tok.Literal)
}

// ---------- Statement dispatch ----------

func (p *parser) parseTopLevel() {
	switch p.token.Type {
	case TOKEN_SELECT, TOKEN_WITH:
		p.parseQuery(newScope(nil))
	case TOKEN_INSERT:
		p.parseInsert()
	case TOKEN_CREATE:
		p.parseCreate()
	case TOKEN_UPDATE:
		p.parseUpdate()
	case TOKEN_DELETE:
		p.parseDelete()
	case TOKEN_DROP, TOKEN_TRUNCATE:
		p.parseDrop()
	default:
		p.addError(fmt.Sprintf("unsupported statement starting with %q", p.token.Literal))
	}
}

// parseInsert handles INSERT INTO t and INSERT OVERWRITE TABLE t, with a
// trailing query or VALUES list.
func (p *parser) parseInsert() {
	p.expect(TOKEN_INSERT)
	if !p.match(TOKEN_INTO) && !p.match(TOKEN_OVERWRITE) {
		p.addError("expected INTO or OVERWRITE after INSERT")
		return
	}
	p.match(TOKEN_TABLE) // INSERT OVERWRITE TABLE, also MySQL INSERT INTO TABLE

	target, ok := p.parseTableName()
	if !ok {
		return
	}
	p.addWrite(target)

	declared := p.parseDeclaredColumns()

	switch p.token.Type {
	case TOKEN_VALUES:
		// Literal rows carry no column provenance.
		p.skipRemainder()
	case TOKEN_SELECT, TOKEN_WITH, TOKEN_LPAREN:
		paren := p.match(TOKEN_LPAREN)
		result := p.parseQuery(newScope(nil))
		if paren {
			p.expect(TOKEN_RPAREN)
		}
		p.emitWriteEdges(target, declared, result)
	default:
		p.addError(fmt.Sprintf("expected SELECT or VALUES, got %q", p.token.Literal))
	}
}

// parseCreate handles CREATE [OR REPLACE] TABLE|VIEW [IF NOT EXISTS],
// with an optional AS query.
func (p *parser) parseCreate() {
	p.expect(TOKEN_CREATE)
	if p.match(TOKEN_OR) {
		p.expect(TOKEN_REPLACE)
	}
	if !p.match(TOKEN_TABLE) && !p.match(TOKEN_VIEW) {
		p.addError("expected TABLE or VIEW after CREATE")
		return
	}
	if p.match(TOKEN_IF) {
		p.expect(TOKEN_NOT)
		p.expect(TOKEN_EXISTS)
	}

	target, ok := p.parseTableName()
	if !ok {
		return
	}
	p.addWrite(target)

	// Column definition list, e.g. CREATE TABLE t (a int, b text).
	if p.check(TOKEN_LPAREN) {
		p.skipBalanced()
	}

	if p.match(TOKEN_AS) {
		paren := p.match(TOKEN_LPAREN)
		result := p.parseQuery(newScope(nil))
		if paren {
			p.expect(TOKEN_RPAREN)
		}
		p.emitWriteEdges(target, nil, result)
	} else {
		p.skipRemainder()
	}
}

// parseUpdate handles UPDATE t SET c = expr [, ...] [FROM ...] [WHERE ...].
func (p *parser) parseUpdate() {
	p.expect(TOKEN_UPDATE)
	target, ok := p.parseTableName()
	if !ok {
		return
	}
	p.addWrite(target)

	sc := newScope(nil)
	alias := target.Name
	if p.check(TOKEN_IDENT) {
		alias = p.fold(p.token)
		p.nextToken()
	}
	sc.sources = append(sc.sources, scopeSource{alias: alias, table: target})

	p.expect(TOKEN_SET)

	// Collect assignments first; the optional FROM clause that scopes
	// their right-hand sides comes after.
	type assignment struct {
		column string
		expr   itemExpr
	}
	var assignments []assignment
	for {
		if !p.check(TOKEN_IDENT) {
			p.addError(fmt.Sprintf("expected column name in SET, got %q", p.token.Literal))
			return
		}
		name := p.fold(p.token)
		p.nextToken()
		// Qualified assignment target (t.c = ...); keep the last part.
		for p.match(TOKEN_DOT) {
			if !p.check(TOKEN_IDENT) {
				p.addError("expected identifier after '.'")
				return
			}
			name = p.fold(p.token)
			p.nextToken()
		}
		if !p.expect(TOKEN_EQ) {
			return
		}
		expr := p.parseItemExpr(sc)
		assignments = append(assignments, assignment{column: name, expr: expr})
		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	if p.match(TOKEN_FROM) {
		p.parseFromSources(sc)
	}
	p.skipClauses(sc)

	for _, a := range assignments {
		tgt := core.Column{Table: target, Name: a.column}
		for _, src := range p.resolveRefs(sc, a.expr) {
			p.addEdge(src, tgt)
		}
	}
}

// parseDelete handles DELETE FROM t. Row removal writes the table but
// traces no column provenance.
func (p *parser) parseDelete() {
	p.expect(TOKEN_DELETE)
	p.expect(TOKEN_FROM)
	target, ok := p.parseTableName()
	if !ok {
		return
	}
	p.addWrite(target)
	p.skipRemainder()
}

// parseDrop handles DROP TABLE and TRUNCATE TABLE. Neither contributes
// lineage; the statement parses to an empty fact.
func (p *parser) parseDrop() {
	p.nextToken() // DROP or TRUNCATE
	p.match(TOKEN_TABLE)
	p.match(TOKEN_VIEW)
	if p.match(TOKEN_IF) {
		p.expect(TOKEN_EXISTS)
	}
	if _, ok := p.parseTableName(); !ok {
		return
	}
	p.skipRemainder()
}

// ---------- Query parsing ----------

// parseQuery parses [WITH ...] select_body and returns its output columns.
func (p *parser) parseQuery(sc *scope) *queryResult {
	if p.match(TOKEN_WITH) {
		p.match(TOKEN_RECURSIVE)
		for {
			p.parseCTE(sc)
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
	}
	return p.parseSelectBody(sc)
}

// parseCTE parses name [(cols)] AS (query) and registers the CTE as a
// derived pseudo-table in the scope.
func (p *parser) parseCTE(sc *scope) {
	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("expected CTE name, got %q", p.token.Literal))
		return
	}
	name := p.fold(p.token)
	p.nextToken()

	declared := p.parseDeclaredColumns()

	p.expect(TOKEN_AS)
	if !p.expect(TOKEN_LPAREN) {
		return
	}
	inner := p.parseQuery(newScope(sc))
	p.expect(TOKEN_RPAREN)

	dt := core.NewDerivedTable(name, p.dialect)
	result := p.bindDerived(dt, declared, inner)
	sc.ctes[name] = scopeSource{alias: name, table: dt, derived: result}
}

// bindDerived emits the internal hop edges from a subquery's sources to
// its pseudo-table's columns and returns the pseudo-table's column list.
func (p *parser) bindDerived(dt core.Table, declared []string, inner *queryResult) *queryResult {
	result := &queryResult{}
	for i, oc := range inner.cols {
		name := oc.name
		if i < len(declared) {
			name = declared[i]
		}
		if oc.star {
			// Wildcard stays a single placeholder through the boundary.
			tgt := core.Column{Table: dt, Name: core.WildcardName}
			for _, src := range oc.sources {
				p.addEdge(src, tgt)
			}
			result.cols = append(result.cols, outCol{name: core.WildcardName, sources: []core.Column{tgt}, star: true})
			continue
		}
		if name == "" {
			result.cols = append(result.cols, outCol{})
			continue
		}
		tgt := core.Column{Table: dt, Name: name}
		for _, src := range oc.sources {
			p.addEdge(src, tgt)
		}
		result.cols = append(result.cols, outCol{name: name, sources: []core.Column{tgt}})
	}
	return result
}

// parseSelectBody parses select_core [(UNION|INTERSECT|EXCEPT) ...]*.
// Set operations merge the right side's sources into the left side's
// columns by position.
func (p *parser) parseSelectBody(sc *scope) *queryResult {
	result := p.parseSelectCore(newScope(sc))
	for p.check(TOKEN_UNION) || p.check(TOKEN_INTERSECT) || p.check(TOKEN_EXCEPT) {
		p.nextToken()
		p.match(TOKEN_ALL)
		p.match(TOKEN_DISTINCT)
		right := p.parseSelectCore(newScope(sc))
		for i := range result.cols {
			if i < len(right.cols) {
				result.cols[i].sources = mergeColumns(result.cols[i].sources, right.cols[i].sources)
			}
		}
	}
	return result
}

// parseSelectCore parses one SELECT ... FROM ... block. Items are
// collected unresolved, the FROM clause builds the scope, then the items
// are resolved against it.
func (p *parser) parseSelectCore(sc *scope) *queryResult {
	if !p.expect(TOKEN_SELECT) {
		return &queryResult{}
	}
	p.match(TOKEN_DISTINCT)
	p.match(TOKEN_ALL)

	var items []itemExpr
	for {
		items = append(items, p.parseItemExpr(sc))
		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	if p.match(TOKEN_FROM) {
		p.parseFromSources(sc)
	}
	p.skipClauses(sc)

	result := &queryResult{}
	for i, item := range items {
		result.cols = append(result.cols, p.resolveItem(sc, item, i)...)
	}
	return result
}

// mergeColumns merges two source lists, removing duplicates.
func mergeColumns(a, b []core.Column) []core.Column {
	seen := make(map[core.Column]struct{}, len(a))
	result := make([]core.Column, 0, len(a)+len(b))
	for _, c := range a {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			result = append(result, c)
		}
	}
	for _, c := range b {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			result = append(result, c)
		}
	}
	return result
}

// ---------- FROM clause ----------

// parseFromSources parses comma- and JOIN-separated table references into
// the scope.
func (p *parser) parseFromSources(sc *scope) {
	p.parseTableRef(sc)
	for {
		switch {
		case p.match(TOKEN_COMMA):
			p.parseTableRef(sc)
		case p.isJoinStart():
			for p.check(TOKEN_INNER) || p.check(TOKEN_LEFT) || p.check(TOKEN_RIGHT) ||
				p.check(TOKEN_FULL) || p.check(TOKEN_OUTER) || p.check(TOKEN_CROSS) {
				p.nextToken()
			}
			if !p.expect(TOKEN_JOIN) {
				return
			}
			p.match(TOKEN_LATERAL)
			p.parseTableRef(sc)
			if p.match(TOKEN_ON) {
				p.skipExpr(sc)
			} else if p.match(TOKEN_USING) {
				p.skipBalanced()
			}
		default:
			return
		}
	}
}

func (p *parser) isJoinStart() bool {
	switch p.token.Type {
	case TOKEN_JOIN, TOKEN_INNER, TOKEN_LEFT, TOKEN_RIGHT, TOKEN_FULL, TOKEN_CROSS:
		return true
	}
	return false
}

// parseTableRef parses one source: a table name, a CTE reference, or a
// derived table, with an optional alias.
func (p *parser) parseTableRef(sc *scope) {
	p.match(TOKEN_LATERAL)

	if p.match(TOKEN_LPAREN) {
		inner := p.parseQuery(newScope(sc))
		p.expect(TOKEN_RPAREN)
		p.match(TOKEN_AS)
		name := ""
		if p.check(TOKEN_IDENT) {
			name = p.fold(p.token)
			p.nextToken()
		}
		if name == "" {
			p.subqueries++
			name = fmt.Sprintf("subquery_%d", p.subqueries)
		}
		dt := core.NewDerivedTable(name, p.dialect)
		result := p.bindDerived(dt, nil, inner)
		sc.sources = append(sc.sources, scopeSource{alias: name, table: dt, derived: result})
		return
	}

	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("expected table reference, got %q", p.token.Literal))
		return
	}

	first := p.fold(p.token)
	p.nextToken()

	// CTE reference: not an external read.
	if cte, ok := sc.lookupCTE(first); ok && !p.check(TOKEN_DOT) {
		alias := p.parseAlias(cte.alias)
		sc.sources = append(sc.sources, scopeSource{alias: alias, table: cte.table, derived: cte.derived})
		return
	}

	parts := []string{first}
	for p.match(TOKEN_DOT) {
		if !p.check(TOKEN_IDENT) {
			p.addError("expected identifier after '.'")
			return
		}
		parts = append(parts, p.fold(p.token))
		p.nextToken()
	}
	table := core.TableFromParts(parts...)
	p.addRead(table)
	alias := p.parseAlias(table.Name)
	sc.sources = append(sc.sources, scopeSource{alias: alias, table: table})
}

// parseAlias consumes an optional [AS] alias and returns it, or def.
func (p *parser) parseAlias(def string) string {
	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) {
			alias := p.fold(p.token)
			p.nextToken()
			return alias
		}
		p.addError("expected alias after AS")
		return def
	}
	if p.check(TOKEN_IDENT) {
		alias := p.fold(p.token)
		p.nextToken()
		return alias
	}
	return def
}

// parseTableName parses a dotted table identifier.
func (p *parser) parseTableName() (core.Table, bool) {
	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("expected table name, got %q", p.token.Literal))
		return core.Table{}, false
	}
	parts := []string{p.fold(p.token)}
	p.nextToken()
	for p.match(TOKEN_DOT) {
		if !p.check(TOKEN_IDENT) {
			p.addError("expected identifier after '.'")
			return core.Table{}, false
		}
		parts = append(parts, p.fold(p.token))
		p.nextToken()
	}
	return core.TableFromParts(parts...), true
}

// parseDeclaredColumns parses an optional (col, col, ...) list.
func (p *parser) parseDeclaredColumns() []string {
	if !p.check(TOKEN_LPAREN) || p.peek.Type != TOKEN_IDENT {
		return nil
	}
	// Only a plain identifier list qualifies; "(SELECT" is a query.
	p.nextToken()
	var cols []string
	for {
		if !p.check(TOKEN_IDENT) {
			p.addError(fmt.Sprintf("expected column name, got %q", p.token.Literal))
			return cols
		}
		cols = append(cols, p.fold(p.token))
		p.nextToken()
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	p.expect(TOKEN_RPAREN)
	return cols
}

// ---------- Fact recording ----------

func (p *parser) addRead(t core.Table) {
	if !p.fact.ReadsTable(t) {
		p.fact.Reads = append(p.fact.Reads, t)
	}
}

func (p *parser) addWrite(t core.Table) {
	if !p.fact.WritesTable(t) {
		p.fact.Writes = append(p.fact.Writes, t)
	}
}

func (p *parser) addEdge(src, tgt core.Column) {
	p.fact.Edges = append(p.fact.Edges, core.ColumnEdge{Source: src, Target: tgt})
}

// emitWriteEdges connects a query's output columns to the written table.
// declared overrides output names positionally when present.
func (p *parser) emitWriteEdges(target core.Table, declared []string, result *queryResult) {
	for i, oc := range result.cols {
		if oc.star {
			tgt := core.Column{Table: target, Name: core.WildcardName}
			// A wildcard fills the declared columns remaining at its
			// position; record them so expansion pairs against the
			// declaration instead of the catalog's target layout.
			var layout []string
			if i < len(declared) {
				layout = declared[i:]
			}
			for _, src := range oc.sources {
				p.fact.Edges = append(p.fact.Edges, core.ColumnEdge{
					Source:       src,
					Target:       tgt,
					TargetLayout: layout,
				})
			}
			continue
		}
		name := oc.name
		if i < len(declared) {
			name = declared[i]
		}
		if name == "" {
			// Unnamed expression with no declared target column; there is
			// no identity to attach provenance to.
			continue
		}
		tgt := core.Column{Table: target, Name: name}
		for _, src := range oc.sources {
			p.addEdge(src, tgt)
		}
	}
}
