package standard

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

func parse(t *testing.T, sql string) *core.StatementFact {
	t.Helper()
	fact, err := parseStatement(sql, "ansi", 0)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", sql, err)
	}
	return fact
}

func tbl(name string) core.Table {
	return core.NewTable(name, core.MustDialect("ansi"))
}

func derived(name string) core.Table {
	return core.NewDerivedTable(name, core.MustDialect("ansi"))
}

func col(table core.Table, name string) core.Column {
	return core.Column{Table: table, Name: name}
}

func hasEdge(f *core.StatementFact, src, tgt core.Column) bool {
	for _, e := range f.Edges {
		if e.Source == src && e.Target == tgt {
			return true
		}
	}
	return false
}

func requireEdge(t *testing.T, f *core.StatementFact, src, tgt core.Column) {
	t.Helper()
	if !hasEdge(f, src, tgt) {
		t.Fatalf("missing edge %s -> %s in %v", src, tgt, f.Edges)
	}
}

func requireTables(t *testing.T, got []core.Table, want ...core.Table) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected tables %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected tables %v, got %v", want, got)
		}
	}
}

func TestParse_SelectReads(t *testing.T) {
	fact := parse(t, "SELECT id, name FROM public.users WHERE active = true")

	requireTables(t, fact.Reads, tbl("public.users"))
	if len(fact.Writes) != 0 {
		t.Fatalf("expected no writes, got %v", fact.Writes)
	}
	if len(fact.Edges) != 0 {
		t.Fatalf("expected no edges for a bare SELECT, got %v", fact.Edges)
	}
}

func TestParse_InsertSelect(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT x, y FROM src")

	requireTables(t, fact.Reads, tbl("src"))
	requireTables(t, fact.Writes, tbl("tgt"))
	requireEdge(t, fact, col(tbl("src"), "x"), col(tbl("tgt"), "x"))
	requireEdge(t, fact, col(tbl("src"), "y"), col(tbl("tgt"), "y"))
}

func TestParse_InsertSelectWithAliases(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT a.x AS u, b.y v FROM sa a JOIN sb b ON a.id = b.id")

	requireTables(t, fact.Reads, tbl("sa"), tbl("sb"))
	requireEdge(t, fact, col(tbl("sa"), "x"), col(tbl("tgt"), "u"))
	requireEdge(t, fact, col(tbl("sb"), "y"), col(tbl("tgt"), "v"))
}

func TestParse_InsertDeclaredColumns(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt (c1, c2) SELECT x, y FROM src")

	requireEdge(t, fact, col(tbl("src"), "x"), col(tbl("tgt"), "c1"))
	requireEdge(t, fact, col(tbl("src"), "y"), col(tbl("tgt"), "c2"))
}

func TestParse_InsertValues(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt (a, b) VALUES (1, 'two')")

	requireTables(t, fact.Writes, tbl("tgt"))
	if len(fact.Reads) != 0 || len(fact.Edges) != 0 {
		t.Fatalf("literal rows must carry no provenance: %v %v", fact.Reads, fact.Edges)
	}
}

func TestParse_InsertOverwrite(t *testing.T) {
	fact := parse(t, "INSERT OVERWRITE TABLE tgt SELECT x FROM src")

	requireTables(t, fact.Writes, tbl("tgt"))
	requireEdge(t, fact, col(tbl("src"), "x"), col(tbl("tgt"), "x"))
}

func TestParse_CreateTableAs(t *testing.T) {
	fact := parse(t, "CREATE TABLE agg AS SELECT region, count(1) AS cnt FROM sales GROUP BY region")

	requireTables(t, fact.Reads, tbl("sales"))
	requireTables(t, fact.Writes, tbl("agg"))
	requireEdge(t, fact, col(tbl("sales"), "region"), col(tbl("agg"), "region"))
	// count(1) references no source column but keeps its output name.
	for _, e := range fact.Edges {
		if e.Target == col(tbl("agg"), "cnt") {
			t.Fatalf("count(1) must not produce an edge, got %v", e)
		}
	}
}

func TestParse_CreateView(t *testing.T) {
	fact := parse(t, "CREATE OR REPLACE VIEW v AS SELECT x FROM src")

	requireTables(t, fact.Writes, tbl("v"))
	requireEdge(t, fact, col(tbl("src"), "x"), col(tbl("v"), "x"))
}

func TestParse_CreateTableDefinitionOnly(t *testing.T) {
	fact := parse(t, "CREATE TABLE IF NOT EXISTS t (id int PRIMARY KEY, name text)")

	requireTables(t, fact.Writes, tbl("t"))
	if len(fact.Reads) != 0 || len(fact.Edges) != 0 {
		t.Fatalf("DDL without AS must not read: %v %v", fact.Reads, fact.Edges)
	}
}

func TestParse_AmbiguousColumnStaysUnbound(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT x FROM a JOIN b ON a.id = b.id")

	requireEdge(t, fact, core.Column{Name: "x"}, col(tbl("tgt"), "x"))
}

func TestParse_SubqueryDerivedHop(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT y FROM (SELECT x AS y FROM src) s")

	// The subquery scope is a derived pseudo-table, not an external read.
	requireTables(t, fact.Reads, tbl("src"))
	requireEdge(t, fact, col(tbl("src"), "x"), col(derived("s"), "y"))
	requireEdge(t, fact, col(derived("s"), "y"), col(tbl("tgt"), "y"))
}

func TestParse_AnonymousSubqueryName(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT y FROM (SELECT x AS y FROM src)")

	requireEdge(t, fact, col(derived("subquery_1"), "y"), col(tbl("tgt"), "y"))
}

func TestParse_CTE(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt WITH c AS (SELECT x FROM src) SELECT x FROM c")

	requireTables(t, fact.Reads, tbl("src"))
	requireEdge(t, fact, col(tbl("src"), "x"), col(derived("c"), "x"))
	requireEdge(t, fact, col(derived("c"), "x"), col(tbl("tgt"), "x"))
}

func TestParse_CTEDeclaredColumns(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt WITH c (renamed) AS (SELECT x FROM src) SELECT renamed FROM c")

	requireEdge(t, fact, col(tbl("src"), "x"), col(derived("c"), "renamed"))
	requireEdge(t, fact, col(derived("c"), "renamed"), col(tbl("tgt"), "renamed"))
}

func TestParse_UnionMergesByPosition(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT x FROM a UNION ALL SELECT x FROM b")

	requireTables(t, fact.Reads, tbl("a"), tbl("b"))
	requireEdge(t, fact, col(tbl("a"), "x"), col(tbl("tgt"), "x"))
	requireEdge(t, fact, col(tbl("b"), "x"), col(tbl("tgt"), "x"))
}

func TestParse_Update(t *testing.T) {
	fact := parse(t, "UPDATE tgt SET total = s.amount FROM payments s WHERE tgt.id = s.id")

	requireTables(t, fact.Writes, tbl("tgt"))
	requireTables(t, fact.Reads, tbl("payments"))
	requireEdge(t, fact, col(tbl("payments"), "amount"), col(tbl("tgt"), "total"))
}

func TestParse_UpdateSelfReference(t *testing.T) {
	fact := parse(t, "UPDATE t SET a = b")

	requireEdge(t, fact, col(tbl("t"), "b"), col(tbl("t"), "a"))
}

func TestParse_Delete(t *testing.T) {
	fact := parse(t, "DELETE FROM t WHERE id = 1")

	requireTables(t, fact.Writes, tbl("t"))
	if len(fact.Reads) != 0 || len(fact.Edges) != 0 {
		t.Fatalf("row removal traces no provenance: %v %v", fact.Reads, fact.Edges)
	}
}

func TestParse_DropAndTruncate(t *testing.T) {
	for _, sql := range []string{"DROP TABLE IF EXISTS t", "TRUNCATE TABLE t"} {
		fact := parse(t, sql)
		if len(fact.Reads) != 0 || len(fact.Writes) != 0 || len(fact.Edges) != 0 {
			t.Fatalf("%q: expected an empty fact, got %+v", sql, fact)
		}
	}
}

func TestParse_WildcardPlaceholder(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT * FROM src")

	requireEdge(t, fact,
		core.Column{Table: tbl("src"), Name: core.WildcardName},
		core.Column{Table: tbl("tgt"), Name: core.WildcardName})
}

func TestParse_QualifiedWildcard(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT u.* FROM users u")

	requireEdge(t, fact,
		core.Column{Table: tbl("users"), Name: core.WildcardName},
		core.Column{Table: tbl("tgt"), Name: core.WildcardName})
}

func TestParse_WildcardOverSubqueryExpands(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT s.* FROM (SELECT x, y FROM src) s")

	requireEdge(t, fact, col(derived("s"), "x"), col(tbl("tgt"), "x"))
	requireEdge(t, fact, col(derived("s"), "y"), col(tbl("tgt"), "y"))
}

func TestParse_ScalarSubqueryInItem(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT (SELECT max(x) FROM s) AS m, a.y FROM a")

	requireTables(t, fact.Reads, tbl("s"), tbl("a"))
	requireEdge(t, fact, col(tbl("s"), "x"), col(tbl("tgt"), "m"))
	requireEdge(t, fact, col(tbl("a"), "y"), col(tbl("tgt"), "y"))
}

func TestParse_SubqueryInWhereContributesReads(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT x FROM a WHERE a.id IN (SELECT id FROM blocked)")

	requireTables(t, fact.Reads, tbl("a"), tbl("blocked"))
}

func TestParse_ExpressionsAndFunctions(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT cast(price AS decimal) AS price, amount * qty AS total FROM src")

	requireEdge(t, fact, col(tbl("src"), "price"), col(tbl("tgt"), "price"))
	requireEdge(t, fact, col(tbl("src"), "amount"), col(tbl("tgt"), "total"))
	requireEdge(t, fact, col(tbl("src"), "qty"), col(tbl("tgt"), "total"))
}

func TestParse_WindowFunction(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt SELECT sum(amount) OVER (PARTITION BY region ORDER BY day DESC) AS running FROM src")

	requireEdge(t, fact, col(tbl("src"), "amount"), col(tbl("tgt"), "running"))
}

func TestParse_QuotedIdentifiersKeepCase(t *testing.T) {
	fact := parse(t, `INSERT INTO "Tgt" SELECT "Val" FROM "Src"`)

	requireTables(t, fact.Writes, core.Table{Name: "Tgt", Kind: core.KindPhysical})
	requireEdge(t, fact,
		core.Column{Table: core.Table{Name: "Src", Kind: core.KindPhysical}, Name: "Val"},
		core.Column{Table: core.Table{Name: "Tgt", Kind: core.KindPhysical}, Name: "Val"})
}

func TestParse_QuotedQualifiedIdentifiersKeepCase(t *testing.T) {
	fact := parse(t, `INSERT INTO "Mart"."Tgt" SELECT v FROM "Mart"."Src"`)

	requireTables(t, fact.Writes, core.Table{Schema: "Mart", Name: "Tgt", Kind: core.KindPhysical})
	requireTables(t, fact.Reads, core.Table{Schema: "Mart", Name: "Src", Kind: core.KindPhysical})
}

func TestParse_StarWithDeclaredColumns(t *testing.T) {
	fact := parse(t, "INSERT INTO tgt (a, b) SELECT * FROM src")

	requireEdge(t, fact, col(tbl("src"), "*"), col(tbl("tgt"), "*"))
	if len(fact.Edges) != 1 {
		t.Fatalf("expected a single wildcard edge, got %v", fact.Edges)
	}
	layout := fact.Edges[0].TargetLayout
	if len(layout) != 2 || layout[0] != "a" || layout[1] != "b" {
		t.Fatalf("expected wildcard edge carrying declared layout [a b], got %v", layout)
	}
}

func TestParse_SnowflakeFoldsUpper(t *testing.T) {
	fact, err := parseStatement("insert into tgt select x from src", "snowflake", 0)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	d := core.MustDialect("snowflake")
	want := core.Column{Table: core.NewTable("src", d), Name: "X"}
	if want.Table.Name != "SRC" {
		t.Fatalf("dialect must fold to uppercase, got %s", want.Table.Name)
	}
	if !hasEdge(fact, want, core.Column{Table: core.NewTable("tgt", d), Name: "X"}) {
		t.Fatalf("expected uppercase edge, got %v", fact.Edges)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		"SELEC x FROM t",
		"INSERT tgt SELECT x FROM src",
		"CREATE INDEX idx ON t (x)",
	}
	for _, sql := range tests {
		_, err := parseStatement(sql, "ansi", 0)
		if err == nil {
			t.Fatalf("%q: expected a parse error", sql)
		}
		var perr *core.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("%q: expected *core.ParseError, got %T", sql, err)
		}
		if perr.Dialect != "ansi" || perr.Statement != sql {
			t.Fatalf("%q: error must carry dialect and statement, got %+v", sql, perr)
		}
	}
}

func TestParse_StatementIndexPreserved(t *testing.T) {
	fact, err := parseStatement("SELECT x FROM t", "ansi", 7)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if fact.Index != 7 {
		t.Fatalf("expected index 7, got %d", fact.Index)
	}
}
