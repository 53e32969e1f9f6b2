package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_QualifierParts(t *testing.T) {
	d := MustDialect("ansi")

	tests := []struct {
		input   string
		catalog string
		schema  string
		name    string
	}{
		{"users", "", "", "users"},
		{"public.users", "", "public", "users"},
		{"warehouse.public.users", "warehouse", "public", "users"},
	}
	for _, tt := range tests {
		tbl := NewTable(tt.input, d)
		assert.Equal(t, tt.catalog, tbl.Catalog, tt.input)
		assert.Equal(t, tt.schema, tbl.Schema, tt.input)
		assert.Equal(t, tt.name, tbl.Name, tt.input)
		assert.Equal(t, KindPhysical, tbl.Kind, tt.input)
	}
}

func TestTable_StringRoundTrip(t *testing.T) {
	d := MustDialect("ansi")
	for _, input := range []string{"users", "public.users", "warehouse.public.users"} {
		tbl := NewTable(input, d)
		require.Equal(t, input, tbl.String())
		again := NewTable(tbl.String(), d)
		assert.Equal(t, tbl, again)
	}
}

func TestTableFromParts_KeepsCase(t *testing.T) {
	// Parts arrive pre-folded; quoted identifiers must not be folded again.
	tbl := TableFromParts("Mart", "Users")
	assert.Equal(t, "Mart", tbl.Schema)
	assert.Equal(t, "Users", tbl.Name)
	assert.Equal(t, KindPhysical, tbl.Kind)
	assert.Equal(t, "Mart.Users", tbl.String())
}

func TestNewTable_Folding(t *testing.T) {
	assert.Equal(t, "users", NewTable("Users", MustDialect("ansi")).Name)
	assert.Equal(t, "USERS", NewTable("Users", MustDialect("snowflake")).Name)
	assert.Equal(t, "Users", NewTable("Users", DialectConfig{Normalization: NormCaseSensitive}).Name)
}

func TestDerivedTable(t *testing.T) {
	d := MustDialect("ansi")
	dt := NewDerivedTable("subquery_1", d)
	assert.True(t, dt.Derived())
	assert.False(t, NewTable("users", d).Derived())
	assert.Equal(t, "subquery_1", dt.String())
}

func TestColumn_String(t *testing.T) {
	d := MustDialect("ansi")
	tbl := NewTable("public.users", d)

	col := NewColumn(tbl, "ID", d)
	assert.Equal(t, "public.users.id", col.String())
	assert.False(t, col.Unbound())

	unbound := UnboundColumn("id", d)
	assert.True(t, unbound.Unbound())
	assert.Equal(t, "id", unbound.String())
}

func TestColumn_Wildcard(t *testing.T) {
	d := MustDialect("ansi")
	star := Column{Table: NewTable("t", d), Name: WildcardName}
	assert.True(t, star.Wildcard())
	assert.False(t, NewColumn(NewTable("t", d), "x", d).Wildcard())
}

func TestColumn_SubqueryDerived(t *testing.T) {
	d := MustDialect("ansi")
	sub := Column{Table: NewDerivedTable("sq", d), Name: "x"}
	assert.True(t, sub.SubqueryDerived())
	base := Column{Table: NewTable("t", d), Name: "x"}
	assert.False(t, base.SubqueryDerived())
}
