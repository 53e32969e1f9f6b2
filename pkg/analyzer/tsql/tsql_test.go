package tsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqllineage/pkg/analyzer"
	"github.com/leapstack-labs/sqllineage/pkg/core"
)

func TestSplitBatches(t *testing.T) {
	sql := "INSERT INTO a SELECT x FROM b\nGO\nINSERT INTO c SELECT x FROM a\nGO"
	batches := SplitBatches(sql)
	assert.Equal(t, []string{
		"INSERT INTO a SELECT x FROM b",
		"INSERT INTO c SELECT x FROM a",
	}, batches)
}

func TestSplitBatches_RepeatCountAndCase(t *testing.T) {
	sql := "SELECT 1\ngo\nSELECT 2\nGO 5\nSELECT 3"
	assert.Equal(t, []string{"SELECT 1", "SELECT 2", "SELECT 3"}, SplitBatches(sql))
}

func TestSplitBatches_GoMustStandAlone(t *testing.T) {
	sql := "SELECT going FROM gopher\nGO"
	assert.Equal(t, []string{"SELECT going FROM gopher"}, SplitBatches(sql))
}

func TestSplitBatches_NoSeparator(t *testing.T) {
	assert.Equal(t, []string{"SELECT 1"}, SplitBatches("SELECT 1"))
	assert.Empty(t, SplitBatches("GO\nGO"))
}

func TestAnalyzer_SplitHonorsBatchOption(t *testing.T) {
	a := &Analyzer{}

	sql := "SELECT 1\nGO\nSELECT 2"
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"},
		a.Split(sql, analyzer.SplitOptions{BatchSeparator: true}))

	// Without the option the semicolon family rules apply and GO is just
	// part of the statement text.
	assert.Equal(t, []string{"SELECT 1\nGO\nSELECT 2"},
		a.Split(sql, analyzer.SplitOptions{}))
}

func TestAnalyzer_BracketIdentifiers(t *testing.T) {
	a := &Analyzer{}
	fact, err := a.Analyze("INSERT INTO [dbo].[Target] SELECT [Col] FROM [dbo].[Source]", "tsql", 0)
	require.NoError(t, err)

	tgt := core.Table{Schema: "dbo", Name: "Target", Kind: core.KindPhysical}
	src := core.Table{Schema: "dbo", Name: "Source", Kind: core.KindPhysical}
	require.Equal(t, []core.Table{src}, fact.Reads)
	require.Equal(t, []core.Table{tgt}, fact.Writes)
	require.Len(t, fact.Edges, 1)
	assert.Equal(t, core.Column{Table: src, Name: "Col"}, fact.Edges[0].Source)
	assert.Equal(t, core.Column{Table: tgt, Name: "Col"}, fact.Edges[0].Target)
}

func TestRegistry(t *testing.T) {
	impl, ok := analyzer.For("tsql")
	require.True(t, ok)
	assert.Equal(t, Name, impl.Name())
}
