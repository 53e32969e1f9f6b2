package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

type fakeAnalyzer struct {
	name     string
	dialects []string
}

func (f *fakeAnalyzer) Name() string       { return f.name }
func (f *fakeAnalyzer) Dialects() []string { return f.dialects }
func (f *fakeAnalyzer) Split(sql string, _ SplitOptions) []string {
	return []string{sql}
}
func (f *fakeAnalyzer) Analyze(_, _ string, index int) (*core.StatementFact, error) {
	return &core.StatementFact{Index: index}, nil
}

func TestRegister_DialectLookup(t *testing.T) {
	Register(&fakeAnalyzer{name: "FakeOne", dialects: []string{"FooSQL", "barsql"}})

	a, ok := For("foosql")
	require.True(t, ok)
	assert.Equal(t, "FakeOne", a.Name())

	// Lookup is case-insensitive on the dialect.
	_, ok = For("BARSQL")
	assert.True(t, ok)

	_, ok = For("nosql")
	assert.False(t, ok)
}

func TestNames_RegistrationOrderStable(t *testing.T) {
	Register(&fakeAnalyzer{name: "orderfirst", dialects: []string{"d1"}})
	Register(&fakeAnalyzer{name: "ordersecond", dialects: []string{"d2"}})
	// Re-registering must not duplicate the name.
	Register(&fakeAnalyzer{name: "orderfirst", dialects: []string{"d1"}})

	names := Names()
	first := indexOf(names, "orderfirst")
	second := indexOf(names, "ordersecond")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
	assert.Equal(t, 1, count(names, "orderfirst"))
}

func TestSupportedDialects(t *testing.T) {
	Register(&fakeAnalyzer{name: "multi", dialects: []string{"zz", "aa"}})

	supported := SupportedDialects()
	require.Contains(t, supported, "multi")
	assert.Equal(t, []string{"aa", "zz"}, supported["multi"], "dialect lists are sorted")
}

func indexOf(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}

func count(names []string, want string) int {
	n := 0
	for _, name := range names {
		if name == want {
			n++
		}
	}
	return n
}
