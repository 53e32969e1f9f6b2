// Package analyzer defines the dialect-analyzer capability contract and
// the registry that maps dialect identifiers to implementations.
//
// An analyzer turns one statement string into a core.StatementFact. Each
// implementation is self-describing (name plus supported dialect list) and
// registers itself in an init() function; selection is a flat lookup with
// no fallback chaining.
package analyzer

import (
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// SplitOptions configures statement splitting.
type SplitOptions struct {
	// BatchSeparator enables batch-keyword splitting for dialects whose
	// statements carry no terminator (T-SQL GO). Ignored by analyzers of
	// the semicolon family.
	BatchSeparator bool
}

// Analyzer parses statements of one dialect family into lineage facts.
type Analyzer interface {
	// Name is the stable implementation name.
	Name() string

	// Dialects enumerates the dialect identifiers this analyzer supports.
	Dialects() []string

	// Split divides raw SQL text into an ordered sequence of statement
	// strings, honoring the dialect family's separator rules.
	Split(sql string, opts SplitOptions) []string

	// Analyze parses one statement under the given dialect. index is the
	// statement's position in the run. It returns *core.ParseError when
	// the statement cannot be parsed.
	Analyze(statement, dialect string, index int) (*core.StatementFact, error)
}

// Analyzer registry
var (
	analyzersMu sync.RWMutex
	analyzers   = make(map[string]Analyzer) // name -> implementation
	byDialect   = make(map[string]Analyzer) // dialect -> implementation
	order       []string                    // registration order of names
)

// Register registers an analyzer implementation for each dialect it
// supports. Called by implementations in their init() functions.
func Register(a Analyzer) {
	analyzersMu.Lock()
	defer analyzersMu.Unlock()
	name := strings.ToLower(a.Name())
	if _, exists := analyzers[name]; !exists {
		order = append(order, name)
	}
	analyzers[name] = a
	for _, d := range a.Dialects() {
		byDialect[strings.ToLower(d)] = a
	}
}

// For returns the analyzer responsible for a dialect. Exactly one
// implementation is consulted per run.
func For(dialect string) (Analyzer, bool) {
	analyzersMu.RLock()
	defer analyzersMu.RUnlock()
	a, ok := byDialect[strings.ToLower(dialect)]
	return a, ok
}

// Names returns registered analyzer names in registration order.
func Names() []string {
	analyzersMu.RLock()
	defer analyzersMu.RUnlock()
	names := make([]string, len(order))
	copy(names, order)
	return names
}

// SupportedDialects returns analyzer-name -> sorted dialect list for every
// registered implementation.
func SupportedDialects() map[string][]string {
	analyzersMu.RLock()
	defer analyzersMu.RUnlock()
	result := make(map[string][]string, len(analyzers))
	for name, a := range analyzers {
		dialects := append([]string(nil), a.Dialects()...)
		sort.Strings(dialects)
		result[name] = dialects
	}
	return result
}
