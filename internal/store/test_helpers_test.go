package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/marktest/internal/harness"
	"github.com/roach88/marktest/internal/kind"
	"github.com/roach88/marktest/internal/match"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestReport builds a report with one verdict of each status.
func createTestReport(module string) *harness.Report {
	agg := harness.NewAggregator(module)
	agg.Add(module+".completes", match.Verdict{Status: match.Pass, Detail: "passed"})
	agg.Add(module+".raises", match.Verdict{Status: match.Pass, Detail: "raised ArrayIndex", Matched: kind.Index})
	agg.Add(module+".silent", match.Verdict{Status: match.Fail, Detail: "failed: expected Arithmetic, nothing raised"})
	agg.Add(module+".arity", match.Verdict{Status: match.Misuse, Detail: "misuse: wrong arity: takes 1 argument(s), want 0"})
	return agg.Report()
}
