package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/marktest/internal/harness"
	"github.com/roach88/marktest/internal/kind"
	"github.com/roach88/marktest/internal/match"
)

// ErrRunNotFound is returned when no run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

// Run summarises one recorded run.
type Run struct {
	Seq    int64  `json:"seq"`
	ID     string `json:"id"`
	Module string `json:"module"`
	Total  int    `json:"total"`
	Passed int    `json:"passed"`
	Digest string `json:"digest"`
}

const runColumns = `seq, id, module, total, passed, digest`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	err := row.Scan(&r.Seq, &r.ID, &r.Module, &r.Total, &r.Passed, &r.Digest)
	return r, err
}

// LastRun returns the most recently recorded run of module.
// Returns an error wrapping ErrRunNotFound if the module has no runs.
func (s *Store) LastRun(ctx context.Context, module string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE module = ?
		ORDER BY seq DESC
		LIMIT 1
	`, module)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("last run of %q: %w", module, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("last run of %q: %w", module, err)
	}
	return r, nil
}

// ListRuns returns the recorded runs of module, newest first.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, module string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE module = ?
		ORDER BY seq DESC
	`, module)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun reconstructs the report recorded under id.
// Returns an error wrapping ErrRunNotFound if id is unknown.
func (s *Store) ReadRun(ctx context.Context, id string) (*harness.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, status, detail, matched
		FROM results
		WHERE run_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	report := &harness.Report{
		Module:  run.Module,
		Total:   run.Total,
		Passed:  run.Passed,
		Results: []harness.UnitResult{},
	}
	for rows.Next() {
		var (
			res             harness.UnitResult
			status, matched string
		)
		if err := rows.Scan(&res.Name, &status, &res.Verdict.Detail, &matched); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Verdict.Status = match.Status(status)
		res.Verdict.Matched = kind.Kind(matched)
		report.Results = append(report.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return report, nil
}
