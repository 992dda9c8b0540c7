package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/marktest/internal/harness"
)

// ErrRunConflict is returned when a run ID is recorded twice with
// different reports.
var ErrRunConflict = errors.New("run id already recorded with a different report")

// RecordRun stores report under id together with its per-unit results and
// returns the report digest. Everything is written in one transaction.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: recording the same
// report under the same id again is a no-op that returns the same digest.
func (s *Store) RecordRun(ctx context.Context, id string, report *harness.Report) (string, error) {
	if id == "" {
		return "", fmt.Errorf("record run: id is required")
	}
	if report == nil {
		return "", fmt.Errorf("record run: report is required")
	}

	digest, err := Digest(report)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, module, total, passed, digest)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, report.Module, report.Total, report.Passed, digest)
	if err != nil {
		return "", fmt.Errorf("record run: insert run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("record run: rows affected: %w", err)
	}
	if affected == 0 {
		var existing string
		if err := tx.QueryRowContext(ctx, `SELECT digest FROM runs WHERE id = ?`, id).Scan(&existing); err != nil {
			return "", fmt.Errorf("record run: query existing: %w", err)
		}
		if existing != digest {
			return "", fmt.Errorf("record run %s: %w", id, ErrRunConflict)
		}
		return digest, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, position, name, status, detail, matched)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("record run: prepare results: %w", err)
	}
	defer stmt.Close()

	for i, res := range report.Results {
		_, err := stmt.ExecContext(ctx,
			id,
			i,
			res.Name,
			string(res.Verdict.Status),
			res.Verdict.Detail,
			string(res.Verdict.Matched),
		)
		if err != nil {
			return "", fmt.Errorf("record run: insert result %q: %w", res.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return digest, nil
}

// PruneRuns deletes all but the newest keep runs of module and returns the
// number of runs removed. Their results go with them. keep must be at
// least 1.
func (s *Store) PruneRuns(ctx context.Context, module string, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("prune runs of %q: keep must be at least 1, got %d", module, keep)
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM runs
		WHERE module = ?
		  AND seq NOT IN (
			SELECT seq FROM runs
			WHERE module = ?
			ORDER BY seq DESC
			LIMIT ?
		  )
	`, module, module, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs of %q: %w", module, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs of %q: rows affected: %w", module, err)
	}
	return removed, nil
}
