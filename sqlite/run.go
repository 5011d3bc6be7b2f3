package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/telcheck"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ telcheck.RunService = (*RunService)(nil)

// RunService implements telcheck.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores a run and its links in one transaction.
// The ID is generated; a zero FinishedAt is set to the current time.
func (s *RunService) CreateRun(ctx context.Context, run *telcheck.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.StartedAt = run.StartedAt.UTC()
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	run.FinishedAt = run.FinishedAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, base_url, scope, passed, pages, visited, failed, errors, digest, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.BaseURL, run.Scope.String(), run.Passed, run.Pages, run.Visited, run.Failed, run.Errors,
		run.Digest, run.StartedAt.Format(time.RFC3339), run.FinishedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	for i, link := range run.Links {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_links (run_id, position, page_url, href, text, valid)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, link.PageURL, link.Href, link.Text, link.Valid); err != nil {
			return fmt.Errorf("inserting link %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// FindRunByID retrieves a run and its links.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*telcheck.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, base_url, scope, passed, pages, visited, failed, errors, digest, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, telcheck.Errorf(telcheck.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT page_url, href, text, valid
		FROM run_links
		WHERE run_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Links = []telcheck.RunLink{}
	for rows.Next() {
		var link telcheck.RunLink
		if err := rows.Scan(&link.PageURL, &link.Href, &link.Text, &link.Valid); err != nil {
			return nil, err
		}
		run.Links = append(run.Links, link)
	}

	return run, rows.Err()
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter telcheck.RunFilter) ([]*telcheck.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, base_url, scope, passed, pages, visited, failed, errors, digest, started_at, finished_at FROM runs WHERE 1=1")

	if filter.BaseURL != nil {
		query.WriteString(" AND base_url = ?")
		args = append(args, *filter.BaseURL)
	}
	if filter.Scope != nil {
		query.WriteString(" AND scope = ?")
		args = append(args, filter.Scope.String())
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")

	if filter.Offset > 0 && filter.Limit <= 0 {
		// SQLite requires a LIMIT before OFFSET.
		query.WriteString(" LIMIT -1")
	}
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*telcheck.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*telcheck.Run, error) {
	var run telcheck.Run
	var scope, startedAt, finishedAt string

	if err := row.Scan(&run.ID, &run.BaseURL, &scope, &run.Passed, &run.Pages, &run.Visited,
		&run.Failed, &run.Errors, &run.Digest, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	var err error
	if run.Scope, err = telcheck.ParseScope(scope); err != nil {
		return nil, fmt.Errorf("failed to parse scope: %w", err)
	}
	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
		return nil, err
	}

	return &run, nil
}
