package matchrun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"recruiting-console/internal/talenthub"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO match_runs (
	id, owner_id, status, requested_cv_ids, requested_jd_id, handle,
	progress, result, error_code, error_message, created_at, started_at, completed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	cvIDs, err := json.Marshal(run.RequestedCVIDs)
	if err != nil {
		return err
	}
	progress, err := marshalNullable(run.Progress)
	if err != nil {
		return err
	}
	result, err := marshalNullable(run.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		run.ID,
		run.OwnerID,
		run.Status,
		string(cvIDs),
		run.RequestedJDID,
		nullString(string(run.Handle)),
		progress,
		result,
		nullString(run.ErrorCode),
		nullString(run.ErrorMessage),
		run.CreatedAt,
		run.StartedAt,
		run.CompletedAt,
	)
	return err
}

// Update rewrites the mutable columns of a run.
func (r *PGRepo) Update(ctx context.Context, run Run) error {
	const query = `
UPDATE match_runs
SET status = $2, handle = $3, progress = $4, result = $5,
    error_code = $6, error_message = $7, started_at = $8, completed_at = $9
WHERE id = $1`
	progress, err := marshalNullable(run.Progress)
	if err != nil {
		return err
	}
	result, err := marshalNullable(run.Result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.Status,
		nullString(string(run.Handle)),
		progress,
		result,
		nullString(run.ErrorCode),
		nullString(run.ErrorMessage),
		run.StartedAt,
		run.CompletedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns the owner's run by id.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, runID string) (Run, error) {
	const query = `
SELECT id, owner_id, status, requested_cv_ids, requested_jd_id, handle,
       progress, result, error_code, error_message, created_at, started_at, completed_at
FROM match_runs
WHERE id = $1 AND owner_id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, runID, ownerID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// ListByOwner returns the owner's runs newest-first with limit/offset.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Run, error) {
	const query = `
SELECT id, owner_id, status, requested_cv_ids, requested_jd_id, handle,
       progress, result, error_code, error_message, created_at, started_at, completed_at
FROM match_runs
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var cvIDs string
	var handle sql.NullString
	var progress sql.NullString
	var result sql.NullString
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	if err := row.Scan(
		&run.ID,
		&run.OwnerID,
		&run.Status,
		&cvIDs,
		&run.RequestedJDID,
		&handle,
		&progress,
		&result,
		&errorCode,
		&errorMessage,
		&run.CreatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(cvIDs), &run.RequestedCVIDs); err != nil {
		return Run{}, err
	}
	if handle.Valid {
		run.Handle = talenthub.MatchHandle(handle.String)
	}
	if progress.Valid {
		run.Progress = &talenthub.Progress{}
		if err := json.Unmarshal([]byte(progress.String), run.Progress); err != nil {
			run.Progress = nil
		}
	}
	if result.Valid {
		run.Result = &talenthub.MatchResult{}
		if err := json.Unmarshal([]byte(result.String), run.Result); err != nil {
			run.Result = nil
		}
	}
	if errorCode.Valid {
		run.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}

func marshalNullable(v any) (any, error) {
	switch value := v.(type) {
	case *talenthub.Progress:
		if value == nil {
			return nil, nil
		}
	case *talenthub.MatchResult:
		if value == nil {
			return nil, nil
		}
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
