package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/domain/model"
	apperrors "github.com/leadforge/leadscreen/internal/errors"
)

// JobRepoConfig holds configuration options for the job repository.
type JobRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo persists screening job rows and their per-batch counters.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database
// connection and configuration.
func NewJobRepo(db *sql.DB, cfg JobRepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRepo{DB: db, timeProvider: tp, logger: logger}
}

var _ core.JobStore = (*JobRepo)(nil)

const jobColumns = `
  id,
  script_id,
  row_limit,
  status,
  rows_total,
  rows_processed,
  batch_index,
  batch_total,
  clean_count,
  litigator_count,
  dnc_count,
  started_at,
  completed_at,
  last_error,
  created_at,
  updated_at
`

// Create inserts a new job row.
func (r *JobRepo) Create(ctx context.Context, job *model.Job) error {
	if job == nil || job.ID == "" {
		return ErrJobIDRequired
	}
	if job.ScriptID == "" {
		return ErrScriptIDRequired
	}

	query := `
      INSERT INTO screening_jobs(
        id, script_id, row_limit, status,
        rows_total, rows_processed, batch_index, batch_total,
        clean_count, litigator_count, dnc_count,
        started_at, completed_at, last_error, created_at, updated_at
      )
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	now := r.timeProvider.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.DB.ExecContext(ctx, query,
		job.ID, job.ScriptID, job.RowLimit, string(job.Status),
		job.RowsTotal, job.RowsProcessed, job.BatchIndex, job.BatchTotal,
		job.Tallies.Clean, job.Tallies.FlaggedLitigator, job.Tallies.FlaggedDNC,
		job.StartedAt, job.CompletedAt, job.LastError, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// GetByID returns the job with the given id, or model.ErrJobNotFound.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, ErrJobIDRequired
	}

	query := `SELECT ` + jobColumns + ` FROM screening_jobs WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrJobNotFound
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// Update persists the job's status, counters, tallies, and timestamps.
func (r *JobRepo) Update(ctx context.Context, job *model.Job) error {
	if job == nil || job.ID == "" {
		return ErrJobIDRequired
	}

	query := `
      UPDATE screening_jobs
      SET status = $2,
          rows_total = $3,
          rows_processed = $4,
          batch_index = $5,
          batch_total = $6,
          clean_count = $7,
          litigator_count = $8,
          dnc_count = $9,
          started_at = $10,
          completed_at = $11,
          last_error = $12,
          updated_at = $13
      WHERE id = $1`

	job.UpdatedAt = r.timeProvider.Now().UTC()

	result, err := r.DB.ExecContext(ctx, query,
		job.ID, string(job.Status),
		job.RowsTotal, job.RowsProcessed, job.BatchIndex, job.BatchTotal,
		job.Tallies.Clean, job.Tallies.FlaggedLitigator, job.Tallies.FlaggedDNC,
		job.StartedAt, job.CompletedAt, job.LastError, job.UpdatedAt,
	)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return model.ErrJobNotFound
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		job      model.Job
		status   string
		rowLimit sql.NullInt64
		lastErr  sql.NullString
	)
	err := row.Scan(
		&job.ID, &job.ScriptID, &rowLimit, &status,
		&job.RowsTotal, &job.RowsProcessed, &job.BatchIndex, &job.BatchTotal,
		&job.Tallies.Clean, &job.Tallies.FlaggedLitigator, &job.Tallies.FlaggedDNC,
		&job.StartedAt, &job.CompletedAt, &lastErr, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Status = model.JobStatus(status)
	if rowLimit.Valid {
		limit := int(rowLimit.Int64)
		job.RowLimit = &limit
	}
	if lastErr.Valid {
		job.LastError = &lastErr.String
	}
	return &job, nil
}
