package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/data/pgxutil"
	"github.com/leadforge/leadscreen/internal/domain/model"
	apperrors "github.com/leadforge/leadscreen/internal/errors"
)

// ResultSinkRepoConfig holds configuration for the result sink.
type ResultSinkRepoConfig struct {
	// ResultTable receives annotated records.
	ResultTable string
	// CacheTable receives processed keys so later jobs pre-filter them.
	CacheTable string
	// CacheKeyColumn is the cache table's key column.
	CacheKeyColumn string

	Logger *slog.Logger
}

// ResultSinkRepo performs the job's single bulk write: annotated records via
// CopyFrom, plus the processed-key rows that feed the next job's pre-filter.
// Both writes share one transaction so a failed upload leaves no half state.
type ResultSinkRepo struct {
	DB     *sql.DB
	cfg    ResultSinkRepoConfig
	logger *slog.Logger
}

// NewResultSinkRepo creates a new ResultSinkRepo with the given database
// connection and configuration.
func NewResultSinkRepo(db *sql.DB, cfg ResultSinkRepoConfig) *ResultSinkRepo {
	if cfg.ResultTable == "" {
		cfg.ResultTable = "screening_results"
	}
	if cfg.CacheTable == "" {
		cfg.CacheTable = "processed_leads"
	}
	if cfg.CacheKeyColumn == "" {
		cfg.CacheKeyColumn = "address_norm"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultSinkRepo{DB: db, cfg: cfg, logger: logger}
}

var _ core.ResultSink = (*ResultSinkRepo)(nil)

var resultColumns = []string{
	"job_id",
	"lead_id",
	"first_name",
	"last_name",
	"address",
	"address_norm",
	"city",
	"state",
	"zip",
	"phones",
	"emails",
	"category",
	"in_litigator_list",
	"invalid",
	"invalid_reason",
}

// BulkInsert writes all records for a job and marks their keys processed.
// Returns the number of result rows written.
func (r *ResultSinkRepo) BulkInsert(
	ctx context.Context,
	jobID string,
	records []*model.Record,
) (int, error) {
	if jobID == "" {
		return 0, ErrJobIDRequired
	}
	if len(records) == 0 {
		return 0, ErrNoRecords
	}

	rows, err := buildResultRows(jobID, records)
	if err != nil {
		return 0, err
	}
	cacheRows := buildCacheRows(records)

	var written int64
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			var copyErr error
			written, copyErr = tx.CopyFrom(ctx,
				pgx.Identifier{r.cfg.ResultTable},
				resultColumns,
				pgx.CopyFromRows(rows),
			)
			if copyErr != nil {
				return fmt.Errorf("copy results: %w", copyErr)
			}

			if len(cacheRows) == 0 {
				return nil
			}
			// ON CONFLICT keeps re-screened keys idempotent, so a plain
			// CopyFrom does not fit here.
			insert := fmt.Sprintf(
				"INSERT INTO %s (%s, job_id) VALUES ($1, $2) ON CONFLICT (%s) DO NOTHING",
				pgx.Identifier{r.cfg.CacheTable}.Sanitize(),
				pgx.Identifier{r.cfg.CacheKeyColumn}.Sanitize(),
				pgx.Identifier{r.cfg.CacheKeyColumn}.Sanitize(),
			)
			batch := &pgx.Batch{}
			for _, row := range cacheRows {
				batch.Queue(insert, row, jobID)
			}
			results := tx.SendBatch(ctx, batch)
			defer results.Close()
			for range cacheRows {
				if _, execErr := results.Exec(); execErr != nil {
					return fmt.Errorf("mark keys processed: %w", execErr)
				}
			}
			return nil
		},
	})
	if txErr != nil {
		return 0, apperrors.MapDBError(txErr)
	}

	r.logger.InfoContext(ctx, "bulk insert complete",
		"job_id", jobID,
		"results", written,
		"cache_keys", len(cacheRows))
	return int(written), nil
}

func buildResultRows(jobID string, records []*model.Record) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for _, record := range records {
		phones, err := json.Marshal(record.Phones)
		if err != nil {
			return nil, fmt.Errorf("marshal phones for lead %s: %w", record.LeadID, err)
		}
		emails, err := json.Marshal(record.Emails)
		if err != nil {
			return nil, fmt.Errorf("marshal emails for lead %s: %w", record.LeadID, err)
		}
		var invalidReason *string
		if record.InvalidReason != "" {
			invalidReason = &record.InvalidReason
		}
		rows = append(rows, []any{
			jobID,
			record.LeadID,
			record.FirstName,
			record.LastName,
			record.Address,
			record.AddressNorm,
			record.City,
			record.State,
			record.Zip,
			phones,
			emails,
			string(record.Category()),
			record.InLitigatorList,
			record.Invalid,
			invalidReason,
		})
	}
	return rows, nil
}

// buildCacheRows collects the distinct processed keys. Invalid records are
// excluded; they were never actually screened.
func buildCacheRows(records []*model.Record) []string {
	seen := make(map[string]struct{}, len(records))
	keys := make([]string, 0, len(records))
	for _, record := range records {
		if record.Invalid || record.AddressNorm == "" {
			continue
		}
		if _, ok := seen[record.AddressNorm]; ok {
			continue
		}
		seen[record.AddressNorm] = struct{}{}
		keys = append(keys, record.AddressNorm)
	}
	return keys
}
