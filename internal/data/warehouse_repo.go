package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/data/database"
	"github.com/leadforge/leadscreen/internal/domain/model"
	apperrors "github.com/leadforge/leadscreen/internal/errors"
)

// cacheKeySynonyms maps a canonical join key to the column names warehouse
// teams have historically used for it. Detection tries the canonical name
// first, then each synonym in order.
var cacheKeySynonyms = map[string][]string{
	"address_norm": {
		"address_norm",
		"normalized_address",
		"addr_norm",
		"address_normalized",
		"norm_address",
	},
	"phone_norm": {
		"phone_norm",
		"normalized_phone",
		"phone_normalized",
	},
}

// WarehouseRepoConfig holds configuration for the warehouse repository.
type WarehouseRepoConfig struct {
	// CandidateTable holds the candidate leads.
	CandidateTable string
	// CacheTable holds keys of leads processed by earlier jobs.
	CacheTable string
	// JoinKey is the canonical name of the column shared by both tables.
	JoinKey string

	Logger *slog.Logger
}

// WarehouseRepo reads pre-filtered candidate leads from the warehouse. The
// "already processed" exclusion is pushed into the query as an anti-join so
// excluded rows never cross the wire.
type WarehouseRepo struct {
	DB     *sql.DB
	cfg    WarehouseRepoConfig
	logger *slog.Logger

	detectMu  sync.Mutex
	keyColumn string
	detect    func(ctx context.Context) (string, error)
}

// NewWarehouseRepo creates a new WarehouseRepo with the given database
// connection and configuration.
func NewWarehouseRepo(db *sql.DB, cfg WarehouseRepoConfig) *WarehouseRepo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	repo := &WarehouseRepo{DB: db, cfg: cfg, logger: logger}
	repo.detect = repo.DetectCacheKeyColumn
	return repo
}

var _ core.CandidateSource = (*WarehouseRepo)(nil)

// candidateColumns are the source fields selected for every candidate. The
// join key column is detected at runtime and aliased into the record.
var candidateColumns = []string{
	"lead_id",
	"first_name",
	"last_name",
	"address",
	"city",
	"state",
	"zip",
}

// DetectCacheKeyColumn introspects the cache table's columns and resolves
// which one carries the join key, tolerating the naming drift between
// warehouse snapshots. No compatible column is a fatal schema mismatch.
func (r *WarehouseRepo) DetectCacheKeyColumn(ctx context.Context) (string, error) {
	rows, err := r.DB.QueryContext(ctx, `
      SELECT column_name
      FROM information_schema.columns
      WHERE table_name = $1`, r.cfg.CacheTable)
	if err != nil {
		return "", apperrors.MapDBError(err)
	}
	defer rows.Close()

	available := make(map[string]struct{})
	for rows.Next() {
		var name string
		if scanErr := rows.Scan(&name); scanErr != nil {
			return "", apperrors.MapDBError(scanErr)
		}
		available[strings.ToLower(name)] = struct{}{}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return "", apperrors.MapDBError(rowsErr)
	}
	if len(available) == 0 {
		return "", apperrors.SchemaMismatchf("cache table %q does not exist", r.cfg.CacheTable)
	}

	synonyms, ok := cacheKeySynonyms[r.cfg.JoinKey]
	if !ok {
		synonyms = []string{r.cfg.JoinKey}
	}
	for _, candidate := range synonyms {
		if _, found := available[candidate]; found {
			return candidate, nil
		}
	}
	return "", apperrors.SchemaMismatchf(
		"cache table %q has no column compatible with join key %q",
		r.cfg.CacheTable, r.cfg.JoinKey,
	)
}

// resolveKeyColumn detects the cache key column and caches a successful
// result for all subsequent queries. Failures are never cached: the repo
// outlives any single job, and a transient warehouse blip during one job
// must not poison detection for the next.
func (r *WarehouseRepo) resolveKeyColumn(ctx context.Context) (string, error) {
	r.detectMu.Lock()
	defer r.detectMu.Unlock()
	if r.keyColumn != "" {
		return r.keyColumn, nil
	}
	column, err := r.detect(ctx)
	if err != nil {
		return "", err
	}
	r.keyColumn = column
	if column != r.cfg.JoinKey {
		r.logger.InfoContext(ctx, "resolved cache key column by synonym",
			"join_key", r.cfg.JoinKey,
			"column", column)
	}
	return column, nil
}

// CountCandidates returns the number of candidate rows not yet present in
// the processed cache, before any job row limit is applied.
func (r *WarehouseRepo) CountCandidates(ctx context.Context, scriptID string) (int, error) {
	if scriptID == "" {
		return 0, ErrScriptIDRequired
	}
	keyColumn, err := r.resolveKeyColumn(ctx)
	if err != nil {
		return 0, err
	}

	query, args := database.BuildPreFilterCount(database.PreFilterOptions{
		CandidateTable: r.cfg.CandidateTable,
		CacheTable:     r.cfg.CacheTable,
		KeyColumn:      keyColumn,
		Conditions: []database.Condition{
			database.WhereCond("script_id", database.Equal, scriptID),
		},
	})

	var count int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return count, nil
}

// FetchCandidates returns one page of unprocessed candidate rows, ordered by
// lead id for stable paging.
func (r *WarehouseRepo) FetchCandidates(
	ctx context.Context,
	params core.FetchCandidatesParams,
) ([]*model.Record, error) {
	if params.ScriptID == "" {
		return nil, ErrScriptIDRequired
	}
	if params.Limit < 1 {
		return nil, nil
	}
	keyColumn, err := r.resolveKeyColumn(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(candidateColumns)+1)
	columns = append(columns, candidateColumns...)
	columns = append(columns, keyColumn)

	query, args := database.BuildPreFilterQuery(database.PreFilterOptions{
		CandidateTable: r.cfg.CandidateTable,
		CacheTable:     r.cfg.CacheTable,
		KeyColumn:      keyColumn,
		Columns:        columns,
		Conditions: []database.Condition{
			database.WhereCond("script_id", database.Equal, params.ScriptID),
		},
		OrderBy: "lead_id",
		Limit:   params.Limit,
		Offset:  params.Offset,
	})

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	records := make([]*model.Record, 0, params.Limit)
	for rows.Next() {
		record, scanErr := scanCandidate(rows)
		if scanErr != nil {
			return nil, apperrors.MapDBError(scanErr)
		}
		records = append(records, record)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(rowsErr)
	}
	return records, nil
}

// scanCandidate scans one candidate row. Nullable source columns collapse to
// empty strings; the record validator decides what is usable.
func scanCandidate(rows *sql.Rows) (*model.Record, error) {
	var (
		leadID    sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		address   sql.NullString
		city      sql.NullString
		state     sql.NullString
		zip       sql.NullString
		keyValue  sql.NullString
	)
	if err := rows.Scan(
		&leadID, &firstName, &lastName, &address, &city, &state, &zip, &keyValue,
	); err != nil {
		return nil, fmt.Errorf("scan candidate row: %w", err)
	}
	return &model.Record{
		LeadID:      leadID.String,
		FirstName:   firstName.String,
		LastName:    lastName.String,
		Address:     address.String,
		AddressNorm: keyValue.String,
		City:        city.String,
		State:       state.String,
		Zip:         zip.String,
	}, nil
}
