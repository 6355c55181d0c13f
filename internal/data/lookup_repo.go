package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leadforge/leadscreen/internal/core"
	apperrors "github.com/leadforge/leadscreen/internal/errors"
)

// sqlite refuses statements with more bind parameters than this.
const sqliteMaxBindParams = 999

// LookupRepoConfig holds configuration for the local DNC lookup store.
type LookupRepoConfig struct {
	// Table is the lookup table name.
	Table string
	// KeyColumn is the column holding normalized phone numbers.
	KeyColumn string
	// MaxParams caps bind parameters per query. Clamped to the sqlite limit.
	MaxParams int

	Logger *slog.Logger
}

// LookupRepo answers set-membership queries against the local do-not-call
// snapshot, a sqlite database refreshed out of band. Large key sets are
// split into chunks that respect the bind-parameter limit.
type LookupRepo struct {
	DB     *sql.DB
	cfg    LookupRepoConfig
	logger *slog.Logger
}

// NewLookupRepo creates a new LookupRepo with the given database connection
// and configuration.
func NewLookupRepo(db *sql.DB, cfg LookupRepoConfig) *LookupRepo {
	if cfg.Table == "" {
		cfg.Table = "dnc_numbers"
	}
	if cfg.KeyColumn == "" {
		cfg.KeyColumn = "phone"
	}
	if cfg.MaxParams < 1 || cfg.MaxParams > sqliteMaxBindParams {
		cfg.MaxParams = sqliteMaxBindParams
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupRepo{DB: db, cfg: cfg, logger: logger}
}

var _ core.DNCLookup = (*LookupRepo)(nil)

// MatchedKeys returns the subset of keys present in the lookup table. Keys
// are deduplicated before chunking; an empty input issues no query.
func (r *LookupRepo) MatchedKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	if r.DB == nil {
		return nil, ErrLookupNotConfigured
	}

	unique := dedupeKeys(keys)
	matched := make(map[string]struct{}, len(unique))
	if len(unique) == 0 {
		return matched, nil
	}

	for start := 0; start < len(unique); start += r.cfg.MaxParams {
		end := start + r.cfg.MaxParams
		if end > len(unique) {
			end = len(unique)
		}
		if err := r.matchChunk(ctx, unique[start:end], matched); err != nil {
			return nil, err
		}
	}

	r.logger.DebugContext(ctx, "dnc lookup complete",
		"keys", len(unique),
		"matched", len(matched))
	return matched, nil
}

func (r *LookupRepo) matchChunk(ctx context.Context, chunk []string, matched map[string]struct{}) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
		r.cfg.KeyColumn, r.cfg.Table, r.cfg.KeyColumn, placeholders)

	args := make([]any, len(chunk))
	for i, key := range chunk {
		args[i] = key
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		if isMissingLookupTable(err) {
			return apperrors.SchemaMismatchf("lookup table %q does not exist", r.cfg.Table)
		}
		return apperrors.Transient("dnc lookup query failed", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if scanErr := rows.Scan(&key); scanErr != nil {
			return apperrors.Transient("dnc lookup scan failed", scanErr)
		}
		matched[key] = struct{}{}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return apperrors.Transient("dnc lookup rows failed", rowsErr)
	}
	return nil
}

// dedupeKeys removes duplicates preserving first-seen order. Order matters
// only for deterministic chunk boundaries.
func dedupeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	unique := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	return unique
}

func isMissingLookupTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
