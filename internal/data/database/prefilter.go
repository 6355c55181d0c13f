package database

// PreFilterOptions describes a paged candidate query that excludes rows
// whose key already exists in the processed-cache table. The exclusion runs
// inside the database so excluded rows are never transferred.
type PreFilterOptions struct {
	// CandidateTable is the table holding candidate rows.
	CandidateTable string
	// CacheTable is the table of already-processed keys.
	CacheTable string
	// KeyColumn is the column shared by both tables.
	KeyColumn string

	Columns    []string
	Conditions []Condition
	OrderBy    string
	Limit      int
	Offset     int
}

// BuildPreFilterQuery builds the paged SELECT with the anti-join pushdown.
// Rows whose key column is NULL are excluded as well; they could never be
// matched against the cache.
func BuildPreFilterQuery(opts PreFilterOptions) (string, []any) {
	selectOpts := []SelectQueryOption{
		WithColumns(opts.Columns...),
		WithCondition(WhereCond(opts.KeyColumn, IsNotNull, nil)),
		WithAntiJoin(opts.CacheTable, opts.KeyColumn),
		WithLimit(opts.Limit),
		WithOffset(opts.Offset),
	}
	for _, cond := range opts.Conditions {
		selectOpts = append(selectOpts, WithCondition(cond))
	}
	if opts.OrderBy != "" {
		selectOpts = append(selectOpts, WithOrderBy(opts.OrderBy, "ASC"))
	}
	return BuildSelectQuery(NewSelectQueryOptions(opts.CandidateTable, selectOpts...))
}

// BuildPreFilterCount builds the matching COUNT(*) query, without paging.
func BuildPreFilterCount(opts PreFilterOptions) (string, []any) {
	selectOpts := []SelectQueryOption{
		WithCountOnly(),
		WithCondition(WhereCond(opts.KeyColumn, IsNotNull, nil)),
		WithAntiJoin(opts.CacheTable, opts.KeyColumn),
	}
	for _, cond := range opts.Conditions {
		selectOpts = append(selectOpts, WithCondition(cond))
	}
	return BuildSelectQuery(NewSelectQueryOptions(opts.CandidateTable, selectOpts...))
}
