package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	In                 ConditionType = "IN"
	IsNotNull          ConditionType = "IS NOT NULL"
	Custom             ConditionType = "CUSTOM"

	defaultLimit  = -1
	defaultOffset = -1
)

// Condition is one WHERE predicate. Field names are sanitized; Custom
// conditions carry raw SQL whose $n placeholders are renumbered at build time.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery *string
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // panic prevents misuse; custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{Field: field, Type: condType, Value: value}
}

func WhereRawCond(rawQuery string, params ...any) Condition {
	queryStr := rawQuery
	var value any = params
	if len(params) == 0 {
		value = nil
	}
	return Condition{Type: Custom, rawQuery: &queryStr, Value: value}
}

// AntiJoin describes a NOT EXISTS correlated subquery used to exclude rows of
// the main table already present in another table, matched on a shared key.
type AntiJoin struct {
	// Table is the excluding table.
	Table string
	// Key is the column matched between both tables.
	Key string
}

// SelectQueryOptions describes one SELECT against a single table, optionally
// excluding rows through an anti-join.
type SelectQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	AntiJoins  []AntiJoin
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

type SelectQueryOption func(*SelectQueryOptions)

func NewSelectQueryOptions(table string, opts ...SelectQueryOption) *SelectQueryOptions {
	options := &SelectQueryOptions{
		Table:  table,
		Limit:  defaultLimit,
		Offset: defaultOffset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) SelectQueryOption {
	return func(o *SelectQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) SelectQueryOption {
	return func(o *SelectQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithAntiJoin excludes rows whose key value exists in the given table.
func WithAntiJoin(table, key string) SelectQueryOption {
	return func(o *SelectQueryOptions) {
		o.AntiJoins = append(o.AntiJoins, AntiJoin{Table: table, Key: key})
	}
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) SelectQueryOption {
	return func(o *SelectQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) SelectQueryOption {
	return func(o *SelectQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) SelectQueryOption {
	return func(o *SelectQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly sets the query to count only.
func WithCountOnly() SelectQueryOption {
	return func(o *SelectQueryOptions) {
		o.CountOnly = true
	}
}

// sanitizeIdentifier wraps a single string identifier for sanitization.
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// sanitizeQualifiedIdentifier sanitizes qualified identifiers like
// "table.column" by quoting each dotted part.
func sanitizeQualifiedIdentifier(ident string) string {
	parts := strings.Split(ident, ".")
	return pgx.Identifier(parts).Sanitize()
}

func buildSelectClause(options *SelectQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*) "
	}
	if len(options.Columns) == 0 {
		return "SELECT * "
	}

	sanitized := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		if strings.Contains(col, ".") {
			sanitized[i] = sanitizeQualifiedIdentifier(col)
		} else {
			sanitized[i] = sanitizeIdentifier(col)
		}
	}
	return fmt.Sprintf("SELECT %s ", strings.Join(sanitized, ", "))
}

// buildAntiJoinClauses renders each anti-join as a NOT EXISTS predicate
// correlated on the shared key. Anti-joins take no bind parameters.
func buildAntiJoinClauses(table string, antiJoins []AntiJoin) []string {
	clauses := make([]string, 0, len(antiJoins))
	mainTable := sanitizeIdentifier(table)
	for _, aj := range antiJoins {
		if aj.Table == "" || aj.Key == "" {
			continue
		}
		excluding := sanitizeIdentifier(aj.Table)
		key := sanitizeIdentifier(aj.Key)
		clauses = append(clauses, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.%s)",
			excluding, excluding, key, mainTable, key,
		))
	}
	return clauses
}

func buildPaginationAndOrderClause(
	options *SelectQueryOptions,
	startParamIndex int,
	initialArgs []any,
) (string, []any) {
	var clause strings.Builder
	args := initialArgs
	paramCount := startParamIndex

	if options.OrderBy != "" {
		clause.WriteString(" ORDER BY ")
		clause.WriteString(sanitizeQualifiedIdentifier(options.OrderBy))
		upperOrderDir := strings.ToUpper(options.OrderDir)
		if upperOrderDir == "ASC" || upperOrderDir == "DESC" {
			clause.WriteString(" ")
			clause.WriteString(upperOrderDir)
		}
	}

	if options.Limit != defaultLimit {
		clause.WriteString(fmt.Sprintf(" LIMIT $%d", paramCount))
		args = append(args, options.Limit)
		paramCount++
	}
	if options.Offset != defaultOffset {
		clause.WriteString(fmt.Sprintf(" OFFSET $%d", paramCount))
		args = append(args, options.Offset)
	}

	return clause.String(), args
}

// BuildSelectQuery constructs a SQL query string and arguments from options,
// sanitizing every identifier. Anti-joins, WHERE conditions, ORDER BY, LIMIT,
// and OFFSET are emitted in that order.
//
// Example:
//
//	options := NewSelectQueryOptions("leads",
//		WithColumns("lead_id", "address_norm"),
//		WithCondition(WhereCond("state", Equal, "TX")),
//		WithAntiJoin("processed_leads", "address_norm"),
//		WithOrderBy("lead_id", "ASC"),
//		WithLimit(250),
//		WithOffset(500),
//	)
//	query, args := BuildSelectQuery(options)
func BuildSelectQuery(options *SelectQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, whereArgs, nextParamCount := buildWhereClause(options.Conditions, 1)
	predicates := buildAntiJoinClauses(options.Table, options.AntiJoins)
	if whereClause != "" {
		predicates = append([]string{whereClause}, predicates...)
	}
	if len(predicates) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(predicates, " AND "))
	}

	if options.CountOnly {
		return query.String(), whereArgs
	}

	paginationOrderClause, finalArgs := buildPaginationAndOrderClause(
		options,
		nextParamCount,
		whereArgs,
	)
	query.WriteString(paginationOrderClause)

	return query.String(), finalArgs
}

func handleStandardCondition(
	cond Condition,
	sanitizedField string,
	paramCount int,
) (string, []any, int) {
	conditionStr := fmt.Sprintf("%s %s $%d", sanitizedField, cond.Type, paramCount)
	return conditionStr, []any{cond.Value}, paramCount + 1
}

func handleInCondition(cond Condition, sanitizedField string, paramCount int) (string, []any, int) {
	// Accept any slice type via reflection
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", []any{}, paramCount
	}

	placeholders := make([]string, rv.Len())
	args := make([]any, rv.Len())
	currentParam := paramCount
	for i := range rv.Len() {
		placeholders[i] = fmt.Sprintf("$%d", currentParam)
		args[i] = rv.Index(i).Interface()
		currentParam++
	}
	conditionStr := fmt.Sprintf("%s IN (%s)", sanitizedField, strings.Join(placeholders, ", "))
	return conditionStr, args, currentParam
}

func handleCustomCondition(cond Condition, paramCount int) (string, []any, int) {
	if cond.rawQuery == nil || *cond.rawQuery == "" {
		return "", []any{}, paramCount
	}
	conditionStr := *cond.rawQuery

	params, _ := cond.Value.([]any)
	if len(params) == 0 {
		return conditionStr, []any{}, paramCount
	}

	// Renumber $n placeholders to follow the parameters emitted so far.
	args := []any{}
	currentParam := paramCount
	idxMap := make(map[int]int)
	conditionStr = placeholderRegex.ReplaceAllStringFunc(conditionStr, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, ok := idxMap[n]; !ok {
			idxMap[n] = currentParam
			args = append(args, params[n-1])
			currentParam++
		}
		return fmt.Sprintf("$%d", idxMap[n])
	})
	return conditionStr, args, currentParam
}

var placeholderRegex = regexp.MustCompile(`\$(\d+)`)

func processCondition(cond Condition, paramCount int) (string, []any, int) {
	if cond.Type == Custom {
		return handleCustomCondition(cond, paramCount)
	}
	if cond.Field == "" {
		return "", []any{}, paramCount
	}
	sanitizedField := sanitizeIdentifier(cond.Field)

	switch cond.Type {
	case IsNotNull:
		return sanitizedField + " IS NOT NULL", []any{}, paramCount
	case In:
		return handleInCondition(cond, sanitizedField, paramCount)
	case Equal, NotEqual, GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual:
		return handleStandardCondition(cond, sanitizedField, paramCount)
	}
	return "", []any{}, paramCount
}

func buildWhereClause(inputConditions []Condition, startParamIndex int) (string, []any, int) {
	conditions := make([]string, 0, len(inputConditions))
	args := []any{}
	paramCount := startParamIndex

	for _, cond := range inputConditions {
		conditionStr, newArgs, nextParamCount := processCondition(cond, paramCount)
		if conditionStr != "" {
			conditions = append(conditions, conditionStr)
			args = append(args, newArgs...)
			paramCount = nextParamCount
		}
	}

	if len(conditions) == 0 {
		return "", args, paramCount
	}
	return strings.Join(conditions, " AND "), args, paramCount
}
