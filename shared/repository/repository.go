// Package repository holds the generic table gateway every domain repository embeds.
// Columns come from the model's db/table/column tags; filters come from dto.FilterGroup.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"
	"strings"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/shared/constant"
	"guesthouse/shared/dto"
	"guesthouse/shared/failure"
	"guesthouse/shared/logger"

	"github.com/jmoiron/sqlx"
)

var ErrRequiredFilter = errors.New("refusing to run without a filter")

type column struct {
	name  string
	table string
	alias string
}

// expr renders the column for a SELECT list.
func (c column) expr() string {
	switch {
	case c.table == "":
		return c.name
	case c.alias != "":
		return c.table + "." + c.name + " AS " + c.alias
	default:
		return c.table + "." + c.name
	}
}

// key is the name clients use for the column in sorting and projections.
func (c column) key() string {
	if c.alias != "" {
		return c.alias
	}

	return c.name
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

type preparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// joiner is implemented by models that read from more than one table.
type joiner interface {
	GetJoinQuery() string
}

type Repository[T any] struct {
	db         *postgres.Connection
	otel       otel.Otel
	table      string
	entity     string
	primaryKey string
	columns    []column
	join       string

	// InsertColumns are the columns owned by the table itself, in struct order.
	InsertColumns []string
}

func NewRepository[T any](entityName, tableName, primaryKey string, db *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns, insertColumns := getColumns(tableName, reflect.TypeOf(zero))

	var join string
	if j, ok := any(zero).(joiner); ok {
		join = j.GetJoinQuery()
	}

	return Repository[T]{
		db:            db,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryKey:    primaryKey,
		columns:       columns,
		join:          join,
		InsertColumns: insertColumns,
	}
}

func (repo *Repository[T]) scope(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+repo.entity+"."+op)
}

// fail records err on the span and turns constraint violations into failures.
func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	if fail := failure.FromDatabase(err); fail != nil {
		return fail //nolint:wrapcheck
	}

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

// query prepares a named statement against the reader and hands it to run.
func (repo *Repository[T]) query(ctx context.Context, scope otel.Scope, action, query string, run func(*sqlx.NamedStmt) error) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := repo.reader(ctx).PrepareNamedContext(ctx, query)
	if err != nil {
		return repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = run(stmt); err != nil {
		return repo.fail(scope, action, err)
	}

	return nil
}

func (repo *Repository[T]) exec(ctx context.Context, scope otel.Scope, action, query string, arg any) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.writer(ctx).NamedExecContext(ctx, query, arg); err != nil {
		return repo.fail(scope, action, err)
	}

	return nil
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	ctx, scope := repo.scope(ctx, "Insert")
	defer scope.End()

	placeholders := make([]string, len(repo.InsertColumns))
	for i, col := range repo.InsertColumns {
		placeholders[i] = ":" + col
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		repo.table, strings.Join(repo.InsertColumns, ", "), strings.Join(placeholders, ", "))

	return repo.exec(ctx, scope, "insert", query, model)
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return false, ErrRequiredFilter
	}

	var exist bool

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)
	err := repo.query(ctx, scope, "check existence", query, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &exist, args)
	})

	return exist, err
}

// Get returns the first matching row, or the zero value when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	return repo.get(ctx, scope, filter, "", columns)
}

// GetForUpdate is Get with a row lock. It must run inside a transaction to hold the lock.
func (repo *Repository[T]) GetForUpdate(ctx context.Context, filter dto.FilterGroup) (T, error) {
	ctx, scope := repo.scope(ctx, "GetForUpdate")
	defer scope.End()

	if _, ok := postgres.TxFromContext(ctx); !ok {
		scope.AddEvent("row lock requested outside a transaction")
	}

	return repo.get(ctx, scope, filter, "FOR UPDATE OF "+repo.table, nil)
}

func (repo *Repository[T]) get(ctx context.Context, scope otel.Scope, filter dto.FilterGroup, suffix string, columns []string) (T, error) {
	var model T

	where, args := repo.BuildWhereClause(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s", repo.selectList(columns), repo.table, repo.join, where, suffix)

	err := repo.query(ctx, scope, "get data", query, func(stmt *sqlx.NamedStmt) error {
		err := stmt.GetContext(ctx, &model, args)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}

		return err
	})

	return model, err
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)

	var ordering, pagination string

	switch {
	case params.Page > 0 && params.Limit > 0:
		args["limit"] = params.Limit
		args["offset"] = (params.Page - 1) * params.Limit
		pagination = "LIMIT :limit OFFSET :offset"
	case params.Limit > 0:
		args["limit"] = params.Limit
		pagination = "LIMIT :limit"
	}

	if params.SortBy != "" && params.SortDir != "" {
		if col, ok := repo.sortColumn(params.SortBy); ok {
			ordering = fmt.Sprintf("ORDER BY %s %s", col, params.SortDir)
		}
	}

	var models []T

	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s %s", repo.selectList(columns), repo.table, repo.join, where, ordering, pagination)
	err := repo.query(ctx, scope, "list data", query, func(stmt *sqlx.NamedStmt) error {
		return stmt.SelectContext(ctx, &models, args)
	})

	return models, err
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)

	var count int

	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s %s", repo.table, repo.primaryKey, repo.table, repo.join, where)
	err := repo.query(ctx, scope, "count data", query, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &count, args)
	})

	return count, err
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Delete")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return ErrRequiredFilter
	}

	return repo.exec(ctx, scope, "delete data", fmt.Sprintf("DELETE FROM %s %s", repo.table, where), args)
}

// Update sets the given columns on every matching row. An empty filter is refused.
func (repo *Repository[T]) Update(ctx context.Context, fields map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Update")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return ErrRequiredFilter
	}

	// Sorted so the statement text is stable across calls.
	names := slices.Collect(maps.Keys(fields))
	sort.Strings(names)

	assignments := make([]string, len(names))
	for i, name := range names {
		assignments[i] = fmt.Sprintf("%s = :%s", name, name)
	}

	maps.Copy(args, fields)

	query := fmt.Sprintf("UPDATE %s SET %s %s", repo.table, strings.Join(assignments, ", "), where)

	return repo.exec(ctx, scope, "update data", query, args)
}

// Aggregate selects the given expressions over the table, its joins and filter,
// followed by suffix (GROUP BY, ORDER BY...), and scans all rows into dest.
func (repo *Repository[T]) Aggregate(ctx context.Context, dest any, selects string, filter dto.FilterGroup, suffix string) error {
	ctx, scope := repo.scope(ctx, "Aggregate")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)

	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s", selects, repo.table, repo.join, where, suffix)

	return repo.query(ctx, scope, "aggregate data", query, func(stmt *sqlx.NamedStmt) error {
		return stmt.SelectContext(ctx, dest, args)
	})
}

// BuildWhereClause renders filter as a WHERE clause with its named arguments.
// The returned map is never nil.
func (repo *Repository[T]) BuildWhereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return " WHERE " + where + " ", args
}

// reader returns the transaction carried by ctx, or the read pool.
func (repo *Repository[T]) reader(ctx context.Context) preparer {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Read
}

// writer returns the transaction carried by ctx, or the write pool.
func (repo *Repository[T]) writer(ctx context.Context) execer {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Write
}

// sortColumn resolves a client supplied sort key to a known column.
func (repo *Repository[T]) sortColumn(sortBy string) (string, bool) {
	for _, col := range repo.columns {
		if col.key() != sortBy {
			continue
		}

		if col.alias != "" {
			return col.alias, true
		}

		return col.table + "." + col.name, true
	}

	return "", false
}

// selectList renders the SELECT list, narrowed to only when given.
func (repo *Repository[T]) selectList(only []string) string {
	exprs := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col.name) {
			continue
		}

		exprs = append(exprs, col.expr())
	}

	return strings.Join(exprs, ", ")
}

// getColumns walks the struct tags. Embedded structs are flattened; fields tagged
// with another table are selectable but never inserted.
func getColumns(table string, typ reflect.Type) (columns []column, insertColumns []string) {
	for i := range typ.NumField() {
		field := typ.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			nested, nestedInsert := getColumns(table, field.Type)
			columns = append(columns, nested...)
			insertColumns = append(insertColumns, nestedInsert...)

			continue
		}

		name := field.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}

		owner := field.Tag.Get("table")
		if owner == "" {
			owner = table
		}

		if owner == table {
			insertColumns = append(insertColumns, name)
		}

		if source := field.Tag.Get("column"); source != "" {
			columns = append(columns, column{name: source, table: owner, alias: name})
		} else {
			columns = append(columns, column{name: name, table: owner})
		}
	}

	return columns, insertColumns
}
