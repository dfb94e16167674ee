// Package shared collects small helpers used across the domain services and handlers.
package shared

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"guesthouse/shared/cache"
	"guesthouse/shared/constant"
	"guesthouse/shared/dto"
	"guesthouse/shared/timezone"

	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

// QueryFlag reads a boolean query parameter. Anything unparsable counts as false.
func QueryFlag(query url.Values, key string) bool {
	raw := query.Get(key)
	if raw == "" {
		return false
	}

	flag, err := strconv.ParseBool(raw)
	if err != nil {
		log.Debug().Str("param", key).Str("value", raw).Msg("ignoring malformed boolean query parameter")

		return false
	}

	return flag
}

// QueryInt reads an integer query parameter, returning 0 when it is absent or malformed
// so the service applies its own default.
func QueryInt(query url.Values, key string) int {
	return QueryIntOr(query, key, 0)
}

// QueryIntOr returns fallback when key is absent or malformed, so an explicit 0 stays 0.
func QueryIntOr(query url.Values, key string, fallback int) int {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Debug().Str("param", key).Str("value", raw).Msg("ignoring malformed integer query parameter")

		return fallback
	}

	return n
}

// CalculateTotalPage never reports fewer than one page.
func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return (total + limit - 1) / limit
}

// TransformFields maps the non-zero db-tagged fields of an update request to
// columns and stamps the modification metadata.
func TransformFields(data any, actor string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(data))
	typ := val.Type()

	fields := make(map[string]any, val.NumField()+2)

	for i := range val.NumField() {
		column := typ.Field(i).Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}

		field := val.Field(i)
		if field.IsZero() {
			continue
		}

		fields[column] = field.Interface()
	}

	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = actor

	return fields
}

// FilterByID matches a single value on table.field, typically the primary key.
func FilterByID(id, field, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: field, Value: id, Operator: dto.FilterOperatorEq, Table: table},
		},
	}
}

// SearchFilter ORs a case-insensitive substring match of q over "table.field" columns.
func SearchFilter(q string, columns ...string) dto.FilterGroup {
	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorOr}

	for _, col := range columns {
		table, field, found := strings.Cut(col, ".")
		if !found {
			table, field = "", col
		}

		group.Filters = append(group.Filters, dto.Filter{
			Field:    field,
			ArgName:  "q_" + strings.ReplaceAll(col, ".", "_"),
			Operator: dto.FilterOperatorLike,
			Value:    q,
			Table:    table,
		})
	}

	return group
}

// EqFilter appends an equality filter on table.field when value is set.
func EqFilter(group *dto.FilterGroup, table, field, value string) {
	if value == "" {
		return
	}

	group.Filters = append(group.Filters, dto.Filter{
		Field:    field,
		Operator: dto.FilterOperatorEq,
		Value:    value,
		Table:    table,
	})
}

// BuildCacheKey joins prefix and parts with ':'.
func BuildCacheKey(prefix string, parts ...any) string {
	var sb strings.Builder

	sb.WriteString(prefix)

	for _, part := range parts {
		sb.WriteString(cacheKeySeparator)
		sb.WriteString(fmt.Sprint(part))
	}

	return sb.String()
}

// BuildCacheKeyWithQuery derives a stable key for a list query from its paging and filters.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	raw, err := json.Marshal(struct {
		Params dto.QueryParams `json:"params"`
		Where  string          `json:"where"`
		Args   map[string]any  `json:"args"`
	}{params, where, args})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to marshal cache key query")

		return BuildCacheKey(prefix, params.Page, params.Limit, params.SortBy, params.SortDir, where)
	}

	sum := sha1.Sum(raw) //nolint:gosec

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// Cached serves key from the cache. On a miss it calls load and stores the
// result in the background; load errors are returned as is and never cached.
func Cached[T any](ctx context.Context, redisCache cache.RedisCache, key string, ttl int, load func(context.Context) (T, error)) (T, error) {
	var res T

	if err := redisCache.Get(ctx, key, &res); err == nil {
		log.Debug().Str("cacheKey", key).Msg("cache hit")

		return res, nil
	}

	res, err := load(ctx)
	if err != nil {
		return res, err
	}

	go func(ctx context.Context) {
		if err := redisCache.Save(ctx, key, res, ttl); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save cache entry")
		}
	}(context.WithoutCancel(ctx))

	return res, nil
}

// InvalidateCaches removes every key starting with prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+"*"); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}
