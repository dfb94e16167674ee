package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"guesthouse/shared/constant"
	"guesthouse/shared/dto"
	"guesthouse/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_FromModel(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	var got dto.Metadata
	got.FromModel(model.Metadata{CreatedAt: created, CreatedBy: "user-1"})

	parsed, err := time.Parse(constant.DateFormat, got.CreatedAt)
	require.NoError(t, err)
	assert.True(t, created.Equal(parsed))
	assert.Equal(t, "user-1", got.CreatedBy)
	assert.Empty(t, got.ModifiedAt)
}

func TestNewMetadata(t *testing.T) {
	meta := model.NewMetadata("reception-1")

	assert.Equal(t, "reception-1", meta.CreatedBy)
	assert.Equal(t, "reception-1", meta.ModifiedBy)
	assert.False(t, meta.CreatedAt.IsZero())
	assert.Equal(t, meta.CreatedAt, meta.ModifiedAt)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		rawQuery     string
		withDefaults bool
		want         dto.QueryParams
	}{
		{
			name:     "all parameters",
			rawQuery: "page=2&limit=20&sort_by=number&sort_dir=asc",
			want:     dto.QueryParams{Page: 2, Limit: 20, SortBy: "number", SortDir: dto.SortDirAsc},
		},
		{
			name:         "defaults when empty",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "nothing without defaults",
			want: dto.QueryParams{},
		},
		{
			name:         "malformed and non-positive numbers fall back",
			rawQuery:     "page=-1&limit=ten",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:         "zero page falls back",
			rawQuery:     "page=0",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "limit is capped",
			rawQuery: "limit=5000",
			want:     dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:     "unknown direction is dropped",
			rawQuery: "sort_by=price&sort_dir=sideways",
			want:     dto.QueryParams{SortBy: "price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/rooms?"+tt.rawQuery, nil)

			var got dto.QueryParams
			got.FromRequest(req, tt.withDefaults)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryParams_SortDefault(t *testing.T) {
	q := dto.QueryParams{}
	q.SortDefault(constant.FieldCreatedAt, dto.SortDirDesc)
	assert.Equal(t, dto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: dto.SortDirDesc}, q)

	chosen := dto.QueryParams{SortBy: "number", SortDir: dto.SortDirAsc}
	chosen.SortDefault(constant.FieldCreatedAt, dto.SortDirDesc)
	assert.Equal(t, "number", chosen.SortBy)
	assert.Equal(t, dto.SortDirAsc, chosen.SortDir)
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "less",
			filter:    dto.Filter{Field: "check_in", Value: 1, Operator: dto.FilterOperatorLess, Table: "bookings"},
			wantWhere: "bookings.check_in < :check_in",
			wantArgs:  map[string]any{"check_in": 1},
		},
		{
			name:      "greater with arg name",
			filter:    dto.Filter{ArgName: "from", Field: "check_out", Value: 2, Operator: dto.FilterOperatorGreater, Table: "bookings"},
			wantWhere: "bookings.check_out > :from",
			wantArgs:  map[string]any{"from": 2},
		},
		{
			name:      "like escapes wildcards",
			filter:    dto.Filter{Field: "name", Value: "50%_off", Operator: dto.FilterOperatorLike, Table: "guests"},
			wantWhere: "guests.name ILIKE :name",
			wantArgs:  map[string]any{"name": `%50\%\_off%`},
		},
		{
			name:      "in expands the slice",
			filter:    dto.Filter{Field: "status", Value: []string{"pending", "done"}, Operator: dto.FilterOperatorIn, Table: "laundry"},
			wantWhere: "laundry.status IN (:status_0, :status_1)",
			wantArgs:  map[string]any{"status_0": "pending", "status_1": "done"},
		},
		{
			name:      "in with nothing matches nothing",
			filter:    dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name: "plain query carries args",
			filter: dto.Filter{
				Operator: dto.FilterPlainQuery,
				Value:    "a < :x",
				Args:     map[string]any{"x": 3},
			},
			wantWhere: "(a < :x)",
			wantArgs:  map[string]any{"x": 3},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "check_out", Operator: dto.FilterIsNull, Table: "attendance"},
			wantWhere: "attendance.check_out IS NULL",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "room_id", Value: "r-1", Operator: dto.FilterOperatorEq, Table: "bookings"},
			dto.Filter{Field: "ignored", Operator: "bogus"},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "guest_id", Value: "g-1", Operator: dto.FilterOperatorEq, Table: "bookings"},
					dto.Filter{Field: "guest_id", Value: "g-2", ArgName: "other", Operator: dto.FilterOperatorEq, Table: "bookings"},
				},
			},
			"not a filter",
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(bookings.room_id = :room_id AND (bookings.guest_id = :guest_id OR bookings.guest_id = :other))", where)
	assert.Equal(t, map[string]any{"room_id": "r-1", "guest_id": "g-1", "other": "g-2"}, args)

	empty := dto.FilterGroup{}
	where, args = empty.GetWhereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)
}
