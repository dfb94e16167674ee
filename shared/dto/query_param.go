package dto

import (
	"net/http"
	"strconv"
	"strings"

	"guesthouse/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// QueryParams is the paging and ordering part of a list request.
type QueryParams struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	SortBy  string `json:"sort_by"`
	SortDir string `json:"sort_dir"`
}

// FromRequest reads page, limit, sort_by and sort_dir. Malformed or non-positive
// numbers are ignored, the limit is capped at constant.MaxValueLimit and, with
// withDefaults, missing paging falls back to the first page of DefaultValueLimit rows.
// sort_by is only honoured by the repository when it names a known column.
func (q *QueryParams) FromRequest(r *http.Request, withDefaults bool) {
	values := r.URL.Query()

	if page := positive(values.Get(constant.RequestParamPage)); page > 0 {
		q.Page = page
	}

	if limit := positive(values.Get(constant.RequestParamLimit)); limit > 0 {
		q.Limit = min(limit, constant.MaxValueLimit)
	}

	if sortBy := strings.TrimSpace(values.Get(constant.RequestParamSortBy)); sortBy != "" {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if !withDefaults {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

// SortDefault orders by field/dir unless the request already chose an ordering.
func (q *QueryParams) SortDefault(field, dir string) {
	if q.SortBy == "" {
		q.SortBy = field
	}

	if q.SortDir == "" {
		q.SortDir = dir
	}
}

func positive(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}

	return n
}
