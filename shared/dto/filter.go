package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterOperatorLess      = "less"
	FilterOperatorGreater   = "greater"
	FilterPlainQuery        = "plain"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
	FilterOperatorLess:      "<",
	FilterOperatorGreater:   ">",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Filter is a single predicate on a column. Value is always bound as a named
// argument, never spliced into the statement, except for plain queries whose
// Value is trusted SQL written by the repository itself.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string
	Table    string
	// Args holds the named parameters referenced by a plain query.
	Args map[string]any
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) argName() string {
	if f.ArgName != "" {
		return f.ArgName
	}

	return f.Field
}

// GetWhereClause renders the predicate. Unknown operators render nothing.
func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	col, name := f.column(), f.argName()

	if op, ok := comparisons[f.Operator]; ok {
		args[name] = f.Value

		return fmt.Sprintf("%s %s :%s", col, op, name), args
	}

	switch f.Operator {
	case FilterOperatorLike:
		args[name] = "%" + likeEscaper.Replace(fmt.Sprint(f.Value)) + "%"

		return fmt.Sprintf("%s ILIKE :%s", col, name), args
	case FilterOperatorIn:
		val := reflect.ValueOf(f.Value)
		if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
			args[name] = f.Value

			return fmt.Sprintf("%s = :%s", col, name), args
		}

		if val.Len() == 0 {
			return "FALSE", args
		}

		placeholders := make([]string, val.Len())

		for i := range val.Len() {
			key := fmt.Sprintf("%s_%d", name, i)
			args[key] = val.Index(i).Interface()
			placeholders[i] = ":" + key
		}

		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), args
	case FilterPlainQuery:
		query, _ := f.Value.(string)
		maps.Copy(args, f.Args)

		return "(" + query + ")", args
	case FilterIsNotNull:
		return col + " IS NOT NULL", args
	case FilterIsNull:
		return col + " IS NULL", args
	}

	return "", args
}

// FilterGroup joins Filters and nested FilterGroups with Operator (AND when empty).
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var (
			where string
			arg   map[string]any
		)

		switch v := item.(type) {
		case Filter:
			where, arg = v.GetWhereClause()
		case FilterGroup:
			where, arg = v.GetWhereClause()
		default:
			continue
		}

		if where == "" {
			continue
		}

		clauses = append(clauses, where)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}
