package view

import (
	"slices"
	"tabula/internal/model"
)

// UniqueValues returns the distinct values of col across records, sorted
// ascending. Pass the full fetched set, not the derived view, so that the
// choices offered by a filter do not shrink as other filters are applied.
func UniqueValues(records []model.Record, col Column) []string {
	seen := make(map[string]struct{}, len(records))
	values := make([]string, 0, len(records))
	for _, r := range records {
		v := col.Value(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

// Filterable reports whether col offers a useful filter over records. The
// date-range column always does; value-set columns need at least two
// distinct values.
func Filterable(records []model.Record, col Column) bool {
	if col.Kind() == KindDateRange {
		return true
	}
	return len(UniqueValues(records, col)) > 1
}
