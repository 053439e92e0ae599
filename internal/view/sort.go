package view

import (
	"slices"
	"tabula/internal/model"
)

// Direction is the ordering of a sorted column.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortDirective selects the single sorted column. A nil *SortDirective
// means the rows keep the order in which they were fetched.
type SortDirective struct {
	Column    Column
	Direction Direction
}

// Sort returns a copy of records ordered by directive. The sort is stable:
// rows with equal keys keep their input order in both directions.
func Sort(records []model.Record, directive *SortDirective) []model.Record {
	out := slices.Clone(records)
	if directive == nil {
		return out
	}
	col := directive.Column
	desc := directive.Direction == Descending
	slices.SortStableFunc(out, func(a, b model.Record) int {
		c := col.Compare(a, b)
		if desc {
			return -c
		}
		return c
	})
	return out
}

// NextDirective computes the directive after the header of col is
// activated: the active column flips direction, any other column starts
// ascending.
func NextDirective(current *SortDirective, col Column) *SortDirective {
	if current != nil && current.Column == col {
		next := Descending
		if current.Direction == Descending {
			next = Ascending
		}
		return &SortDirective{Column: col, Direction: next}
	}
	return &SortDirective{Column: col, Direction: Ascending}
}
