package view

import (
	"errors"
	"fmt"
	"slices"
	"tabula/internal/model"
	"time"
)

// ErrInvariantViolation reports a filter operation applied to a column of
// the wrong kind. It signals a wiring bug in the caller.
var ErrInvariantViolation = errors.New("filter invariant violation")

// FilterState is the filter of one column: either a ValueSet or a
// DateRange.
type FilterState interface {
	Kind() FilterKind
	Empty() bool
	filterState()
}

// ValueSet accepts rows whose column value is in the set. An empty set
// accepts every row.
type ValueSet struct {
	accepted map[string]struct{}
}

// NewValueSet returns a set accepting the given values.
func NewValueSet(values ...string) ValueSet {
	vs := ValueSet{accepted: make(map[string]struct{}, len(values))}
	for _, v := range values {
		vs.accepted[v] = struct{}{}
	}
	return vs
}

func (ValueSet) filterState() {}

// Kind returns KindValueSet.
func (ValueSet) Kind() FilterKind { return KindValueSet }

// Empty reports whether the set restricts nothing.
func (s ValueSet) Empty() bool { return len(s.accepted) == 0 }

// Len returns the number of accepted values.
func (s ValueSet) Len() int { return len(s.accepted) }

// Contains reports whether v is in the set.
func (s ValueSet) Contains(v string) bool {
	_, ok := s.accepted[v]
	return ok
}

// Accepts reports whether a row with column value v passes the filter.
func (s ValueSet) Accepts(v string) bool {
	return s.Empty() || s.Contains(v)
}

// Values returns the accepted values in ascending order.
func (s ValueSet) Values() []string {
	out := make([]string, 0, len(s.accepted))
	for v := range s.accepted {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (s ValueSet) clone() ValueSet {
	c := ValueSet{accepted: make(map[string]struct{}, len(s.accepted))}
	for v := range s.accepted {
		c.accepted[v] = struct{}{}
	}
	return c
}

// DateRange accepts rows whose timestamp lies within [Start, End]. A nil
// bound is open on that side. Start after End is allowed and accepts
// nothing.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (DateRange) filterState() {}

// Kind returns KindDateRange.
func (DateRange) Kind() FilterKind { return KindDateRange }

// Empty reports whether both bounds are open.
func (r DateRange) Empty() bool { return r.Start == nil && r.End == nil }

// Accepts reports whether t lies within the range.
func (r DateRange) Accepts(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

func (r DateRange) clone() DateRange {
	var c DateRange
	if r.Start != nil {
		s := *r.Start
		c.Start = &s
	}
	if r.End != nil {
		e := *r.End
		c.End = &e
	}
	return c
}

// Filters holds the filter state of every column. Value-set columns and
// the date-range column are stored apart, so no column can ever hold the
// other kind of state.
type Filters struct {
	sets  map[Column]ValueSet
	dates DateRange
}

// NewFilters returns filter state that restricts nothing.
func NewFilters() *Filters {
	f := &Filters{sets: make(map[Column]ValueSet, numColumns-1)}
	for _, c := range Columns() {
		if c.Kind() == KindValueSet {
			f.sets[c] = NewValueSet()
		}
	}
	return f
}

// State returns the filter state of col.
func (f *Filters) State(col Column) FilterState {
	if col.Kind() == KindDateRange {
		return f.dates
	}
	return f.sets[col]
}

// Active reports whether col currently restricts any rows.
func (f *Filters) Active(col Column) bool {
	return !f.State(col).Empty()
}

// ToggleValue adds value to, or removes it from, the accepted set of col.
func (f *Filters) ToggleValue(col Column, value string, included bool) error {
	set, ok := f.sets[col]
	if !ok {
		return fmt.Errorf("%w: toggle value on %s, which is not a value-set column", ErrInvariantViolation, col)
	}
	if included {
		set.accepted[value] = struct{}{}
	} else {
		delete(set.accepted, value)
	}
	return nil
}

// SetRangeStart replaces the lower bound of col, keeping the upper bound.
func (f *Filters) SetRangeStart(col Column, start *time.Time) error {
	if col.Kind() != KindDateRange {
		return fmt.Errorf("%w: set range start on %s, which is not a range column", ErrInvariantViolation, col)
	}
	f.dates = DateRange{Start: copyTime(start), End: f.dates.End}
	return nil
}

// SetRangeEnd replaces the upper bound of col, keeping the lower bound.
func (f *Filters) SetRangeEnd(col Column, end *time.Time) error {
	if col.Kind() != KindDateRange {
		return fmt.Errorf("%w: set range end on %s, which is not a range column", ErrInvariantViolation, col)
	}
	f.dates = DateRange{Start: f.dates.Start, End: copyTime(end)}
	return nil
}

// Clear resets col to its unrestricted state.
func (f *Filters) Clear(col Column) {
	if col.Kind() == KindDateRange {
		f.dates = DateRange{}
		return
	}
	if _, ok := f.sets[col]; ok {
		f.sets[col] = NewValueSet()
	}
}

// ClearAll resets every column.
func (f *Filters) ClearAll() {
	for _, c := range Columns() {
		f.Clear(c)
	}
}

// ActiveCount returns the number of columns that restrict rows.
func (f *Filters) ActiveCount() int {
	n := 0
	for _, c := range Columns() {
		if f.Active(c) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of f.
func (f *Filters) Clone() *Filters {
	c := &Filters{sets: make(map[Column]ValueSet, len(f.sets)), dates: f.dates.clone()}
	for col, set := range f.sets {
		c.sets[col] = set.clone()
	}
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Filter returns the records that pass every column's filter, in their
// input order. A nil f restricts nothing.
func Filter(records []model.Record, f *Filters) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if f == nil || f.accepts(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *Filters) accepts(r model.Record) bool {
	for _, c := range Columns() {
		if c.Kind() == KindDateRange {
			if !f.dates.Accepts(r.CreatedAt) {
				return false
			}
			continue
		}
		if !f.sets[c].Accepts(c.Value(r)) {
			return false
		}
	}
	return true
}
