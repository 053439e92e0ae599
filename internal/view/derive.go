package view

import "tabula/internal/model"

// Snapshot is every input of the derived view at one instant.
type Snapshot struct {
	Records []model.Record
	Sort    *SortDirective
	Filters *Filters
}

// Derive computes the rows to display: the records sorted by the
// directive, then narrowed by the filters. Filtering after sorting means a
// filter only ever removes rows and never reorders the survivors. Derive
// does not modify the snapshot.
func Derive(s Snapshot) []model.Record {
	return Filter(Sort(s.Records, s.Sort), s.Filters)
}
