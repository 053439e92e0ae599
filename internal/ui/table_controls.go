package ui

type tableController interface {
	NextColumn()
	PrevColumn()
	JumpToColumn(number int) bool
	ToggleSortActiveColumn() string
	ClearSort() bool
	HideActiveColumn() bool
	ShowAllColumns()
	FilterBySelectedValue() (string, bool, error)
	ClearFilter() bool
	ClearAllFilters() bool
	TableMeta() string
}

var _ tableController = (*TableModel)(nil)
