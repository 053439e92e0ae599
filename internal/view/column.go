// Package view derives the displayed rows of the record table from the raw
// record set, the sort directive, and the per-column filter state.
package view

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"tabula/internal/model"
	"time"
)

// Column identifies one sortable, filterable column of the record table.
type Column int

const (
	ColumnID Column = iota
	ColumnName
	ColumnEmail
	ColumnRole
	ColumnCreatedAt

	numColumns = iota
)

// FilterKind is the kind of filter a column supports.
type FilterKind int

const (
	KindValueSet FilterKind = iota
	KindDateRange
)

// TimestampLayout is the canonical text form of CreatedAt values.
const TimestampLayout = time.RFC3339Nano

var columnNames = [numColumns]string{"id", "name", "email", "role", "created_at"}

var columnLabels = [numColumns]string{"ID", "Name", "Email", "Role", "Timestamp"}

// Columns returns every column in display order.
func Columns() []Column {
	return []Column{ColumnID, ColumnName, ColumnEmail, ColumnRole, ColumnCreatedAt}
}

// ParseColumn resolves a column from its key, as produced by String.
func ParseColumn(s string) (Column, error) {
	for i, name := range columnNames {
		if strings.EqualFold(s, name) {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("unknown column %q", s)
}

func (c Column) valid() bool {
	return c >= 0 && c < numColumns
}

// String returns the column key.
func (c Column) String() string {
	if !c.valid() {
		return fmt.Sprintf("column(%d)", int(c))
	}
	return columnNames[c]
}

// Label returns the header text for the column.
func (c Column) Label() string {
	if !c.valid() {
		return c.String()
	}
	return columnLabels[c]
}

// Kind reports which filter the column supports.
func (c Column) Kind() FilterKind {
	if c == ColumnCreatedAt {
		return KindDateRange
	}
	return KindValueSet
}

// Value extracts the column's value from r in its string form. This is the
// value matched by value-set filters and listed by UniqueValues.
func (c Column) Value(r model.Record) string {
	switch c {
	case ColumnID:
		return strconv.FormatInt(r.ID, 10)
	case ColumnName:
		return r.Name
	case ColumnEmail:
		return r.Email
	case ColumnRole:
		return r.Role
	case ColumnCreatedAt:
		return FormatTimestamp(r.CreatedAt)
	default:
		return ""
	}
}

// Compare orders a and b by the column: numerically for ID, chronologically
// for CreatedAt, and case-insensitively for the text columns.
func (c Column) Compare(a, b model.Record) int {
	switch c {
	case ColumnID:
		return cmp.Compare(a.ID, b.ID)
	case ColumnName:
		return compareFold(a.Name, b.Name)
	case ColumnEmail:
		return compareFold(a.Email, b.Email)
	case ColumnRole:
		return compareFold(a.Role, b.Role)
	case ColumnCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return 0
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// FormatTimestamp renders t in the canonical UTC form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
