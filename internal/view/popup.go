package view

// Popup tracks which column's filter popup is open. At most one popup is
// open at a time; the zero value has none open.
type Popup struct {
	open   Column
	isOpen bool
}

// Toggle closes the popup of col if it is open, otherwise opens it and
// closes any other.
func (p *Popup) Toggle(col Column) {
	if p.isOpen && p.open == col {
		p.isOpen = false
		return
	}
	p.open = col
	p.isOpen = true
}

// IsOpen reports whether the popup of col is open.
func (p Popup) IsOpen(col Column) bool {
	return p.isOpen && p.open == col
}

// Open returns the column whose popup is open, if any.
func (p Popup) Open() (Column, bool) {
	return p.open, p.isOpen
}
