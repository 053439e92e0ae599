package ui

// undoAction restores the table's sort and filter state to either side of
// one change.
type undoAction struct {
	label string
	undo  func()
	redo  func()
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

// trackViewChange runs change and, if it reports a change, records it on
// the undo stack.
func (m *Model) trackViewChange(label string, change func() (bool, error)) error {
	t := m.table
	before := t.viewState()
	changed, err := change()
	if err != nil || !changed {
		return err
	}
	after := t.viewState()
	m.pushUndoAction(undoAction{
		label: label,
		undo:  func() { t.restoreViewState(before) },
		redo:  func() { t.restoreViewState(after) },
	})
	return nil
}

func (m *Model) undo() {
	if len(m.undoStack) == 0 {
		m.info = "Nothing to undo"
		return
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	action.undo()
	m.redoStack = append(m.redoStack, action)
	m.info = "Undid: " + action.label
	m.error = ""
}

func (m *Model) redo() {
	if len(m.redoStack) == 0 {
		m.info = "Nothing to redo"
		return
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	action.redo()
	m.undoStack = append(m.undoStack, action)
	m.info = "Redid: " + action.label
	m.error = ""
}
