package model

// Bubble Tea message types

// RowsLoadedMsg is sent when a fetch of the record set completes.
type RowsLoadedMsg struct {
	Seq     int
	Records []Record
}

// FetchFailedMsg is sent when a fetch of the record set fails.
type FetchFailedMsg struct {
	Seq int
	Err error
}

// Screen represents different app screens.
type Screen int

const (
	ScreenTable Screen = iota
	ScreenRecordDetail
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeFilter
	ModeInsert
)
