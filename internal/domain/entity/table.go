package entity

// Column positions fixed by the timetable layout convention
const (
	ColumnDate    = 0
	ColumnTime    = 1
	ColumnSubject = 2
	ColumnRoom    = 3

	// MinColumns is the smallest row that can still yield an event;
	// the room column is optional
	MinColumns = 3
)

// RawTable is the page-table structure handed over by the PDF collaborator.
// The core treats it as an opaque sequence of rows, not a file format it owns.
type RawTable struct {
	SourceName string
	Rows       []RawRow
}

// RawRow is one table row: an ordered sequence of cell texts as laid out on
// the page. Cells may contain embedded line breaks from wrapped PDF lines.
type RawRow struct {
	Number int
	Cells  []string
}

// SkippedRow records a row that could not be turned into an event
type SkippedRow struct {
	Row    RawRow
	Reason string
}
