// Package layout computes responsive column counts and page windows
// for the card grid.
package layout

// MinCardWidth is the narrowest a card can render and stay readable.
const MinCardWidth = 38

// ColumnEstimator derives how many card columns fit the terminal.
// Before the first resize event arrives the estimate is a single
// column.
type ColumnEstimator struct {
	width int
}

// SetWidth records the latest terminal width in cells.
func (e *ColumnEstimator) SetWidth(width int) {
	e.width = width
}

// Width returns the last recorded terminal width.
func (e *ColumnEstimator) Width() int {
	return e.width
}

// Columns returns the number of card columns that fit, never less
// than one.
func (e *ColumnEstimator) Columns() int {
	cols := e.width / MinCardWidth
	if cols < 1 {
		return 1
	}
	return cols
}
