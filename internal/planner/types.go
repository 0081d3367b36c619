package planner

import (
	"image"

	"github.com/backmassage/vidsheet/internal/probe"
)

// Slot is one grid cell: its position in the sheet and the timestamp
// sampled for it.
type Slot struct {
	Index     int
	Timestamp float64 // Seconds, strictly inside (0, duration).
}

// Bands holds the text band heights, which depend on the loaded fonts and
// so are measured by the caller.
type Bands struct {
	Header int // Metadata block above the grid.
	Label  int // Timestamp caption beneath each cell.
}

// Layout is the sheet geometry. Every sheet of a run shares SheetWidth and
// the grid shape; only CellHeight varies with the source aspect ratio.
type Layout struct {
	SheetWidth   int
	Columns      int
	Rows         int
	Gap          int
	CellWidth    int
	CellHeight   int
	HeaderHeight int
	LabelHeight  int
}

// Cells returns Columns*Rows.
func (l Layout) Cells() int { return l.Columns * l.Rows }

// SheetHeight returns header + rows*(cell + label + gap) + gap.
func (l Layout) SheetHeight() int {
	return l.HeaderHeight + l.Rows*(l.CellHeight+l.LabelHeight+l.Gap) + l.Gap
}

// Bounds returns the full canvas rectangle.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.SheetWidth, l.SheetHeight())
}

// CellRect returns the frame rectangle of cell i (row-major).
func (l Layout) CellRect(i int) image.Rectangle {
	col, row := i%l.Columns, i/l.Columns
	x := l.Gap + col*(l.CellWidth+l.Gap)
	y := l.HeaderHeight + l.Gap + row*(l.CellHeight+l.LabelHeight+l.Gap)
	return image.Rect(x, y, x+l.CellWidth, y+l.CellHeight)
}

// LabelRect returns the caption band directly beneath cell i.
func (l Layout) LabelRect(i int) image.Rectangle {
	c := l.CellRect(i)
	return image.Rect(c.Min.X, c.Max.Y, c.Max.X, c.Max.Y+l.LabelHeight)
}

// Plan holds every decision for one sheet. It is produced by BuildPlan and
// consumed by the sheet package.
type Plan struct {
	InputPath  string
	OutputPath string
	Meta       *probe.Metadata
	Layout     Layout
	Slots      []Slot
}
