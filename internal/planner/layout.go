package planner

import (
	"math"

	"github.com/backmassage/vidsheet/internal/config"
)

// Aspect (height/width) bounds for a cell. Anything outside is clamped so a
// corrupt or extreme stream cannot produce a sliver or a skyscraper sheet.
const (
	defaultAspect = 9.0 / 16.0
	minAspect     = 0.25
	maxAspect     = 16.0 / 9.0
	minCellWidth  = 16
)

// NewLayout derives the grid geometry from config and the displayed source
// size. srcW/srcH of zero (unknown) fall back to 16:9.
func NewLayout(cfg *config.Config, srcW, srcH int, bands Bands) Layout {
	l := Layout{
		SheetWidth:   cfg.SheetWidth,
		Columns:      cfg.Columns,
		Rows:         cfg.Rows,
		Gap:          cfg.Gap,
		HeaderHeight: bands.Header,
		LabelHeight:  bands.Label,
	}

	l.CellWidth = clamp((l.SheetWidth-(l.Columns+1)*l.Gap)/l.Columns, minCellWidth, l.SheetWidth)

	aspect := defaultAspect
	if srcW > 0 && srcH > 0 {
		aspect = clampFloat(float64(srcH)/float64(srcW), minAspect, maxAspect)
	}
	l.CellHeight = int(math.Round(float64(l.CellWidth) * aspect))
	return l
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
