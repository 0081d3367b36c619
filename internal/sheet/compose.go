package sheet

import (
	"image"
	"image/color"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/backmassage/vidsheet/internal/display"
	"github.com/backmassage/vidsheet/internal/planner"
	"github.com/backmassage/vidsheet/internal/probe"
)

// Sheet colors.
var (
	BackgroundColor  = color.RGBA{0x00, 0x00, 0x00, 0xff}
	PlaceholderColor = color.RGBA{0x40, 0x40, 0x40, 0xff}
	HeaderTextColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	LabelTextColor   = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
)

// Header and label spacing in pixels.
const (
	headerPadding = 10
	lineSpacing   = 2
	labelPadding  = 3
)

// Frame is one grid cell's content. A nil Image renders as a placeholder.
type Frame struct {
	Slot  planner.Slot
	Image image.Image
	Err   error // Why Image is nil, when it is.
}

// Placeholder reports whether the cell has no extracted image.
func (f Frame) Placeholder() bool { return f.Image == nil }

// HeaderLines returns the metadata block printed above the grid.
func HeaderLines(input string, md *probe.Metadata) []string {
	codec := md.CodecName()
	if md.Codec != "" {
		codec = cases.Upper(language.Und).String(md.Codec)
	}
	return []string{
		"Filename: " + filepath.Base(input),
		"Size: " + display.FormatBytes(md.Size),
		"Resolution: " + md.Resolution(),
		"Video Codec: " + codec,
		"Duration: " + display.FormatTimestamp(md.Duration),
	}
}

// Bands measures the header and label band heights for these faces.
func (f *Faces) Bands(headerLines int) planner.Bands {
	h := lineHeight(f.Header)
	header := 2*headerPadding + headerLines*h
	if headerLines > 1 {
		header += (headerLines - 1) * lineSpacing
	}
	return planner.Bands{
		Header: header,
		Label:  lineHeight(f.Label) + 2*labelPadding,
	}
}

// Compose renders the sheet: header, then one cell per layout slot with its
// timestamp label beneath. Cells without a frame (missing entries or nil
// images) are filled with PlaceholderColor, so the grid is always complete.
func Compose(layout planner.Layout, frames []Frame, header []string, faces *Faces) *image.RGBA {
	canvas := image.NewRGBA(layout.Bounds())
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{BackgroundColor}, image.Point{}, draw.Src)

	drawHeader(canvas, layout, header, faces)

	for i := 0; i < layout.Cells(); i++ {
		var fr Frame
		if i < len(frames) {
			fr = frames[i]
		}
		cell := layout.CellRect(i)
		if fr.Placeholder() {
			draw.Draw(canvas, cell, &image.Uniform{PlaceholderColor}, image.Point{}, draw.Src)
		} else {
			drawFitted(canvas, cell, fr.Image)
		}
		label := faces.Text(display.FormatTimestamp(fr.Slot.Timestamp))
		drawCentered(canvas, layout.LabelRect(i), label, faces.Label, LabelTextColor)
	}
	return canvas
}

func drawHeader(dst *image.RGBA, layout planner.Layout, lines []string, faces *Faces) {
	x := layout.Gap + headerPadding
	y := headerPadding
	maxWidth := layout.SheetWidth - 2*x
	step := lineHeight(faces.Header) + lineSpacing
	for _, line := range lines {
		text := truncate(faces.Header, faces.Text(line), maxWidth)
		drawText(dst, faces.Header, text, x, y, HeaderTextColor)
		y += step
	}
}

// drawFitted scales src to fit inside cell preserving its aspect ratio and
// centers it; the uncovered strips keep the background color.
func drawFitted(dst *image.RGBA, cell image.Rectangle, src image.Image) {
	sb := src.Bounds()
	fit := fitRect(sb.Dx(), sb.Dy(), cell)
	if fit.Empty() {
		draw.Draw(dst, cell, &image.Uniform{PlaceholderColor}, image.Point{}, draw.Src)
		return
	}
	if fit.Dx() == sb.Dx() && fit.Dy() == sb.Dy() {
		draw.Draw(dst, fit, src, sb.Min, draw.Src)
		return
	}
	draw.CatmullRom.Scale(dst, fit, src, sb, draw.Src, nil)
}

// fitRect returns the largest w:h rectangle centered inside cell.
func fitRect(w, h int, cell image.Rectangle) image.Rectangle {
	cw, ch := cell.Dx(), cell.Dy()
	if w <= 0 || h <= 0 || cw <= 0 || ch <= 0 {
		return image.Rectangle{}
	}
	fw, fh := cw, h*cw/w
	if fh > ch {
		fw, fh = w*ch/h, ch
	}
	fw, fh = max(fw, 1), max(fh, 1)
	x := cell.Min.X + (cw-fw)/2
	y := cell.Min.Y + (ch-fh)/2
	return image.Rect(x, y, x+fw, y+fh)
}

// drawCentered draws s centered horizontally and vertically inside r.
func drawCentered(dst *image.RGBA, r image.Rectangle, s string, face font.Face, c color.Color) {
	s = truncate(face, s, r.Dx())
	x := r.Min.X + (r.Dx()-textWidth(face, s))/2
	y := r.Min.Y + (r.Dy()-lineHeight(face))/2
	drawText(dst, face, s, x, y, c)
}

func drawText(dst *image.RGBA, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  dot(face, x, y),
	}
	d.DrawString(s)
}
