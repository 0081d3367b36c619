package sheet

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNoFont is returned by LoadFonts when no font path is configured.
var ErrNoFont = errors.New("no font configured")

// FontSet holds the parsed caption font. The parsed font is shared by all
// workers; faces are not goroutine-safe and are created per sheet by
// [FontSet.NewFaces].
type FontSet struct {
	font       *opentype.Font // nil: bitmap fallback
	path       string
	headerSize float64
	labelSize  float64
}

// LoadFonts parses the TrueType/OpenType file at path. The returned FontSet
// is always usable: on any failure it falls back to the built-in bitmap face
// and the error says why.
func LoadFonts(path string, headerSize, labelSize float64) (*FontSet, error) {
	fs := &FontSet{path: path, headerSize: headerSize, labelSize: labelSize}
	if path == "" {
		return fs, ErrNoFont
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fs, fmt.Errorf("read font: %w", err)
	}
	f, err := parseFont(data)
	if err != nil {
		return fs, fmt.Errorf("parse font %s: %w", path, err)
	}

	// Creating one face up front catches fonts that parse but cannot be
	// rasterized at the requested size.
	face, err := opentype.NewFace(f, faceOptions(headerSize))
	if err != nil {
		return fs, fmt.Errorf("font %s: %w", path, err)
	}
	_ = face.Close()

	fs.font = f
	return fs, nil
}

// parseFont accepts a single font or the first font of a collection (.ttc).
func parseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}
	coll, cerr := opentype.ParseCollection(data)
	if cerr != nil || coll.NumFonts() == 0 {
		return nil, err
	}
	return coll.Font(0)
}

func faceOptions(size float64) *opentype.FaceOptions {
	return &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}
}

// Fallback reports whether the bitmap face is in use.
func (fs *FontSet) Fallback() bool { return fs.font == nil }

// Describe returns a short description for logs and --check.
func (fs *FontSet) Describe() string {
	if fs.font == nil {
		return "built-in 7x13 bitmap"
	}
	return fmt.Sprintf("%s (%.0f/%.0fpt)", fs.path, fs.headerSize, fs.labelSize)
}

// Faces is a per-sheet pair of font faces. Close it when the sheet is done.
type Faces struct {
	Header font.Face
	Label  font.Face
	ascii  bool
	owned  []font.Face
}

// NewFaces creates faces for one composition.
func (fs *FontSet) NewFaces() (*Faces, error) {
	if fs.font == nil {
		return &Faces{Header: basicfont.Face7x13, Label: basicfont.Face7x13, ascii: true}, nil
	}
	header, err := opentype.NewFace(fs.font, faceOptions(fs.headerSize))
	if err != nil {
		return nil, fmt.Errorf("header face: %w", err)
	}
	label, err := opentype.NewFace(fs.font, faceOptions(fs.labelSize))
	if err != nil {
		_ = header.Close()
		return nil, fmt.Errorf("label face: %w", err)
	}
	return &Faces{Header: header, Label: label, owned: []font.Face{header, label}}, nil
}

// Close releases faces created by NewFaces.
func (f *Faces) Close() {
	for _, face := range f.owned {
		_ = face.Close()
	}
	f.owned = nil
}

// Text prepares s for drawing: folded to printable ASCII when the bitmap
// face is in use, unchanged otherwise.
func (f *Faces) Text(s string) string {
	if !f.ascii {
		return s
	}
	return foldASCII(s)
}

// foldASCII strips diacritics ("Amélie" → "Amelie") and replaces whatever
// is still outside printable ASCII with '?'.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '?'
		}
		return r
	}, s)
}

// lineHeight returns the face's line height in whole pixels.
func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

// ascent returns the distance from the top of a line to its baseline.
func ascent(face font.Face) int {
	return face.Metrics().Ascent.Ceil()
}

// textWidth returns the advance width of s in whole pixels.
func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// truncate shortens s with a trailing "..." until it fits in maxWidth.
func truncate(face font.Face, s string, maxWidth int) string {
	if maxWidth <= 0 || textWidth(face, s) <= maxWidth {
		return s
	}
	const ellipsis = "..."
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if textWidth(face, string(r)+ellipsis) <= maxWidth {
			return string(r) + ellipsis
		}
	}
	return ellipsis
}

// dot returns the drawing origin for text whose top-left is at (x, y).
func dot(face font.Face, x, y int) fixed.Point26_6 {
	return fixed.P(x, y+ascent(face))
}
