package naming

import (
	"path/filepath"
	"strings"
)

// SheetSuffix is appended to the input stem to form the sheet file name.
const SheetSuffix = "_sheet.jpg"

// SheetPath returns the sheet path for input: same directory, extension
// replaced by "_sheet.jpg".
//
//	/media/clip.mp4      → /media/clip_sheet.jpg
//	/media/a.b.c.MKV     → /media/a.b.c_sheet.jpg
//	/media/.hidden       → /media/.hidden_sheet.jpg
func SheetPath(input string) string {
	dir, base := filepath.Split(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = base
	}
	return filepath.Join(dir, stem+SheetSuffix)
}
