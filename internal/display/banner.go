package display

import (
	"fmt"
	"io"

	"github.com/backmassage/vidsheet/internal/term"
)

// PrintBanner writes the ASCII art banner to w, in cyan when colors are
// enabled, followed by the version line.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Cyan)
	fmt.Fprint(w, `       _     _     _               _
__   _(_) __| |___| |__   ___  ___| |_
\ \ / / |/ _`+"`"+` / __| '_ \ / _ \/ _ \ __|
 \ V /| | (_| \__ \ | | |  __/  __/ |_
  \_/ |_|\__,_|___/_| |_|\___|\___|\__|
`)
	fmt.Fprint(w, term.NC)
	fmt.Fprintf(w, "  %sthumbnail sheets for video files%s  %s\n\n", term.Gray, term.NC, version)
}
