package probe

import (
	"errors"
	"strconv"
)

// ErrInvalidDuration is returned when ffprobe reports no usable duration
// (missing, zero, negative or NaN). Without a duration no timestamps can
// be planned.
var ErrInvalidDuration = errors.New("no usable duration")

// Metadata is the parsed result of one ffprobe call. It is fetched once per
// job and read-only afterwards.
type Metadata struct {
	Path       string
	Duration   float64 // Seconds; always > 0 for a successfully probed file.
	Width      int     // Coded width of the primary video stream; 0 if unknown.
	Height     int
	Rotation   int    // Display rotation in degrees (0, 90, 180, 270).
	Codec      string // e.g. "h264"; empty if there is no video stream.
	Stream     int    // ffprobe index of the primary video stream (cover art skipped).
	Size       int64  // File size in bytes; -1 if unknown.
	FormatName string // Container, e.g. "matroska,webm".
}

// HasVideo reports whether a primary video stream was found.
func (m *Metadata) HasVideo() bool {
	return m.Codec != "" || (m.Width > 0 && m.Height > 0)
}

// DisplaySize returns the frame size as ffmpeg will output it, accounting
// for rotation metadata (ffmpeg autorotates on decode).
func (m *Metadata) DisplaySize() (w, h int) {
	if m.Rotation == 90 || m.Rotation == 270 {
		return m.Height, m.Width
	}
	return m.Width, m.Height
}

// Resolution returns "WxH" for the displayed frame, or "unknown".
func (m *Metadata) Resolution() string {
	w, h := m.DisplaySize()
	if w <= 0 || h <= 0 {
		return "unknown"
	}
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}

// Container returns the container format name or "unknown".
func (m *Metadata) Container() string {
	if m.FormatName == "" {
		return "unknown"
	}
	return m.FormatName
}

// CodecName returns the codec or "unknown".
func (m *Metadata) CodecName() string {
	if m.Codec == "" {
		return "unknown"
	}
	return m.Codec
}
