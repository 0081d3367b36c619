package ffmpeg

import (
	"strconv"
)

// FrameRequest describes one frame to extract.
type FrameRequest struct {
	Input     string  // Source video.
	Index     int     // Slot index, used for the temp file name.
	Stream    int     // Input stream index to decode; 0 picks the first non-cover-art video stream.
	Timestamp float64 // Seek position in seconds.
	Width     int     // Bounding box the frame is scaled to fit; 0 keeps source size.
	Height    int
	WorkDir   string // Job-scoped temp directory receiving the frame file.
}

// BuildFrameArgs returns the ffmpeg arguments that extract exactly one frame
// at req.Timestamp into output. Seeking happens before -i (input seeking),
// which jumps to the nearest keyframe and decodes forward instead of
// decoding from the start of the file.
func BuildFrameArgs(req FrameRequest, output string) []string {
	args := make([]string, 0, 24)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// --- Input seeking ---
	args = append(args, "-ss", formatSeconds(req.Timestamp), "-i", req.Input)

	// --- Single video frame, no other streams ---
	args = append(args, "-map", streamSpec(req.Stream), "-an", "-sn", "-dn", "-frames:v", "1")

	// --- Scale to fit the cell; ffmpeg keeps the aspect ratio ---
	if req.Width > 0 && req.Height > 0 {
		args = append(args, "-vf",
			"scale="+strconv.Itoa(req.Width)+":"+strconv.Itoa(req.Height)+
				":force_original_aspect_ratio=decrease:flags=bicubic")
	}

	// --- Output ---
	args = append(args, "-q:v", "2", "-f", "image2", output)
	return args
}

// streamSpec maps the probed stream by absolute index. Index 0 (or unknown)
// uses "V", which unlike "v" never matches attached cover art.
func streamSpec(index int) string {
	if index > 0 {
		return "0:" + strconv.Itoa(index)
	}
	return "0:V:0"
}

// formatSeconds renders a seek position with millisecond precision.
func formatSeconds(s float64) string {
	if s < 0 {
		s = 0
	}
	return strconv.FormatFloat(s, 'f', 3, 64)
}
