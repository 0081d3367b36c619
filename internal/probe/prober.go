package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/vidsheet/internal/ffmpeg"
)

// FFprobe runs the ffprobe binary at Bin. Each call is bounded by Timeout.
type FFprobe struct {
	Bin     string
	Timeout time.Duration
}

// NewFFprobe returns an FFprobe for bin with a per-call timeout.
func NewFFprobe(bin string, timeout time.Duration) *FFprobe {
	return &FFprobe{Bin: bin, Timeout: timeout}
}

// Args returns the ffprobe arguments for path. All video streams are listed
// so an attached cover picture can be skipped in favor of the real stream.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		"-select_streams", "v",
		path,
	}
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed metadata. A file ffprobe accepts but that reports no usable
// duration yields [ErrInvalidDuration].
func (p *FFprobe) Probe(ctx context.Context, path string) (*Metadata, error) {
	out, err := ffmpeg.Run(ctx, p.Bin, Args(path), p.Timeout)
	if err != nil {
		return nil, err
	}

	md, err := ParseJSON(out)
	if err != nil {
		return nil, err
	}
	md.Path = path
	if md.Size < 0 {
		if fi, statErr := os.Stat(path); statErr == nil {
			md.Size = fi.Size()
		}
	}
	return md, nil
}

// ParseJSON converts raw ffprobe JSON output into Metadata.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	md := buildMetadata(&raw)
	if md.Duration <= 0 || math.IsNaN(md.Duration) || math.IsInf(md.Duration, 0) {
		return nil, ErrInvalidDuration
	}
	return md, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	Index        int               `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Duration     string            `json:"duration"`
	Disposition  map[string]int    `json:"disposition"`
	Tags         map[string]string `json:"tags"`
	SideDataList []struct {
		Rotation float64 `json:"rotation"`
	} `json:"side_data_list"`
}

// --- Conversion from wire types to domain types ---

func buildMetadata(raw *ffprobeOutput) *Metadata {
	md := &Metadata{
		Duration:   parseFloat(raw.Format.Duration),
		Size:       parseInt64(raw.Format.Size, -1),
		FormatName: raw.Format.FormatName,
	}

	var primary *ffprobeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "" && s.CodecType != "video" {
			continue
		}
		if s.Disposition["attached_pic"] == 1 {
			continue
		}
		primary = s
		break
	}
	if primary == nil {
		return md
	}

	md.Stream = primary.Index
	md.Codec = primary.CodecName
	md.Width = primary.Width
	md.Height = primary.Height
	md.Rotation = rotation(primary)
	if md.Duration <= 0 || math.IsNaN(md.Duration) {
		md.Duration = parseFloat(primary.Duration)
	}
	return md
}

// rotation reads the display matrix side data (newer ffprobe) or the legacy
// "rotate" tag, normalized to 0, 90, 180 or 270.
func rotation(s *ffprobeStream) int {
	deg := 0.0
	for _, sd := range s.SideDataList {
		if sd.Rotation != 0 {
			deg = sd.Rotation
			break
		}
	}
	if deg == 0 {
		deg = parseFloat(s.Tags["rotate"])
	}
	r := int(math.Round(deg)) % 360
	if r < 0 {
		r += 360
	}
	switch r {
	case 90, 180, 270:
		return r
	}
	return 0
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
