package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"
)

// Extractor extracts single frames with the ffmpeg binary at Bin. Each call
// is bounded by Timeout.
type Extractor struct {
	Bin     string
	Timeout time.Duration
}

// NewExtractor returns an Extractor for bin with a per-frame timeout.
func NewExtractor(bin string, timeout time.Duration) *Extractor {
	return &Extractor{Bin: bin, Timeout: timeout}
}

// ExtractFrame runs ffmpeg for req, then decodes the written JPEG. ffmpeg
// exits 0 without writing anything when the seek lands past the last
// decodable frame; that case is reported as [ErrNoFrameDecoded].
func (x *Extractor) ExtractFrame(ctx context.Context, req FrameRequest) (image.Image, error) {
	if req.WorkDir == "" {
		return nil, fmt.Errorf("frame %d: no work dir", req.Index)
	}
	out := filepath.Join(req.WorkDir, fmt.Sprintf("frame_%02d.jpg", req.Index))
	args := BuildFrameArgs(req, out)

	if _, err := Run(ctx, x.Bin, args, x.Timeout); err != nil {
		return nil, err
	}

	fi, err := os.Stat(out)
	if err != nil || fi.Size() == 0 {
		return nil, &Error{Bin: x.Bin, Args: args, Kind: ErrNoFrameDecoded}
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("open frame %d: %w", req.Index, err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w: %w", req.Index, ErrNoFrameDecoded, err)
	}
	return img, nil
}

// Version returns the first line of `bin -version`.
func Version(ctx context.Context, bin string, timeout time.Duration) (string, error) {
	out, err := Run(ctx, bin, []string{"-version"}, timeout)
	if err != nil {
		return "", err
	}
	line := string(out)
	for i, c := range line {
		if c == '\n' || c == '\r' {
			line = line[:i]
			break
		}
	}
	return line, nil
}
