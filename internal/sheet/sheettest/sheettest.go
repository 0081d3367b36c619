// Package sheettest provides in-memory fakes for sheet.Prober and
// sheet.FrameExtractor, plus a helper that renders a real sample clip when
// ffmpeg is installed.
package sheettest

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/image/draw"

	"github.com/backmassage/vidsheet/internal/ffmpeg"
	"github.com/backmassage/vidsheet/internal/probe"
)

// ErrCorrupt is what the fakes return for inputs registered as corrupt.
var ErrCorrupt = errors.New("sheettest: corrupt input")

// Prober is a fake sheet.Prober. Inputs listed in Meta probe successfully;
// inputs listed in Corrupt fail; anything else gets Default (or fails when
// Default is nil).
type Prober struct {
	mu      sync.Mutex
	Meta    map[string]*probe.Metadata
	Corrupt map[string]bool
	Default *probe.Metadata

	calls atomic.Int64
}

// NewProber returns a Prober whose default is a 10-minute 1920x1080 h264.
func NewProber() *Prober {
	return &Prober{
		Meta:    make(map[string]*probe.Metadata),
		Corrupt: make(map[string]bool),
		Default: &probe.Metadata{Duration: 600, Width: 1920, Height: 1080, Codec: "h264", Size: 50 << 20, FormatName: "mp4"},
	}
}

// Probe implements sheet.Prober.
func (p *Prober) Probe(ctx context.Context, path string) (*probe.Metadata, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Corrupt[path] {
		return nil, ErrCorrupt
	}
	md := p.Meta[path]
	if md == nil {
		md = p.Default
	}
	if md == nil {
		return nil, ErrCorrupt
	}
	cp := *md
	cp.Path = path
	return &cp, nil
}

// SetCorrupt marks path as failing to probe.
func (p *Prober) SetCorrupt(path string) {
	p.mu.Lock()
	p.Corrupt[path] = true
	p.mu.Unlock()
}

// Calls returns how many times Probe was invoked.
func (p *Prober) Calls() int64 { return p.calls.Load() }

// Extractor is a fake sheet.FrameExtractor that returns solid frames of
// the requested size. Fail, when set, decides per request whether to fail.
type Extractor struct {
	Color color.Color
	Fail  func(req ffmpeg.FrameRequest) error

	calls atomic.Int64
}

// NewExtractor returns an Extractor producing mid-blue frames.
func NewExtractor() *Extractor {
	return &Extractor{Color: color.RGBA{0x20, 0x60, 0xc0, 0xff}}
}

// ExtractFrame implements sheet.FrameExtractor.
func (x *Extractor) ExtractFrame(ctx context.Context, req ffmpeg.FrameRequest) (image.Image, error) {
	x.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if x.Fail != nil {
		if err := x.Fail(req); err != nil {
			return nil, err
		}
	}
	w, h := req.Width, req.Height
	if w <= 0 || h <= 0 {
		w, h = 320, 180
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{x.Color}, image.Point{}, draw.Src)
	return img, nil
}

// Calls returns how many times ExtractFrame was invoked.
func (x *Extractor) Calls() int64 { return x.calls.Load() }

// FailEvery returns a Fail func that fails every frame whose index is a
// multiple of n, with ffmpeg.ErrNoFrameDecoded.
func FailEvery(n int) func(ffmpeg.FrameRequest) error {
	return func(req ffmpeg.FrameRequest) error {
		if req.Index%n == 0 {
			return &ffmpeg.Error{Bin: "ffmpeg", Kind: ffmpeg.ErrNoFrameDecoded}
		}
		return nil
	}
}

// SampleVideo renders a short test-pattern clip named name into dir using
// the ffmpeg on PATH, skipping the test when ffmpeg or ffprobe is missing.
func SampleVideo(t testing.TB, dir, name string, seconds int) string {
	t.Helper()
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}
	path := filepath.Join(dir, name)
	gen := exec.Command(bin, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration="+strconv.Itoa(max(seconds, 1))+":size=640x360:rate=24",
		"-c:v", "mpeg4", "-pix_fmt", "yuv420p",
		"-y", path,
	)
	gen.Stderr = os.Stderr
	if err := gen.Run(); err != nil {
		t.Fatalf("generate %s: %v", name, err)
	}
	return path
}

// Touch creates an empty file (a "video" for fake-backed tests).
func Touch(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
	return path
}
