package sheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/backmassage/vidsheet/internal/config"
	"github.com/backmassage/vidsheet/internal/display"
	"github.com/backmassage/vidsheet/internal/ffmpeg"
	"github.com/backmassage/vidsheet/internal/planner"
	"github.com/backmassage/vidsheet/internal/probe"
)

// Prober reads video metadata. probe.FFprobe is the real implementation.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.Metadata, error)
}

// FrameExtractor extracts one frame. ffmpeg.Extractor is the real
// implementation.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, req ffmpeg.FrameRequest) (image.Image, error)
}

// Status is a job's position in the generation state machine:
// pending → probing → extracting → composing → writing → done, with any
// failure ending in failed.
type Status int

const (
	StatusPending Status = iota
	StatusProbing
	StatusExtracting
	StatusComposing
	StatusWriting
	StatusDone
	StatusFailed
)

var statusNames = [...]string{"pending", "probing", "extracting", "composing", "writing", "done", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Request identifies one sheet to generate.
type Request struct {
	ID     uuid.UUID // Names the job's temp directory.
	Input  string
	Output string
}

// Result describes a written sheet.
type Result struct {
	Meta         *probe.Metadata
	Layout       planner.Layout
	Frames       int
	Placeholders int
	FrameErrors  []error // One per placeholder, each wrapping ErrFrameExtraction.
	Bytes        int64   // Size of the written JPEG.
}

// Generator produces sheets. It is safe for concurrent use; each Generate
// call works in its own temp directory with its own font faces.
type Generator struct {
	cfg       *config.Config
	prober    Prober
	extractor FrameExtractor
	fonts     *FontSet
}

// NewGenerator wires a Generator. fonts may come from a failed LoadFonts
// (bitmap fallback).
func NewGenerator(cfg *config.Config, p Prober, x FrameExtractor, fonts *FontSet) *Generator {
	return &Generator{cfg: cfg, prober: p, extractor: x, fonts: fonts}
}

// Generate runs one job to completion. track, if non-nil, is called on
// every status transition. Per-frame failures become placeholders and are
// reported in Result.FrameErrors; only a probe failure, an encode/write
// failure or cancellation of ctx fails the job, and then nothing is written.
func (g *Generator) Generate(ctx context.Context, req Request, track func(Status)) (res *Result, err error) {
	set := func(s Status) {
		if track != nil {
			track(s)
		}
	}
	defer func() {
		if err != nil {
			set(StatusFailed)
		}
	}()

	// --- 1. Probe ---
	set(StatusProbing)
	md, err := g.prober.Probe(ctx, req.Input)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	if !md.HasVideo() {
		return nil, fmt.Errorf("%w: no video stream", ErrMetadataUnavailable)
	}

	// --- 2. Plan ---
	faces, err := g.fonts.NewFaces()
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	header := HeaderLines(req.Input, md)
	plan := planner.BuildPlan(g.cfg, md, req.Input, req.Output, faces.Bands(len(header)))

	// --- 3. Extract ---
	set(StatusExtracting)
	workDir, err := g.makeWorkDir(req.ID)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	frames, err := g.extractAll(ctx, plan, workDir)
	if err != nil {
		return nil, err
	}

	// --- 4. Compose ---
	set(StatusComposing)
	img := Compose(plan.Layout, frames, header, faces)

	// --- 5. Write ---
	set(StatusWriting)
	n, err := WriteJPEG(req.Output, img, g.cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}

	res = &Result{Meta: md, Layout: plan.Layout, Frames: len(frames), Bytes: n}
	for _, fr := range frames {
		if fr.Placeholder() {
			res.Placeholders++
			res.FrameErrors = append(res.FrameErrors, fr.Err)
		}
	}
	set(StatusDone)
	return res, nil
}

// extractAll extracts every planned frame in order. A failed frame becomes
// a placeholder; cancellation of ctx aborts the job.
func (g *Generator) extractAll(ctx context.Context, plan *planner.Plan, workDir string) ([]Frame, error) {
	reqs := plan.FrameRequests(workDir)
	frames := make([]Frame, len(reqs))
	for i, fr := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frames[i].Slot = plan.Slots[i]

		img, err := g.extractor.ExtractFrame(ctx, fr)
		if err == nil && img != nil {
			frames[i].Image = img
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil {
			err = ffmpeg.ErrNoFrameDecoded
		}
		frames[i].Err = fmt.Errorf("%w: frame %d at %s: %w",
			ErrFrameExtraction, fr.Index+1, display.FormatTimestamp(fr.Timestamp), err)
	}
	return frames, nil
}

// makeWorkDir creates the job's temp directory, named after its ID.
func (g *Generator) makeWorkDir(id uuid.UUID) (string, error) {
	if id == uuid.Nil {
		id = uuid.New()
	}
	root := g.cfg.TempDir
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "vidsheet-"+id.String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("work dir %s already exists", dir)
		}
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}
