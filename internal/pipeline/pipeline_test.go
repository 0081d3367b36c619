package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/vidsheet/internal/config"
	"github.com/backmassage/vidsheet/internal/ffmpeg"
	"github.com/backmassage/vidsheet/internal/logging"
	"github.com/backmassage/vidsheet/internal/probe"
	"github.com/backmassage/vidsheet/internal/sheet"
	"github.com/backmassage/vidsheet/internal/sheet/sheettest"
)

// --- Resolve / Discover tests ---

func TestDiscover_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mkv", "a.MP4", "c.webm", "notes.txt", "song.mp3", "a_sheet.jpg", "clip.3gp"} {
		sheettest.Touch(t, dir, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mp4"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	sheettest.Touch(t, filepath.Join(dir, "sub"), "deep.mp4")

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.MP4", "b.mkv", "c.webm", "clip.3gp"}, basenames(files))
}

func TestIsVideo_AllExtensions(t *testing.T) {
	for _, ext := range []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg", ".3gp"} {
		assert.True(t, IsVideo("x"+ext), ext)
		assert.True(t, IsVideo("X"+strings.ToUpper(ext)), ext)
	}
	for _, name := range []string{"x.ts", "x.jpg", "x", "mp4"} {
		assert.False(t, IsVideo(name), name)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	video := sheettest.Touch(t, dir, "movie.mov")
	text := sheettest.Touch(t, dir, "readme.txt")

	t.Run("single video", func(t *testing.T) {
		files, err := Resolve(video)
		require.NoError(t, err)
		assert.Equal(t, []string{video}, files)
	})

	t.Run("directory", func(t *testing.T) {
		files, err := Resolve(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{video}, files)
	})

	t.Run("unsupported file", func(t *testing.T) {
		_, err := Resolve(text)
		require.ErrorIs(t, err, ErrUnsupportedExtension)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Resolve(filepath.Join(dir, "nope"))
		require.ErrorIs(t, err, ErrInvalidInputPath)
	})

	t.Run("empty directory", func(t *testing.T) {
		files, err := Resolve(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

// --- Run tests ---

type harness struct {
	cfg    *config.Config
	out    *bytes.Buffer
	log    *logging.Logger
	prober *sheettest.Prober
	frames *sheettest.Extractor
	gen    *sheet.Generator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Columns, cfg.Rows = 3, 2
	cfg.SheetWidth = 640
	cfg.Workers = 2
	cfg.TempDir = t.TempDir()

	fonts, _ := sheet.LoadFonts("", cfg.HeaderFontSize, cfg.LabelFontSize)
	h := &harness{
		cfg:    &cfg,
		out:    &bytes.Buffer{},
		prober: sheettest.NewProber(),
		frames: sheettest.NewExtractor(),
	}
	h.log = logging.New(h.out, h.out, true)
	h.gen = sheet.NewGenerator(h.cfg, h.prober, h.frames, fonts)
	return h
}

func (h *harness) run(ctx context.Context, files []string) RunStats {
	return Run(ctx, h.cfg, h.log, h.gen, files)
}

func TestRun_GeneratesSheets(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	files := []string{
		sheettest.Touch(t, dir, "alpha.mp4"),
		sheettest.Touch(t, dir, "beta.final.MKV"),
	}

	stats := h.run(context.Background(), files)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Generated)
	assert.Zero(t, stats.Failed)
	assert.Zero(t, stats.Placeholders)
	assert.Positive(t, stats.OutputBytes)
	assert.FileExists(t, filepath.Join(dir, "alpha_sheet.jpg"))
	assert.FileExists(t, filepath.Join(dir, "beta.final_sheet.jpg"))
	assert.EqualValues(t, 12, h.frames.Calls())
	assert.Contains(t, h.out.String(), "alpha.mp4: mp4, 1920x1080, h264, 6 cells")

	entries, err := os.ReadDir(h.cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "work dirs must be removed")
}

func TestRun_RerunInvokesNoTools(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	files := []string{sheettest.Touch(t, dir, "a.mp4"), sheettest.Touch(t, dir, "b.mp4")}

	first := h.run(context.Background(), files)
	require.Equal(t, 2, first.Generated)
	probes, frames := h.prober.Calls(), h.frames.Calls()

	second := h.run(context.Background(), files)
	assert.Equal(t, 2, second.Skipped)
	assert.Zero(t, second.Generated)
	assert.Equal(t, probes, h.prober.Calls())
	assert.Equal(t, frames, h.frames.Calls())
	assert.Contains(t, h.out.String(), "Skip (exists): a_sheet.jpg")
}

func TestRun_ForceRegenerates(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	in := sheettest.Touch(t, dir, "a.mp4")
	out := filepath.Join(dir, "a_sheet.jpg")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	h.cfg.Force = true
	stats := h.run(context.Background(), []string{in})
	assert.Equal(t, 1, stats.Generated)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(b))
}

func TestRun_CorruptFileDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	good := sheettest.Touch(t, dir, "good.mp4")
	bad := sheettest.Touch(t, dir, "bad.mp4")
	h.prober.SetCorrupt(bad)

	stats := h.run(context.Background(), []string{bad, good})

	assert.Equal(t, 1, stats.Generated)
	assert.Equal(t, 1, stats.Failed)
	assert.FileExists(t, filepath.Join(dir, "good_sheet.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "bad_sheet.jpg"))
	assert.Contains(t, h.out.String(), "bad.mp4")
}

func TestRun_PlaceholdersCounted(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	h.frames.Fail = sheettest.FailEvery(3)

	stats := h.run(context.Background(), []string{sheettest.Touch(t, dir, "a.mp4")})

	assert.Equal(t, 1, stats.Generated)
	assert.Equal(t, 2, stats.Placeholders, "frames 0 and 3 of 6")
	assert.Contains(t, h.out.String(), "2 of 6 frames could not be extracted")
}

func TestRun_CollidingStemsKeepFirst(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	files := []string{sheettest.Touch(t, dir, "clip.mkv"), sheettest.Touch(t, dir, "clip.mp4")}

	stats := h.run(context.Background(), files)

	assert.Equal(t, 1, stats.Generated)
	assert.Equal(t, 1, stats.Skipped)
	assert.EqualValues(t, 1, h.prober.Calls())
	assert.Contains(t, h.out.String(), "same sheet as clip.mkv")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	h.cfg.DryRun = true

	stats := h.run(context.Background(), []string{sheettest.Touch(t, dir, "a.mp4")})

	assert.Equal(t, 1, stats.Generated)
	assert.Zero(t, h.prober.Calls())
	assert.NoFileExists(t, filepath.Join(dir, "a_sheet.jpg"))
	assert.Contains(t, h.out.String(), "[DRY] Would generate a.mp4 -> a_sheet.jpg")
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	files := []string{sheettest.Touch(t, dir, "a.mp4"), sheettest.Touch(t, dir, "b.mp4"), sheettest.Touch(t, dir, "c.mp4")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := h.run(ctx, files)

	assert.Zero(t, stats.Generated)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, 3, stats.Interrupted)
	for _, f := range []string{"a_sheet.jpg", "b_sheet.jpg", "c_sheet.jpg"} {
		assert.NoFileExists(t, filepath.Join(dir, f))
	}
}

// gaugeGenerator records the peak number of concurrent Generate calls.
type gaugeGenerator struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (g *gaugeGenerator) Generate(ctx context.Context, req sheet.Request, track func(sheet.Status)) (*sheet.Result, error) {
	g.calls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	track(sheet.StatusDone)
	return &sheet.Result{Meta: &probe.Metadata{Path: req.Input}, Frames: 1, Bytes: 1}, nil
}

func TestRun_WorkerBound(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	h.cfg.Workers = 3

	var files []string
	for _, name := range []string{"1.mp4", "2.mp4", "3.mp4", "4.mp4", "5.mp4", "6.mp4", "7.mp4", "8.mp4"} {
		files = append(files, sheettest.Touch(t, dir, name))
	}

	g := &gaugeGenerator{}
	stats := Run(context.Background(), h.cfg, h.log, g, files)

	assert.Equal(t, 8, stats.Generated)
	assert.EqualValues(t, 8, g.calls.Load())
	assert.LessOrEqual(t, g.peak.Load(), int32(3))
	assert.GreaterOrEqual(t, g.peak.Load(), int32(1))
}

func TestRun_FailureLogsStderrTail(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t)
	in := sheettest.Touch(t, dir, "a.mp4")

	gen := generatorFunc(func(context.Context, sheet.Request, func(sheet.Status)) (*sheet.Result, error) {
		return nil, &ffmpeg.Error{Bin: "/usr/bin/ffprobe", Args: []string{"-v", "error", "a.mp4"}, Stderr: "moov atom not found\n", Kind: ffmpeg.ErrInvalidData}
	})
	stats := Run(context.Background(), h.cfg, h.log, gen, []string{in})

	assert.Equal(t, 1, stats.Failed)
	assert.Contains(t, h.out.String(), "Command: /usr/bin/ffprobe -v error a.mp4")
	assert.Contains(t, h.out.String(), "Last ffprobe output:")
	assert.Contains(t, h.out.String(), "moov atom not found")
}

type generatorFunc func(context.Context, sheet.Request, func(sheet.Status)) (*sheet.Result, error)

func (f generatorFunc) Generate(ctx context.Context, req sheet.Request, track func(sheet.Status)) (*sheet.Result, error) {
	return f(ctx, req, track)
}

func TestRun_RealFFmpeg(t *testing.T) {
	dir := t.TempDir()
	in := sheettest.SampleVideo(t, dir, "sample.mkv", 4)

	h := newHarness(t)
	fonts, _ := sheet.LoadFonts("", h.cfg.HeaderFontSize, h.cfg.LabelFontSize)
	gen := sheet.NewGenerator(h.cfg,
		probe.NewFFprobe("ffprobe", 30*time.Second),
		ffmpeg.NewExtractor("ffmpeg", 60*time.Second),
		fonts,
	)

	files, err := Resolve(dir)
	require.NoError(t, err)
	require.Equal(t, []string{in}, files)

	stats := Run(context.Background(), h.cfg, h.log, gen, files)
	assert.Equal(t, 1, stats.Generated, h.out.String())
	assert.Zero(t, stats.Placeholders, h.out.String())
	assert.FileExists(t, filepath.Join(dir, "sample_sheet.jpg"))
}

// --- Helpers ---

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
