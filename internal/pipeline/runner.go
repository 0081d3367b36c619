package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/vidsheet/internal/config"
	"github.com/backmassage/vidsheet/internal/display"
	"github.com/backmassage/vidsheet/internal/ffmpeg"
	"github.com/backmassage/vidsheet/internal/logging"
	"github.com/backmassage/vidsheet/internal/naming"
	"github.com/backmassage/vidsheet/internal/sheet"
	"github.com/backmassage/vidsheet/internal/term"
)

// Generator produces one sheet. *sheet.Generator is the real implementation.
type Generator interface {
	Generate(ctx context.Context, req sheet.Request, track func(sheet.Status)) (*sheet.Result, error)
}

// Run is the top-level batch entry point. It skips files whose sheet
// already exists (unless cfg.Force) or whose sheet path another input
// already owns, generates the rest on min(cfg.Workers, pending) workers and
// returns aggregate stats. A failure in one file never stops the others.
// Cancelling ctx stops feeding new files; files in flight end as
// interrupted and write nothing.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, gen Generator, files []string) RunStats {
	start := time.Now()
	stats := RunStats{Total: len(files)}

	logBatchHeader(cfg, log, &stats)

	jobs := schedule(cfg, log, files, &stats)
	switch {
	case len(jobs) == 0:
		log.Info("Nothing to do")
	case cfg.DryRun:
		dryRun(log, jobs, &stats)
	default:
		execute(ctx, cfg, log, gen, jobs, &stats)
	}

	stats.Elapsed = time.Since(start)
	logSummary(cfg, log, &stats)
	return stats
}

// schedule turns files into jobs, dropping those that would collide with an
// earlier input's sheet and those whose sheet is already on disk. Skipped
// files cost no tool invocations.
func schedule(cfg *config.Config, log *logging.Logger, files []string, stats *RunStats) []*Job {
	resolver := naming.NewCollisionResolver()
	total := len(files)

	var jobs []*Job
	for i, path := range files {
		output := naming.SheetPath(path)

		if owner, ok := resolver.Claim(path, output); !ok {
			log.Warn("[%d/%d] Skip (same sheet as %s): %s", i+1, total, filepath.Base(owner), filepath.Base(path))
			stats.Skipped++
			continue
		}
		if !cfg.Force && exists(output) {
			log.Warn("[%d/%d] Skip (exists): %s", i+1, total, filepath.Base(output))
			stats.Skipped++
			continue
		}
		jobs = append(jobs, newJob(path, output, i+1, total))
	}
	return jobs
}

func dryRun(log *logging.Logger, jobs []*Job, stats *RunStats) {
	for _, j := range jobs {
		log.Success("[DRY] Would generate %s -> %s", filepath.Base(j.Input), filepath.Base(j.Output))
		stats.Generated++
	}
}

// execute runs jobs on a bounded worker pool. Results are aggregated on the
// calling goroutine so stats need no locking.
func execute(ctx context.Context, cfg *config.Config, log *logging.Logger, gen Generator, jobs []*Job, stats *RunStats) {
	workers := max(min(cfg.Workers, len(jobs)), 1)
	log.Debug("Starting %d worker(s) for %d file(s)", workers, len(jobs))

	bar := newProgress(len(jobs))
	if bar != nil {
		log.SetOverlay(bar)
		defer func() {
			_ = bar.Finish()
			log.SetOverlay(nil)
		}()
	}

	queue := make(chan *Job)
	done := make(chan *Job, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				runJob(ctx, log, gen, j)
				done <- j
			}
		}()
	}

	go func() {
	feed:
		for _, j := range jobs {
			select {
			case queue <- j:
			case <-ctx.Done():
				break feed
			}
		}
		close(queue)
		wg.Wait()
		close(done)
	}()

	finished := 0
	for j := range done {
		finished++
		report(log, j, stats)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if n := len(jobs) - finished; n > 0 {
		stats.Interrupted += n
		log.Warn("Interrupted: %d file(s) not started", n)
	}
}

func runJob(ctx context.Context, log *logging.Logger, gen Generator, j *Job) {
	name := filepath.Base(j.Input)
	log.Info("[%d/%d] %s", j.Index, j.Total, name)

	start := time.Now()
	j.Result, j.Err = gen.Generate(ctx, j.Request(), func(s sheet.Status) {
		j.Status = s
		log.Debug("[%d/%d] %s: %s", j.Index, j.Total, name, s)
	})
	j.Elapsed = time.Since(start)
}

// report logs a finished job and folds it into stats.
func report(log *logging.Logger, j *Job, stats *RunStats) {
	name := filepath.Base(j.Input)

	switch {
	case j.Err == nil:
		res := j.Result
		stats.Generated++
		stats.Placeholders += res.Placeholders
		stats.OutputBytes += res.Bytes
		if md := res.Meta; md != nil {
			log.Debug("[%d/%d] %s: %s, %s, %s, %d cells", j.Index, j.Total, name,
				md.Container(), md.Resolution(), md.CodecName(), res.Layout.Cells())
		}
		if res.Placeholders > 0 {
			log.Warn("[%d/%d] %s: %d of %d frames could not be extracted", j.Index, j.Total, name, res.Placeholders, res.Frames)
			for _, err := range res.FrameErrors {
				log.Debug("  %v", err)
			}
		}
		log.Success("[%d/%d] %s -> %s (%s in %s)", j.Index, j.Total, name,
			filepath.Base(j.Output), display.FormatBytes(res.Bytes), display.FormatElapsed(j.Elapsed))

	case errors.Is(j.Err, context.Canceled):
		stats.Interrupted++
		log.Warn("[%d/%d] Interrupted: %s", j.Index, j.Total, name)

	default:
		stats.Failed++
		log.Error("[%d/%d] %s: %v", j.Index, j.Total, name, j.Err)
		logStderr(log, j.Err)
	}
}

// logStderr dumps the tail of a failed tool invocation's stderr in verbose
// mode.
func logStderr(log *logging.Logger, err error) {
	var fe *ffmpeg.Error
	if !log.Verbose() || !errors.As(err, &fe) || fe.Stderr == "" {
		return
	}
	log.Debug("Command: %s", fe.Command())
	log.Debug("Last %s output:", filepath.Base(fe.Bin))
	lines := strings.Split(strings.TrimSpace(fe.Stderr), "\n")
	start := max(len(lines)-20, 0)
	for _, l := range lines[start:] {
		log.Debug("  %s", l)
	}
}

// newProgress returns a batch progress bar on stderr, or nil when stderr is
// not an interactive terminal.
func newProgress(total int) *progressbar.ProgressBar {
	if !term.Interactive(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Sheets"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d file(s)", stats.Total)
	log.Info("Grid: %dx%d, width %dpx, JPEG quality %d", cfg.Columns, cfg.Rows, cfg.SheetWidth, cfg.JPEGQuality)
	log.Info("Workers: %d", cfg.Workers)
	if cfg.Force {
		log.Info("Existing sheets: regenerate")
	}
	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	if cfg.DryRun {
		log.Info("Dry run complete")
	} else {
		log.Info("Batch complete")
	}
	log.Info("Total: %d", stats.Total)
	log.Success("Generated: %d", stats.Generated)
	if stats.Skipped > 0 {
		log.Warn("Skipped: %d", stats.Skipped)
	}
	if stats.Failed > 0 {
		log.Error("Failed: %d", stats.Failed)
	}
	if stats.Interrupted > 0 {
		log.Warn("Interrupted: %d", stats.Interrupted)
	}
	if stats.Placeholders > 0 {
		log.Warn("Placeholder frames: %d", stats.Placeholders)
	}
	if stats.OutputBytes > 0 {
		log.Info("Written: %s", display.FormatBytes(stats.OutputBytes))
	}
	log.Info("Elapsed: %s", display.FormatElapsed(stats.Elapsed))
	log.Info("==============================")
}
