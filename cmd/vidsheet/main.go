// Command vidsheet is the CLI entrypoint for the vidsheet thumbnail-sheet
// generator.
//
// It loads configuration, validates it, and either runs system diagnostics
// (--check) or the batch pipeline over one video file or a directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/backmassage/vidsheet/internal/check"
	"github.com/backmassage/vidsheet/internal/config"
	"github.com/backmassage/vidsheet/internal/display"
	"github.com/backmassage/vidsheet/internal/ffmpeg"
	"github.com/backmassage/vidsheet/internal/logging"
	"github.com/backmassage/vidsheet/internal/pipeline"
	"github.com/backmassage/vidsheet/internal/probe"
	"github.com/backmassage/vidsheet/internal/sheet"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr.
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "vidsheet: %v\n", err)
		return 1
	}
	if cfg.ShowVersion {
		fmt.Printf("vidsheet %s (%s)\n", version, commit)
		return 0
	}

	cfg.ResolveResources()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "vidsheet: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vidsheet: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Signal handling. Cancel on SIGINT/SIGTERM so in-flight ffmpeg
	// processes are killed and no partial sheets are left behind.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping workers")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, &cfg, log) {
			return 1
		}
		return 0
	}

	display.PrintBanner(os.Stdout, version)

	// Fail fast if ffmpeg/ffprobe are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		log.Error("Install ffmpeg or point --ffmpeg/--ffprobe (or --resource-dir) at the binaries")
		return 1
	}

	// Phase 3: Resolve input. Only an invalid path is fatal.
	files, err := pipeline.Resolve(cfg.InputPath)
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedExtension):
		log.Warn("%v", err)
		return 0
	case err != nil:
		log.Error("%v", err)
		return 1
	}
	if cfg.DryRun {
		log.Warn("DRY RUN: no sheets will be written")
	}

	fonts, err := sheet.LoadFonts(cfg.FontPath, cfg.HeaderFontSize, cfg.LabelFontSize)
	if err != nil {
		log.Warn("Font: %v; using %s", err, fonts.Describe())
	} else {
		log.Debug("Font: %s", fonts.Describe())
	}

	// Phase 4: Run pipeline (probe → plan → extract → compose → write).
	gen := sheet.NewGenerator(&cfg,
		probe.NewFFprobe(cfg.FFprobePath, cfg.ProbeTimeout),
		ffmpeg.NewExtractor(cfg.FFmpegPath, cfg.FrameTimeout),
		fonts,
	)
	stats := pipeline.Run(ctx, &cfg, log, gen, files)

	if stats.Interrupted > 0 || ctx.Err() != nil {
		return exitInterrupted
	}
	return 0
}
