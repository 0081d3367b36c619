// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, ffprobe, the caption font
// and the temp directory.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/backmassage/vidsheet/internal/config"
	"github.com/backmassage/vidsheet/internal/ffmpeg"
	"github.com/backmassage/vidsheet/internal/sheet"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// stays testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
}

// RunCheck runs the --check flow: tool versions, font status and temp dir
// writability. It reports false when a required tool is unusable; a font
// problem only warns because the bitmap fallback always works.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(ctx, log, "ffmpeg", cfg.FFmpegPath, cfg)
	ok = checkTool(ctx, log, "ffprobe", cfg.FFprobePath, cfg) && ok
	checkFont(log, cfg)
	ok = checkTempDir(log, cfg) && ok
	return ok
}

// checkTool resolves bin and logs the first line of its -version output.
func checkTool(ctx context.Context, log Logger, name, bin string, cfg *config.Config) bool {
	path, err := exec.LookPath(bin)
	if err != nil {
		log.Error("%s not found (%s)", name, bin)
		return false
	}
	v, err := ffmpeg.Version(ctx, path, cfg.ProbeTimeout)
	if err != nil {
		log.Warn("%s found at %s but -version failed: %v", name, path, err)
		return false
	}
	log.Success("%s: %s", name, v)
	return true
}

func checkFont(log Logger, cfg *config.Config) {
	fonts, err := sheet.LoadFonts(cfg.FontPath, cfg.HeaderFontSize, cfg.LabelFontSize)
	if err != nil {
		log.Warn("Font: %v; using %s", err, fonts.Describe())
		return
	}
	log.Success("Font: %s", fonts.Describe())
}

func checkTempDir(log Logger, cfg *config.Config) bool {
	root := cfg.TempDir
	if root == "" {
		root = os.TempDir()
	}
	dir, err := os.MkdirTemp(root, "vidsheet-check-")
	if err != nil {
		log.Error("Temp dir %s is not writable: %v", root, err)
		return false
	}
	_ = os.RemoveAll(dir)
	log.Success("Temp dir: %s", root)
	return true
}

// CheckDeps is the pre-pipeline validation: it verifies that the configured
// ffmpeg and ffprobe resolve to executables. Returns a wrapped sentinel
// error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.FFmpegPath)
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, cfg.FFprobePath)
	}
	return nil
}
