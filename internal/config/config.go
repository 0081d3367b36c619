// Package config holds runtime configuration: defaults, layered loading
// (config file, environment, CLI flags) and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultFontFile is the font looked up inside ResourceDir when no explicit
// font path is configured.
const DefaultFontFile = "font.ttf"

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [Load] and then passed (by pointer) to packages that need it.
// The mapstructure keys double as config-file keys, flag names and, upper
// cased with a VIDSHEET_ prefix, environment variable names.
type Config struct {
	// Input (set from the positional arg).
	InputPath string `mapstructure:"-"`

	// Batch.
	Workers int  `mapstructure:"workers" validate:"min=1,max=64"` // Default: 4.
	Force   bool `mapstructure:"force"`                           // Regenerate existing sheets.
	DryRun  bool `mapstructure:"dry-run"`

	// Sheet layout.
	SheetWidth     int     `mapstructure:"width" validate:"min=320,max=16384"` // Default: 1920.
	Columns        int     `mapstructure:"columns" validate:"min=1,max=20"`    // Default: 5.
	Rows           int     `mapstructure:"rows" validate:"min=1,max=20"`       // Default: 5.
	Gap            int     `mapstructure:"gap" validate:"min=0,max=64"`        // Default: 5 px between cells.
	MarginFraction float64 `mapstructure:"margin" validate:"gt=0,lt=0.5"`      // Default: 0.02 of the duration at each end.
	JPEGQuality    int     `mapstructure:"quality" validate:"min=1,max=100"`   // Default: 90.

	// Text.
	FontPath       string  `mapstructure:"font"`
	HeaderFontSize float64 `mapstructure:"header-font-size" validate:"min=6,max=96"` // Default: 22.
	LabelFontSize  float64 `mapstructure:"label-font-size" validate:"min=6,max=96"`  // Default: 18.

	// External tools.
	ResourceDir  string        `mapstructure:"resource-dir"`
	FFmpegPath   string        `mapstructure:"ffmpeg" validate:"required"`
	FFprobePath  string        `mapstructure:"ffprobe" validate:"required"`
	ProbeTimeout time.Duration `mapstructure:"probe-timeout" validate:"gt=0s"` // Default: 30s.
	FrameTimeout time.Duration `mapstructure:"frame-timeout" validate:"gt=0s"` // Default: 60s.
	TempDir      string        `mapstructure:"temp-dir"`                       // Empty: os.TempDir().

	// Display and logging.
	Verbose     bool      `mapstructure:"verbose"`
	ColorMode   ColorMode `mapstructure:"color-mode" validate:"oneof=auto always never"`
	LogFile     string    `mapstructure:"log"`
	CheckOnly   bool      `mapstructure:"check"`
	ConfigFile  string    `mapstructure:"config"`
	ShowVersion bool      `mapstructure:"version"`
}

// DefaultConfig returns a Config with the stock sheet geometry: a 1920px
// wide 5x5 grid, JPEG quality 90 and four workers.
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		SheetWidth:     1920,
		Columns:        5,
		Rows:           5,
		Gap:            5,
		MarginFraction: 0.02,
		JPEGQuality:    90,
		HeaderFontSize: 22,
		LabelFontSize:  18,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		ProbeTimeout:   30 * time.Second,
		FrameTimeout:   60 * time.Second,
		ColorMode:      ColorAuto,
	}
}

// Slots returns the number of thumbnails per sheet.
func (c *Config) Slots() int {
	return c.Columns * c.Rows
}

// NormalizePathArg strips trailing slashes from a path argument.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizePathArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

var validate = validator.New()

// Validate checks field ranges and enum values. When not in CheckOnly mode
// it also requires an input path.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s %v (rule %s=%s)", flagName(fe.StructField()), fe.Value(), fe.Tag(), fe.Param())
		}
		return err
	}

	if c.CheckOnly || c.ShowVersion {
		return nil
	}
	if c.InputPath == "" {
		return errors.New("need exactly one video file or directory")
	}
	return nil
}

// ResolveResources derives tool and font locations from ResourceDir. Values
// set explicitly (anything other than the bare tool name for binaries, or a
// non-empty font path) are left untouched.
func (c *Config) ResolveResources() {
	if c.ResourceDir == "" {
		return
	}
	if c.FFmpegPath == "ffmpeg" {
		c.FFmpegPath = filepath.Join(c.ResourceDir, executable("ffmpeg"))
	}
	if c.FFprobePath == "ffprobe" {
		c.FFprobePath = filepath.Join(c.ResourceDir, executable("ffprobe"))
	}
	if c.FontPath == "" {
		c.FontPath = filepath.Join(c.ResourceDir, DefaultFontFile)
	}
}

func executable(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// flagName maps a struct field name back to the setting the user actually
// typed: the flag when one exists, otherwise the config-file/env key.
func flagName(field string) string {
	key, ok := fieldKeys[field]
	if !ok {
		return field
	}
	if key == "color-mode" {
		return "--color/--no-color (config key color-mode)"
	}
	if newFlagSet(&Config{}).Lookup(key) == nil {
		return "config key " + key
	}
	return "--" + key
}
