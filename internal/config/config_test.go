package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePathArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/clips", "/media/clips"},
		{"single trailing slash", "/media/clips/", "/media/clips"},
		{"multiple trailing slashes", "/media/clips///", "/media/clips"},
		{"root path", "/", "/"},
		{"relative path", "clips", "clips"},
		{"relative with slash", "clips/", "clips"},
		{"file path", "clips/a.mp4", "clips/a.mp4"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePathArg(tt.in))
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 1920, cfg.SheetWidth)
	assert.Equal(t, 25, cfg.Slots())
	assert.Equal(t, 90, cfg.JPEGQuality)
	assert.InDelta(t, 0.02, cfg.MarginFraction, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 60*time.Second, cfg.FrameTimeout)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
	assert.False(t, cfg.Force)
	assert.False(t, cfg.DryRun)

	cfg.CheckOnly = true
	require.NoError(t, cfg.Validate())
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }, "--workers"},
		{"too many columns", func(c *Config) { c.Columns = 21 }, "--columns"},
		{"zero rows", func(c *Config) { c.Rows = 0 }, "--rows"},
		{"narrow sheet", func(c *Config) { c.SheetWidth = 100 }, "--width"},
		{"zero margin", func(c *Config) { c.MarginFraction = 0 }, "--margin"},
		{"half margin", func(c *Config) { c.MarginFraction = 0.5 }, "--margin"},
		{"quality above 100", func(c *Config) { c.JPEGQuality = 101 }, "--quality"},
		{"zero probe timeout", func(c *Config) { c.ProbeTimeout = 0 }, "--probe-timeout"},
		{"empty ffmpeg", func(c *Config) { c.FFmpegPath = "" }, "--ffmpeg"},
		{"unknown color mode", func(c *Config) { c.ColorMode = "sometimes" }, "--color/--no-color (config key color-mode)"},
		{"gap has no flag", func(c *Config) { c.Gap = 100 }, "config key gap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RequiresPath(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate())

	cfg.InputPath = "/media/clips"
	require.NoError(t, cfg.Validate())
}

func TestValidate_CheckOnlySkipsPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	require.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ShowVersion = true
	require.NoError(t, cfg.Validate())
}

func TestResolveResources(t *testing.T) {
	exe := ""
	if runtime.GOOS == "windows" {
		exe = ".exe"
	}

	t.Run("fills bare tool names and font", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ResourceDir = "/opt/vidsheet"
		cfg.ResolveResources()
		assert.Equal(t, filepath.Join("/opt/vidsheet", "ffmpeg"+exe), cfg.FFmpegPath)
		assert.Equal(t, filepath.Join("/opt/vidsheet", "ffprobe"+exe), cfg.FFprobePath)
		assert.Equal(t, filepath.Join("/opt/vidsheet", DefaultFontFile), cfg.FontPath)
	})

	t.Run("explicit values win", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ResourceDir = "/opt/vidsheet"
		cfg.FFmpegPath = "/usr/local/bin/ffmpeg"
		cfg.FontPath = "/fonts/Inter.ttf"
		cfg.ResolveResources()
		assert.Equal(t, "/usr/local/bin/ffmpeg", cfg.FFmpegPath)
		assert.Equal(t, "/fonts/Inter.ttf", cfg.FontPath)
	})

	t.Run("no resource dir is a no-op", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ResolveResources()
		assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
		assert.Empty(t, cfg.FontPath)
	})
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load([]string{"-w", "8", "--columns", "4", "--rows=3", "-q", "75", "-f", "--frame-timeout", "5s", "clips/"})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 12, cfg.Slots())
	assert.Equal(t, 75, cfg.JPEGQuality)
	assert.True(t, cfg.Force)
	assert.Equal(t, 5*time.Second, cfg.FrameTimeout)
	assert.Equal(t, "clips", cfg.InputPath)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "vidsheet.yaml")
	require.NoError(t, os.WriteFile(file, []byte("workers: 2\nquality: 60\ngap: 9\nwidth: 1280\n"), 0o644))

	t.Setenv("VIDSHEET_QUALITY", "70")
	t.Setenv("VIDSHEET_WIDTH", "1600")

	cfg, err := Load([]string{"--config", file, "--width", "2560", "movie.mkv"})
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers, "file over default")
	assert.Equal(t, 9, cfg.Gap, "file key without a flag")
	assert.Equal(t, 70, cfg.JPEGQuality, "env over file")
	assert.Equal(t, 2560, cfg.SheetWidth, "flag over env")
}

func TestLoad_ColorFlags(t *testing.T) {
	cfg, err := Load([]string{"--color", "a.mp4"})
	require.NoError(t, err)
	assert.Equal(t, ColorAlways, cfg.ColorMode)

	cfg, err = Load([]string{"--color", "--no-color", "a.mp4"})
	require.NoError(t, err)
	assert.Equal(t, ColorNever, cfg.ColorMode)
}

func TestLoad_PositionalArgs(t *testing.T) {
	_, err := Load([]string{})
	require.Error(t, err)

	_, err = Load([]string{"a.mp4", "b.mp4"})
	require.Error(t, err)

	cfg, err := Load([]string{"--check"})
	require.NoError(t, err)
	assert.True(t, cfg.CheckOnly)
}

func TestLoad_Help(t *testing.T) {
	_, err := Load([]string{"--help"})
	require.ErrorIs(t, err, pflag.ErrHelp)
}

func TestWriteUsage_ListsExitCodes(t *testing.T) {
	var b strings.Builder
	writeUsage(&b)
	out := b.String()
	assert.Contains(t, out, "Exit codes")
	assert.Contains(t, out, "Batch finished")
	assert.Contains(t, out, "130")
	assert.NotContains(t, out, "--color-mode")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "a.mp4"})
	require.Error(t, err)
}
