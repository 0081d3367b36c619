package config

// This file implements layered loading and help text.
// Precedence, lowest to highest: DefaultConfig, config file (--config),
// VIDSHEET_* environment variables, command-line flags.

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading environment variables
// (e.g. VIDSHEET_WORKERS, VIDSHEET_FRAME_TIMEOUT).
const EnvPrefix = "VIDSHEET"

// fieldKeys maps Config field names to their mapstructure keys.
var fieldKeys = func() map[string]string {
	keys := make(map[string]string)
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if tag := f.Tag.Get("mapstructure"); tag != "" && tag != "-" {
			keys[f.Name] = tag
		}
	}
	return keys
}()

// Load builds a Config from defaults, an optional config file, the
// environment and args (usually os.Args[1:]). It returns pflag.ErrHelp when
// -h/--help was requested; usage has already been printed in that case.
func Load(args []string) (Config, error) {
	def := DefaultConfig()
	fs := newFlagSet(&def)
	if err := fs.Parse(args); err != nil {
		return def, err
	}

	v := viper.New()
	setDefaults(v, &def)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return def, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return def, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("decode config: %w", err)
	}
	applyColorFlags(v, &cfg)

	if err := parsePositionalArgs(fs, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newFlagSet registers every flag with its default taken from def. The
// values are read back through viper, not through bound pointers, so that
// an unset flag never shadows the config file or environment.
func newFlagSet(def *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("vidsheet", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() { writeUsage(os.Stderr) }

	// Batch.
	fs.IntP("workers", "w", def.Workers, "Parallel jobs")
	fs.BoolP("force", "f", false, "Regenerate sheets that already exist")
	fs.BoolP("dry-run", "d", false, "List what would be generated")

	// Sheet.
	fs.Int("width", def.SheetWidth, "Sheet width in pixels")
	fs.Int("columns", def.Columns, "Grid columns")
	fs.Int("rows", def.Rows, "Grid rows")
	fs.Float64("margin", def.MarginFraction, "Fraction of the duration skipped at each end")
	fs.IntP("quality", "q", def.JPEGQuality, "JPEG quality (1-100)")
	fs.String("font", def.FontPath, "TrueType/OpenType font for captions")

	// Tools.
	fs.String("resource-dir", def.ResourceDir, "Directory holding ffmpeg, ffprobe and font.ttf")
	fs.String("ffmpeg", def.FFmpegPath, "ffmpeg binary")
	fs.String("ffprobe", def.FFprobePath, "ffprobe binary")
	fs.Duration("probe-timeout", def.ProbeTimeout, "Timeout for one ffprobe call")
	fs.Duration("frame-timeout", def.FrameTimeout, "Timeout for one frame extraction")

	// Display and utility.
	fs.Bool("color", false, "Force colored logs")
	fs.Bool("no-color", false, "Disable colored logs")
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.StringP("log", "l", "", "Append logs to file")
	fs.BoolP("check", "c", false, "Run system diagnostics and exit")
	fs.String("config", "", "Config file (yaml, toml or json)")
	fs.BoolP("version", "V", false, "Print version and exit")
	return fs
}

// setDefaults registers every Config key with viper so AutomaticEnv can
// resolve keys that have no corresponding flag (gap, font sizes, ...).
func setDefaults(v *viper.Viper, def *Config) {
	val := reflect.ValueOf(*def)
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" || key == "-" {
			continue
		}
		v.SetDefault(key, val.Field(i).Interface())
	}
}

// applyColorFlags folds --color/--no-color into ColorMode; --no-color wins.
func applyColorFlags(v *viper.Viper, cfg *Config) {
	if v.GetBool("no-color") {
		cfg.ColorMode = ColorNever
	} else if v.GetBool("color") {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputPath from the single positional arg.
func parsePositionalArgs(fs *pflag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly || cfg.ShowVersion {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("need exactly one video file or directory (got %d args)", len(args))
	}
	cfg.InputPath = NormalizePathArg(args[0])
	return nil
}

// writeUsage writes the help text to w. Column-aligned for readability.
func writeUsage(w io.Writer) {
	const col1 = 28
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "vidsheet: thumbnail sheets for video files"},
		{"", ""},
		{"  vidsheet [OPTIONS] <video_file_or_dir>", ""},
		{"", ""},
		{"Batch", ""},
		{"  -w, --workers <n>", "Parallel jobs (default: 4)"},
		{"  -f, --force", "Regenerate sheets that already exist"},
		{"  -d, --dry-run", "List what would be generated"},
		{"", ""},
		{"Sheet", ""},
		{"  --width <px>", "Sheet width (default: 1920)"},
		{"  --columns <n>", "Grid columns (default: 5)"},
		{"  --rows <n>", "Grid rows (default: 5)"},
		{"  --margin <fraction>", "Skip this fraction at each end (default: 0.02)"},
		{"  -q, --quality <1-100>", "JPEG quality (default: 90)"},
		{"  --font <path>", "Caption font (falls back to a bitmap font)"},
		{"", ""},
		{"Tools", ""},
		{"  --resource-dir <dir>", "Directory with ffmpeg, ffprobe, font.ttf"},
		{"  --ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"  --probe-timeout <dur>", "Per-probe timeout (default: 30s)"},
		{"  --frame-timeout <dur>", "Per-frame timeout (default: 1m0s)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, font)"},
		{"  --config <path>", "Config file (yaml, toml or json)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
		{"", ""},
		{"", "Every option can also be set as " + EnvPrefix + "_<NAME> (e.g. " + EnvPrefix + "_WORKERS=8)."},
		{"", ""},
		{"Exit codes", ""},
		{"  0", "Batch finished (per-file failures are logged, not fatal)"},
		{"  1", "Invalid input path, bad options, or ffmpeg/ffprobe missing"},
		{"  130", "Interrupted (SIGINT/SIGTERM)"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
