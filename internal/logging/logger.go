// Package logging provides the leveled, colored logger shared by every
// worker. Lines go to stdout (errors to stderr) and, when configured, to an
// append-mode log file without color codes.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/backmassage/vidsheet/internal/config"
	"github.com/backmassage/vidsheet/internal/term"
)

// Overlay is a transient terminal element (the batch progress bar) that
// must be cleared before a log line is written over it.
type Overlay interface {
	Clear() error
}

// Logger provides leveled, optionally colored logging with optional file sink.
// It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	out     io.Writer
	errOut  io.Writer
	file    *os.File
	overlay Overlay
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile. Call Close when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := &Logger{
		verbose: cfg.Verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// New returns a Logger writing to out and errOut with no file sink. Colors
// follow whatever [term.Configure] last set.
func New(out, errOut io.Writer, verbose bool) *Logger {
	return &Logger{verbose: verbose, out: out, errOut: errOut}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, io.Discard, false)
}

// Verbose reports whether DEBUG lines are emitted.
func (l *Logger) Verbose() bool { return l.verbose }

// SetOverlay registers (or, with nil, removes) the overlay cleared before
// every line.
func (l *Logger) SetOverlay(o Overlay) {
	l.mu.Lock()
	l.overlay = o
	l.mu.Unlock()
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, color, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.overlay != nil {
		_ = l.overlay.Clear()
	}
	plain := ts + " [" + level + "] " + text + "\n"
	out := l.out
	if level == "ERROR" {
		out = l.errOut
	}
	if color != "" {
		_, _ = io.WriteString(out, ts+" "+color+"["+level+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) {
	l.line("INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...any) {
	l.line("SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...any) {
	l.line("WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red) to stderr.
func (l *Logger) Error(format string, args ...any) {
	l.line("ERROR", term.Red, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) when the logger is verbose.
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.line("DEBUG", term.Cyan, fmt.Sprintf(format, args...))
}
