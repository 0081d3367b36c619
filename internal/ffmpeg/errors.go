package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Classified causes attached to [*Error]. Match them with errors.Is.
var (
	ErrTimeout        = errors.New("timed out")
	ErrInvalidData    = errors.New("invalid or unsupported input data")
	ErrNoFrameDecoded = errors.New("no frame decoded")
)

// Pre-compiled regexes for classifying stderr. Checked in order by
// [classify]; the first match wins.
var (
	reInvalidData = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`moov atom not found|` +
			`could not find codec parameters|` +
			`EBML header parsing failed|` +
			`Format .* detected only with low score|` +
			`No such file or directory|` +
			`Permission denied`)

	reNoFrame = regexp.MustCompile(
		`(?i)Output file is empty, nothing was encoded|` +
			`Output file #0 does not contain any stream|` +
			`does not contain any stream|` +
			`Nothing was written into output file|` +
			`Could not open encoder before EOF|` +
			`Stream map '.*' matches no streams`)
)

// classify maps stderr to one of the sentinel causes, or nil when the
// output matches no known pattern.
func classify(stderr string) error {
	switch {
	case reInvalidData.MatchString(stderr):
		return ErrInvalidData
	case reNoFrame.MatchString(stderr):
		return ErrNoFrameDecoded
	}
	return nil
}

// Error represents a failed ffmpeg/ffprobe invocation with context.
type Error struct {
	Bin    string
	Args   []string
	Stderr string
	Kind   error // Classified cause; nil when unknown.
	Err    error // Underlying exec or context error.
}

// Error implements error. Only the last three stderr lines are included.
func (e *Error) Error() string {
	name := e.Bin
	if name == "" {
		name = "ffmpeg"
	}
	cause := e.Err
	if cause == nil {
		cause = e.Kind
	}

	lines := strings.Split(strings.TrimSpace(e.Stderr), "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	tail := strings.Join(lines, "\n")

	switch {
	case e.Kind != nil && e.Kind != cause && tail != "":
		return fmt.Sprintf("%s: %v (%v): %s", name, cause, e.Kind, tail)
	case e.Kind != nil && e.Kind != cause:
		return fmt.Sprintf("%s: %v (%v)", name, cause, e.Kind)
	case tail != "":
		return fmt.Sprintf("%s: %v: %s", name, cause, tail)
	}
	return fmt.Sprintf("%s: %v", name, cause)
}

// Unwrap exposes both the classified cause and the underlying error to
// errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Command returns the command line that was executed.
func (e *Error) Command() string {
	return e.Bin + " " + strings.Join(e.Args, " ")
}
