package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on I/O after the process is killed.
const waitDelay = 2 * time.Second

// Run executes bin with args under timeout (no limit when timeout <= 0) and
// returns stdout. On failure the error is an [*Error] carrying stderr and a
// classified cause; a deadline hit is classified as [ErrTimeout].
// Cancellation of ctx by the caller is reported with context.Canceled.
func Run(ctx context.Context, bin string, args []string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	e := &Error{Bin: bin, Args: args, Stderr: stderr.String(), Err: err}
	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		e.Kind = ErrTimeout
	case ctxErr != nil:
		e.Err = ctxErr
	default:
		e.Kind = classify(e.Stderr)
	}
	return stdout.Bytes(), e
}
