package sheet

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteJPEG encodes img at quality and atomically replaces path with it:
// the JPEG is written to a uniquely named temp file in the same directory,
// synced, then renamed. On failure the temp file is removed and path is
// untouched. Errors wrap ErrEncodeOrWrite.
func WriteJPEG(path string, img image.Image, quality int) (written int64, err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: create temp: %w", ErrEncodeOrWrite, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriterSize(f, 1<<20)
	if err = jpeg.Encode(bw, img, &jpeg.Options{Quality: quality}); err != nil {
		return 0, fmt.Errorf("%w: encode: %w", ErrEncodeOrWrite, err)
	}
	if err = bw.Flush(); err != nil {
		return 0, fmt.Errorf("%w: write: %w", ErrEncodeOrWrite, err)
	}
	if err = f.Sync(); err != nil {
		return 0, fmt.Errorf("%w: sync: %w", ErrEncodeOrWrite, err)
	}
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat: %w", ErrEncodeOrWrite, err)
	}
	if err = f.Close(); err != nil {
		return 0, fmt.Errorf("%w: close: %w", ErrEncodeOrWrite, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("%w: rename: %w", ErrEncodeOrWrite, err)
	}
	return fi.Size(), nil
}
