package sheet

import "errors"

// Sentinel errors. Match with errors.Is; the underlying cause is wrapped
// alongside.
var (
	// ErrMetadataUnavailable means the probe failed or reported no usable
	// duration. No sheet is written.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrFrameExtraction marks a single frame that could not be extracted.
	// It is recoverable: the cell becomes a placeholder.
	ErrFrameExtraction = errors.New("frame extraction failed")

	// ErrEncodeOrWrite means the sheet could not be encoded or saved. No
	// partial file is left behind.
	ErrEncodeOrWrite = errors.New("encode or write failed")
)
