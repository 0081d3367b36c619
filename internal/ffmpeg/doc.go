// Package ffmpeg runs the external ffmpeg/ffprobe binaries.
//
// Every invocation goes through [Run], which bounds it with a timeout,
// captures stderr and wraps failures in [*Error] with a classified cause
// ([ErrTimeout], [ErrInvalidData], [ErrNoFrameDecoded]). [BuildFrameArgs]
// produces the single-frame extraction command and [Extractor] turns it
// into a decoded image.
package ffmpeg
