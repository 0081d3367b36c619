// Package naming maps input videos to sheet paths and detects in-run
// collisions, where two inputs (e.g. clip.mp4 and clip.mkv) would write the
// same sheet.
package naming
