// Package probe inspects video files with a single ffprobe JSON call and
// reduces the output to the [Metadata] a thumbnail sheet needs.
//
// Files:
//   - types.go:  Metadata and its derived values (resolution, display size)
//   - prober.go: FFprobe (the subprocess wrapper) and ParseJSON
package probe
