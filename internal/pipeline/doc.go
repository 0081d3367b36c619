// Package pipeline resolves the input path, decides which files need a
// sheet, runs the remaining jobs on a bounded worker pool and reports
// per-file results and a batch summary.
//
//   - discover.go: Resolve (file or directory) and Discover (non-recursive)
//   - job.go:      Job, the per-file unit of work
//   - runner.go:   Run, the worker pool and logging
//   - stats.go:    RunStats
package pipeline
