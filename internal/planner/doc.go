// Package planner turns probe metadata and config into a per-file [Plan]:
// where each of the N frames is sampled and how the sheet is laid out.
// It performs no I/O; the sheet package executes the plan.
//
//   - timestamps.go: even sampling across the duration (Timestamps)
//   - layout.go:     grid geometry derived from sheet width and aspect (NewLayout)
//   - planner.go:    BuildPlan, tying both together with frame requests
package planner
