// Package sheet builds one thumbnail sheet: probe, plan, extract N frames,
// compose them under a metadata header and write the JPEG atomically.
//
// External tools are reached only through the [Prober] and [FrameExtractor]
// interfaces, so the whole flow runs against fakes in tests (see
// sheet/sheettest).
package sheet
