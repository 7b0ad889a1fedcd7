// Package ffprobe wraps the ffprobe binary for the metadata the catalog
// derives after import.
//
// Key types:
//   - Prober: runs ffprobe with a configured binary and per-call timeout
//   - Result: parsed ffprobe output containing streams and format metadata
//
// FormatDuration and ParseClock convert between durations and the M:SS
// clock strings stored on catalog records.
package ffprobe
