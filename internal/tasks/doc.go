// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Catalog Import
//
// [ImportEngine.Import] walks a directory tree, probes every image it finds for its intrinsic
// dimensions and hands the results to a [MediaWriter] (repositories.MediaRepository in the CLI).
//
//   - Candidate files are collected first so progress has a known total
//   - A fixed pool of workers decodes image headers concurrently
//   - A [rate.Limiter] paces job dispatch so a large import does not saturate the disk
//   - Writes happen on the collecting goroutine, one at a time
//
// Files whose header cannot be decoded are reported as failures; paths already in the catalog are
// reported as skipped. Neither aborts the import.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
