// Package upgrader drives the end-to-end upgrade of a directory tree.
//
// Each discovered file moves through a fixed sequence: read, split into
// chunks, extract file-level context when the file splits, upgrade each
// chunk through the completion client in order, reassemble, and rewrite
// the file in place (atomically, temp file + rename). Files are handled
// concurrently by a bounded worker pool; chunks within one file are
// never parallelized, so chunk order and reassembly order always agree.
//
// Failure containment mirrors the granularity of the work: a failed
// remote call degrades that one chunk to its original text, a failed
// read or write fails that one file, and neither stops the run. Only
// context cancellation ends the run early.
package upgrader
