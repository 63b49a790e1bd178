// Package chunker slices file content into bounded-size pieces for the
// remote model.
//
// Chunks are fixed-length substrings cut at character positions, not at
// statement or brace boundaries. A chunk boundary can therefore fall in
// the middle of a C# construct; the prompt's file-level context section
// exists to soften that. Reassembly order is the caller's responsibility
// and must match the order returned by Split.
package chunker
