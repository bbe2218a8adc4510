// Package analysis turns batches of raw posts into sentiment summaries.
//
// Everything here is pure: no I/O, no clocks, no shared mutable state. The
// Lexicon is built once and only read afterwards, so one Analyzer can serve
// concurrent requests.
package analysis
