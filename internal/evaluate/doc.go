// Package evaluate scores detection output against ground truth and records
// the latency and memory cost of detection calls.
//
// Scoring operates on multisets of entity names, never sets: duplicate
// counts are matched pairwise, so over-detecting a stacked item shows up as
// false positives instead of disappearing into a presence boolean.
//
// Benchmark results can be persisted to a SQLite history database to track
// accuracy and latency regressions across strategies and revisions.
package evaluate
