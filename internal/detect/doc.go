// Package detect orchestrates the screenshot build detection pipeline:
// preprocess the image, run the text and template recognizers concurrently,
// and fuse their candidates into one deduplicated entity list.
//
// # Error Policy
//
// Per-entity and per-recognizer failures are absorbed as reduced evidence:
// a missing template shrinks the matchable set, and an unavailable text
// engine degrades the call to template-matching-only. Only malformed input
// (preprocess.ErrInvalidImage), an unrecognized strategy name
// (strategy.ErrUnknownStrategy), and caller cancellation surface as call
// errors. A detection call virtually never crashes its caller; the worst
// case is an empty result.
//
// # Determinism
//
// Candidate ordering from either recognizer is not guaranteed, but the
// final result is always deterministically ordered (descending confidence,
// ascending entity id), so repeated runs over the same input with a warm
// cache are bit-identical.
package detect
