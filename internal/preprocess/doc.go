// Package preprocess normalizes raw screenshots into the single-channel
// intensity buffers both recognizers consume.
//
// # Coordinate System
//
// Buffers are 0-based and row-major with (0,0) at the top-left. A buffer
// carries the scale it was produced at; candidates found in buffer
// coordinates are divided by that scale to map back to the original image.
//
// # Lifetime
//
// A preprocessed buffer belongs to exactly one detection call and is
// discarded when the call completes. Buffers are never shared across calls,
// so one caller's downscale choice cannot affect another's results.
package preprocess
