// Package templates loads and caches the reference icon image for every
// catalog entity, in the normalized grayscale form the template matcher
// correlates against.
//
// # Concurrency
//
// The store is the only pipeline component with state shared across
// concurrent detection calls. Cache reads are lock-free of contention
// (RWMutex read lock); the first load of each entity is serialized per key
// so concurrent callers for the same id share exactly one decode.
//
// # Lifecycle
//
// Templates are immutable after creation and live until an explicit Clear
// (catalog reload). Cancelled detection calls never invalidate the cache:
// entries are request-independent.
package templates
