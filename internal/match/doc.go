// Package match scans preprocessed screenshots for regions that correlate
// with cached reference icons.
//
// Matching uses normalized cross-correlation over summed-area tables, which
// gives O(1) window mean and variance queries and makes the full-image scan
// tractable at native resolution. This is the pipeline's dominant cost
// center: strategies tune its resolution, acceptance threshold, and
// per-entity candidate cap rather than the text path.
//
// # Suppression
//
// Overlapping acceptances for the same entity are reduced to the single
// highest-scoring box before results are returned, so one icon instance
// never yields multiple candidates. The surviving non-overlapping regions
// per entity are what the fusion engine counts as stack instances.
package match
