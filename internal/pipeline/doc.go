// Package pipeline drives frame sources through the race tracker.
//
// Run pushes one source through a kv.VideoContext, fanning emitted states out
// to the configured emitter and, when enabled, the run database. Batch runs
// several sources concurrently with a bounded number of workers; every
// worker shares the one mask catalog, and output is flushed in input order
// so records from different videos never interleave.
package pipeline
