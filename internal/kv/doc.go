// Package kv turns decoded frames into race state.
//
// Identify scores one frame against the mask catalog and folds the matches
// into a Screen. A VideoContext consumes Screens frame by frame, tracks the
// start and end of races, filters transient garbage, runs the per-player item
// state machine, and hands every meaningful change to an Emitter.
//
// A VideoContext is not safe for concurrent use. The Catalog it reads is, so
// several contexts may share one catalog across goroutines.
package kv
