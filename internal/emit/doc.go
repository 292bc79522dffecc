// Package emit renders the race states produced by kv.VideoContext.
//
// TextEmitter prints a human-readable player table per state, JSONEmitter
// writes one JSON object per line for downstream tooling, and StoreEmitter
// persists states in the run database. Multi fans one state out to several
// emitters. DebugFrameWriter saves the frame behind every emitted state so a
// questionable classification can be inspected later.
package emit
