// Package logs reads back the JSON log file written by kartvid.
//
// Tail streams the file with bounded memory, returning the last N lines or
// everything after a byte offset, and optionally waits for new lines so
// `kartvid logs --follow` can poll. Entries parse each line into its
// standard keys plus attributes and Filter narrows them by level, run, or
// source for display.
package logs
