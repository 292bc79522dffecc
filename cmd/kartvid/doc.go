// Package main hosts the kartvid CLI entrypoint and command graph.
//
// The Cobra-based command tree loads the mask catalog and configuration once
// per invocation, then hands frame sources to the pipeline: directories of
// still frames, video files decoded through ffmpeg, or single images for
// identification. Image tooling (compare, and, translate) works without a
// configuration file. Emitted race states go to stdout as text tables or
// JSON lines; logs go to stderr and the JSON log file.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
