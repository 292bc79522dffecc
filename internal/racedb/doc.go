// Package racedb persists processing runs and the race states they emitted
// in SQLite.
//
// Each processed source is a run identified by a UUID. Every state the race
// tracker emits becomes an event row carrying the frame number, video time,
// start/done flags, track and the per-player record as JSON. The `runs` and
// `events` commands read them back.
//
// The schema lives in schema.sql and is versioned in schema.go. Schema
// changes bump schemaVersion; users delete the database to adopt it.
package racedb
