// Package logging assembles structured slog loggers and formatting helpers used
// across kartvid commands.
//
// Console output goes to stderr so that emitted race states on stdout stay
// machine readable. When a log directory is configured a JSON copy of every
// record is appended to kartvid.log there. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
