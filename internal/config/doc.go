// Package config loads, normalizes, and validates kartvid configuration.
//
// Configuration lives in a TOML file (default ~/.config/kartvid/config.toml,
// falling back to ./kartvid.toml). Missing files are not an error: Default
// values apply and the CLI reports where a file would be read from. Path
// fields are expanded (including ~) during Load so callers always see
// absolute paths.
package config
