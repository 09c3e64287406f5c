// Package version exposes build metadata for the drowsiness binaries.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Full renders them for the `version` subcommand and KV for
// the startup log line.
package version
