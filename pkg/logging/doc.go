// Package logging provides a small subsystem-tagged logging facade over
// log/slog.
//
// Every log call names the subsystem it originates from (for example
// "OAuth", "Store", "Server") so that a single text stream stays
// greppable without per-package logger plumbing. The package is
// initialized once from the CLI entry point via Init; before that, all
// calls are no-ops.
package logging
