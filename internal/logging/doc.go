// Package logging assembles structured slog loggers and formatting helpers used
// across geopipe.
//
// NewFromConfig builds a console logger on stderr and, when a log directory is
// configured, fans every record out to a JSON file sink as well. Context-aware
// helpers tag log lines with run IDs, datasets, stages, and archive members.
// NewNop returns a discarding logger for tests and wiring code.
package logging
