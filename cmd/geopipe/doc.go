// Package main hosts the geopipe CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once per invocation,
// applies the global --config, --data-dir, and --log-level overrides, and
// hands a fully wired workflow.Driver to the run and status commands. The
// history command reads the sqlite journal; project and split expose the
// column projector and the sectioned parser on single files.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
