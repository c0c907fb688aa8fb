// Package history keeps a SQLite journal of stage outcomes for operators.
//
// Every resolved stage (skipped, completed, or failed) is appended with its
// run ID, dataset, and timing. The journal is write-only from the pipeline's
// point of view: completeness is always derived from the data tree, never
// from these rows, so deleting the database never changes what a run does.
// Schema changes bump the version in schema.go.
package history
