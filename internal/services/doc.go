// Package services defines shared utilities consumed by the pipeline stages
// and the external integrations they call.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, dataset labels, and
//     archive member names for logging.
//   - Structured error markers plus the Wrap helper so every stage failure
//     names its stage, operation, and the artifact that failed.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
