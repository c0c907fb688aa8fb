// Package preflight provides readiness checks for the filesystem paths and
// the archive mirror that geopipe depends on.
//
// These checks run in two contexts:
//   - "geopipe run" calls RunAll with only the directory checks before taking
//     the storage-root lock, so a missing or read-only data directory fails
//     fast.
//   - "geopipe status" adds the free-space check and, with --check-mirror,
//     the mirror probe, and renders the results next to stage status.
package preflight
