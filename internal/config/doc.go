// Package config loads, normalizes, and validates geopipe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours GEOPIPE_* environment overrides.
// The Config type centralizes the storage root, the dataset reference, fetch
// settings, projection columns, and logging so the CLI and the pipeline
// driver discover them in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, a validated dataset reference, and clear validation errors.
package config
