// Package sectioned splits Illumina-style sectioned text into tables.
//
// A payload is a run of tab-delimited lines grouped under bracket headers
// such as "[Probes]". The parser is an explicit two-state machine (no section
// open, or one section open with its buffered lines). The Heading section is
// materialized without a header row; every other section treats its first
// line as column names.
package sectioned
