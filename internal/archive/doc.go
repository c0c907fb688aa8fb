// Package archive runs the Extract stage: it walks a GEO supplementary tar
// container, writes each member into its own directory, decompresses gzip
// payloads, and hands the text to the sectioned parser.
//
// Complete is the stage's resumability predicate and is evaluated purely from
// the on-disk tree.
package archive
