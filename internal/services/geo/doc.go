// Package geo downloads GEO series supplementary archives over HTTP.
//
// The archive for accession GSE68849 in bucket GSE68nnn lives at
// {base}/series/GSE68nnn/GSE68849/suppl/GSE68849_RAW.tar. Downloads are
// written through a temporary file so a partial transfer never appears at the
// destination.
package geo
