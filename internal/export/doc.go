// Package export renders a batch run summary in the Prometheus text
// exposition format, for the node_exporter textfile collector.
//
// summary.go builds the metric families from a batch.Summary and encodes
// them with expfmt. WriteSummaryFile replaces the target file atomically,
// which the textfile collector requires to avoid reading a torn file.
package export
