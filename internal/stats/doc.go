// Package stats compares alpha-diversity metrics between groups of samples.
//
// kruskal.go implements the Kruskal-Wallis H test with average ranks and tie
// correction; p-values come from the χ² survival function with k-1 degrees of
// freedom. mannwhitney.go wraps the two-sided Mann-Whitney U test used for
// post-hoc pairwise comparisons. analyze.go runs both over a metrics table for
// every (grouping factor, metric) pair, and report.go renders the result as
// CSV or as a plain text listing with significance stars.
package stats
