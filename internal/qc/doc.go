// Package qc evaluates quality-control rules against computed sample metrics.
package qc
