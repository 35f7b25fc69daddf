// Package types defines the value types shared by the calculator, the table
// codecs, the batch driver and the statistics package. They are the canonical
// in-memory representations of one abundance table row and its derived
// alpha-diversity metrics, separate from the CSV wire format.
package types
