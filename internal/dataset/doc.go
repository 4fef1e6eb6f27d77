// Package dataset loads the raw tabular sources into long-format rows
// keyed by month-start and, where applicable, canonical country. Each
// loader is a pure function from a file path to rows; a file that cannot
// be parsed into its expected schema fails with a LoadError rather than
// degrading to an empty table, because the data shape is a load-time
// invariant everything downstream depends on.
package dataset
