// SPDX-License-Identifier: MPL-2.0

// Package panel renders the tail of a task's output in a fixed-height region.
//
// A Panel is an io.Writer. It keeps only the last Height lines, rewrites the
// current line on carriage return the way progress bars expect, and measures
// widths with ANSI sequences taken into account. In live mode the region is
// redrawn in place on every write; Close prints the final framed region.
package panel
