// Package tsfile implements the on-disk data-file read/write core of a
// time-series storage engine: for one time-window "file group" it reads
// and writes the four parallel files that make it up — a .data file of
// compressed column blocks, a .sma file of per-block aggregate
// summaries, a .head file holding a two-level sparse block-range index,
// and a .tomb file holding tombstone ranges — and merges an incoming
// row stream against whatever file group already exists for that
// window.
//
// Reader opens a committed file group and answers random-access queries
// against it: resolve the brin index, fetch a block's rows (whole or
// column-projected), fetch its SMA, and iterate tombstones. Writer
// streams rows in (table, rowKey) order, merges them against an
// embedded Reader over the prior file group, and on Close returns a
// fileop.Log describing exactly which physical files were created,
// modified, or removed — the atomic swap itself is an external
// component's responsibility.
package tsfile
