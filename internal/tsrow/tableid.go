// Package tsrow defines the row-level data model shared by the block
// codec, the brin/tomb indexes, and Reader/Writer: table identity, row
// keys, typed column values, and the columnar BlockData batch.
package tsrow

import "math"

// TableId identifies a (super-table, table) pair. The canonical ordering
// is lexicographic on (Suid, Uid).
type TableId struct {
	Suid int64
	Uid  int64
}

// MaxTableId is the sentinel "past all tables" id used to drain merge
// cursors during flush.
var MaxTableId = TableId{Suid: math.MaxInt64, Uid: math.MaxInt64}

// CompareTableId returns -1, 0, or 1 comparing a to b lexicographically
// on (Suid, Uid).
func CompareTableId(a, b TableId) int {
	if a.Suid != b.Suid {
		if a.Suid < b.Suid {
			return -1
		}
		return 1
	}
	if a.Uid != b.Uid {
		if a.Uid < b.Uid {
			return -1
		}
		return 1
	}
	return 0
}
