// Package brin implements the two-level sparse block-range index stored in
// a .head file: BrinRecord entries describing each data block, batched
// into columnar BrinBlock chunks, which are themselves indexed by a
// packed array of fixed-size BrinBlk entries at the end of the file.
package brin

import "github.com/windrow/tsfile/internal/tsrow"

// Record is one data block's index entry. It carries enough information
// for a reader to locate, decompress, and validate the block without
// touching the data block itself: the table it belongs to, its key and
// version range, its disk location in .data, and the matching SMA
// location in .sma.
type Record struct {
	Suid int64
	Uid  int64

	FirstKeyTs int64
	LastKeyTs  int64
	MinVer     int64
	MaxVer     int64

	BlockOffset  int64
	BlockSize    int64
	BlockKeySize int64
	SmaOffset    int64

	Count       int32
	NumOfPKs    int32
	CmprAlg     int32
	SmaSize     int32
	BlockColSize int32
}

// TableId returns the record's table identity.
func (r Record) TableId() tsrow.TableId { return tsrow.TableId{Suid: r.Suid, Uid: r.Uid} }
