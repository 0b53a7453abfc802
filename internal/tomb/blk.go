package tomb

import (
	"encoding/binary"
	"fmt"

	"github.com/windrow/tsfile/internal/compression"
)

// Blk is a fixed-size upper-level index entry, one per flushed Block,
// packed into an array at the end of the .tomb file.
type Blk struct {
	Offset int64
	Size   int64

	MinUid int64
	MaxUid int64
	MinVer int64
	MaxVer int64

	NumRec  int32
	CmprAlg compression.Alg
	ColSizes [NumCols]int32
}

const blkEncodedSize = 8 + 8 + // Offset, Size
	8 + 8 + 8 + 8 + // MinUid, MaxUid, MinVer, MaxVer
	4 + 1 + // NumRec, CmprAlg
	NumCols*4 // ColSizes

// Put appends blk's fixed-size encoding to dst.
func Put(dst []byte, blk *Blk) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.Offset))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.Size))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MinUid))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MaxUid))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MinVer))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MaxVer))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(blk.NumRec))
	dst = append(dst, byte(blk.CmprAlg))
	for _, s := range blk.ColSizes {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(s))
	}
	return dst
}

// Get decodes one fixed-size Blk entry from the front of src.
func Get(src []byte) (Blk, error) {
	if len(src) < blkEncodedSize {
		return Blk{}, fmt.Errorf("tomb: Blk entry truncated: have %d want %d", len(src), blkEncodedSize)
	}
	var blk Blk
	blk.Offset = int64(binary.LittleEndian.Uint64(src[0:]))
	blk.Size = int64(binary.LittleEndian.Uint64(src[8:]))
	blk.MinUid = int64(binary.LittleEndian.Uint64(src[16:]))
	blk.MaxUid = int64(binary.LittleEndian.Uint64(src[24:]))
	blk.MinVer = int64(binary.LittleEndian.Uint64(src[32:]))
	blk.MaxVer = int64(binary.LittleEndian.Uint64(src[40:]))
	blk.NumRec = int32(binary.LittleEndian.Uint32(src[48:]))
	blk.CmprAlg = compression.Alg(src[52])
	off := 53
	for i := range blk.ColSizes {
		blk.ColSizes[i] = int32(binary.LittleEndian.Uint32(src[off:]))
		off += 4
	}
	return blk, nil
}

// PutArray appends the fixed-size encoding of every Blk in blks to dst.
func PutArray(dst []byte, blks []Blk) []byte {
	for i := range blks {
		dst = Put(dst, &blks[i])
	}
	return dst
}

// GetArray decodes a packed array of Blk entries from src.
func GetArray(src []byte) ([]Blk, error) {
	if len(src)%blkEncodedSize != 0 {
		return nil, fmt.Errorf("tomb: Blk array size %d is not a multiple of entry size %d", len(src), blkEncodedSize)
	}
	n := len(src) / blkEncodedSize
	out := make([]Blk, n)
	for i := range n {
		blk, err := Get(src[i*blkEncodedSize:])
		if err != nil {
			return nil, err
		}
		out[i] = blk
	}
	return out, nil
}
