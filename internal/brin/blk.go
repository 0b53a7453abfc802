package brin

import (
	"encoding/binary"
	"fmt"

	"github.com/windrow/tsfile/internal/compression"
	"github.com/windrow/tsfile/internal/tsrow"
)

// Blk is a fixed-size upper-level index entry: one per flushed Block,
// packed into an array at the end of the .head file. It summarizes the
// Block enough for a reader to decide whether to decompress it at all —
// table-id range, version range — and carries the disk pointer and
// per-column sizes needed to do so.
type Blk struct {
	Offset int64
	Size   int64

	MinTableId tsrow.TableId
	MaxTableId tsrow.TableId
	MinVer     int64
	MaxVer     int64

	NumRec   int32
	NumOfPKs int32
	CmprAlg  compression.Alg
	ColSizes [NumCols]int32
}

// blkEncodedSize is the fixed wire size of one Blk entry.
const blkEncodedSize = 8 + 8 + // Offset, Size
	8 + 8 + 8 + 8 + // MinTableId{Suid,Uid}, MaxTableId{Suid,Uid}
	8 + 8 + // MinVer, MaxVer
	4 + 4 + 1 + // NumRec, NumOfPKs, CmprAlg
	NumCols*4 // ColSizes

// Put appends blk's fixed-size encoding to dst.
func Put(dst []byte, blk *Blk) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.Offset))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.Size))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MinTableId.Suid))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MinTableId.Uid))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MaxTableId.Suid))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MaxTableId.Uid))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MinVer))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(blk.MaxVer))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(blk.NumRec))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(blk.NumOfPKs))
	dst = append(dst, byte(blk.CmprAlg))
	for _, s := range blk.ColSizes {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(s))
	}
	return dst
}

// Get decodes one fixed-size Blk entry from the front of src.
func Get(src []byte) (Blk, error) {
	if len(src) < blkEncodedSize {
		return Blk{}, fmt.Errorf("brin: Blk entry truncated: have %d want %d", len(src), blkEncodedSize)
	}
	var blk Blk
	blk.Offset = int64(binary.LittleEndian.Uint64(src[0:]))
	blk.Size = int64(binary.LittleEndian.Uint64(src[8:]))
	blk.MinTableId = tsrow.TableId{
		Suid: int64(binary.LittleEndian.Uint64(src[16:])),
		Uid:  int64(binary.LittleEndian.Uint64(src[24:])),
	}
	blk.MaxTableId = tsrow.TableId{
		Suid: int64(binary.LittleEndian.Uint64(src[32:])),
		Uid:  int64(binary.LittleEndian.Uint64(src[40:])),
	}
	blk.MinVer = int64(binary.LittleEndian.Uint64(src[48:]))
	blk.MaxVer = int64(binary.LittleEndian.Uint64(src[56:]))
	blk.NumRec = int32(binary.LittleEndian.Uint32(src[64:]))
	blk.NumOfPKs = int32(binary.LittleEndian.Uint32(src[68:]))
	blk.CmprAlg = compression.Alg(src[72])
	off := 73
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
		return nil, fmt.Errorf("brin: Blk array size %d is not a multiple of entry size %d", len(src), blkEncodedSize)
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
