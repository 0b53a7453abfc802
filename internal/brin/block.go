package brin

import (
	"encoding/binary"
	"fmt"

	"github.com/windrow/tsfile/internal/checksum"
	"github.com/windrow/tsfile/internal/compression"
	"github.com/windrow/tsfile/internal/tsrow"
)

// numI64Cols and numI32Cols lay out Block's columnar schedule: Suid, Uid,
// FirstKeyTs, LastKeyTs, MinVer, MaxVer, BlockOffset, BlockSize,
// BlockKeySize, SmaOffset (10 i64 columns), then Count, NumOfPKs,
// CmprAlg, SmaSize, BlockColSize (5 i32 columns).
const (
	numI64Cols = 10
	numI32Cols = 5
	NumCols    = numI64Cols + numI32Cols
)

// Block is a columnar batch of Records, held as parallel primitive
// slices rather than an array of structs so each column compresses
// independently when flushed.
type Block struct {
	i64 [numI64Cols][]int64
	i32 [numI32Cols][]int32
}

// Len returns the number of records in the block.
func (b *Block) Len() int {
	if len(b.i64[0]) == 0 {
		return 0
	}
	return len(b.i64[0])
}

// Reset truncates the block to zero records, keeping backing arrays.
func (b *Block) Reset() {
	for i := range b.i64 {
		b.i64[i] = b.i64[i][:0]
	}
	for i := range b.i32 {
		b.i32[i] = b.i32[i][:0]
	}
}

// Append adds r as the last record in the block.
func (b *Block) Append(r Record) {
	b.i64[0] = append(b.i64[0], r.Suid)
	b.i64[1] = append(b.i64[1], r.Uid)
	b.i64[2] = append(b.i64[2], r.FirstKeyTs)
	b.i64[3] = append(b.i64[3], r.LastKeyTs)
	b.i64[4] = append(b.i64[4], r.MinVer)
	b.i64[5] = append(b.i64[5], r.MaxVer)
	b.i64[6] = append(b.i64[6], r.BlockOffset)
	b.i64[7] = append(b.i64[7], r.BlockSize)
	b.i64[8] = append(b.i64[8], r.BlockKeySize)
	b.i64[9] = append(b.i64[9], r.SmaOffset)

	b.i32[0] = append(b.i32[0], r.Count)
	b.i32[1] = append(b.i32[1], r.NumOfPKs)
	b.i32[2] = append(b.i32[2], r.CmprAlg)
	b.i32[3] = append(b.i32[3], r.SmaSize)
	b.i32[4] = append(b.i32[4], r.BlockColSize)
}

// Get reconstructs the i'th record.
func (b *Block) Get(i int) Record {
	return Record{
		Suid: b.i64[0][i], Uid: b.i64[1][i],
		FirstKeyTs: b.i64[2][i], LastKeyTs: b.i64[3][i],
		MinVer: b.i64[4][i], MaxVer: b.i64[5][i],
		BlockOffset: b.i64[6][i], BlockSize: b.i64[7][i],
		BlockKeySize: b.i64[8][i], SmaOffset: b.i64[9][i],
		Count: b.i32[0][i], NumOfPKs: b.i32[1][i],
		CmprAlg: b.i32[2][i], SmaSize: b.i32[3][i], BlockColSize: b.i32[4][i],
	}
}

// MinMaxTableId scans the block's Suid/Uid columns for the min and max
// table identity present. Panics if the block is empty.
func (b *Block) MinMaxTableId() (min, max tsrow.TableId) {
	min = tsrow.TableId{Suid: b.i64[0][0], Uid: b.i64[1][0]}
	max = min
	for i := 1; i < b.Len(); i++ {
		cur := tsrow.TableId{Suid: b.i64[0][i], Uid: b.i64[1][i]}
		if tsrow.CompareTableId(cur, min) < 0 {
			min = cur
		}
		if tsrow.CompareTableId(cur, max) > 0 {
			max = cur
		}
	}
	return min, max
}

// MinMaxVersion scans the block's MinVer/MaxVer columns.
func (b *Block) MinMaxVersion() (min, max int64) {
	min, max = b.i64[4][0], b.i64[5][0]
	for i := 1; i < b.Len(); i++ {
		if b.i64[4][i] < min {
			min = b.i64[4][i]
		}
		if b.i64[5][i] > max {
			max = b.i64[5][i]
		}
	}
	return min, max
}

// Encode compresses each of the block's 15 columns independently, appends
// them sequentially, and appends a one-byte compression-type plus
// checksum trailer so a reader can validate the chunk before decoding
// it. It returns the encoded bytes and the per-column compressed sizes
// (for the owning Blk directory entry).
func Encode(alg compression.Alg, b *Block) (encoded []byte, sizes [NumCols]int32, err error) {
	n := b.Len()
	var body []byte
	col := 0
	compressOne := func(raw []byte) error {
		c, err := compression.CompressToBuffer(nil, alg, raw)
		if err != nil {
			return err
		}
		sizes[col] = int32(len(c))
		body = append(body, c...)
		col++
		return nil
	}

	for i := range numI64Cols {
		raw := make([]byte, 0, n*8)
		for _, v := range b.i64[i] {
			raw = binary.LittleEndian.AppendUint64(raw, uint64(v))
		}
		if err := compressOne(raw); err != nil {
			return nil, sizes, fmt.Errorf("brin: encode i64 column %d: %w", i, err)
		}
	}
	for i := range numI32Cols {
		raw := make([]byte, 0, n*4)
		for _, v := range b.i32[i] {
			raw = binary.LittleEndian.AppendUint32(raw, uint32(v))
		}
		if err := compressOne(raw); err != nil {
			return nil, sizes, fmt.Errorf("brin: encode i32 column %d: %w", i, err)
		}
	}

	encoded = append(encoded, body...)
	encoded = append(encoded, byte(alg))
	sum := checksum.XXH3ChecksumWithLastByte(body, byte(alg))
	encoded = binary.LittleEndian.AppendUint32(encoded, sum)
	return encoded, sizes, nil
}

// Decode validates the trailer and reconstructs a Block of n records from
// its encoded bytes and the per-column compressed sizes recorded in the
// owning Blk directory entry.
func Decode(n int, encoded []byte, sizes [NumCols]int32) (*Block, error) {
	if len(encoded) < 5 {
		return nil, fmt.Errorf("brin: encoded block truncated")
	}
	body := encoded[:len(encoded)-5]
	alg := compression.Alg(encoded[len(encoded)-5])
	wantSum := binary.LittleEndian.Uint32(encoded[len(encoded)-4:])
	if gotSum := checksum.XXH3ChecksumWithLastByte(body, byte(alg)); gotSum != wantSum {
		return nil, fmt.Errorf("brin: checksum mismatch: got %x want %x", gotSum, wantSum)
	}

	b := &Block{}
	off := 0
	for i := range numI64Cols {
		raw, err := compression.DecompressToBuffer(alg, body[off:off+int(sizes[i])], n*8)
		if err != nil {
			return nil, fmt.Errorf("brin: decode i64 column %d: %w", i, err)
		}
		off += int(sizes[i])
		b.i64[i] = make([]int64, n)
		for j := range n {
			b.i64[i][j] = int64(binary.LittleEndian.Uint64(raw[j*8:]))
		}
	}
	for i := range numI32Cols {
		sz := sizes[numI64Cols+i]
		raw, err := compression.DecompressToBuffer(alg, body[off:off+int(sz)], n*4)
		if err != nil {
			return nil, fmt.Errorf("brin: decode i32 column %d: %w", i, err)
		}
		off += int(sz)
		b.i32[i] = make([]int32, n)
		for j := range n {
			b.i32[i][j] = int32(binary.LittleEndian.Uint32(raw[j*4:]))
		}
	}
	return b, nil
}
