package tomb

import (
	"encoding/binary"
	"fmt"

	"github.com/windrow/tsfile/internal/checksum"
	"github.com/windrow/tsfile/internal/compression"
)

// NumCols is the tombstone block's columnar schedule: Uid, Version,
// SKey, EKey.
const NumCols = 4

// Block is a columnar batch of Records.
type Block struct {
	cols [NumCols][]int64
}

// Len returns the number of records in the block.
func (b *Block) Len() int {
	return len(b.cols[0])
}

// Reset truncates the block to zero records, keeping backing arrays.
func (b *Block) Reset() {
	for i := range b.cols {
		b.cols[i] = b.cols[i][:0]
	}
}

// Append adds r as the last record in the block.
func (b *Block) Append(r Record) {
	b.cols[0] = append(b.cols[0], r.Uid)
	b.cols[1] = append(b.cols[1], r.Version)
	b.cols[2] = append(b.cols[2], r.SKey)
	b.cols[3] = append(b.cols[3], r.EKey)
}

// Get reconstructs the i'th record.
func (b *Block) Get(i int) Record {
	return Record{Uid: b.cols[0][i], Version: b.cols[1][i], SKey: b.cols[2][i], EKey: b.cols[3][i]}
}

// MinMaxUid scans the Uid column.
func (b *Block) MinMaxUid() (min, max int64) {
	min, max = b.cols[0][0], b.cols[0][0]
	for _, v := range b.cols[0][1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// MinMaxVersion scans the Version column.
func (b *Block) MinMaxVersion() (min, max int64) {
	min, max = b.cols[1][0], b.cols[1][0]
	for _, v := range b.cols[1][1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Encode compresses each of the block's 4 columns independently, appends
// them sequentially, and appends a compression-type-plus-checksum
// trailer, mirroring the brin.Block wire format.
func Encode(alg compression.Alg, b *Block) (encoded []byte, sizes [NumCols]int32, err error) {
	n := b.Len()
	var body []byte
	for i := range NumCols {
		raw := make([]byte, 0, n*8)
		for _, v := range b.cols[i] {
			raw = binary.LittleEndian.AppendUint64(raw, uint64(v))
		}
		c, err := compression.CompressToBuffer(nil, alg, raw)
		if err != nil {
			return nil, sizes, fmt.Errorf("tomb: encode column %d: %w", i, err)
		}
		sizes[i] = int32(len(c))
		body = append(body, c...)
	}

	encoded = append(encoded, body...)
	encoded = append(encoded, byte(alg))
	sum := checksum.XXH3ChecksumWithLastByte(body, byte(alg))
	encoded = binary.LittleEndian.AppendUint32(encoded, sum)
	return encoded, sizes, nil
}

// Decode validates the trailer and reconstructs a Block of n records.
func Decode(n int, encoded []byte, sizes [NumCols]int32) (*Block, error) {
	if len(encoded) < 5 {
		return nil, fmt.Errorf("tomb: encoded block truncated")
	}
	body := encoded[:len(encoded)-5]
	alg := compression.Alg(encoded[len(encoded)-5])
	wantSum := binary.LittleEndian.Uint32(encoded[len(encoded)-4:])
	if gotSum := checksum.XXH3ChecksumWithLastByte(body, byte(alg)); gotSum != wantSum {
		return nil, fmt.Errorf("tomb: checksum mismatch: got %x want %x", gotSum, wantSum)
	}

	b := &Block{}
	off := 0
	for i := range NumCols {
		raw, err := compression.DecompressToBuffer(alg, body[off:off+int(sizes[i])], n*8)
		if err != nil {
			return nil, fmt.Errorf("tomb: decode column %d: %w", i, err)
		}
		off += int(sizes[i])
		b.cols[i] = make([]int64, n)
		for j := range n {
			b.cols[i][j] = int64(binary.LittleEndian.Uint64(raw[j*8:]))
		}
	}
	return b, nil
}
