// Package coldata implements the BlockCodec external contract named by the
// wider system: compressing a tsrow.BlockData into the four buffers a data
// block is made of (key-part keys, key-part meta, column-header
// directory, column data), the inverse decompression (whole-block and
// column-projected), and per-column SMA computation.
package coldata

import (
	"encoding/binary"
	"math"

	"github.com/windrow/tsfile/internal/compression"
	"github.com/windrow/tsfile/internal/tsrow"
)

// chunk is one compressed sub-part (bitmap, offset, or value array) of a
// typed column, together with the sizes needed to decompress it.
type chunk struct {
	rawSize  uint32
	compSize uint32
	bytes    []byte // only populated when building; nil after decode-side use
}

func (c chunk) encodeSizes(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, c.rawSize)
	dst = binary.LittleEndian.AppendUint32(dst, c.compSize)
	return dst
}

func decodeChunkSizes(src []byte) (rawSize, compSize uint32, rest []byte) {
	rawSize = binary.LittleEndian.Uint32(src)
	compSize = binary.LittleEndian.Uint32(src[4:])
	return rawSize, compSize, src[8:]
}

// encodeTypedColumn compresses vals (of the given type) into three
// independently-compressed chunks: a null bitmap (empty if no value is
// null), a variable-length offset table (only for TypeBinary), and the
// packed value bytes. alg compresses each non-empty chunk.
func encodeTypedColumn(alg compression.Alg, vtype tsrow.ValueType, vals []Value) (bitmap, offsets, values chunk, err error) {
	rawBitmap, rawOffsets, rawValues := rawEncodeTypedColumn(vtype, vals)

	bitmap, err = compressChunk(alg, rawBitmap)
	if err != nil {
		return chunk{}, chunk{}, chunk{}, err
	}
	offsets, err = compressChunk(alg, rawOffsets)
	if err != nil {
		return chunk{}, chunk{}, chunk{}, err
	}
	values, err = compressChunk(alg, rawValues)
	if err != nil {
		return chunk{}, chunk{}, chunk{}, err
	}
	return bitmap, offsets, values, nil
}

func compressChunk(alg compression.Alg, raw []byte) (chunk, error) {
	if len(raw) == 0 {
		return chunk{}, nil
	}
	compressed, err := compression.CompressToBuffer(nil, alg, raw)
	if err != nil {
		return chunk{}, err
	}
	return chunk{rawSize: uint32(len(raw)), compSize: uint32(len(compressed)), bytes: compressed}, nil
}

func decompressChunk(alg compression.Alg, rawSize uint32, compressed []byte) ([]byte, error) {
	if rawSize == 0 {
		return nil, nil
	}
	return compression.DecompressToBuffer(alg, compressed, int(rawSize))
}

// Value is a type alias kept local to avoid importing tsrow.Value twice in
// call sites that already import tsrow; exported functions below use
// tsrow.Value directly.
type Value = tsrow.Value

func rawEncodeTypedColumn(vtype tsrow.ValueType, vals []Value) (bitmap, offsets, values []byte) {
	n := len(vals)
	hasNull := false
	for _, v := range vals {
		if v.IsNull() {
			hasNull = true
			break
		}
	}
	if hasNull {
		bitmap = make([]byte, (n+7)/8)
		for i, v := range vals {
			if v.IsNull() {
				bitmap[i/8] |= 1 << uint(i%8)
			}
		}
	}

	switch vtype {
	case tsrow.TypeInt64:
		values = make([]byte, 0, n*8)
		for _, v := range vals {
			values = binary.LittleEndian.AppendUint64(values, uint64(v.I64))
		}
	case tsrow.TypeDouble:
		values = make([]byte, 0, n*8)
		for _, v := range vals {
			values = binary.LittleEndian.AppendUint64(values, math.Float64bits(v.F64))
		}
	case tsrow.TypeBool:
		values = make([]byte, n)
		for i, v := range vals {
			if v.Bool {
				values[i] = 1
			}
		}
	case tsrow.TypeBinary:
		offsets = make([]byte, 0, (n+1)*4)
		var cum uint32
		offsets = binary.LittleEndian.AppendUint32(offsets, cum)
		for _, v := range vals {
			cum += uint32(len(v.Bin))
			offsets = binary.LittleEndian.AppendUint32(offsets, cum)
		}
		values = make([]byte, 0, cum)
		for _, v := range vals {
			values = append(values, v.Bin...)
		}
	}
	return bitmap, offsets, values
}

// rawDecodeTypedColumn is the inverse of rawEncodeTypedColumn: given the
// raw (already decompressed) bitmap/offsets/values byte slices, it
// reconstructs n tsrow.Value entries of the given type.
func rawDecodeTypedColumn(vtype tsrow.ValueType, n int, bitmap, offsets, values []byte) []Value {
	isNull := func(i int) bool {
		if len(bitmap) == 0 {
			return false
		}
		return bitmap[i/8]&(1<<uint(i%8)) != 0
	}

	out := make([]Value, n)
	switch vtype {
	case tsrow.TypeInt64:
		for i := range n {
			if isNull(i) {
				out[i] = tsrow.NullValue()
				continue
			}
			out[i] = tsrow.Int64Value(int64(binary.LittleEndian.Uint64(values[i*8:])))
		}
	case tsrow.TypeDouble:
		for i := range n {
			if isNull(i) {
				out[i] = tsrow.NullValue()
				continue
			}
			out[i] = tsrow.DoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(values[i*8:])))
		}
	case tsrow.TypeBool:
		for i := range n {
			if isNull(i) {
				out[i] = tsrow.NullValue()
				continue
			}
			out[i] = tsrow.BoolValue(values[i] != 0)
		}
	case tsrow.TypeBinary:
		for i := range n {
			if isNull(i) {
				out[i] = tsrow.NullValue()
				continue
			}
			start := binary.LittleEndian.Uint32(offsets[i*4:])
			end := binary.LittleEndian.Uint32(offsets[(i+1)*4:])
			out[i] = tsrow.BinaryValue(values[start:end])
		}
	default:
		for i := range n {
			out[i] = tsrow.NullValue()
		}
	}
	return out
}

// compressedColumn bundles a typed column's three compressed chunks for
// decoding; built from a BlockCol directory entry or a DiskDataHdr
// key-column descriptor.
type compressedColumn struct {
	vtype       tsrow.ValueType
	bitmapComp  []byte
	bitmapSizes chunk
	offsetsComp []byte
	offsetSizes chunk
	valuesComp  []byte
	valueSizes  chunk
}

// decodeTypedColumn decompresses and reconstructs a typed column's n
// values from its three compressed chunks.
func decodeTypedColumn(alg compression.Alg, n int, cc compressedColumn) ([]Value, error) {
	bitmap, err := decompressChunk(alg, cc.bitmapSizes.rawSize, cc.bitmapComp)
	if err != nil {
		return nil, err
	}
	offsets, err := decompressChunk(alg, cc.offsetSizes.rawSize, cc.offsetsComp)
	if err != nil {
		return nil, err
	}
	values, err := decompressChunk(alg, cc.valueSizes.rawSize, cc.valuesComp)
	if err != nil {
		return nil, err
	}
	return rawDecodeTypedColumn(cc.vtype, n, bitmap, offsets, values), nil
}
