package coldata

import (
	"encoding/binary"
	"fmt"

	"github.com/windrow/tsfile/internal/compression"
	"github.com/windrow/tsfile/internal/tsrow"
)

// DiskDataHdr is the key-part meta buffer: enough information to slice and
// decompress the key-part keys buffer (timestamps, versions, and any
// primary-key columns) and to locate the column-header directory that
// follows it in the block region.
type DiskDataHdr struct {
	NRow    int32
	NumPK   int32
	CmprAlg compression.Alg

	TsValues  chunk
	VerValues chunk
	PKCols    []pkColDir

	// SzBlkCol is the byte length of the column-header directory buffer
	// that follows the key-part keys in the block region; colData follows
	// the directory.
	SzBlkCol uint32
}

type pkColDir struct {
	Type    tsrow.ValueType
	Bitmap  chunk
	Offsets chunk
	Values  chunk
}

// PutDiskDataHdr encodes hdr, appending to dst.
func PutDiskDataHdr(dst []byte, hdr *DiskDataHdr) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(hdr.NRow))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(hdr.NumPK))
	dst = append(dst, byte(hdr.CmprAlg))
	dst = hdr.TsValues.encodeSizes(dst)
	dst = hdr.VerValues.encodeSizes(dst)
	for _, pk := range hdr.PKCols {
		dst = append(dst, byte(pk.Type))
		dst = pk.Bitmap.encodeSizes(dst)
		dst = pk.Offsets.encodeSizes(dst)
		dst = pk.Values.encodeSizes(dst)
	}
	dst = binary.LittleEndian.AppendUint32(dst, hdr.SzBlkCol)
	return dst
}

// GetDiskDataHdr decodes a DiskDataHdr from the front of src and reports
// how many bytes it consumed, so the caller can locate whatever follows
// it (the key-part keys buffer, in the on-disk block layout).
func GetDiskDataHdr(src []byte) (*DiskDataHdr, int, error) {
	if len(src) < 9 {
		return nil, 0, fmt.Errorf("coldata: DiskDataHdr truncated")
	}
	hdr := &DiskDataHdr{}
	hdr.NRow = int32(binary.LittleEndian.Uint32(src))
	hdr.NumPK = int32(binary.LittleEndian.Uint32(src[4:]))
	hdr.CmprAlg = compression.Alg(src[8])
	rest := src[9:]

	var raw, comp uint32
	raw, comp, rest = decodeChunkSizes(rest)
	hdr.TsValues = chunk{rawSize: raw, compSize: comp}
	raw, comp, rest = decodeChunkSizes(rest)
	hdr.VerValues = chunk{rawSize: raw, compSize: comp}

	hdr.PKCols = make([]pkColDir, hdr.NumPK)
	for i := range hdr.PKCols {
		if len(rest) < 1 {
			return nil, 0, fmt.Errorf("coldata: DiskDataHdr PK descriptor truncated")
		}
		pk := pkColDir{Type: tsrow.ValueType(rest[0])}
		rest = rest[1:]
		raw, comp, rest = decodeChunkSizes(rest)
		pk.Bitmap = chunk{rawSize: raw, compSize: comp}
		raw, comp, rest = decodeChunkSizes(rest)
		pk.Offsets = chunk{rawSize: raw, compSize: comp}
		raw, comp, rest = decodeChunkSizes(rest)
		pk.Values = chunk{rawSize: raw, compSize: comp}
		hdr.PKCols[i] = pk
	}
	if len(rest) < 4 {
		return nil, 0, fmt.Errorf("coldata: DiskDataHdr szBlkCol truncated")
	}
	hdr.SzBlkCol = binary.LittleEndian.Uint32(rest)
	rest = rest[4:]
	consumed := len(src) - len(rest)
	return hdr, consumed, nil
}

// BlockCol is one entry in the column-header directory: present only for
// columns that carry at least one non-null value in the block. A column
// cid absent from the directory is entirely NULL for this block.
type BlockCol struct {
	Cid     int32
	Type    tsrow.ValueType
	Flag    tsrow.Flag
	Bitmap  chunk
	Offsets chunk
	Values  chunk
}

func putBlockCol(dst []byte, c *BlockCol) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(c.Cid))
	dst = append(dst, byte(c.Type), byte(c.Flag))
	dst = c.Bitmap.encodeSizes(dst)
	dst = c.Offsets.encodeSizes(dst)
	dst = c.Values.encodeSizes(dst)
	return dst
}

func getBlockCol(src []byte) (BlockCol, []byte, error) {
	if len(src) < 6 {
		return BlockCol{}, nil, fmt.Errorf("coldata: BlockCol entry truncated")
	}
	c := BlockCol{
		Cid:  int32(binary.LittleEndian.Uint32(src)),
		Type: tsrow.ValueType(src[4]),
		Flag: tsrow.Flag(src[5]),
	}
	rest := src[6:]
	var raw, comp uint32
	raw, comp, rest = decodeChunkSizes(rest)
	c.Bitmap = chunk{rawSize: raw, compSize: comp}
	raw, comp, rest = decodeChunkSizes(rest)
	c.Offsets = chunk{rawSize: raw, compSize: comp}
	raw, comp, rest = decodeChunkSizes(rest)
	c.Values = chunk{rawSize: raw, compSize: comp}
	return c, rest, nil
}

// BlockDataCompress compresses bd into the four buffers a data block is
// made of: key-part keys, key-part meta, column-header directory, column
// data. Writer appends them to the .data file as key-part meta, key-part
// keys, column-header directory, column data (see SplitKeyRegion).
func BlockDataCompress(alg compression.Alg, bd *tsrow.BlockData) (keyData, keyMeta, colHdr, colBytes []byte, err error) {
	timestamps := make([]Value, bd.NRow)
	for i, k := range bd.Keys {
		timestamps[i] = tsrow.Int64Value(k.Timestamp)
	}
	_, _, tsChunk, err := encodeTypedColumn(alg, tsrow.TypeInt64, timestamps)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("coldata: compress timestamps: %w", err)
	}
	versions := make([]Value, bd.NRow)
	for i, v := range bd.Versions {
		versions[i] = tsrow.Int64Value(v)
	}
	_, _, verChunk, err := encodeTypedColumn(alg, tsrow.TypeInt64, versions)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("coldata: compress versions: %w", err)
	}

	hdr := &DiskDataHdr{
		NRow:      int32(bd.NRow),
		CmprAlg:   alg,
		TsValues:  tsChunk,
		VerValues: verChunk,
	}
	keyData = append(keyData, tsChunk.bytes...)
	keyData = append(keyData, verChunk.bytes...)

	numPK := 0
	if bd.NRow > 0 {
		numPK = len(bd.Keys[0].PrimaryKeys)
	}
	hdr.NumPK = int32(numPK)
	for pi := range numPK {
		vals := make([]Value, bd.NRow)
		var vtype tsrow.ValueType
		for i := range bd.Keys {
			vals[i] = bd.Keys[i].PrimaryKeys[pi]
			if !vals[i].IsNull() {
				vtype = vals[i].Type
			}
		}
		bm, off, valc, err := encodeTypedColumn(alg, vtype, vals)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("coldata: compress PK column %d: %w", pi, err)
		}
		hdr.PKCols = append(hdr.PKCols, pkColDir{Type: vtype, Bitmap: bm, Offsets: off, Values: valc})
		keyData = append(keyData, bm.bytes...)
		keyData = append(keyData, off.bytes...)
		keyData = append(keyData, valc.bytes...)
	}

	for ci := range bd.Columns {
		col := &bd.Columns[ci]
		bm, off, valc, err := encodeTypedColumn(alg, col.Type, col.Values)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("coldata: compress column %d: %w", col.Cid, err)
		}
		allNull := true
		for _, v := range col.Values {
			if !v.IsNull() {
				allNull = false
				break
			}
		}
		if allNull {
			continue // entirely NULL: omit from the directory
		}
		entry := BlockCol{Cid: col.Cid, Type: col.Type, Flag: tsrow.FlagHasValue, Bitmap: bm, Offsets: off, Values: valc}
		colHdr = putBlockCol(colHdr, &entry)
		colBytes = append(colBytes, bm.bytes...)
		colBytes = append(colBytes, off.bytes...)
		colBytes = append(colBytes, valc.bytes...)
	}
	hdr.SzBlkCol = uint32(len(colHdr))

	keyMeta = PutDiskDataHdr(keyMeta, hdr)
	return keyData, keyMeta, colHdr, colBytes, nil
}

// SplitKeyRegion splits the combined on-disk key-part region (key-part
// meta followed by key-part keys, as Writer lays it out) back into its
// two buffers, by decoding the self-delimiting DiskDataHdr from the
// front.
func SplitKeyRegion(region []byte) (keyData, keyMeta []byte, err error) {
	_, consumed, err := GetDiskDataHdr(region)
	if err != nil {
		return nil, nil, err
	}
	return region[consumed:], region[:consumed], nil
}

// keyPart is the decoded result of the key-part keys + key-part meta
// buffers: a block's timestamps, versions, and primary-key columns.
type keyPart struct {
	hdr        *DiskDataHdr
	timestamps []int64
	versions   []int64
	pkColumns  [][]Value // len == hdr.NumPK, each of length hdr.NRow
}

// BlockDataDecompressKeyPart decodes the key-part keys buffer using the
// key-part meta buffer that describes it.
func BlockDataDecompressKeyPart(keyData, keyMeta []byte) (*keyPart, error) {
	hdr, _, err := GetDiskDataHdr(keyMeta)
	if err != nil {
		return nil, err
	}
	n := int(hdr.NRow)
	off := 0
	take := func(c chunk) []byte {
		b := keyData[off : off+int(c.compSize)]
		off += int(c.compSize)
		return b
	}

	tsRaw, err := decompressChunk(hdr.CmprAlg, hdr.TsValues.rawSize, take(hdr.TsValues))
	if err != nil {
		return nil, fmt.Errorf("coldata: decompress timestamps: %w", err)
	}
	verRaw, err := decompressChunk(hdr.CmprAlg, hdr.VerValues.rawSize, take(hdr.VerValues))
	if err != nil {
		return nil, fmt.Errorf("coldata: decompress versions: %w", err)
	}
	timestamps := make([]int64, n)
	for i := range n {
		timestamps[i] = int64(binary.LittleEndian.Uint64(tsRaw[i*8:]))
	}
	versions := make([]int64, n)
	for i := range n {
		versions[i] = int64(binary.LittleEndian.Uint64(verRaw[i*8:]))
	}

	pkColumns := make([][]Value, hdr.NumPK)
	for pi, pk := range hdr.PKCols {
		bm := take(pk.Bitmap)
		offs := take(pk.Offsets)
		vals := take(pk.Values)
		cc := compressedColumn{vtype: pk.Type, bitmapComp: bm, bitmapSizes: pk.Bitmap, offsetsComp: offs, offsetSizes: pk.Offsets, valuesComp: vals, valueSizes: pk.Values}
		decoded, err := decodeTypedColumn(hdr.CmprAlg, n, cc)
		if err != nil {
			return nil, fmt.Errorf("coldata: decompress PK column %d: %w", pi, err)
		}
		pkColumns[pi] = decoded
	}

	return &keyPart{hdr: hdr, timestamps: timestamps, versions: versions, pkColumns: pkColumns}, nil
}

// BlockDataDecompressColData decodes the requested non-PK columns (or all
// columns present in the directory, if wantCids is nil) from the
// column-header directory and column-data buffers. A cid absent from the
// directory is entirely NULL and is returned with a nil slice.
func BlockDataDecompressColData(alg compression.Alg, nRow int, colHdr, colBytes []byte, wantCids []int32) (map[int32][]Value, error) {
	want := func(cid int32) bool {
		if wantCids == nil {
			return true
		}
		for _, c := range wantCids {
			if c == cid {
				return true
			}
		}
		return false
	}

	out := make(map[int32][]Value)
	rest := colHdr
	off := 0
	for len(rest) > 0 {
		entry, next, err := getBlockCol(rest)
		if err != nil {
			return nil, err
		}
		rest = next

		bm := colBytes[off : off+int(entry.Bitmap.compSize)]
		off += int(entry.Bitmap.compSize)
		offs := colBytes[off : off+int(entry.Offsets.compSize)]
		off += int(entry.Offsets.compSize)
		vals := colBytes[off : off+int(entry.Values.compSize)]
		off += int(entry.Values.compSize)

		if !want(entry.Cid) {
			continue
		}
		cc := compressedColumn{vtype: entry.Type, bitmapComp: bm, bitmapSizes: entry.Bitmap, offsetsComp: offs, offsetSizes: entry.Offsets, valuesComp: vals, valueSizes: entry.Values}
		decoded, err := decodeTypedColumn(alg, nRow, cc)
		if err != nil {
			return nil, fmt.Errorf("coldata: decompress column %d: %w", entry.Cid, err)
		}
		out[entry.Cid] = decoded
	}
	if wantCids != nil {
		for _, cid := range wantCids {
			if _, ok := out[cid]; !ok {
				out[cid] = nil // entirely NULL in this block
			}
		}
	}
	return out, nil
}

// BlockDataDecompress reconstructs a full tsrow.BlockData from all four
// buffers, for the given column schema (cid -> type, in column order).
func BlockDataDecompress(suid, uid int64, keyData, keyMeta, colHdr, colBytes []byte, schema []tsrow.ColData) (*tsrow.BlockData, error) {
	kp, err := BlockDataDecompressKeyPart(keyData, keyMeta)
	if err != nil {
		return nil, err
	}
	n := int(kp.hdr.NRow)

	cids := make([]int32, len(schema))
	for i, c := range schema {
		cids[i] = c.Cid
	}
	decoded, err := BlockDataDecompressColData(kp.hdr.CmprAlg, n, colHdr, colBytes, cids)
	if err != nil {
		return nil, err
	}

	bd := &tsrow.BlockData{Suid: suid, Uid: uid, NRow: n, Versions: kp.versions}
	bd.Keys = make([]tsrow.RowKey, n)
	for i := range n {
		pks := make([]tsrow.Value, len(kp.pkColumns))
		for pi := range kp.pkColumns {
			pks[pi] = kp.pkColumns[pi][i]
		}
		bd.Keys[i] = tsrow.RowKey{Timestamp: kp.timestamps[i], PrimaryKeys: pks}
	}
	bd.Columns = make([]tsrow.ColData, len(schema))
	for i, c := range schema {
		vals := decoded[c.Cid]
		if vals == nil && n > 0 {
			vals = make([]tsrow.Value, n)
			for j := range vals {
				vals[j] = tsrow.NullValue()
			}
		}
		bd.Columns[i] = tsrow.ColData{Cid: c.Cid, Type: c.Type, CFlag: c.CFlag, Values: vals}
	}
	return bd, nil
}
