package coldata

import (
	"testing"

	"github.com/windrow/tsfile/internal/compression"
	"github.com/windrow/tsfile/internal/tsrow"
)

func sampleBlock() *tsrow.BlockData {
	bd := &tsrow.BlockData{
		Suid: 1, Uid: 42,
		Columns: []tsrow.ColData{
			{Cid: 1, Type: tsrow.TypeDouble, CFlag: tsrow.CFlagSmaOn},
			{Cid: 2, Type: tsrow.TypeBinary},
		},
	}
	bd.AppendRow(tsrow.RowKey{Timestamp: 100, PrimaryKeys: []tsrow.Value{tsrow.Int64Value(7)}}, 1,
		[]tsrow.Value{tsrow.DoubleValue(1.5), tsrow.BinaryValue([]byte("alpha"))})
	bd.AppendRow(tsrow.RowKey{Timestamp: 200, PrimaryKeys: []tsrow.Value{tsrow.Int64Value(7)}}, 1,
		[]tsrow.Value{tsrow.NullValue(), tsrow.BinaryValue([]byte("beta"))})
	bd.AppendRow(tsrow.RowKey{Timestamp: 300, PrimaryKeys: []tsrow.Value{tsrow.Int64Value(9)}}, 2,
		[]tsrow.Value{tsrow.DoubleValue(3.25), tsrow.NullValue()})
	return bd
}

func TestRoundTripWholeBlock(t *testing.T) {
	bd := sampleBlock()
	keyData, keyMeta, colHdr, colBytes, err := BlockDataCompress(compression.Snappy, bd)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	got, err := BlockDataDecompress(bd.Suid, bd.Uid, keyData, keyMeta, colHdr, colBytes, bd.Columns)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if got.NRow != bd.NRow {
		t.Fatalf("NRow = %d, want %d", got.NRow, bd.NRow)
	}
	for i := range bd.Keys {
		if !tsrow.EqualRowKey(got.Keys[i], bd.Keys[i]) {
			t.Fatalf("row %d key = %+v, want %+v", i, got.Keys[i], bd.Keys[i])
		}
		if got.Versions[i] != bd.Versions[i] {
			t.Fatalf("row %d version = %d, want %d", i, got.Versions[i], bd.Versions[i])
		}
	}
	for ci := range bd.Columns {
		for i := range bd.Columns[ci].Values {
			want := bd.Columns[ci].Values[i]
			have := got.Columns[ci].Values[i]
			if !tsrow.EqualValue(want, have) {
				t.Fatalf("col %d row %d = %+v, want %+v", bd.Columns[ci].Cid, i, have, want)
			}
		}
	}
}

func TestRoundTripWholeBlockLZ4SmallBlock(t *testing.T) {
	// A three-row block is well under the size LZ4 needs to find any
	// redundancy; CompressBlock reports individual chunks as incompressible
	// (n == 0), exercising the raw-fallback path end to end.
	bd := sampleBlock()
	keyData, keyMeta, colHdr, colBytes, err := BlockDataCompress(compression.LZ4, bd)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	got, err := BlockDataDecompress(bd.Suid, bd.Uid, keyData, keyMeta, colHdr, colBytes, bd.Columns)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if got.NRow != bd.NRow {
		t.Fatalf("NRow = %d, want %d", got.NRow, bd.NRow)
	}
	for ci := range bd.Columns {
		for i := range bd.Columns[ci].Values {
			want := bd.Columns[ci].Values[i]
			have := got.Columns[ci].Values[i]
			if !tsrow.EqualValue(want, have) {
				t.Fatalf("col %d row %d = %+v, want %+v", bd.Columns[ci].Cid, i, have, want)
			}
		}
	}
}

func TestRoundTripColumnProjection(t *testing.T) {
	bd := sampleBlock()
	keyData, keyMeta, colHdr, colBytes, err := BlockDataCompress(compression.Zstd, bd)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	kp, err := BlockDataDecompressKeyPart(keyData, keyMeta)
	if err != nil {
		t.Fatalf("decompress key part: %v", err)
	}
	if len(kp.timestamps) != bd.NRow {
		t.Fatalf("timestamps len = %d, want %d", len(kp.timestamps), bd.NRow)
	}

	decoded, err := BlockDataDecompressColData(compression.Zstd, bd.NRow, colHdr, colBytes, []int32{1})
	if err != nil {
		t.Fatalf("decompress col data: %v", err)
	}
	if _, ok := decoded[2]; ok {
		t.Fatalf("did not request column 2, but it was decoded")
	}
	vals := decoded[1]
	if len(vals) != bd.NRow {
		t.Fatalf("col 1 len = %d, want %d", len(vals), bd.NRow)
	}
	if !vals[1].IsNull() {
		t.Fatalf("expected row 1 col 1 to be NULL")
	}
}

func TestEntirelyNullColumnOmittedFromDirectory(t *testing.T) {
	bd := &tsrow.BlockData{
		Suid: 1, Uid: 1,
		Columns: []tsrow.ColData{{Cid: 5, Type: tsrow.TypeInt64}},
	}
	bd.AppendRow(tsrow.RowKey{Timestamp: 1}, 1, []tsrow.Value{tsrow.NullValue()})
	bd.AppendRow(tsrow.RowKey{Timestamp: 2}, 1, []tsrow.Value{tsrow.NullValue()})

	_, _, colHdr, _, err := BlockDataCompress(compression.None, bd)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(colHdr) != 0 {
		t.Fatalf("expected empty column directory for an all-NULL column, got %d bytes", len(colHdr))
	}
}

func TestComputeAggSkipsNulls(t *testing.T) {
	col := &tsrow.ColData{Type: tsrow.TypeDouble, CFlag: tsrow.CFlagSmaOn, Values: []tsrow.Value{
		tsrow.DoubleValue(1), tsrow.NullValue(), tsrow.DoubleValue(3),
	}}
	agg := ComputeAgg(col)
	if agg.Count != 2 {
		t.Fatalf("count = %d, want 2", agg.Count)
	}
	if agg.Sum != 4 {
		t.Fatalf("sum = %v, want 4", agg.Sum)
	}
	if agg.Min.F64 != 1 || agg.Max.F64 != 3 {
		t.Fatalf("min/max = %v/%v, want 1/3", agg.Min.F64, agg.Max.F64)
	}
}
