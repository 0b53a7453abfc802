package brin

import (
	"testing"

	"github.com/windrow/tsfile/internal/compression"
	"github.com/windrow/tsfile/internal/tsrow"
)

func sampleRecords() []Record {
	return []Record{
		{Suid: 1, Uid: 1, FirstKeyTs: 100, LastKeyTs: 200, MinVer: 1, MaxVer: 3, BlockOffset: 0, BlockSize: 128, Count: 10, NumOfPKs: 1},
		{Suid: 1, Uid: 2, FirstKeyTs: 50, LastKeyTs: 400, MinVer: 2, MaxVer: 9, BlockOffset: 128, BlockSize: 256, Count: 20, NumOfPKs: 1},
		{Suid: 2, Uid: 1, FirstKeyTs: 0, LastKeyTs: 10, MinVer: 1, MaxVer: 1, BlockOffset: 384, BlockSize: 64, Count: 3, NumOfPKs: 1},
	}
}

func TestBlockEncodeDecodeRoundTrip(t *testing.T) {
	b := &Block{}
	for _, r := range sampleRecords() {
		b.Append(r)
	}

	encoded, sizes, err := Encode(compression.Zstd, b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(b.Len(), encoded, sizes)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range b.Len() {
		want := b.Get(i)
		got := decoded.Get(i)
		if got != want {
			t.Fatalf("record %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestBlockDecodeDetectsCorruption(t *testing.T) {
	b := &Block{}
	b.Append(sampleRecords()[0])
	encoded, sizes, err := Encode(compression.None, b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	encoded[0] ^= 0xFF
	if _, err := Decode(b.Len(), encoded, sizes); err == nil {
		t.Fatalf("expected checksum mismatch to be detected")
	}
}

func TestMinMaxTableIdAndVersion(t *testing.T) {
	b := &Block{}
	for _, r := range sampleRecords() {
		b.Append(r)
	}
	min, max := b.MinMaxTableId()
	if min != (tsrow.TableId{Suid: 1, Uid: 1}) || max != (tsrow.TableId{Suid: 2, Uid: 1}) {
		t.Fatalf("MinMaxTableId = %v/%v", min, max)
	}
	minVer, maxVer := b.MinMaxVersion()
	if minVer != 1 || maxVer != 9 {
		t.Fatalf("MinMaxVersion = %d/%d, want 1/9", minVer, maxVer)
	}
}

func TestBlkArrayRoundTrip(t *testing.T) {
	blks := []Blk{
		{Offset: 0, Size: 100, MinTableId: tsrow.TableId{Suid: 1, Uid: 1}, MaxTableId: tsrow.TableId{Suid: 1, Uid: 5}, MinVer: 1, MaxVer: 5, NumRec: 4, NumOfPKs: 1, CmprAlg: compression.Zstd},
		{Offset: 100, Size: 50, MinTableId: tsrow.TableId{Suid: 2, Uid: 1}, MaxTableId: tsrow.TableId{Suid: 2, Uid: 1}, MinVer: 6, MaxVer: 6, NumRec: 1, NumOfPKs: 1, CmprAlg: compression.None},
	}
	encoded := PutArray(nil, blks)
	decoded, err := GetArray(encoded)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	if len(decoded) != len(blks) {
		t.Fatalf("decoded %d entries, want %d", len(decoded), len(blks))
	}
	for i := range blks {
		if decoded[i] != blks[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, decoded[i], blks[i])
		}
	}
}

func TestFooterRoundTrip(t *testing.T) {
	f := Footer{BlkArrayOffset: 1024, BlkArraySize: 256}
	encoded := f.Put(nil)
	if len(encoded) != FooterSize {
		t.Fatalf("encoded footer len = %d, want %d", len(encoded), FooterSize)
	}
	got, err := GetFooter(encoded)
	if err != nil {
		t.Fatalf("GetFooter: %v", err)
	}
	if got != f {
		t.Fatalf("GetFooter = %+v, want %+v", got, f)
	}
}
