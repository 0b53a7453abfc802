package tomb

import (
	"testing"

	"github.com/windrow/tsfile/internal/compression"
)

func sampleRecords() []Record {
	return []Record{
		{Uid: 1, Version: 1, SKey: 0, EKey: 100},
		{Uid: 1, Version: 2, SKey: 200, EKey: 300},
		{Uid: 2, Version: 1, SKey: 50, EKey: 50},
	}
}

func TestLessAndSameKey(t *testing.T) {
	recs := sampleRecords()
	if !Less(recs[0], recs[1]) {
		t.Fatalf("expected version 1 before version 2 for the same uid")
	}
	if SameKey(recs[0], recs[1]) {
		t.Fatalf("records with different versions must not be SameKey")
	}
	if !SameKey(recs[0], recs[0]) {
		t.Fatalf("a record must be SameKey with itself")
	}
}

func TestBlockEncodeDecodeRoundTrip(t *testing.T) {
	b := &Block{}
	for _, r := range sampleRecords() {
		b.Append(r)
	}
	encoded, sizes, err := Encode(compression.LZ4, b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(b.Len(), encoded, sizes)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range b.Len() {
		if decoded.Get(i) != b.Get(i) {
			t.Fatalf("record %d = %+v, want %+v", i, decoded.Get(i), b.Get(i))
		}
	}
	minUid, maxUid := b.MinMaxUid()
	if minUid != 1 || maxUid != 2 {
		t.Fatalf("MinMaxUid = %d/%d, want 1/2", minUid, maxUid)
	}
}

func TestBlkArrayRoundTrip(t *testing.T) {
	blks := []Blk{
		{Offset: 0, Size: 40, MinUid: 1, MaxUid: 1, MinVer: 1, MaxVer: 2, NumRec: 2, CmprAlg: compression.Snappy},
		{Offset: 40, Size: 20, MinUid: 2, MaxUid: 2, MinVer: 1, MaxVer: 1, NumRec: 1, CmprAlg: compression.None},
	}
	encoded := PutArray(nil, blks)
	decoded, err := GetArray(encoded)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i := range blks {
		if decoded[i] != blks[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, decoded[i], blks[i])
		}
	}
}

func TestFooterRoundTrip(t *testing.T) {
	f := Footer{BlkArrayOffset: 512, BlkArraySize: 60}
	got, err := GetFooter(f.Put(nil))
	if err != nil {
		t.Fatalf("GetFooter: %v", err)
	}
	if got != f {
		t.Fatalf("GetFooter = %+v, want %+v", got, f)
	}
}
