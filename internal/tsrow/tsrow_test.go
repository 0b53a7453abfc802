package tsrow

import (
	"math"
	"testing"
)

func TestCompareTableId(t *testing.T) {
	cases := []struct {
		a, b TableId
		want int
	}{
		{TableId{1, 1}, TableId{1, 1}, 0},
		{TableId{1, 1}, TableId{1, 2}, -1},
		{TableId{1, 2}, TableId{1, 1}, 1},
		{TableId{1, 9}, TableId{2, 0}, -1},
	}
	for _, c := range cases {
		if got := CompareTableId(c.a, c.b); got != c.want {
			t.Errorf("CompareTableId(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareValueNullSortsLargest(t *testing.T) {
	if CompareValue(NullValue(), Int64Value(math.MaxInt64)) <= 0 {
		t.Fatalf("expected NULL to compare larger than any int64")
	}
	if CompareValue(NullValue(), NullValue()) != 0 {
		t.Fatalf("expected NULL == NULL")
	}
}

func TestCompareRowKey(t *testing.T) {
	a := RowKey{Timestamp: 10, PrimaryKeys: []Value{Int64Value(1)}}
	b := RowKey{Timestamp: 10, PrimaryKeys: []Value{Int64Value(2)}}
	if CompareRowKey(a, b) >= 0 {
		t.Fatalf("expected a < b")
	}
	c := RowKey{Timestamp: 20, PrimaryKeys: []Value{Int64Value(0)}}
	if CompareRowKey(a, c) >= 0 {
		t.Fatalf("expected earlier timestamp to sort first")
	}
}

func TestBlockDataAppendAndOverwrite(t *testing.T) {
	bd := &BlockData{Suid: 1, Uid: 7, Columns: []ColData{{Cid: 1, Type: TypeInt64, CFlag: CFlagSmaOn}}}
	bd.AppendRow(RowKey{Timestamp: 10}, 1, []Value{Int64Value(100)})
	bd.AppendRow(RowKey{Timestamp: 20}, 1, []Value{Int64Value(200)})
	if bd.NRow != 2 {
		t.Fatalf("expected 2 rows, got %d", bd.NRow)
	}
	if bd.DistinctKeyCount() != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", bd.DistinctKeyCount())
	}

	bd.OverwriteLastRow(2, []Value{Int64Value(201)})
	if bd.Versions[1] != 2 || bd.Columns[0].Values[1].I64 != 201 {
		t.Fatalf("overwrite did not apply")
	}

	minVer, maxVer := bd.MinMaxVersion()
	if minVer != 1 || maxVer != 2 {
		t.Fatalf("expected version range [1,2], got [%d,%d]", minVer, maxVer)
	}
}

func TestVersionRangeObserve(t *testing.T) {
	r := EmptyVersionRange()
	if !r.IsEmpty() {
		t.Fatalf("expected fresh range to be empty")
	}
	r.Observe(5, 10)
	r.Observe(1, 8)
	if r.Min != 1 || r.Max != 10 {
		t.Fatalf("expected [1,10], got [%d,%d]", r.Min, r.Max)
	}
}
