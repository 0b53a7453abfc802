package fileop

import "testing"

func TestLogAppendPreservesOrder(t *testing.T) {
	var log Log
	log = log.Append(Op{Type: TypeData, Kind: OpCreate, New: STFile{Fid: 1}})
	log = log.Append(Op{Type: TypeHead, Kind: OpModify, Old: STFile{Fid: 1, Cid: 1}, New: STFile{Fid: 1, Cid: 2}})
	if len(log) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(log))
	}
	if log[0].Kind != OpCreate || log[1].Kind != OpModify {
		t.Fatalf("entries out of order: %+v", log)
	}
}

func TestStringers(t *testing.T) {
	if TypeData.String() != "data" || TypeTomb.String() != "tomb" {
		t.Fatalf("unexpected FileType string")
	}
	if OpCreate.String() != "create" || OpRemove.String() != "remove" {
		t.Fatalf("unexpected OpType string")
	}
}
