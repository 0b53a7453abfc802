package catalog

import (
	"testing"

	"github.com/windrow/tsfile/internal/tsrow"
)

func TestMemLookupPutDropGet(t *testing.T) {
	m := NewMemLookup()
	if _, ok := m.Get(1); ok {
		t.Fatalf("expected absent table to report ok=false")
	}

	m.Put(1, Info{TableId: tsrow.TableId{Suid: 10, Uid: 1}, SchemaVersion: 3})
	info, ok := m.Get(1)
	if !ok || info.SchemaVersion != 3 {
		t.Fatalf("expected present table with SchemaVersion 3, got %+v ok=%v", info, ok)
	}

	m.Drop(1)
	if _, ok := m.Get(1); ok {
		t.Fatalf("expected dropped table to report ok=false")
	}
}
