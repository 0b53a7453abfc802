package schema

import (
	"testing"

	"github.com/windrow/tsfile/internal/tsrow"
)

func TestMemCacheRowSchemaAndTableVersion(t *testing.T) {
	c := NewMemCache()
	if _, ok := c.RowSchema(1, 1); ok {
		t.Fatalf("expected unknown schema to report ok=false")
	}

	c.UpdateRowSchema(1, Row{Version: 1, Columns: []tsrow.ColData{{Cid: 1, Type: tsrow.TypeInt64}}})
	c.UpdateTableSchema(1, 1)

	row, ok := c.RowSchema(1, 1)
	if !ok || len(row.Columns) != 1 {
		t.Fatalf("expected registered schema, got %+v ok=%v", row, ok)
	}

	version, ok := c.TableSchemaVersion(1)
	if !ok || version != 1 {
		t.Fatalf("expected current version 1, got %d ok=%v", version, ok)
	}

	c.UpdateRowSchema(1, Row{Version: 2, Columns: []tsrow.ColData{{Cid: 1, Type: tsrow.TypeInt64}, {Cid: 2, Type: tsrow.TypeDouble}}})
	c.UpdateTableSchema(1, 2)
	if _, ok := c.RowSchema(1, 1); !ok {
		t.Fatalf("expected old schema version to remain available for old blocks")
	}
	version, _ = c.TableSchemaVersion(1)
	if version != 2 {
		t.Fatalf("expected current version to advance to 2, got %d", version)
	}
}
