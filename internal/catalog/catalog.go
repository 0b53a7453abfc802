// Package catalog wraps the metaGetInfo collaborator contract: given a
// table's uid, does the catalog still consider it present? A Writer
// consults this while merging the prior file group's data forward, to
// decide whether a table's old rows should be carried into the new file
// (present) or dropped as part of a completed DROP TABLE (absent).
package catalog

import "github.com/windrow/tsfile/internal/tsrow"

// Info is what the catalog knows about a table, when present.
type Info struct {
	TableId tsrow.TableId
	SchemaVersion int32
}

// Lookup answers whether a table is still known to the catalog.
type Lookup interface {
	// Get returns (info, true) if uid is present, or (Info{}, false) if
	// it has been dropped.
	Get(uid int64) (Info, bool)
}

// MemLookup is an in-memory Lookup, used by tests and by callers that
// maintain their own small catalog without a separate service.
type MemLookup struct {
	infos map[int64]Info
}

// NewMemLookup returns an empty MemLookup.
func NewMemLookup() *MemLookup {
	return &MemLookup{infos: make(map[int64]Info)}
}

// Put records or replaces uid's catalog entry.
func (m *MemLookup) Put(uid int64, info Info) {
	m.infos[uid] = info
}

// Drop removes uid from the catalog, simulating a completed DROP TABLE.
func (m *MemLookup) Drop(uid int64) {
	delete(m.infos, uid)
}

// Get implements Lookup.
func (m *MemLookup) Get(uid int64) (Info, bool) {
	info, ok := m.infos[uid]
	return info, ok
}
