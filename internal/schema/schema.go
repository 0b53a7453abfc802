// Package schema wraps the UpdateRowSchema/UpdateTableSchema collaborator
// contract: the column-cid-to-type mapping a BlockData's Columns are
// encoded against, keyed by table and by schema version so a reader can
// decode an old block written under a schema that has since evolved.
package schema

import "github.com/windrow/tsfile/internal/tsrow"

// Row is one schema version's column list, in on-disk column order.
type Row struct {
	Version int32
	Columns []tsrow.ColData // Values left nil; only Cid/Type/CFlag are meaningful
}

// Cache answers schema lookups by table and version, and accepts
// updates as new versions are created.
type Cache interface {
	// RowSchema returns the schema for (uid, version), or (Row{}, false)
	// if no such version has been registered.
	RowSchema(uid int64, version int32) (Row, bool)
	// UpdateRowSchema registers or replaces (uid, version)'s schema.
	UpdateRowSchema(uid int64, row Row)
	// TableSchemaVersion returns the current (latest) schema version for
	// uid, or (0, false) if the table is unknown.
	TableSchemaVersion(uid int64) (int32, bool)
	// UpdateTableSchema records that uid's current schema version is
	// now version.
	UpdateTableSchema(uid int64, version int32)
}

// MemCache is an in-memory Cache.
type MemCache struct {
	rows    map[cacheKey]Row
	current map[int64]int32
}

type cacheKey struct {
	uid     int64
	version int32
}

// NewMemCache returns an empty MemCache.
func NewMemCache() *MemCache {
	return &MemCache{rows: make(map[cacheKey]Row), current: make(map[int64]int32)}
}

// RowSchema implements Cache.
func (c *MemCache) RowSchema(uid int64, version int32) (Row, bool) {
	row, ok := c.rows[cacheKey{uid, version}]
	return row, ok
}

// UpdateRowSchema implements Cache.
func (c *MemCache) UpdateRowSchema(uid int64, row Row) {
	c.rows[cacheKey{uid, row.Version}] = row
}

// TableSchemaVersion implements Cache.
func (c *MemCache) TableSchemaVersion(uid int64) (int32, bool) {
	v, ok := c.current[uid]
	return v, ok
}

// UpdateTableSchema implements Cache.
func (c *MemCache) UpdateTableSchema(uid int64, version int32) {
	c.current[uid] = version
}
