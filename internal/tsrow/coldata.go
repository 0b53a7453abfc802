package tsrow

// CFlag carries per-column schema-level flags.
type CFlag uint8

const (
	// CFlagSmaOn marks a column whose per-block SMA (sum/min/max/count)
	// is computed and written to the .sma file.
	CFlagSmaOn CFlag = 1 << iota
	// CFlagPrimaryKey marks a column that participates in the row's
	// composite primary key.
	CFlagPrimaryKey
)

// Flag carries per-column data-level flags.
type Flag uint8

const (
	// FlagHasValue marks a column with at least one non-null value in
	// this block. A column with no bit set is entirely NULL and need not
	// be written.
	FlagHasValue Flag = 1 << iota
)

// ColData is one column's worth of values for a BlockData batch. len(Values)
// == the owning BlockData's NRow.
type ColData struct {
	Cid   int32
	Type  ValueType
	CFlag CFlag
	Flag  Flag
	Values []Value
}

// HasSMA reports whether this column's SMA should be computed and stored.
func (c *ColData) HasSMA() bool {
	if c.CFlag&CFlagSmaOn == 0 {
		return false
	}
	for _, v := range c.Values {
		if !v.IsNull() {
			return true
		}
	}
	return false
}

// BlockData is a columnar batch of rows for a single (Suid, Uid), sorted
// by RowKey ascending.
type BlockData struct {
	Suid     int64
	Uid      int64
	NRow     int
	Versions []int64
	Keys     []RowKey
	Columns  []ColData
}

// TableId returns the table identity of this batch.
func (b *BlockData) TableId() TableId {
	return TableId{Suid: b.Suid, Uid: b.Uid}
}

// FirstKey returns the row key of the first row.
func (b *BlockData) FirstKey() RowKey { return b.Keys[0] }

// LastKey returns the row key of the last row.
func (b *BlockData) LastKey() RowKey { return b.Keys[b.NRow-1] }

// Reset truncates the batch to zero rows while keeping backing arrays, so
// the Writer can reuse one BlockData across flushes.
func (b *BlockData) Reset(suid, uid int64) {
	b.Suid = suid
	b.Uid = uid
	b.NRow = 0
	b.Versions = b.Versions[:0]
	b.Keys = b.Keys[:0]
	for i := range b.Columns {
		b.Columns[i].Values = b.Columns[i].Values[:0]
	}
}

// AppendRow appends one row's key, version, and per-column values. vals
// must be parallel to b.Columns.
func (b *BlockData) AppendRow(key RowKey, version int64, vals []Value) {
	b.Keys = append(b.Keys, key)
	b.Versions = append(b.Versions, version)
	for i := range b.Columns {
		b.Columns[i].Values = append(b.Columns[i].Values, vals[i])
	}
	b.NRow++
}

// OverwriteLastRow replaces the last row's version and values in place —
// the compactVersion merge rule's "update in place" path.
func (b *BlockData) OverwriteLastRow(version int64, vals []Value) {
	b.Versions[b.NRow-1] = version
	for i := range b.Columns {
		b.Columns[i].Values[b.NRow-1] = vals[i]
	}
}

// MinMaxVersion scans Versions and returns the observed range. Panics if
// NRow == 0.
func (b *BlockData) MinMaxVersion() (minVer, maxVer int64) {
	minVer, maxVer = b.Versions[0], b.Versions[0]
	for _, v := range b.Versions[1:] {
		if v < minVer {
			minVer = v
		}
		if v > maxVer {
			maxVer = v
		}
	}
	return
}

// DistinctKeyCount returns the number of rows whose RowKey differs from
// the previous row's — BrinRecord.Count.
func (b *BlockData) DistinctKeyCount() int {
	if b.NRow == 0 {
		return 0
	}
	count := 1
	for i := 1; i < b.NRow; i++ {
		if !EqualRowKey(b.Keys[i], b.Keys[i-1]) {
			count++
		}
	}
	return count
}
