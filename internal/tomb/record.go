// Package tomb implements the tombstone range index stored in a .tomb
// file: TombRecord entries marking a deleted key range for one table at
// one version, batched into columnar TombBlock chunks and indexed by a
// packed array of TombBlk entries at the end of the file — the same
// two-level shape as the brin index, with a 4-column schedule instead of
// 15.
package tomb

// Record marks that table uid's rows with key in [skey, ekey] were
// deleted as of version. The owning super-table id is not stored here:
// uid is globally unique, so a reader recovers suid through the catalog
// lookup when it needs it, keeping the on-disk row at exactly 4 i64
// columns. Records are kept sorted by (uid, version) ascending;
// duplicates of the same (uid, version) pair are forbidden.
type Record struct {
	Uid     int64
	Version int64
	SKey    int64
	EKey    int64
}

// Less orders a before b by (Uid, Version).
func Less(a, b Record) bool {
	if a.Uid != b.Uid {
		return a.Uid < b.Uid
	}
	return a.Version < b.Version
}

// SameKey reports whether a and b share the (Uid, Version) pair that
// must be unique across the index.
func SameKey(a, b Record) bool {
	return a.Uid == b.Uid && a.Version == b.Version
}
