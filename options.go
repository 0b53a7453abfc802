package tsfile

import (
	"fmt"

	"github.com/windrow/tsfile/internal/catalog"
	"github.com/windrow/tsfile/internal/compression"
	"github.com/windrow/tsfile/internal/fileop"
	"github.com/windrow/tsfile/internal/logging"
	"github.com/windrow/tsfile/internal/schema"
	"github.com/windrow/tsfile/internal/vfs"
)

// Existence names which of the four files in a group are present,
// without needing their exact paths — Open derives paths from
// (did, fid, cid).
type Existence struct {
	Data bool
	Sma  bool
	Head bool
	Tomb bool
}

// Filenames names the four files in a group explicitly.
type Filenames struct {
	Data string
	Sma  string
	Head string
	Tomb string
}

// ReaderConfig opens a committed file group. Exactly one of Filenames or
// Existence must be set — never both, never neither — mirroring the two
// ways callers are allowed to identify a file group.
type ReaderConfig struct {
	FS vfs.FS

	Filenames *Filenames
	Existence *Existence
	// Did/Fid/Cid derive paths from Existence; ignored when Filenames is
	// set.
	Did, Fid int32
	Cid      int64

	// Logger receives diagnostic messages. A nil Logger falls back to a
	// WARN-level default.
	Logger logging.Logger
}

func (c *ReaderConfig) validate() error {
	if (c.Filenames == nil) == (c.Existence == nil) {
		return wrapErr(KindInvalidArgument, "ReaderConfig requires exactly one of Filenames or Existence", nil)
	}
	if c.FS == nil {
		return wrapErr(KindInvalidArgument, "ReaderConfig.FS is required", nil)
	}
	return nil
}

func (c *ReaderConfig) paths() (data, sma, head, tomb string) {
	if c.Filenames != nil {
		return c.Filenames.Data, c.Filenames.Sma, c.Filenames.Head, c.Filenames.Tomb
	}
	base := fmt.Sprintf("%d-%d-%d", c.Did, c.Fid, c.Cid)
	e := c.Existence
	if e.Data {
		data = base + ".data"
	}
	if e.Sma {
		sma = base + ".sma"
	}
	if e.Head {
		head = base + ".head"
	}
	if e.Tomb {
		tomb = base + ".tomb"
	}
	return data, sma, head, tomb
}

// WriterConfig constructs a Writer over a new file group, optionally
// merging forward an existing one.
type WriterConfig struct {
	FS vfs.FS

	Did, Fid int32
	Cid      int64

	// Old identifies the prior file group to merge forward, or nil for a
	// brand-new group with nothing to merge.
	Old *Filenames
	// OldSTFile carries each old file's recorded size/version-range, used
	// to decide CREATE vs MODIFY at commit. Zero value for a file type
	// not present in Old.
	OldSTFile map[fileop.FileType]fileop.STFile

	CmprAlg compression.Alg
	// MaxRow bounds both an in-memory BlockData's row count and a
	// BrinBlock/TombBlock's record count before a flush is forced.
	MaxRow int
	// CompactVersion is the watermark at or below which a duplicate rowKey is
	// merged in place rather than appended as a new row.
	CompactVersion int64

	Catalog catalog.Lookup
	Schema  schema.Cache

	// Logger receives diagnostic messages. A nil Logger falls back to a
	// WARN-level default.
	Logger logging.Logger
}

func (c *WriterConfig) validate() error {
	if c.FS == nil {
		return wrapErr(KindInvalidArgument, "WriterConfig.FS is required", nil)
	}
	if c.MaxRow <= 0 {
		return wrapErr(KindInvalidArgument, "WriterConfig.MaxRow must be positive", nil)
	}
	if c.Catalog == nil {
		return wrapErr(KindInvalidArgument, "WriterConfig.Catalog is required", nil)
	}
	if c.Schema == nil {
		return wrapErr(KindInvalidArgument, "WriterConfig.Schema is required", nil)
	}
	return nil
}

func (c *WriterConfig) newPaths() (data, sma, head, tomb string) {
	base := fmt.Sprintf("%d-%d-%d", c.Did, c.Fid, c.Cid)
	return base + ".data", base + ".sma", base + ".head", base + ".tomb"
}
