package tsfile

import (
	"sort"

	"github.com/windrow/tsfile/internal/bufpool"
	"github.com/windrow/tsfile/internal/brin"
	"github.com/windrow/tsfile/internal/coldata"
	"github.com/windrow/tsfile/internal/fileop"
	"github.com/windrow/tsfile/internal/logging"
	"github.com/windrow/tsfile/internal/tomb"
	"github.com/windrow/tsfile/internal/tsrow"
	"github.com/windrow/tsfile/internal/vfs"
)

// Reader opens a committed file group and answers random-access queries
// against it. It owns its FDs, its footers, its index arrays, and its
// working buffers; none of these are shared with any other Reader.
type Reader struct {
	fs vfs.FS

	dataFD, smaFD, headFD, tombFD vfs.FD

	headFooterLoaded bool
	headFooter       brin.Footer
	brinBlkArray     []brin.Blk

	tombFooterLoaded bool
	tombFooter       tomb.Footer
	tombBlkArray     []tomb.Blk

	pool *bufpool.Pool
	log  logging.Logger
}

// OpenReader opens each file named by cfg that is present, read-only.
// Footer loading is deferred to the first index read.
func OpenReader(cfg *ReaderConfig) (*Reader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	dataPath, smaPath, headPath, tombPath := cfg.paths()

	r := &Reader{fs: cfg.FS, pool: bufpool.New(bufpool.ReaderSlots), log: logging.OrDefault(cfg.Logger)}
	var err error
	if dataPath != "" {
		if r.dataFD, err = cfg.FS.OpenReadOnly(dataPath); err != nil {
			return nil, wrapErr(KindIO, "open data file", err)
		}
		if err := readFhdr(r.dataFD, fileop.TypeData); err != nil {
			r.Close()
			return nil, wrapErr(KindCorruption, "data file header", err)
		}
	}
	if smaPath != "" {
		if r.smaFD, err = cfg.FS.OpenReadOnly(smaPath); err != nil {
			return nil, wrapErr(KindIO, "open sma file", err)
		}
		if err := readFhdr(r.smaFD, fileop.TypeSma); err != nil {
			r.Close()
			return nil, wrapErr(KindCorruption, "sma file header", err)
		}
	}
	if headPath != "" {
		if r.headFD, err = cfg.FS.OpenReadOnly(headPath); err != nil {
			return nil, wrapErr(KindIO, "open head file", err)
		}
		if err := readFhdr(r.headFD, fileop.TypeHead); err != nil {
			r.Close()
			return nil, wrapErr(KindCorruption, "head file header", err)
		}
	}
	if tombPath != "" {
		if r.tombFD, err = cfg.FS.OpenReadOnly(tombPath); err != nil {
			return nil, wrapErr(KindIO, "open tomb file", err)
		}
		if err := readFhdr(r.tombFD, fileop.TypeTomb); err != nil {
			r.Close()
			return nil, wrapErr(KindCorruption, "tomb file header", err)
		}
	}
	r.log.Debugf(logging.NSReader+"opened file group data=%q sma=%q head=%q tomb=%q", dataPath, smaPath, headPath, tombPath)
	return r, nil
}

// Close destroys the index arrays, closes every open FD, and releases
// owned buffers.
func (r *Reader) Close() error {
	r.log.Debugf(logging.NSReader + "closing")
	var firstErr error
	for _, fd := range []vfs.FD{r.dataFD, r.smaFD, r.headFD, r.tombFD} {
		if fd == nil {
			continue
		}
		if err := fd.Close(); err != nil && firstErr == nil {
			firstErr = wrapErr(KindIO, "close file", err)
		}
	}
	r.brinBlkArray = nil
	r.tombBlkArray = nil
	r.pool.Reset()
	return firstErr
}

func readTrailer(fd vfs.FD, trailerSize int) ([]byte, error) {
	size, err := fd.Size()
	if err != nil {
		return nil, wrapErr(KindIO, "stat file", err)
	}
	if size < int64(trailerSize) {
		return nil, wrapErr(KindCorruption, "file shorter than footer", nil)
	}
	buf := make([]byte, trailerSize)
	if _, err := fd.ReadAt(buf, size-int64(trailerSize)); err != nil {
		return nil, wrapErr(KindIO, "read footer", err)
	}
	return buf, nil
}

func (r *Reader) loadHeadFooter() error {
	if r.headFooterLoaded {
		return nil
	}
	if r.headFD == nil {
		return wrapErr(KindPreconditionViolated, "no .head file open", nil)
	}
	buf, err := readTrailer(r.headFD, brin.FooterSize)
	if err != nil {
		return err
	}
	footer, err := brin.GetFooter(buf)
	if err != nil {
		return wrapErr(KindCorruption, "decode head footer", err)
	}
	r.headFooter = footer
	r.headFooterLoaded = true
	return nil
}

func (r *Reader) loadTombFooter() error {
	if r.tombFooterLoaded {
		return nil
	}
	if r.tombFD == nil {
		return wrapErr(KindPreconditionViolated, "no .tomb file open", nil)
	}
	buf, err := readTrailer(r.tombFD, tomb.FooterSize)
	if err != nil {
		return err
	}
	footer, err := tomb.GetFooter(buf)
	if err != nil {
		return wrapErr(KindCorruption, "decode tomb footer", err)
	}
	r.tombFooter = footer
	r.tombFooterLoaded = true
	return nil
}

// ReadBrinBlkArray loads (idempotently) and returns the packed array of
// Blk entries at the tail of .head.
func (r *Reader) ReadBrinBlkArray() ([]brin.Blk, error) {
	if err := r.loadHeadFooter(); err != nil {
		return nil, err
	}
	if r.brinBlkArray != nil || r.headFooter.BlkArraySize == 0 {
		return r.brinBlkArray, nil
	}
	buf := make([]byte, r.headFooter.BlkArraySize)
	if _, err := r.headFD.ReadAt(buf, r.headFooter.BlkArrayOffset); err != nil {
		return nil, wrapErr(KindIO, "read brin blk array", err)
	}
	arr, err := brin.GetArray(buf)
	if err != nil {
		return nil, wrapErr(KindCorruption, "decode brin blk array", err)
	}
	r.brinBlkArray = arr
	return arr, nil
}

// ReadTombBlkArray loads (idempotently) and returns the packed array of
// Blk entries at the tail of .tomb.
func (r *Reader) ReadTombBlkArray() ([]tomb.Blk, error) {
	if err := r.loadTombFooter(); err != nil {
		return nil, err
	}
	if r.tombBlkArray != nil || r.tombFooter.BlkArraySize == 0 {
		return r.tombBlkArray, nil
	}
	buf := make([]byte, r.tombFooter.BlkArraySize)
	if _, err := r.tombFD.ReadAt(buf, r.tombFooter.BlkArrayOffset); err != nil {
		return nil, wrapErr(KindIO, "read tomb blk array", err)
	}
	arr, err := tomb.GetArray(buf)
	if err != nil {
		return nil, wrapErr(KindCorruption, "decode tomb blk array", err)
	}
	r.tombBlkArray = arr
	return arr, nil
}

// ReadBrinBlock decompresses the Block a Blk entry points at.
func (r *Reader) ReadBrinBlock(blk brin.Blk) (*brin.Block, error) {
	buf := make([]byte, blk.Size)
	if _, err := r.headFD.ReadAt(buf, blk.Offset); err != nil {
		return nil, wrapErr(KindIO, "read brin block", err)
	}
	block, err := brin.Decode(int(blk.NumRec), buf, blk.ColSizes)
	if err != nil {
		return nil, wrapErr(KindCorruption, "decode brin block", err)
	}
	return block, nil
}

// ReadTombBlock decompresses the Block a tomb.Blk entry points at.
func (r *Reader) ReadTombBlock(blk tomb.Blk) (*tomb.Block, error) {
	buf := make([]byte, blk.Size)
	if _, err := r.tombFD.ReadAt(buf, blk.Offset); err != nil {
		return nil, wrapErr(KindIO, "read tomb block", err)
	}
	block, err := tomb.Decode(int(blk.NumRec), buf, blk.ColSizes)
	if err != nil {
		return nil, wrapErr(KindCorruption, "decode tomb block", err)
	}
	return block, nil
}

// ReadBlockData reads and decompresses a full data block (all columns in
// schema) named by a brin.Record.
func (r *Reader) ReadBlockData(rec brin.Record, schema []tsrow.ColData) (*tsrow.BlockData, error) {
	buf := make([]byte, rec.BlockSize)
	if _, err := r.dataFD.ReadAt(buf, rec.BlockOffset); err != nil {
		return nil, wrapErr(KindIO, "read data block", err)
	}
	keyRegion := buf[:rec.BlockKeySize]
	rest := buf[rec.BlockKeySize:]
	colHdr := rest[:rec.BlockColSize]
	colBytes := rest[rec.BlockColSize:]

	keyData, keyMeta, err := coldata.SplitKeyRegion(keyRegion)
	if err != nil {
		return nil, wrapErr(KindCorruption, "split key part", err)
	}

	bd, err := coldata.BlockDataDecompress(rec.Suid, rec.Uid, keyData, keyMeta, colHdr, colBytes, schema)
	if err != nil {
		return nil, wrapErr(KindCorruption, "decompress block data", err)
	}
	return bd, nil
}

// ReadBlockDataByColumn projects only cids (which must be sorted
// ascending) from the data block named by rec.
func (r *Reader) ReadBlockDataByColumn(rec brin.Record, schema []tsrow.ColData, cids []int32) (*tsrow.BlockData, error) {
	if !sort.SliceIsSorted(cids, func(i, j int) bool { return cids[i] < cids[j] }) {
		return nil, wrapErr(KindInvalidArgument, "cids must be sorted ascending", nil)
	}

	keyRegion := make([]byte, rec.BlockKeySize)
	if _, err := r.dataFD.ReadAt(keyRegion, rec.BlockOffset); err != nil {
		return nil, wrapErr(KindIO, "read key part", err)
	}
	keyData, keyMeta, err := coldata.SplitKeyRegion(keyRegion)
	if err != nil {
		return nil, wrapErr(KindCorruption, "split key part", err)
	}

	colHdr := make([]byte, rec.BlockColSize)
	if _, err := r.dataFD.ReadAt(colHdr, rec.BlockOffset+rec.BlockKeySize); err != nil {
		return nil, wrapErr(KindIO, "read column directory", err)
	}
	colBytes := make([]byte, rec.BlockSize-rec.BlockKeySize-int64(rec.BlockColSize))
	if _, err := r.dataFD.ReadAt(colBytes, rec.BlockOffset+rec.BlockKeySize+int64(rec.BlockColSize)); err != nil {
		return nil, wrapErr(KindIO, "read column data", err)
	}

	return coldata.BlockDataDecompress(rec.Suid, rec.Uid, keyData, keyMeta, colHdr, colBytes, filterSchema(schema, cids))
}

func filterSchema(schema []tsrow.ColData, cids []int32) []tsrow.ColData {
	want := make(map[int32]bool, len(cids))
	for _, c := range cids {
		want[c] = true
	}
	out := make([]tsrow.ColData, 0, len(cids))
	for _, c := range schema {
		if want[c.Cid] {
			out = append(out, c)
		}
	}
	return out
}

// ReadBlockSma reads and decodes the SMA records for a data block.
func (r *Reader) ReadBlockSma(rec brin.Record) ([]coldata.AggEntry, error) {
	if rec.SmaSize == 0 {
		return nil, nil
	}
	buf := make([]byte, rec.SmaSize)
	if _, err := r.smaFD.ReadAt(buf, rec.SmaOffset); err != nil {
		return nil, wrapErr(KindIO, "read sma", err)
	}
	entries, err := coldata.DecodeAggSequence(buf)
	if err != nil {
		return nil, wrapErr(KindCorruption, "decode sma sequence", err)
	}
	return entries, nil
}
