package tsfile

import (
	"math"

	"github.com/windrow/tsfile/internal/brin"
	"github.com/windrow/tsfile/internal/bufpool"
	"github.com/windrow/tsfile/internal/coldata"
	"github.com/windrow/tsfile/internal/fileop"
	"github.com/windrow/tsfile/internal/logging"
	"github.com/windrow/tsfile/internal/tomb"
	"github.com/windrow/tsfile/internal/tsrow"
	"github.com/windrow/tsfile/internal/vfs"
)

// RowInfo is one incoming row: a table identity, its sort key, the
// record version it was written at, and its column values in the
// table's current schema column order.
type RowInfo struct {
	Tbid    tsrow.TableId
	Key     tsrow.RowKey
	Version int64
	Values  []tsrow.Value
}

// Writer streams rows (or preformed BlockData batches) into a new file
// group, merging them against the prior file group named by
// WriterConfig.Old, and on Close returns the file-op log an
// external commit manager applies atomically.
//
// Construction is side-effect-free: the first WriteRow, WriteBlockData,
// or WriteTombRecord call triggers the lazy open of the new files (and,
// if Old names a prior group, an embedded Reader over it).
type Writer struct {
	cfg  *WriterConfig
	fs   vfs.FS
	pool *bufpool.Pool
	log  logging.Logger

	opened     bool
	dataOpened bool
	tombOpened bool

	dataPath, smaPath, headPath, tombPath string
	dataFD, smaFD, headFD, tombFD         vfs.FD

	files map[fileop.FileType]fileop.STFile

	oldReader *Reader
	oldCursor *oldRowCursor
	oldTomb   *oldTombCursor

	haveLastRow bool
	lastTbid    tsrow.TableId
	lastKey     tsrow.RowKey

	ctxHave   bool
	ctxTbid   tsrow.TableId
	blockData *tsrow.BlockData

	brinBlock        *brin.Block
	brinBlkArray     []brin.Blk
	headVersionRange tsrow.VersionRange

	tombBlock        *tomb.Block
	tombBlkArray     []tomb.Blk
	tombVersionRange tsrow.VersionRange
	haveLastTomb     bool
	lastTomb         tomb.Record

	err    error
	closed bool
}

// OpenWriter constructs a Writer over cfg. No file is touched yet.
func OpenWriter(cfg *WriterConfig) (*Writer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Writer{
		cfg:              cfg,
		fs:               cfg.FS,
		pool:             bufpool.New(bufpool.WriterSlots),
		log:              logging.OrDefault(cfg.Logger),
		files:            make(map[fileop.FileType]fileop.STFile, 4),
		brinBlock:        &brin.Block{},
		tombBlock:        &tomb.Block{},
		headVersionRange: tsrow.EmptyVersionRange(),
		tombVersionRange: tsrow.EmptyVersionRange(),
	}, nil
}

func compareTbidKey(aTbid tsrow.TableId, aKey tsrow.RowKey, bTbid tsrow.TableId, bKey tsrow.RowKey) int {
	if c := tsrow.CompareTableId(aTbid, bTbid); c != 0 {
		return c
	}
	return tsrow.CompareRowKey(aKey, bKey)
}

// fail records w's sticky error (the first one wins) and returns it. Once
// set, every subsequent call returns the same error without touching
// disk again; the caller is expected to Close(abort=true).
func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

func emptySTFile(ft fileop.FileType, cfg *WriterConfig) fileop.STFile {
	return fileop.STFile{
		Type: ft, Did: cfg.Did, Fid: cfg.Fid, Cid: cfg.Cid,
		MinVer: math.MaxInt64, MaxVer: math.MinInt64,
	}
}

// doOpen opens the embedded Reader over the prior file group, if any,
// and seeds the row and tomb merge cursors. It runs once, lazily, on the
// first WriteRow/WriteBlockData/WriteTombRecord call.
func (w *Writer) doOpen() error {
	if w.opened {
		return nil
	}
	w.opened = true

	if w.cfg.Old != nil {
		r, err := OpenReader(&ReaderConfig{FS: w.fs, Filenames: w.cfg.Old, Logger: w.cfg.Logger})
		if err != nil {
			return wrapErr(KindIO, "open old file group", err)
		}
		w.oldReader = r
		w.log.Infof(logging.NSMerge+"merging forward prior group did=%d fid=%d cid=%d", w.cfg.Did, w.cfg.Fid, w.cfg.Cid)
	} else {
		w.log.Infof(logging.NSWriter+"opening new file group did=%d fid=%d cid=%d with no prior group", w.cfg.Did, w.cfg.Fid, w.cfg.Cid)
	}

	cursor, err := newOldRowCursor(w.oldReader, w.cfg.Catalog, w.cfg.Schema)
	if err != nil {
		return err
	}
	w.oldCursor = cursor

	tombCursor, err := newOldTombCursor(w.oldReader)
	if err != nil {
		return err
	}
	w.oldTomb = tombCursor

	for _, ft := range []fileop.FileType{fileop.TypeData, fileop.TypeSma, fileop.TypeHead, fileop.TypeTomb} {
		if st, ok := w.cfg.OldSTFile[ft]; ok {
			w.files[ft] = st
		} else {
			w.files[ft] = emptySTFile(ft, w.cfg)
		}
	}
	return nil
}

// openOrCreate opens path read/write if it already carries content
// (files[ft].Size > 0), or creates it and writes the zero header
// otherwise. Used for .data and .sma, which are extended rather than
// rewritten when a prior file group exists.
func (w *Writer) openOrCreate(path string, ft fileop.FileType) (vfs.FD, error) {
	st := w.files[ft]
	if st.Size > 0 && w.fs.Exists(path) {
		fd, err := w.fs.Open(path)
		if err != nil {
			return nil, wrapErr(KindIO, "open "+ft.String()+" file", err)
		}
		return fd, nil
	}
	fd, err := w.fs.Create(path)
	if err != nil {
		return nil, wrapErr(KindIO, "create "+ft.String()+" file", err)
	}
	if err := writeFhdr(fd, ft); err != nil {
		return nil, err
	}
	st.Size = FhdrSize
	w.files[ft] = st
	return fd, nil
}

// openDataFD lazily opens .data, .sma, and .head on the first row write,
// so a writer that only ever receives tombstones never touches .head.
func (w *Writer) openDataFD() error {
	if w.dataOpened {
		return nil
	}
	if err := w.doOpen(); err != nil {
		return err
	}
	w.dataOpened = true

	newData, newSma, newHead, _ := w.cfg.newPaths()
	w.dataPath, w.smaPath, w.headPath = newData, newSma, newHead
	if w.cfg.Old != nil && w.cfg.Old.Data != "" {
		w.dataPath = w.cfg.Old.Data
	}
	if w.cfg.Old != nil && w.cfg.Old.Sma != "" {
		w.smaPath = w.cfg.Old.Sma
	}

	fd, err := w.openOrCreate(w.dataPath, fileop.TypeData)
	if err != nil {
		return err
	}
	w.dataFD = fd

	fd, err = w.openOrCreate(w.smaPath, fileop.TypeSma)
	if err != nil {
		return err
	}
	w.smaFD = fd

	// .head is always a brand-new file: its index is rebuilt wholesale
	// on every flush, so there is nothing to extend.
	hfd, err := w.fs.Create(w.headPath)
	if err != nil {
		return wrapErr(KindIO, "create head file", err)
	}
	if err := writeFhdr(hfd, fileop.TypeHead); err != nil {
		return err
	}
	w.headFD = hfd
	st := w.files[fileop.TypeHead]
	st.Size = FhdrSize
	w.files[fileop.TypeHead] = st
	return nil
}

// openTombFD lazily creates a brand-new .tomb on the first tombstone
// write. The tomb file is never extended, even when a prior group has
// one: it is fully rewritten, old tombstones forwarded row by row.
func (w *Writer) openTombFD() error {
	if w.tombOpened {
		return nil
	}
	if err := w.doOpen(); err != nil {
		return err
	}
	w.tombOpened = true

	_, _, _, newTomb := w.cfg.newPaths()
	w.tombPath = newTomb
	fd, err := w.fs.Create(w.tombPath)
	if err != nil {
		return wrapErr(KindIO, "create tomb file", err)
	}
	if err := writeFhdr(fd, fileop.TypeTomb); err != nil {
		return err
	}
	w.tombFD = fd
	st := w.files[fileop.TypeTomb]
	st.Size = FhdrSize
	w.files[fileop.TypeTomb] = st
	return nil
}

// WriteRow ingests one row. Rows must arrive in non-decreasing
// (suid, uid, rowKey) order; a uid of zero or an out-of-order row is a
// PreconditionViolated error.
func (w *Writer) WriteRow(info RowInfo) error {
	if w.err != nil {
		return w.err
	}
	if info.Tbid.Uid == 0 {
		return w.fail(wrapErr(KindPreconditionViolated, "row uid must not be zero", nil))
	}
	if w.haveLastRow && compareTbidKey(w.lastTbid, w.lastKey, info.Tbid, info.Key) > 0 {
		return w.fail(wrapErr(KindPreconditionViolated, "rows must arrive in non-decreasing (suid,uid,rowKey) order", nil))
	}
	w.lastTbid, w.lastKey, w.haveLastRow = info.Tbid, info.Key, true

	if err := w.openDataFD(); err != nil {
		return w.fail(err)
	}
	if err := w.drainOldRowsUpTo(info.Tbid, info.Key); err != nil {
		return w.fail(err)
	}
	if err := w.appendRow(info.Tbid, info.Key, info.Version, info.Values); err != nil {
		return w.fail(err)
	}
	return nil
}

// WriteBlockData ingests a preformed BlockData batch row by row through
// the same merge path as WriteRow.
func (w *Writer) WriteBlockData(bd *tsrow.BlockData) error {
	if w.err != nil {
		return w.err
	}
	tbid := bd.TableId()
	vals := make([]tsrow.Value, len(bd.Columns))
	for i := range bd.NRow {
		for ci := range bd.Columns {
			vals[ci] = bd.Columns[ci].Values[i]
		}
		info := RowInfo{Tbid: tbid, Key: bd.Keys[i], Version: bd.Versions[i], Values: append([]tsrow.Value(nil), vals...)}
		if err := w.WriteRow(info); err != nil {
			return err
		}
	}
	return nil
}

// Flush forces the in-progress BlockData buffer for the current table
// out to .data/.sma immediately, without waiting for it to fill or the
// table to change.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if !w.dataOpened || !w.ctxHave {
		return nil
	}
	if err := w.flushBlockData(); err != nil {
		return w.fail(err)
	}
	return nil
}

// drainOldRowsUpTo forwards every old row whose (tbid, key) is no
// greater than (tbid, key), preserving the invariant that all old rows
// at or before the incoming row's position are written before it.
func (w *Writer) drainOldRowsUpTo(tbid tsrow.TableId, key tsrow.RowKey) error {
	for {
		row, ok, err := w.oldCursor.Peek()
		if err != nil {
			return wrapErr(KindCorruption, "read old row", err)
		}
		if !ok || compareTbidKey(row.tbid, row.key, tbid, key) > 0 {
			return nil
		}
		w.oldCursor.Advance()
		if err := w.appendRow(row.tbid, row.key, row.version, row.vals); err != nil {
			return err
		}
	}
}

// drainAllOldRows forwards every remaining old row, used at commit to
// flush whatever the incoming stream never reached.
func (w *Writer) drainAllOldRows() error {
	for {
		row, ok, err := w.oldCursor.Peek()
		if err != nil {
			return wrapErr(KindCorruption, "read old row", err)
		}
		if !ok {
			return nil
		}
		w.oldCursor.Advance()
		if err := w.appendRow(row.tbid, row.key, row.version, row.vals); err != nil {
			return err
		}
	}
}

func (w *Writer) appendRow(tbid tsrow.TableId, key tsrow.RowKey, version int64, vals []tsrow.Value) error {
	if !w.ctxHave || tbid != w.ctxTbid {
		if err := w.endCurrentTable(); err != nil {
			return err
		}
		w.beginTable(tbid)
	}
	return w.appendRowToBlock(key, version, vals)
}

func (w *Writer) endCurrentTable() error {
	if !w.ctxHave {
		return nil
	}
	w.ctxHave = false
	if w.blockData != nil && w.blockData.NRow > 0 {
		return w.flushBlockData()
	}
	return nil
}

func (w *Writer) beginTable(tbid tsrow.TableId) {
	w.ctxHave = true
	w.ctxTbid = tbid
	cols := w.lookupSchema(tbid.Uid)

	if w.blockData == nil {
		w.blockData = &tsrow.BlockData{}
	}
	w.blockData.Suid = tbid.Suid
	w.blockData.Uid = tbid.Uid
	w.blockData.NRow = 0
	w.blockData.Versions = w.blockData.Versions[:0]
	w.blockData.Keys = w.blockData.Keys[:0]
	w.blockData.Columns = make([]tsrow.ColData, len(cols))
	for i, c := range cols {
		w.blockData.Columns[i] = tsrow.ColData{Cid: c.Cid, Type: c.Type, CFlag: c.CFlag}
	}
}

func (w *Writer) lookupSchema(uid int64) []tsrow.ColData {
	version, ok := w.cfg.Schema.TableSchemaVersion(uid)
	if !ok {
		return nil
	}
	row, ok := w.cfg.Schema.RowSchema(uid, version)
	if !ok {
		return nil
	}
	return row.Columns
}

// appendRowToBlock applies the compactVersion merge rule: a row at or
// below the watermark that repeats the last buffered row's key
// overwrites it in place rather than appending a new row.
func (w *Writer) appendRowToBlock(key tsrow.RowKey, version int64, vals []tsrow.Value) error {
	bd := w.blockData
	if version <= w.cfg.CompactVersion && bd.NRow > 0 && tsrow.EqualRowKey(bd.Keys[bd.NRow-1], key) {
		bd.OverwriteLastRow(version, vals)
		return nil
	}
	if bd.NRow >= w.cfg.MaxRow {
		if err := w.flushBlockData(); err != nil {
			return err
		}
	}
	bd.AppendRow(key, version, vals)
	return nil
}

// flushBlockData compresses the current BlockData buffer, appends it to
// .data/.sma, and records its BrinRecord.
func (w *Writer) flushBlockData() error {
	bd := w.blockData
	if bd.NRow == 0 {
		return nil
	}
	keyData, keyMeta, colHdr, colBytes, err := coldata.BlockDataCompress(w.cfg.CmprAlg, bd)
	if err != nil {
		return wrapErr(KindCodec, "compress block data", err)
	}

	region := append(append(make([]byte, 0, len(keyMeta)+len(keyData)), keyMeta...), keyData...)
	full := append(append(append(make([]byte, 0, len(region)+len(colHdr)+len(colBytes)), region...), colHdr...), colBytes...)

	offset := w.files[fileop.TypeData].Size
	if _, err := w.dataFD.WriteAt(full, offset); err != nil {
		return wrapErr(KindIO, "write data block", err)
	}
	minVer, maxVer := bd.MinMaxVersion()
	st := w.files[fileop.TypeData]
	st.Size += int64(len(full))
	st.MinVer, st.MaxVer = minInt64(st.MinVer, minVer), maxInt64(st.MaxVer, maxVer)
	w.files[fileop.TypeData] = st

	var smaBytes []byte
	for i := range bd.Columns {
		col := &bd.Columns[i]
		if !col.HasSMA() {
			continue
		}
		smaBytes = coldata.PutAggRecord(smaBytes, col.Cid, coldata.ComputeAgg(col))
	}
	smaOffset := w.files[fileop.TypeSma].Size
	if len(smaBytes) > 0 {
		if _, err := w.smaFD.WriteAt(smaBytes, smaOffset); err != nil {
			return wrapErr(KindIO, "write sma", err)
		}
		st = w.files[fileop.TypeSma]
		st.Size += int64(len(smaBytes))
		st.MinVer, st.MaxVer = minInt64(st.MinVer, minVer), maxInt64(st.MaxVer, maxVer)
		w.files[fileop.TypeSma] = st
	}

	numPK := 0
	if bd.NRow > 0 {
		numPK = len(bd.Keys[0].PrimaryKeys)
	}
	rec := brin.Record{
		Suid: bd.Suid, Uid: bd.Uid,
		FirstKeyTs: bd.FirstKey().Timestamp, LastKeyTs: bd.LastKey().Timestamp,
		MinVer: minVer, MaxVer: maxVer,
		BlockOffset: offset, BlockSize: int64(len(full)), BlockKeySize: int64(len(region)), SmaOffset: smaOffset,
		Count: int32(bd.DistinctKeyCount()), NumOfPKs: int32(numPK), CmprAlg: int32(w.cfg.CmprAlg),
		SmaSize: int32(len(smaBytes)), BlockColSize: int32(len(colHdr)),
	}

	bd.Reset(bd.Suid, bd.Uid)
	return w.writeBrinRecord(rec)
}

func (w *Writer) writeBrinRecord(rec brin.Record) error {
	w.brinBlock.Append(rec)
	if w.brinBlock.Len() >= w.cfg.MaxRow {
		return w.flushBrinBlock()
	}
	return nil
}

func (w *Writer) flushBrinBlock() error {
	if w.brinBlock.Len() == 0 {
		return nil
	}
	minTbid, maxTbid := w.brinBlock.MinMaxTableId()
	minVer, maxVer := w.brinBlock.MinMaxVersion()
	var maxNumOfPKs int32
	for i := 0; i < w.brinBlock.Len(); i++ {
		if n := w.brinBlock.Get(i).NumOfPKs; n > maxNumOfPKs {
			maxNumOfPKs = n
		}
	}
	encoded, sizes, err := brin.Encode(w.cfg.CmprAlg, w.brinBlock)
	if err != nil {
		return wrapErr(KindCodec, "encode brin block", err)
	}

	offset := w.files[fileop.TypeHead].Size
	if _, err := w.headFD.WriteAt(encoded, offset); err != nil {
		return wrapErr(KindIO, "write brin block", err)
	}
	st := w.files[fileop.TypeHead]
	st.Size += int64(len(encoded))
	w.files[fileop.TypeHead] = st

	w.brinBlkArray = append(w.brinBlkArray, brin.Blk{
		Offset: offset, Size: int64(len(encoded)),
		MinTableId: minTbid, MaxTableId: maxTbid, MinVer: minVer, MaxVer: maxVer,
		NumRec: int32(w.brinBlock.Len()), NumOfPKs: maxNumOfPKs, CmprAlg: w.cfg.CmprAlg, ColSizes: sizes,
	})
	w.headVersionRange.Observe(minVer, maxVer)
	w.brinBlock.Reset()
	return nil
}

// WriteTombRecord ingests one tombstone, merging it against the old
// tomb index in (uid, version) order. A duplicate (uid, version) pair
// is an InvalidArgument error and poisons the writer.
func (w *Writer) WriteTombRecord(rec tomb.Record) error {
	if w.err != nil {
		return w.err
	}
	if err := w.openTombFD(); err != nil {
		return w.fail(err)
	}
	if w.haveLastTomb && tomb.SameKey(rec, w.lastTomb) {
		w.log.Warnf(logging.NSWriter+"rejecting duplicate tombstone uid=%d version=%d", rec.Uid, rec.Version)
		return w.fail(wrapErr(KindInvalidArgument, "duplicate tombstone", nil))
	}
	for {
		old, ok, err := w.oldTomb.Peek()
		if err != nil {
			return w.fail(wrapErr(KindCorruption, "read old tomb record", err))
		}
		if !ok || tomb.Less(rec, old) {
			break
		}
		if tomb.SameKey(rec, old) {
			w.log.Warnf(logging.NSWriter+"rejecting duplicate tombstone uid=%d version=%d", rec.Uid, rec.Version)
			return w.fail(wrapErr(KindInvalidArgument, "duplicate tombstone", nil))
		}
		w.oldTomb.Advance()
		if err := w.appendTombRecord(old); err != nil {
			return w.fail(err)
		}
	}
	if err := w.appendTombRecord(rec); err != nil {
		return w.fail(err)
	}
	w.lastTomb, w.haveLastTomb = rec, true
	return nil
}

func (w *Writer) appendTombRecord(rec tomb.Record) error {
	w.tombBlock.Append(rec)
	w.tombVersionRange.Observe(rec.Version, rec.Version)
	if w.tombBlock.Len() >= w.cfg.MaxRow {
		return w.flushTombBlock()
	}
	return nil
}

func (w *Writer) flushTombBlock() error {
	if w.tombBlock.Len() == 0 {
		return nil
	}
	minUid, maxUid := w.tombBlock.MinMaxUid()
	minVer, maxVer := w.tombBlock.MinMaxVersion()
	encoded, sizes, err := tomb.Encode(w.cfg.CmprAlg, w.tombBlock)
	if err != nil {
		return wrapErr(KindCodec, "encode tomb block", err)
	}

	offset := w.files[fileop.TypeTomb].Size
	if _, err := w.tombFD.WriteAt(encoded, offset); err != nil {
		return wrapErr(KindIO, "write tomb block", err)
	}
	st := w.files[fileop.TypeTomb]
	st.Size += int64(len(encoded))
	w.files[fileop.TypeTomb] = st

	w.tombBlkArray = append(w.tombBlkArray, tomb.Blk{
		Offset: offset, Size: int64(len(encoded)),
		MinUid: minUid, MaxUid: maxUid, MinVer: minVer, MaxVer: maxVer,
		NumRec: int32(w.tombBlock.Len()), CmprAlg: w.cfg.CmprAlg, ColSizes: sizes,
	})
	w.tombBlock.Reset()
	return nil
}

// Close finalizes the writer. With abort=true, every open FD is closed
// without fsync and an empty log is returned: the new files are left as
// garbage for an external collector. Otherwise it drains any remaining
// old rows/tombstones, flushes residual buffers, writes the head/tomb
// footers, fsyncs every open file (data and sma before head and tomb),
// and returns the file-op log describing the commit.
func (w *Writer) Close(abort bool) (fileop.Log, error) {
	if w.closed {
		return nil, wrapErr(KindPreconditionViolated, "writer already closed", nil)
	}
	w.closed = true

	if abort {
		w.log.Warnf(logging.NSCommit + "aborting writer, new files left as orphans")
		w.closeFDs()
		return fileop.Log{}, nil
	}
	if w.err != nil {
		w.log.Errorf(logging.NSCommit+"closing after sticky error: %v", w.err)
		w.closeFDs()
		return nil, w.err
	}
	if !w.dataOpened && !w.tombOpened {
		w.closeFDs()
		return fileop.Log{}, nil
	}

	var log fileop.Log
	if w.dataOpened {
		if err := w.finalizeHead(); err != nil {
			w.closeFDs()
			return nil, err
		}
		log = w.appendHeadDataSmaOps(log)
	}
	if w.tombOpened {
		if err := w.finalizeTomb(); err != nil {
			w.closeFDs()
			return nil, err
		}
		log = w.appendTombOps(log)
	}

	if err := w.fsyncAll(); err != nil {
		w.closeFDs()
		return nil, err
	}
	w.closeFDs()
	w.log.Infof(logging.NSCommit+"committed %d file ops", len(log))
	return log, nil
}

func (w *Writer) finalizeHead() error {
	if err := w.drainAllOldRows(); err != nil {
		return err
	}
	if err := w.endCurrentTable(); err != nil {
		return err
	}
	if err := w.flushBrinBlock(); err != nil {
		return err
	}

	buf := brin.PutArray(nil, w.brinBlkArray)
	offset := w.files[fileop.TypeHead].Size
	if len(buf) > 0 {
		if _, err := w.headFD.WriteAt(buf, offset); err != nil {
			return wrapErr(KindIO, "write brin blk array", err)
		}
	}
	st := w.files[fileop.TypeHead]
	st.Size += int64(len(buf))

	footerBytes := brin.Footer{BlkArrayOffset: offset, BlkArraySize: int64(len(buf))}.Put(nil)
	if _, err := w.headFD.WriteAt(footerBytes, st.Size); err != nil {
		return wrapErr(KindIO, "write head footer", err)
	}
	st.Size += int64(len(footerBytes))
	if !w.headVersionRange.IsEmpty() {
		st.MinVer, st.MaxVer = w.headVersionRange.Min, w.headVersionRange.Max
	}
	w.files[fileop.TypeHead] = st
	return nil
}

func (w *Writer) appendHeadDataSmaOps(log fileop.Log) fileop.Log {
	if w.cfg.Old != nil && w.cfg.Old.Head != "" {
		log = log.Append(fileop.Op{Type: fileop.TypeHead, Kind: fileop.OpRemove, Old: w.cfg.OldSTFile[fileop.TypeHead]})
	}
	log = log.Append(fileop.Op{Type: fileop.TypeHead, Kind: fileop.OpCreate, New: w.files[fileop.TypeHead]})

	dataExisted := w.cfg.Old != nil && w.cfg.Old.Data != ""
	oldData, newData := w.cfg.OldSTFile[fileop.TypeData], w.files[fileop.TypeData]
	switch {
	case !dataExisted:
		log = log.Append(fileop.Op{Type: fileop.TypeData, Kind: fileop.OpCreate, New: newData})
	case newData.Size != oldData.Size:
		log = log.Append(fileop.Op{Type: fileop.TypeData, Kind: fileop.OpModify, Old: oldData, New: newData})
	}

	smaExisted := w.cfg.Old != nil && w.cfg.Old.Sma != ""
	oldSma, newSma := w.cfg.OldSTFile[fileop.TypeSma], w.files[fileop.TypeSma]
	switch {
	case !smaExisted:
		log = log.Append(fileop.Op{Type: fileop.TypeSma, Kind: fileop.OpCreate, New: newSma})
	case newSma.Size != oldSma.Size:
		log = log.Append(fileop.Op{Type: fileop.TypeSma, Kind: fileop.OpModify, Old: oldSma, New: newSma})
	}
	return log
}

func (w *Writer) finalizeTomb() error {
	for {
		old, ok, err := w.oldTomb.Peek()
		if err != nil {
			return wrapErr(KindCorruption, "read old tomb record", err)
		}
		if !ok {
			break
		}
		w.oldTomb.Advance()
		if err := w.appendTombRecord(old); err != nil {
			return err
		}
	}
	if err := w.flushTombBlock(); err != nil {
		return err
	}

	buf := tomb.PutArray(nil, w.tombBlkArray)
	offset := w.files[fileop.TypeTomb].Size
	if len(buf) > 0 {
		if _, err := w.tombFD.WriteAt(buf, offset); err != nil {
			return wrapErr(KindIO, "write tomb blk array", err)
		}
	}
	st := w.files[fileop.TypeTomb]
	st.Size += int64(len(buf))

	footerBytes := tomb.Footer{BlkArrayOffset: offset, BlkArraySize: int64(len(buf))}.Put(nil)
	if _, err := w.tombFD.WriteAt(footerBytes, st.Size); err != nil {
		return wrapErr(KindIO, "write tomb footer", err)
	}
	st.Size += int64(len(footerBytes))
	if !w.tombVersionRange.IsEmpty() {
		st.MinVer, st.MaxVer = w.tombVersionRange.Min, w.tombVersionRange.Max
	}
	w.files[fileop.TypeTomb] = st
	return nil
}

func (w *Writer) appendTombOps(log fileop.Log) fileop.Log {
	if w.cfg.Old != nil && w.cfg.Old.Tomb != "" {
		log = log.Append(fileop.Op{Type: fileop.TypeTomb, Kind: fileop.OpRemove, Old: w.cfg.OldSTFile[fileop.TypeTomb]})
	}
	log = log.Append(fileop.Op{Type: fileop.TypeTomb, Kind: fileop.OpCreate, New: w.files[fileop.TypeTomb]})
	return log
}

func (w *Writer) fsyncAll() error {
	for _, fd := range []vfs.FD{w.dataFD, w.smaFD, w.headFD, w.tombFD} {
		if fd == nil {
			continue
		}
		if err := fd.Fsync(); err != nil {
			return wrapErr(KindIO, "fsync", err)
		}
	}
	return nil
}

func (w *Writer) closeFDs() {
	for _, fd := range []vfs.FD{w.dataFD, w.smaFD, w.headFD, w.tombFD} {
		if fd != nil {
			_ = fd.Close()
		}
	}
	if w.oldReader != nil {
		_ = w.oldReader.Close()
	}
	w.pool.Reset()
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
