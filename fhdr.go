package tsfile

import (
	"encoding/binary"

	"github.com/windrow/tsfile/internal/checksum"
	"github.com/windrow/tsfile/internal/fileop"
	"github.com/windrow/tsfile/internal/vfs"
)

// FhdrSize is the fixed size of the header written at the start of every
// .data/.sma/.head/.tomb file, before any content. Layout:
//
//	+---------+-----------+----------+-----------+----------+
//	| magic(4)| version(1)| type (1) | reserved  | crc32c(4)|
//	+---------+-----------+----------+-----------+----------+
//
// The checksum is a masked CRC32C (RocksDB-style) over magic, version and
// type, leaving the rest of the 64 bytes reserved for a future format
// revision to grow into without shifting any offset recorded in the
// brin/tomb index.
const FhdrSize = 64

const fhdrMagic = uint32(0x74736668) // "tsfh"
const fhdrFormatVersion = 1

func writeFhdr(fd vfs.FD, ft fileop.FileType) error {
	buf := make([]byte, FhdrSize)
	binary.LittleEndian.PutUint32(buf[0:4], fhdrMagic)
	buf[4] = fhdrFormatVersion
	buf[5] = byte(ft)
	sum := checksum.MaskedValue(buf[:6])
	binary.LittleEndian.PutUint32(buf[FhdrSize-4:], sum)
	if _, err := fd.WriteAt(buf, 0); err != nil {
		return wrapErr(KindIO, "write file header", err)
	}
	return nil
}

// readFhdr reads the fixed header at the start of fd and verifies it
// against ft, catching a truncated or corrupt file at open time rather
// than at the first index read that happens to touch the bad bytes.
func readFhdr(fd vfs.FD, ft fileop.FileType) error {
	buf := make([]byte, FhdrSize)
	if _, err := fd.ReadAt(buf, 0); err != nil {
		return wrapErr(KindIO, "read file header", err)
	}
	return checkFhdr(buf, ft)
}

// checkFhdr verifies the magic, version, file type and checksum of a
// header buffer read by readFhdr.
func checkFhdr(buf []byte, ft fileop.FileType) error {
	if len(buf) != FhdrSize {
		return wrapErr(KindCorruption, "short file header", nil)
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != fhdrMagic {
		return wrapErr(KindCorruption, "bad file header magic", nil)
	}
	if buf[4] != fhdrFormatVersion {
		return wrapErr(KindCorruption, "unsupported file header version", nil)
	}
	if fileop.FileType(buf[5]) != ft {
		return wrapErr(KindCorruption, "file header type mismatch", nil)
	}
	wantSum := binary.LittleEndian.Uint32(buf[FhdrSize-4:])
	if gotSum := checksum.MaskedValue(buf[:6]); gotSum != wantSum {
		return wrapErr(KindCorruption, "file header checksum mismatch", nil)
	}
	return nil
}
