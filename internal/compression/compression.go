// Package compression implements the block compressors a cmprAlg selector
// can name: every data/brin/tomb chunk is compressed independently. Brin
// and tomb chunks carry their Alg as a one-byte trailer; a data block
// records it in its key-part header. SMA records are stored uncompressed.
package compression

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Alg is the opaque codec selector (cmprAlg) threaded through every
// compress/decompress call.
type Alg uint8

const (
	// None stores the chunk uncompressed.
	None Alg = 0x0
	// Snappy uses Google Snappy.
	Snappy Alg = 0x1
	// Zlib uses raw DEFLATE (no zlib header), matching the on-disk
	// convention used elsewhere in the column-store family this format
	// descends from.
	Zlib Alg = 0x2
	// LZ4 uses the LZ4 raw block format (not the LZ4 frame format).
	LZ4 Alg = 0x4
	// LZ4HC is LZ4 at the high-compression setting.
	LZ4HC Alg = 0x5
	// Zstd uses Zstandard.
	Zstd Alg = 0x7
)

// String returns the human-readable name of the algorithm.
func (a Alg) String() string {
	switch a {
	case None:
		return "None"
	case Snappy:
		return "Snappy"
	case Zlib:
		return "Zlib"
	case LZ4:
		return "LZ4"
	case LZ4HC:
		return "LZ4HC"
	case Zstd:
		return "Zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsSupported reports whether a is one of the algorithms this package can
// compress and decompress.
func (a Alg) IsSupported() bool {
	switch a {
	case None, Snappy, Zlib, LZ4, LZ4HC, Zstd:
		return true
	default:
		return false
	}
}

// CompressToBuffer compresses data with alg, appending to dst and
// returning the extended slice. This is the data/brin/tomb chunk
// compressor named by BlockCodec in the wider contract.
func CompressToBuffer(dst []byte, alg Alg, data []byte) ([]byte, error) {
	compressed, err := compress(alg, data)
	if err != nil {
		return nil, err
	}
	return append(dst, compressed...), nil
}

func compress(alg Alg, data []byte) ([]byte, error) {
	switch alg {
	case None:
		return data, nil

	case Snappy:
		return snappy.Encode(nil, data), nil

	case Zlib:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.BestSpeed)
		if err != nil {
			return nil, fmt.Errorf("raw deflate writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("raw deflate write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("raw deflate close: %w", err)
		}
		return buf.Bytes(), nil

	case LZ4:
		return compressLZ4(data, false)

	case LZ4HC:
		return compressLZ4(data, true)

	case Zstd:
		return compressZstd(data, zstd.SpeedDefault)

	default:
		return nil, fmt.Errorf("compression: unsupported algorithm %s", alg)
	}
}

func compressLZ4(data []byte, highCompression bool) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	var n int
	var err error
	var ht [1 << 16]int
	if highCompression {
		n, err = lz4.CompressBlockHC(data, dst, lz4.CompressionLevel(9), ht[:], nil)
	} else {
		n, err = lz4.CompressBlock(data, dst, ht[:])
	}
	if err != nil {
		return nil, fmt.Errorf("lz4 compress block: %w", err)
	}
	if n == 0 {
		// Incompressible input: LZ4 signals this by writing nothing (common
		// for small or low-entropy blocks, e.g. a single-row int64 column).
		// Store the raw bytes instead; decompressLZ4 recognizes a chunk
		// whose compressed size equals its raw size as stored-raw and
		// returns it unchanged rather than feeding it through the LZ4
		// block decoder.
		return data, nil
	}
	return dst[:n], nil
}

func compressZstd(data []byte, level zstd.EncoderLevel) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, nil), nil
}

// DecompressToBuffer decompresses data (compressed with alg, original size
// originalSize) and returns the plaintext.
func DecompressToBuffer(alg Alg, data []byte, originalSize int) ([]byte, error) {
	switch alg {
	case None:
		return data, nil

	case Snappy:
		return snappy.Decode(nil, data)

	case Zlib:
		result, err := decompressRawDeflate(data)
		if err == nil {
			return result, nil
		}
		r, zlibErr := zlib.NewReader(bytes.NewReader(data))
		if zlibErr != nil {
			return nil, fmt.Errorf("zlib decompress: raw deflate failed: %w", err)
		}
		defer func() { _ = r.Close() }()
		return io.ReadAll(r)

	case LZ4, LZ4HC:
		return decompressLZ4(data, originalSize)

	case Zstd:
		return decompressZstd(data)

	default:
		return nil, fmt.Errorf("compression: unsupported algorithm %s", alg)
	}
}

func decompressLZ4(data []byte, originalSize int) ([]byte, error) {
	if originalSize <= 0 {
		return nil, fmt.Errorf("lz4 uncompress block: original size required")
	}
	if len(data) == originalSize {
		// compressLZ4 stores the chunk raw when LZ4 reports it as
		// incompressible; same size in and out is that signal.
		return data, nil
	}
	dst := make([]byte, originalSize)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 uncompress block: %w", err)
	}
	return dst[:n], nil
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}

func decompressRawDeflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
