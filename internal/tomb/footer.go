package tomb

import (
	"encoding/binary"
	"fmt"
)

// Footer is the fixed-size trailer at the end of a .tomb file: a disk
// pointer to the packed Blk array that precedes it.
type Footer struct {
	BlkArrayOffset int64
	BlkArraySize   int64
}

// FooterSize is the fixed wire size of a Footer.
const FooterSize = 16

// Put appends f's fixed-size encoding to dst.
func (f Footer) Put(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, uint64(f.BlkArrayOffset))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(f.BlkArraySize))
	return dst
}

// GetFooter decodes a Footer from exactly FooterSize bytes.
func GetFooter(src []byte) (Footer, error) {
	if len(src) != FooterSize {
		return Footer{}, fmt.Errorf("tomb: footer size %d, want %d", len(src), FooterSize)
	}
	return Footer{
		BlkArrayOffset: int64(binary.LittleEndian.Uint64(src[0:])),
		BlkArraySize:   int64(binary.LittleEndian.Uint64(src[8:])),
	}, nil
}
