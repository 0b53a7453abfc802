package checksum

import "github.com/zeebo/xxh3"

// XXH3Checksum computes the 32-bit trailer checksum for a chunk that
// carries its own trailing compression-type byte: XXH3_64bits over
// everything but that byte, folded against it so a flipped
// compression-type byte also fails verification.
func XXH3Checksum(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	return XXH3ChecksumWithLastByte(data[:len(data)-1], data[len(data)-1])
}

// XXH3ChecksumWithLastByte computes the checksum over data plus a
// compression-type byte stored separately from data.
func XXH3ChecksumWithLastByte(data []byte, lastByte byte) uint32 {
	h := xxh3.Hash(data)
	const kRandomPrime = 0x6b9083d9
	return uint32(h) ^ (uint32(lastByte) * kRandomPrime)
}
