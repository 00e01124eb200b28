// Package pngcrc computes PNG-chunk CRC-32 checksums.
//
// The PNG specification's CRC-32 (polynomial 0xEDB88320, init 0xFFFFFFFF,
// final XOR 0xFFFFFFFF) is bit-for-bit the same algorithm as Go's stdlib
// IEEE CRC-32 (hash/crc32.IEEE uses the same reflected polynomial with the
// same init/xor). There is no third-party checksum library in the example
// corpus that does anything hash/crc32 doesn't already do correctly, so
// this wraps the standard library rather than hand-rolling a 256-entry
// table, per the pure-function CRC component described for the decoder.
package pngcrc

import "hash/crc32"

// Checksum returns the PNG chunk CRC-32 over data, which callers pass as
// "chunk type" || "chunk data" concatenated (e.g. "IHDR" || ihdr bytes).
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Verify reports whether want equals the CRC-32 of data.
func Verify(data []byte, want uint32) bool {
	return Checksum(data) == want
}

// GreyscalePaletteCRC is the fixed CRC for a synthesised 256-entry
// identity greyscale PLTE chunk (entry i = (i, i, i)), used when a
// palette-colour-type sub-tile has no palette record on disk.
const GreyscalePaletteCRC uint32 = 0xE2B05D7D
