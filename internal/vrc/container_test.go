package vrc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pspoerri/vrcraster/internal/pngcrc"
)

// buildConstantColorSubtile returns the on-disk bytes of a sub-tile record
// (leading sentinel + 13-byte IHDR + CRC + one framed IDAT chunk) whose PNG
// decodes to a w x h truecolor image of one constant colour.
func buildConstantColorSubtile(t *testing.T, w, h int, r, g, b byte) []byte {
	t.Helper()

	ihdr := &ihdrFields{
		width: uint32(w), height: uint32(h),
		bitDepth: 8, colourType: 2, compression: 0, filter: 0, interlace: 0,
	}
	data := ihdr.dataBytes()
	crc := pngcrc.Checksum(append([]byte("IHDR"), data...))

	var raw bytes.Buffer
	row := make([]byte, 1+3*w)
	for x := 0; x < w; x++ {
		row[1+3*x] = r
		row[1+3*x+1] = g
		row[1+3*x+2] = b
	}
	for y := 0; y < h; y++ {
		raw.Write(row)
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var framed bytes.Buffer
	writeChunk(&framed, "IDAT", idat.Bytes(), pngcrc.Checksum(append([]byte("IDAT"), idat.Bytes()...)))

	out := make([]byte, 0, 1+17+framed.Len())
	out = append(out, 0x00)
	out = append(out, data...)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	out = append(out, crcBuf[:]...)
	out = append(out, framed.Bytes()...)
	return out
}

func putU32LE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putI32LE(buf *bytes.Buffer, v int32) { putU32LE(buf, uint32(v)) }

// buildMinimalContainer assembles a one-tile, one-sub-tile VRC file per the
// container round-trip scenario: magic metres, one string "title",
// scale 10000, a 256x256 raster, and a single sub-tile decoding to a
// constant colour.
func buildMinimalContainer(t *testing.T, r, g, b byte) string {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(magicMetresBytes[:])
	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], 4)
	buf.Write(u16[:]) // download_id
	binary.LittleEndian.PutUint16(u16[:], 0)
	buf.Write(u16[:]) // country_code
	buf.Write([]byte{0x00, 0x01, 0x00, 0x01}) // sentinel
	buf.WriteByte(0x0F)                       // byte0c
	buf.WriteByte(0x09)                       // byte0d
	putI32LE(&buf, 0)                         // map_id
	putU32LE(&buf, 1)                         // string_count

	title := "title"
	putI32LE(&buf, int32(len(title)))
	buf.WriteString(title)

	putI32LE(&buf, 0)         // outer_left
	putI32LE(&buf, 256)       // outer_top
	putI32LE(&buf, 256)       // outer_right
	putI32LE(&buf, 0)         // outer_bottom
	putU32LE(&buf, 10000)     // scale -> pixel_size = 1.0
	putU32LE(&buf, 256)       // tile_size_max
	putU32LE(&buf, 256)       // tile_size_min
	putU32LE(&buf, 7)         // conventional "7"
	putU32LE(&buf, 0)         // checksum
	putU32LE(&buf, 1)         // tile_x_count
	putU32LE(&buf, 1)         // tile_y_count

	dirOffset := int64(buf.Len())
	tileHeaderOffset := uint32(dirOffset + 4 + 64) // leave room past directory+padding
	putU32LE(&buf, tileHeaderOffset)               // the one directory entry

	for int64(buf.Len()) < int64(tileHeaderOffset) {
		buf.WriteByte(0)
	}

	// Tile header: sentinel 7, then 7 overview offsets; only slot 0 is
	// populated (base resolution).
	overviewIndexOffset := uint32(buf.Len()) + 4 + 4*7
	putU32LE(&buf, 7)
	putU32LE(&buf, overviewIndexOffset)
	for i := 0; i < 6; i++ {
		putU32LE(&buf, 0)
	}

	// Overview index: 1x1 grid of 256x256 sub-tiles.
	require.EqualValues(t, overviewIndexOffset, buf.Len())
	putU32LE(&buf, 1)   // png_x_count
	putU32LE(&buf, 1)   // png_y_count
	putU32LE(&buf, 256) // png_x_size
	putU32LE(&buf, 256) // png_y_size

	subtile := buildConstantColorSubtile(t, 256, 256, r, g, b)
	subtileOffset := uint32(buf.Len()) + 4*2 // two offsets follow (start, end)
	putU32LE(&buf, subtileOffset)
	putU32LE(&buf, subtileOffset+uint32(len(subtile)))

	require.EqualValues(t, subtileOffset, buf.Len())
	buf.Write(subtile)

	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.vrc")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestContainerRoundTripConstantColour(t *testing.T) {
	path := buildMinimalContainer(t, 10, 20, 30)

	c, err := Open(path, Config{})
	require.NoError(t, err)
	defer c.Close()

	w, h := c.RasterSize()
	require.Equal(t, 256, w)
	require.Equal(t, 256, h)
	require.Equal(t, 4, c.BandCount())

	blk, err := c.ReadBlock(-1, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 256, blk.Width)
	require.Equal(t, 256, blk.Height)

	for _, px := range blk.Bands[0] {
		require.Equal(t, byte(10), px)
	}
	for _, px := range blk.Bands[1] {
		require.Equal(t, byte(20), px)
	}
	for _, px := range blk.Bands[2] {
		require.Equal(t, byte(30), px)
	}
	for _, px := range blk.Bands[3] {
		require.Equal(t, byte(0), px)
	}
}

func TestContainerNodataIdempotence(t *testing.T) {
	path := buildMinimalContainer(t, 10, 20, 30)

	c, err := Open(path, Config{})
	require.NoError(t, err)
	defer c.Close()

	// (1, 0) is outside the 1x1 tile grid, so the directory entry is 0.
	blk, err := c.ReadBlock(-1, 1, 0)
	require.NoError(t, err)
	for _, band := range blk.Bands {
		for _, px := range band {
			require.Equal(t, byte(0), px)
		}
	}
}

func TestContainerDataCoverage(t *testing.T) {
	path := buildMinimalContainer(t, 1, 2, 3)

	c, err := Open(path, Config{})
	require.NoError(t, err)
	defer c.Close()

	status, pct := c.DataCoverage(-1, 0, 0, 256, 256, 0)
	require.True(t, status&StatusData != 0)
	require.InDelta(t, 100.0, pct, 0.001)

	status, pct = c.DataCoverage(-1, 1000, 1000, 10, 10, 0)
	require.True(t, status&StatusEmpty != 0)
	require.Equal(t, 0.0, pct)
}

func TestIdentify(t *testing.T) {
	require.Equal(t, IdentifyTrue, Identify([]byte{0x7E, 0x1F, 0x2E, 0x00, 0x04, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00}))
	require.Equal(t, IdentifyFalse, Identify([]byte{0xAA, 0xBB, 0xCC, 0xDD}))
	require.Equal(t, IdentifyUnknown, Identify([]byte{0x7E, 0x1F}))
}
