package vrc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pspoerri/vrcraster/internal/bio"
)

// writePayPerTileFixture writes raw bytes to a temp file and opens it
// through bio, the way buildPayPerTileDirectory expects its reader.
func writePayPerTileFixture(t *testing.T, data []byte) *bio.Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payperfile.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	r, err := bio.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

// putTileHeader appends a 32-byte tile header (sentinel 7 + seven
// overview offsets, only slot 0 populated when ov0 != 0).
func putTileHeader(buf *bytes.Buffer, ov0 uint32) {
	putU32LE(buf, 7)
	putU32LE(buf, ov0)
	for i := 0; i < 6; i++ {
		putU32LE(buf, 0)
	}
}

// putOverviewIndex appends a 1x1 overview index header (24 bytes): grid
// counts, nominal sub-tile size, and the two-entry sub-tile offset array
// (start, end), where "end" doubles as the next tile header's offset in
// the pay-per-tile chain.
func putOverviewIndex(buf *bytes.Buffer, subtileStart, chainEnd uint32) {
	putU32LE(buf, 1) // png_x_count
	putU32LE(buf, 1) // png_y_count
	putU32LE(buf, 16)
	putU32LE(buf, 16)
	putU32LE(buf, subtileStart)
	putU32LE(buf, chainEnd)
}

func TestBuildPayPerTileDirectoryReconstructsChain(t *testing.T) {
	// Two tiles in a single column (tileXCount=1, tileYCount=2), chained
	// via each tile's sole populated overview's trailing offset.
	var buf bytes.Buffer
	buf.Write(make([]byte, 16)) // padding so offset 0 isn't mistaken for "no entry"

	tile0 := int64(buf.Len())
	putTileHeader(&buf, uint32(tile0+32)) // overview follows immediately
	ov0 := int64(buf.Len())
	require.EqualValues(t, tile0+32, ov0)
	tile1 := uint32(ov0 + 24)
	putOverviewIndex(&buf, uint32(ov0+88), tile1)

	require.EqualValues(t, tile1, buf.Len())
	putTileHeader(&buf, uint32(buf.Len())+32)
	ov1 := int64(buf.Len())
	putOverviewIndex(&buf, uint32(ov1+88), uint32(ov1+200))

	r := writePayPerTileFixture(t, buf.Bytes())
	dir, err := buildPayPerTileDirectory(r, tile0, 1, 2, Config{})
	require.NoError(t, err)
	require.EqualValues(t, tile0, dir.Entries[1][0]) // disk-first tile, bottom row
	require.EqualValues(t, tile1, dir.Entries[0][0])  // chained tile, top row
}

func TestBuildPayPerTileDirectoryStopsEarlyOnUnpopulatedOverview(t *testing.T) {
	// A 2x2 grid where only the first two tiles in chain order can be
	// reached; the second tile has no populated overview slot, so
	// reconstruction stops and leaves the remaining two entries zero.
	var buf bytes.Buffer
	buf.Write(make([]byte, 16))

	tile0 := int64(buf.Len())
	putTileHeader(&buf, uint32(tile0+32))
	ov0 := int64(buf.Len())
	tile1 := uint32(ov0 + 24)
	putOverviewIndex(&buf, uint32(ov0+88), tile1)

	require.EqualValues(t, tile1, buf.Len())
	putTileHeader(&buf, 0) // no populated overview -> chain cannot continue

	r := writePayPerTileFixture(t, buf.Bytes())
	dir, err := buildPayPerTileDirectory(r, tile0, 2, 2, Config{})
	require.NoError(t, err)
	require.EqualValues(t, tile0, dir.Entries[1][0])
	require.EqualValues(t, tile1, dir.Entries[0][0])
	require.EqualValues(t, 0, dir.Entries[0][1])
	require.EqualValues(t, 0, dir.Entries[1][1])
}

func TestRotateIndexColumnMajorBottomToTop(t *testing.T) {
	// 2 columns x 3 rows, disk order column-major bottom-to-top.
	tileYCount := 3
	cases := []struct {
		k    int
		x, y int
	}{
		{0, 0, 2}, // first column, bottom row -> GDAL row 2 (bottom)
		{1, 0, 1},
		{2, 0, 0}, // top of first column -> GDAL row 0 (top)
		{3, 1, 2}, // second column starts
		{4, 1, 1},
		{5, 1, 0},
	}
	for _, c := range cases {
		x, y := rotateIndex(c.k, tileYCount)
		require.Equal(t, c.x, x, "k=%d x", c.k)
		require.Equal(t, c.y, y, "k=%d y", c.k)
	}
}

func TestIsSentinelEntry(t *testing.T) {
	fileSize := int64(5000)
	require.True(t, isSentinelEntry(0, fileSize))
	require.True(t, isSentinelEntry(15, fileSize))
	require.False(t, isSentinelEntry(16, fileSize))
	require.True(t, isSentinelEntry(200, fileSize)) // <10000 and %100==0
	require.False(t, isSentinelEntry(237, fileSize))
	require.True(t, isSentinelEntry(6000, fileSize)) // >= fileSize
}

func TestDirectoryAtOutOfRange(t *testing.T) {
	d := newDirectory(2, 2)
	require.Equal(t, uint32(0), d.At(-1, 0))
	require.Equal(t, uint32(0), d.At(0, 2))
}

func TestCoarsestPopulatedOverview(t *testing.T) {
	th := &TileHeader{OverviewOffset: [7]uint32{10, 0, 30, 0, 0, 0, 0}}
	require.Equal(t, 2, coarsestPopulatedOverview(th))

	th2 := &TileHeader{}
	require.Equal(t, -1, coarsestPopulatedOverview(th2))
}
