package vrc

import (
	"github.com/pspoerri/vrcraster/internal/bio"
)

// Directory is the tile-offset index, row-major with y increasing
// downward (GDAL order) and x increasing right. A zero entry means
// "no data for this tile".
type Directory struct {
	Entries        [][]uint32 // [y][x]
	TileXCount     int
	TileYCount     int
}

func newDirectory(tileXCount, tileYCount int) *Directory {
	rows := make([][]uint32, tileYCount)
	for y := range rows {
		rows[y] = make([]uint32, tileXCount)
	}
	return &Directory{Entries: rows, TileXCount: tileXCount, TileYCount: tileYCount}
}

// At returns the directory entry for a GDAL-order block (bx, by), or 0 if
// out of range.
func (d *Directory) At(bx, by int) uint32 {
	if by < 0 || by >= d.TileYCount || bx < 0 || bx >= d.TileXCount {
		return 0
	}
	return d.Entries[by][bx]
}

// rotateIndex maps a sequential disk-order index k (entries are stored
// column-major, bottom-to-top) to the GDAL-order (x, y) with y increasing
// downward, for a grid with tileYCount rows.
func rotateIndex(k, tileYCount int) (x, y int) {
	x = k / tileYCount
	p := k % tileYCount
	y = tileYCount - 1 - p
	return
}

// isSentinelEntry reports whether a raw directory value must be zeroed:
// it would point into the fixed header region, it is a small round-number
// sentinel, or it falls outside the file.
func isSentinelEntry(v uint32, fileSize int64) bool {
	if v < 16 {
		return true
	}
	if v < 10000 && v%100 == 0 {
		return true
	}
	if int64(v) >= fileSize {
		return true
	}
	return false
}

// buildStandardDirectory reads a directly-stored directory of
// tileXCount*tileYCount little-endian u32 entries starting at offset, in
// column-major bottom-to-top disk order, and rotates them into GDAL
// row-major top-to-bottom order. Each nonzero entry is soft-checked
// against its pointed-to tile header's leading sentinel value.
func buildStandardDirectory(r *bio.Reader, offset int64, tileXCount, tileYCount int, cfg Config) (*Directory, error) {
	dir := newDirectory(tileXCount, tileYCount)
	r.Seek(offset)
	total := tileXCount * tileYCount
	fileSize := r.Size()

	for k := 0; k < total; k++ {
		v, err := r.ReadU32LE()
		if err != nil {
			return nil, err
		}
		if isSentinelEntry(v, fileSize) {
			v = 0
		}
		if v != 0 {
			if got, err := r.ReadU32LEAt(int64(v)); err != nil || got != 7 {
				cfg.logDiagnostic("directory.softCheck", "tile header missing leading 7", "offset", v, "got", got)
			}
		}
		x, y := rotateIndex(k, tileYCount)
		dir.Entries[y][x] = v
	}
	return dir, nil
}

// buildPayPerTileDirectory reconstructs the directory for map_id=8
// containers, which store no explicit directory array. It walks each
// tile's overview header chain starting at the known first-tile offset,
// using the coarsest populated overview's trailing sub-tile-offset
// sentinel as the next tile header's offset. Reconstruction stops early
// (leaving remaining entries zero) if a derived offset runs off the end
// of the file before all entries are populated.
func buildPayPerTileDirectory(r *bio.Reader, firstTileOffset int64, tileXCount, tileYCount int, cfg Config) (*Directory, error) {
	dir := newDirectory(tileXCount, tileYCount)
	total := tileXCount * tileYCount
	fileSize := r.Size()

	offset := firstTileOffset
	for k := 0; k < total; k++ {
		if offset < 0 || offset >= fileSize {
			cfg.logRecoverable("directory.payPerTile", "reconstruction terminated early", "found", k, "of", total)
			break
		}

		th, err := ParseTileHeader(r, offset)
		if err != nil {
			cfg.logRecoverable("directory.payPerTile", "tile header invalid, stopping reconstruction", "offset", offset, "err", err)
			break
		}

		x, y := rotateIndex(k, tileYCount)
		dir.Entries[y][x] = uint32(offset)

		last := coarsestPopulatedOverview(th)
		if last < 0 {
			cfg.logRecoverable("directory.payPerTile", "tile has no populated overview, stopping reconstruction", "offset", offset)
			break
		}
		ovOffset := int64(th.OverviewOffset[last])
		idx, err := ParseOverviewIndex(r, ovOffset)
		if err != nil {
			cfg.logRecoverable("directory.payPerTile", "overview index unreadable, stopping reconstruction", "offset", ovOffset, "err", err)
			break
		}
		offset = idx.End()
	}
	return dir, nil
}

// coarsestPopulatedOverview returns the highest overview_offset index
// that is nonzero, or -1 if none is.
func coarsestPopulatedOverview(th *TileHeader) int {
	for i := 6; i >= 0; i-- {
		if th.OverviewOffset[i] != 0 {
			return i
		}
	}
	return -1
}
