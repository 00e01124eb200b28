package vrc

import (
	"github.com/pspoerri/vrcraster/internal/bio"
)

// TileHeader is the per-tile record at each nonzero directory entry:
// a leading sentinel value of 7 followed by seven overview offsets.
// Offset 0 is full resolution; 1..6 are successively halved; a zero entry
// means "downsample from the previous level".
type TileHeader struct {
	Offset         int64
	OverviewOffset [7]uint32
}

// ParseTileHeader reads a tile header at offset, validating the leading
// sentinel. Violating the sentinel downgrades the tile to empty per the
// container invariant, so callers treat ErrTileHeaderBadMagic as
// recoverable, not fatal.
func ParseTileHeader(r *bio.Reader, offset int64) (*TileHeader, error) {
	r.Seek(offset)
	sentinel, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	if sentinel != 7 {
		return nil, ErrTileHeaderBadMagic
	}
	th := &TileHeader{Offset: offset}
	for i := 0; i < 7; i++ {
		v, err := r.ReadU32LE()
		if err != nil {
			return nil, err
		}
		th.OverviewOffset[i] = v
	}
	return th, nil
}

// OverviewCount reports how many of the seven overview_offset slots are
// populated. A requested overview level beyond what is populated is still
// serviceable via one level of 2x downsample (see SelectOverview); this
// count reflects storage, not servability.
func (th *TileHeader) OverviewCount() int {
	n := 0
	for _, v := range th.OverviewOffset {
		if v != 0 {
			n++
		}
	}
	return n
}

// SelectOverview resolves a requested overview level (-1 for the base,
// 0..5 for reduced levels) to a concrete on-disk offset and shrink
// factor. shrink is 1 for a direct offset and 2 when the requested level
// is absent but the next-finer level is present (caller must then
// 2x-downsample the finer level's decoded pixels). ok is false when
// neither the requested nor the finer level is available.
func SelectOverview(th *TileHeader, overview int) (offset int64, shrink int, ok bool) {
	idx := overview + 1
	if idx < 0 || idx > 6 {
		return 0, 0, false
	}
	if th.OverviewOffset[idx] != 0 {
		return int64(th.OverviewOffset[idx]), 1, true
	}
	if idx-1 >= 0 && th.OverviewOffset[idx-1] != 0 {
		return int64(th.OverviewOffset[idx-1]), 2, true
	}
	return 0, 0, false
}

// plausibleOverviewOffset is a loose lower bound on any valid in-file
// offset: it must clear the fixed-size container header region.
const plausibleOverviewOffset = 16

// validOverviewOffset reports whether off could plausibly address real
// overview data: large enough to be past the header, and inside the file.
func validOverviewOffset(off, fileSize int64) bool {
	return off >= plausibleOverviewOffset && off < fileSize
}
