package vrc

import (
	"github.com/pspoerri/vrcraster/internal/bio"
)

// OverviewIndex is the sub-tile grid header at one overview's offset: the
// grid dimensions, each sub-tile's declared pixel size, and the absolute
// file offsets of every sub-tile's PNG bytes (with one extra trailing
// entry bounding the last sub-tile's length).
type OverviewIndex struct {
	Offset                       int64
	PNGXCount, PNGYCount         uint32
	PNGXSize, PNGYSize           uint32
	SubTileOffsets               []uint32
	// PaletteOffset is the absolute offset immediately following the
	// sub-tile offset array, where an optional palette record may begin.
	PaletteOffset int64
}

// Count returns the number of sub-tiles in the grid.
func (o *OverviewIndex) Count() int {
	return int(o.PNGXCount) * int(o.PNGYCount)
}

// End returns the absolute offset one past the last sub-tile's PNG
// bytes — the trailing sentinel entry of SubTileOffsets. In the
// pay-per-tile directory layout, this is exactly the byte position where
// a subsequent tile header begins when tiles are packed contiguously.
func (o *OverviewIndex) End() int64 {
	if len(o.SubTileOffsets) == 0 {
		return o.PaletteOffset
	}
	return int64(o.SubTileOffsets[len(o.SubTileOffsets)-1])
}

// ParseOverviewIndex reads the sub-tile grid header at offset.
func ParseOverviewIndex(r *bio.Reader, offset int64) (*OverviewIndex, error) {
	r.Seek(offset)
	xCount, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	yCount, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	xSize, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	ySize, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}

	count := int(xCount) * int(yCount)
	offsets := make([]uint32, 0, count+1)
	for i := 0; i < count+1; i++ {
		v, err := r.ReadU32LE()
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, v)
	}

	return &OverviewIndex{
		Offset:         offset,
		PNGXCount:      xCount,
		PNGYCount:      yCount,
		PNGXSize:       xSize,
		PNGYSize:       ySize,
		SubTileOffsets: offsets,
		PaletteOffset:  r.Pos(),
	}, nil
}

// Palette is a shared RGB palette record fabricated into a PLTE chunk
// during PNG reconstruction.
type Palette struct {
	Body []byte // png_len bytes, RGB triples
	CRC  uint32
}

// ParsePalette reads the optional palette record immediately following an
// overview's sub-tile offset array. It returns (nil, nil) when no valid
// record is present at offset — the palette is then silently treated as
// absent, which is not an error condition.
func ParsePalette(r *bio.Reader, offset int64) (*Palette, error) {
	vrcLen, err := r.ReadU32LEAt(offset)
	if err != nil {
		return nil, nil
	}
	pngLen, err := readU32BEAt(r, offset+4)
	if err != nil {
		return nil, nil
	}
	if int64(vrcLen)-int64(pngLen) != 8 {
		return nil, nil
	}
	if pngLen == 0 || pngLen%3 != 0 {
		return nil, nil
	}
	if !r.InBounds(offset+8, int64(pngLen)+4) {
		return nil, nil
	}
	body, err := r.ReadBytesAt(offset+8, int64(pngLen))
	if err != nil {
		return nil, nil
	}
	crc, err := readU32BEAt(r, offset+8+int64(pngLen))
	if err != nil {
		return nil, nil
	}
	out := make([]byte, len(body))
	copy(out, body)
	return &Palette{Body: out, CRC: crc}, nil
}

func readU32BEAt(r *bio.Reader, off int64) (uint32, error) {
	b, err := r.ReadBytesAt(off, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}
