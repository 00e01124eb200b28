package vrc

import "sync/atomic"

// Band is a host-facing raster band: either the base (full resolution,
// level -1) or one of up to six reduced-resolution overview bands. The
// base band owns its overview children; a child reuses the base band's
// container access rather than being re-opened from disk.
type Band struct {
	c        *Container
	index    int // 1-based band number
	level    int // -1 for base
	children [6]atomic.Pointer[Band]
}

// NewBaseBand constructs the base band for a 1-based band index and
// populates its overview children from the anchoring tile's populated
// overview_offset slots.
func NewBaseBand(c *Container, index int) *Band {
	b := &Band{c: c, index: index, level: -1}
	count, _ := c.OverviewCount()
	for i := 0; i < count && i < 6; i++ {
		child := &Band{c: c, index: index, level: i}
		b.children[i].Store(child)
	}
	return b
}

// Overview returns the child band for a reduced-resolution level (0..5),
// or nil if that level is not populated.
func (b *Band) Overview(level int) *Band {
	if level < 0 || level >= 6 {
		return nil
	}
	return b.children[level].Load()
}

// OverviewCount reports how many reduced-resolution child bands exist.
func (b *Band) OverviewCount() int {
	n := 0
	for i := range b.children {
		if b.children[i].Load() != nil {
			n++
		}
	}
	return n
}

// Close tears down the base band's overview children, nulling each slot
// before the band itself is discarded. It does not close the underlying
// Container, which may still be shared by other bands.
func (b *Band) Close() {
	for i := range b.children {
		b.children[i].Store(nil)
	}
}

// ColorInterp reports the GDAL-facing colour interpretation for this
// band, per the original driver's GetColorInterpretation: RGB + alpha for
// the metres variant, undefined for the thirty-six variant's single band.
func (b *Band) ColorInterp() string {
	if b.c.Header.Magic == MagicThirtySix {
		return "Undefined"
	}
	switch b.index {
	case 1:
		return "Red"
	case 2:
		return "Green"
	case 3:
		return "Blue"
	case 4:
		return "Alpha"
	default:
		return "Undefined"
	}
}

// NoData is always 0, including for the alpha band: the decoder never
// attaches a distinct nodata value per band.
func (b *Band) NoData() byte { return 0 }

// ReadBlock decodes this band's block at (bx, by) and returns this
// band's channel from the composed block.
func (b *Band) ReadBlock(bx, by int) ([]byte, error) {
	blk, err := b.c.ReadBlock(b.level, bx, by)
	if err != nil {
		return nil, err
	}
	idx := b.index - 1
	if idx < 0 || idx >= len(blk.Bands) {
		return nil, ErrInvalidHeader
	}
	return blk.Bands[idx], nil
}
