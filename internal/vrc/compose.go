package vrc

// Block is the unit of pixel delivery to the host: one tile at one
// overview level, row-major with origin at the top-left, one byte slice
// per band. Every block is initialised to the nodata value 0.
type Block struct {
	Width, Height int
	Bands         [][]byte // index 0 = band 1 (red/grey), ... index 3 = band 4 (alpha)
}

func newBlock(size, bandCount int) *Block {
	bands := make([][]byte, bandCount)
	for i := range bands {
		bands[i] = make([]byte, size*size)
	}
	return &Block{Width: size, Height: size, Bands: bands}
}

// ReadBlock decodes and composes one block: the tile at (bx, by) for the
// given overview (-1 for base), selecting and, if needed, 2x-downsampling
// the nearest available overview level, and copying each sub-tile into
// place with Y-axis reversal and edge clipping. Any recoverable failure
// along the way degrades the affected region to nodata rather than
// failing the call.
func (c *Container) ReadBlock(overview, bx, by int) (*Block, error) {
	size := c.BlockSize(overview)
	block := newBlock(size, c.BandCount())

	entry := c.Directory.At(bx, by)
	if entry == 0 {
		return block, nil
	}

	if c.Header.Magic == MagicThirtySix {
		c.composeThirtySix(block, int64(entry))
		return block, nil
	}

	th, err := ParseTileHeader(c.r, int64(entry))
	if err != nil {
		c.cfg.logRecoverable("readBlock", "tile header invalid, emitting nodata", "bx", bx, "by", by, "err", err)
		return block, nil
	}

	offset, shrink, ok := SelectOverview(th, overview)
	if !ok {
		return block, nil
	}
	if !validOverviewOffset(offset, c.r.Size()) {
		c.cfg.logRecoverable("readBlock", "overview offset implausible, emitting nodata", "offset", offset)
		return block, nil
	}

	ovIdx, err := ParseOverviewIndex(c.r, offset)
	if err != nil {
		c.cfg.logRecoverable("readBlock", "overview index unreadable, emitting nodata", "offset", offset, "err", err)
		return block, nil
	}

	c.composeOverview(block, ovIdx, shrink)
	return block, nil
}

func (c *Container) composeOverview(block *Block, ov *OverviewIndex, shrink int) {
	nX, nY := int(ov.PNGXCount), int(ov.PNGYCount)
	if nX == 0 || nY == 0 {
		return
	}
	nominalW := int(ov.PNGXSize) / shrink
	nominalH := int(ov.PNGYSize) / shrink
	if nominalW <= 0 || nominalH <= 0 {
		return
	}

	for loopY := 0; loopY < nY; loopY++ {
		subY := nY - 1 - loopY
		topRow := block.Height - (loopY+1)*nominalH
		srcRowSkip := 0
		if topRow < 0 {
			if nY == 1 {
				srcRowSkip = -topRow
				topRow = 0
			} else {
				c.cfg.logDiagnostic("compose", "short-top tile in multi-row grid", "loopY", loopY)
			}
		}

		leftCol := 0
		for subX := 0; subX < nX; subX++ {
			arrIdx := subY + subX*nY
			if arrIdx < 0 || arrIdx+1 >= len(ov.SubTileOffsets) {
				leftCol += nominalW
				continue
			}
			subOffset := int64(ov.SubTileOffsets[arrIdx])
			dataLen := int64(ov.SubTileOffsets[arrIdx+1]) - subOffset - 0x12

			dec, err := c.decodeSubtile(subOffset, ov.PaletteOffset, dataLen)
			if err != nil || dec == nil {
				leftCol += nominalW
				continue
			}
			if !dimensionConsistent(dec.width, int(ov.PNGXSize), shrink) || !dimensionConsistent(dec.height, int(ov.PNGYSize), shrink) {
				c.cfg.logRecoverable("composeOverview", "decoded PNG size inconsistent with declared sub-tile size, skipping",
					"subOffset", subOffset, "decodedWidth", dec.width, "decodedHeight", dec.height,
					"declaredWidth", ov.PNGXSize, "declaredHeight", ov.PNGYSize, "shrink", shrink)
				leftCol += nominalW
				continue
			}

			srcH, srcW := dec.height, dec.width
			if shrink == 2 {
				srcH, srcW = (dec.height+1)/2, (dec.width+1)/2
			}
			copyStopRow := srcH - srcRowSkip
			if block.Height-topRow < copyStopRow {
				copyStopRow = block.Height - topRow
			}
			copyStopCol := srcW
			if block.Width-leftCol < copyStopCol {
				copyStopCol = block.Width - leftCol
			}
			if copyStopRow > 0 && copyStopCol > 0 {
				if shrink == 1 {
					composeDirect(block, dec, topRow, leftCol, srcRowSkip, copyStopRow, copyStopCol)
				} else {
					composeDownsample(block, dec, topRow, leftCol, srcRowSkip, copyStopRow, copyStopCol)
				}
			}
			leftCol += nominalW
		}
	}
}

func (c *Container) decodeSubtile(offset, paletteOffset, dataLen int64) (*decodedSubtile, error) {
	key := subtileKey{offset: offset}
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	dec, err := reconstructPNG(c.r, offset, paletteOffset, dataLen, c.cfg.MaxSize)
	if err != nil {
		c.cfg.logRecoverable("decodeSubtile", "sub-tile skipped", "offset", offset, "err", err)
		return nil, err
	}
	c.cache.Add(key, dec)
	return dec, nil
}

// composeDirect copies decoded RGB pixels one-for-one into the block at
// (topRow, leftCol), skipping srcRowSkip source rows (short-top clamp).
// Band 4 (alpha) is left untouched at its nodata fill.
func composeDirect(block *Block, dec *decodedSubtile, topRow, leftCol, srcRowSkip, stopRow, stopCol int) {
	bandCount := len(block.Bands)
	if bandCount > 3 {
		bandCount = 3
	}
	for band := 0; band < bandCount; band++ {
		dst := block.Bands[band]
		for ii := 0; ii < stopRow; ii++ {
			srcRow := ii + srcRowSkip
			for jj := 0; jj < stopCol; jj++ {
				dst[(topRow+ii)*block.Width+leftCol+jj] = dec.rgb[3*dec.width*srcRow+3*jj+band]
			}
		}
	}
}

// composeDownsample 2x2-box-filter downsamples decoded RGB pixels into
// the block, truncating after integer summation (no rounding).
func composeDownsample(block *Block, dec *decodedSubtile, topRow, leftCol, srcRowSkip, stopRow, stopCol int) {
	bandCount := len(block.Bands)
	if bandCount > 3 {
		bandCount = 3
	}
	for band := 0; band < bandCount; band++ {
		dst := block.Bands[band]
		for ii := 0; ii < stopRow; ii++ {
			r0 := 2*ii + srcRowSkip
			r1 := r0 + 1
			for jj := 0; jj < stopCol; jj++ {
				c0 := 2 * jj
				c1 := c0 + 1
				sum := srcPixel(dec, r0, c0, band) + srcPixel(dec, r1, c0, band) +
					srcPixel(dec, r0, c1, band) + srcPixel(dec, r1, c1, band)
				dst[(topRow+ii)*block.Width+leftCol+jj] = byte(sum / 4)
			}
		}
	}
}

// dimensionConsistent checks a decoded sub-tile dimension against its
// declared size: it may never exceed the declaration, and may fall short
// of it only within the overview's own scale factor (edge tiles at a
// coarser shrink round to fewer pixels than the nominal grid cell).
func dimensionConsistent(actual, declared, shrink int) bool {
	if declared <= 0 {
		return true
	}
	if actual > declared {
		return false
	}
	return declared-actual < shrink
}

func srcPixel(dec *decodedSubtile, row, col, band int) int {
	if row < 0 || row >= dec.height || col < 0 || col >= dec.width {
		return 0
	}
	return int(dec.rgb[3*dec.width*row+3*col+band])
}
