// Package vrc decodes ViewRanger VRC raster map containers: geo-referenced
// tile pyramids whose pixel data is stored as reconstructable PNG chunks.
// It is a read-only decoder; there is no support for writing or modifying
// containers.
package vrc

import (
	"github.com/pspoerri/vrcraster/internal/bio"
	"github.com/pspoerri/vrcraster/internal/crs"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Container is an open VRC file: its header, its tile directory, and the
// scratch state needed to serve block reads. A Container is not safe for
// concurrent block reads — the underlying reader cursor and per-call
// scratch buffers are shared — but independent Containers may be driven
// concurrently from separate goroutines.
type Container struct {
	path      string
	r         *bio.Reader
	cfg       Config
	Header    *Header
	Directory *Directory
	cache     *lru.Cache[subtileKey, *decodedSubtile]
}

type subtileKey struct {
	offset int64
}

// Open parses path as a VRC container: header,
// string table, bounding boxes, tile directory (standard or pay-per-tile),
// and trailing markers. A zero Config selects silent defaults.
func Open(path string, cfg Config) (*Container, error) {
	cfg = cfg.normalized()

	r, err := bio.Open(path)
	if err != nil {
		return nil, wrapFatal("open", err)
	}

	h, dir, err := parseHeader(r, cfg)
	if err != nil {
		r.Close()
		return nil, err
	}

	cache, err := lru.New[subtileKey, *decodedSubtile](cfg.CacheSize)
	if err != nil {
		r.Close()
		return nil, wrapFatal("open", err)
	}

	return &Container{
		path:      path,
		r:         r,
		cfg:       cfg,
		Header:    h,
		Directory: dir,
		cache:     cache,
	}, nil
}

// Close releases the container's file mapping. A write-mode open is
// never supported by this decoder — OpenForWrite does not exist — so
// Close has no dirty state to flush.
func (c *Container) Close() error {
	return c.r.Close()
}

// RasterSize returns (width, height) in pixels.
func (c *Container) RasterSize() (int, int) {
	return int(c.Header.RasterWidth), int(c.Header.RasterHeight)
}

// BandCount returns 4 (RGB + alpha) for the metres variant, 1 for the
// thirty-six variant.
func (c *Container) BandCount() int {
	if c.Header.Magic == MagicThirtySix {
		return 1
	}
	return 4
}

// GeoTransform returns the six-tuple (left, pixel_w, 0, top, 0, -pixel_h)
// the host-facing interface reports, applying any country-specific axis
// scale/shift.
func (c *Container) GeoTransform() crs.GeoTransform {
	left := float64(c.Header.OuterLeft)
	top := float64(c.Header.OuterTop) + float64(c.Header.TopSkipPixels)*c.Header.PixelSize
	pixelW := float64(c.Header.OuterRight-c.Header.OuterLeft) / float64(c.Header.RasterWidth)
	pixelH := c.Header.PixelSize
	return c.Header.CRS.Apply(left, top, pixelW, pixelH)
}

// OverviewCount returns how many of the seven overview slots are
// populated for the tile that anchors band-level overview reporting
// (block (0,0)), matching the host-facing overview_count(band) contract.
func (c *Container) OverviewCount() (int, error) {
	bx, by := 0, 0
	entry := c.Directory.At(bx, by)
	if entry == 0 {
		return 0, nil
	}
	th, err := ParseTileHeader(c.r, int64(entry))
	if err != nil {
		return 0, nil
	}
	return th.OverviewCount(), nil
}

// BlockSize returns the pixel dimensions of one block (one tile at one
// overview level): tile_size_max >> (overview+1) for overviews, or
// tile_size_max at the base.
func (c *Container) BlockSize(overview int) int {
	if overview < 0 {
		return int(c.Header.TileSizeMax)
	}
	return int(c.Header.TileSizeMax) >> uint(overview+1)
}
