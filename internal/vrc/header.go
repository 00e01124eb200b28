package vrc

import (
	"math"

	"github.com/pspoerri/vrcraster/internal/bio"
	"github.com/pspoerri/vrcraster/internal/charset"
	"github.com/pspoerri/vrcraster/internal/crs"
)

// Magic identifies which of the two container variants a file declares.
type Magic int

const (
	// MagicMetres is the primary, fully supported variant.
	MagicMetres Magic = iota
	// MagicThirtySix is the partially understood secondary variant: its
	// leading bytes can be verified but pixel data cannot be decoded.
	MagicThirtySix
)

func (m Magic) String() string {
	switch m {
	case MagicMetres:
		return "metres"
	case MagicThirtySix:
		return "thirty-six"
	default:
		return "unknown"
	}
}

var (
	magicMetresBytes     = [4]byte{0x7E, 0x1F, 0x2E, 0x00}
	magicThirtySixBytes  = [4]byte{0x36, 0x63, 0xCE, 0x01}
	markerAfterDirectory = [11]byte{0x07, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01}
)

// IdentifyResult mirrors the three-valued outcome the host-facing
// identify operation reports: a definite match, a definite non-match, or
// not enough bytes to tell.
type IdentifyResult int

const (
	IdentifyFalse IdentifyResult = iota
	IdentifyTrue
	IdentifyUnknown
)

// Identify inspects a header prefix (as few as 4 bytes) and reports
// whether it opens with a recognised VRC magic.
func Identify(headerBytes []byte) IdentifyResult {
	if len(headerBytes) < 4 {
		return IdentifyUnknown
	}
	var m [4]byte
	copy(m[:], headerBytes[:4])
	if m == magicMetresBytes || m == magicThirtySixBytes {
		return IdentifyTrue
	}
	return IdentifyFalse
}

// Header holds every container-level field parsed once at open.
type Header struct {
	Magic         Magic
	DownloadID    uint16
	CountryCode   uint16
	MapID         int32
	HeaderByte0C  byte
	HeaderByte0D  byte
	Strings       []string
	Title         string
	Copyright     string
	DeviceID      string
	Metadata      map[string]string
	OuterLeft     int32
	OuterTop      int32
	OuterRight    int32
	OuterBottom   int32
	Scale         uint32
	PixelSize     float64
	RasterWidth   int32
	RasterHeight  int32
	TopSkipPixels int32
	TileSizeMax   uint32
	TileSizeMin   uint32
	MaxOverviewCount int
	Checksum      uint32
	TileXCount    uint32
	TileYCount    uint32
	DirectoryEnd  int64 // absolute offset one past the directory region (standard maps only)
	InnerLeft     int32
	InnerTop      int32
	InnerRight    int32
	InnerBottom   int32
	CRS           crs.Entry
}

// String formats the map/download identifiers for diagnostic display,
// mirroring the original driver's digit-packed metadata string.
func (h *Header) String() string {
	return "map_id=" + itoa32(h.MapID) + " download_id=" + uitoa16(h.DownloadID)
}

func itoa32(v int32) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := uitoa64(uint64(v))
	if neg {
		return "-" + s
	}
	return s
}

func uitoa16(v uint16) string { return uitoa64(uint64(v)) }

func uitoa64(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// parseHeader implements the container-open algorithm through the
// tile directory and trailing markers. It returns the parsed header and
// the built directory; the reader's cursor is left at an arbitrary
// position.
func parseHeader(r *bio.Reader, cfg Config) (*Header, *Directory, error) {
	fileSize := r.Size()
	if fileSize < 0x12 {
		return nil, nil, wrapFatal("open", ErrUnknownMagic)
	}

	magicBytes, err := r.ReadBytesAt(0, 4)
	if err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	var m [4]byte
	copy(m[:], magicBytes)
	h := &Header{Metadata: map[string]string{}}
	switch m {
	case magicMetresBytes:
		h.Magic = MagicMetres
	case magicThirtySixBytes:
		h.Magic = MagicThirtySix
	default:
		return nil, nil, wrapFatal("open", ErrUnknownMagic)
	}

	r.Seek(4)
	if h.DownloadID, err = r.ReadU16LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.CountryCode, err = r.ReadU16LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	r.Seek(8)
	if _, err = r.ReadBytes(4); err != nil { // sentinel, conventionally 00 01 00 01
		return nil, nil, wrapFatal("open", err)
	}
	b0c, err := r.ReadU8()
	if err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	b0d, err := r.ReadU8()
	if err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	h.HeaderByte0C, h.HeaderByte0D = b0c, b0d
	if b0c != 0x0F || b0d != 0x09 {
		cfg.logDiagnostic("open", "unrecognised per-country sentinel bytes", "byte0c", b0c, "byte0d", b0d)
	}

	mapID, err := r.ReadI32LE()
	if err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	h.MapID = mapID

	stringCount, err := r.ReadU32LE()
	if err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if stringCount == 0 && h.MapID == 8 {
		cfg.logDiagnostic("open", "string count 0 with pay-per-tile map, retrying past padding", nil)
		if _, err = r.ReadBytes(4); err != nil {
			return nil, nil, wrapFatal("open", err)
		}
		if stringCount, err = r.ReadU32LE(); err != nil {
			return nil, nil, wrapFatal("open", err)
		}
	}

	pos := r.Pos()
	h.Strings = make([]string, 0, stringCount)
	for i := uint32(0); i < stringCount; i++ {
		raw, next, err := r.ReadStringAt(pos)
		if err != nil {
			return nil, nil, wrapFatal("open", err)
		}
		pos = next
		decoded, err := charset.Decode([]byte(raw), charset.ForCountryCode(h.CountryCode))
		if err != nil {
			decoded = raw
		}
		h.Strings = append(h.Strings, decoded)
		switch i {
		case 0:
			h.Title = decoded
		case 1:
			h.Copyright = decoded
		case 5:
			h.DeviceID = decoded
		default:
			h.Metadata["VRC_STRING_"+uitoa64(uint64(i))] = decoded
		}
	}

	r.Seek(pos)
	if h.OuterLeft, err = r.ReadI32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.OuterTop, err = r.ReadI32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.OuterRight, err = r.ReadI32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.OuterBottom, err = r.ReadI32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.Scale, err = r.ReadU32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.Scale == 0 {
		return nil, nil, wrapFatal("open", ErrZeroScale)
	}
	h.PixelSize = float64(h.Scale) / 10000.0
	if h.PixelSize < 0.5 {
		return nil, nil, wrapFatal("open", ErrPixelTooSmall)
	}

	rw := float64(h.OuterRight-h.OuterLeft) * 10000.0 / float64(h.Scale)
	rh := float64(h.OuterTop-h.OuterBottom) * 10000.0 / float64(h.Scale)
	h.RasterWidth = int32(rw)
	h.RasterHeight = int32(rh)
	if h.RasterWidth <= 0 || h.RasterHeight <= 0 {
		return nil, nil, wrapFatal("open", ErrBadRasterDims)
	}

	if h.TileSizeMax, err = r.ReadU32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.TileSizeMax == 0 {
		return nil, nil, wrapFatal("open", ErrZeroTileSizeMax)
	}
	if h.TileSizeMin, err = r.ReadU32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.TileSizeMin == 0 {
		h.TileSizeMin = h.TileSizeMax
	}
	if q := h.TileSizeMax / h.TileSizeMin; h.TileSizeMax%h.TileSizeMin != 0 || q&(q-1) != 0 {
		cfg.logDiagnostic("open", "tile_size_max is not a power-of-two multiple of tile_size_min", "max", h.TileSizeMax, "min", h.TileSizeMin)
	}
	ratio := float64(h.TileSizeMax) / float64(h.TileSizeMin)
	h.MaxOverviewCount = int(1 + math.Floor(math.Log2(ratio)))
	if h.MaxOverviewCount > 7 {
		h.MaxOverviewCount = 7
	}
	if h.MaxOverviewCount < 1 {
		h.MaxOverviewCount = 1
	}

	sevenAgain, err := r.ReadU32LE()
	if err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if sevenAgain != 7 {
		cfg.logDiagnostic("open", "expected conventional value 7 after tile_size_min", "got", sevenAgain)
	}

	if h.Checksum, err = r.ReadU32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.TileXCount, err = r.ReadU32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}
	if h.TileYCount, err = r.ReadU32LE(); err != nil {
		return nil, nil, wrapFatal("open", err)
	}

	dirOffset := r.Pos()
	var dir *Directory
	if h.MapID == 8 {
		dir, err = buildPayPerTileDirectory(r, dirOffset, int(h.TileXCount), int(h.TileYCount), cfg)
		if err != nil {
			return nil, nil, wrapFatal("open", err)
		}
		// The pay-per-tile layout has no contiguous directory region to
		// skip past, so the marker/inner-bbox check below is skipped.
		h.DirectoryEnd = -1
	} else {
		dir, err = buildStandardDirectory(r, dirOffset, int(h.TileXCount), int(h.TileYCount), cfg)
		if err != nil {
			return nil, nil, wrapFatal("open", err)
		}
		h.DirectoryEnd = dirOffset + int64(h.TileXCount)*int64(h.TileYCount)*4
	}

	if h.DirectoryEnd >= 0 {
		if marker, err := r.ReadBytesAt(h.DirectoryEnd, 11); err != nil || !bytesEqual(marker, markerAfterDirectory[:]) {
			cfg.logDiagnostic("open", "marker sequence after tile directory absent or mismatched", nil)
		} else {
			r.Seek(h.DirectoryEnd + 11)
			if h.InnerLeft, err = r.ReadI32LE(); err == nil {
				h.InnerTop, _ = r.ReadI32LE()
				h.InnerRight, _ = r.ReadI32LE()
				h.InnerBottom, _ = r.ReadI32LE()
				applyInnerBBox(h, cfg)
			}
			thirdSeven, err := r.ReadU32LE()
			if err == nil && thirdSeven != 7 {
				cfg.logDiagnostic("open", "third occurrence of conventional value 7 reads something else", "got", thirdSeven)
			}
		}
	}

	h.CRS = crs.ForCountryCode(h.CountryCode)
	return h, dir, nil
}

// applyInnerBBox compares the inner bounding box against the outer one.
// A height mismatch consistent with a short top row pushes the reported
// raster height up to the next multiple of tile_size_max and records how
// many top rows are short (nodata).
func applyInnerBBox(h *Header, cfg Config) {
	outerHeight := h.OuterTop - h.OuterBottom
	innerHeight := h.InnerTop - h.InnerBottom
	if innerHeight == outerHeight {
		return
	}
	if innerHeight < outerHeight && innerHeight > 0 {
		tsm := int32(h.TileSizeMax)
		rounded := h.RasterHeight
		if rem := rounded % tsm; rem != 0 {
			rounded += tsm - rem
		}
		h.TopSkipPixels = rounded - h.RasterHeight
		h.RasterHeight = rounded
		return
	}
	cfg.logDiagnostic("open", "inner/outer bounding box mismatch is not a short-top condition", nil)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
