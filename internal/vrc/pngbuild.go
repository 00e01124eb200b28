package vrc

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"

	"github.com/pspoerri/vrcraster/internal/bio"
	"github.com/pspoerri/vrcraster/internal/pngcrc"
)

// realPNGSignature is the standard 8-byte signature the on-disk record
// has been stripped of; it must be restored before handing the bytes to
// the PNG library.
var realPNGSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

var iendChunk = []byte{0x00, 0x00, 0x00, 0x00, 'I', 'E', 'N', 'D', 0xAE, 0x42, 0x60, 0x82}

// decodedSubtile is the cached result of reconstructing and decoding one
// sub-tile's PNG: an RGB buffer (nodata-filled where the source had no
// data) plus the dimensions the PNG library actually produced.
type decodedSubtile struct {
	rgb    []byte
	width  int
	height int
}

// ihdrFields holds the 13-byte IHDR payload plus its on-disk CRC.
type ihdrFields struct {
	width, height                           uint32
	bitDepth, colourType, compression, filter, interlace byte
	crc                                      uint32
}

func readIHDR(r *bio.Reader, headerOff int64) (*ihdrFields, error) {
	// Byte at headerOff is the leading 0x00 sentinel; the 17 IHDR bytes
	// (13 data + 4 CRC) follow at headerOff+1.
	buf, err := r.ReadBytesAt(headerOff+1, 17)
	if err != nil {
		return nil, err
	}
	f := &ihdrFields{
		width:       binary.BigEndian.Uint32(buf[0:4]),
		height:      binary.BigEndian.Uint32(buf[4:8]),
		bitDepth:    buf[8],
		colourType:  buf[9],
		compression: buf[10],
		filter:      buf[11],
		interlace:   buf[12],
		crc:         binary.BigEndian.Uint32(buf[13:17]),
	}
	return f, nil
}

func (f *ihdrFields) validate() error {
	switch f.bitDepth {
	case 1, 2, 4, 8:
	default:
		return ErrUnsupportedPNG
	}
	switch f.colourType {
	case 0, 2, 3:
	default:
		return ErrUnsupportedPNG
	}
	if f.compression != 0 || f.filter != 0 {
		return ErrUnsupportedPNG
	}
	if f.interlace != 0 && f.interlace != 1 {
		return ErrUnsupportedPNG
	}
	return nil
}

func (f *ihdrFields) dataBytes() []byte {
	buf := make([]byte, 13)
	binary.BigEndian.PutUint32(buf[0:4], f.width)
	binary.BigEndian.PutUint32(buf[4:8], f.height)
	buf[8] = f.bitDepth
	buf[9] = f.colourType
	buf[10] = f.compression
	buf[11] = f.filter
	buf[12] = f.interlace
	return buf
}

func writeChunk(buf *bytes.Buffer, chunkType string, data []byte, crc uint32) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.WriteString(chunkType)
	buf.Write(data)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	buf.Write(crcBuf[:])
}

// reconstructPNG rebuilds a valid in-memory PNG stream from a sub-tile's
// stripped on-disk chunks and decodes it. headerOff is the
// absolute offset of the sub-tile's leading 0x00 sentinel; paletteOff is
// the palette-record offset for the sub-tile's overview (0 disables
// lookup); dataLen is the byte length of the already-framed IDAT region.
func reconstructPNG(r *bio.Reader, headerOff, paletteOff, dataLen, maxSize int64) (*decodedSubtile, error) {
	ihdr, err := readIHDR(r, headerOff)
	if err != nil {
		return nil, err
	}
	if err := ihdr.validate(); err != nil {
		return nil, err
	}
	ihdrData := ihdr.dataBytes()
	if !pngcrc.Verify(append([]byte("IHDR"), ihdrData...), ihdr.crc) {
		return nil, ErrCrcMismatch
	}

	if !r.InBounds(headerOff+0x12, dataLen) {
		return nil, ErrTruncatedData
	}
	idat, err := r.ReadBytesAt(headerOff+0x12, dataLen)
	if err != nil {
		return nil, ErrTruncatedData
	}

	var buf bytes.Buffer
	buf.Grow(8 + 21 + (3*256 + 12) + int(dataLen) + 12)
	buf.Write(realPNGSignature)
	writeChunk(&buf, "IHDR", ihdrData, ihdr.crc)

	if paletteOff != 0 {
		if pal, err := ParsePalette(r, paletteOff); err == nil && pal != nil {
			if len(pal.Body) > 768 {
				return nil, ErrOversizedPalette
			}
			writeChunk(&buf, "PLTE", pal.Body, pal.CRC)
		} else if ihdr.colourType == 3 {
			writeChunk(&buf, "PLTE", greyscalePalette(), pngcrc.GreyscalePaletteCRC)
		}
	} else if ihdr.colourType == 3 {
		writeChunk(&buf, "PLTE", greyscalePalette(), pngcrc.GreyscalePaletteCRC)
	}

	buf.Write(idat)
	buf.Write(iendChunk)

	if maxSize != 0 && int64(buf.Len()) > maxSize {
		return nil, ErrOversizedPalette
	}

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, ErrUnsupportedPNG
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgb := make([]byte, 3*w*h)
	fillRGB(rgb, img, w, h)

	return &decodedSubtile{rgb: rgb, width: w, height: h}, nil
}

// greyscalePalette synthesises a 256-entry identity greyscale palette
// (entry i = (i, i, i)) for palette-colour-type sub-tiles that have no
// palette record on disk.
func greyscalePalette() []byte {
	body := make([]byte, 256*3)
	for i := 0; i < 256; i++ {
		body[3*i] = byte(i)
		body[3*i+1] = byte(i)
		body[3*i+2] = byte(i)
	}
	return body
}

// fillRGB copies img's RGB channels (alpha stripped) into a row-major
// 3*w*h buffer. Band 4 (alpha) is never sourced from the PNG; it is left
// at the caller's nodata fill, per the nodata contract for alpha.
func fillRGB(dst []byte, img image.Image, w, h int) {
	b := img.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := 3 * (y*w + x)
			dst[i] = byte(r >> 8)
			dst[i+1] = byte(g >> 8)
			dst[i+2] = byte(bl >> 8)
		}
	}
}
