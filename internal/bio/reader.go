// Package bio provides absolute-offset primitive reads over a memory-mapped
// byte buffer: the little/big-endian integers and length-prefixed strings
// that make up the VRC container's on-disk layout.
package bio

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Sentinel failure kinds. Any read past the end of the mapped buffer, or
// with a length outside [0, file_size), surfaces as one of these so callers
// can distinguish "stop, the container is corrupt" from "this one tile is
// unreadable".
var (
	ErrEndOfFile     = errors.New("bio: end of file")
	ErrIoError       = errors.New("bio: io error")
	ErrInvalidLength = errors.New("bio: invalid length")
)

// Reader is a read-only view over a whole file, mapped once at Open and
// addressed by absolute offset. The cursor advances only through ReadBytes
// and the cursor-relative primitives built on it (ReadU8, ReadU16LE,
// ReadU32LE, ReadI32LE, ReadU32BE); the ...At reads take an explicit
// absolute offset and leave the cursor where it is.
type Reader struct {
	data []byte
	pos  int64
}

// Open memory-maps path read-only and returns a Reader positioned at 0.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bio: open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "bio: stat %s", path)
	}
	size := info.Size()
	if size == 0 {
		return &Reader{data: nil}, nil
	}

	data, err := mmapFile(f.Fd(), int(size))
	if err != nil {
		return nil, errors.Wrapf(err, "bio: mmap %s", path)
	}
	return &Reader{data: data}, nil
}

// Close releases the underlying mapping.
func (r *Reader) Close() error {
	if r.data == nil {
		return nil
	}
	err := munmapFile(r.data)
	r.data = nil
	return err
}

// Size returns the total file size in bytes.
func (r *Reader) Size() int64 { return int64(len(r.data)) }

// Pos returns the current cursor position.
func (r *Reader) Pos() int64 { return r.pos }

// Seek moves the cursor to an absolute offset. It does not validate the
// offset; the next read will fail with ErrEndOfFile if it is out of range.
func (r *Reader) Seek(abs int64) {
	r.pos = abs
}

// InBounds reports whether [off, off+n) lies entirely inside the file.
// Per the container invariant, no byte read is ever performed outside
// [0, file_size); offsets at or beyond file_size are always "no data here".
func (r *Reader) InBounds(off, n int64) bool {
	if off < 0 || n < 0 {
		return false
	}
	return off+n <= int64(len(r.data))
}

func (r *Reader) sliceAt(off, n int64) ([]byte, error) {
	if !r.InBounds(off, n) {
		return nil, ErrEndOfFile
	}
	return r.data[off : off+n], nil
}

// ReadBytesAt reads n raw bytes starting at an absolute offset, without
// moving the cursor.
func (r *Reader) ReadBytesAt(off, n int64) ([]byte, error) {
	return r.sliceAt(off, n)
}

// ReadBytes reads n raw bytes from the current cursor and advances it.
func (r *Reader) ReadBytes(n int64) ([]byte, error) {
	b, err := r.sliceAt(r.pos, n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// ReadU8 reads one byte at the current cursor.
func (r *Reader) ReadU8() (byte, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a little-endian uint16 at the current cursor.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32LE reads a little-endian uint32 at the current cursor.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32LE reads a little-endian int32 at the current cursor.
func (r *Reader) ReadI32LE() (int32, error) {
	v, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadU32BE reads a big-endian uint32 at the current cursor. PNG chunk
// framing (length, CRC, and the IHDR width/height fields) is always
// big-endian even though the surrounding container is little-endian.
func (r *Reader) ReadU32BE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadU32LEAt reads a little-endian uint32 at an absolute offset without
// moving the cursor.
func (r *Reader) ReadU32LEAt(off int64) (uint32, error) {
	b, err := r.sliceAt(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32LEAt reads a little-endian int32 at an absolute offset.
func (r *Reader) ReadI32LEAt(off int64) (int32, error) {
	v, err := r.ReadU32LEAt(off)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadStringAt reads, at an absolute offset and without moving the cursor,
// a little-endian i32 length prefix followed by that many bytes, and
// returns them as a string together with the offset one past the string.
// A negative or zero length yields the empty string without touching the
// file further; a length that would overrun the file fails with
// ErrInvalidLength.
func (r *Reader) ReadStringAt(off int64) (string, int64, error) {
	length, err := r.ReadI32LEAt(off)
	if err != nil {
		return "", 0, err
	}
	next := off + 4
	if length <= 0 {
		return "", next, nil
	}
	if !r.InBounds(next, int64(length)) {
		return "", 0, ErrInvalidLength
	}
	raw, err := r.sliceAt(next, int64(length))
	if err != nil {
		return "", 0, err
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return string(buf), next + int64(length), nil
}
