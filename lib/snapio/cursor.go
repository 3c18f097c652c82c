package snapio

import (
	"encoding/binary"
	"math"
)

// Cursor is a bounds-checked reader over an in-memory file. All reads take
// an absolute byte offset; callers walking variable-length records keep
// their own running offset.
type Cursor struct {
	buf   []byte
	order binary.ByteOrder
}

// NewCursor returns a Cursor over buf which decodes values with order.
func NewCursor(buf []byte, order binary.ByteOrder) *Cursor {
	return &Cursor{buf: buf, order: order}
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of bytes at and after offset.
func (c *Cursor) Remaining(offset int) int {
	if offset < 0 || offset > len(c.buf) {
		return 0
	}
	return len(c.buf) - offset
}

// check returns an error unless n values of width bytes each can be read
// starting at offset.
func (c *Cursor) check(offset, n, width int) error {
	if offset < 0 || n < 0 {
		return decodeErrorf(offset, ErrTruncatedFile,
			"cannot read %d values at negative position", n)
	}
	if offset > len(c.buf) || n > (len(c.buf)-offset)/width {
		return decodeErrorf(offset, ErrTruncatedFile,
			"reading %d %d-byte values needs %d bytes, but the file has "+
				"only %d bytes after this offset",
			n, width, n*width, c.Remaining(offset))
	}
	return nil
}

// Uint32 reads a uint32 at offset.
func (c *Cursor) Uint32(offset int) (uint32, error) {
	if err := c.check(offset, 1, 4); err != nil {
		return 0, err
	}
	return c.order.Uint32(c.buf[offset:]), nil
}

// Uint32s reads n consecutive uint32 values starting at offset.
func (c *Cursor) Uint32s(offset, n int) ([]uint32, error) {
	if err := c.check(offset, n, 4); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = c.order.Uint32(c.buf[offset+4*i:])
	}
	return out, nil
}

// Float64 reads a float64 at offset.
func (c *Cursor) Float64(offset int) (float64, error) {
	if err := c.check(offset, 1, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(c.order.Uint64(c.buf[offset:])), nil
}

// Float64s reads n consecutive float64 values starting at offset.
func (c *Cursor) Float64s(offset, n int) ([]float64, error) {
	if err := c.check(offset, n, 8); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(c.order.Uint64(c.buf[offset+8*i:]))
	}
	return out, nil
}
