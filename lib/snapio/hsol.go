package snapio

import (
	"encoding/binary"

	"github.com/horses3d/hpost/lib/field"
)

const (
	// PreambleSize is the number of leading bytes that hpost does not
	// interpret (format magic and solver metadata).
	PreambleSize = 136
	// NumRefValues is the number of reference values in the header.
	NumRefValues = 6

	elementCountOffset = PreambleSize
	iterationOffset    = PreambleSize + 4
	timeOffset         = PreambleSize + 8
	refValuesOffset    = PreambleSize + 16
	// markerSize is the size of a Fortran record marker.
	markerSize = 4
	// BlocksOffset is where the first element record starts, including its
	// leading record marker.
	BlocksOffset = refValuesOffset + 8*NumRefValues + markerSize

	// orderSize is the size of an element record's four extents.
	orderSize = 4 * 4
)

// Header holds the fixed-offset values at the start of a file.
type Header struct {
	ElementCount uint32
	Iteration    uint32
	Time         float64
	RefValues    [NumRefValues]float64
}

// Solution is a decoded file: its header plus a tensor with shape
// [ElementCount, Order[1], Order[2], Order[3], Order[0]].
type Solution struct {
	Header
	// Order is the first element's extents as stored in the file:
	// variables first, then the three spatial node counts. Every other
	// element has the same extents.
	Order [4]int
	Data  *field.Tensor
}

// ColumnMajor returns the position of [d0, d1, d2, d3] in a column-major
// (first index fastest) payload with extents n.
func ColumnMajor(n [4]int, d0, d1, d2, d3 int) int {
	return d0 + n[0]*(d1+n[1]*(d2+n[2]*d3))
}

// ReadHeader decodes only the fixed-offset header of buf.
func ReadHeader(buf []byte, order binary.ByteOrder) (*Header, error) {
	return readHeader(NewCursor(buf, order))
}

func readHeader(c *Cursor) (*Header, error) {
	hd := &Header{}
	var err error

	if hd.ElementCount, err = c.Uint32(elementCountOffset); err != nil {
		return nil, err
	}
	if hd.Iteration, err = c.Uint32(iterationOffset); err != nil {
		return nil, err
	}
	if hd.Time, err = c.Float64(timeOffset); err != nil {
		return nil, err
	}
	ref, err := c.Float64s(refValuesOffset, NumRefValues)
	if err != nil {
		return nil, err
	}
	copy(hd.RefValues[:], ref)

	return hd, nil
}

// Decode decodes an entire in-memory .hsol file. Any failure aborts the
// whole file; no partially filled Solution is ever returned.
func Decode(buf []byte, order binary.ByteOrder) (*Solution, error) {
	c := NewCursor(buf, order)
	hd, err := readHeader(c)
	if err != nil {
		return nil, err
	}

	nElem := int(hd.ElementCount)
	if nElem == 0 {
		return nil, decodeErrorf(elementCountOffset, ErrInvalidBlock,
			"the header declares zero elements")
	}

	// Every element needs at least a marker, its extents and one value, so
	// a count the remaining bytes cannot possibly hold is caught before any
	// allocation happens.
	minBlock := markerSize + orderSize + 8
	if rem := c.Remaining(BlocksOffset); nElem > rem/minBlock {
		return nil, decodeErrorf(BlocksOffset, ErrTruncatedFile,
			"the header declares %d elements, but only %d bytes of element "+
				"records follow, enough for at most %d", nElem, rem,
			rem/minBlock)
	}

	sol := &Solution{Header: *hd}
	offset := BlocksOffset
	for e := 0; e < nElem; e++ {
		offset, err = decodeElement(c, offset, e, sol)
		if err != nil {
			return nil, err
		}
	}

	return sol, nil
}

// decodeElement decodes the element record starting at offset into slot e
// of sol and returns the offset of the next record. The first element
// fixes the shape of sol.Data.
func decodeElement(c *Cursor, offset, e int, sol *Solution) (int, error) {
	start := offset
	offset += markerSize

	raw, err := c.Uint32s(offset, 4)
	if err != nil {
		return 0, err
	}
	offset += orderSize

	var n [4]int
	size := uint64(1)
	for i := range raw {
		n[i] = int(raw[i])
		size *= uint64(raw[i])
	}
	if size == 0 {
		return 0, decodeErrorf(start, ErrInvalidBlock,
			"element %d has extents %v, which hold no values", e, raw)
	}
	if size > uint64(c.Remaining(offset)/8) {
		return 0, decodeErrorf(offset, ErrTruncatedFile,
			"element %d has extents %v and needs %d values, but only %d "+
				"bytes remain", e, raw, size, c.Remaining(offset))
	}

	if e == 0 {
		// All elements share element 0's extents, so the declared count
		// can be checked exactly before the tensor is allocated.
		block := uint64(markerSize+orderSize) + 8*size
		if uint64(sol.ElementCount) > uint64(c.Remaining(start))/block {
			return 0, decodeErrorf(start, ErrTruncatedFile,
				"the header declares %d elements of %d bytes each, but only "+
					"%d bytes of element records follow", sol.ElementCount,
				block, c.Remaining(start))
		}
		sol.Order = n
		sol.Data = field.NewTensor(int(sol.ElementCount), n[1], n[2], n[3], n[0])
	} else if n != sol.Order {
		return 0, decodeErrorf(start, ErrShapeMismatch,
			"element %d has extents %v, but element 0 has extents %v; "+
				"meshes with mixed polynomial order are not supported",
			e, n, sol.Order)
	}

	payload, err := c.Float64s(offset, int(size))
	if err != nil {
		return 0, err
	}
	offset += 8 * int(size)

	for v := 0; v < n[0]; v++ {
		for i := 0; i < n[1]; i++ {
			for j := 0; j < n[2]; j++ {
				for k := 0; k < n[3]; k++ {
					sol.Data.Set(e, i, j, k, v, payload[ColumnMajor(n, v, i, j, k)])
				}
			}
		}
	}

	return offset, nil
}
