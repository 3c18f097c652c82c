package snapio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// FakeFile builds in-memory .hsol/.hmesh images for testing. Elements are
// given in the logical [var, x, y, z] indexing and are laid out
// column-major by Bytes, exactly as the solver would write them.
type FakeFile struct {
	// Header is written verbatim, except that a zero ElementCount is
	// replaced with the number of added elements.
	Header   Header
	orders   [][4]uint32
	payloads [][]float64
}

// NewFakeFile creates an empty FakeFile with the given header values.
func NewFakeFile(
	iteration uint32, time float64, ref [NumRefValues]float64,
) *FakeFile {
	return &FakeFile{Header: Header{Iteration: iteration, Time: time, RefValues: ref}}
}

// AddElement adds an element whose payload is already column-major.
func (f *FakeFile) AddElement(order [4]uint32, payload []float64) *FakeFile {
	f.orders = append(f.orders, order)
	f.payloads = append(f.payloads, payload)
	return f
}

// AddElementFunc adds an element with extents n whose value at
// [v, i, j, k] is fn(v, i, j, k).
func (f *FakeFile) AddElementFunc(
	n [4]int, fn func(v, i, j, k int) float64,
) *FakeFile {
	payload := make([]float64, n[0]*n[1]*n[2]*n[3])
	for v := 0; v < n[0]; v++ {
		for i := 0; i < n[1]; i++ {
			for j := 0; j < n[2]; j++ {
				for k := 0; k < n[3]; k++ {
					payload[ColumnMajor(n, v, i, j, k)] = fn(v, i, j, k)
				}
			}
		}
	}
	order := [4]uint32{uint32(n[0]), uint32(n[1]), uint32(n[2]), uint32(n[3])}
	return f.AddElement(order, payload)
}

// Bytes returns the file image in the given byte order.
func (f *FakeFile) Bytes(order binary.ByteOrder) []byte {
	buf := &bytes.Buffer{}

	preamble := make([]byte, PreambleSize)
	copy(preamble, "#HORSES3D fake solution file")
	buf.Write(preamble)

	hd := f.Header
	if hd.ElementCount == 0 {
		hd.ElementCount = uint32(len(f.orders))
	}
	mustWrite(buf, order, hd.ElementCount)
	mustWrite(buf, order, hd.Iteration)
	mustWrite(buf, order, hd.Time)
	mustWrite(buf, order, hd.RefValues)
	// Record markers hold record lengths, as in Fortran unformatted output.
	// The decoder skips them without reading.
	mustWrite(buf, order, uint32(BlocksOffset-PreambleSize-markerSize))

	for i := range f.orders {
		mustWrite(buf, order, uint32(orderSize+8*len(f.payloads[i])))
		mustWrite(buf, order, f.orders[i])
		mustWrite(buf, order, f.payloads[i])
	}

	return buf.Bytes()
}

// WriteFile writes the file image to path with the native byte order.
func (f *FakeFile) WriteFile(path string) error {
	return os.WriteFile(path, f.Bytes(SystemByteOrder()), 0644)
}

func mustWrite(buf *bytes.Buffer, order binary.ByteOrder, x interface{}) {
	if err := binary.Write(buf, order, x); err != nil {
		panic(fmt.Sprintf("Internal error: %s", err.Error()))
	}
}
