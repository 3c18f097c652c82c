package snapio

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/horses3d/hpost/lib/eq"
)

var (
	testRef   = [NumRefValues]float64{1.4, 287.1, 0.3, 200, 0.72, 1}
	testOrder = [4]int{5, 2, 3, 4}
)

// testValue gives every [e, v, i, j, k] a distinct, recognisable value.
func testValue(e, v, i, j, k int) float64 {
	return float64(10000*e + 1000*v + 100*i + 10*j + k)
}

func testFile(nElem int) *FakeFile {
	f := NewFakeFile(1200, 3.75, testRef)
	for e := 0; e < nElem; e++ {
		e := e
		f.AddElementFunc(testOrder, func(v, i, j, k int) float64 {
			return testValue(e, v, i, j, k)
		})
	}
	return f
}

func TestColumnMajor(t *testing.T) {
	n := [4]int{5, 2, 3, 4}
	tests := []struct {
		d   [4]int
		idx int
	}{
		{[4]int{0, 0, 0, 0}, 0},
		{[4]int{1, 0, 0, 0}, 1},
		{[4]int{0, 1, 0, 0}, 5},
		{[4]int{0, 0, 1, 0}, 10},
		{[4]int{0, 0, 0, 1}, 30},
		{[4]int{4, 1, 2, 3}, 119},
	}

	for i := range tests {
		d := tests[i].d
		if idx := ColumnMajor(n, d[0], d[1], d[2], d[3]); idx != tests[i].idx {
			t.Errorf("%d) Expected ColumnMajor(%v, %v) = %d, got %d.",
				i, n, d, tests[i].idx, idx)
		}
	}
}

func TestDecodeSingleElement(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		sol, err := Decode(testFile(1).Bytes(order), order)
		if err != nil {
			t.Fatalf("Expected valid decode with %v, got error %s.", order, err)
		}

		if sol.ElementCount != 1 || sol.Iteration != 1200 || sol.Time != 3.75 ||
			sol.RefValues != testRef {
			t.Errorf("Header read as %+v.", sol.Header)
		}
		if sol.Order != testOrder {
			t.Errorf("Expected Order = %v, got %v.", testOrder, sol.Order)
		}

		shapeExp := [5]int{1, 2, 3, 4, 5}
		if shape := sol.Data.Shape(); shape != shapeExp {
			t.Errorf("Expected shape %v, got %v.", shapeExp, shape)
		}

		// Element 0 is exposed as [x, y, z, var] with var fastest.
		exp := []float64{}
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				for k := 0; k < 4; k++ {
					for v := 0; v < 5; v++ {
						exp = append(exp, testValue(0, v, i, j, k))
					}
				}
			}
		}
		if got := sol.Data.Element(0); !eq.Slices(got, exp) {
			i := eq.FirstDiff(got, exp, 0)
			t.Errorf("Element 0 differs from the injected values at flat "+
				"index %d.", i)
		}
	}
}

func TestDecodeManyElements(t *testing.T) {
	order := binary.LittleEndian
	sol, err := Decode(testFile(4).Bytes(order), order)
	if err != nil {
		t.Fatalf("Expected valid decode, got error %s.", err)
	}

	for e := 0; e < 4; e++ {
		for v := 0; v < testOrder[0]; v++ {
			for i := 0; i < testOrder[1]; i++ {
				for j := 0; j < testOrder[2]; j++ {
					for k := 0; k < testOrder[3]; k++ {
						got := sol.Data.At(e, i, j, k, v)
						if exp := testValue(e, v, i, j, k); got != exp {
							t.Fatalf("Expected [%d, %d, %d, %d, %d] = %g, "+
								"got %g.", e, i, j, k, v, exp, got)
						}
					}
				}
			}
		}
	}
}

func TestReadHeader(t *testing.T) {
	order := binary.BigEndian
	hd, err := ReadHeader(testFile(2).Bytes(order), order)
	if err != nil {
		t.Fatalf("Expected valid header read, got error %s.", err)
	}
	exp := Header{2, 1200, 3.75, testRef}
	if *hd != exp {
		t.Errorf("Expected header %+v, got %+v.", exp, *hd)
	}
}

func TestDecodeShapeMismatch(t *testing.T) {
	order := binary.LittleEndian
	f := testFile(2)
	f.AddElementFunc([4]int{5, 3, 3, 3}, func(v, i, j, k int) float64 { return 1 })

	_, err := Decode(f.Bytes(order), order)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Expected ErrShapeMismatch, got %v.", err)
	}

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Expected a *DecodeError, got %T.", err)
	}
	// The third record starts after two full records of the first shape.
	blockSize := markerSize + orderSize + 8*120
	if offExp := BlocksOffset + 2*blockSize; de.Offset != offExp {
		t.Errorf("Expected error at offset %d, got %d.", offExp, de.Offset)
	}
}

func TestDecodeFailures(t *testing.T) {
	order := binary.LittleEndian
	full := testFile(2).Bytes(order)

	overCount := testFile(1)
	overCount.Header.ElementCount = 3

	// Trailing values keep the record long enough that the extents, not
	// the file length, are what get rejected.
	// One large element passes the per-record minimum for 50 elements, but
	// the file holds only one element of its size.
	bigCount := NewFakeFile(1, 0, testRef)
	bigCount.AddElementFunc([4]int{5, 4, 4, 4}, func(v, i, j, k int) float64 {
		return 1
	})
	bigCount.Header.ElementCount = 50

	zeroExtent := NewFakeFile(1, 0, testRef).
		AddElement([4]uint32{5, 0, 2, 2}, []float64{0, 0, 0, 0})

	tests := []struct {
		name string
		buf  []byte
		err  error
	}{
		{"empty", []byte{}, ErrTruncatedFile},
		{"preamble only", full[:PreambleSize], ErrTruncatedFile},
		{"header only", full[:BlocksOffset], ErrTruncatedFile},
		{"missing extents", full[:BlocksOffset+8], ErrTruncatedFile},
		{"truncated payload", full[:len(full)-1], ErrTruncatedFile},
		{"count exceeds records", overCount.Bytes(order), ErrTruncatedFile},
		{"count exceeds first element size", bigCount.Bytes(order), ErrTruncatedFile},
		{"zero elements", NewFakeFile(1, 0, testRef).Bytes(order), ErrInvalidBlock},
		{"zero extent", zeroExtent.Bytes(order), ErrInvalidBlock},
	}

	for i := range tests {
		sol, err := Decode(tests[i].buf, order)
		if !errors.Is(err, tests[i].err) {
			t.Errorf("%d) %s: expected %v, got %v.",
				i, tests[i].name, tests[i].err, err)
		}
		if sol != nil {
			t.Errorf("%d) %s: expected no partial solution.", i, tests[i].name)
		}
		var de *DecodeError
		if err != nil && !errors.As(err, &de) {
			t.Errorf("%d) %s: expected a *DecodeError, got %T.",
				i, tests[i].name, err)
		}
	}

	_, err := Decode(bigCount.Bytes(order), order)
	var de *DecodeError
	if errors.As(err, &de) && de.Offset != BlocksOffset {
		t.Errorf("Expected the oversized count to be reported at byte %d, "+
			"got byte %d.", BlocksOffset, de.Offset)
	}
}

func TestDecodeMesh(t *testing.T) {
	order := SystemByteOrder()
	f := NewFakeFile(0, 0, testRef)
	for e := 0; e < 2; e++ {
		e := e
		f.AddElementFunc([4]int{3, 2, 2, 2}, func(v, i, j, k int) float64 {
			return float64(e) + float64([3]int{i, j, k}[v])*float64(v+1)
		})
	}

	m, err := DecodeMesh(f.Bytes(order), order)
	if err != nil {
		t.Fatalf("Expected valid mesh decode, got error %s.", err)
	}

	bounds := m.Bounds()
	exp := [MeshDims][2]float64{{0, 2}, {0, 3}, {0, 4}}
	if bounds != exp {
		t.Errorf("Expected bounds %v, got %v.", exp, bounds)
	}

	_, err = DecodeMesh(testFile(1).Bytes(order), order)
	if !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("Expected a five-variable file to be rejected as a mesh, "+
			"got %v.", err)
	}
}
