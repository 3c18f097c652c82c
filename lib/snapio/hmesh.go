package snapio

import (
	"encoding/binary"

	"gonum.org/v1/gonum/floats"

	"github.com/horses3d/hpost/lib/field"
)

// MeshDims is the number of coordinate channels in a mesh file.
const MeshDims = 3

// Mesh is a decoded .hmesh file. Nodes has shape
// [ElementCount, nx, ny, nz, 3] and its channels hold x, y, and z.
type Mesh struct {
	Header
	Order [4]int
	Nodes *field.Tensor
}

// DecodeMesh decodes an in-memory .hmesh file. Mesh files use the same
// record layout as solution files, with the variable axis holding node
// coordinates.
func DecodeMesh(buf []byte, order binary.ByteOrder) (*Mesh, error) {
	sol, err := Decode(buf, order)
	if err != nil {
		return nil, err
	}
	if sol.Order[0] != MeshDims {
		return nil, decodeErrorf(BlocksOffset, ErrInvalidBlock,
			"mesh elements must store %d coordinates per node, but this "+
				"file stores %d", MeshDims, sol.Order[0])
	}
	return &Mesh{Header: sol.Header, Order: sol.Order, Nodes: sol.Data}, nil
}

// Bounds returns the [min, max] range of each coordinate axis.
func (m *Mesh) Bounds() [MeshDims][2]float64 {
	var out [MeshDims][2]float64
	for dim := 0; dim < MeshDims; dim++ {
		x := m.Nodes.Channel(dim)
		out[dim] = [2]float64{floats.Min(x), floats.Max(x)}
	}
	return out
}
