/*package field holds the dense storage that decoded snapshots live in, and the
registry which maps physical field names onto channels of that storage.

A Tensor is logically indexed [element, x, y, z, channel]. Internally each
channel is its own contiguous slice, ordered [element][x][y][z], so that
derived quantities can be computed with whole-vector operations and a new
channel can be appended without re-laying-out the existing ones.

None of the types in this package are safe for concurrent use. Callers that
share a Snapshot between goroutines must serialise access themselves.
*/
package field

import (
	"fmt"
)

// Tensor is a dense five-dimensional array of float64 values with shape
// [elements, nx, ny, nz, channels].
type Tensor struct {
	elements, nx, ny, nz int
	channels [][]float64
}

// NewTensor allocates a zeroed Tensor. All extents must be positive.
func NewTensor(elements, nx, ny, nz, channels int) *Tensor {
	if elements <= 0 || nx <= 0 || ny <= 0 || nz <= 0 || channels <= 0 {
		panic(fmt.Sprintf("Internal error: non-positive Tensor shape "+
			"[%d, %d, %d, %d, %d].", elements, nx, ny, nz, channels))
	}

	t := &Tensor{elements: elements, nx: nx, ny: ny, nz: nz}
	n := t.Nodes()
	t.channels = make([][]float64, channels)
	for c := range t.channels {
		t.channels[c] = make([]float64, n)
	}
	return t
}

// Shape returns [elements, nx, ny, nz, channels].
func (t *Tensor) Shape() [5]int {
	return [5]int{t.elements, t.nx, t.ny, t.nz, len(t.channels)}
}

// Elements returns the number of mesh elements.
func (t *Tensor) Elements() int { return t.elements }

// Channels returns the current number of channels.
func (t *Tensor) Channels() int { return len(t.channels) }

// Nodes returns the number of values held by each channel.
func (t *Tensor) Nodes() int { return t.elements * t.nx * t.ny * t.nz }

// node returns the position of (e, i, j, k) inside a channel slice.
func (t *Tensor) node(e, i, j, k int) int {
	return ((e*t.nx+i)*t.ny+j)*t.nz + k
}

// At returns the value at [e, i, j, k, c].
func (t *Tensor) At(e, i, j, k, c int) float64 {
	return t.channels[c][t.node(e, i, j, k)]
}

// Set writes v to [e, i, j, k, c].
func (t *Tensor) Set(e, i, j, k, c int, v float64) {
	t.channels[c][t.node(e, i, j, k)] = v
}

// Channel returns the values of channel c ordered [element][x][y][z]. The
// returned slice aliases the Tensor's storage.
func (t *Tensor) Channel(c int) []float64 {
	return t.channels[c]
}

// Element returns a copy of element e flattened in [x, y, z, channel] order,
// with the channel axis varying fastest.
func (t *Tensor) Element(e int) []float64 {
	nc := len(t.channels)
	out := make([]float64, t.nx*t.ny*t.nz*nc)
	n := 0
	for i := 0; i < t.nx; i++ {
		for j := 0; j < t.ny; j++ {
			for k := 0; k < t.nz; k++ {
				node := t.node(e, i, j, k)
				for c := 0; c < nc; c++ {
					out[n] = t.channels[c][node]
					n++
				}
			}
		}
	}
	return out
}

// appendChannel adds data as a new trailing channel and returns its index.
// data is retained, not copied.
func (t *Tensor) appendChannel(data []float64) (int, error) {
	if len(data) != t.Nodes() {
		return -1, fmt.Errorf("A channel for this tensor needs %d values, "+
			"but %d were given.", t.Nodes(), len(data))
	}
	t.channels = append(t.channels, data)
	return len(t.channels) - 1, nil
}

// Clone returns a deep copy of t.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{elements: t.elements, nx: t.nx, ny: t.ny, nz: t.nz}
	out.channels = make([][]float64, len(t.channels))
	for c := range t.channels {
		out.channels[c] = append([]float64(nil), t.channels[c]...)
	}
	return out
}
