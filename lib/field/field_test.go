package field

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampTensor returns a tensor whose value at [e, i, j, k, c] is unique.
func rampTensor(elements, nx, ny, nz, channels int) *Tensor {
	t := NewTensor(elements, nx, ny, nz, channels)
	for e := 0; e < elements; e++ {
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				for k := 0; k < nz; k++ {
					for c := 0; c < channels; c++ {
						v := float64(10000*e + 1000*c + 100*i + 10*j + k)
						t.Set(e, i, j, k, c, v)
					}
				}
			}
		}
	}
	return t
}

func TestTensorShape(t *testing.T) {
	x := rampTensor(3, 2, 2, 1, 5)
	assert.Equal(t, [5]int{3, 2, 2, 1, 5}, x.Shape())
	assert.Equal(t, 12, x.Nodes())
	assert.Equal(t, 5, x.Channels())

	assert.Panics(t, func() { NewTensor(0, 1, 1, 1, 1) })
	assert.Panics(t, func() { NewTensor(1, 1, -1, 1, 1) })
}

func TestTensorElement(t *testing.T) {
	x := rampTensor(2, 1, 2, 1, 2)
	// [x, y, z, channel] with channel fastest.
	exp := []float64{10000, 11000, 10010, 11010}
	if diff := cmp.Diff(exp, x.Element(1)); diff != "" {
		t.Errorf("Element(1) mismatch (-want +got):\n%s", diff)
	}

	el := x.Element(1)
	el[0] = -1
	assert.Equal(t, 10000.0, x.At(1, 0, 0, 0, 0), "Element must return a copy")
}

func TestTensorClone(t *testing.T) {
	x := rampTensor(1, 2, 1, 1, 5)
	y := x.Clone()
	y.Set(0, 1, 0, 0, 4, -7)
	assert.NotEqual(t, x.At(0, 1, 0, 0, 4), y.At(0, 1, 0, 0, 4))

	_, err := y.appendChannel(make([]float64, y.Nodes()))
	require.NoError(t, err)
	assert.Equal(t, 5, x.Channels())
	assert.Equal(t, 6, y.Channels())

	_, err = y.appendChannel(make([]float64, y.Nodes()+1))
	assert.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(5)
	require.NoError(t, err)
	assert.Equal(t, BaseNames, r.Names())
	for i, name := range BaseNames {
		idx, err := r.Index(name)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}

	_, err = r.Index("p")
	assert.True(t, errors.Is(err, ErrInvalidField))

	_, err = NewRegistry(4)
	assert.True(t, errors.Is(err, ErrInvalidField))
}

func TestSnapshotAddField(t *testing.T) {
	s, err := NewSnapshot("a.hsol", rampTensor(2, 2, 1, 1, 5))
	require.NoError(t, err)

	p := make([]float64, s.Data().Nodes())
	for i := range p {
		p[i] = float64(i)
	}

	idx, added, err := s.AddField("p", p)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 5, idx)

	// Adding the same name again is a no-op that reports the old channel.
	idx, added, err = s.AddField("p", make([]float64, s.Data().Nodes()))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 5, idx)
	assert.Equal(t, 6, s.Data().Channels())

	got, err := s.Field("p")
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("Field(\"p\") mismatch (-want +got):\n%s", diff)
	}

	_, err = s.RegisterField("p", p)
	assert.True(t, errors.Is(err, ErrDuplicateField))

	idx, err = s.RegisterField("T", p)
	require.NoError(t, err)
	assert.Equal(t, 6, idx)

	_, _, err = s.AddField("short", p[:1])
	assert.Error(t, err)
	assert.False(t, s.Has("short"))
	assert.Equal(t, 7, s.Data().Channels())

	wantEntries := []Entry{
		{Rho, 0}, {RhoU, 1}, {RhoV, 2}, {RhoW, 3}, {RhoE, 4}, {"p", 5}, {"T", 6},
	}
	if diff := cmp.Diff(wantEntries, s.Fields().Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotExtraChannels(t *testing.T) {
	// Files with stored gradients carry unnamed channels after the base five.
	s, err := NewSnapshot("grad.hsol", rampTensor(1, 1, 1, 1, 8))
	require.NoError(t, err)

	idx, added, err := s.AddField("V", []float64{1})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 8, idx)
}

func TestSnapshotClone(t *testing.T) {
	s, err := NewSnapshot("a.hsol", rampTensor(1, 1, 1, 1, 5))
	require.NoError(t, err)
	c := s.Clone()

	_, _, err = c.AddField("p", []float64{2})
	require.NoError(t, err)
	assert.True(t, c.Has("p"))
	assert.False(t, s.Has("p"))
	assert.Equal(t, 5, s.Data().Channels())
}
