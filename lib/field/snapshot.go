package field

import (
	"fmt"
)

// Snapshot is one decoded solution file: its data, the registry naming the
// data's channels, and the header values that came with it.
type Snapshot struct {
	// Path is the file the snapshot was decoded from.
	Path string
	// Iteration and Time are the solver iteration and simulation time at
	// which the snapshot was written.
	Iteration uint32
	Time      float64
	// RefValues are the solver's reference (non-dimensionalisation) values.
	RefValues [6]float64

	data   *Tensor
	fields *Registry
}

// NewSnapshot wraps data in a Snapshot whose registry holds the base
// conservative variables.
func NewSnapshot(path string, data *Tensor) (*Snapshot, error) {
	fields, err := NewRegistry(data.Channels())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Snapshot{Path: path, data: data, fields: fields}, nil
}

// Data returns the snapshot's tensor.
func (s *Snapshot) Data() *Tensor { return s.data }

// Fields returns the snapshot's registry. It must not be used to infer
// channels of any other snapshot.
func (s *Snapshot) Fields() *Registry { return s.fields }

// Has reports whether name has been registered.
func (s *Snapshot) Has(name string) bool { return s.fields.Has(name) }

// Field returns the channel registered under name. The slice aliases the
// snapshot's storage.
func (s *Snapshot) Field(name string) ([]float64, error) {
	i, err := s.fields.Index(name)
	if err != nil {
		return nil, err
	}
	return s.data.Channel(i), nil
}

// AddField appends data as a new channel called name. If name is already
// registered nothing is changed and the existing channel is returned with
// added == false.
func (s *Snapshot) AddField(
	name string, data []float64,
) (index int, added bool, err error) {
	i, fresh := s.fields.reserve(name)
	if !fresh {
		return i, false, nil
	}
	return s.append(name, i, data)
}

// RegisterField is the strict form of AddField: it fails with
// ErrDuplicateField if name is already present.
func (s *Snapshot) RegisterField(name string, data []float64) (int, error) {
	i, fresh := s.fields.reserve(name)
	if !fresh {
		return i, fmt.Errorf("%w: '%s' already occupies channel %d",
			ErrDuplicateField, name, i)
	}
	i, _, err := s.append(name, i, data)
	return i, err
}

func (s *Snapshot) append(name string, i int, data []float64) (int, bool, error) {
	if i != s.data.Channels() {
		panic(fmt.Sprintf("Internal error: registry expects channel %d for "+
			"'%s', but the tensor has %d channels.", i, name,
			s.data.Channels()))
	}
	c, err := s.data.appendChannel(data)
	if err != nil {
		return -1, false, fmt.Errorf("field '%s': %w", name, err)
	}
	s.fields.commit(name, c)
	return c, true, nil
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.data = s.data.Clone()
	out.fields = s.fields.Clone()
	return &out
}
