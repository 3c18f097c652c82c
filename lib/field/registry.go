package field

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidField is returned when a field name is not in a Registry.
	ErrInvalidField = errors.New("invalid field")
	// ErrDuplicateField is returned by strict registration of a name that
	// is already present.
	ErrDuplicateField = errors.New("duplicate field")
)

// Names of the conservative variables. Every solution snapshot stores them
// in channels 0 through 4.
const (
	Rho  = "rho"
	RhoU = "rhou"
	RhoV = "rhov"
	RhoW = "rhow"
	RhoE = "rhoe"
)

// BaseNames lists the conservative variables in channel order.
var BaseNames = []string{Rho, RhoU, RhoV, RhoW, RhoE}

// Registry is an insert-only, ordered map from field name to channel index.
// The base names occupy fixed indices 0-4; every other entry is appended at
// the next free channel.
type Registry struct {
	names []string
	index map[string]int
	// next is the next free channel. It can be larger than len(names) when
	// the file stores unnamed channels after the conservative variables.
	next int
}

// NewRegistry returns a Registry describing a tensor with the given number
// of channels. channels must be at least len(BaseNames).
func NewRegistry(channels int) (*Registry, error) {
	if channels < len(BaseNames) {
		return nil, fmt.Errorf("%w: a solution needs the %d conservative "+
			"variables %v, but only %d channels are stored",
			ErrInvalidField, len(BaseNames), BaseNames, channels)
	}

	r := &Registry{index: map[string]int{}, next: channels}
	for i, name := range BaseNames {
		r.names = append(r.names, name)
		r.index[name] = i
	}
	return r, nil
}

// Index returns the channel of name.
func (r *Registry) Index(name string) (int, error) {
	i, ok := r.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: '%s' is not registered; known fields "+
			"are %v", ErrInvalidField, name, r.names)
	}
	return i, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Names returns the registered names in insertion order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered names.
func (r *Registry) Len() int { return len(r.names) }

// Map returns a copy of the registry as a plain map, the shape plotting
// code expects.
func (r *Registry) Map() map[string]int {
	out := make(map[string]int, len(r.index))
	for k, v := range r.index {
		out[k] = v
	}
	return out
}

// Entries returns (name, index) pairs sorted by index.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, Entry{name, r.index[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Entry is a single registry mapping.
type Entry struct {
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
}

// reserve returns the next free channel for name without recording it.
// The second return value is false when name is already present.
func (r *Registry) reserve(name string) (int, bool) {
	if i, ok := r.index[name]; ok {
		return i, false
	}
	return r.next, true
}

func (r *Registry) commit(name string, i int) {
	r.names = append(r.names, name)
	r.index[name] = i
	r.next = i + 1
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	out := &Registry{
		names: append([]string(nil), r.names...),
		index: r.Map(),
		next:  r.next,
	}
	return out
}
