package derive

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/horses3d/hpost/lib/field"
)

// Summary describes the distribution of one field over every node of a
// snapshot.
type Summary struct {
	Field  string  `yaml:"field"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
}

// Summarize returns the Summary of the field called name.
func Summarize(snap *field.Snapshot, name string) (Summary, error) {
	x, err := snap.Field(name)
	if err != nil {
		return Summary{}, err
	}
	if len(x) == 0 {
		return Summary{}, fmt.Errorf("The field '%s' of %s has no values.",
			name, snap.Path)
	}

	mean, std := stat.MeanStdDev(x, nil)
	return Summary{
		Field:  name,
		Min:    floats.Min(x),
		Max:    floats.Max(x),
		Mean:   mean,
		StdDev: std,
	}, nil
}

// SummarizeAll summarizes every registered field in channel order.
func SummarizeAll(snap *field.Snapshot) ([]Summary, error) {
	entries := snap.Fields().Entries()
	out := make([]Summary, 0, len(entries))
	for _, ent := range entries {
		s, err := Summarize(snap, ent.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
