/*package derive computes secondary flow quantities from the conservative
variables of a snapshot and appends them to it as new channels.

The quantities, and the fields each one is computed from, are:

   V  velocity magnitude  rhou, rhov, rhow
   p  pressure            rho, rhou, rhov, rhow, rhoe
   T  temperature         p, rho
   a  speed of sound      p, rho
   M  Mach number         V, a

V is the magnitude of the momentum vector, |rho u|, not of the velocity: it
is not divided by rho. M inherits this, so M = |rho u| / a. Plots and
downstream tools built on hpost's output depend on these definitions.

Requesting a quantity first computes whatever it depends on. A quantity which
is already registered on the snapshot is never recomputed.
*/
package derive

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/horses3d/hpost/lib/field"
	"github.com/horses3d/hpost/lib/logger"
	"github.com/horses3d/hpost/lib/metrics"
	"github.com/horses3d/hpost/lib/store"
)

// Names of the derived quantities.
const (
	V = "V"
	P = "p"
	T = "T"
	A = "a"
	M = "M"
)

// Names lists every derived quantity, dependencies before dependents.
var Names = []string{V, P, T, A, M}

// Defaults for air.
const (
	DefaultGamma = 1.4
	DefaultR     = 287.1
)

// dependencies lists the derived quantities each quantity is computed from.
// Conservative variables are always present and are not listed.
var dependencies = map[string][]string{
	V: nil,
	P: nil,
	T: {P},
	A: {P},
	M: {V, A},
}

// Source gives the Engine access to snapshots. *store.Store implements it.
type Source interface {
	Snapshot(h store.Handle) (*field.Snapshot, error)
}

// Engine derives quantities for the snapshots of a Source. An Engine is not
// safe for concurrent use.
type Engine struct {
	// Gamma is the ratio of specific heats and R the specific gas constant.
	Gamma, R float64

	src Source
	log *zap.Logger
}

// New returns an Engine for air working on src. log may be nil.
func New(src Source, log *zap.Logger) *Engine {
	return &Engine{
		Gamma: DefaultGamma,
		R:     DefaultR,
		src:   src,
		log:   logger.OrNop(log),
	}
}

// Validate checks that the gas constants are physical.
func (e *Engine) Validate() error {
	if !(e.Gamma > 1) {
		return fmt.Errorf("The ratio of specific heats, gamma = %g, must be "+
			"larger than 1.", e.Gamma)
	}
	if !(e.R > 0) {
		return fmt.Errorf("The gas constant, R = %g, must be positive.", e.R)
	}
	return nil
}

// VelocityMagnitude registers V = sqrt(rhou^2 + rhov^2 + rhow^2) and returns
// its channel.
func (e *Engine) VelocityMagnitude(h store.Handle) (int, error) {
	return e.ensure(h, V)
}

// Pressure registers p = (gamma - 1) (rhoe - rho (u^2 + v^2 + w^2) / 2).
func (e *Engine) Pressure(h store.Handle) (int, error) {
	return e.ensure(h, P)
}

// Temperature registers T = p / (R rho), computing p first if needed.
func (e *Engine) Temperature(h store.Handle) (int, error) {
	return e.ensure(h, T)
}

// SpeedOfSound registers a = sqrt(gamma p / rho), computing p first if
// needed.
func (e *Engine) SpeedOfSound(h store.Handle) (int, error) {
	return e.ensure(h, A)
}

// Mach registers M = V / a, computing V and a first if needed.
func (e *Engine) Mach(h store.Handle) (int, error) {
	return e.ensure(h, M)
}

// Compute registers each of names in turn. It stops at the first failure;
// quantities registered before it are kept.
func (e *Engine) Compute(h store.Handle, names ...string) error {
	for _, name := range names {
		if _, err := e.ensure(h, name); err != nil {
			return err
		}
	}
	return nil
}

// ensure registers name and everything it depends on, and returns name's
// channel.
func (e *Engine) ensure(h store.Handle, name string) (int, error) {
	if err := e.Validate(); err != nil {
		return -1, err
	}
	snap, err := e.src.Snapshot(h)
	if err != nil {
		return -1, err
	}
	order, err := Resolve(name)
	if err != nil {
		return -1, err
	}

	for _, q := range order {
		if snap.Has(q) {
			continue
		}
		data, err := e.compute(snap, q)
		if err != nil {
			return -1, fmt.Errorf("computing '%s' for %s: %w", q, snap.Path, err)
		}
		i, added, err := snap.AddField(q, data)
		if err != nil {
			return -1, err
		}
		if added {
			metrics.FieldsDerived.WithLabelValues(q).Inc()
			e.log.Debug("derived field appended",
				zap.String("field", q),
				zap.Int("channel", i),
				zap.String("path", snap.Path))
		}
	}

	return snap.Fields().Index(name)
}

// Resolve returns name preceded by every quantity it depends on, in an
// order where each quantity comes after its dependencies.
func Resolve(name string) ([]string, error) {
	if _, ok := dependencies[name]; !ok {
		return nil, fmt.Errorf("%w: '%s' is not a derived quantity; "+
			"the derived quantities are %v", field.ErrInvalidField, name, Names)
	}

	out := []string{}
	state := map[string]int{}
	var visit func(string)
	visit = func(q string) {
		switch state[q] {
		case 1:
			panic(fmt.Sprintf("Internal error: the derived quantity '%s' "+
				"depends on itself.", q))
		case 2:
			return
		}
		state[q] = 1
		for _, dep := range dependencies[q] {
			visit(dep)
		}
		state[q] = 2
		out = append(out, q)
	}
	visit(name)

	return out, nil
}

// compute evaluates a single quantity whose dependencies are all present.
func (e *Engine) compute(snap *field.Snapshot, name string) ([]float64, error) {
	switch name {
	case V:
		return e.velocityMagnitude(snap)
	case P:
		return e.pressure(snap)
	case T:
		return e.temperature(snap)
	case A:
		return e.speedOfSound(snap)
	case M:
		return e.mach(snap)
	}
	panic(fmt.Sprintf("Internal error: no computation for '%s'.", name))
}

// fields looks up several channels at once.
func fields(snap *field.Snapshot, names ...string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, name := range names {
		var err error
		if out[i], err = snap.Field(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// sumSquares returns x[0]^2 + x[1]^2 + ... element-wise.
func sumSquares(x ...[]float64) []float64 {
	out := make([]float64, len(x[0]))
	sq := make([]float64, len(x[0]))
	for i := range x {
		floats.MulTo(sq, x[i], x[i])
		floats.Add(out, sq)
	}
	return out
}

func sqrt(x []float64) []float64 {
	for i := range x {
		x[i] = math.Sqrt(x[i])
	}
	return x
}

func (e *Engine) velocityMagnitude(snap *field.Snapshot) ([]float64, error) {
	m, err := fields(snap, field.RhoU, field.RhoV, field.RhoW)
	if err != nil {
		return nil, err
	}
	return sqrt(sumSquares(m...)), nil
}

func (e *Engine) pressure(snap *field.Snapshot) ([]float64, error) {
	f, err := fields(snap, field.Rho, field.RhoU, field.RhoV, field.RhoW,
		field.RhoE)
	if err != nil {
		return nil, err
	}
	rho, rhoE := f[0], f[4]

	n := len(rho)
	u, v, w := make([]float64, n), make([]float64, n), make([]float64, n)
	floats.DivTo(u, f[1], rho)
	floats.DivTo(v, f[2], rho)
	floats.DivTo(w, f[3], rho)

	// p = (gamma - 1) (rhoe - rho |u|^2 / 2)
	p := sumSquares(u, v, w)
	floats.Mul(p, rho)
	floats.Scale(-0.5, p)
	floats.Add(p, rhoE)
	floats.Scale(e.Gamma-1, p)
	return p, nil
}

func (e *Engine) temperature(snap *field.Snapshot) ([]float64, error) {
	f, err := fields(snap, P, field.Rho)
	if err != nil {
		return nil, err
	}
	t := make([]float64, len(f[0]))
	floats.DivTo(t, f[0], f[1])
	floats.Scale(1/e.R, t)
	return t, nil
}

func (e *Engine) speedOfSound(snap *field.Snapshot) ([]float64, error) {
	f, err := fields(snap, P, field.Rho)
	if err != nil {
		return nil, err
	}
	a := make([]float64, len(f[0]))
	floats.DivTo(a, f[0], f[1])
	floats.Scale(e.Gamma, a)
	return sqrt(a), nil
}

func (e *Engine) mach(snap *field.Snapshot) ([]float64, error) {
	f, err := fields(snap, V, A)
	if err != nil {
		return nil, err
	}
	m := make([]float64, len(f[0]))
	floats.DivTo(m, f[0], f[1])
	return m, nil
}
