/*package control reads and writes HORSES3D control files.

A control file is a list of "key = value" lines. Lines starting with "!" are
comments. Boundary conditions are given in blocks:

   #define boundary inlet
      type = inflow
   #end

Values are kept as the raw text that follows the "=" and are converted on
demand, following Fortran conventions: "1.d-10" is a float and ".true." is
a bool.
*/
package control

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// ErrMissingParameter is returned when a required parameter is not set.
var ErrMissingParameter = errors.New("missing control parameter")

// SolutionFileKey is the parameter naming the solver's output files.
const SolutionFileKey = "solution file name"

const (
	commentPrefix = "!"
	blockPrefix   = "#define boundary"
	blockEnd      = "#end"
)

// Control holds the contents of a control file.
type Control struct {
	// Parameters maps keys to their unconverted values.
	Parameters map[string]string
	// Blocks maps boundary names to the trimmed lines inside their blocks.
	Blocks map[string][]string
	// Keys and BlockOrder record the order entries first appeared in.
	Keys       []string
	BlockOrder []string
}

// New returns an empty Control.
func New() *Control {
	return &Control{Parameters: map[string]string{}, Blocks: map[string][]string{}}
}

// Default returns the parameters of a small time-accurate Navier-Stokes run.
func Default() *Control {
	c := New()
	for _, kv := range [][2]string{
		{"Flow equations", `"NS"`},
		{"mesh file name", `"MESH/myMesh.mesh"`},
		{SolutionFileKey, `"RESULTS/mySol.hsol"`},
		{"simulation type", "time-accurate"},
		{"time integration", "explicit"},
		{"Polynomial order", "2"},
		{"restart", ".false."},
		{"cfl", "0.3"},
		{"dcfl", "0.3"},
		{"final time", "5.0"},
		{"Number of time steps", "10000"},
		{"Output Interval", "50"},
		{"Convergence tolerance", "1.d-10"},
		{"mach number", "0.3"},
		{"Reynolds number", "200.0"},
		{"Prandtl number", "0.72"},
		{"AOA theta", "0.0"},
		{"AOA phi", "90.0"},
		{"LES model", "Smagorinsky"},
		{"save gradients with solution", ".true."},
		{"riemann solver", "roe"},
	} {
		c.Set(kv[0], kv[1])
	}
	return c
}

// Load reads the control file at path.
func Load(path string) (*Control, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("The control file %s cannot be opened. The "+
			"system error is: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads a control file from r.
func Parse(r io.Reader) (*Control, error) {
	c := New()
	block := ""
	inBlock := false
	start := 0

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())

		switch {
		case strings.HasPrefix(line, blockPrefix):
			if inBlock {
				return nil, fmt.Errorf("Line %d opens a boundary block, but "+
					"the block '%s' opened on line %d has no '%s'.",
					n, block, start, blockEnd)
			}
			name := strings.TrimSpace(strings.TrimPrefix(line, blockPrefix))
			if name == "" {
				return nil, fmt.Errorf("Line %d, '%s', does not name its "+
					"boundary.", n, line)
			}
			block, inBlock, start = name, true, n
			if _, ok := c.Blocks[block]; !ok {
				c.BlockOrder = append(c.BlockOrder, block)
			}
			c.Blocks[block] = []string{}
		case strings.HasPrefix(line, blockEnd):
			inBlock = false
		case inBlock:
			c.Blocks[block] = append(c.Blocks[block], line)
		case line == "" || strings.HasPrefix(line, commentPrefix):
		default:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				// The solver ignores lines it cannot read, and so do we.
				continue
			}
			c.Set(strings.TrimSpace(key), strings.TrimSpace(value))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inBlock {
		return nil, fmt.Errorf("The boundary block '%s' opened on line %d "+
			"has no '%s'.", block, start, blockEnd)
	}

	return c, nil
}

// Write writes c in control file syntax: parameters first, then blocks.
func (c *Control) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, key := range c.Keys {
		fmt.Fprintf(bw, "%s = %s\n", key, c.Parameters[key])
	}
	for _, name := range c.BlockOrder {
		fmt.Fprintf(bw, "%s %s\n", blockPrefix, name)
		for _, line := range c.Blocks[name] {
			fmt.Fprintf(bw, "  %s\n", line)
		}
		fmt.Fprintln(bw, blockEnd)
	}
	return bw.Flush()
}

// Save writes c to path.
func (c *Control) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Set sets key to the unconverted value.
func (c *Control) Set(key, value string) {
	if _, ok := c.Parameters[key]; !ok {
		c.Keys = append(c.Keys, key)
	}
	c.Parameters[key] = value
}

// Get returns the unconverted value of key.
func (c *Control) Get(key string) (string, bool) {
	v, ok := c.Parameters[key]
	return v, ok
}

func (c *Control) lookup(key string) (string, error) {
	v, ok := c.Parameters[key]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrMissingParameter, key)
	}
	return v, nil
}

// String returns the value of key with surrounding quotes removed.
func (c *Control) String(key string) (string, error) {
	v, err := c.lookup(key)
	if err != nil {
		return "", err
	}
	return unquote(v), nil
}

// Float returns the value of key as a float. Fortran double precision
// exponents ("1.d-10") are accepted.
func (c *Control) Float(key string) (float64, error) {
	v, err := c.lookup(key)
	if err != nil {
		return 0, err
	}
	s := strings.NewReplacer("d", "e", "D", "e").Replace(unquote(v))
	x, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, fmt.Errorf("The parameter '%s' = %s is not a number.",
			key, v)
	}
	return x, nil
}

// Int returns the value of key as an integer.
func (c *Control) Int(key string) (int, error) {
	v, err := c.lookup(key)
	if err != nil {
		return 0, err
	}
	n, err := cast.ToIntE(unquote(v))
	if err != nil {
		return 0, fmt.Errorf("The parameter '%s' = %s is not an integer.",
			key, v)
	}
	return n, nil
}

// Bool returns the value of key as a bool. Both Fortran (".true.") and
// plain ("true") spellings are accepted.
func (c *Control) Bool(key string) (bool, error) {
	v, err := c.lookup(key)
	if err != nil {
		return false, err
	}
	s := strings.Trim(strings.ToLower(unquote(v)), ".")
	b, err := cast.ToBoolE(s)
	if err != nil {
		return false, fmt.Errorf("The parameter '%s' = %s is not a "+
			"logical value.", key, v)
	}
	return b, nil
}

// SolutionFileName returns the unquoted "solution file name" parameter.
func (c *Control) SolutionFileName() (string, error) {
	name, err := c.String(SolutionFileKey)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: '%s' is empty", ErrMissingParameter,
			SolutionFileKey)
	}
	return name, nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
